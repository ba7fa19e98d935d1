package domain

import (
	"context"
	"encoding/json"
	"time"
)

// CloseMode selects between dropping a connection and unlinking the device.
type CloseMode int

const (
	CloseDisconnect CloseMode = iota
	CloseLogout
)

// ConnectionSupervisor opens and closes protocol connections. A nil Connection with a nil
// error from Open means the supervisor produced no connection.
type ConnectionSupervisor interface {
	Open(ctx context.Context, sessionID string) (Connection, error)
	Pair(ctx context.Context, sessionID, phone string) (Connection, string, error)
	Close(ctx context.Context, sessionID string, mode CloseMode) (bool, error)
}

// SessionEventSink receives health, identity and credential updates from the supervisor.
type SessionEventSink interface {
	OnHealth(ctx context.Context, sessionID string, healthy bool)
	OnIdentity(ctx context.Context, sessionID string, identity Identity)
	OnCredentials(ctx context.Context, sessionID string, blob json.RawMessage)
	OnClosed(ctx context.Context, sessionID string, loggedOut bool)
}

// SessionLock serializes lifecycle operations on one session across instances.
type SessionLock interface {
	Acquire(ctx context.Context, sessionID string) (release func(), err error)
}

// StatusEntry is the per-session status mirrored for other instances.
type StatusEntry struct {
	SessionID   string    `json:"session_id"`
	Instance    string    `json:"instance"`
	Status      Status    `json:"status"`
	Healthy     bool      `json:"healthy"`
	DisplayName string    `json:"display_name,omitempty"`
	ProtocolID  string    `json:"protocol_id,omitempty"`
	UpdatedAt   time.Time `json:"updated_at"`
}

// StatusMirror publishes session status so any instance can report on the whole cluster.
type StatusMirror interface {
	Put(ctx context.Context, entry StatusEntry) error
	Delete(ctx context.Context, sessionID string) error
	List(ctx context.Context) ([]StatusEntry, error)
}
