package app

import (
	"context"
	"encoding/json"
	"time"

	"github.com/pscheid92/sessionhub/internal/credstore"
	"github.com/pscheid92/sessionhub/internal/domain"
)

// Sessions is the registry surface used by the application layer.
type Sessions interface {
	Upsert(sessionID string, patch domain.SessionPatch) domain.Session
	Get(sessionID string) (domain.Session, bool)
	List() []domain.Session
	Remove(sessionID string) bool
	Acquire(sessionID string) (release func(), err error)
	Reserve(sessionID string) (release func(), err error)
	ReserveWait(ctx context.Context, sessionID string) (release func(), err error)
	IsConnected(sessionID string) bool

	// Closes, NoteClosed and CommitOpen keep a close event that arrives while a
	// connection is being opened from being overwritten by the open's result.
	Closes(sessionID string) uint64
	NoteClosed(sessionID string)
	CommitOpen(sessionID string, closes uint64, patch domain.SessionPatch) (domain.Session, bool)
}

// CredentialStore is the on-disk credential tree.
type CredentialStore interface {
	Dir(sessionID string) string
	EnsureDirectory(sessionID string) (string, error)
	Materialize(ctx context.Context, rec domain.CredentialRecord) (credstore.Outcome, error)
	DiscoverRestorable() ([]string, error)
	HasCredentials(sessionID string) bool
	RemoveSession(sessionID string) error
	Snapshot(sessionID string, names []string, takenAt time.Time) (json.RawMessage, error)
}
