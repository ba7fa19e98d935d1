package domain

import (
	"time"
)

// Status is the lifecycle state of a session. Health is tracked separately.
type Status string

const (
	StatusUnknown         Status = "unknown"
	StatusRestoring       Status = "restoring"
	StatusAwaitingPairing Status = "awaiting_pairing"
	StatusConnected       Status = "connected"
	StatusDisconnected    Status = "disconnected"
	StatusFailed          Status = "failed"
)

// Identity is the account identity reported by the protocol once a session is linked.
type Identity struct {
	DisplayName string
	ProtocolID  string
}

// IsZero reports whether the protocol has not populated any identity yet.
func (i Identity) IsZero() bool {
	return i.DisplayName == "" && i.ProtocolID == ""
}

// Connection is an opaque handle to a live protocol connection. The supervisor owns it;
// everything else only keeps a reference.
type Connection interface {
	SessionID() string
	Identity() (Identity, bool)
}

type Session struct {
	ID            string
	Status        Status
	Healthy       bool
	CredentialDir string
	Conn          Connection
	Identity      Identity
	LastError     string
	UpdatedAt     time.Time
}

// Live reports whether the session holds a connection handle.
func (s Session) Live() bool {
	return s.Conn != nil
}

// ResolvedIdentity prefers the identity pushed by supervisor events and falls back to the handle.
func (s Session) ResolvedIdentity() Identity {
	if !s.Identity.IsZero() {
		return s.Identity
	}
	if s.Conn != nil {
		if id, ok := s.Conn.Identity(); ok {
			return id
		}
	}
	return Identity{}
}

// SessionPatch describes a partial update applied atomically by the registry.
// Nil fields are left untouched. ClearConn drops the handle reference.
type SessionPatch struct {
	Status        *Status
	Healthy       *bool
	CredentialDir *string
	Conn          Connection
	ClearConn     bool
	Identity      *Identity
	LastError     *string
}

// StatusPtr, BoolPtr and StringPtr are small helpers for building patches.
func StatusPtr(s Status) *Status { return &s }
func BoolPtr(b bool) *bool       { return &b }
func StringPtr(s string) *string { return &s }
