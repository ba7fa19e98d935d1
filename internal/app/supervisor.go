package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/sourcegraph/conc/panics"
)

// openConnection calls the supervisor and turns a panic or a missing handle into an error.
func openConnection(ctx context.Context, supervisor domain.ConnectionSupervisor, sessionID string) (domain.Connection, error) {
	var (
		conn domain.Connection
		err  error
		pc   panics.Catcher
	)
	pc.Try(func() { conn, err = supervisor.Open(ctx, sessionID) })

	if r := pc.Recovered(); r != nil {
		return nil, fmt.Errorf("supervisor panicked: %w", r.AsError())
	}
	if err != nil {
		return nil, err
	}
	if conn == nil {
		return nil, fmt.Errorf("supervisor returned no connection: %w", domain.ErrCapabilityUnavailable)
	}
	return conn, nil
}

func pairConnection(ctx context.Context, supervisor domain.ConnectionSupervisor, sessionID, phone string) (domain.Connection, string, error) {
	var (
		conn domain.Connection
		code string
		err  error
		pc   panics.Catcher
	)
	pc.Try(func() { conn, code, err = supervisor.Pair(ctx, sessionID, phone) })

	if r := pc.Recovered(); r != nil {
		return nil, "", fmt.Errorf("supervisor panicked: %w", r.AsError())
	}
	return conn, code, err
}

// errClosedWhileOpening marks an open whose connection was reported closed before the
// result could be recorded.
var errClosedWhileOpening = errors.New("connection closed while it was being opened")

// connectedPatch is the registry state after a successful open.
func connectedPatch(conn domain.Connection) domain.SessionPatch {
	patch := domain.SessionPatch{
		Status:    domain.StatusPtr(domain.StatusConnected),
		Healthy:   domain.BoolPtr(true),
		Conn:      conn,
		LastError: domain.StringPtr(""),
	}
	if identity, ok := conn.Identity(); ok {
		patch.Identity = &identity
	}
	return patch
}

// dropStaleHandle closes a handle that is still referenced but no longer healthy.
func dropStaleHandle(ctx context.Context, sessions Sessions, supervisor domain.ConnectionSupervisor, sessionID string) {
	s, ok := sessions.Get(sessionID)
	if !ok || !s.Live() || s.Healthy {
		return
	}
	if _, err := supervisor.Close(ctx, sessionID, domain.CloseDisconnect); err != nil {
		slog.WarnContext(ctx, "Failed to close stale connection", "session_id", sessionID, "error", err)
	}
	sessions.Upsert(sessionID, domain.SessionPatch{ClearConn: true})
}

// noLock is used when no cross-instance lock is configured.
type noLock struct{}

func (noLock) Acquire(context.Context, string) (func(), error) { return func() {}, nil }
