package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/logging"
	"golang.org/x/sync/singleflight"
)

// reconnectOpenTimeout bounds a shared reconnect beyond its delay.
const reconnectOpenTimeout = time.Minute

// Lifecycle runs logout and reconnect outside the startup pool.
type Lifecycle struct {
	sessions       Sessions
	store          CredentialStore
	supervisor     domain.ConnectionSupervisor
	lock           domain.SessionLock
	clock          clockwork.Clock
	reconnectDelay time.Duration
	purger         purger
	reconnects     singleflight.Group
}

// NewLifecycle wires logout and reconnect. lock may be nil.
func NewLifecycle(creds domain.CredentialRepository, store CredentialStore, sessions Sessions, supervisor domain.ConnectionSupervisor, lock domain.SessionLock, clock clockwork.Clock, reconnectDelay time.Duration) *Lifecycle {
	if lock == nil {
		lock = noLock{}
	}
	return &Lifecycle{
		sessions:       sessions,
		store:          store,
		supervisor:     supervisor,
		lock:           lock,
		clock:          clock,
		reconnectDelay: reconnectDelay,
		purger:         purger{creds: creds, store: store, sessions: sessions},
	}
}

// Logout unlinks the device and removes the session everywhere. Unknown sessions yield
// ErrSessionNotFound.
func (l *Lifecycle) Logout(ctx context.Context, raw string) (string, error) {
	sessionID := NormalizeIdentifier(raw)
	if sessionID == "" {
		return "", domain.ErrInvalidIdentifier
	}
	log := logging.WithSession(sessionID)

	release, err := l.sessions.Reserve(sessionID)
	if err != nil {
		return sessionID, err
	}
	defer release()

	unlock, err := l.lock.Acquire(ctx, sessionID)
	if err != nil {
		return sessionID, err
	}
	defer unlock()

	log.InfoContext(ctx, "Logout initiated")
	closed, err := l.supervisor.Close(ctx, sessionID, domain.CloseLogout)
	if err != nil {
		log.WarnContext(ctx, "Gateway logout failed, removing session anyway", "error", err)
	}

	existed, err := l.purger.purge(ctx, sessionID)
	if err != nil {
		return sessionID, fmt.Errorf("logout %s: %w", sessionID, err)
	}
	if !existed && !closed {
		log.WarnContext(ctx, "Session not found or already logged out")
		return sessionID, domain.ErrSessionNotFound
	}

	log.InfoContext(ctx, "Logout completed")
	return sessionID, nil
}

// Reconnect drops the current connection, waits the reconnect delay and reopens the
// session from its credentials. Concurrent calls for one session share a single attempt.
func (l *Lifecycle) Reconnect(ctx context.Context, raw string) (domain.Session, error) {
	sessionID := NormalizeIdentifier(raw)
	if sessionID == "" {
		return domain.Session{}, domain.ErrInvalidIdentifier
	}

	if err := ctx.Err(); err != nil {
		return domain.Session{}, fmt.Errorf("reconnect cancelled: %w", err)
	}

	// The shared attempt outlives any single caller so one disconnect does not cancel
	// the others joined to it.
	results := l.reconnects.DoChan(sessionID, func() (any, error) {
		shared, cancel := context.WithTimeout(context.WithoutCancel(ctx), l.reconnectDelay+reconnectOpenTimeout)
		defer cancel()
		return l.reconnect(shared, sessionID)
	})

	select {
	case res := <-results:
		if res.Err != nil {
			return domain.Session{}, res.Err
		}
		return res.Val.(domain.Session), nil
	case <-ctx.Done():
		return domain.Session{}, fmt.Errorf("reconnect cancelled: %w", ctx.Err())
	}
}

func (l *Lifecycle) reconnect(ctx context.Context, sessionID string) (domain.Session, error) {
	log := logging.WithSession(sessionID)

	current, known := l.sessions.Get(sessionID)
	if !known && !l.store.HasCredentials(sessionID) {
		return domain.Session{}, domain.ErrSessionNotFound
	}

	release, err := l.sessions.Reserve(sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	defer release()

	unlock, err := l.lock.Acquire(ctx, sessionID)
	if err != nil {
		return domain.Session{}, err
	}
	defer unlock()

	if current.Live() {
		if _, err := l.supervisor.Close(ctx, sessionID, domain.CloseDisconnect); err != nil {
			log.WarnContext(ctx, "Failed to close connection before reconnect", "error", err)
		}
		l.sessions.Upsert(sessionID, domain.SessionPatch{
			Status:    domain.StatusPtr(domain.StatusDisconnected),
			Healthy:   domain.BoolPtr(false),
			ClearConn: true,
		})
	}

	select {
	case <-l.clock.After(l.reconnectDelay):
	case <-ctx.Done():
		return domain.Session{}, fmt.Errorf("reconnect cancelled: %w", ctx.Err())
	}

	closes := l.sessions.Closes(sessionID)
	l.sessions.Upsert(sessionID, domain.SessionPatch{
		Status:        domain.StatusPtr(domain.StatusRestoring),
		CredentialDir: domain.StringPtr(l.store.Dir(sessionID)),
	})

	conn, err := openConnection(ctx, l.supervisor, sessionID)
	if err == nil {
		s, committed := l.sessions.CommitOpen(sessionID, closes, connectedPatch(conn))
		if committed {
			log.InfoContext(ctx, "Session reconnected")
			return s, nil
		}
		err = errClosedWhileOpening
	}

	l.sessions.Upsert(sessionID, domain.SessionPatch{
		Status:    domain.StatusPtr(domain.StatusFailed),
		LastError: domain.StringPtr(err.Error()),
	})
	log.ErrorContext(ctx, "Reconnect failed", "error", err)
	if !errors.Is(err, domain.ErrCapabilityUnavailable) {
		err = fmt.Errorf("%w: %v", domain.ErrCapabilityUnavailable, err)
	}
	return domain.Session{}, err
}
