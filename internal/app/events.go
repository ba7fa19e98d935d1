package app

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/credstore"
	"github.com/pscheid92/sessionhub/internal/domain"
)

// remoteLogoutWait bounds how long a remote logout waits for an in-flight operation.
const remoteLogoutWait = 30 * time.Second

// EventSink applies supervisor events to the registry and the credential database.
type EventSink struct {
	creds    domain.CredentialRepository
	store    CredentialStore
	sessions Sessions
	clock    clockwork.Clock
	purger   purger
}

var _ domain.SessionEventSink = (*EventSink)(nil)

func NewEventSink(creds domain.CredentialRepository, store CredentialStore, sessions Sessions, clock clockwork.Clock) *EventSink {
	return &EventSink{
		creds:    creds,
		store:    store,
		sessions: sessions,
		clock:    clock,
		purger:   purger{creds: creds, store: store, sessions: sessions},
	}
}

func (e *EventSink) OnHealth(ctx context.Context, sessionID string, healthy bool) {
	s, ok := e.sessions.Get(sessionID)
	if !ok {
		slog.DebugContext(ctx, "Health event for unknown session", "session_id", sessionID)
		return
	}

	patch := domain.SessionPatch{Healthy: domain.BoolPtr(healthy)}
	switch {
	case healthy && s.Status != domain.StatusConnected && s.Status != domain.StatusFailed:
		patch.Status = domain.StatusPtr(domain.StatusConnected)
	case !healthy && s.Status == domain.StatusConnected:
		patch.Status = domain.StatusPtr(domain.StatusDisconnected)
	}
	e.sessions.Upsert(sessionID, patch)
}

func (e *EventSink) OnIdentity(ctx context.Context, sessionID string, identity domain.Identity) {
	if _, ok := e.sessions.Get(sessionID); !ok {
		return
	}
	e.sessions.Upsert(sessionID, domain.SessionPatch{Identity: &identity})
}

// OnCredentials persists rotated credentials. An empty blob means the gateway only
// signalled a rotation, so creds.json is snapshotted from disk instead.
func (e *EventSink) OnCredentials(ctx context.Context, sessionID string, blob json.RawMessage) {
	log := slog.With("session_id", sessionID)

	if len(blob) == 0 || string(blob) == "null" {
		snapshot, err := e.store.Snapshot(sessionID, []string{credstore.CredsFile}, e.clock.Now())
		if err != nil {
			log.ErrorContext(ctx, "Failed to snapshot rotated credentials", "error", err)
			return
		}
		blob = snapshot
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(blob, &fields); err != nil || fields == nil {
		log.WarnContext(ctx, "Ignoring credential update that is not a JSON object")
		return
	}

	if err := e.creds.Upsert(ctx, sessionID, blob); err != nil {
		log.ErrorContext(ctx, "Failed to persist rotated credentials", "error", err)
		return
	}
	log.DebugContext(ctx, "Credentials persisted")
}

// OnClosed handles a dropped connection. A remote logout erases the session like an
// explicit logout would, once no open or logout for the session is in flight.
func (e *EventSink) OnClosed(ctx context.Context, sessionID string, loggedOut bool) {
	e.sessions.NoteClosed(sessionID)

	if loggedOut {
		slog.WarnContext(ctx, "Session logged out remotely", "session_id", sessionID)

		wctx, cancel := context.WithTimeout(ctx, remoteLogoutWait)
		defer cancel()
		release, err := e.sessions.ReserveWait(wctx, sessionID)
		if err != nil {
			slog.ErrorContext(ctx, "Gave up cleaning up remotely logged out session", "session_id", sessionID, "error", err)
			return
		}
		defer release()

		if _, err := e.purger.purge(ctx, sessionID); err != nil {
			slog.ErrorContext(ctx, "Failed to clean up remotely logged out session", "session_id", sessionID, "error", err)
		}
		return
	}

	s, ok := e.sessions.Get(sessionID)
	if !ok {
		return
	}
	patch := domain.SessionPatch{Healthy: domain.BoolPtr(false), ClearConn: true}
	if s.Status == domain.StatusConnected || s.Status == domain.StatusAwaitingPairing {
		patch.Status = domain.StatusPtr(domain.StatusDisconnected)
	}
	e.sessions.Upsert(sessionID, patch)
}
