package app

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/registry"
)

const mirrorWriteTimeout = 2 * time.Second

// StatusPublisher forwards registry changes to a StatusMirror from a background loop.
// Pending changes per session are coalesced so a slow mirror never blocks the registry.
type StatusPublisher struct {
	mirror domain.StatusMirror

	mu      sync.Mutex
	pending map[string]*domain.StatusEntry // nil entry means removal
	wake    chan struct{}
}

var _ registry.Observer = (*StatusPublisher)(nil)

func NewStatusPublisher(mirror domain.StatusMirror) *StatusPublisher {
	return &StatusPublisher{
		mirror:  mirror,
		pending: make(map[string]*domain.StatusEntry),
		wake:    make(chan struct{}, 1),
	}
}

func (p *StatusPublisher) SessionChanged(s domain.Session) {
	identity := s.ResolvedIdentity()
	p.enqueue(s.ID, &domain.StatusEntry{
		SessionID:   s.ID,
		Status:      s.Status,
		Healthy:     s.Healthy,
		DisplayName: identity.DisplayName,
		ProtocolID:  identity.ProtocolID,
		UpdatedAt:   s.UpdatedAt,
	})
}

func (p *StatusPublisher) SessionRemoved(sessionID string) {
	p.enqueue(sessionID, nil)
}

func (p *StatusPublisher) enqueue(sessionID string, entry *domain.StatusEntry) {
	p.mu.Lock()
	p.pending[sessionID] = entry
	p.mu.Unlock()

	select {
	case p.wake <- struct{}{}:
	default:
	}
}

// Run publishes until ctx is cancelled, then flushes what is still pending.
func (p *StatusPublisher) Run(ctx context.Context) {
	for {
		select {
		case <-p.wake:
			p.Flush(ctx)
		case <-ctx.Done():
			p.Flush(context.WithoutCancel(ctx))
			return
		}
	}
}

// Flush writes all pending changes.
func (p *StatusPublisher) Flush(ctx context.Context) {
	p.mu.Lock()
	batch := p.pending
	p.pending = make(map[string]*domain.StatusEntry)
	p.mu.Unlock()

	for sessionID, entry := range batch {
		wctx, cancel := context.WithTimeout(ctx, mirrorWriteTimeout)
		var err error
		if entry == nil {
			err = p.mirror.Delete(wctx, sessionID)
		} else {
			err = p.mirror.Put(wctx, *entry)
		}
		cancel()
		if err != nil {
			slog.WarnContext(ctx, "Failed to mirror session status", "session_id", sessionID, "error", err)
		}
	}
}
