package memstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/domain"
)

// Lock is an in-process SessionLock. Leases expire after ttl like the Redis variant.
type Lock struct {
	clock clockwork.Clock
	ttl   time.Duration

	mu      sync.Mutex
	holders map[string]lease
	nextID  uint64
}

type lease struct {
	id      uint64
	expires time.Time
}

var _ domain.SessionLock = (*Lock)(nil)

func NewLock(clock clockwork.Clock, ttl time.Duration) *Lock {
	return &Lock{clock: clock, ttl: ttl, holders: make(map[string]lease)}
}

func (l *Lock) Acquire(_ context.Context, sessionID string) (func(), error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.clock.Now()
	if held, ok := l.holders[sessionID]; ok && now.Before(held.expires) {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrLockHeld)
	}

	l.nextID++
	id := l.nextID
	l.holders[sessionID] = lease{id: id, expires: now.Add(l.ttl)}

	var once sync.Once
	return func() {
		once.Do(func() {
			l.mu.Lock()
			defer l.mu.Unlock()
			if held, ok := l.holders[sessionID]; ok && held.id == id {
				delete(l.holders, sessionID)
			}
		})
	}, nil
}
