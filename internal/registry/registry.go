// Package registry holds the in-memory view of every session this process manages.
package registry

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/domain"
)

var ErrClosed = errors.New("registry is closed")

// Observer is notified after every mutation, in mutation order.
// Observers must not mutate the registry.
type Observer interface {
	SessionChanged(s domain.Session)
	SessionRemoved(sessionID string)
}

// Registry is an internally synchronized map of sessions. Values are copied in and out,
// so readers never observe a partially applied patch.
type Registry struct {
	clock clockwork.Clock

	// notifyMu serializes writers so observers see mutations in order.
	notifyMu  sync.Mutex
	observers []Observer

	mu       sync.RWMutex
	sessions map[string]domain.Session
	inflight map[string]chan struct{}
	// closes counts close events per id, registered or not. It is never reset so a
	// snapshot taken before an open stays comparable after a Remove.
	closes map[string]uint64
	closed bool
}

func New(clock clockwork.Clock, observers ...Observer) *Registry {
	return &Registry{
		clock:     clock,
		sessions:  make(map[string]domain.Session),
		inflight:  make(map[string]chan struct{}),
		closes:    make(map[string]uint64),
		observers: observers,
	}
}

// Upsert applies patch to the session, creating it in StatusUnknown if absent.
func (r *Registry) Upsert(sessionID string, patch domain.SessionPatch) domain.Session {
	s, _ := r.update(sessionID, patch, func() bool { return true })
	return s
}

// Closes returns how many close events were noted for the session so far. Take it
// before opening a connection and hand it to CommitOpen.
func (r *Registry) Closes(sessionID string) uint64 {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.closes[sessionID]
}

// NoteClosed records that the supervisor reported the session's connection closed.
func (r *Registry) NoteClosed(sessionID string) {
	r.mu.Lock()
	r.closes[sessionID]++
	r.mu.Unlock()
}

// CommitOpen applies patch only if no close event was noted since closes was read.
// It reports false, leaving the entry untouched, when the connection went away while
// it was being opened.
func (r *Registry) CommitOpen(sessionID string, closes uint64, patch domain.SessionPatch) (domain.Session, bool) {
	return r.update(sessionID, patch, func() bool { return r.closes[sessionID] == closes })
}

// update applies patch when cond holds. cond runs under the write lock.
func (r *Registry) update(sessionID string, patch domain.SessionPatch, cond func() bool) (domain.Session, bool) {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	s, ok := r.sessions[sessionID]
	if !cond() {
		r.mu.Unlock()
		return s, false
	}
	if !ok {
		s = domain.Session{ID: sessionID, Status: domain.StatusUnknown}
	}
	s = apply(s, patch)
	s.UpdatedAt = r.clock.Now()
	r.sessions[sessionID] = s
	notify := !r.closed
	r.mu.Unlock()

	if notify {
		for _, o := range r.observers {
			o.SessionChanged(s)
		}
	}
	return s, true
}

func apply(s domain.Session, p domain.SessionPatch) domain.Session {
	if p.Status != nil {
		s.Status = *p.Status
	}
	if p.Healthy != nil {
		s.Healthy = *p.Healthy
	}
	if p.CredentialDir != nil {
		s.CredentialDir = *p.CredentialDir
	}
	if p.ClearConn {
		s.Conn = nil
	}
	if p.Conn != nil {
		s.Conn = p.Conn
	}
	if p.Identity != nil {
		s.Identity = *p.Identity
	}
	if p.LastError != nil {
		s.LastError = *p.LastError
	}
	return s
}

func (r *Registry) Get(sessionID string) (domain.Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s, ok := r.sessions[sessionID]
	return s, ok
}

// List returns a copy of all sessions sorted by id.
func (r *Registry) List() []domain.Session {
	r.mu.RLock()
	out := make([]domain.Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, s)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Remove erases a session. Only the logout flow calls this.
func (r *Registry) Remove(sessionID string) bool {
	r.notifyMu.Lock()
	defer r.notifyMu.Unlock()

	r.mu.Lock()
	_, ok := r.sessions[sessionID]
	delete(r.sessions, sessionID)
	notify := ok && !r.closed
	r.mu.Unlock()

	if notify {
		for _, o := range r.observers {
			o.SessionRemoved(sessionID)
		}
	}
	return ok
}

// IsConnected reports whether the session holds a healthy live handle.
func (r *Registry) IsConnected(sessionID string) bool {
	s, ok := r.Get(sessionID)
	return ok && s.Live() && s.Healthy
}

// Acquire marks an open or pair operation in flight. It fails with ErrSessionBusy while
// another operation runs and with ErrAlreadyConnected when a healthy live handle exists.
func (r *Registry) Acquire(sessionID string) (release func(), err error) {
	return r.acquire(sessionID, true)
}

// Reserve marks an operation in flight without the connected check. Logout and reconnect
// use it since they act on live sessions.
func (r *Registry) Reserve(sessionID string) (release func(), err error) {
	return r.acquire(sessionID, false)
}

// ReserveWait is Reserve, but waits for an in-flight operation on the session to finish
// instead of failing with ErrSessionBusy.
func (r *Registry) ReserveWait(ctx context.Context, sessionID string) (release func(), err error) {
	for {
		release, busy, err := r.tryAcquire(sessionID, false)
		if busy == nil {
			return release, err
		}
		select {
		case <-busy:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
}

func (r *Registry) acquire(sessionID string, rejectLive bool) (func(), error) {
	release, busy, err := r.tryAcquire(sessionID, rejectLive)
	if busy != nil {
		return nil, domain.ErrSessionBusy
	}
	return release, err
}

// tryAcquire returns the done channel of the running operation when the session is busy.
func (r *Registry) tryAcquire(sessionID string, rejectLive bool) (func(), <-chan struct{}, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return nil, nil, ErrClosed
	}
	if busy, ok := r.inflight[sessionID]; ok {
		return nil, busy, nil
	}
	if s, ok := r.sessions[sessionID]; rejectLive && ok && s.Live() && s.Healthy {
		return nil, nil, domain.ErrAlreadyConnected
	}
	done := make(chan struct{})
	r.inflight[sessionID] = done

	var once sync.Once
	return func() {
		once.Do(func() {
			r.mu.Lock()
			delete(r.inflight, sessionID)
			r.mu.Unlock()
			close(done)
		})
	}, nil, nil
}

// Close stops observer notifications and rejects new operations. It returns the sessions
// that still hold a live handle so the caller can shut them down.
func (r *Registry) Close() []domain.Session {
	r.mu.Lock()
	r.closed = true
	var live []domain.Session
	for _, s := range r.sessions {
		if s.Live() {
			live = append(live, s)
		}
	}
	r.mu.Unlock()

	sort.Slice(live, func(i, j int) bool { return live[i].ID < live[j].ID })
	return live
}
