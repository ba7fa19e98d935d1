package memstore

import (
	"context"
	"sort"
	"sync"

	"github.com/pscheid92/sessionhub/internal/domain"
)

// Mirror is an in-process StatusMirror. List only ever sees this instance.
type Mirror struct {
	instanceID string

	mu      sync.RWMutex
	entries map[string]domain.StatusEntry
}

var _ domain.StatusMirror = (*Mirror)(nil)

func NewMirror(instanceID string) *Mirror {
	return &Mirror{instanceID: instanceID, entries: make(map[string]domain.StatusEntry)}
}

func (m *Mirror) Put(_ context.Context, entry domain.StatusEntry) error {
	entry.Instance = m.instanceID
	m.mu.Lock()
	m.entries[entry.SessionID] = entry
	m.mu.Unlock()
	return nil
}

func (m *Mirror) Delete(_ context.Context, sessionID string) error {
	m.mu.Lock()
	delete(m.entries, sessionID)
	m.mu.Unlock()
	return nil
}

func (m *Mirror) List(context.Context) ([]domain.StatusEntry, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	out := make([]domain.StatusEntry, 0, len(m.entries))
	for _, e := range m.entries {
		out = append(out, e)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}
