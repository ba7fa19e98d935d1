package app

import (
	"context"
	"encoding/json"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/credstore"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/registry"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- Mock implementations ---

type fakeConn struct {
	id       string
	identity domain.Identity
}

func (c *fakeConn) SessionID() string { return c.id }
func (c *fakeConn) Identity() (domain.Identity, bool) {
	return c.identity, !c.identity.IsZero()
}

type closeCall struct {
	sessionID string
	mode      domain.CloseMode
}

type mockSupervisor struct {
	openFn  func(ctx context.Context, sessionID string) (domain.Connection, error)
	pairFn  func(ctx context.Context, sessionID, phone string) (domain.Connection, string, error)
	closeFn func(ctx context.Context, sessionID string, mode domain.CloseMode) (bool, error)

	mu     sync.Mutex
	opens  map[string]int
	pairs  []string
	closes []closeCall
}

func (m *mockSupervisor) Open(ctx context.Context, sessionID string) (domain.Connection, error) {
	m.mu.Lock()
	if m.opens == nil {
		m.opens = make(map[string]int)
	}
	m.opens[sessionID]++
	m.mu.Unlock()

	if m.openFn != nil {
		return m.openFn(ctx, sessionID)
	}
	return &fakeConn{id: sessionID}, nil
}

func (m *mockSupervisor) Pair(ctx context.Context, sessionID, phone string) (domain.Connection, string, error) {
	m.mu.Lock()
	m.pairs = append(m.pairs, sessionID)
	m.mu.Unlock()

	if m.pairFn != nil {
		return m.pairFn(ctx, sessionID, phone)
	}
	return &fakeConn{id: sessionID}, "ABCD-1234", nil
}

func (m *mockSupervisor) Close(ctx context.Context, sessionID string, mode domain.CloseMode) (bool, error) {
	m.mu.Lock()
	m.closes = append(m.closes, closeCall{sessionID: sessionID, mode: mode})
	m.mu.Unlock()

	if m.closeFn != nil {
		return m.closeFn(ctx, sessionID, mode)
	}
	return true, nil
}

func (m *mockSupervisor) openCount(sessionID string) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.opens[sessionID]
}

func (m *mockSupervisor) totalOpens() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	total := 0
	for _, n := range m.opens {
		total += n
	}
	return total
}

type mockCredentialRepo struct {
	listFn func(ctx context.Context) ([]domain.CredentialRecord, error)

	mu      sync.Mutex
	records map[string]json.RawMessage
	upserts int
}

func newMockCredentialRepo(records ...domain.CredentialRecord) *mockCredentialRepo {
	m := &mockCredentialRepo{records: make(map[string]json.RawMessage)}
	for _, r := range records {
		m.records[r.SessionID] = r.Blob
	}
	return m
}

func (m *mockCredentialRepo) List(ctx context.Context) ([]domain.CredentialRecord, error) {
	if m.listFn != nil {
		return m.listFn(ctx)
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]domain.CredentialRecord, 0, len(m.records))
	for id, blob := range m.records {
		out = append(out, domain.CredentialRecord{SessionID: id, Blob: blob})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SessionID < out[j].SessionID })
	return out, nil
}

func (m *mockCredentialRepo) Get(_ context.Context, sessionID string) (*domain.CredentialRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	blob, ok := m.records[sessionID]
	if !ok {
		return nil, domain.ErrCredentialNotFound
	}
	return &domain.CredentialRecord{SessionID: sessionID, Blob: blob}, nil
}

func (m *mockCredentialRepo) Upsert(_ context.Context, sessionID string, blob json.RawMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[sessionID] = blob
	m.upserts++
	return nil
}

func (m *mockCredentialRepo) Delete(_ context.Context, sessionID string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[sessionID]
	delete(m.records, sessionID)
	return ok, nil
}

func (m *mockCredentialRepo) has(sessionID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.records[sessionID]
	return ok
}

type mockLock struct {
	acquireFn func(ctx context.Context, sessionID string) (func(), error)
}

func (m *mockLock) Acquire(ctx context.Context, sessionID string) (func(), error) {
	return m.acquireFn(ctx, sessionID)
}

// --- Fixtures ---

const authBase = "/auth"

type fixture struct {
	fs       afero.Fs
	clock    *clockwork.FakeClock
	sessions *registry.Registry
	store    *credstore.Store
	creds    *mockCredentialRepo
	sup      *mockSupervisor
}

func newFixture(t *testing.T, records ...domain.CredentialRecord) *fixture {
	t.Helper()
	fs := afero.NewMemMapFs()
	creds := newMockCredentialRepo(records...)
	clock := clockwork.NewFakeClockAt(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC))
	return &fixture{
		fs:       fs,
		clock:    clock,
		sessions: registry.New(clock),
		store:    credstore.NewStore(fs, authBase, credstore.NewFileRestorer(fs), creds.Get),
		creds:    creds,
		sup:      &mockSupervisor{},
	}
}

func (f *fixture) writeCreds(t *testing.T, sessionID, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(f.fs, authBase+"/"+sessionID+"/creds.json", []byte(content), 0o600))
}

// closeWhileOpening reports the session's connection as closed from another goroutine
// and returns once the registry has seen the close. Meant to run inside an open.
func (f *fixture) closeWhileOpening(t *testing.T, sessionID string, loggedOut bool) {
	t.Helper()
	before := f.sessions.Closes(sessionID)
	go f.sink().OnClosed(context.Background(), sessionID, loggedOut)
	assert.Eventually(t, func() bool { return f.sessions.Closes(sessionID) > before }, time.Second, time.Millisecond)
}

// runAdvancing runs fn while repeatedly advancing the fake clock, so pacing and
// reconnect delays elapse without real waiting.
func runAdvancing(t *testing.T, clock *clockwork.FakeClock, step time.Duration, fn func()) {
	t.Helper()
	done := make(chan struct{})
	go func() {
		defer close(done)
		fn()
	}()

	deadline := time.After(5 * time.Second)
	for {
		select {
		case <-done:
			return
		case <-deadline:
			t.Fatal("timed out waiting for fake clock driven operation")
		case <-time.After(time.Millisecond):
			clock.Advance(step)
		}
	}
}
