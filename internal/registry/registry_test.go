package registry

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeConn struct {
	id       string
	identity domain.Identity
}

func (c *fakeConn) SessionID() string { return c.id }
func (c *fakeConn) Identity() (domain.Identity, bool) {
	return c.identity, !c.identity.IsZero()
}

type recordingObserver struct {
	mu      sync.Mutex
	changed []domain.Session
	removed []string
}

func (o *recordingObserver) SessionChanged(s domain.Session) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.changed = append(o.changed, s)
}

func (o *recordingObserver) SessionRemoved(id string) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.removed = append(o.removed, id)
}

func TestUpsert_CreatesAndPatches(t *testing.T) {
	clock := clockwork.NewFakeClockAt(time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	r := New(clock)

	s := r.Upsert("100", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusRestoring), CredentialDir: domain.StringPtr("/auth/100")})
	assert.Equal(t, domain.StatusRestoring, s.Status)
	assert.Equal(t, "/auth/100", s.CredentialDir)
	assert.Equal(t, clock.Now(), s.UpdatedAt)

	clock.Advance(time.Minute)
	conn := &fakeConn{id: "100"}
	s = r.Upsert("100", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusConnected), Healthy: domain.BoolPtr(true), Conn: conn})
	assert.Equal(t, "/auth/100", s.CredentialDir)
	assert.Same(t, conn, s.Conn)
	assert.True(t, s.Healthy)
	assert.Equal(t, clock.Now(), s.UpdatedAt)

	s = r.Upsert("100", domain.SessionPatch{ClearConn: true, Healthy: domain.BoolPtr(false)})
	assert.Nil(t, s.Conn)
	assert.False(t, s.Healthy)
	assert.Equal(t, domain.StatusConnected, s.Status)
}

func TestUpsert_UnknownIsDefaultStatus(t *testing.T) {
	r := New(clockwork.NewFakeClock())

	s := r.Upsert("1", domain.SessionPatch{})

	assert.Equal(t, domain.StatusUnknown, s.Status)
}

func TestGetReturnsCopy(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	r.Upsert("1", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusConnected)})

	s, ok := r.Get("1")
	require.True(t, ok)
	s.Status = domain.StatusFailed

	again, _ := r.Get("1")
	assert.Equal(t, domain.StatusConnected, again.Status)

	_, ok = r.Get("missing")
	assert.False(t, ok)
}

func TestListIsSortedSnapshot(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	for _, id := range []string{"300", "100", "200"} {
		r.Upsert(id, domain.SessionPatch{})
	}

	list := r.List()
	r.Upsert("050", domain.SessionPatch{})

	require.Len(t, list, 3)
	assert.Equal(t, "100", list[0].ID)
	assert.Equal(t, "200", list[1].ID)
	assert.Equal(t, "300", list[2].ID)
	assert.Len(t, r.List(), 4)
}

func TestRemove(t *testing.T) {
	obs := &recordingObserver{}
	r := New(clockwork.NewFakeClock(), obs)
	r.Upsert("1", domain.SessionPatch{})

	assert.True(t, r.Remove("1"))
	assert.False(t, r.Remove("1"))
	_, ok := r.Get("1")
	assert.False(t, ok)
	assert.Equal(t, []string{"1"}, obs.removed)
}

func TestObserversSeeEveryMutation(t *testing.T) {
	obs := &recordingObserver{}
	r := New(clockwork.NewFakeClock(), obs)

	r.Upsert("1", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusRestoring)})
	r.Upsert("1", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusConnected)})

	require.Len(t, obs.changed, 2)
	assert.Equal(t, domain.StatusRestoring, obs.changed[0].Status)
	assert.Equal(t, domain.StatusConnected, obs.changed[1].Status)
}

func TestAcquire(t *testing.T) {
	r := New(clockwork.NewFakeClock())

	release, err := r.Acquire("1")
	require.NoError(t, err)

	_, err = r.Acquire("1")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)
	_, err = r.Reserve("1")
	assert.ErrorIs(t, err, domain.ErrSessionBusy)

	release()
	release()

	r.Upsert("1", domain.SessionPatch{Conn: &fakeConn{id: "1"}, Healthy: domain.BoolPtr(true)})
	_, err = r.Acquire("1")
	assert.ErrorIs(t, err, domain.ErrAlreadyConnected)
	assert.True(t, r.IsConnected("1"))

	release, err = r.Reserve("1")
	require.NoError(t, err)
	release()

	r.Upsert("1", domain.SessionPatch{Healthy: domain.BoolPtr(false)})
	release, err = r.Acquire("1")
	require.NoError(t, err, "stale unhealthy handle must not block a new open")
	release()
	assert.False(t, r.IsConnected("1"))
}

func TestAcquire_OnlyOneConcurrentWinner(t *testing.T) {
	r := New(clockwork.NewFakeClock())

	var wg sync.WaitGroup
	var mu sync.Mutex
	winners := 0
	for range 20 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := r.Acquire("1"); err == nil {
				mu.Lock()
				winners++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, winners)
}

func TestCommitOpen_RejectedAfterClose(t *testing.T) {
	obs := &recordingObserver{}
	r := New(clockwork.NewFakeClock(), obs)
	r.Upsert("1", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusRestoring)})

	closes := r.Closes("1")
	r.NoteClosed("1")

	s, ok := r.CommitOpen("1", closes, domain.SessionPatch{
		Status:  domain.StatusPtr(domain.StatusConnected),
		Healthy: domain.BoolPtr(true),
		Conn:    &fakeConn{id: "1"},
	})

	assert.False(t, ok)
	assert.Equal(t, domain.StatusRestoring, s.Status)
	assert.False(t, r.IsConnected("1"))
	assert.Len(t, obs.changed, 1)
}

func TestCommitOpen_AppliesWithoutClose(t *testing.T) {
	r := New(clockwork.NewFakeClock())

	closes := r.Closes("1")
	s, ok := r.CommitOpen("1", closes, domain.SessionPatch{
		Status:  domain.StatusPtr(domain.StatusConnected),
		Healthy: domain.BoolPtr(true),
		Conn:    &fakeConn{id: "1"},
	})

	require.True(t, ok)
	assert.Equal(t, domain.StatusConnected, s.Status)
	assert.True(t, r.IsConnected("1"))
}

func TestNoteClosed_SurvivesRemove(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	r.Upsert("1", domain.SessionPatch{})

	before := r.Closes("1")
	r.NoteClosed("1")
	r.Remove("1")

	assert.Equal(t, before+1, r.Closes("1"))
	_, ok := r.CommitOpen("1", before, domain.SessionPatch{})
	assert.False(t, ok)
	_, present := r.Get("1")
	assert.False(t, present)
}

func TestReserveWait_WaitsForRelease(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	release, err := r.Acquire("1")
	require.NoError(t, err)

	acquired := make(chan func(), 1)
	go func() {
		waited, err := r.ReserveWait(context.Background(), "1")
		if err == nil {
			acquired <- waited
		}
	}()

	select {
	case <-acquired:
		t.Fatal("ReserveWait returned while the session was busy")
	case <-time.After(20 * time.Millisecond):
	}

	release()

	select {
	case waited := <-acquired:
		_, err := r.Reserve("1")
		assert.ErrorIs(t, err, domain.ErrSessionBusy)
		waited()
	case <-time.After(2 * time.Second):
		t.Fatal("ReserveWait did not return after release")
	}
}

func TestReserveWait_Cancelled(t *testing.T) {
	r := New(clockwork.NewFakeClock())
	release, err := r.Acquire("1")
	require.NoError(t, err)
	defer release()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err = r.ReserveWait(ctx, "1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClose(t *testing.T) {
	obs := &recordingObserver{}
	r := New(clockwork.NewFakeClock(), obs)
	r.Upsert("1", domain.SessionPatch{Conn: &fakeConn{id: "1"}})
	r.Upsert("2", domain.SessionPatch{})

	live := r.Close()

	require.Len(t, live, 1)
	assert.Equal(t, "1", live[0].ID)
	_, err := r.Acquire("3")
	assert.ErrorIs(t, err, ErrClosed)

	r.Upsert("2", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusDisconnected)})
	assert.Len(t, obs.changed, 2)
}

func TestConcurrentListNeverTorn(t *testing.T) {
	r := New(clockwork.NewRealClock())
	ids := make([]string, 10)
	for i := range ids {
		ids[i] = fmt.Sprintf("%03d", i)
	}

	var wg sync.WaitGroup
	stop := make(chan struct{})

	for w := range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; ; i++ {
				select {
				case <-stop:
					return
				default:
				}
				id := ids[(i+w)%len(ids)]
				if i%2 == 0 {
					r.Upsert(id, domain.SessionPatch{Status: domain.StatusPtr(domain.StatusConnected), Healthy: domain.BoolPtr(true), LastError: domain.StringPtr("")})
				} else {
					r.Upsert(id, domain.SessionPatch{Status: domain.StatusPtr(domain.StatusFailed), Healthy: domain.BoolPtr(false), LastError: domain.StringPtr("boom")})
				}
			}
		}()
	}

	for range 500 {
		for _, s := range r.List() {
			switch s.Status {
			case domain.StatusConnected:
				require.True(t, s.Healthy)
				require.Empty(t, s.LastError)
			case domain.StatusFailed:
				require.False(t, s.Healthy)
				require.Equal(t, "boom", s.LastError)
			}
		}
	}
	close(stop)
	wg.Wait()
}
