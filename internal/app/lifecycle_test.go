package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testReconnectDelay = time.Second

func (f *fixture) lifecycle() *Lifecycle {
	return NewLifecycle(f.creds, f.store, f.sessions, f.sup, nil, f.clock, testReconnectDelay)
}

func TestLogout_RemovesEverything(t *testing.T) {
	f := newFixture(t, domain.CredentialRecord{SessionID: "15551234", Blob: []byte(`{"me":{}}`)})
	f.writeCreds(t, "15551234", `{"me":{}}`)
	f.sessions.Upsert("15551234", domain.SessionPatch{
		Conn:    &fakeConn{id: "15551234"},
		Healthy: domain.BoolPtr(true),
		Status:  domain.StatusPtr(domain.StatusConnected),
	})

	id, err := f.lifecycle().Logout(context.Background(), "+1 555 1234")

	require.NoError(t, err)
	assert.Equal(t, "15551234", id)
	assert.Equal(t, []closeCall{{sessionID: "15551234", mode: domain.CloseLogout}}, f.sup.closes)
	assert.False(t, f.creds.has("15551234"))
	assert.False(t, f.store.HasCredentials("15551234"))
	_, ok := f.sessions.Get("15551234")
	assert.False(t, ok)
}

func TestLogout_GatewayErrorStillPurges(t *testing.T) {
	f := newFixture(t, domain.CredentialRecord{SessionID: "1", Blob: []byte(`{}`)})
	f.sup.closeFn = func(context.Context, string, domain.CloseMode) (bool, error) {
		return false, errors.New("gateway unreachable")
	}

	_, err := f.lifecycle().Logout(context.Background(), "1")

	require.NoError(t, err)
	assert.False(t, f.creds.has("1"))
}

func TestLogout_UnknownSession(t *testing.T) {
	f := newFixture(t)
	f.sup.closeFn = func(context.Context, string, domain.CloseMode) (bool, error) { return false, nil }

	_, err := f.lifecycle().Logout(context.Background(), "15551234")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestLogout_InvalidIdentifier(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle().Logout(context.Background(), "--")

	assert.ErrorIs(t, err, domain.ErrInvalidIdentifier)
	assert.Empty(t, f.sup.closes)
}

func TestReconnect_ReopensAfterDelay(t *testing.T) {
	f := newFixture(t, domain.CredentialRecord{SessionID: "15551234", Blob: []byte(`{"me":{}}`)})
	f.writeCreds(t, "15551234", `{"me":{}}`)
	f.sessions.Upsert("15551234", domain.SessionPatch{
		Conn:    &fakeConn{id: "15551234"},
		Healthy: domain.BoolPtr(true),
		Status:  domain.StatusPtr(domain.StatusConnected),
	})
	l := f.lifecycle()

	done := make(chan struct{})
	var s domain.Session
	var err error
	go func() {
		defer close(done)
		s, err = l.Reconnect(context.Background(), "15551234")
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	mid, _ := f.sessions.Get("15551234")
	assert.Equal(t, domain.StatusDisconnected, mid.Status)
	assert.False(t, mid.Live())
	assert.Zero(t, f.sup.openCount("15551234"))

	f.clock.Advance(testReconnectDelay)
	<-done

	require.NoError(t, err)
	assert.Equal(t, domain.StatusConnected, s.Status)
	assert.True(t, s.Healthy)
	assert.Equal(t, []closeCall{{sessionID: "15551234", mode: domain.CloseDisconnect}}, f.sup.closes)
	assert.Equal(t, 1, f.sup.openCount("15551234"))
	assert.True(t, f.creds.has("15551234"), "reconnect keeps credentials")
	assert.True(t, f.store.HasCredentials("15551234"))
}

func TestReconnect_ConcurrentCallsShareOneAttempt(t *testing.T) {
	f := newFixture(t)
	f.writeCreds(t, "1", `{}`)
	l := f.lifecycle()

	var wg sync.WaitGroup
	results := make([]error, 2)
	start := func(i int) {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, results[i] = l.Reconnect(context.Background(), "1")
		}()
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	start(0)
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))
	start(1)
	time.Sleep(20 * time.Millisecond)
	f.clock.Advance(testReconnectDelay)
	wg.Wait()

	assert.NoError(t, results[0])
	assert.NoError(t, results[1])
	assert.Equal(t, 1, f.sup.openCount("1"))
}

func TestReconnect_UnknownSession(t *testing.T) {
	f := newFixture(t)

	_, err := f.lifecycle().Reconnect(context.Background(), "15551234")

	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	assert.Zero(t, f.sup.totalOpens())
}

func TestReconnect_OpenFailureMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.writeCreds(t, "1", `{}`)
	f.sup.openFn = func(context.Context, string) (domain.Connection, error) {
		return nil, errors.New("handshake rejected")
	}
	l := f.lifecycle()

	var err error
	runAdvancing(t, f.clock, testReconnectDelay, func() {
		_, err = l.Reconnect(context.Background(), "1")
	})

	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
	s, ok := f.sessions.Get("1")
	require.True(t, ok)
	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.Equal(t, "handshake rejected", s.LastError)
	assert.True(t, f.store.HasCredentials("1"))
}

func TestReconnect_CancelledDuringDelay(t *testing.T) {
	f := newFixture(t)
	f.writeCreds(t, "1", `{}`)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := f.lifecycle().Reconnect(ctx, "1")

	assert.ErrorIs(t, err, context.Canceled)
	assert.Zero(t, f.sup.totalOpens())
}

func TestReconnect_CloseDuringOpenMarksFailed(t *testing.T) {
	f := newFixture(t)
	f.writeCreds(t, "1", `{}`)
	f.sup.openFn = func(ctx context.Context, id string) (domain.Connection, error) {
		f.sink().OnClosed(ctx, id, false)
		return &fakeConn{id: id}, nil
	}
	l := f.lifecycle()

	var err error
	runAdvancing(t, f.clock, testReconnectDelay, func() {
		_, err = l.Reconnect(context.Background(), "1")
	})

	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
	s, _ := f.sessions.Get("1")
	assert.Equal(t, domain.StatusFailed, s.Status)
	assert.False(t, s.Live())
}

func TestReconnect_RemoteLogoutDuringOpenPurges(t *testing.T) {
	f := newFixture(t, domain.CredentialRecord{SessionID: "15551234", Blob: []byte(`{}`)})
	f.writeCreds(t, "15551234", `{}`)
	f.sup.openFn = func(_ context.Context, id string) (domain.Connection, error) {
		f.closeWhileOpening(t, id, true)
		return &fakeConn{id: id}, nil
	}
	l := f.lifecycle()

	var err error
	runAdvancing(t, f.clock, testReconnectDelay, func() {
		_, err = l.Reconnect(context.Background(), "15551234")
	})

	assert.ErrorIs(t, err, domain.ErrCapabilityUnavailable)
	require.Eventually(t, func() bool {
		_, ok := f.sessions.Get("15551234")
		return !ok && !f.creds.has("15551234")
	}, time.Second, time.Millisecond)
	assert.False(t, f.store.HasCredentials("15551234"))
}

func TestReconnect_CallerCancelDoesNotAbortSharedAttempt(t *testing.T) {
	f := newFixture(t)
	f.writeCreds(t, "1", `{}`)
	l := f.lifecycle()

	first, cancelFirst := context.WithCancel(context.Background())
	firstErr := make(chan error, 1)
	go func() {
		_, err := l.Reconnect(first, "1")
		firstErr <- err
	}()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, f.clock.BlockUntilContext(ctx, 1))

	secondDone := make(chan struct{})
	var second domain.Session
	var secondErr error
	go func() {
		defer close(secondDone)
		second, secondErr = l.Reconnect(context.Background(), "1")
	}()
	time.Sleep(20 * time.Millisecond)

	cancelFirst()
	assert.ErrorIs(t, <-firstErr, context.Canceled)

	f.clock.Advance(testReconnectDelay)
	<-secondDone

	require.NoError(t, secondErr)
	assert.Equal(t, domain.StatusConnected, second.Status)
	assert.Equal(t, 1, f.sup.openCount("1"))
	assert.True(t, f.sessions.IsConnected("1"))
}
