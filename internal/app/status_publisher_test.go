package app

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/pscheid92/sessionhub/internal/adapter/memstore"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/registry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusPublisher_MirrorsRegistry(t *testing.T) {
	mirror := memstore.NewMirror("inst-a")
	pub := NewStatusPublisher(mirror)
	f := newFixture(t)
	sessions := registry.New(f.clock, pub)

	sessions.Upsert("1", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusRestoring)})
	sessions.Upsert("1", domain.SessionPatch{
		Status:   domain.StatusPtr(domain.StatusConnected),
		Healthy:  domain.BoolPtr(true),
		Identity: &domain.Identity{DisplayName: "Ada"},
	})
	sessions.Upsert("2", domain.SessionPatch{Status: domain.StatusPtr(domain.StatusFailed)})
	sessions.Remove("2")
	pub.Flush(context.Background())

	entries, err := mirror.List(context.Background())
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "1", entries[0].SessionID)
	assert.Equal(t, domain.StatusConnected, entries[0].Status)
	assert.True(t, entries[0].Healthy)
	assert.Equal(t, "Ada", entries[0].DisplayName)
	assert.Equal(t, "inst-a", entries[0].Instance)
}

type failingMirror struct{ domain.StatusMirror }

func (failingMirror) Put(context.Context, domain.StatusEntry) error { return errors.New("redis down") }

func TestStatusPublisher_MirrorErrorsAreLogged(t *testing.T) {
	pub := NewStatusPublisher(failingMirror{})

	pub.SessionChanged(domain.Session{ID: "1"})

	assert.NotPanics(t, func() { pub.Flush(context.Background()) })
}

func TestStatusPublisher_RunFlushesOnShutdown(t *testing.T) {
	mirror := memstore.NewMirror("inst-a")
	pub := NewStatusPublisher(mirror)
	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		pub.Run(ctx)
		close(done)
	}()

	pub.SessionChanged(domain.Session{ID: "7", Status: domain.StatusConnected})
	assert.Eventually(t, func() bool {
		entries, _ := mirror.List(context.Background())
		return len(entries) == 1
	}, time.Second, 5*time.Millisecond)

	cancel()
	<-done
}
