package redis

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pscheid92/sessionhub/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	sessionLockPrefix     = "session:lock:"
	lockReleaseTimeout    = 2 * time.Second
	defaultSessionLockTTL = 2 * time.Minute
)

// Only the owner may renew or release; the token is compared atomically.
var (
	renewLockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("PEXPIRE", KEYS[1], ARGV[2])
else
	return 0
end
`)
	releaseLockScript = goredis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
else
	return 0
end
`)
)

// SessionLock serializes lifecycle operations on a session across instances. The lock
// is leased with a TTL and renewed in the background while held, so a crashed holder
// releases it eventually.
type SessionLock struct {
	rdb        goredis.Cmdable
	instanceID string
	ttl        time.Duration
}

var _ domain.SessionLock = (*SessionLock)(nil)

func NewSessionLock(rdb goredis.Cmdable, instanceID string, ttl time.Duration) *SessionLock {
	if ttl <= 0 {
		ttl = defaultSessionLockTTL
	}
	return &SessionLock{rdb: rdb, instanceID: instanceID, ttl: ttl}
}

func lockKey(sessionID string) string {
	return sessionLockPrefix + sessionID
}

// Acquire takes the lock or returns domain.ErrLockHeld. The returned release func is
// safe to call more than once.
func (l *SessionLock) Acquire(ctx context.Context, sessionID string) (func(), error) {
	key := lockKey(sessionID)
	token := l.instanceID + ":" + uuid.NewString()

	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire session lock: %w", err)
	}
	if !ok {
		return nil, fmt.Errorf("session %s: %w", sessionID, domain.ErrLockHeld)
	}

	stop := make(chan struct{})
	done := make(chan struct{})
	go l.renew(key, token, stop, done)

	var once sync.Once
	return func() {
		once.Do(func() {
			close(stop)
			<-done

			ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
			defer cancel()
			if err := releaseLockScript.Run(ctx, l.rdb, []string{key}, token).Err(); err != nil {
				slog.Warn("Failed to release session lock", "session_id", sessionID, "error", err)
			}
		})
	}, nil
}

func (l *SessionLock) renew(key, token string, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)
	ticker := time.NewTicker(l.ttl / 2)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			ctx, cancel := context.WithTimeout(context.Background(), lockReleaseTimeout)
			n, err := renewLockScript.Run(ctx, l.rdb, []string{key}, token, l.ttl.Milliseconds()).Int64()
			cancel()
			switch {
			case err != nil && !errors.Is(err, goredis.Nil):
				slog.Warn("Failed to renew session lock", "key", key, "error", err)
			case n == 0:
				slog.Warn("Session lock lost before release", "key", key)
				return
			}
		}
	}
}
