package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

const (
	statusKeyPrefix = "sessions:status:"
	// statusKeyTTL lets the hash of a crashed instance expire; every write refreshes it.
	statusKeyTTL  = 24 * time.Hour
	scanBatchSize = 100
)

// StatusMirror keeps one hash per instance, field = session id, value = JSON status.
type StatusMirror struct {
	rdb        goredis.Cmdable
	instanceID string
}

var _ domain.StatusMirror = (*StatusMirror)(nil)

func NewStatusMirror(rdb goredis.Cmdable, instanceID string) *StatusMirror {
	return &StatusMirror{rdb: rdb, instanceID: instanceID}
}

func (m *StatusMirror) key() string {
	return statusKeyPrefix + m.instanceID
}

func (m *StatusMirror) Put(ctx context.Context, entry domain.StatusEntry) error {
	entry.Instance = m.instanceID
	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal status entry: %w", err)
	}

	pipe := m.rdb.TxPipeline()
	pipe.HSet(ctx, m.key(), entry.SessionID, data)
	pipe.Expire(ctx, m.key(), statusKeyTTL)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("publish session status: %w", err)
	}
	return nil
}

func (m *StatusMirror) Delete(ctx context.Context, sessionID string) error {
	if err := m.rdb.HDel(ctx, m.key(), sessionID).Err(); err != nil {
		return fmt.Errorf("remove session status: %w", err)
	}
	return nil
}

// List merges the hashes of every instance, sorted by session id then instance.
// Undecodable fields are skipped.
func (m *StatusMirror) List(ctx context.Context) ([]domain.StatusEntry, error) {
	var entries []domain.StatusEntry

	iter := m.rdb.Scan(ctx, 0, statusKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := m.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", key, err)
		}
		for field, raw := range fields {
			var entry domain.StatusEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				slog.WarnContext(ctx, "Skipping malformed status entry", "key", key, "field", field, "error", err)
				continue
			}
			entries = append(entries, entry)
		}
	}
	if err := iter.Err(); err != nil {
		return nil, fmt.Errorf("scan status keys: %w", err)
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].SessionID != entries[j].SessionID {
			return entries[i].SessionID < entries[j].SessionID
		}
		return entries[i].Instance < entries[j].Instance
	})
	return entries, nil
}

// Clear drops this instance's hash; called on graceful shutdown.
func (m *StatusMirror) Clear(ctx context.Context) error {
	return m.rdb.Del(ctx, m.key()).Err()
}
