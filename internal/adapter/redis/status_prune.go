package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/pscheid92/sessionhub/internal/domain"
	goredis "github.com/redis/go-redis/v9"
)

// PruneResult summarises a PruneStatus run.
type PruneResult struct {
	Scanned   int
	Removed   int
	Malformed int
}

// PruneStatus removes mirrored status entries last updated before cutoff, across all
// instances. Undecodable entries are removed as well. With dryRun nothing is written.
func PruneStatus(ctx context.Context, rdb goredis.Cmdable, cutoff time.Time, dryRun bool) (PruneResult, error) {
	var result PruneResult

	iter := rdb.Scan(ctx, 0, statusKeyPrefix+"*", scanBatchSize).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		fields, err := rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return result, fmt.Errorf("read %s: %w", key, err)
		}

		var stale []string
		for field, raw := range fields {
			result.Scanned++

			var entry domain.StatusEntry
			if err := json.Unmarshal([]byte(raw), &entry); err != nil {
				slog.DebugContext(ctx, "Malformed status entry", "key", key, "field", field)
				result.Malformed++
				stale = append(stale, field)
				continue
			}
			if entry.UpdatedAt.Before(cutoff) {
				slog.DebugContext(ctx, "Stale status entry", "key", key, "session_id", field, "updated_at", entry.UpdatedAt.Format(time.RFC3339))
				stale = append(stale, field)
			}
		}

		result.Removed += len(stale)
		if dryRun || len(stale) == 0 {
			continue
		}
		if err := rdb.HDel(ctx, key, stale...).Err(); err != nil {
			return result, fmt.Errorf("hdel %s: %w", key, err)
		}
	}
	if err := iter.Err(); err != nil {
		return result, fmt.Errorf("scan status keys: %w", err)
	}

	return result, nil
}
