// Command status-prune removes stale entries from the cluster status mirror, e.g. after an
// instance crashed without clearing its hash.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pscheid92/sessionhub/internal/adapter/redis"
	"github.com/pscheid92/sessionhub/internal/platform/logging"
	goredis "github.com/redis/go-redis/v9"
)

func main() {
	var (
		redisURL = flag.String("redis", os.Getenv("REDIS_URL"), "Redis URL (or set REDIS_URL env)")
		maxAge   = flag.Duration("max-age", time.Hour, "Remove entries not updated within this window")
		dryRun   = flag.Bool("dry-run", false, "Dry run mode (don't write to Redis)")
		verbose  = flag.Bool("verbose", false, "Verbose logging")
	)
	flag.Parse()

	if *redisURL == "" {
		log.Fatal("Redis URL required (--redis or REDIS_URL env)")
	}
	if *maxAge <= 0 {
		log.Fatal("--max-age must be positive")
	}

	level := "info"
	if *verbose {
		level = "debug"
	}
	logging.InitLogger(level, "text")

	opts, err := goredis.ParseURL(*redisURL)
	if err != nil {
		log.Fatalf("Failed to parse Redis URL: %v", err)
	}
	rdb := goredis.NewClient(opts)
	defer func() { _ = rdb.Close() }()

	ctx := context.Background()
	if err := rdb.Ping(ctx).Err(); err != nil {
		log.Fatalf("Failed to connect to Redis: %v", err)
	}
	slog.Info("Connected to Redis", "url", sanitizeURL(*redisURL))

	start := time.Now()
	cutoff := start.Add(-*maxAge)
	slog.Info("Pruning status mirror", "cutoff", cutoff.Format(time.RFC3339), "dry_run", *dryRun)

	result, err := redis.PruneStatus(ctx, rdb, cutoff, *dryRun)
	if err != nil {
		log.Fatalf("Prune failed: %v", err)
	}

	slog.Info("Prune summary",
		"scanned", result.Scanned,
		"removed", result.Removed,
		"malformed", result.Malformed,
		"duration_ms", time.Since(start).Milliseconds())
}

func sanitizeURL(url string) string {
	// Hide password in Redis URL for logging
	if strings.Contains(url, "@") {
		parts := strings.Split(url, "@")
		if len(parts) == 2 {
			credParts := strings.Split(parts[0], ":")
			if len(credParts) >= 2 {
				return credParts[0] + ":***@" + parts[1]
			}
		}
	}
	return url
}
