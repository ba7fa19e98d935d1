package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/adapter/gateway"
	"github.com/pscheid92/sessionhub/internal/adapter/httpserver"
	"github.com/pscheid92/sessionhub/internal/adapter/memstore"
	"github.com/pscheid92/sessionhub/internal/adapter/metrics"
	"github.com/pscheid92/sessionhub/internal/adapter/postgres"
	"github.com/pscheid92/sessionhub/internal/adapter/redis"
	"github.com/pscheid92/sessionhub/internal/app"
	"github.com/pscheid92/sessionhub/internal/credstore"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/config"
	"github.com/pscheid92/sessionhub/internal/platform/crypto"
	"github.com/pscheid92/sessionhub/internal/platform/logging"
	"github.com/pscheid92/sessionhub/internal/platform/version"
	"github.com/pscheid92/sessionhub/internal/registry"
	goredis "github.com/redis/go-redis/v9"
	"github.com/spf13/afero"
)

const shutdownTimeout = 10 * time.Second

type coordination struct {
	lock   domain.SessionLock
	mirror domain.StatusMirror
	rdb    *goredis.Client
	checks []httpserver.HealthCheck
}

func setupConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		// Use log before slog is initialized
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.InstanceID == "" {
		cfg.InstanceID = uuid.NewString()
	}
	return cfg
}

func setupDB(cfg *config.Config, storage *metrics.StorageMetrics) *pgxpool.Pool {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	pool, err := postgres.Connect(ctx, cfg.DatabaseURL, postgres.NewMetricsTracer(storage))
	if err != nil {
		slog.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}

	if err := postgres.RunMigrationsWithLock(ctx, pool); err != nil {
		slog.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	return pool
}

// setupCoordination uses Redis when configured and falls back to in-process
// implementations for single-instance deployments.
func setupCoordination(ctx context.Context, cfg *config.Config, clock clockwork.Clock, storage *metrics.StorageMetrics) coordination {
	if cfg.RedisURL == "" {
		slog.Info("REDIS_URL not set, using in-process session lock and status mirror")
		return coordination{
			lock:   memstore.NewLock(clock, cfg.SessionLockTTL),
			mirror: memstore.NewMirror(cfg.InstanceID),
		}
	}

	rdb, err := redis.NewClient(ctx, cfg.RedisURL, storage)
	if err != nil {
		slog.Error("Failed to connect to Redis", "error", err)
		os.Exit(1)
	}

	return coordination{
		lock:   redis.NewSessionLock(rdb, cfg.InstanceID, cfg.SessionLockTTL),
		mirror: redis.NewStatusMirror(rdb, cfg.InstanceID),
		rdb:    rdb,
		checks: []httpserver.HealthCheck{{Name: "redis", Check: redis.Check(rdb)}},
	}
}

func runRestoration(ctx context.Context, restorer *app.Restorer) {
	summary, err := restorer.Run(ctx)
	if err != nil {
		slog.Error("Restoration failed", "error", err)
		return
	}
	slog.Info("Restoration finished",
		"discovered", summary.Discovered,
		"restored", summary.Restored,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
}

func runGracefulShutdown(ctx context.Context, srv *httpserver.Server, sessions *registry.Registry, gw *gateway.Client, coord coordination) <-chan struct{} {
	done := make(chan struct{})

	go func() {
		<-ctx.Done()
		slog.Info("Shutdown signal received, cleaning up...")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		if err := srv.Shutdown(shutdownCtx); err != nil {
			slog.Error("Server shutdown error", "error", err)
		}

		gw.CloseAll(shutdownCtx)
		closed := sessions.Close()
		slog.Info("Sessions released", "count", len(closed))

		if mirror, ok := coord.mirror.(*redis.StatusMirror); ok {
			if err := mirror.Clear(shutdownCtx); err != nil {
				slog.Warn("Failed to clear status mirror", "error", err)
			}
		}
		if coord.rdb != nil {
			_ = coord.rdb.Close()
		}

		close(done)
	}()

	return done
}

func main() {
	clock := clockwork.NewRealClock()

	cfg := setupConfig()

	logging.InitLogger(cfg.LogLevel, cfg.LogFormat)
	v := version.Get()
	slog.Info("Application starting", "env", cfg.AppEnv, "port", cfg.Port, "instance", cfg.InstanceID, "version", v.Version, "commit", v.Commit)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	promRegistry := metrics.NewRegistry(metrics.BuildInfo{Version: v.Version, Commit: v.Commit, Instance: cfg.InstanceID})
	storageMetrics := metrics.NewStorageMetrics(promRegistry)
	sessionMetrics := metrics.NewSessionMetrics(promRegistry)
	gatewayMetrics := metrics.NewGatewayMetrics(promRegistry)
	httpMetrics := metrics.NewHTTPMetrics(promRegistry)

	pool := setupDB(cfg, storageMetrics)
	defer pool.Close()

	cryptoSvc, err := crypto.New(cfg.CredentialEncryptionKey)
	if err != nil {
		slog.Error("Failed to create crypto service", "error", err)
		os.Exit(1)
	}
	creds := postgres.NewCredentialRepo(pool, cryptoSvc)

	coord := setupCoordination(ctx, cfg, clock, storageMetrics)

	publisher := app.NewStatusPublisher(coord.mirror)
	go publisher.Run(ctx)

	sessions := registry.New(clock, sessionMetrics, publisher)

	fs := afero.NewOsFs()
	store := credstore.NewStore(fs, cfg.AuthDir, credstore.NewFileRestorer(fs), creds.Get)
	sink := app.NewEventSink(creds, store, sessions, clock)

	gw, err := gateway.New(cfg.GatewayURL, sink, gatewayMetrics, 0)
	if err != nil {
		slog.Error("Failed to create gateway client", "error", err)
		os.Exit(1)
	}

	failures := app.NewFileFailureLog(fs, cfg.RestoreErrorLog, clock)
	restorer := app.NewRestorer(creds, store, sessions, gw, coord.lock, failures, clock, sessionMetrics, app.RestorerConfig{
		Concurrency: cfg.RestoreConcurrency,
		Pacing:      cfg.RestorePacing,
	})

	services := httpserver.Services{
		Pairing:   app.NewPairingService(store, sessions, gw, coord.lock, sessionMetrics),
		Lifecycle: app.NewLifecycle(creds, store, sessions, gw, coord.lock, clock, cfg.ReconnectDelay),
		Reporter:  app.NewReporter(sessions),
		Cluster:   coord.mirror,
	}

	healthChecks := append([]httpserver.HealthCheck{{Name: "postgres", Check: postgres.Check(pool)}}, coord.checks...)
	srv := httpserver.NewServer(cfg, services, httpMetrics, metrics.Handler(promRegistry), healthChecks)

	done := runGracefulShutdown(ctx, srv, sessions, gw, coord)

	go runRestoration(ctx, restorer)

	httpserver.LogEndpoints(cfg.Port)
	if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		slog.Error("Server error", "error", err)
		stop()
	}

	<-done
	slog.Info("Shutdown complete")
}
