package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/pscheid92/sessionhub/internal/adapter/metrics"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/correlation"
	"github.com/pscheid92/sessionhub/internal/platform/logging"
	"github.com/pscheid92/sessionhub/internal/platform/retry"
)

const DefaultConcurrency = 3

type RestorerConfig struct {
	Concurrency int
	Pacing      time.Duration
	ListPolicy  retry.Policy
}

// Summary describes one restoration pass.
type Summary struct {
	Discovered int
	Restored   int
	Failed     int
	Skipped    int
	Duration   time.Duration
}

// Restorer runs the startup restoration pass.
type Restorer struct {
	creds      domain.CredentialRepository
	store      CredentialStore
	sessions   Sessions
	supervisor domain.ConnectionSupervisor
	lock       domain.SessionLock
	failures   FailureLog
	clock      clockwork.Clock
	metrics    *metrics.SessionMetrics
	cfg        RestorerConfig
}

// NewRestorer wires the restoration pass. lock and m may be nil.
func NewRestorer(creds domain.CredentialRepository, store CredentialStore, sessions Sessions, supervisor domain.ConnectionSupervisor, lock domain.SessionLock, failures FailureLog, clock clockwork.Clock, m *metrics.SessionMetrics, cfg RestorerConfig) *Restorer {
	if cfg.Concurrency < 1 {
		cfg.Concurrency = DefaultConcurrency
	}
	if cfg.ListPolicy.MaxAttempts < 1 {
		cfg.ListPolicy = retry.Policy{MaxAttempts: 3, InitialBackoff: 500 * time.Millisecond, MaxBackoff: 5 * time.Second}
	}
	if cfg.ListPolicy.Clock == nil {
		cfg.ListPolicy.Clock = clock
	}
	if lock == nil {
		lock = noLock{}
	}
	return &Restorer{
		creds:      creds,
		store:      store,
		sessions:   sessions,
		supervisor: supervisor,
		lock:       lock,
		failures:   failures,
		clock:      clock,
		metrics:    m,
		cfg:        cfg,
	}
}

type attemptResult int

const (
	attemptRestored attemptResult = iota
	attemptFailed
	attemptSkipped
)

// Run reconciles the database with the credential tree and reopens every restorable
// session. Only a failure to enumerate the credential tree is returned as an error.
func (r *Restorer) Run(ctx context.Context) (Summary, error) {
	start := r.clock.Now()
	r.reconcile(ctx)

	ids, err := r.store.DiscoverRestorable()
	if err != nil {
		return Summary{}, fmt.Errorf("discover restorable sessions: %w", err)
	}

	summary := Summary{Discovered: len(ids)}
	if len(ids) == 0 {
		slog.InfoContext(ctx, "No sessions yet, waiting for pairing")
		summary.Duration = r.clock.Since(start)
		return summary, nil
	}

	queue := make(chan string, len(ids))
	for _, id := range ids {
		queue <- id
	}
	close(queue)

	workers := min(r.cfg.Concurrency, len(ids))
	slog.InfoContext(ctx, "Restoring sessions", "count", len(ids), "workers", workers)

	var restored, failed, skipped atomic.Int64
	var wg sync.WaitGroup
	for w := range workers {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for id := range queue {
				if ctx.Err() != nil {
					skipped.Add(1)
					continue
				}
				switch r.restoreOne(ctx, w, id) {
				case attemptRestored:
					restored.Add(1)
				case attemptFailed:
					failed.Add(1)
				default:
					skipped.Add(1)
				}
				r.pace(ctx)
			}
		}()
	}
	wg.Wait()

	summary.Restored = int(restored.Load())
	summary.Failed = int(failed.Load())
	summary.Skipped = int(skipped.Load())
	summary.Duration = r.clock.Since(start)
	if r.metrics != nil {
		r.metrics.RestoreDuration.Observe(summary.Duration.Seconds())
	}

	slog.InfoContext(ctx, "Restoration finished",
		"discovered", summary.Discovered,
		"restored", summary.Restored,
		"failed", summary.Failed,
		"skipped", summary.Skipped,
		"duration", summary.Duration,
	)
	return summary, nil
}

// reconcile materializes every database record on disk. Failures are per record.
func (r *Restorer) reconcile(ctx context.Context) {
	records, err := retry.Do(ctx, r.cfg.ListPolicy, classifyListError, func(ctx context.Context) ([]domain.CredentialRecord, error) {
		return r.creds.List(ctx)
	})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to list credential records, restoring from disk only", "error", err)
		return
	}

	for _, rec := range records {
		outcome, err := r.store.Materialize(ctx, rec)
		if r.metrics != nil {
			r.metrics.MaterializeOutcomes.WithLabelValues(string(outcome)).Inc()
		}
		switch {
		case errors.Is(err, domain.ErrCorruptCredential):
			r.sessions.Upsert(rec.SessionID, domain.SessionPatch{
				Status:        domain.StatusPtr(domain.StatusFailed),
				CredentialDir: domain.StringPtr(r.store.Dir(rec.SessionID)),
				LastError:     domain.StringPtr(err.Error()),
			})
		case err != nil:
			logging.WithSession(rec.SessionID).WarnContext(ctx, "Skipping credential record", "error", err)
		}
	}
	slog.InfoContext(ctx, "Credential records reconciled", "count", len(records))
}

func classifyListError(err error) retry.Action {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return retry.Stop
	}
	return retry.Retry
}

func (r *Restorer) restoreOne(ctx context.Context, worker int, sessionID string) attemptResult {
	ctx = correlation.WithID(ctx, correlation.NewID())
	log := logging.WithSession(sessionID).With("worker", worker)

	release, err := r.sessions.Acquire(sessionID)
	if err != nil {
		log.InfoContext(ctx, "Skipping restore", "reason", err)
		r.recordAttempt("skipped")
		return attemptSkipped
	}
	defer release()

	unlock, err := r.lock.Acquire(ctx, sessionID)
	if err != nil {
		log.InfoContext(ctx, "Skipping restore, session locked elsewhere", "error", err)
		r.recordAttempt("skipped")
		return attemptSkipped
	}
	defer unlock()

	dropStaleHandle(ctx, r.sessions, r.supervisor, sessionID)
	closes := r.sessions.Closes(sessionID)
	r.sessions.Upsert(sessionID, domain.SessionPatch{
		Status:        domain.StatusPtr(domain.StatusRestoring),
		Healthy:       domain.BoolPtr(false),
		CredentialDir: domain.StringPtr(r.store.Dir(sessionID)),
	})

	log.InfoContext(ctx, "Opening session")
	conn, err := openConnection(ctx, r.supervisor, sessionID)
	if err != nil {
		r.fail(ctx, sessionID, err)
		return attemptFailed
	}

	if _, ok := r.sessions.CommitOpen(sessionID, closes, connectedPatch(conn)); !ok {
		r.fail(ctx, sessionID, errClosedWhileOpening)
		return attemptFailed
	}
	r.recordAttempt("restored")
	log.InfoContext(ctx, "Session restored")
	return attemptRestored
}

// fail marks the session failed and records the reason. The record and the credential
// directory stay in place.
func (r *Restorer) fail(ctx context.Context, sessionID string, cause error) {
	r.sessions.Upsert(sessionID, domain.SessionPatch{
		Status:    domain.StatusPtr(domain.StatusFailed),
		Healthy:   domain.BoolPtr(false),
		ClearConn: true,
		LastError: domain.StringPtr(cause.Error()),
	})
	r.recordAttempt("failed")
	logging.WithSession(sessionID).ErrorContext(ctx, "Session restore failed", "error", cause)

	if r.failures == nil {
		return
	}
	if err := r.failures.Append(sessionID, cause.Error()); err != nil {
		slog.ErrorContext(ctx, "Failed to append to restore error log", "session_id", sessionID, "error", err)
	}
}

func (r *Restorer) recordAttempt(result string) {
	if r.metrics != nil {
		r.metrics.RestoreAttempts.WithLabelValues(result).Inc()
	}
}

// pace waits the pacing delay. Cancellation cuts the wait short.
func (r *Restorer) pace(ctx context.Context) {
	if r.cfg.Pacing <= 0 {
		return
	}
	select {
	case <-r.clock.After(r.cfg.Pacing):
	case <-ctx.Done():
	}
}
