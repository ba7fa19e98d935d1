package metrics

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/pscheid92/sessionhub/internal/domain"
)

var allStatuses = []domain.Status{
	domain.StatusUnknown,
	domain.StatusRestoring,
	domain.StatusAwaitingPairing,
	domain.StatusConnected,
	domain.StatusDisconnected,
	domain.StatusFailed,
}

// SessionMetrics covers restoration, pairing and the live session population.
// It doubles as a registry observer that keeps the gauges current.
type SessionMetrics struct {
	RestoreAttempts     *prometheus.CounterVec
	RestoreDuration     prometheus.Histogram
	MaterializeOutcomes *prometheus.CounterVec
	PairingRequests     *prometheus.CounterVec
	SessionsByStatus    *prometheus.GaugeVec
	HealthySessions     prometheus.Gauge

	mu    sync.Mutex
	state map[string]sessionState
}

type sessionState struct {
	status  domain.Status
	healthy bool
}

func NewSessionMetrics(reg prometheus.Registerer) *SessionMetrics {
	m := &SessionMetrics{
		RestoreAttempts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "restore",
			Name:      "attempts_total",
			Help:      "Session restore attempts, by result.",
		}, []string{"result"}),
		RestoreDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "restore",
			Name:      "pass_duration_seconds",
			Help:      "Duration of a full restoration pass in seconds.",
			Buckets:   prometheus.ExponentialBuckets(0.5, 2, 12),
		}),
		MaterializeOutcomes: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "restore",
			Name:      "materialize_total",
			Help:      "Credential materialization results, by outcome.",
		}, []string{"outcome"}),
		PairingRequests: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pairing",
			Name:      "requests_total",
			Help:      "Pairing requests, by result.",
		}, []string{"result"}),
		SessionsByStatus: prometheus.NewGaugeVec(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions",
			Help:      "Sessions tracked by this instance, by status.",
		}, []string{"status"}),
		HealthySessions: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_healthy",
			Help:      "Sessions with a healthy connection.",
		}),
		state: make(map[string]sessionState),
	}

	reg.MustRegister(m.RestoreAttempts, m.RestoreDuration, m.MaterializeOutcomes, m.PairingRequests, m.SessionsByStatus, m.HealthySessions)
	for _, s := range allStatuses {
		m.SessionsByStatus.WithLabelValues(string(s)).Set(0)
	}
	return m
}

func (m *SessionMetrics) SessionChanged(s domain.Session) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.state[s.ID] = sessionState{status: s.Status, healthy: s.Healthy}
	m.refresh()
}

func (m *SessionMetrics) SessionRemoved(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	delete(m.state, sessionID)
	m.refresh()
}

func (m *SessionMetrics) refresh() {
	counts := make(map[domain.Status]int, len(allStatuses))
	healthy := 0
	for _, st := range m.state {
		counts[st.status]++
		if st.healthy {
			healthy++
		}
	}
	for _, s := range allStatuses {
		m.SessionsByStatus.WithLabelValues(string(s)).Set(float64(counts[s]))
	}
	m.HealthySessions.Set(float64(healthy))
}
