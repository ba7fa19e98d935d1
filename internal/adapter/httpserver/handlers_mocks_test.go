package httpserver

import (
	"context"
	"testing"

	"github.com/pscheid92/sessionhub/internal/app"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/config"
)

// mockServices implements every service the server depends on.
type mockServices struct {
	pairFn      func(ctx context.Context, raw string) (app.PairingResult, error)
	logoutFn    func(ctx context.Context, raw string) (string, error)
	reconnectFn func(ctx context.Context, raw string) (domain.Session, error)
	report      app.Report
	clusterFn   func(ctx context.Context) ([]domain.StatusEntry, error)

	pairCalls []string
}

func (m *mockServices) Pair(ctx context.Context, raw string) (app.PairingResult, error) {
	m.pairCalls = append(m.pairCalls, raw)
	if m.pairFn != nil {
		return m.pairFn(ctx, raw)
	}
	return app.PairingResult{}, nil
}

func (m *mockServices) Logout(ctx context.Context, raw string) (string, error) {
	if m.logoutFn != nil {
		return m.logoutFn(ctx, raw)
	}
	return raw, nil
}

func (m *mockServices) Reconnect(ctx context.Context, raw string) (domain.Session, error) {
	if m.reconnectFn != nil {
		return m.reconnectFn(ctx, raw)
	}
	return domain.Session{ID: raw, Status: domain.StatusConnected}, nil
}

func (m *mockServices) Report() app.Report {
	return m.report
}

func (m *mockServices) Put(context.Context, domain.StatusEntry) error { return nil }
func (m *mockServices) Delete(context.Context, string) error          { return nil }

func (m *mockServices) List(ctx context.Context) ([]domain.StatusEntry, error) {
	if m.clusterFn != nil {
		return m.clusterFn(ctx)
	}
	return nil, nil
}

type testServerOption func(*testServerConfig)

type testServerConfig struct {
	healthChecks []HealthCheck
	noCluster    bool
	cfg          config.Config
}

func withHealthChecks(checks ...HealthCheck) testServerOption {
	return func(c *testServerConfig) { c.healthChecks = checks }
}

func withoutCluster() testServerOption {
	return func(c *testServerConfig) { c.noCluster = true }
}

func withPairRate(limit float64, burst int) testServerOption {
	return func(c *testServerConfig) {
		c.cfg.PairRateLimit = limit
		c.cfg.PairRateBurst = burst
	}
}

func newTestServer(t *testing.T, svc *mockServices, opts ...testServerOption) *Server {
	t.Helper()

	tc := testServerConfig{
		cfg: config.Config{
			AppEnv:        "test",
			Port:          "8080",
			PairRateLimit: 100,
			PairRateBurst: 100,
		},
	}
	for _, opt := range opts {
		opt(&tc)
	}

	services := Services{
		Pairing:   svc,
		Lifecycle: svc,
		Reporter:  svc,
		Cluster:   svc,
	}
	if tc.noCluster {
		services.Cluster = nil
	}

	return NewServer(&tc.cfg, services, nil, nil, tc.healthChecks)
}
