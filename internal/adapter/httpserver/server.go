package httpserver

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/pscheid92/sessionhub/internal/adapter/metrics"
	"github.com/pscheid92/sessionhub/internal/app"
	"github.com/pscheid92/sessionhub/internal/domain"
	"github.com/pscheid92/sessionhub/internal/platform/config"
)

type pairingService interface {
	Pair(ctx context.Context, raw string) (app.PairingResult, error)
}

type lifecycleService interface {
	Logout(ctx context.Context, raw string) (string, error)
	Reconnect(ctx context.Context, raw string) (domain.Session, error)
}

type reportService interface {
	Report() app.Report
}

// Services are the application operations exposed over HTTP.
type Services struct {
	Pairing   pairingService
	Lifecycle lifecycleService
	Reporter  reportService
	Cluster   domain.StatusMirror
}

type Server struct {
	echo   *echo.Echo
	config *config.Config

	services       Services
	httpMetrics    *metrics.HTTPMetrics
	metricsHandler http.Handler
	healthChecks   []HealthCheck
	startTime      time.Time
}

// NewServer builds the echo instance. httpMetrics and metricsHandler may be nil.
func NewServer(cfg *config.Config, services Services, httpMetrics *metrics.HTTPMetrics, metricsHandler http.Handler, healthChecks []HealthCheck) *Server {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	srv := &Server{
		echo:           e,
		config:         cfg,
		services:       services,
		httpMetrics:    httpMetrics,
		metricsHandler: metricsHandler,
		healthChecks:   healthChecks,
		startTime:      time.Now(),
	}

	srv.registerRoutes()

	return srv
}

func (s *Server) Start() error {
	slog.Info("Starting server", "port", s.config.Port)
	if err := s.echo.Start(":" + s.config.Port); err != nil {
		return fmt.Errorf("failed to start server: %w", err)
	}
	return nil
}

func (s *Server) Shutdown(ctx context.Context) error {
	if err := s.echo.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown server: %w", err)
	}
	return nil
}

// Handler exposes the router, mainly for tests.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// LogEndpoints prints the operator-facing routes once the server is up.
func LogEndpoints(port string) {
	base := "http://localhost:" + port
	slog.Info("Server endpoints",
		"pair", base+"/pair?number=YOUR_NUMBER",
		"sessions", base+"/sessions",
		"logout", base+"/logout?number=YOUR_NUMBER",
		"reconnect", base+"/reconnect?number=YOUR_NUMBER",
		"metrics", base+"/metrics",
	)
}
