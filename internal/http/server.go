// Package http provides the reflectify HTTP API.
package http

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/logging"
	"go.opentelemetry.io/otel/metric"
	"go.uber.org/zap"
)

const maxBodySize = "1M"

// Analyzer scores a reflection without storing it.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) *analysis.Result
}

// HealthChecker reports whether a dependency is usable.
type HealthChecker interface {
	Ping(ctx context.Context) error
}

// Server provides HTTP endpoints for reflectify.
type Server struct {
	echo    *echo.Echo
	engine  Analyzer
	journal *journal.Service
	health  HealthChecker
	logger  *logging.Logger
	config  *Config
}

// Config holds HTTP server configuration.
type Config struct {
	Host    string
	Port    int
	Version string
}

// Option configures optional server dependencies.
type Option func(*Server)

// WithJournal enables the /api/v1/reflections routes.
func WithJournal(j *journal.Service) Option {
	return func(s *Server) { s.journal = j }
}

// WithHealthChecker adds a store check to /health.
func WithHealthChecker(h HealthChecker) Option {
	return func(s *Server) { s.health = h }
}

// NewServer creates a new HTTP server. meter may be nil to use the global
// meter provider.
func NewServer(engine Analyzer, logger *logging.Logger, meter metric.Meter, cfg *Config, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, fmt.Errorf("analysis engine cannot be nil")
	}
	if logger == nil {
		return nil, fmt.Errorf("logger is required for request tracking and debugging")
	}
	if cfg == nil {
		cfg = &Config{
			Host: "localhost",
			Port: 9191,
		}
	}

	e := echo.New()
	e.HideBanner = true
	e.HidePort = true

	s := &Server{
		echo:   e,
		engine: engine,
		logger: logger,
		config: cfg,
	}
	for _, opt := range opts {
		opt(s)
	}

	// requestLogger commits handler errors, so it runs inside the metrics
	// middleware and outside everything that can fail a request.
	e.Use(middleware.RequestID())
	e.Use(NewHTTPMetrics(meter, logger).MetricsMiddleware())
	e.Use(s.requestLogger)
	e.Use(middleware.Recover())
	e.Use(middleware.BodyLimit(maxBodySize))

	s.registerRoutes()

	return s, nil
}

// requestLogger puts the request id and logger on the request context and
// logs each request after it completes.
func (s *Server) requestLogger(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		start := time.Now()
		req := c.Request()
		ctx := logging.WithRequestID(req.Context(), c.Response().Header().Get(echo.HeaderXRequestID))
		ctx = logging.WithLogger(ctx, s.logger)
		c.SetRequest(req.WithContext(ctx))

		err := next(c)
		if err != nil {
			c.Error(err)
		}

		s.logger.Info(ctx, "http request",
			zap.String("method", req.Method),
			zap.String("route", c.Path()),
			zap.Int("status", c.Response().Status),
			zap.Duration("duration", time.Since(start)),
		)
		return nil
	}
}

func (s *Server) registerRoutes() {
	s.echo.GET("/health", s.handleHealth)
	s.echo.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	v1 := s.echo.Group("/api/v1")
	v1.POST("/analyze", s.handleAnalyze)

	if s.journal != nil {
		v1.POST("/reflections", s.handleSubmit)
		v1.GET("/reflections/:id", s.handleGetReflection)
		v1.POST("/reflections/:id/analyze", s.handleReanalyze)
	}
}

// Handler exposes the router, mainly for httptest servers.
func (s *Server) Handler() http.Handler {
	return s.echo
}

// Addr returns the configured listen address.
func (s *Server) Addr() string {
	return fmt.Sprintf("%s:%d", s.config.Host, s.config.Port)
}

// Start starts the HTTP server. It returns http.ErrServerClosed after
// Shutdown.
func (s *Server) Start() error {
	addr := s.Addr()
	s.logger.Info(context.Background(), "starting http server", zap.String("addr", addr))
	return s.echo.Start(addr)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	s.logger.Info(ctx, "shutting down http server")
	if err := s.echo.Shutdown(ctx); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
