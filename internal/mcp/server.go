package mcp

import (
	"context"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.opentelemetry.io/otel/metric"

	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/logging"
)

// Analyzer is the part of analysis.Engine the tools need.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) *analysis.Result
}

// Server wraps an MCP server with the reflection tools registered.
type Server struct {
	mcp     *mcp.Server
	engine  Analyzer
	metrics *Metrics
	logger  *logging.Logger
}

// Config configures the MCP server.
type Config struct {
	// Name is the implementation name announced to clients (default: "reflectify").
	Name string

	// Version is the announced server version.
	Version string

	Logger *logging.Logger

	// Meter receives the tool metrics. The global meter provider is used when nil.
	Meter metric.Meter
}

// DefaultConfig returns the configuration used when NewServer gets nil.
func DefaultConfig() *Config {
	return &Config{
		Name:    "reflectify",
		Version: "dev",
		Logger:  logging.Nop(),
	}
}

// NewServer creates an MCP server backed by engine.
func NewServer(cfg *Config, engine Analyzer) (*Server, error) {
	if cfg == nil {
		cfg = DefaultConfig()
	}
	if engine == nil {
		return nil, errors.New("analysis engine is required")
	}
	if cfg.Name == "" {
		cfg.Name = "reflectify"
	}
	if cfg.Logger == nil {
		cfg.Logger = logging.Nop()
	}

	s := &Server{
		mcp: mcp.NewServer(&mcp.Implementation{
			Name:    cfg.Name,
			Version: cfg.Version,
		}, nil),
		engine:  engine,
		metrics: NewMetrics(cfg.Meter, cfg.Logger),
		logger:  cfg.Logger,
	}
	s.registerTools()
	return s, nil
}

// MCP returns the underlying SDK server, mainly for tests that connect their
// own transport.
func (s *Server) MCP() *mcp.Server {
	return s.mcp
}

// Run serves on stdin/stdout until ctx is done or the client disconnects.
func (s *Server) Run(ctx context.Context) error {
	s.logger.Info(ctx, "starting MCP server on stdio transport")
	if err := s.mcp.Run(ctx, &mcp.StdioTransport{}); err != nil {
		return fmt.Errorf("server run failed: %w", err)
	}
	return nil
}
