// Package main implements the reflectify CLI: local or remote analysis,
// batch re-analysis of a journal database, daemon health checks, a live
// metrics dashboard and an MCP stdio server.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap/zapcore"

	"github.com/reflectify/reflectify/internal/config"
	"github.com/reflectify/reflectify/internal/logging"
)

// version information (set via ldflags during build)
var version = "dev"

const (
	defaultServerURL = "http://localhost:9191"
	requestTimeout   = 30 * time.Second
)

// options holds the persistent flags shared by all commands.
type options struct {
	configPath string
	serverURL  string
	jsonOutput bool
	verbose    bool
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "reflectify",
		Short: "Score written reflections and manage the reflectify daemon",
		Long: `reflectify scores written reflections on depth, coherence, metacognition
and actionable insight, classifies them as descriptive, analytical or critical
and suggests follow-up questions.

Analysis runs in-process by default. Pass --server to use a running reflectifyd.`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: false,
	}

	root.PersistentFlags().StringVar(&opts.configPath, "config", "", "config file (default ~/.config/reflectify/config.yaml)")
	root.PersistentFlags().StringVar(&opts.serverURL, "server", "", "reflectifyd URL; analyze locally when empty")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of formatted output")
	root.PersistentFlags().BoolVarP(&opts.verbose, "verbose", "v", false, "log debug output to stderr")

	root.AddCommand(
		newAnalyzeCmd(opts),
		newBatchCmd(opts),
		newHealthCmd(opts),
		newMCPCmd(opts),
		newMonitorCmd(opts),
	)
	return root
}

// load reads the configuration and builds a logger that writes to stderr.
func (o *options) load() (*config.Config, *logging.Logger, error) {
	cfg, err := config.Load(o.configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg, err := logging.FromSettings(cfg.Logging, false)
	if err != nil {
		return nil, nil, err
	}
	logCfg.Output.Stderr = true
	logCfg.Format = "console"
	logCfg.Level = zapcore.WarnLevel
	if o.verbose {
		logCfg.Level = zapcore.DebugLevel
	}

	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to initialize logger: %w", err)
	}
	return cfg, logger, nil
}

func (o *options) server() string {
	if o.serverURL == "" {
		return defaultServerURL
	}
	return o.serverURL
}
