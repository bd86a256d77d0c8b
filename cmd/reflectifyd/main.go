// Reflectifyd is the reflectify scoring daemon.
//
// It serves the HTTP API (stateless analysis plus the reflection journal),
// persists reflections and analyses in SQLite and publishes analysis events to
// NATS when configured.
//
// Configuration is loaded from ~/.config/reflectify/config.yaml and REFLECTIFY_*
// environment variables. See internal/config for details.
//
// Usage:
//
//	# Start the daemon with defaults
//	reflectifyd
//
//	# Use another config file and port
//	REFLECTIFY_SERVER_HTTP_PORT=8080 reflectifyd -config /etc/reflectify/config.yaml
//
//	# Show version information
//	reflectifyd version
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"go.uber.org/zap"

	"github.com/reflectify/reflectify/internal/config"
	rhttp "github.com/reflectify/reflectify/internal/http"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/services"
	"github.com/reflectify/reflectify/internal/telemetry"
)

// Version information (set via ldflags during build)
var (
	version   = "dev"
	gitCommit = "unknown"
	buildDate = "unknown"
)

func main() {
	configPath := flag.String("config", "", "path to config file (default ~/.config/reflectify/config.yaml)")
	flag.Parse()

	if args := flag.Args(); len(args) > 0 {
		switch args[0] {
		case "version":
			printVersion(os.Stdout)
			os.Exit(0)
		default:
			fmt.Fprintf(os.Stderr, "Unknown command: %s\n", args[0])
			fmt.Fprintf(os.Stderr, "\nUsage:\n")
			fmt.Fprintf(os.Stderr, "  reflectifyd           Start the reflectify daemon\n")
			fmt.Fprintf(os.Stderr, "  reflectifyd version   Show version information\n")
			os.Exit(1)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, *configPath); err != nil {
		fmt.Fprintf(os.Stderr, "reflectifyd: %v\n", err)
		os.Exit(1)
	}
}

func printVersion(w io.Writer) {
	fmt.Fprintf(w, "reflectifyd\n")
	fmt.Fprintf(w, "Version:    %s\n", version)
	fmt.Fprintf(w, "Commit:     %s\n", gitCommit)
	fmt.Fprintf(w, "Build Date: %s\n", buildDate)
}

// run wires the service graph, serves HTTP and blocks until ctx is cancelled.
func run(ctx context.Context, configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	logCfg, err := logging.FromSettings(cfg.Logging, false)
	if err != nil {
		return err
	}
	logger, err := logging.NewLogger(logCfg, nil)
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer func() { _ = logger.Sync() }()

	tel, err := telemetry.New(ctx, telemetry.FromSettings(cfg.Telemetry, version), logger.Named("telemetry"))
	if err != nil {
		return fmt.Errorf("failed to initialize telemetry: %w", err)
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
		defer cancel()
		if err := tel.Shutdown(shutdownCtx); err != nil {
			logger.Warn(shutdownCtx, "telemetry shutdown failed", zap.Error(err))
		}
	}()

	reg, err := services.Build(ctx, services.Options{
		Config:        cfg,
		Logger:        logger,
		Telemetry:     tel,
		OpenStore:     true,
		PublishEvents: true,
	})
	if err != nil {
		return err
	}
	defer func() {
		if err := reg.Close(); err != nil {
			logger.Warn(context.Background(), "service shutdown failed", zap.Error(err))
		}
	}()

	srv, err := rhttp.NewServer(reg.Engine(), logger.Named("http"), tel.Meter("github.com/reflectify/reflectify/internal/http"),
		&rhttp.Config{Host: cfg.Server.Host, Port: cfg.Server.Port, Version: version},
		rhttp.WithJournal(reg.Journal()),
		rhttp.WithHealthChecker(reg.Store()),
	)
	if err != nil {
		return fmt.Errorf("failed to create http server: %w", err)
	}

	logger.Info(ctx, "starting reflectifyd",
		zap.String("version", version),
		zap.String("addr", srv.Addr()),
		zap.String("store", cfg.Store.Path),
		zap.Bool("generator", reg.Generator().HasClient()),
		zap.Bool("events", cfg.Events.NATSURL != ""),
		zap.Bool("telemetry", cfg.Telemetry.Enabled))

	errCh := make(chan error, 1)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("http server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info(context.Background(), "received shutdown signal")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout.Duration())
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("http shutdown failed: %w", err)
	}
	logger.Info(shutdownCtx, "shutdown complete")
	return nil
}
