package http_test

import (
	"context"
	"fmt"
	"time"

	"github.com/reflectify/reflectify/internal/analysis"
	httpserver "github.com/reflectify/reflectify/internal/http"
	"github.com/reflectify/reflectify/internal/logging"
	"go.uber.org/zap"
)

// ExampleServer demonstrates how to create and start the HTTP server.
func ExampleServer() {
	logger := logging.Nop()
	engine := analysis.NewEngine(analysis.DefaultConfig(), analysis.WithLogger(logger))

	server, err := httpserver.NewServer(engine, logger, nil, &httpserver.Config{
		Host: "localhost",
		Port: 0,
	})
	if err != nil {
		panic(err)
	}

	go func() {
		if err := server.Start(); err != nil {
			logger.Debug(context.Background(), "server stopped", zap.Error(err))
		}
	}()

	time.Sleep(100 * time.Millisecond)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := server.Shutdown(ctx); err != nil {
		panic(err)
	}

	fmt.Println("Server started and stopped successfully")
	// Output: Server started and stopped successfully
}
