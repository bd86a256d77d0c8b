// Package events publishes analysis notifications to NATS.
//
// Events are fire-and-forget: a failed publish is logged and never fails the
// request that produced it.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/nats-io/nats.go"
	"github.com/reflectify/reflectify/internal/logging"
	"go.uber.org/zap"
)

// DefaultSubject carries AnalysisCompleted events.
const DefaultSubject = "reflectify.analysis.completed"

// AnalysisCompleted is published after an analysis is stored.
type AnalysisCompleted struct {
	ReflectionID string    `json:"reflection_id"`
	UserID       string    `json:"user_id"`
	Level        string    `json:"level"`
	Overall      float64   `json:"overall"`
	Source       string    `json:"source"`
	AnalyzedAt   time.Time `json:"analyzed_at"`
}

// Publisher sends analysis events.
type Publisher interface {
	PublishAnalysisCompleted(ctx context.Context, evt AnalysisCompleted)
	Close() error
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

// PublishAnalysisCompleted implements Publisher.
func (NoopPublisher) PublishAnalysisCompleted(context.Context, AnalysisCompleted) {}

// Close implements Publisher.
func (NoopPublisher) Close() error { return nil }

// NATSPublisher publishes JSON events on a NATS connection.
type NATSPublisher struct {
	nc      *nats.Conn
	subject string
	logger  *logging.Logger
	owned   bool
}

// Connect dials url and returns a publisher that owns the connection.
func Connect(url, subject string, logger *logging.Logger) (*NATSPublisher, error) {
	nc, err := nats.Connect(url,
		nats.Name("reflectify"),
		nats.RetryOnFailedConnect(true),
		nats.MaxReconnects(5),
		nats.ReconnectWait(time.Second),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS at %s: %w", url, err)
	}
	p := NewNATSPublisher(nc, subject, logger)
	p.owned = true
	return p, nil
}

// NewNATSPublisher wraps an existing connection. Close leaves nc open.
func NewNATSPublisher(nc *nats.Conn, subject string, logger *logging.Logger) *NATSPublisher {
	if subject == "" {
		subject = DefaultSubject
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &NATSPublisher{nc: nc, subject: subject, logger: logger}
}

// New returns a NATSPublisher for url, or a NoopPublisher when url is empty.
func New(url, subject string, logger *logging.Logger) (Publisher, error) {
	if url == "" {
		return NoopPublisher{}, nil
	}
	return Connect(url, subject, logger)
}

// Subject returns the subject events are published on.
func (p *NATSPublisher) Subject() string {
	return p.subject
}

// PublishAnalysisCompleted implements Publisher.
func (p *NATSPublisher) PublishAnalysisCompleted(ctx context.Context, evt AnalysisCompleted) {
	data, err := json.Marshal(evt)
	if err != nil {
		p.logger.Warn(ctx, "failed to encode analysis event", zap.Error(err))
		return
	}
	if err := p.nc.Publish(p.subject, data); err != nil {
		p.logger.Warn(ctx, "failed to publish analysis event",
			zap.String("subject", p.subject),
			zap.Error(err))
		return
	}
	p.logger.Trace(ctx, "published analysis event", zap.String("subject", p.subject))
}

// Close flushes pending events and closes the connection if it owns it.
func (p *NATSPublisher) Close() error {
	if !p.owned {
		return nil
	}
	err := p.nc.Drain()
	if err != nil {
		p.nc.Close()
		return fmt.Errorf("drain nats connection: %w", err)
	}
	return nil
}
