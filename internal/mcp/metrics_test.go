package mcp

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"

	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/telemetry"
)

func sumInt64(t *testing.T, tel *telemetry.TestTelemetry, name string) int64 {
	t.Helper()
	rm, err := tel.Collect(context.Background())
	require.NoError(t, err)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "metric %s is not an int64 sum", name)
			var total int64
			for _, dp := range sum.DataPoints {
				total += dp.Value
			}
			return total
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMetrics_RecordInvocation(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	m := NewMetrics(tel.Meter(instrumentationName), logging.Nop())
	ctx := context.Background()

	m.RecordInvocation(ctx, toolAnalyzeReflection, 100*time.Millisecond, nil)
	m.RecordInvocation(ctx, toolAnalyzeReflection, 50*time.Millisecond, errors.New("invalid params"))

	assert.Equal(t, int64(2), sumInt64(t, tel, "reflectify.mcp.tool.invocations_total"))
	assert.Equal(t, int64(1), sumInt64(t, tel, "reflectify.mcp.tool.errors_total"))
	assert.True(t, tel.HasMetric(ctx, "reflectify.mcp.tool.duration_seconds"))
}

func TestMetrics_ActiveRequests(t *testing.T) {
	tel := telemetry.NewTestTelemetry()
	m := NewMetrics(tel.Meter(instrumentationName), nil)
	ctx := context.Background()

	m.IncrementActive(ctx, toolAnalyzeReflection)
	m.IncrementActive(ctx, toolAnalyzeReflection)
	m.DecrementActive(ctx, toolAnalyzeReflection)

	assert.Equal(t, int64(1), sumInt64(t, tel, "reflectify.mcp.tool.active_requests"))
}

func TestCategorizeError(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"nil", nil, ""},
		{"wrapped deadline", fmt.Errorf("analyze: %w", context.DeadlineExceeded), "timeout"},
		{"deadline", context.DeadlineExceeded, "timeout"},
		{"canceled", context.Canceled, "timeout"},
		{"invalid message", errors.New("invalid category"), "validation_error"},
		{"other", errors.New("boom"), "internal_error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, categorizeError(tt.err))
		})
	}
}
