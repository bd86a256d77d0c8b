package analysis

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *metrics
	metricsOnce   sync.Once
)

type metrics struct {
	total    *prometheus.CounterVec
	duration prometheus.Histogram
}

// newMetrics registers the engine metrics once per process.
//
// Metrics:
//   - reflectify_analysis_total{source} - analyses by result source
//   - reflectify_analysis_duration_seconds - end-to-end Analyze latency
func newMetrics() *metrics {
	metricsOnce.Do(func() {
		globalMetrics = &metrics{
			total: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "reflectify_analysis_total",
					Help: "Total number of reflection analyses",
				},
				[]string{"source"}, // short_text, scored, fallback
			),
			duration: promauto.NewHistogram(
				prometheus.HistogramOpts{
					Name:    "reflectify_analysis_duration_seconds",
					Help:    "Duration of reflection analysis in seconds, including prompt generation",
					Buckets: []float64{0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1, 2.5, 5, 10},
				},
			),
		}
	})
	return globalMetrics
}
