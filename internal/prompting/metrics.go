package prompting

import (
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Generation outcomes.
const (
	OutcomeSuccess = "success"
	OutcomeSkipped = "skipped"
	OutcomeError   = "error"
	OutcomeTimeout = "timeout"
	OutcomeInvalid = "invalid"
)

var (
	generationTotal *prometheus.CounterVec
	metricsOnce     sync.Once
)

// generationCounter registers reflectify_prompting_generation_total once per
// process.
func generationCounter() *prometheus.CounterVec {
	metricsOnce.Do(func() {
		generationTotal = promauto.NewCounterVec(
			prometheus.CounterOpts{
				Name: "reflectify_prompting_generation_total",
				Help: "Prompt generations by source (llm, rules) and outcome of the generator call.",
			},
			[]string{"source", "outcome"},
		)
	})
	return generationTotal
}
