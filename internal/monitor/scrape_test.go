package monitor

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const exposition = `# HELP go_goroutines Number of goroutines that currently exist.
# TYPE go_goroutines gauge
go_goroutines 23
# HELP process_resident_memory_bytes Resident memory size in bytes.
# TYPE process_resident_memory_bytes gauge
process_resident_memory_bytes 4.194304e+07
# HELP process_start_time_seconds Start time of the process since unix epoch in seconds.
# TYPE process_start_time_seconds gauge
process_start_time_seconds 1.7725e+09
# HELP reflectify_analysis_total Total number of reflection analyses
# TYPE reflectify_analysis_total counter
reflectify_analysis_total{source="fallback"} 1
reflectify_analysis_total{source="scored"} 17
reflectify_analysis_total{source="short_text"} 2
# HELP reflectify_analysis_duration_seconds Duration of reflection analysis in seconds, including prompt generation
# TYPE reflectify_analysis_duration_seconds histogram
reflectify_analysis_duration_seconds_bucket{le="0.01"} 15
reflectify_analysis_duration_seconds_bucket{le="+Inf"} 20
reflectify_analysis_duration_seconds_sum 4
reflectify_analysis_duration_seconds_count 20
# HELP reflectify_prompting_generation_total Prompt generations by source (llm, rules) and outcome of the generator call.
# TYPE reflectify_prompting_generation_total counter
reflectify_prompting_generation_total{outcome="success",source="llm"} 9
reflectify_prompting_generation_total{outcome="timeout",source="rules"} 1
reflectify_prompting_generation_total{outcome="skipped",source="rules"} 7
`

func TestParseSample(t *testing.T) {
	at := time.Unix(1772500000, 0)
	smp, err := parseSample(strings.NewReader(exposition), at)
	require.NoError(t, err)

	assert.Equal(t, at, smp.At)
	assert.Equal(t, map[string]float64{"fallback": 1, "scored": 17, "short_text": 2}, smp.Analyses)
	assert.Equal(t, 4.0, smp.AnalysisSecondsSum)
	assert.Equal(t, 20.0, smp.AnalysisSecondsCount)
	assert.Equal(t, 9.0, smp.Generations["llm/success"])
	assert.Equal(t, 1.0, smp.Generations["rules/timeout"])
	assert.Equal(t, 7.0, smp.Generations["rules/skipped"])
	assert.Equal(t, 23.0, smp.Goroutines)
	assert.Equal(t, 41943040.0, smp.ResidentBytes)
	assert.Equal(t, 1.7725e9, smp.StartTime)
}

func TestParseSample_Malformed(t *testing.T) {
	_, err := parseSample(strings.NewReader("reflectify_analysis_total{source=\"scored\" 1\n"), time.Now())
	assert.Error(t, err)
}

func TestDiff(t *testing.T) {
	at := time.Unix(1772500000, 0)
	cur, err := parseSample(strings.NewReader(exposition), at)
	require.NoError(t, err)

	first := Diff(Sample{}, cur)
	assert.Equal(t, 20.0, first.TotalAnalyses)
	assert.Zero(t, first.AnalysesPerMin, "no rate without a previous sample")
	assert.InDelta(t, 0.2, first.AvgLatency, 1e-9)
	assert.InDelta(t, 0.1, first.ShortTextShare, 1e-9)
	assert.InDelta(t, 0.05, first.FallbackShare, 1e-9)
	assert.Equal(t, 10.0, first.LLMAttempts)
	assert.InDelta(t, 0.9, first.LLMSuccessRatio, 1e-9)
	assert.Equal(t, 23, first.Goroutines)
	assert.InDelta(t, 40.0, first.MemoryMB, 1e-9)
	assert.Zero(t, first.Uptime, "scraped at the process start time")

	prev := cur
	prev.At = at.Add(-2 * time.Minute)
	prev.Analyses = map[string]float64{"scored": 10}
	prev.AnalysisSecondsSum = 2
	prev.AnalysisSecondsCount = 10
	next := Diff(prev, cur)
	assert.InDelta(t, 5.0, next.AnalysesPerMin, 1e-9)
	assert.InDelta(t, 0.2, next.AvgLatency, 1e-9)
}

func TestDiff_CounterReset(t *testing.T) {
	now := time.Now()
	prev := Sample{At: now.Add(-time.Minute), Analyses: map[string]float64{"scored": 100}}
	cur := Sample{At: now, Analyses: map[string]float64{"scored": 3}}
	assert.Zero(t, Diff(prev, cur).AnalysesPerMin)
}

func TestDiff_Uptime(t *testing.T) {
	now := time.Unix(1772503600, 0)
	snap := Diff(Sample{}, Sample{At: now, StartTime: 1772500000})
	assert.Equal(t, time.Hour, snap.Uptime)
}

func TestScraper_Scrape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/metrics", r.URL.Path)
		w.Header().Set("Content-Type", "text/plain; version=0.0.4")
		_, _ = w.Write([]byte(exposition))
	}))
	defer srv.Close()

	smp, err := NewScraper(srv.URL+"/").Scrape(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 17.0, smp.Analyses["scored"])
	assert.False(t, smp.At.IsZero())
}

func TestScraper_ErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	defer srv.Close()

	_, err := NewScraper(srv.URL).Scrape(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}
