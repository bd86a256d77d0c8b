package monitor

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	dto "github.com/prometheus/client_model/go"
	"github.com/prometheus/common/expfmt"
)

// Metric names exported by reflectifyd on /metrics.
const (
	metricAnalyses        = "reflectify_analysis_total"
	metricAnalysisSeconds = "reflectify_analysis_duration_seconds"
	metricGenerations     = "reflectify_prompting_generation_total"
	metricGoroutines      = "go_goroutines"
	metricResidentMemory  = "process_resident_memory_bytes"
	metricStartTime       = "process_start_time_seconds"
)

// Sample is one scrape of the daemon's counters. Counters are cumulative;
// Diff turns two samples into rates.
type Sample struct {
	At time.Time

	// Analyses counts analyses by result source (short_text, scored, fallback).
	Analyses map[string]float64

	AnalysisSecondsSum   float64
	AnalysisSecondsCount float64

	// Generations counts prompt generations keyed "source/outcome".
	Generations map[string]float64

	Goroutines    float64
	ResidentBytes float64
	StartTime     float64
}

// Scraper reads the Prometheus text exposition of a reflectifyd instance.
type Scraper struct {
	url    string
	client *http.Client
}

// NewScraper creates a scraper for the daemon at serverURL.
func NewScraper(serverURL string) *Scraper {
	return &Scraper{
		url: strings.TrimRight(serverURL, "/") + "/metrics",
		client: &http.Client{
			Timeout: 2 * time.Second,
		},
	}
}

// Scrape fetches and parses the current metrics.
func (s *Scraper) Scrape(ctx context.Context) (Sample, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", string(expfmt.NewFormat(expfmt.TypeTextPlain)))

	resp, err := s.client.Do(req)
	if err != nil {
		return Sample{}, fmt.Errorf("failed to fetch %s: %w", s.url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Sample{}, fmt.Errorf("%s returned status %d", s.url, resp.StatusCode)
	}
	return parseSample(resp.Body, time.Now())
}

func parseSample(r io.Reader, at time.Time) (Sample, error) {
	smp := Sample{
		At:          at,
		Analyses:    make(map[string]float64),
		Generations: make(map[string]float64),
	}

	dec := expfmt.NewDecoder(r, expfmt.NewFormat(expfmt.TypeTextPlain))
	for {
		var mf dto.MetricFamily
		if err := dec.Decode(&mf); err != nil {
			if errors.Is(err, io.EOF) {
				return smp, nil
			}
			return Sample{}, fmt.Errorf("failed to parse metrics: %w", err)
		}

		switch mf.GetName() {
		case metricAnalyses:
			for _, m := range mf.GetMetric() {
				smp.Analyses[label(m, "source")] += m.GetCounter().GetValue()
			}
		case metricAnalysisSeconds:
			for _, m := range mf.GetMetric() {
				smp.AnalysisSecondsSum += m.GetHistogram().GetSampleSum()
				smp.AnalysisSecondsCount += float64(m.GetHistogram().GetSampleCount())
			}
		case metricGenerations:
			for _, m := range mf.GetMetric() {
				key := label(m, "source") + "/" + label(m, "outcome")
				smp.Generations[key] += m.GetCounter().GetValue()
			}
		case metricGoroutines:
			smp.Goroutines = gaugeValue(&mf)
		case metricResidentMemory:
			smp.ResidentBytes = gaugeValue(&mf)
		case metricStartTime:
			smp.StartTime = gaugeValue(&mf)
		}
	}
}

func label(m *dto.Metric, name string) string {
	for _, lp := range m.GetLabel() {
		if lp.GetName() == name {
			return lp.GetValue()
		}
	}
	return ""
}

func gaugeValue(mf *dto.MetricFamily) float64 {
	if len(mf.GetMetric()) == 0 {
		return 0
	}
	m := mf.GetMetric()[0]
	if g := m.GetGauge(); g != nil {
		return g.GetValue()
	}
	return m.GetUntyped().GetValue()
}
