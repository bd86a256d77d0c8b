package monitor

import "time"

// Snapshot is what the dashboard shows for one refresh.
type Snapshot struct {
	// AnalysesPerMin is the analysis rate since the previous sample.
	AnalysesPerMin float64

	// TotalAnalyses is the cumulative count over all sources.
	TotalAnalyses float64

	// ShortTextShare and FallbackShare are fractions of TotalAnalyses.
	ShortTextShare float64
	FallbackShare  float64

	// AvgLatency is the mean analysis duration since the previous sample,
	// or over the whole lifetime on the first sample.
	AvgLatency float64

	// LLMAttempts counts generations that called the LLM; LLMSuccessRatio is
	// the fraction of them that produced usable prompts.
	LLMAttempts     float64
	LLMSuccessRatio float64

	Goroutines int
	MemoryMB   float64
	Uptime     time.Duration
}

// Diff derives a Snapshot from the current sample and the previous one. prev
// may be the zero Sample.
func Diff(prev, cur Sample) Snapshot {
	total := sum(cur.Analyses)
	snap := Snapshot{
		TotalAnalyses: total,
		Goroutines:    int(cur.Goroutines),
		MemoryMB:      cur.ResidentBytes / (1024 * 1024),
	}

	if total > 0 {
		snap.ShortTextShare = cur.Analyses["short_text"] / total
		snap.FallbackShare = cur.Analyses["fallback"] / total
	}

	if !prev.At.IsZero() {
		if elapsed := cur.At.Sub(prev.At).Minutes(); elapsed > 0 {
			snap.AnalysesPerMin = nonNegative(total-sum(prev.Analyses)) / elapsed
		}
	}

	count := cur.AnalysisSecondsCount - prev.AnalysisSecondsCount
	secs := cur.AnalysisSecondsSum - prev.AnalysisSecondsSum
	if count <= 0 && prev.At.IsZero() {
		count, secs = cur.AnalysisSecondsCount, cur.AnalysisSecondsSum
	}
	if count > 0 {
		snap.AvgLatency = secs / count
	}

	var success float64
	for key, v := range cur.Generations {
		switch key {
		case "llm/success":
			success += v
			snap.LLMAttempts += v
		case "rules/skipped":
		default:
			snap.LLMAttempts += v
		}
	}
	if snap.LLMAttempts > 0 {
		snap.LLMSuccessRatio = success / snap.LLMAttempts
	}

	if cur.StartTime > 0 {
		started := time.Unix(int64(cur.StartTime), 0)
		if up := cur.At.Sub(started); up > 0 {
			snap.Uptime = up
		}
	}
	return snap
}

func sum(m map[string]float64) float64 {
	var total float64
	for _, v := range m {
		total += v
	}
	return total
}

// nonNegative clamps counter deltas, which go negative when the daemon restarts.
func nonNegative(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}
