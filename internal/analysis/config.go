package analysis

import (
	"github.com/reflectify/reflectify/internal/config"
	"github.com/reflectify/reflectify/internal/kpi"
)

// Config holds the engine's tunables.
type Config struct {
	// Texts with fewer words or runes than these get the short-text result.
	ShortTextMinWords int
	ShortTextMinChars int

	Weights    kpi.Weights
	Thresholds kpi.Thresholds
}

// DefaultConfig returns the reference engine settings.
func DefaultConfig() Config {
	return Config{
		ShortTextMinWords: 7,
		ShortTextMinChars: 50,
		Weights:           kpi.DefaultWeights(),
		Thresholds:        kpi.DefaultThresholds(),
	}
}

// FromSettings maps the scoring section of the loaded configuration.
func FromSettings(s config.ScoringConfig) Config {
	return Config{
		ShortTextMinWords: s.ShortTextMinWords,
		ShortTextMinChars: s.ShortTextMinChars,
		Weights:           WeightsFromConfig(s),
		Thresholds:        ThresholdsFromConfig(s),
	}
}

// WeightsFromConfig overlays the configured weights on kpi.DefaultWeights.
func WeightsFromConfig(s config.ScoringConfig) kpi.Weights {
	w := kpi.DefaultWeights()
	w.DepthDampening = s.DepthDampening
	w.AnalyticalBonus = s.AnalyticalBonus
	w.CriticalBonus = s.CriticalBonus
	w.OptimalSentenceLength = s.OptimalSentenceLength
	w.DeviationPenalty = s.DeviationPenalty
	w.PlainMatchWeight = s.PlainMatchWeight
	w.StrongMatchWeight = s.StrongMatchWeight
	return w
}

// ThresholdsFromConfig returns the configured level boundaries.
func ThresholdsFromConfig(s config.ScoringConfig) kpi.Thresholds {
	return kpi.Thresholds{Analytical: s.AnalyticalThreshold, Critical: s.CriticalThreshold}
}
