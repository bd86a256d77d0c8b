// Package kpi turns text statistics and pattern signals into the four
// reflection scores and the reflection level.
package kpi

import (
	"math"

	"github.com/reflectify/reflectify/internal/patterns"
	"github.com/reflectify/reflectify/internal/textstats"
)

// MaxScore is the upper bound of every KPI.
const MaxScore = 10

// Depth word-count bands.
const (
	depthShortBand    = 30
	depthMediumBand   = 100
	depthShortDivisor = 10.0
	depthShortCap     = 3.0
	depthMediumStep   = 25.0
	depthMediumCap    = 7.0
	depthLongStep     = 100.0
	depthLongExtraCap = 3.0
)

// Scores are the four KPIs, each an integer in [0, MaxScore].
type Scores struct {
	Depth         int `json:"depth"`
	Coherence     int `json:"coherence"`
	Metacognition int `json:"metacognition"`
	Actionable    int `json:"actionable"`
}

// Overall is the unrounded mean of the four scores.
func (s Scores) Overall() float64 {
	return float64(s.Depth+s.Coherence+s.Metacognition+s.Actionable) / 4
}

// OverallRounded is Overall rounded to one decimal for display.
func (s Scores) OverallRounded() float64 {
	return math.Round(s.Overall()*10) / 10
}

// Uniform returns Scores with every KPI set to v.
func Uniform(v int) Scores {
	return Scores{Depth: v, Coherence: v, Metacognition: v, Actionable: v}
}

// Weights holds the tunable scoring constants.
type Weights struct {
	DepthDampening        float64
	AnalyticalBonus       float64
	CriticalBonus         float64
	OptimalSentenceLength float64
	DeviationPenalty      float64
	MinLengthFactor       float64
	ReferenceWordCount    float64
	PlainMatchWeight      float64
	StrongMatchWeight     float64
}

// DefaultWeights returns the reference scoring constants.
func DefaultWeights() Weights {
	return Weights{
		DepthDampening:        0.7,
		AnalyticalBonus:       1.5,
		CriticalBonus:         2,
		OptimalSentenceLength: 15,
		DeviationPenalty:      0.5,
		MinLengthFactor:       0.3,
		ReferenceWordCount:    100,
		PlainMatchWeight:      1.5,
		StrongMatchWeight:     2.5,
	}
}

// Scorer computes Scores. It holds no mutable state.
type Scorer struct {
	w Weights
}

// NewScorer returns a Scorer using w.
func NewScorer(w Weights) *Scorer {
	return &Scorer{w: w}
}

// Weights returns the scorer's constants.
func (sc *Scorer) Weights() Weights {
	return sc.w
}

// Score computes all four KPIs.
func (sc *Scorer) Score(stats textstats.Statistics, sig patterns.Signals) Scores {
	return Scores{
		Depth:         sc.Depth(stats.WordCount, sig.HasAnalyticalPhrase, sig.HasCriticalPhrase),
		Coherence:     sc.Coherence(stats.WordCount, stats.SentenceCount),
		Metacognition: sc.tiered(sig.MetacognitiveMatches, sig.StrongMetacognitiveMatches),
		Actionable:    sc.tiered(sig.ActionMatches, sig.StrongActionMatches),
	}
}

// Depth caps the base score by word-count band, then adds connector bonuses.
func (sc *Scorer) Depth(wordCount int, analytical, critical bool) int {
	wc := float64(wordCount)

	var base float64
	switch {
	case wordCount < depthShortBand:
		base = math.Min(wc/depthShortDivisor, depthShortCap)
	case wordCount < depthMediumBand:
		base = math.Min(depthShortCap+(wc-depthShortBand)/depthMediumStep, depthMediumCap)
	default:
		extra := math.Min((wc-depthMediumBand)/depthLongStep, depthLongExtraCap)
		base = (depthMediumCap + extra) * sc.w.DepthDampening
	}

	if analytical {
		base += sc.w.AnalyticalBonus
	}
	if critical {
		base += sc.w.CriticalBonus
	}
	return clampScore(math.Round(clamp(base, 0, MaxScore)))
}

// Coherence rewards texts long enough to judge whose sentences are close
// to the optimal length.
func (sc *Scorer) Coherence(wordCount, sentenceCount int) int {
	if sentenceCount < 1 {
		sentenceCount = 1
	}
	wc := float64(wordCount)

	factor := clamp(math.Log10(wc)/math.Log10(sc.w.ReferenceWordCount), sc.w.MinLengthFactor, 1)
	avg := wc / float64(sentenceCount)
	deviation := math.Abs(avg-sc.w.OptimalSentenceLength) / sc.w.OptimalSentenceLength

	return clampScore(math.Round(MaxScore * factor * (1 - deviation*sc.w.DeviationPenalty)))
}

// Metacognition scores plain and strong metacognitive cue counts.
func (sc *Scorer) Metacognition(plain, strong int) int {
	return sc.tiered(plain, strong)
}

// Actionable scores plain and strong action cue counts.
func (sc *Scorer) Actionable(plain, strong int) int {
	return sc.tiered(plain, strong)
}

func (sc *Scorer) tiered(plain, strong int) int {
	raw := float64(plain)*sc.w.PlainMatchWeight + float64(strong)*sc.w.StrongMatchWeight
	return clampScore(math.Round(math.Min(raw, MaxScore)))
}

// clamp bounds v to [lo, hi]. NaN and -Inf map to lo.
func clamp(v, lo, hi float64) float64 {
	if math.IsNaN(v) || v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

func clampScore(v float64) int {
	return int(clamp(v, 0, MaxScore))
}
