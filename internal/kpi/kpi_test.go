package kpi

import (
	"encoding/json"
	"math/rand"
	"testing"

	"github.com/reflectify/reflectify/internal/patterns"
	"github.com/reflectify/reflectify/internal/textstats"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDefaultScorer() *Scorer {
	return NewScorer(DefaultWeights())
}

func TestDepth(t *testing.T) {
	sc := newDefaultScorer()
	tests := []struct {
		name       string
		words      int
		analytical bool
		critical   bool
		want       int
	}{
		{name: "zero", words: 0, want: 0},
		{name: "short band", words: 15, want: 2},
		{name: "short band half rounds up", words: 25, want: 3},
		{name: "short band cap", words: 29, want: 3},
		{name: "medium band start", words: 30, want: 3},
		{name: "medium band", words: 55, want: 4},
		{name: "medium band end", words: 99, want: 6},
		{name: "long band start is dampened", words: 100, want: 5},
		{name: "long band 120 words", words: 120, want: 5},
		{name: "long band cap", words: 1000, want: 7},
		{name: "analytical bonus", words: 120, analytical: true, want: 7},
		{name: "critical bonus", words: 55, critical: true, want: 6},
		{name: "both bonuses clamp at 10", words: 1000, analytical: true, critical: true, want: 10},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sc.Depth(tt.words, tt.analytical, tt.critical))
		})
	}
}

func TestCoherence(t *testing.T) {
	sc := newDefaultScorer()
	tests := []struct {
		name      string
		words     int
		sentences int
		want      int
	}{
		{name: "ideal sentence length", words: 100, sentences: 7, want: 10},
		{name: "one endless sentence", words: 100, sentences: 1, want: 0},
		{name: "short text factor", words: 10, sentences: 1, want: 4},
		{name: "zero words hits factor floor", words: 0, sentences: 1, want: 2},
		{name: "thirty words two sentences", words: 30, sentences: 2, want: 7},
		{name: "zero sentences treated as one", words: 10, sentences: 0, want: 4},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, sc.Coherence(tt.words, tt.sentences))
		})
	}
}

func TestTieredScores(t *testing.T) {
	sc := newDefaultScorer()
	tests := []struct {
		plain, strong, want int
	}{
		{0, 0, 0},
		{1, 0, 2},
		{0, 1, 3},
		{2, 1, 6},
		{5, 2, 10},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, sc.Metacognition(tt.plain, tt.strong), "metacognition %d/%d", tt.plain, tt.strong)
		assert.Equal(t, tt.want, sc.Actionable(tt.plain, tt.strong), "actionable %d/%d", tt.plain, tt.strong)
	}
}

func TestMetacognition_MonotonicInStrongMatches(t *testing.T) {
	sc := newDefaultScorer()
	for plain := 0; plain <= 6; plain++ {
		prev := -1
		for strong := 0; strong <= 6; strong++ {
			got := sc.Metacognition(plain, strong)
			assert.GreaterOrEqual(t, got, prev, "plain=%d strong=%d", plain, strong)
			prev = got
		}
	}
}

func TestScore_AllInRange(t *testing.T) {
	sc := newDefaultScorer()
	rng := rand.New(rand.NewSource(42))

	for i := 0; i < 2000; i++ {
		stats := textstats.Statistics{
			WordCount:      rng.Intn(2000),
			SentenceCount:  1 + rng.Intn(200),
			ParagraphCount: 1 + rng.Intn(20),
		}
		sig := patterns.Signals{
			HasAnalyticalPhrase:        rng.Intn(2) == 0,
			HasCriticalPhrase:          rng.Intn(2) == 0,
			MetacognitiveMatches:       rng.Intn(15),
			StrongMetacognitiveMatches: rng.Intn(8),
			ActionMatches:              rng.Intn(15),
			StrongActionMatches:        rng.Intn(8),
		}
		s := sc.Score(stats, sig)
		for _, v := range []int{s.Depth, s.Coherence, s.Metacognition, s.Actionable} {
			require.GreaterOrEqual(t, v, 0)
			require.LessOrEqual(t, v, MaxScore)
		}
	}
}

func TestScore_Deterministic(t *testing.T) {
	sc := newDefaultScorer()
	stats := textstats.Statistics{WordCount: 140, SentenceCount: 9, ParagraphCount: 2}
	sig := patterns.Signals{HasAnalyticalPhrase: true, MetacognitiveMatches: 2, StrongActionMatches: 1}
	assert.Equal(t, sc.Score(stats, sig), sc.Score(stats, sig))
}

func TestScore_CustomWeights(t *testing.T) {
	w := DefaultWeights()
	w.StrongMatchWeight = 5
	w.DepthDampening = 1
	sc := NewScorer(w)

	assert.Equal(t, 10, sc.Metacognition(0, 2))
	assert.Equal(t, 7, sc.Depth(100, false, false))
	assert.Equal(t, w, sc.Weights())
}

func TestOverall(t *testing.T) {
	s := Scores{Depth: 7, Coherence: 8, Metacognition: 6, Actionable: 6}
	assert.Equal(t, 6.75, s.Overall())
	assert.Equal(t, 6.8, s.OverallRounded())
	assert.Equal(t, 5.0, Uniform(5).Overall())
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name   string
		scores Scores
		want   Level
	}{
		{name: "all zero", scores: Uniform(0), want: Descriptive},
		{name: "just below analytical", scores: Scores{6, 6, 6, 5}, want: Descriptive},
		{name: "exactly analytical", scores: Uniform(6), want: Analytical},
		{name: "just below critical", scores: Scores{8, 8, 8, 7}, want: Analytical},
		{name: "exactly critical", scores: Uniform(8), want: Critical},
		{name: "max", scores: Uniform(10), want: Critical},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Classify(tt.scores))
		})
	}
}

func TestClassify_ConsistentWithOverall(t *testing.T) {
	th := DefaultThresholds()
	for d := 0; d <= MaxScore; d++ {
		for c := 0; c <= MaxScore; c++ {
			for m := 0; m <= MaxScore; m += 2 {
				for a := 0; a <= MaxScore; a += 3 {
					s := Scores{d, c, m, a}
					overall := s.Overall()
					level := th.Classify(s)
					switch {
					case overall >= 8:
						require.Equal(t, Critical, level, "%+v", s)
					case overall >= 6:
						require.Equal(t, Analytical, level, "%+v", s)
					default:
						require.Equal(t, Descriptive, level, "%+v", s)
					}
				}
			}
		}
	}
}

func TestThresholds_Custom(t *testing.T) {
	th := Thresholds{Analytical: 4, Critical: 9}
	assert.Equal(t, Analytical, th.Classify(Uniform(5)))
	assert.Equal(t, Analytical, th.Classify(Uniform(8)))
	assert.Equal(t, Critical, th.ClassifyOverall(9))
}

func TestLevel_Text(t *testing.T) {
	for _, l := range []Level{Descriptive, Analytical, Critical} {
		parsed, err := ParseLevel(l.String())
		require.NoError(t, err)
		assert.Equal(t, l, parsed)
	}
	_, err := ParseLevel("profound")
	assert.Error(t, err)
	assert.Equal(t, "Level(7)", Level(7).String())

	data, err := json.Marshal(map[string]Level{"level": Analytical})
	require.NoError(t, err)
	assert.JSONEq(t, `{"level":"analytical"}`, string(data))

	var decoded struct{ Level Level }
	require.NoError(t, json.Unmarshal([]byte(`{"Level":"critical"}`), &decoded))
	assert.Equal(t, Critical, decoded.Level)
}
