// Package analysis runs the reflection-scoring pipeline: statistics,
// pattern signals, KPI scores, level and adaptive prompts.
//
// Engine.Analyze never panics and never returns nil. Short texts get a fixed
// minimal result without scoring; an internal failure during scoring yields
// a neutral result and is logged at error level.
package analysis

import (
	"context"
	"fmt"
	"time"
	"unicode/utf8"

	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/patterns"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/textstats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/reflectify/reflectify/internal/analysis"

// Engine is stateless and safe for concurrent use.
type Engine struct {
	cfg       Config
	scorer    *kpi.Scorer
	matcher   *patterns.Matcher
	generator *prompting.Generator
	logger    *logging.Logger
	tracer    trace.Tracer
	metrics   *metrics
}

// Option configures an Engine.
type Option func(*Engine)

// WithGenerator sets the prompt generator. The default is rule-based only.
func WithGenerator(g *prompting.Generator) Option {
	return func(e *Engine) { e.generator = g }
}

// WithMatcher replaces the default German lexicon.
func WithMatcher(m *patterns.Matcher) Option {
	return func(e *Engine) { e.matcher = m }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(e *Engine) { e.tracer = t }
}

// NewEngine returns an Engine for cfg.
func NewEngine(cfg Config, opts ...Option) *Engine {
	e := &Engine{
		cfg:     cfg,
		scorer:  kpi.NewScorer(cfg.Weights),
		matcher: patterns.Default(),
		metrics: newMetrics(),
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.logger == nil {
		e.logger = logging.Nop()
	}
	if e.tracer == nil {
		e.tracer = otel.Tracer(instrumentationName)
	}
	if e.generator == nil {
		e.generator = prompting.New(prompting.DefaultConfig(), prompting.WithLogger(e.logger), prompting.WithTracer(e.tracer))
	}
	return e
}

// Analyze scores in. The returned Result is never nil.
func (e *Engine) Analyze(ctx context.Context, in Input) (res *Result) {
	start := time.Now()
	ctx, span := e.tracer.Start(ctx, "analysis.Analyze")
	defer func() {
		if r := recover(); r != nil {
			err := fmt.Errorf("analysis panic: %v", r)
			span.RecordError(err)
			span.SetStatus(codes.Error, "analysis failed")
			e.logger.Error(ctx, "analysis failed, returning neutral result",
				zap.Error(err),
				zap.Stack("stack"))
			res = fallbackResult()
		}

		span.SetAttributes(
			attribute.String("analysis.source", string(res.Source)),
			attribute.String("analysis.level", res.Level.String()),
			attribute.Int("analysis.word_count", res.Stats.WordCount),
		)
		span.End()

		elapsed := time.Since(start)
		e.metrics.total.WithLabelValues(string(res.Source)).Inc()
		e.metrics.duration.Observe(elapsed.Seconds())
		e.logger.Debug(ctx, "reflection analyzed",
			zap.String("source", string(res.Source)),
			zap.String("level", res.Level.String()),
			zap.Float64("overall", res.Overall),
			zap.String("prompt_source", string(res.PromptSource)),
			logging.TextLength("text", in.Text),
			zap.Duration("duration", elapsed))
	}()

	wc := textstats.WordCount(in.Text)
	if wc < e.cfg.ShortTextMinWords || utf8.RuneCountInString(in.Text) < e.cfg.ShortTextMinChars {
		return shortTextResult(wc)
	}
	return e.score(ctx, in)
}

func (e *Engine) score(ctx context.Context, in Input) *Result {
	stats := textstats.Extract(in.Text)
	sig := e.matcher.Match(in.Text)
	scores := e.scorer.Score(stats, sig)
	level := e.cfg.Thresholds.Classify(scores)

	out := e.generator.Generate(ctx, prompting.Request{
		Text:     in.Text,
		Title:    in.Title,
		Category: in.Category,
		Stats:    stats,
		Signals:  sig,
		Scores:   scores,
	})

	return &Result{
		KPIs:         scores,
		Level:        level,
		Overall:      scores.OverallRounded(),
		Feedback:     out.Feedback,
		Prompts:      out.Prompts,
		Stats:        stats,
		Source:       SourceScored,
		PromptSource: out.Source,
	}
}
