// Package prompting produces adaptive follow-up prompts and short feedback
// for a scored reflection.
//
// A Generator first asks the configured llm.Client and falls back to Rules
// when no client is set, the text is short, or the call fails in any way.
// Generate never returns an error.
package prompting

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/reflectify/reflectify/internal/config"
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/llm"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/patterns"
	"github.com/reflectify/reflectify/internal/privacy"
	"github.com/reflectify/reflectify/internal/textstats"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/reflectify/reflectify/internal/prompting"

// Source names where an Output came from.
type Source string

const (
	SourceLLM   Source = "llm"
	SourceRules Source = "rules"
	// SourceFixed marks the canned prompts of the short-text and failure paths.
	SourceFixed Source = "fixed"
)

// ErrInvalidPayload is returned when the model answer does not have the
// expected shape.
var ErrInvalidPayload = errors.New("invalid generator payload")

// ErrClientPanic wraps a panic raised inside an llm.Client.
var ErrClientPanic = errors.New("generator client panicked")

// Request carries everything the generator may look at.
type Request struct {
	Text     string
	Title    string
	Category string
	Stats    textstats.Statistics
	Signals  patterns.Signals
	Scores   kpi.Scores
}

// Output is the generated prompts and feedback.
type Output struct {
	Prompts  []string
	Feedback string
	Source   Source
}

// Config tunes the LLM path.
type Config struct {
	// MinChars is the minimum rune length of the text for the LLM path.
	MinChars    int
	Timeout     time.Duration
	MaxTokens   int
	Temperature float64
}

// DefaultConfig returns the reference generator settings.
func DefaultConfig() Config {
	return Config{
		MinChars:    30,
		Timeout:     10 * time.Second,
		MaxTokens:   1024,
		Temperature: 0.7,
	}
}

// FromSettings maps the loaded configuration onto Config.
func FromSettings(gen config.GeneratorConfig, scoring config.ScoringConfig) Config {
	cfg := DefaultConfig()
	cfg.MinChars = scoring.GeneratorMinChars
	if d := gen.Timeout.Duration(); d > 0 {
		cfg.Timeout = d
	}
	if gen.MaxTokens > 0 {
		cfg.MaxTokens = gen.MaxTokens
	}
	cfg.Temperature = gen.Temperature
	return cfg
}

// Generator is safe for concurrent use.
type Generator struct {
	cfg      Config
	client   llm.Client
	scrubber *privacy.Scrubber
	logger   *logging.Logger
	tracer   trace.Tracer
}

// Option configures a Generator.
type Option func(*Generator)

// WithClient enables the LLM path.
func WithClient(c llm.Client) Option {
	return func(g *Generator) { g.client = c }
}

// WithScrubber redacts the text before it is sent to the client.
func WithScrubber(s *privacy.Scrubber) Option {
	return func(g *Generator) { g.scrubber = s }
}

// WithLogger sets the logger.
func WithLogger(l *logging.Logger) Option {
	return func(g *Generator) { g.logger = l }
}

// WithTracer sets the tracer.
func WithTracer(t trace.Tracer) Option {
	return func(g *Generator) { g.tracer = t }
}

// New returns a Generator. Without WithClient it is purely rule-based.
func New(cfg Config, opts ...Option) *Generator {
	g := &Generator{cfg: cfg}
	for _, opt := range opts {
		opt(g)
	}
	if g.logger == nil {
		g.logger = logging.Nop()
	}
	if g.tracer == nil {
		g.tracer = otel.Tracer(instrumentationName)
	}
	return g
}

// HasClient reports whether the LLM path is configured.
func (g *Generator) HasClient() bool {
	return g.client != nil
}

// Generate returns between one and MaxPrompts prompts and non-empty feedback.
func (g *Generator) Generate(ctx context.Context, req Request) Output {
	ctx, span := g.tracer.Start(ctx, "prompting.Generate")
	defer span.End()

	outcome := OutcomeSkipped
	if g.client != nil && utf8.RuneCountInString(req.Text) >= g.cfg.MinChars {
		out, err := g.generateLLM(ctx, req)
		if err == nil {
			g.record(span, SourceLLM, OutcomeSuccess)
			return out
		}
		outcome = classify(err)
		span.RecordError(err)
		g.logger.Warn(ctx, "prompt generation failed, using rules",
			zap.String("provider", g.client.Name()),
			zap.String("outcome", outcome),
			zap.Error(err))
	}

	out := Rules(req.Stats, req.Signals, req.Scores)
	g.record(span, SourceRules, outcome)
	return out
}

func (g *Generator) record(span trace.Span, source Source, outcome string) {
	span.SetAttributes(
		attribute.String("prompting.source", string(source)),
		attribute.String("prompting.outcome", outcome),
	)
	generationCounter().WithLabelValues(string(source), outcome).Inc()
}

func (g *Generator) generateLLM(ctx context.Context, req Request) (Output, error) {
	ctx, cancel := context.WithTimeout(ctx, g.cfg.Timeout)
	defer cancel()

	text := req.Text
	if g.scrubber != nil {
		res, err := g.scrubber.Scrub(text)
		if err != nil {
			g.logger.Warn(ctx, "credential detection unavailable", zap.Error(err))
		}
		if res.Redacted() {
			g.logger.Debug(ctx, "redacted reflection before generation",
				zap.Strings("rules", res.RuleIDs()),
				zap.Int("redactions", len(res.Findings)))
		}
		text = res.Text
	}

	resp, err := g.callClient(ctx, llm.Request{
		System:      systemPrompt(req.Category, req.Title),
		User:        text,
		MaxTokens:   g.cfg.MaxTokens,
		Temperature: g.cfg.Temperature,
		JSON:        true,
	})
	if err != nil {
		return Output{}, err
	}
	return parse(resp.Text)
}

// callClient turns a client panic into an error so the rules still answer and
// the scores computed before generation survive.
func (g *Generator) callClient(ctx context.Context, req llm.Request) (resp llm.Response, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%w: %v", ErrClientPanic, r)
		}
	}()
	return g.client.Generate(ctx, req)
}

func classify(err error) string {
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		return OutcomeTimeout
	case errors.Is(err, ErrInvalidPayload):
		return OutcomeInvalid
	default:
		return OutcomeError
	}
}

const systemTemplate = `Du bist ein erfahrener Lerncoach und begleitest Lernende beim Reflektieren.
Kategorie: %s
Titel: %s

Lies die folgende Reflexion und antworte ausschließlich mit einem JSON-Objekt der Form
{"adaptive_prompts": ["...", "...", "..."], "quick_feedback": "..."}

- adaptive_prompts: genau drei offene Folgefragen auf Deutsch, die zur Vertiefung der Reflexion anregen.
- quick_feedback: ein kurzes, wertschätzendes Feedback in ein bis zwei Sätzen.`

func systemPrompt(category, title string) string {
	return fmt.Sprintf(systemTemplate, oneLine(category, "Allgemein"), oneLine(title, "Ohne Titel"))
}

func oneLine(s, def string) string {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return def
	}
	return s
}

type payload struct {
	AdaptivePrompts json.RawMessage `json:"adaptive_prompts"`
	QuickFeedback   json.RawMessage `json:"quick_feedback"`
}

// parse accepts only a JSON object whose adaptive_prompts is an array of
// strings and whose quick_feedback is a string. Blank prompts are dropped and
// at most MaxPrompts kept.
func parse(text string) (Output, error) {
	var p payload
	if err := json.Unmarshal([]byte(llm.ExtractJSON(text)), &p); err != nil {
		return Output{}, fmt.Errorf("%w: %v", ErrInvalidPayload, err)
	}

	var raw []string
	if err := json.Unmarshal(p.AdaptivePrompts, &raw); err != nil {
		return Output{}, fmt.Errorf("%w: adaptive_prompts: %v", ErrInvalidPayload, err)
	}
	var feedback *string
	if err := json.Unmarshal(p.QuickFeedback, &feedback); err != nil || feedback == nil {
		return Output{}, fmt.Errorf("%w: quick_feedback is not a string", ErrInvalidPayload)
	}

	prompts := make([]string, 0, MaxPrompts)
	for _, s := range raw {
		if s = strings.TrimSpace(s); s != "" && len(prompts) < MaxPrompts {
			prompts = append(prompts, s)
		}
	}
	fb := strings.TrimSpace(*feedback)
	if len(prompts) == 0 || fb == "" {
		return Output{}, fmt.Errorf("%w: no prompts or empty feedback", ErrInvalidPayload)
	}

	return Output{Prompts: prompts, Feedback: fb, Source: SourceLLM}, nil
}
