// Package journal stores reflections and their analyses.
//
// Service is the write path shared by the HTTP API and the CLI: it makes sure
// the author's profile exists, persists the reflection, runs the analysis
// engine, persists the result and announces it on the event bus.
package journal

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/events"
	"github.com/reflectify/reflectify/internal/kpi"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/sanitize"
	"github.com/reflectify/reflectify/internal/store"
	"github.com/reflectify/reflectify/internal/textstats"
	"go.uber.org/zap"
)

// ErrInvalidInput is returned for requests that fail validation.
var ErrInvalidInput = errors.New("invalid input")

// Analyzer is the subset of analysis.Engine the service needs.
type Analyzer interface {
	Analyze(ctx context.Context, in analysis.Input) *analysis.Result
}

// SubmitRequest is a new reflection.
type SubmitRequest struct {
	UserID      string
	DisplayName string
	Title       string
	Category    string
	Text        string
}

// Entry is a reflection together with its analysis.
type Entry struct {
	Reflection store.Reflection
	Analysis   *analysis.Result
}

// Service is safe for concurrent use.
type Service struct {
	store     *store.Store
	engine    Analyzer
	publisher events.Publisher
	logger    *logging.Logger
}

// NewService wires the service. A nil publisher drops events.
func NewService(st *store.Store, engine Analyzer, publisher events.Publisher, logger *logging.Logger) *Service {
	if publisher == nil {
		publisher = events.NoopPublisher{}
	}
	if logger == nil {
		logger = logging.Nop()
	}
	return &Service{store: st, engine: engine, publisher: publisher, logger: logger}
}

// Submit stores and analyzes a new reflection.
func (s *Service) Submit(ctx context.Context, req SubmitRequest) (Entry, error) {
	if strings.TrimSpace(req.UserID) == "" {
		return Entry{}, fmt.Errorf("%w: user_id is required", ErrInvalidInput)
	}
	if err := sanitize.ValidateUserID(req.UserID); err != nil {
		return Entry{}, fmt.Errorf("%w: user_id: %v", ErrInvalidInput, err)
	}
	if strings.TrimSpace(req.Text) == "" {
		return Entry{}, fmt.Errorf("%w: text is required", ErrInvalidInput)
	}
	ctx = logging.WithUserID(ctx, req.UserID)

	created, err := s.store.EnsureProfile(ctx, req.UserID, sanitize.Label(req.DisplayName))
	if err != nil {
		return Entry{}, err
	}
	if created {
		s.logger.Info(ctx, "profile created")
	}

	r, err := s.store.CreateReflection(ctx, store.Reflection{
		UserID:   req.UserID,
		Title:    sanitize.Label(req.Title),
		Category: sanitize.Label(req.Category),
		Text:     req.Text,
	})
	if err != nil {
		return Entry{}, err
	}

	return s.analyze(ctx, r)
}

// Reanalyze runs the engine again on a stored reflection and replaces its
// analysis.
func (s *Service) Reanalyze(ctx context.Context, id string) (Entry, error) {
	if !sanitize.IsReflectionID(id) {
		return Entry{}, fmt.Errorf("reflection %q: %w", id, store.ErrNotFound)
	}
	r, err := s.store.GetReflection(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	return s.analyze(logging.WithUserID(ctx, r.UserID), r)
}

// Get returns a reflection and its analysis. Analysis is nil while the
// reflection is pending.
func (s *Service) Get(ctx context.Context, id string) (Entry, error) {
	if !sanitize.IsReflectionID(id) {
		return Entry{}, fmt.Errorf("reflection %q: %w", id, store.ErrNotFound)
	}
	r, err := s.store.GetReflection(ctx, id)
	if err != nil {
		return Entry{}, err
	}
	a, err := s.store.GetAnalysis(ctx, id)
	if errors.Is(err, store.ErrNotFound) {
		return Entry{Reflection: r}, nil
	}
	if err != nil {
		return Entry{}, err
	}
	res, err := fromRecord(a)
	if err != nil {
		return Entry{}, err
	}
	return Entry{Reflection: r, Analysis: res}, nil
}

func (s *Service) analyze(ctx context.Context, r store.Reflection) (Entry, error) {
	ctx = logging.WithReflectionID(ctx, r.ID)

	res := s.engine.Analyze(ctx, analysis.Input{Text: r.Text, Title: r.Title, Category: r.Category})
	rec := toRecord(r.ID, res)
	if err := s.store.SaveAnalysis(ctx, rec); err != nil {
		return Entry{}, err
	}

	saved, err := s.store.GetAnalysis(ctx, r.ID)
	if err != nil {
		return Entry{}, err
	}
	s.publisher.PublishAnalysisCompleted(ctx, events.AnalysisCompleted{
		ReflectionID: r.ID,
		UserID:       r.UserID,
		Level:        res.Level.String(),
		Overall:      res.Overall,
		Source:       string(res.Source),
		AnalyzedAt:   saved.AnalyzedAt,
	})
	s.logger.Info(ctx, "reflection analyzed",
		zap.String("level", res.Level.String()),
		zap.Float64("overall", res.Overall),
		zap.String("source", string(res.Source)))

	return Entry{Reflection: r, Analysis: res}, nil
}

func toRecord(id string, res *analysis.Result) store.Analysis {
	return store.Analysis{
		ReflectionID:   id,
		Depth:          res.KPIs.Depth,
		Coherence:      res.KPIs.Coherence,
		Metacognition:  res.KPIs.Metacognition,
		Actionable:     res.KPIs.Actionable,
		Overall:        res.Overall,
		Level:          res.Level.String(),
		Feedback:       res.Feedback,
		Prompts:        res.Prompts,
		WordCount:      res.Stats.WordCount,
		SentenceCount:  res.Stats.SentenceCount,
		ParagraphCount: res.Stats.ParagraphCount,
		Source:         string(res.Source),
		PromptSource:   string(res.PromptSource),
	}
}

// fromRecord rebuilds a Result from storage.
func fromRecord(a store.Analysis) (*analysis.Result, error) {
	level, err := kpi.ParseLevel(a.Level)
	if err != nil {
		return nil, fmt.Errorf("stored analysis %s: %w", a.ReflectionID, err)
	}
	return &analysis.Result{
		KPIs: kpi.Scores{
			Depth:         a.Depth,
			Coherence:     a.Coherence,
			Metacognition: a.Metacognition,
			Actionable:    a.Actionable,
		},
		Level:    level,
		Overall:  a.Overall,
		Feedback: a.Feedback,
		Prompts:  a.Prompts,
		Stats: textstats.Statistics{
			WordCount:      a.WordCount,
			SentenceCount:  a.SentenceCount,
			ParagraphCount: a.ParagraphCount,
		},
		Source:       analysis.Source(a.Source),
		PromptSource: prompting.Source(a.PromptSource),
	}, nil
}
