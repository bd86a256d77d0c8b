package services

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/config"
	"github.com/reflectify/reflectify/internal/events"
	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/llm"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/privacy"
	"github.com/reflectify/reflectify/internal/prompting"
	"github.com/reflectify/reflectify/internal/store"
	"github.com/reflectify/reflectify/internal/telemetry"
)

const tracerName = "github.com/reflectify/reflectify"

// Registry provides access to the wired services.
type Registry interface {
	Engine() *analysis.Engine
	Generator() *prompting.Generator
	Scrubber() *privacy.Scrubber

	// Store and Journal are nil unless Options.OpenStore was set.
	Store() *store.Store
	Journal() *journal.Service

	Publisher() events.Publisher

	// Close releases the store and the publisher connection.
	Close() error
}

// Options configures Build.
type Options struct {
	Config    *config.Config
	Logger    *logging.Logger
	Telemetry *telemetry.Telemetry

	// Client overrides the provider selected by Config.Generator.
	Client llm.Client

	// OpenStore opens the SQLite store and builds the journal on top of it.
	OpenStore bool

	// StorePath overrides Config.Store.Path.
	StorePath string

	// PublishEvents connects to Config.Events.NATSURL. Without it the
	// journal uses a no-op publisher.
	PublishEvents bool
}

type registry struct {
	engine    *analysis.Engine
	generator *prompting.Generator
	scrubber  *privacy.Scrubber
	store     *store.Store
	journal   *journal.Service
	publisher events.Publisher
}

// Build creates the service graph described by opts.
func Build(ctx context.Context, opts Options) (Registry, error) {
	cfg := opts.Config
	if cfg == nil {
		cfg = config.Default()
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	tracer := opts.Telemetry.Tracer(tracerName)

	client := opts.Client
	if client == nil {
		var err error
		client, err = llm.New(llm.Config{
			Provider:    cfg.Generator.Provider,
			Model:       cfg.Generator.Model,
			APIKey:      cfg.Generator.APIKey.Value(),
			BaseURL:     cfg.Generator.BaseURL,
			MaxTokens:   cfg.Generator.MaxTokens,
			Temperature: cfg.Generator.Temperature,
			RateLimit:   cfg.Generator.RateLimit,
			Burst:       cfg.Generator.Burst,
		})
		if err != nil {
			return nil, fmt.Errorf("failed to create llm client: %w", err)
		}
	}

	r := &registry{
		scrubber:  privacy.New(privacy.Config{Enabled: cfg.Privacy.Enabled, Gitleaks: cfg.Privacy.Gitleaks}),
		publisher: events.NoopPublisher{},
	}

	genOpts := []prompting.Option{
		prompting.WithScrubber(r.scrubber),
		prompting.WithLogger(logger.Named("prompting")),
		prompting.WithTracer(tracer),
	}
	if client != nil {
		genOpts = append(genOpts, prompting.WithClient(client))
		logger.Info(ctx, "adaptive prompt generation enabled",
			zap.String("provider", client.Name()),
			zap.String("model", cfg.Generator.Model))
	}
	r.generator = prompting.New(prompting.FromSettings(cfg.Generator, cfg.Scoring), genOpts...)

	r.engine = analysis.NewEngine(analysis.FromSettings(cfg.Scoring),
		analysis.WithGenerator(r.generator),
		analysis.WithLogger(logger.Named("analysis")),
		analysis.WithTracer(tracer),
	)

	if opts.PublishEvents {
		pub, err := events.New(cfg.Events.NATSURL, cfg.Events.Subject, logger.Named("events"))
		if err != nil {
			return nil, fmt.Errorf("failed to create event publisher: %w", err)
		}
		r.publisher = pub
	}

	if opts.OpenStore {
		path := opts.StorePath
		if path == "" {
			path = cfg.Store.Path
		}
		st, err := store.Open(path)
		if err != nil {
			_ = r.publisher.Close()
			return nil, fmt.Errorf("failed to open store: %w", err)
		}
		r.store = st
		r.journal = journal.NewService(st, r.engine, r.publisher, logger.Named("journal"))
	}

	return r, nil
}

func (r *registry) Engine() *analysis.Engine        { return r.engine }
func (r *registry) Generator() *prompting.Generator { return r.generator }
func (r *registry) Scrubber() *privacy.Scrubber     { return r.scrubber }
func (r *registry) Store() *store.Store             { return r.store }
func (r *registry) Journal() *journal.Service       { return r.journal }
func (r *registry) Publisher() events.Publisher     { return r.publisher }

func (r *registry) Close() error {
	var errs []error
	if err := r.publisher.Close(); err != nil {
		errs = append(errs, fmt.Errorf("publisher close: %w", err))
	}
	if r.store != nil {
		if err := r.store.Close(); err != nil {
			errs = append(errs, fmt.Errorf("store close: %w", err))
		}
	}
	return errors.Join(errs...)
}
