package llm

import (
	"context"
	"fmt"

	"github.com/tmc/langchaingo/llms"
	"github.com/tmc/langchaingo/llms/openai"
	"github.com/tmc/langchaingo/schema"
	"golang.org/x/time/rate"
)

// localToken is sent to OpenAI-compatible gateways that do not check keys.
const localToken = "unused"

// langChainClient talks to OpenAI-compatible endpoints (local gateways,
// proxies) through langchaingo.
type langChainClient struct {
	llm         llms.Model
	model       string
	maxTokens   int
	temperature float64
	limiter     *rate.Limiter
}

func newLangChain(cfg Config) (*langChainClient, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("langchain provider requires a base URL")
	}

	opts := []openai.Option{
		openai.WithBaseURL(cfg.BaseURL),
		openai.WithToken(orDefault(cfg.APIKey, localToken)),
		openai.WithModel(orDefault(cfg.Model, defaultOpenAIModel)),
	}
	if cfg.HTTPClient != nil {
		opts = append(opts, openai.WithHTTPClient(cfg.HTTPClient))
	}

	model, err := openai.New(opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create langchain client: %w", err)
	}

	return &langChainClient{
		llm:         model,
		model:       orDefault(cfg.Model, defaultOpenAIModel),
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		limiter:     newLimiter(cfg),
	}, nil
}

func (l *langChainClient) Name() string { return ProviderLangChain }

// Generate sends the system and user messages once.
func (l *langChainClient) Generate(ctx context.Context, req Request) (Response, error) {
	if err := l.limiter.Wait(ctx); err != nil {
		return Response{}, fmt.Errorf("rate limiter: %w", err)
	}

	temperature := req.Temperature
	if temperature == 0 {
		temperature = l.temperature
	}

	messages := []llms.MessageContent{
		llms.TextParts(schema.ChatMessageTypeSystem, req.System),
		llms.TextParts(schema.ChatMessageTypeHuman, req.User),
	}
	resp, err := l.llm.GenerateContent(ctx, messages,
		llms.WithMaxTokens(maxTokens(req, l.maxTokens)),
		llms.WithTemperature(temperature),
	)
	if err != nil {
		return Response{}, fmt.Errorf("langchain generate: %w", err)
	}
	if resp == nil || len(resp.Choices) == 0 || resp.Choices[0].Content == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: resp.Choices[0].Content, Model: l.model}, nil
}
