package llm

import (
	"fmt"
	"net/http"
	"time"

	"golang.org/x/time/rate"
)

// Provider names accepted by New.
const (
	ProviderDisabled  = "disabled"
	ProviderAnthropic = "anthropic"
	ProviderOpenAI    = "openai"
	ProviderLangChain = "langchain"
)

const (
	defaultAnthropicBaseURL = "https://api.anthropic.com"
	defaultAnthropicModel   = "claude-3-5-haiku-20241022"
	defaultOpenAIBaseURL    = "https://api.openai.com"
	defaultOpenAIModel      = "gpt-4o-mini"
	defaultMaxTokens        = 1024

	// 50 requests per minute, bursts of 5.
	defaultRateLimit = 50.0 / 60.0
	defaultBurst     = 5

	// Transport ceiling; the per-call deadline comes from the caller's context.
	httpTimeout = 60 * time.Second
)

// Config selects and configures a provider.
type Config struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	MaxTokens   int
	Temperature float64
	RateLimit   float64
	Burst       int
	HTTPClient  *http.Client
}

// New builds the client for cfg.Provider. It returns (nil, nil) when the
// provider is empty or "disabled".
func New(cfg Config) (Client, error) {
	switch cfg.Provider {
	case "", ProviderDisabled:
		return nil, nil
	case ProviderAnthropic:
		return newAnthropic(cfg)
	case ProviderOpenAI:
		return newOpenAI(cfg)
	case ProviderLangChain:
		return newLangChain(cfg)
	default:
		return nil, fmt.Errorf("unknown llm provider %q", cfg.Provider)
	}
}

func newLimiter(cfg Config) *rate.Limiter {
	limit, burst := cfg.RateLimit, cfg.Burst
	if limit <= 0 {
		limit = defaultRateLimit
	}
	if burst <= 0 {
		burst = defaultBurst
	}
	return rate.NewLimiter(rate.Limit(limit), burst)
}

func httpClient(cfg Config) *http.Client {
	if cfg.HTTPClient != nil {
		return cfg.HTTPClient
	}
	return &http.Client{Timeout: httpTimeout}
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}

func maxTokens(req Request, cfg int) int {
	if req.MaxTokens > 0 {
		return req.MaxTokens
	}
	if cfg > 0 {
		return cfg
	}
	return defaultMaxTokens
}
