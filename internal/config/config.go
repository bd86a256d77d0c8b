// Package config provides configuration loading for reflectify.
//
// Configuration is assembled from built-in defaults, an optional YAML file and
// REFLECTIFY_* environment variables, in that order of precedence (lowest first).
package config

import (
	"errors"
	"fmt"
	"time"
)

// Config holds the complete reflectify configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Store     StoreConfig     `koanf:"store"`
	Generator GeneratorConfig `koanf:"generator"`
	Scoring   ScoringConfig   `koanf:"scoring"`
	Privacy   PrivacyConfig   `koanf:"privacy"`
	Events    EventsConfig    `koanf:"events"`
	Logging   LoggingConfig   `koanf:"logging"`
	Telemetry TelemetryConfig `koanf:"telemetry"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Host            string   `koanf:"http_host"`
	Port            int      `koanf:"http_port"`
	ShutdownTimeout Duration `koanf:"shutdown_timeout"`
}

// StoreConfig holds the SQLite record store location.
type StoreConfig struct {
	Path string `koanf:"path"`
}

// GeneratorConfig configures the external text-generation service used for
// adaptive prompts. Provider "disabled" (the default) keeps prompt generation
// purely rule-based.
type GeneratorConfig struct {
	Provider    string   `koanf:"provider"` // disabled, anthropic, openai, langchain
	Model       string   `koanf:"model"`
	APIKey      Secret   `koanf:"api_key"`
	BaseURL     string   `koanf:"base_url"`
	Timeout     Duration `koanf:"timeout"`
	MaxTokens   int      `koanf:"max_tokens"`
	Temperature float64  `koanf:"temperature"`
	RateLimit   float64  `koanf:"rate_limit"` // requests per second
	Burst       int      `koanf:"burst"`
}

// Enabled reports whether an external provider is configured.
func (g GeneratorConfig) Enabled() bool {
	return g.Provider != "" && g.Provider != "disabled"
}

// ScoringConfig exposes the tunable scoring constants. The defaults are the
// empirically chosen reference values; none of them is derived.
type ScoringConfig struct {
	ShortTextMinWords     int     `koanf:"short_text_min_words"`
	ShortTextMinChars     int     `koanf:"short_text_min_chars"`
	GeneratorMinChars     int     `koanf:"generator_min_chars"`
	DepthDampening        float64 `koanf:"depth_dampening"`
	AnalyticalBonus       float64 `koanf:"analytical_bonus"`
	CriticalBonus         float64 `koanf:"critical_bonus"`
	OptimalSentenceLength float64 `koanf:"optimal_sentence_length"`
	DeviationPenalty      float64 `koanf:"deviation_penalty"`
	PlainMatchWeight      float64 `koanf:"plain_match_weight"`
	StrongMatchWeight     float64 `koanf:"strong_match_weight"`
	AnalyticalThreshold   float64 `koanf:"analytical_threshold"`
	CriticalThreshold     float64 `koanf:"critical_threshold"`
}

// PrivacyConfig controls redaction of reflection text before it is sent to
// the external generator.
type PrivacyConfig struct {
	Enabled  bool `koanf:"enabled"`
	Gitleaks bool `koanf:"gitleaks"`
}

// EventsConfig configures analysis-completed notifications. An empty URL
// disables publishing.
type EventsConfig struct {
	NATSURL string `koanf:"nats_url"`
	Subject string `koanf:"subject"`
}

// LoggingConfig holds the user-facing logging knobs.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

// TelemetryConfig holds OpenTelemetry export settings.
type TelemetryConfig struct {
	Enabled     bool    `koanf:"enabled"`
	Endpoint    string  `koanf:"endpoint"`
	Protocol    string  `koanf:"protocol"` // grpc or http/protobuf
	Insecure    bool    `koanf:"insecure"`
	ServiceName string  `koanf:"service_name"`
	SampleRate  float64 `koanf:"sample_rate"`
}

// Default returns the configuration used when nothing overrides it.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "localhost",
			Port:            9191,
			ShutdownTimeout: Duration(10 * time.Second),
		},
		Store: StoreConfig{
			Path: "reflectify.db",
		},
		Generator: GeneratorConfig{
			Provider:    "disabled",
			Timeout:     Duration(10 * time.Second),
			MaxTokens:   1024,
			Temperature: 0.7,
			RateLimit:   50.0 / 60.0,
			Burst:       5,
		},
		Scoring: ScoringConfig{
			ShortTextMinWords:     7,
			ShortTextMinChars:     50,
			GeneratorMinChars:     30,
			DepthDampening:        0.7,
			AnalyticalBonus:       1.5,
			CriticalBonus:         2,
			OptimalSentenceLength: 15,
			DeviationPenalty:      0.5,
			PlainMatchWeight:      1.5,
			StrongMatchWeight:     2.5,
			AnalyticalThreshold:   6,
			CriticalThreshold:     8,
		},
		Privacy: PrivacyConfig{
			Enabled:  true,
			Gitleaks: true,
		},
		Events: EventsConfig{
			Subject: "reflectify.analysis.completed",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Telemetry: TelemetryConfig{
			Enabled:     false,
			Endpoint:    "localhost:4317",
			Protocol:    "grpc",
			Insecure:    true,
			ServiceName: "reflectify",
			SampleRate:  1.0,
		},
	}
}

var validProviders = map[string]bool{
	"":          true,
	"disabled":  true,
	"anthropic": true,
	"openai":    true,
	"langchain": true,
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d (must be 1-65535)", c.Server.Port)
	}
	if c.Server.ShutdownTimeout.Duration() <= 0 {
		return errors.New("shutdown timeout must be positive")
	}
	if c.Store.Path == "" {
		return errors.New("store path is required")
	}

	if !validProviders[c.Generator.Provider] {
		return fmt.Errorf("unknown generator provider %q", c.Generator.Provider)
	}
	if c.Generator.Enabled() {
		if c.Generator.Timeout.Duration() <= 0 {
			return errors.New("generator timeout must be positive")
		}
		if c.Generator.Provider != "langchain" && !c.Generator.APIKey.IsSet() {
			return fmt.Errorf("generator provider %q requires an api key", c.Generator.Provider)
		}
	}

	s := c.Scoring
	if s.ShortTextMinWords < 0 || s.ShortTextMinChars < 0 || s.GeneratorMinChars < 0 {
		return errors.New("scoring length limits cannot be negative")
	}
	if s.OptimalSentenceLength <= 0 {
		return errors.New("scoring optimal_sentence_length must be positive")
	}
	if s.AnalyticalThreshold > s.CriticalThreshold {
		return fmt.Errorf("scoring analytical_threshold %.2f exceeds critical_threshold %.2f",
			s.AnalyticalThreshold, s.CriticalThreshold)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("logging format must be 'json' or 'console', got %q", c.Logging.Format)
	}

	if c.Telemetry.Enabled {
		if c.Telemetry.Endpoint == "" {
			return errors.New("telemetry endpoint is required when telemetry is enabled")
		}
		if c.Telemetry.SampleRate < 0 || c.Telemetry.SampleRate > 1 {
			return fmt.Errorf("telemetry sample_rate must be between 0 and 1, got %f", c.Telemetry.SampleRate)
		}
	}

	return nil
}
