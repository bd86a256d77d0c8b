// Package llm provides clients for the external text-generation service
// used to enrich reflection prompts.
//
// Every client makes exactly one attempt per call. Callers bound the call
// with a context deadline and fall back to rule-based output on any error.
package llm

import (
	"context"
	"errors"
	"fmt"
)

// Client generates text from a system instruction and user content.
type Client interface {
	Generate(ctx context.Context, req Request) (Response, error)
	// Name identifies the provider in logs and metrics.
	Name() string
}

// Request is one generation call.
type Request struct {
	System      string
	User        string
	MaxTokens   int
	Temperature float64
	// JSON asks the provider for a single JSON object when it supports it.
	JSON bool
}

// Response is the generated text.
type Response struct {
	Text  string
	Model string
}

// ErrEmptyResponse is returned when the provider answers without content.
var ErrEmptyResponse = errors.New("empty response from provider")

// StatusError is a non-2xx answer from a provider.
type StatusError struct {
	Provider string
	Code     int
	Message  string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s API error (%d): %s", e.Provider, e.Code, e.Message)
}
