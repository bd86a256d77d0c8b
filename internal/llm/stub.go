package llm

import (
	"context"
	"sync"
	"time"
)

// Stub is a deterministic Client for tests and offline runs.
type Stub struct {
	// Text is returned on every call unless Err is set.
	Text string
	Err  error
	// Delay blocks each call, honoring ctx cancellation.
	Delay time.Duration

	mu       sync.Mutex
	requests []Request
}

// Name implements Client.
func (s *Stub) Name() string { return "stub" }

// Generate records req and returns the configured answer.
func (s *Stub) Generate(ctx context.Context, req Request) (Response, error) {
	s.mu.Lock()
	s.requests = append(s.requests, req)
	s.mu.Unlock()

	if s.Delay > 0 {
		select {
		case <-time.After(s.Delay):
		case <-ctx.Done():
			return Response{}, ctx.Err()
		}
	}
	if s.Err != nil {
		return Response{}, s.Err
	}
	if s.Text == "" {
		return Response{}, ErrEmptyResponse
	}
	return Response{Text: s.Text, Model: "stub"}, nil
}

// Requests returns the calls received so far.
func (s *Stub) Requests() []Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Request(nil), s.requests...)
}

// Calls returns the number of calls received.
func (s *Stub) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.requests)
}
