package http

import (
	"time"

	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/journal"
)

// HealthResponse is the response body for GET /health.
type HealthResponse struct {
	Status  string            `json:"status"` // "ok" or "degraded"
	Version string            `json:"version,omitempty"`
	Checks  map[string]string `json:"checks,omitempty"`
}

// AnalyzeRequest is the request body for POST /api/v1/analyze.
type AnalyzeRequest struct {
	Text     string `json:"text"`
	Title    string `json:"title,omitempty"`
	Category string `json:"category,omitempty"`
}

// SubmitRequest is the request body for POST /api/v1/reflections.
type SubmitRequest struct {
	UserID      string `json:"user_id"`
	DisplayName string `json:"display_name,omitempty"`
	Title       string `json:"title,omitempty"`
	Category    string `json:"category,omitempty"`
	Text        string `json:"text"`
}

// ReflectionResponse is a stored reflection with its analysis. Status is
// "analyzed" or "pending".
type ReflectionResponse struct {
	ID        string           `json:"id"`
	UserID    string           `json:"user_id"`
	Title     string           `json:"title,omitempty"`
	Category  string           `json:"category,omitempty"`
	Text      string           `json:"text"`
	CreatedAt time.Time        `json:"created_at"`
	Status    string           `json:"status"`
	Analysis  *analysis.Result `json:"analysis,omitempty"`
}

// ErrorResponse is the body of every error answer.
type ErrorResponse struct {
	Message string `json:"message"`
}

func newReflectionResponse(e journal.Entry) ReflectionResponse {
	status := "pending"
	if e.Analysis != nil {
		status = "analyzed"
	}
	return ReflectionResponse{
		ID:        e.Reflection.ID,
		UserID:    e.Reflection.UserID,
		Title:     e.Reflection.Title,
		Category:  e.Reflection.Category,
		Text:      e.Reflection.Text,
		CreatedAt: e.Reflection.CreatedAt,
		Status:    status,
		Analysis:  e.Analysis,
	}
}
