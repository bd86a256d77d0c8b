package http

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/reflectify/reflectify/internal/analysis"
	"github.com/reflectify/reflectify/internal/journal"
	"github.com/reflectify/reflectify/internal/logging"
	"github.com/reflectify/reflectify/internal/store"
	"go.uber.org/zap"
)

func (s *Server) handleHealth(c echo.Context) error {
	resp := HealthResponse{Status: "ok", Version: s.config.Version}
	if s.health != nil {
		resp.Checks = map[string]string{"store": "ok"}
		if err := s.health.Ping(c.Request().Context()); err != nil {
			s.logger.Warn(c.Request().Context(), "store health check failed", zap.Error(err))
			resp.Status = "degraded"
			resp.Checks["store"] = "unavailable"
			return c.JSON(http.StatusServiceUnavailable, resp)
		}
	}
	return c.JSON(http.StatusOK, resp)
}

// handleAnalyze scores a reflection without storing it.
func (s *Server) handleAnalyze(c echo.Context) error {
	var req AnalyzeRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid analyze request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	// Blank text is not rejected; the engine answers it with the short-text result.
	res := s.engine.Analyze(c.Request().Context(), analysis.Input{
		Text:     req.Text,
		Title:    req.Title,
		Category: req.Category,
	})
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleSubmit(c echo.Context) error {
	var req SubmitRequest
	if err := c.Bind(&req); err != nil {
		s.logger.Warn(c.Request().Context(), "invalid submit request", zap.Error(err))
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	entry, err := s.journal.Submit(c.Request().Context(), journal.SubmitRequest{
		UserID:      req.UserID,
		DisplayName: req.DisplayName,
		Title:       req.Title,
		Category:    req.Category,
		Text:        req.Text,
	})
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusCreated, newReflectionResponse(entry))
}

func (s *Server) handleGetReflection(c echo.Context) error {
	ctx := logging.WithReflectionID(c.Request().Context(), c.Param("id"))
	entry, err := s.journal.Get(ctx, c.Param("id"))
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, newReflectionResponse(entry))
}

func (s *Server) handleReanalyze(c echo.Context) error {
	ctx := logging.WithReflectionID(c.Request().Context(), c.Param("id"))
	entry, err := s.journal.Reanalyze(ctx, c.Param("id"))
	if err != nil {
		return s.mapError(c, err)
	}
	return c.JSON(http.StatusOK, newReflectionResponse(entry))
}

// mapError turns service errors into HTTP errors. Unknown errors are logged
// and hidden behind a generic 500.
func (s *Server) mapError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, journal.ErrInvalidInput):
		return echo.NewHTTPError(http.StatusBadRequest, strings.TrimPrefix(err.Error(), journal.ErrInvalidInput.Error()+": "))
	case errors.Is(err, store.ErrNotFound):
		return echo.NewHTTPError(http.StatusNotFound, "reflection not found")
	default:
		s.logger.Error(c.Request().Context(), "request failed", zap.Error(err))
		return echo.NewHTTPError(http.StatusInternalServerError, "internal error")
	}
}
