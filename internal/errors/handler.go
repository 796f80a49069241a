package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"

	"trendtracker/internal/analytics"
	"trendtracker/internal/middleware"
)

// ErrorHandler provides centralized error handling for HTTP handlers: it
// logs the failure with request context and renders a structured payload.
type ErrorHandler struct {
	logger *slog.Logger
}

// NewErrorHandler creates a new error handler.
func NewErrorHandler(logger *slog.Logger) *ErrorHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ErrorHandler{
		logger: logger.With(slog.String("component", "error_handler")),
	}
}

// HandleError converts any error to an APIError and responds. Failures are
// surfaced verbatim, never swallowed into partial or stale results.
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	apiErr := h.toAPIError(err)

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("error_code", apiErr.ErrorCode),
		slog.Int("status", apiErr.StatusCode),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

// toAPIError maps arbitrary errors onto the API taxonomy. Core analytics
// errors translate to client-facing codes; everything else is a 500.
func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	var ve *analytics.ValidationError
	if errors.As(err, &ve) {
		return NewWithDetails(http.StatusBadRequest, "INVALID_TRANSACTION", "Transaction batch failed validation", map[string]interface{}{
			"index":   ve.Index,
			"field":   ve.Field,
			"message": ve.Message,
		})
	}

	if errors.Is(err, analytics.ErrEmptyPopulation) {
		return ErrEmptyPopulation
	}

	return NewWithDetails(http.StatusInternalServerError, "INTERNAL_SERVER_ERROR", "Internal server error", err.Error())
}
