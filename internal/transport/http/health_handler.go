package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trendtracker/internal/services"
)

// HealthHandler serves the health endpoint.
type HealthHandler struct {
	service *services.HealthService
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(service *services.HealthService) *HealthHandler {
	return &HealthHandler{service: service}
}

// RegisterRoutes registers the health route.
func (h *HealthHandler) RegisterRoutes(r chi.Router) {
	r.Get("/health", h.GetHealth)
}

// GetHealth returns the process and dataset health snapshot. A degraded
// dataset still answers 200; readiness gating is the caller's concern.
func (h *HealthHandler) GetHealth(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.service.Check())
}
