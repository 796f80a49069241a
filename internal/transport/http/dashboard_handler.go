package http

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"trendtracker/internal/analytics"
	apierrors "trendtracker/internal/errors"
	"trendtracker/internal/services"
)

const (
	defaultTopN = 10
	maxTopN     = 100
)

// DashboardHandler serves the analytics endpoints backing the dashboard
// views. Every endpoint accepts the shared filter query parameters.
type DashboardHandler struct {
	service      *services.DashboardService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewDashboardHandler creates a new dashboard handler.
func NewDashboardHandler(service *services.DashboardService, logger *slog.Logger) *DashboardHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger),
	}
}

// RegisterRoutes registers the dashboard routes.
func (h *DashboardHandler) RegisterRoutes(r chi.Router) {
	r.Get("/summary", h.GetSummary)
	r.Route("/rfm", func(r chi.Router) {
		r.Get("/metrics", h.GetRFMMetrics)
		r.Get("/scores", h.GetRFMScores)
		r.Get("/segments", h.GetSegments)
	})
	r.Get("/cohorts", h.GetCohorts)
	r.Get("/orders/daily", h.GetDailyOrders)
	r.Get("/aov/monthly", h.GetMonthlyAOV)
	r.Get("/products/top", h.GetTopProducts)
	r.Get("/customers/top", h.GetTopCustomers)
	r.Get("/demographics", h.GetDemographics)
	r.Get("/delivery", h.GetDelivery)
}

// handleServiceError maps service failures onto the API taxonomy before
// delegating to the shared error handler.
func (h *DashboardHandler) handleServiceError(w http.ResponseWriter, r *http.Request, err error) {
	if errors.Is(err, services.ErrNotLoaded) {
		h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
		return
	}
	h.errorHandler.HandleError(w, r, err)
}

// GetSummary returns the headline KPI band.
func (h *DashboardHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	summary, err := h.service.Summary(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, summary)
}

// GetRFMMetrics returns the per-customer recency/frequency/monetary values.
func (h *DashboardHandler) GetRFMMetrics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	metrics, _, err := h.service.RFM(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"customers": len(metrics),
		"metrics":   metrics,
	})
}

// GetRFMScores returns the quintile scores and segment labels.
func (h *DashboardHandler) GetRFMScores(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	_, scores, err := h.service.RFM(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{
		"customers": len(scores),
		"scores":    scores,
	})
}

// segmentSummary is one row of the segment breakdown response.
type segmentSummary struct {
	Segment   string  `json:"segment"`
	Customers int     `json:"customers"`
	Revenue   float64 `json:"revenue"`
}

// GetSegments returns customer counts and attributed revenue per segment.
func (h *DashboardHandler) GetSegments(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	_, scores, err := h.service.RFM(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	revenue, err := h.service.SegmentRevenue(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}

	counts := make(map[string]int, len(analytics.SegmentBands)+1)
	for _, s := range scores {
		counts[s.Segment]++
	}

	rows := make([]segmentSummary, 0, len(revenue))
	for _, sr := range revenue {
		rows = append(rows, segmentSummary{
			Segment:   sr.Segment,
			Customers: counts[sr.Segment],
			Revenue:   sr.Revenue,
		})
	}
	render.JSON(w, r, map[string]interface{}{"segments": rows})
}

// GetCohorts returns the monthly retention matrix.
func (h *DashboardHandler) GetCohorts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	matrix, err := h.service.Cohorts(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, matrix)
}

// GetDailyOrders returns the orders-per-day series.
func (h *DashboardHandler) GetDailyOrders(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, err := h.service.DailyOrders(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"series": series})
}

// GetMonthlyAOV returns the average-order-value trend.
func (h *DashboardHandler) GetMonthlyAOV(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	series, err := h.service.MonthlyAOV(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"series": series})
}

// GetTopProducts returns the best-selling products by quantity.
func (h *DashboardHandler) GetTopProducts(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	limit, err := parseLimit(r, defaultTopN, maxTopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	products, err := h.service.TopProducts(r.Context(), f, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"products": products})
}

// GetTopCustomers returns the highest-value customers by monetary total.
func (h *DashboardHandler) GetTopCustomers(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}
	limit, err := parseLimit(r, defaultTopN, maxTopN)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	customers, err := h.service.TopCustomers(r.Context(), f, limit)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, map[string]interface{}{"customers": customers})
}

// GetDemographics returns distinct-customer counts per dimension.
func (h *DashboardHandler) GetDemographics(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	demo, err := h.service.Demographics(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, demo)
}

// GetDelivery returns delivery lead-time statistics.
func (h *DashboardHandler) GetDelivery(w http.ResponseWriter, r *http.Request) {
	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	stats, err := h.service.DeliveryTimes(r.Context(), f)
	if err != nil {
		h.handleServiceError(w, r, err)
		return
	}
	render.JSON(w, r, stats)
}
