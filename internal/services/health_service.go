package services

import (
	"time"
)

// HealthService reports process and dataset health.
type HealthService struct {
	version   string
	startedAt time.Time
	dashboard *DashboardService
}

// NewHealthService creates a health service bound to the dashboard service.
func NewHealthService(version string, dashboard *DashboardService) *HealthService {
	return &HealthService{
		version:   version,
		startedAt: time.Now(),
		dashboard: dashboard,
	}
}

// Health is the health endpoint payload.
type Health struct {
	Status  string `json:"status"`
	Version string `json:"version"`
	Uptime  string `json:"uptime"`
	Dataset Status `json:"dataset"`
}

// Check returns the current health snapshot. Status degrades when no
// dataset is loaded, since every dashboard view depends on it.
func (h *HealthService) Check() Health {
	status := "ok"
	if !h.dashboard.Loaded() {
		status = "degraded"
	}
	return Health{
		Status:  status,
		Version: h.version,
		Uptime:  time.Since(h.startedAt).Round(time.Second).String(),
		Dataset: h.dashboard.Status(),
	}
}
