// Package services contains the application services between HTTP transport
// and the analytics core.
package services

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"trendtracker/internal/analytics"
	"trendtracker/internal/exporter"
	"trendtracker/internal/loader"
)

// ErrNotLoaded is returned when a computation is requested before a dataset
// has been loaded.
var ErrNotLoaded = errors.New("dashboard: transaction data not loaded")

// DashboardService owns the loaded transaction batch and runs the analytics
// core against it per request. The batch is immutable once loaded; every
// request recomputes its view wholesale from the filtered batch, so there is
// no derived state to invalidate.
type DashboardService struct {
	logger   *slog.Logger
	txs      []analytics.Transaction
	loadedAt time.Time
	source   string
}

// NewDashboardService creates the service without data; call LoadFromFile
// or SetBatch before serving.
func NewDashboardService(logger *slog.Logger) *DashboardService {
	if logger == nil {
		logger = slog.Default()
	}
	return &DashboardService{logger: logger}
}

// LoadFromFile reads the sales CSV at path into the service.
func (s *DashboardService) LoadFromFile(ctx context.Context, l *loader.Loader, path string) error {
	start := time.Now()
	txs, err := l.LoadFile(path)
	if err != nil {
		return err
	}
	s.txs = txs
	s.loadedAt = time.Now()
	s.source = path

	s.logger.InfoContext(ctx, "dataset loaded",
		slog.String("source", path),
		slog.Int("transactions", len(txs)),
		slog.Duration("duration", time.Since(start)))
	return nil
}

// SetBatch installs an in-memory batch directly. Used by the report binary
// and tests.
func (s *DashboardService) SetBatch(txs []analytics.Transaction) {
	s.txs = txs
	s.loadedAt = time.Now()
	s.source = "memory"
}

// Loaded reports whether a dataset is available.
func (s *DashboardService) Loaded() bool {
	return s.txs != nil
}

// Status describes the loaded dataset.
type Status struct {
	Source       string    `json:"source"`
	Transactions int       `json:"transactions"`
	LoadedAt     time.Time `json:"loaded_at"`
}

// Status returns dataset metadata for the health endpoint.
func (s *DashboardService) Status() Status {
	return Status{Source: s.source, Transactions: len(s.txs), LoadedAt: s.loadedAt}
}

// filtered applies the filter to the immutable batch.
func (s *DashboardService) filtered(f analytics.Filter) ([]analytics.Transaction, error) {
	if s.txs == nil {
		return nil, ErrNotLoaded
	}
	return f.Apply(s.txs), nil
}

// Summary computes the headline KPI band for the filtered batch.
func (s *DashboardService) Summary(ctx context.Context, f analytics.Filter) (analytics.Summary, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return analytics.Summary{}, err
	}
	return analytics.Summarize(txs), nil
}

// RFM runs the aggregation and scoring pipeline for the filtered batch.
// Metrics and scores are index-aligned.
func (s *DashboardService) RFM(ctx context.Context, f analytics.Filter) ([]analytics.CustomerMetrics, []analytics.RFMScore, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, nil, err
	}

	metrics, err := analytics.Aggregate(txs, time.Time{})
	if err != nil {
		return nil, nil, err
	}
	scores, err := analytics.Score(metrics)
	if err != nil {
		return nil, nil, err
	}

	s.logger.DebugContext(ctx, "rfm computed",
		slog.Int("transactions", len(txs)),
		slog.Int("customers", len(metrics)))
	return metrics, scores, nil
}

// Cohorts builds the retention matrix for the filtered batch.
func (s *DashboardService) Cohorts(ctx context.Context, f analytics.Filter) (*analytics.CohortMatrix, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	return analytics.BuildCohorts(txs)
}

// DailyOrders returns the orders-over-time series.
func (s *DashboardService) DailyOrders(ctx context.Context, f analytics.Filter) ([]analytics.DailyOrdersPoint, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	return analytics.DailyOrders(txs), nil
}

// MonthlyAOV returns the average-order-value trend.
func (s *DashboardService) MonthlyAOV(ctx context.Context, f analytics.Filter) ([]analytics.MonthlyAOVPoint, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	return analytics.MonthlyAOV(txs), nil
}

// TopProducts returns the product ranking, n capped by the handler.
func (s *DashboardService) TopProducts(ctx context.Context, f analytics.Filter, n int) ([]analytics.ProductCount, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	return analytics.TopProducts(txs, n), nil
}

// Demographics returns distinct-customer counts per dimension.
func (s *DashboardService) Demographics(ctx context.Context, f analytics.Filter) (analytics.Demographics, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return analytics.Demographics{}, err
	}
	return analytics.CustomerDemographics(txs), nil
}

// DeliveryTimes returns the lead-time statistics.
func (s *DashboardService) DeliveryTimes(ctx context.Context, f analytics.Filter) (analytics.DeliveryStats, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return analytics.DeliveryStats{}, err
	}
	return analytics.DeliveryTimes(txs), nil
}

// TopCustomers returns the highest-value customers by monetary total.
func (s *DashboardService) TopCustomers(ctx context.Context, f analytics.Filter, n int) ([]analytics.CustomerMetrics, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	metrics, err := analytics.Aggregate(txs, time.Time{})
	if err != nil {
		return nil, err
	}
	return analytics.TopCustomers(metrics, n), nil
}

// SegmentRevenue attributes revenue to RFM segments.
func (s *DashboardService) SegmentRevenue(ctx context.Context, f analytics.Filter) ([]analytics.SegmentRevenue, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return nil, err
	}
	metrics, err := analytics.Aggregate(txs, time.Time{})
	if err != nil {
		return nil, err
	}
	scores, err := analytics.Score(metrics)
	if err != nil {
		return nil, err
	}
	return analytics.RevenueBySegment(txs, scores), nil
}

// FilteredTransactions returns the raw filtered rows for CSV download.
func (s *DashboardService) FilteredTransactions(ctx context.Context, f analytics.Filter) ([]analytics.Transaction, error) {
	return s.filtered(f)
}

// Report assembles the full Excel report payload for the filtered batch.
func (s *DashboardService) Report(ctx context.Context, f analytics.Filter) (exporter.ExcelReport, error) {
	txs, err := s.filtered(f)
	if err != nil {
		return exporter.ExcelReport{}, err
	}

	report := exporter.ExcelReport{
		Summary:      analytics.Summarize(txs),
		Transactions: txs,
	}

	metrics, err := analytics.Aggregate(txs, time.Time{})
	if err != nil {
		return exporter.ExcelReport{}, err
	}
	report.Metrics = metrics

	if len(metrics) > 0 {
		scores, err := analytics.Score(metrics)
		if err != nil {
			return exporter.ExcelReport{}, err
		}
		report.Scores = scores
	}

	cohorts, err := analytics.BuildCohorts(txs)
	if err != nil {
		return exporter.ExcelReport{}, err
	}
	report.Cohorts = cohorts

	return report, nil
}
