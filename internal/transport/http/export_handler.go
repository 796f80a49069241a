package http

import (
	"bytes"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	apierrors "trendtracker/internal/errors"
	"trendtracker/internal/exporter"
	"trendtracker/internal/services"
)

// ExportHandler serves report downloads: the filtered transactions as CSV
// and the full analytics workbook as xlsx.
type ExportHandler struct {
	service      *services.DashboardService
	csvWriter    *exporter.CSVWriter
	excelWriter  *exporter.ExcelWriter
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewExportHandler creates a new export handler.
func NewExportHandler(service *services.DashboardService, logger *slog.Logger) *ExportHandler {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExportHandler{
		service:      service,
		csvWriter:    exporter.NewCSVWriter(logger),
		excelWriter:  exporter.NewExcelWriter(logger),
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger),
	}
}

// RegisterRoutes registers the export routes.
func (h *ExportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/export", func(r chi.Router) {
		r.Get("/csv", h.ExportCSV)
		r.Get("/xlsx", h.ExportExcel)
	})
}

// ExportCSV streams the filtered transactions as a CSV download.
func (h *ExportHandler) ExportCSV(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	txs, err := h.service.FilteredTransactions(ctx, f)
	if err != nil {
		if errors.Is(err, services.ErrNotLoaded) {
			h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	filename := fmt.Sprintf("transactions_%s.csv", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))

	options := exporter.WriteOptions{
		Headers:   exporter.TransactionHeaders,
		Records:   exporter.TransactionRecords(txs),
		BOMPrefix: true,
	}
	if err := h.csvWriter.Write(w, options); err != nil {
		// Headers are already sent; log rather than emit a second payload.
		h.logger.ErrorContext(ctx, "csv export write failed",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "csv export served",
		slog.Int("transactions", len(txs)),
		slog.String("filename", filename))
}

// ExportExcel serves the full report workbook as an xlsx download. The
// workbook is assembled in memory first so failures still produce a clean
// error response.
func (h *ExportHandler) ExportExcel(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	f, err := parseFilter(r)
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	report, err := h.service.Report(ctx, f)
	if err != nil {
		if errors.Is(err, services.ErrNotLoaded) {
			h.errorHandler.HandleError(w, r, apierrors.ErrDataNotLoaded)
			return
		}
		h.errorHandler.HandleError(w, r, err)
		return
	}

	var buf bytes.Buffer
	if err := h.excelWriter.Write(&buf, report); err != nil {
		h.logger.ErrorContext(ctx, "excel export failed",
			slog.String("error", err.Error()))
		h.errorHandler.HandleError(w, r, apierrors.ErrExportFailed)
		return
	}

	filename := fmt.Sprintf("report_%s.xlsx", time.Now().UTC().Format("20060102_150405"))
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	w.Header().Set("Content-Length", fmt.Sprintf("%d", buf.Len()))

	if _, err := buf.WriteTo(w); err != nil {
		h.logger.ErrorContext(ctx, "excel export write failed",
			slog.String("error", err.Error()))
		return
	}

	h.logger.InfoContext(ctx, "excel export served",
		slog.Int("transactions", len(report.Transactions)),
		slog.String("filename", filename))
}
