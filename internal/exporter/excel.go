package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	"trendtracker/internal/analytics"
)

// ExcelReport holds everything that goes into the downloadable workbook.
type ExcelReport struct {
	Summary      analytics.Summary
	Transactions []analytics.Transaction
	Metrics      []analytics.CustomerMetrics
	Scores       []analytics.RFMScore
	Cohorts      *analytics.CohortMatrix
}

// ExcelWriter builds the multi-sheet dashboard workbook.
type ExcelWriter struct {
	logger *slog.Logger
}

// NewExcelWriter creates a new Excel writer instance.
func NewExcelWriter(logger *slog.Logger) *ExcelWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &ExcelWriter{logger: logger}
}

// Write streams the workbook to w. Sheets: Summary, Transactions, RFM,
// Cohorts.
func (e *ExcelWriter) Write(w io.Writer, report ExcelReport) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := e.writeSummarySheet(f, report.Summary); err != nil {
		return err
	}
	if err := writeTableSheet(f, "Transactions", TransactionHeaders, TransactionRecords(report.Transactions)); err != nil {
		return err
	}
	if err := writeTableSheet(f, "RFM", RFMHeaders, RFMRecords(report.Metrics, report.Scores)); err != nil {
		return err
	}
	if report.Cohorts != nil {
		if err := writeTableSheet(f, "Cohorts", CohortHeaders(report.Cohorts), CohortRecords(report.Cohorts)); err != nil {
			return err
		}
	}

	// The implicit default sheet is replaced by Summary.
	if err := f.DeleteSheet("Sheet1"); err != nil {
		return fmt.Errorf("delete default sheet: %w", err)
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook to path, creating parent directories.
func (e *ExcelWriter) WriteFile(path string, report ExcelReport) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := e.Write(f, report); err != nil {
		return err
	}

	e.logger.Info("wrote Excel report",
		slog.String("path", path),
		slog.Int("transactions", len(report.Transactions)),
		slog.Int("customers", len(report.Metrics)))
	return nil
}

func (e *ExcelWriter) writeSummarySheet(f *excelize.File, s analytics.Summary) error {
	const sheet = "Summary"
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	rows := [][]interface{}{
		{"Metric", "Value"},
		{"Total Orders", s.TotalOrders},
		{"Total Revenue", s.TotalRevenue},
		{"Average Order Value", s.AverageOrderValue},
		{"Repeat Purchase Rate", s.RepeatPurchaseRate},
		{"Unique Customers", s.UniqueCustomers},
		{"Unique Products", s.UniqueProducts},
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write summary row %d: %w", i, err)
		}
	}
	return nil
}

func writeTableSheet(f *excelize.File, sheet string, headers []string, records [][]string) error {
	if _, err := f.NewSheet(sheet); err != nil {
		return fmt.Errorf("create sheet %s: %w", sheet, err)
	}

	headerRow := make([]interface{}, len(headers))
	for i, h := range headers {
		headerRow[i] = h
	}
	if err := f.SetSheetRow(sheet, "A1", &headerRow); err != nil {
		return fmt.Errorf("write headers on %s: %w", sheet, err)
	}

	for i, record := range records {
		row := make([]interface{}, len(record))
		for j, v := range record {
			row[j] = v
		}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return fmt.Errorf("cell name: %w", err)
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return fmt.Errorf("write row %d on %s: %w", i, sheet, err)
		}
	}
	return nil
}
