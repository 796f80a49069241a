// Command report generates the analytics report bundle from a sales CSV
// without running the server: an xlsx workbook plus per-view CSV files.
package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"trendtracker/internal/analytics"
	"trendtracker/internal/config"
	"trendtracker/internal/exporter"
	"trendtracker/internal/infrastructure"
	"trendtracker/internal/loader"
	"trendtracker/internal/services"
)

func main() {
	in := flag.String("in", "", "input sales CSV (defaults to the configured data file)")
	out := flag.String("out", "", "output directory (defaults to the configured export dir)")
	configPath := flag.String("config", "config.yaml", "path to YAML configuration file")
	from := flag.String("from", "", "optional start date filter, YYYY-MM-DD")
	to := flag.String("to", "", "optional end date filter, YYYY-MM-DD")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		fmt.Fprintf(os.Stderr, "initialize logger: %v\n", err)
		os.Exit(1)
	}

	if *in == "" {
		*in = cfg.Data.File
	}
	if *out == "" {
		*out = cfg.Data.ExportDir
	}

	filter, err := parseDateFilter(*from, *to)
	if err != nil {
		logger.Error("invalid date filter", "error", err)
		os.Exit(1)
	}

	if err := run(logger, *in, *out, filter); err != nil {
		logger.Error("report generation failed", "error", err)
		os.Exit(1)
	}
}

func parseDateFilter(from, to string) (analytics.Filter, error) {
	var f analytics.Filter
	var err error
	if from != "" {
		if f.From, err = time.ParseInLocation("2006-01-02", from, time.UTC); err != nil {
			return f, fmt.Errorf("parse -from: %w", err)
		}
	}
	if to != "" {
		if f.To, err = time.ParseInLocation("2006-01-02", to, time.UTC); err != nil {
			return f, fmt.Errorf("parse -to: %w", err)
		}
	}
	if !f.From.IsZero() && !f.To.IsZero() && f.To.Before(f.From) {
		return f, fmt.Errorf("-to is before -from")
	}
	return f, nil
}

func run(logger *slog.Logger, in, out string, filter analytics.Filter) error {
	ctx := context.Background()
	start := time.Now()

	dashboard := services.NewDashboardService(logger)
	if err := dashboard.LoadFromFile(ctx, loader.New(logger), in); err != nil {
		return err
	}

	report, err := dashboard.Report(ctx, filter)
	if err != nil {
		return err
	}

	excelWriter := exporter.NewExcelWriter(logger)
	if err := excelWriter.WriteFile(filepath.Join(out, "report.xlsx"), report); err != nil {
		return err
	}

	csvWriter := exporter.NewCSVWriter(logger)
	files := []struct {
		name    string
		headers []string
		records [][]string
	}{
		{"transactions.csv", exporter.TransactionHeaders, exporter.TransactionRecords(report.Transactions)},
		{"rfm.csv", exporter.RFMHeaders, exporter.RFMRecords(report.Metrics, report.Scores)},
		{"cohorts.csv", exporter.CohortHeaders(report.Cohorts), exporter.CohortRecords(report.Cohorts)},
	}
	for _, f := range files {
		path := filepath.Join(out, f.name)
		options := exporter.WriteOptions{Headers: f.headers, Records: f.records, BOMPrefix: true}
		if err := csvWriter.WriteFile(path, options); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	logger.Info("report bundle written",
		slog.String("dir", out),
		slog.Int("transactions", len(report.Transactions)),
		slog.Int("customers", len(report.Metrics)),
		slog.Duration("duration", time.Since(start)))
	return nil
}
