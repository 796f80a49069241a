// Command seed generates a synthetic sales CSV for local development and
// demos. Generation is deterministic for a given seed.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"trendtracker/internal/exporter"
	"trendtracker/internal/loader"
)

func main() {
	out := flag.String("out", "data/all_data.csv", "output CSV path")
	rows := flag.Int("rows", 0, "number of order lines (0 = default)")
	customers := flag.Int("customers", 0, "number of distinct customers (0 = default)")
	seed := flag.Uint64("seed", 0, "random seed (0 = default)")
	year := flag.Int("year", 0, "calendar year to generate orders in (0 = default)")
	flag.Parse()

	logger := slog.New(slog.NewTextHandler(os.Stderr, nil))

	cfg := loader.DefaultDemoConfig()
	if *rows > 0 {
		cfg.Rows = *rows
	}
	if *customers > 0 {
		cfg.Customers = *customers
	}
	if *seed > 0 {
		cfg.Seed = *seed
	}
	if *year > 0 {
		cfg.Start = time.Date(*year, time.January, 1, 0, 0, 0, 0, time.UTC)
		cfg.End = time.Date(*year, time.December, 31, 0, 0, 0, 0, time.UTC)
	}

	txs := loader.GenerateDemo(cfg)

	writer := exporter.NewCSVWriter(logger)
	options := exporter.WriteOptions{
		Headers: exporter.TransactionHeaders,
		Records: exporter.TransactionRecords(txs),
	}
	if err := writer.WriteFile(*out, options); err != nil {
		logger.Error("write demo CSV", "error", err)
		os.Exit(1)
	}

	fmt.Printf("wrote %d transactions to %s\n", len(txs), *out)
}
