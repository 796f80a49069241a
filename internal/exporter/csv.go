// Package exporter renders analytics outputs to CSV and Excel for the
// dashboard's download actions and the offline report binary.
package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"

	"trendtracker/internal/analytics"
)

// CSVWriter provides CSV export functionality.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance.
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// WriteOptions configures CSV writing behavior.
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // add UTF-8 BOM so Excel recognizes the encoding
}

// Write streams headers and records to w.
func (c *CSVWriter) Write(w io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := w.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
			return fmt.Errorf("write BOM: %w", err)
		}
	}

	cw := csv.NewWriter(w)
	if len(options.Headers) > 0 {
		if err := cw.Write(options.Headers); err != nil {
			return fmt.Errorf("write headers: %w", err)
		}
	}
	for i, record := range options.Records {
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write record %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteFile writes a CSV file at path, creating parent directories.
func (c *CSVWriter) WriteFile(path string, options WriteOptions) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create file: %w", err)
	}
	defer f.Close()

	if err := c.Write(f, options); err != nil {
		return err
	}

	c.logger.Info("wrote CSV file",
		slog.String("path", path),
		slog.Int("records", len(options.Records)))
	return nil
}

// TransactionHeaders is the column order used for transaction exports.
var TransactionHeaders = []string{
	"order_id", "customer_id", "order_date", "delivery_date",
	"product_name", "quantity", "total_price", "gender", "age_group", "state",
}

// TransactionRecords flattens transactions into CSV records matching
// TransactionHeaders.
func TransactionRecords(txs []analytics.Transaction) [][]string {
	records := make([][]string, 0, len(txs))
	for _, tx := range txs {
		delivery := ""
		if !tx.DeliveryDate.IsZero() {
			delivery = tx.DeliveryDate.Format("2006-01-02")
		}
		records = append(records, []string{
			tx.OrderID,
			tx.CustomerID,
			tx.OrderDate.Format("2006-01-02"),
			delivery,
			tx.ProductName,
			strconv.Itoa(tx.Quantity),
			formatPrice(tx.TotalPrice),
			tx.Gender,
			tx.AgeGroup,
			tx.State,
		})
	}
	return records
}

// RFMHeaders is the column order for combined metric/score exports.
var RFMHeaders = []string{
	"customer_id", "recency_days", "frequency", "monetary",
	"r_score", "f_score", "m_score", "rfm_code", "segment",
}

// RFMRecords joins customer metrics with their scores into CSV records.
// Metrics and scores are produced in the same order by the core, so rows
// are zipped positionally.
func RFMRecords(metrics []analytics.CustomerMetrics, scores []analytics.RFMScore) [][]string {
	records := make([][]string, 0, len(metrics))
	for i, m := range metrics {
		var s analytics.RFMScore
		if i < len(scores) {
			s = scores[i]
		}
		records = append(records, []string{
			m.CustomerID,
			strconv.Itoa(m.RecencyDays),
			strconv.Itoa(m.Frequency),
			formatPrice(m.Monetary),
			strconv.Itoa(s.RScore),
			strconv.Itoa(s.FScore),
			strconv.Itoa(s.MScore),
			s.Code(),
			s.Segment,
		})
	}
	return records
}

// CohortHeaders builds the header row for a cohort matrix export: the cohort
// month, its size, then one retention column per age.
func CohortHeaders(matrix *analytics.CohortMatrix) []string {
	headers := []string{"cohort_month", "cohort_size"}
	for age := 0; age <= matrix.MaxAge; age++ {
		headers = append(headers, "month_"+strconv.Itoa(age))
	}
	return headers
}

// CohortRecords flattens the sparse retention matrix into dense CSV rows.
// Absent cells render empty rather than zero to distinguish "no data yet"
// from "nobody retained".
func CohortRecords(matrix *analytics.CohortMatrix) [][]string {
	records := make([][]string, 0, len(matrix.Cohorts))
	for _, row := range matrix.Cohorts {
		record := []string{row.Month, strconv.Itoa(row.Size)}
		for age := 0; age <= matrix.MaxAge; age++ {
			if rate, ok := row.Retention[age]; ok {
				record = append(record, strconv.FormatFloat(rate, 'f', 4, 64))
			} else {
				record = append(record, "")
			}
		}
		records = append(records, record)
	}
	return records
}

func formatPrice(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
