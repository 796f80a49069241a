// Package loader ingests the raw sales CSV into typed transactions for the
// analytics core. It owns all parsing and row validation so the core only
// ever sees a well-formed batch.
package loader

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"trendtracker/internal/analytics"
)

// dateLayouts are tried in order when parsing date columns.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05Z07:00",
	"02/01/2006",
}

// column name aliases, lower-cased. The dataset has drifted over time
// (quantity vs quantity_x), so mapping is header driven rather than
// positional.
var columnAliases = map[string]string{
	"order_id":      "order_id",
	"customer_id":   "customer_id",
	"order_date":    "order_date",
	"delivery_date": "delivery_date",
	"product_name":  "product_name",
	"quantity":      "quantity",
	"quantity_x":    "quantity",
	"total_price":   "total_price",
	"gender":        "gender",
	"age_group":     "age_group",
	"state":         "state",
}

// required columns; everything else is optional and defaults to the zero
// value.
var requiredColumns = []string{"customer_id", "order_date", "total_price"}

// RowError describes a row that could not be parsed. Line is 1-based and
// includes the header line, matching what an editor shows.
type RowError struct {
	Line    int
	Column  string
	Message string
}

// Error implements the error interface.
func (e *RowError) Error() string {
	return fmt.Sprintf("loader: line %d: column %q: %s", e.Line, e.Column, e.Message)
}

// Loader reads sales transaction CSV files.
type Loader struct {
	logger *slog.Logger
}

// New creates a loader. A nil logger falls back to slog.Default.
func New(logger *slog.Logger) *Loader {
	if logger == nil {
		logger = slog.Default()
	}
	return &Loader{logger: logger}
}

// LoadFile reads the CSV file at path.
func (l *Loader) LoadFile(path string) ([]analytics.Transaction, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open data file: %w", err)
	}
	defer f.Close()

	txs, err := l.Load(f)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", path, err)
	}
	return txs, nil
}

// Load reads transactions from r. The first record must be a header row;
// columns are matched by name, unknown columns are ignored, and rows with
// malformed mandatory fields abort the load with a *RowError.
func (l *Loader) Load(r io.Reader) ([]analytics.Transaction, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}
	cols, err := mapColumns(header)
	if err != nil {
		return nil, err
	}

	var txs []analytics.Transaction
	line := 1
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		line++

		tx, err := parseRow(record, cols, line)
		if err != nil {
			return nil, err
		}
		txs = append(txs, tx)
	}

	l.logger.Info("loaded transactions",
		slog.Int("rows", len(txs)),
		slog.Int("columns", len(cols)))
	return txs, nil
}

// mapColumns resolves header names to field positions.
func mapColumns(header []string) (map[string]int, error) {
	cols := make(map[string]int, len(header))
	for i, name := range header {
		key := strings.ToLower(strings.TrimSpace(strings.TrimPrefix(name, "\uFEFF")))
		if canonical, ok := columnAliases[key]; ok {
			cols[canonical] = i
		}
	}
	for _, required := range requiredColumns {
		if _, ok := cols[required]; !ok {
			return nil, fmt.Errorf("loader: missing required column %q in header", required)
		}
	}
	return cols, nil
}

func parseRow(record []string, cols map[string]int, line int) (analytics.Transaction, error) {
	field := func(name string) string {
		idx, ok := cols[name]
		if !ok || idx >= len(record) {
			return ""
		}
		return strings.TrimSpace(record[idx])
	}

	var tx analytics.Transaction
	tx.OrderID = field("order_id")
	tx.CustomerID = field("customer_id")
	tx.ProductName = field("product_name")
	tx.Gender = field("gender")
	tx.AgeGroup = field("age_group")
	tx.State = field("state")

	if tx.CustomerID == "" {
		return tx, &RowError{Line: line, Column: "customer_id", Message: "empty value"}
	}

	orderDate, err := parseDate(field("order_date"))
	if err != nil {
		return tx, &RowError{Line: line, Column: "order_date", Message: err.Error()}
	}
	if orderDate.IsZero() {
		return tx, &RowError{Line: line, Column: "order_date", Message: "empty value"}
	}
	tx.OrderDate = orderDate

	// Delivery date is optional and may legitimately be blank.
	if raw := field("delivery_date"); raw != "" {
		deliveryDate, err := parseDate(raw)
		if err != nil {
			return tx, &RowError{Line: line, Column: "delivery_date", Message: err.Error()}
		}
		tx.DeliveryDate = deliveryDate
	}

	price, err := parseFloat(field("total_price"))
	if err != nil {
		return tx, &RowError{Line: line, Column: "total_price", Message: err.Error()}
	}
	if price < 0 {
		return tx, &RowError{Line: line, Column: "total_price", Message: fmt.Sprintf("negative value %.2f", price)}
	}
	tx.TotalPrice = price

	if raw := field("quantity"); raw != "" {
		qty, err := strconv.Atoi(raw)
		if err != nil {
			// Some exports write quantities as floats ("2.0").
			f, ferr := strconv.ParseFloat(raw, 64)
			if ferr != nil {
				return tx, &RowError{Line: line, Column: "quantity", Message: err.Error()}
			}
			qty = int(f)
		}
		tx.Quantity = qty
	}

	return tx, nil
}

func parseDate(raw string) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, raw); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable date %q", raw)
}

func parseFloat(raw string) (float64, error) {
	if raw == "" {
		return 0, fmt.Errorf("empty value")
	}
	// Tolerate thousands separators from spreadsheet exports.
	raw = strings.ReplaceAll(raw, ",", "")
	return strconv.ParseFloat(raw, 64)
}
