package analytics

import (
	"time"
)

// timeBound is an optional upper bound on order dates. The zero value means
// "no bound".
type timeBound struct {
	t     time.Time
	valid bool
}

// Aggregate computes one CustomerMetrics per distinct customer appearing in
// txs. Recency is measured in whole days against asOf; a zero asOf defaults
// to the latest order date in the batch. Customers without transactions are
// never synthesized.
//
// Output order follows the first appearance of each customer in the input,
// which downstream quintile scoring relies on for stable tie-breaking.
//
// Validation is eager and fail-fast: a missing customer id, a negative total
// price, or an order date after asOf returns a *ValidationError with no
// partial output.
func Aggregate(txs []Transaction, asOf time.Time) ([]CustomerMetrics, error) {
	if asOf.IsZero() {
		asOf = maxOrderDate(txs)
	}
	if err := validateTransactions(txs, timeBound{t: asOf, valid: !asOf.IsZero()}); err != nil {
		return nil, err
	}

	type accum struct {
		last     time.Time
		orders   map[string]struct{}
		rows     int
		monetary float64
	}

	order := make([]string, 0, len(txs))
	byCustomer := make(map[string]*accum, len(txs))

	for _, tx := range txs {
		acc, ok := byCustomer[tx.CustomerID]
		if !ok {
			acc = &accum{orders: make(map[string]struct{})}
			byCustomer[tx.CustomerID] = acc
			order = append(order, tx.CustomerID)
		}
		if tx.OrderDate.After(acc.last) {
			acc.last = tx.OrderDate
		}
		if tx.OrderID != "" {
			acc.orders[tx.OrderID] = struct{}{}
		}
		acc.rows++
		acc.monetary += tx.TotalPrice
	}

	metrics := make([]CustomerMetrics, 0, len(order))
	for _, id := range order {
		acc := byCustomer[id]
		freq := len(acc.orders)
		if freq == 0 {
			// Rows without order ids: fall back to counting lines.
			freq = acc.rows
		}
		metrics = append(metrics, CustomerMetrics{
			CustomerID:  id,
			RecencyDays: daysBetween(acc.last, asOf),
			Frequency:   freq,
			Monetary:    acc.monetary,
		})
	}
	return metrics, nil
}

// maxOrderDate returns the latest order date in the batch, or the zero time
// for an empty batch.
func maxOrderDate(txs []Transaction) time.Time {
	var max time.Time
	for _, tx := range txs {
		if tx.OrderDate.After(max) {
			max = tx.OrderDate
		}
	}
	return max
}
