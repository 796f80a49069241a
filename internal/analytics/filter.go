package analytics

import (
	"strings"
	"time"
)

// Filter narrows a batch of transactions the way the dashboard sidebar does:
// an inclusive date range, multi-select dimension filters, a case-insensitive
// product substring, and a floor on the summed order total.
type Filter struct {
	From            time.Time `json:"from,omitempty"`
	To              time.Time `json:"to,omitempty"` // inclusive of the whole day
	States          []string  `json:"states,omitempty"`
	Genders         []string  `json:"genders,omitempty"`
	AgeGroups       []string  `json:"age_groups,omitempty"`
	ProductContains string    `json:"product_contains,omitempty"`
	MinOrderValue   float64   `json:"min_order_value,omitempty"`
}

// IsZero reports whether the filter matches everything.
func (f Filter) IsZero() bool {
	return f.From.IsZero() && f.To.IsZero() &&
		len(f.States) == 0 && len(f.Genders) == 0 && len(f.AgeGroups) == 0 &&
		f.ProductContains == "" && f.MinOrderValue <= 0
}

// Apply returns the transactions matching the filter, preserving input
// order. The input slice is never mutated.
func (f Filter) Apply(txs []Transaction) []Transaction {
	if f.IsZero() {
		out := make([]Transaction, len(txs))
		copy(out, txs)
		return out
	}

	states := toSet(f.States)
	genders := toSet(f.Genders)
	ageGroups := toSet(f.AgeGroups)
	product := strings.ToLower(f.ProductContains)

	out := make([]Transaction, 0, len(txs))
	for _, tx := range txs {
		if !f.From.IsZero() && daysBetween(f.From, tx.OrderDate) < 0 {
			continue
		}
		if !f.To.IsZero() && daysBetween(f.To, tx.OrderDate) > 0 {
			continue
		}
		if states != nil {
			if _, ok := states[tx.State]; !ok {
				continue
			}
		}
		if genders != nil {
			if _, ok := genders[tx.Gender]; !ok {
				continue
			}
		}
		if ageGroups != nil {
			if _, ok := ageGroups[tx.AgeGroup]; !ok {
				continue
			}
		}
		if product != "" && !strings.Contains(strings.ToLower(tx.ProductName), product) {
			continue
		}
		out = append(out, tx)
	}

	if f.MinOrderValue > 0 {
		out = filterByOrderTotal(out, f.MinOrderValue)
	}
	return out
}

// filterByOrderTotal keeps only transactions belonging to orders whose
// summed total meets the floor. Rows without an order id are judged on their
// own total.
func filterByOrderTotal(txs []Transaction, min float64) []Transaction {
	totals := make(map[string]float64)
	for _, tx := range txs {
		if tx.OrderID != "" {
			totals[tx.OrderID] += tx.TotalPrice
		}
	}

	out := txs[:0]
	for _, tx := range txs {
		total := tx.TotalPrice
		if tx.OrderID != "" {
			total = totals[tx.OrderID]
		}
		if total >= min {
			out = append(out, tx)
		}
	}
	return out
}

func toSet(values []string) map[string]struct{} {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}
