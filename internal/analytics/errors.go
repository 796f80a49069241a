package analytics

import (
	"errors"
	"fmt"
)

// ErrEmptyPopulation is returned when scoring is attempted on an empty
// customer population.
var ErrEmptyPopulation = errors.New("analytics: empty customer population")

// ValidationError describes a malformed transaction rejected during eager
// input validation. Index is the position of the offending row in the input
// slice.
type ValidationError struct {
	Index   int
	Field   string
	Message string
}

// Error implements the error interface.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("analytics: transaction %d: %s: %s", e.Index, e.Field, e.Message)
}

// IsValidationError reports whether err wraps a *ValidationError.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// validateTransactions applies the shared fail-fast checks used by both the
// aggregator and the cohort engine. asOf bounds the latest acceptable order
// date.
func validateTransactions(txs []Transaction, asOf timeBound) error {
	for i, tx := range txs {
		if tx.CustomerID == "" {
			return &ValidationError{Index: i, Field: "customer_id", Message: "missing customer id"}
		}
		if tx.TotalPrice < 0 {
			return &ValidationError{Index: i, Field: "total_price", Message: fmt.Sprintf("negative total price %.2f", tx.TotalPrice)}
		}
		if tx.OrderDate.IsZero() {
			return &ValidationError{Index: i, Field: "order_date", Message: "missing order date"}
		}
		if asOf.valid && daysBetween(asOf.t, tx.OrderDate) > 0 {
			return &ValidationError{
				Index:   i,
				Field:   "order_date",
				Message: fmt.Sprintf("order date %s after as-of date %s", tx.OrderDate.Format("2006-01-02"), asOf.t.Format("2006-01-02")),
			}
		}
	}
	return nil
}
