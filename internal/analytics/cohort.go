package analytics

import (
	"sort"
	"time"
)

// BuildCohorts groups customers by the calendar month of their first
// transaction and counts, per (cohort month, age in months), the distinct
// customers from that cohort who transacted at that age. The age-0 cell of
// every cohort equals the cohort size by construction, and retention rates
// are each cell divided by that size.
//
// The same eager validation as Aggregate applies, bounded by the latest
// order date in the batch.
func BuildCohorts(txs []Transaction) (*CohortMatrix, error) {
	asOf := maxOrderDate(txs)
	if err := validateTransactions(txs, timeBound{t: asOf, valid: !asOf.IsZero()}); err != nil {
		return nil, err
	}

	// First pass: cohort month per customer.
	firstMonth := make(map[string]int, len(txs))
	for _, tx := range txs {
		m := monthIndex(tx.OrderDate)
		if cur, ok := firstMonth[tx.CustomerID]; !ok || m < cur {
			firstMonth[tx.CustomerID] = m
		}
	}

	// Second pass: distinct customers per (cohort, age) cell.
	type cell struct {
		cohort int
		age    int
	}
	seen := make(map[cell]map[string]struct{})
	for _, tx := range txs {
		c := cell{cohort: firstMonth[tx.CustomerID], age: monthIndex(tx.OrderDate) - firstMonth[tx.CustomerID]}
		if seen[c] == nil {
			seen[c] = make(map[string]struct{})
		}
		seen[c][tx.CustomerID] = struct{}{}
	}

	rows := make(map[int]*CohortRow)
	maxAge := 0
	for c, customers := range seen {
		row, ok := rows[c.cohort]
		if !ok {
			row = &CohortRow{
				Month:     monthIndexTime(c.cohort).Format(CohortMonthLayout),
				Counts:    make(map[int]int),
				Retention: make(map[int]float64),
			}
			rows[c.cohort] = row
		}
		row.Counts[c.age] = len(customers)
		if c.age > maxAge {
			maxAge = c.age
		}
	}

	matrix := &CohortMatrix{MaxAge: maxAge}
	cohortKeys := make([]int, 0, len(rows))
	for k := range rows {
		cohortKeys = append(cohortKeys, k)
	}
	sort.Ints(cohortKeys)

	for _, k := range cohortKeys {
		row := rows[k]
		row.Size = row.Counts[0]
		for age, count := range row.Counts {
			row.Retention[age] = float64(count) / float64(row.Size)
		}
		matrix.Cohorts = append(matrix.Cohorts, *row)
	}
	return matrix, nil
}

// monthIndexTime is the inverse of monthIndex, returning the first day of
// the encoded month.
func monthIndexTime(idx int) time.Time {
	return time.Date(idx/12, time.Month(idx%12+1), 1, 0, 0, 0, 0, time.UTC)
}
