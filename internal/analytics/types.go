package analytics

import (
	"time"
)

// Transaction represents a single sales line as delivered by the record
// loader. Core computations read CustomerID, OrderDate and TotalPrice; the
// remaining fields feed the descriptive KPIs.
type Transaction struct {
	OrderID      string    `json:"order_id"`
	CustomerID   string    `json:"customer_id"`
	OrderDate    time.Time `json:"order_date"`
	DeliveryDate time.Time `json:"delivery_date,omitempty"` // zero value = not delivered / unknown
	ProductName  string    `json:"product_name,omitempty"`
	Quantity     int       `json:"quantity,omitempty"`
	TotalPrice   float64   `json:"total_price"`
	Gender       string    `json:"gender,omitempty"`
	AgeGroup     string    `json:"age_group,omitempty"`
	State        string    `json:"state,omitempty"`
}

// HasDelivery reports whether the transaction carries a usable delivery date.
func (t Transaction) HasDelivery() bool {
	return !t.DeliveryDate.IsZero() && !t.DeliveryDate.Before(t.OrderDate)
}

// DeliveryDays returns the whole days between order and delivery, or -1 when
// no delivery date is available.
func (t Transaction) DeliveryDays() int {
	if !t.HasDelivery() {
		return -1
	}
	return daysBetween(t.OrderDate, t.DeliveryDate)
}

// CustomerMetrics holds the per-customer recency/frequency/monetary triple.
// One entry per distinct customer, recomputed wholesale each run.
type CustomerMetrics struct {
	CustomerID  string  `json:"customer_id"`
	RecencyDays int     `json:"recency_days"`
	Frequency   int     `json:"frequency"`
	Monetary    float64 `json:"monetary"`
}

// RFMScore holds the quintile scores and segment label for one customer.
// Scores are relative to the scored population, not absolute.
type RFMScore struct {
	CustomerID string `json:"customer_id"`
	RScore     int    `json:"r_score"`
	FScore     int    `json:"f_score"`
	MScore     int    `json:"m_score"`
	Segment    string `json:"segment"`
}

// Code returns the concatenated score string, e.g. "545".
func (s RFMScore) Code() string {
	return string([]byte{'0' + byte(s.RScore), '0' + byte(s.FScore), '0' + byte(s.MScore)})
}

// CohortRow is one cohort month with its sparse retention cells. Counts maps
// age-in-months to the number of distinct cohort customers who transacted at
// that age; Retention holds the same cells divided by the cohort size.
type CohortRow struct {
	Month     string          `json:"month"` // calendar month, "2006-01"
	Size      int             `json:"size"`
	Counts    map[int]int     `json:"counts"`
	Retention map[int]float64 `json:"retention"`
}

// CohortMatrix is the full retention matrix, rows ordered by cohort month.
type CohortMatrix struct {
	Cohorts []CohortRow `json:"cohorts"`
	MaxAge  int         `json:"max_age"` // largest age observed across all cohorts
}

// Row returns the cohort row for the given month, or nil if absent.
func (m *CohortMatrix) Row(month string) *CohortRow {
	for i := range m.Cohorts {
		if m.Cohorts[i].Month == month {
			return &m.Cohorts[i]
		}
	}
	return nil
}

// CohortMonthLayout is the format used for cohort month keys.
const CohortMonthLayout = "2006-01"

// daysBetween counts whole calendar days from a to b, truncating both to
// midnight UTC first so intraday timestamps do not shift the result.
func daysBetween(a, b time.Time) int {
	ad := time.Date(a.Year(), a.Month(), a.Day(), 0, 0, 0, 0, time.UTC)
	bd := time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, time.UTC)
	return int(bd.Sub(ad).Hours() / 24)
}

// monthIndex maps a date to a linear month counter so that month deltas are
// a plain subtraction.
func monthIndex(t time.Time) int {
	return t.Year()*12 + int(t.Month()) - 1
}
