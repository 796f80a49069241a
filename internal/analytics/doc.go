// Package analytics implements the computational core of the TrendTracker
// retail dashboard: descriptive KPIs, RFM customer segmentation, and cohort
// retention, all computed synchronously over a single in-memory batch of
// transactions.
//
// The package is deliberately free of I/O, shared state and concurrency.
// Every entry point takes an immutable input slice plus any reference date
// explicitly (never from ambient state) and returns a fresh output, so a run
// is deterministic, side-effect free and safely re-invokable.
//
// # RFM pipeline
//
// Aggregate groups transactions per customer into recency (whole days since
// the last order, relative to an explicit as-of date), frequency (distinct
// orders) and monetary (summed spend). Score then ranks the population
// independently on each dimension and cuts each ranking into five contiguous
// quintile buckets whose sizes differ by at most one, with stable input-order
// tie-breaking. Recency scores in reverse: the most recent buyers score 5.
// The segment label comes from SegmentBands, an ordered policy table kept as
// data so every band/label pair can be inspected and tested on its own.
//
// # Cohort retention
//
// BuildCohorts assigns each customer to the calendar month of their first
// purchase and counts distinct returning customers per month of age. The
// age-0 cell always equals the cohort size, which makes retention rates a
// straight division per cell.
//
// # Errors
//
// Input checks run eagerly before any computation. Malformed rows produce a
// *ValidationError carrying the row index and field; scoring an empty
// population returns ErrEmptyPopulation. There is never partial output.
package analytics
