package analytics

import (
	"sort"
)

// Score assigns 1-5 quintile scores on each RFM dimension and a segment
// label to every customer in metrics. Quintile boundaries are computed over
// the full population passed in, so scores are relative to the batch.
//
// Each dimension is ranked independently with a stable sort, so customers
// sharing a metric value keep their input order. The ranked sequence is cut
// into five contiguous buckets whose sizes differ by at most one; with fewer
// than five customers some buckets are simply empty. Recency is scored in
// reverse (most recent buys score 5), frequency and monetary forward.
//
// Returns ErrEmptyPopulation for an empty input.
func Score(metrics []CustomerMetrics) ([]RFMScore, error) {
	n := len(metrics)
	if n == 0 {
		return nil, ErrEmptyPopulation
	}

	rBuckets := quintiles(n, func(i, j int) bool { return metrics[i].RecencyDays < metrics[j].RecencyDays })
	fBuckets := quintiles(n, func(i, j int) bool { return metrics[i].Frequency < metrics[j].Frequency })
	mBuckets := quintiles(n, func(i, j int) bool { return metrics[i].Monetary < metrics[j].Monetary })

	scores := make([]RFMScore, n)
	for i, cm := range metrics {
		s := RFMScore{
			CustomerID: cm.CustomerID,
			RScore:     5 - rBuckets[i], // low recency is best
			FScore:     fBuckets[i] + 1,
			MScore:     mBuckets[i] + 1,
		}
		s.Segment = SegmentFor(s.RScore, s.FScore, s.MScore)
		scores[i] = s
	}
	return scores, nil
}

// quintiles ranks indices 0..n-1 ascending by less (stable) and returns, per
// input index, its bucket 0..4. Bucket of rank r is r*5/n, which yields
// contiguous buckets of as-equal-as-possible size.
func quintiles(n int, less func(i, j int) bool) []int {
	ranked := make([]int, n)
	for i := range ranked {
		ranked[i] = i
	}
	sort.SliceStable(ranked, func(a, b int) bool { return less(ranked[a], ranked[b]) })

	buckets := make([]int, n)
	for rank, idx := range ranked {
		buckets[idx] = rank * 5 / n
	}
	return buckets
}
