package analytics

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestScoreEmptyPopulation tests the empty-population guard.
func TestScoreEmptyPopulation(t *testing.T) {
	scores, err := Score(nil)
	require.ErrorIs(t, err, ErrEmptyPopulation)
	assert.Nil(t, scores)
}

// TestScoreMonetaryQuintiles reproduces the canonical 10-customer example:
// equal buckets of two, top two score 5, bottom two score 1.
func TestScoreMonetaryQuintiles(t *testing.T) {
	totals := []float64{100, 90, 80, 70, 60, 50, 40, 30, 20, 10}
	metrics := make([]CustomerMetrics, len(totals))
	for i, m := range totals {
		metrics[i] = CustomerMetrics{CustomerID: fmt.Sprintf("C%d", i+1), RecencyDays: i, Frequency: 1, Monetary: m}
	}

	scores, err := Score(metrics)
	require.NoError(t, err)
	require.Len(t, scores, 10)

	wantM := []int{5, 5, 4, 4, 3, 3, 2, 2, 1, 1}
	bucketSizes := make(map[int]int)
	for i, s := range scores {
		assert.Equal(t, wantM[i], s.MScore, "monetary %.0f", totals[i])
		bucketSizes[s.MScore]++
	}
	for score := 1; score <= 5; score++ {
		assert.Equal(t, 2, bucketSizes[score], "bucket %d", score)
	}
}

// TestScoreRecencyReversed verifies lower recency maps to the higher score.
func TestScoreRecencyReversed(t *testing.T) {
	metrics := []CustomerMetrics{
		{CustomerID: "fresh", RecencyDays: 0, Frequency: 1, Monetary: 10},
		{CustomerID: "stale", RecencyDays: 300, Frequency: 1, Monetary: 10},
	}

	scores, err := Score(metrics)
	require.NoError(t, err)
	assert.Greater(t, scores[0].RScore, scores[1].RScore)
	assert.Equal(t, 5, scores[0].RScore)
	// Two customers occupy buckets 0 and 2 of the five, so the stale one
	// lands on 3 rather than 1.
	assert.Equal(t, 3, scores[1].RScore)
}

// TestScoreQuintileBalance checks the partition property for population
// sizes around and below the quintile count: bucket sizes sum to the
// population and differ pairwise by at most one.
func TestScoreQuintileBalance(t *testing.T) {
	for _, n := range []int{1, 2, 3, 4, 5, 6, 7, 11, 23, 100, 101} {
		t.Run(fmt.Sprintf("population %d", n), func(t *testing.T) {
			metrics := make([]CustomerMetrics, n)
			for i := range metrics {
				metrics[i] = CustomerMetrics{
					CustomerID:  fmt.Sprintf("C%d", i),
					RecencyDays: i,
					Frequency:   i + 1,
					Monetary:    float64(i),
				}
			}

			scores, err := Score(metrics)
			require.NoError(t, err)

			for _, dim := range []func(RFMScore) int{
				func(s RFMScore) int { return s.RScore },
				func(s RFMScore) int { return s.FScore },
				func(s RFMScore) int { return s.MScore },
			} {
				sizes := make(map[int]int)
				total := 0
				for _, s := range scores {
					v := dim(s)
					require.GreaterOrEqual(t, v, 1)
					require.LessOrEqual(t, v, 5)
					sizes[v]++
					total++
				}
				assert.Equal(t, n, total)

				min, max := n, 0
				for score := 1; score <= 5; score++ {
					if sizes[score] < min {
						min = sizes[score]
					}
					if sizes[score] > max {
						max = sizes[score]
					}
				}
				assert.LessOrEqual(t, max-min, 1, "uneven buckets: %v", sizes)
			}
		})
	}
}

// TestScoreTieBreaking verifies that identical metric values partition into
// contiguous buckets in stable input order.
func TestScoreTieBreaking(t *testing.T) {
	metrics := make([]CustomerMetrics, 10)
	for i := range metrics {
		// All customers identical on every dimension.
		metrics[i] = CustomerMetrics{CustomerID: fmt.Sprintf("C%d", i), RecencyDays: 7, Frequency: 3, Monetary: 42}
	}

	scores, err := Score(metrics)
	require.NoError(t, err)

	// Stable order: earlier input rows get the lower forward buckets.
	wantF := []int{1, 1, 2, 2, 3, 3, 4, 4, 5, 5}
	for i, s := range scores {
		assert.Equal(t, wantF[i], s.FScore)
		assert.Equal(t, wantF[i], s.MScore)
		assert.Equal(t, 5-(wantF[i]-1), s.RScore)
	}
}

// TestScoreDeterminism re-runs the scorer on identical input and expects
// identical output, labels included.
func TestScoreDeterminism(t *testing.T) {
	metrics := []CustomerMetrics{
		{CustomerID: "A", RecencyDays: 2, Frequency: 9, Monetary: 900},
		{CustomerID: "B", RecencyDays: 40, Frequency: 2, Monetary: 120},
		{CustomerID: "C", RecencyDays: 200, Frequency: 6, Monetary: 640},
		{CustomerID: "D", RecencyDays: 15, Frequency: 1, Monetary: 80},
		{CustomerID: "E", RecencyDays: 90, Frequency: 4, Monetary: 300},
	}

	first, err := Score(metrics)
	require.NoError(t, err)
	second, err := Score(metrics)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
