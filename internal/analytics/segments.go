package analytics

// SegmentBand is one row of the segment policy table: inclusive score ranges
// on each dimension, with 0 meaning "no lower bound" and a MaxX of 0 treated
// as "no upper bound". Bands are evaluated in order, first match wins.
type SegmentBand struct {
	Label string `json:"label"`
	MinR  int    `json:"min_r,omitempty"`
	MaxR  int    `json:"max_r,omitempty"`
	MinF  int    `json:"min_f,omitempty"`
	MaxF  int    `json:"max_f,omitempty"`
	MinM  int    `json:"min_m,omitempty"`
	MaxM  int    `json:"max_m,omitempty"`
}

// Matches reports whether the (r,f,m) triple falls inside the band.
func (b SegmentBand) Matches(r, f, m int) bool {
	return inRange(r, b.MinR, b.MaxR) && inRange(f, b.MinF, b.MaxF) && inRange(m, b.MinM, b.MaxM)
}

func inRange(v, min, max int) bool {
	if min > 0 && v < min {
		return false
	}
	if max > 0 && v > max {
		return false
	}
	return true
}

// DefaultSegment is assigned when no band matches.
const DefaultSegment = "Others"

// SegmentBands is the segment policy table. It is data rather than code so
// the band/label pairs can be enumerated and adjusted independently of the
// scoring arithmetic.
var SegmentBands = []SegmentBand{
	{Label: "Champions", MinR: 4, MinF: 4, MinM: 4},
	{Label: "Loyal Customers", MinR: 3, MinF: 4},
	{Label: "Big Spenders", MinR: 3, MinM: 4},
	{Label: "Potential Loyalists", MinR: 4, MinF: 2, MaxF: 3},
	{Label: "New Customers", MinR: 4, MaxF: 1},
	{Label: "Cannot Lose Them", MaxR: 2, MinF: 4, MinM: 4},
	{Label: "At Risk", MaxR: 2, MinF: 3},
	{Label: "About To Sleep", MinR: 3, MaxR: 3, MaxF: 2},
	{Label: "Hibernating", MinR: 2, MaxR: 2, MaxF: 2},
	{Label: "Lost", MaxR: 1, MaxF: 2},
}

// SegmentFor resolves the segment label for a score triple. It is a pure
// function of (r,f,m): identical inputs always produce identical labels.
func SegmentFor(r, f, m int) string {
	for _, band := range SegmentBands {
		if band.Matches(r, f, m) {
			return band.Label
		}
	}
	return DefaultSegment
}
