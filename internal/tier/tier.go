// Package tier maps accumulated merit points to a discrete performance tier.
package tier

// Tier is one of the four ordered performance tiers.
type Tier string

const (
	Poor      Tier = "poor"
	Average   Tier = "average"
	Good      Tier = "good"
	Excellent Tier = "excellent"
)

// Point thresholds between tiers. Each bound is inclusive for the tier
// above it.
const (
	ThresholdAverage   int64 = 400
	ThresholdGood      int64 = 600
	ThresholdExcellent int64 = 800
)

// Classify maps a total point count to a tier. Defined for all integers,
// including negative totals, and non-decreasing in totalPoints.
func Classify(totalPoints int64) Tier {
	switch {
	case totalPoints >= ThresholdExcellent:
		return Excellent
	case totalPoints >= ThresholdGood:
		return Good
	case totalPoints >= ThresholdAverage:
		return Average
	default:
		return Poor
	}
}

// Rank returns the position of a tier in the poor..excellent order.
// Unknown values rank below Poor so they sort first rather than panic.
func Rank(t Tier) int {
	switch t {
	case Poor:
		return 1
	case Average:
		return 2
	case Good:
		return 3
	case Excellent:
		return 4
	default:
		return 0
	}
}

// Valid reports whether t is one of the four defined tiers.
func Valid(t Tier) bool {
	return Rank(t) > 0
}
