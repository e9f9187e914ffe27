// Package engine holds the pure derived-metrics calculations: health metrics,
// the 30-day balance projection, debt snowball ordering, budget aggregation
// and income projection. Every function here is synchronous, side-effect free
// and total: malformed numeric input degrades to 0 rather than erroring.
package engine

import "math"

// safeNum coerces NaN and infinities to 0. Amounts come from JSON documents
// written by older clients and cannot be assumed finite.
func safeNum(n float64) float64 {
	if math.IsNaN(n) || math.IsInf(n, 0) {
		return 0
	}
	return n
}

// round1 rounds to one decimal place.
func round1(n float64) float64 {
	return math.Round(n*10) / 10
}
