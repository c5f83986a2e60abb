package sim

import (
	"math"
	"slices"
)

// Number is the element type accepted by the statistics helpers.
type Number interface {
	int | int64 | float64
}

// Mean returns the arithmetic mean of data, or 0 for an empty slice.
func Mean[T Number](data []T) float64 {
	if len(data) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range data {
		sum += float64(v)
	}
	return sum / float64(len(data))
}

// Percentile returns the p-th percentile (0-100) of data using linear
// interpolation between closest ranks. data is not modified.
func Percentile[T Number](data []T, p float64) float64 {
	n := len(data)
	if n == 0 {
		return 0
	}
	sorted := slices.Clone(data)
	slices.Sort(sorted)

	rank := p / 100.0 * float64(n-1)
	lowerIdx := int(math.Floor(rank))
	upperIdx := int(math.Ceil(rank))
	if upperIdx >= n {
		return float64(sorted[n-1])
	}
	if lowerIdx == upperIdx {
		return float64(sorted[lowerIdx])
	}
	lower, upper := float64(sorted[lowerIdx]), float64(sorted[upperIdx])
	return lower + (upper-lower)*(rank-float64(lowerIdx))
}
