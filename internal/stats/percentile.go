package stats

import (
	"math"
	"sort"
)

// sortedCopy returns the latencies in ascending order without touching the input.
func sortedCopy(values []float64) []float64 {
	sorted := make([]float64, len(values))
	copy(sorted, values)
	sort.Float64s(sorted)
	return sorted
}

// Percentile returns the nearest-rank percentile p (0-100] of an ascending
// slice: the value at zero-based rank ceil(p/100*n)-1, clamped to [0, n-1].
// It never interpolates, so the result is always one of the samples.
func Percentile(sorted []float64, p float64) float64 {
	n := len(sorted)
	if n == 0 {
		return 0
	}
	rank := int(math.Ceil(p*float64(n)/100)) - 1
	if rank < 0 {
		rank = 0
	}
	if rank > n-1 {
		rank = n - 1
	}
	return sorted[rank]
}

// Median returns the middle value of an ascending slice, averaging the two
// middle values when the length is even.
func Median(sorted []float64) float64 {
	n := len(sorted)
	switch {
	case n == 0:
		return 0
	case n%2 == 1:
		return sorted[n/2]
	default:
		return (sorted[n/2-1] + sorted[n/2]) / 2
	}
}

// MeanStdDev returns the arithmetic mean and the population standard deviation.
func MeanStdDev(values []float64) (mean, stddev float64) {
	n := len(values)
	if n == 0 {
		return 0, 0
	}

	var total float64
	for _, v := range values {
		total += v
	}
	mean = total / float64(n)

	var sumSquares float64
	for _, v := range values {
		sumSquares += math.Pow(v-mean, 2)
	}
	stddev = math.Sqrt(sumSquares / float64(n))

	return mean, stddev
}
