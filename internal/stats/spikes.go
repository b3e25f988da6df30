package stats

import "github.com/veryresto/pingmo/internal/models"

// SpikeThresholds are the fixed latency thresholds (ms) of the spike analysis.
var SpikeThresholds = []int{50, 100, 150, 200, 300, 500}

// Upper bounds (exclusive) of the quality bands. Anything at or above the
// last bound is very poor.
const (
	excellentBelow  = 20.0
	goodBelow       = 50.0
	acceptableBelow = 100.0
	poorBelow       = 200.0
)

// maxSpikeValues caps how many offending latencies a bucket keeps.
const maxSpikeValues = 10

// IsSpike reports whether latency counts as a spike for threshold. The
// boundary is inclusive so that the thresholds line up with the lower
// bounds of the quality bands.
func IsSpike(latency float64, thresholdMS int) bool {
	return latency >= float64(thresholdMS)
}

// Band classifies a latency into one of the five quality bands, 0 being
// excellent and 4 very poor. Bands are closed on their lower bound.
func Band(latency float64) int {
	switch {
	case latency < excellentBelow:
		return 0
	case latency < goodBelow:
		return 1
	case latency < acceptableBelow:
		return 2
	case latency < poorBelow:
		return 3
	default:
		return 4
	}
}

func percentage(count, of int) float64 {
	if of == 0 {
		return 0
	}
	return float64(count) / float64(of) * 100
}

// lastValues keeps the most recent maxSpikeValues entries; never nil.
func lastValues(values []float64) []float64 {
	if len(values) > maxSpikeValues {
		values = values[len(values)-maxSpikeValues:]
	}
	out := make([]float64, len(values))
	copy(out, values)
	return out
}

func spikeBucket(latencies []float64, thresholdMS int) models.SpikeBucket {
	var spikes []float64
	for _, l := range latencies {
		if IsSpike(l, thresholdMS) {
			spikes = append(spikes, l)
		}
	}
	return models.SpikeBucket{
		Count:      len(spikes),
		Percentage: percentage(len(spikes), len(latencies)),
		Values:     lastValues(spikes),
	}
}

// outlierBucket counts latencies strictly above a data-derived threshold.
func outlierBucket(latencies []float64, threshold float64) models.OutlierBucket {
	var outliers []float64
	for _, l := range latencies {
		if l > threshold {
			outliers = append(outliers, l)
		}
	}
	return models.OutlierBucket{
		ThresholdMS: &threshold,
		Count:       len(outliers),
		Percentage:  percentage(len(outliers), len(latencies)),
		Values:      lastValues(outliers),
	}
}

func emptyOutliers() models.StatisticalOutliers {
	empty := models.OutlierBucket{Values: []float64{}}
	return models.StatisticalOutliers{
		TwoStdDev:   empty,
		ThreeStdDev: empty,
		IQRMethod:   empty,
		Median3x:    empty,
	}
}

// qualityBands partitions latencies into the video conferencing bands.
func qualityBands(latencies []float64) models.QualityBands {
	var counts [5]int
	for _, l := range latencies {
		counts[Band(l)]++
	}
	n := len(latencies)
	bucket := func(i int) models.Bucket {
		return models.Bucket{Count: counts[i], Percentage: percentage(counts[i], n)}
	}
	return models.QualityBands{
		Excellent:  bucket(0),
		Good:       bucket(1),
		Acceptable: bucket(2),
		Poor:       bucket(3),
		VeryPoor:   bucket(4),
	}
}

// analyzeSpikes builds the spike analysis. latencies are in observation
// order; sorted is the same data ascending.
func analyzeSpikes(latencies, sorted []float64, mean, median, stddev float64) models.SpikeAnalysis {
	var analysis models.SpikeAnalysis
	for _, threshold := range SpikeThresholds {
		bucket, _ := analysis.Spike(threshold)
		*bucket = spikeBucket(latencies, threshold)
	}

	analysis.VideoConferencing = qualityBands(latencies)

	n := len(sorted)
	if n == 0 {
		analysis.StatisticalOutliers = emptyOutliers()
		return analysis
	}

	q1 := sorted[n/4]
	q3 := sorted[3*n/4]
	iqr := q3 - q1

	analysis.StatisticalOutliers = models.StatisticalOutliers{
		TwoStdDev:   outlierBucket(latencies, mean+2*stddev),
		ThreeStdDev: outlierBucket(latencies, mean+3*stddev),
		IQRMethod:   outlierBucket(latencies, q3+1.5*iqr),
		Median3x:    outlierBucket(latencies, median*3),
	}
	return analysis
}
