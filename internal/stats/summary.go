// Package stats turns a finished sequence of ping observations into the
// summary written next to the raw results.
package stats

import (
	"time"

	"github.com/veryresto/pingmo/internal/models"
)

// Meta describes the run the observations belong to.
type Meta struct {
	Target   string
	Interval time.Duration
	Started  time.Time
	Ended    time.Time
}

// Summarize computes the summary of a run. It is a pure function of its
// inputs and never fails: with no successful observation every latency
// statistic is nil and every bucket is zero.
func Summarize(observations []models.Observation, meta Meta) models.Summary {
	latencies := make([]float64, 0, len(observations))
	for _, o := range observations {
		if l, ok := o.Latency(); ok {
			latencies = append(latencies, l)
		}
	}

	started := meta.Started
	if started.IsZero() && len(observations) > 0 {
		started = observations[0].Timestamp
	}

	total := len(observations)
	successful := len(latencies)

	summary := models.Summary{
		MonitoringStarted: started,
		MonitoringEnded:   meta.Ended,
		Target:            meta.Target,
		IntervalSeconds:   meta.Interval.Seconds(),
		TotalPings:        total,
		SuccessfulPings:   successful,
		FailedPings:       total - successful,
		SuccessRate:       percentage(successful, total),
	}

	if successful == 0 {
		summary.SpikeAnalysis = analyzeSpikes(nil, nil, 0, 0, 0)
		return summary
	}

	sorted := sortedCopy(latencies)
	mean, stddev := MeanStdDev(latencies)
	median := Median(sorted)

	summary.AvgLatencyMS = ptr(mean)
	summary.MedianLatencyMS = ptr(median)
	summary.MinLatencyMS = ptr(sorted[0])
	summary.MaxLatencyMS = ptr(sorted[successful-1])
	summary.StdDevLatencyMS = ptr(stddev)
	summary.P95LatencyMS = ptr(Percentile(sorted, 95))
	summary.P99LatencyMS = ptr(Percentile(sorted, 99))
	summary.SpikeAnalysis = analyzeSpikes(latencies, sorted, mean, median, stddev)

	return summary
}

func ptr(v float64) *float64 {
	return &v
}
