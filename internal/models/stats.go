package models

import "time"

// Bucket counts the successful observations that fall into a range or past a threshold.
type Bucket struct {
	Count      int     `json:"count"`
	Percentage float64 `json:"percentage"`
}

// SpikeBucket is a Bucket that also keeps the most recent offending latencies.
type SpikeBucket struct {
	Count      int       `json:"count"`
	Percentage float64   `json:"percentage"`
	Values     []float64 `json:"values"`
}

// OutlierBucket is a SpikeBucket whose threshold is derived from the data.
type OutlierBucket struct {
	ThresholdMS *float64  `json:"threshold_ms"`
	Count       int       `json:"count"`
	Percentage  float64   `json:"percentage"`
	Values      []float64 `json:"values"`
}

// StatisticalOutliers groups the data-relative spike detectors.
type StatisticalOutliers struct {
	TwoStdDev   OutlierBucket `json:"two_std_dev"`
	ThreeStdDev OutlierBucket `json:"three_std_dev"`
	IQRMethod   OutlierBucket `json:"iqr_method"`
	Median3x    OutlierBucket `json:"median_3x"`
}

// QualityBands partitions successful observations by suitability for video calls.
type QualityBands struct {
	Excellent  Bucket `json:"excellent_0_20ms"`
	Good       Bucket `json:"good_20_50ms"`
	Acceptable Bucket `json:"acceptable_50_100ms"`
	Poor       Bucket `json:"poor_100_200ms"`
	VeryPoor   Bucket `json:"very_poor_above_200ms"`
}

// Buckets returns the bands in ascending latency order.
func (q QualityBands) Buckets() []Bucket {
	return []Bucket{q.Excellent, q.Good, q.Acceptable, q.Poor, q.VeryPoor}
}

// SpikeAnalysis holds fixed-threshold spike counts, outliers and quality bands
type SpikeAnalysis struct {
	Above50ms           SpikeBucket         `json:"spikes_above_50ms"`
	Above100ms          SpikeBucket         `json:"spikes_above_100ms"`
	Above150ms          SpikeBucket         `json:"spikes_above_150ms"`
	Above200ms          SpikeBucket         `json:"spikes_above_200ms"`
	Above300ms          SpikeBucket         `json:"spikes_above_300ms"`
	Above500ms          SpikeBucket         `json:"spikes_above_500ms"`
	StatisticalOutliers StatisticalOutliers `json:"statistical_outliers"`
	VideoConferencing   QualityBands        `json:"video_conferencing_quality"`
}

// Spike returns the bucket for one of the fixed thresholds.
func (s *SpikeAnalysis) Spike(thresholdMS int) (*SpikeBucket, bool) {
	switch thresholdMS {
	case 50:
		return &s.Above50ms, true
	case 100:
		return &s.Above100ms, true
	case 150:
		return &s.Above150ms, true
	case 200:
		return &s.Above200ms, true
	case 300:
		return &s.Above300ms, true
	case 500:
		return &s.Above500ms, true
	}
	return nil, false
}

// Summary represents aggregated statistics for one monitoring run.
// Latency fields are nil when no attempt succeeded.
type Summary struct {
	MonitoringStarted time.Time `json:"monitoring_started"`
	MonitoringEnded   time.Time `json:"monitoring_ended"`
	Target            string    `json:"target"`
	IntervalSeconds   float64   `json:"interval_seconds"`
	TotalPings        int       `json:"total_pings"`
	SuccessfulPings   int       `json:"successful_pings"`
	FailedPings       int       `json:"failed_pings"`
	SuccessRate       float64   `json:"success_rate"`

	AvgLatencyMS    *float64 `json:"avg_latency_ms"`
	MedianLatencyMS *float64 `json:"median_latency_ms"`
	MinLatencyMS    *float64 `json:"min_latency_ms"`
	MaxLatencyMS    *float64 `json:"max_latency_ms"`
	StdDevLatencyMS *float64 `json:"stddev_latency_ms"`
	P95LatencyMS    *float64 `json:"p95_latency_ms"`
	P99LatencyMS    *float64 `json:"p99_latency_ms"`

	SpikeAnalysis SpikeAnalysis `json:"spike_analysis"`
}

// Document is the file format read by the viewer.
type Document struct {
	Summary Summary       `json:"summary"`
	Results []Observation `json:"results"`
}

// Run is an archived monitoring session
type Run struct {
	ID           string     `json:"id"`
	Target       string     `json:"target"`
	Interval     float64    `json:"interval_seconds"`
	StartedAt    time.Time  `json:"started_at"`
	EndedAt      *time.Time `json:"ended_at,omitempty"`
	Observations int        `json:"observations"`
	SuccessRate  *float64   `json:"success_rate,omitempty"`
}
