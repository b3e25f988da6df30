// Package metrics exposes the sampler's progress as Prometheus metrics.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"

	"github.com/veryresto/pingmo/internal/models"
)

const namespace = "pingmo"

// rttBuckets line up with the quality band and spike thresholds.
var rttBuckets = []float64{20, 50, 100, 150, 200, 300, 500}

// Recorder updates Prometheus metrics for every observation. It is a
// models.Recorder and owns its own registry.
type Recorder struct {
	registry *prometheus.Registry

	pings               *prometheus.CounterVec
	rtt                 prometheus.Histogram
	lastRTT             prometheus.Gauge
	consecutiveFailures prometheus.Gauge

	failures float64
}

// New creates a Recorder with its metrics registered under target.
func New(target string) *Recorder {
	labels := prometheus.Labels{"target": target}

	r := &Recorder{
		registry: prometheus.NewRegistry(),
		pings: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "pings_total",
			Help:        "Ping attempts by result",
			ConstLabels: labels,
		}, []string{"result"}),
		rtt: prometheus.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "rtt_ms",
			Help:        "Round trip time of successful pings in millis",
			ConstLabels: labels,
			Buckets:     rttBuckets,
		}),
		lastRTT: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "last_rtt_ms",
			Help:        "Round trip time of the most recent successful ping in millis",
			ConstLabels: labels,
		}),
		consecutiveFailures: prometheus.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "consecutive_failures",
			Help:        "Failed attempts since the last successful ping",
			ConstLabels: labels,
		}),
	}

	r.registry.MustRegister(r.pings, r.rtt, r.lastRTT, r.consecutiveFailures)
	return r
}

// Registry returns the registry to expose over HTTP.
func (r *Recorder) Registry() *prometheus.Registry {
	return r.registry
}

// Record implements models.Recorder.
func (r *Recorder) Record(obs models.Observation) error {
	latency, ok := obs.Latency()
	if !ok {
		r.pings.WithLabelValues(models.StatusTimeout).Inc()
		r.failures++
		r.consecutiveFailures.Set(r.failures)
		return nil
	}

	r.pings.WithLabelValues(models.StatusSuccess).Inc()
	r.rtt.Observe(latency)
	r.lastRTT.Set(latency)
	r.failures = 0
	r.consecutiveFailures.Set(0)
	return nil
}
