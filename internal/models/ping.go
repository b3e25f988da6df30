package models

import (
	"encoding/json"
	"time"
)

// Observation statuses as written to the results document.
const (
	StatusSuccess = "success"
	StatusTimeout = "timeout"
)

// Observation represents a single ping attempt
type Observation struct {
	Timestamp time.Time `json:"timestamp"`
	Target    string    `json:"target"`
	LatencyMS *float64  `json:"latency_ms"` // nil when the attempt failed
	Success   bool      `json:"success"`
	Status    string    `json:"status"`
}

// NewSuccess returns an observation for an attempt that got a reply.
func NewSuccess(ts time.Time, target string, latencyMS float64) Observation {
	return Observation{
		Timestamp: ts,
		Target:    target,
		LatencyMS: &latencyMS,
		Success:   true,
		Status:    StatusSuccess,
	}
}

// NewFailure returns an observation for a lost or timed out attempt.
func NewFailure(ts time.Time, target string) Observation {
	return Observation{
		Timestamp: ts,
		Target:    target,
		Status:    StatusTimeout,
	}
}

// Latency returns the round-trip time and whether the attempt succeeded.
func (o Observation) Latency() (float64, bool) {
	if !o.Success || o.LatencyMS == nil {
		return 0, false
	}
	return *o.LatencyMS, true
}

// UnmarshalJSON decodes an observation. Documents that omit "success" fall
// back to "status", then to whether "latency_ms" is present.
func (o *Observation) UnmarshalJSON(data []byte) error {
	type plain Observation
	var raw struct {
		plain
		Success *bool `json:"success"`
	}
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*o = Observation(raw.plain)
	switch {
	case raw.Success != nil:
		o.Success = *raw.Success
	case o.Status != "":
		o.Success = o.Status == StatusSuccess
	default:
		o.Success = o.LatencyMS != nil
	}
	if o.Status == "" {
		o.Status = StatusTimeout
		if o.Success {
			o.Status = StatusSuccess
		}
	}
	return nil
}
