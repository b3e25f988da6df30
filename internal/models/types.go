package models

import (
	"context"
	"time"
)

// Pinger defines single-attempt ping execution
type Pinger interface {
	// Ping sends one echo request and returns the round-trip time in milliseconds.
	Ping(ctx context.Context, target string) (float64, error)
	Name() string
}

// Recorder receives every observation as soon as the sampler has taken it
type Recorder interface {
	Record(obs Observation) error
}

// Archive defines operations for run persistence
type Archive interface {
	StartRun(run Run) error
	FinishRun(id string, summary Summary) error
	ListRuns(limit int) ([]Run, error)
	LoadRun(id string) (Run, error)
	LoadObservations(runID string) ([]Observation, error)
	Prune(olderThan time.Duration) (int64, error)
	Close() error
}
