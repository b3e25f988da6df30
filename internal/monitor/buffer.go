package monitor

import (
	"errors"

	"github.com/veryresto/pingmo/internal/models"
)

// ErrSealed is returned when appending to a buffer whose run has ended.
var ErrSealed = errors.New("observation buffer is sealed")

// Buffer is the append-only observation log of a single run. It has one
// owner, the sampling loop, and needs no locking. Once sealed the slice is
// handed to the summarizer and never written again.
type Buffer struct {
	observations []models.Observation
	sealed       bool
}

// NewBuffer creates an empty buffer with room for capacity observations.
func NewBuffer(capacity int) *Buffer {
	return &Buffer{observations: make([]models.Observation, 0, capacity)}
}

// Append adds an observation. A timestamp earlier than the previous one
// (wall clock stepped back) is clamped so the log stays ordered.
func (b *Buffer) Append(obs models.Observation) error {
	if b.sealed {
		return ErrSealed
	}
	if n := len(b.observations); n > 0 {
		if last := b.observations[n-1].Timestamp; obs.Timestamp.Before(last) {
			obs.Timestamp = last
		}
	}
	b.observations = append(b.observations, obs)
	return nil
}

// Len returns the number of observations taken so far.
func (b *Buffer) Len() int {
	return len(b.observations)
}

// Seal ends the run and returns the observations in the order they were taken.
func (b *Buffer) Seal() []models.Observation {
	b.sealed = true
	return b.observations
}
