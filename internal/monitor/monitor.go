package monitor

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/log"

	"github.com/veryresto/pingmo/internal/models"
)

// consecutiveFailureWarning is the run of failed attempts after which every
// further failure is logged as a warning.
const consecutiveFailureWarning = 5

// Config holds the sampling parameters
type Config struct {
	Target   string
	Interval time.Duration
	// Timeout bounds a single attempt; zero means twice the interval.
	Timeout time.Duration
}

// Recording is the outcome of a finished run
type Recording struct {
	Started      time.Time
	Stopped      time.Time
	Observations []models.Observation
}

// Sampler pings one target at a fixed cadence until its context ends
type Sampler struct {
	config    Config
	pinger    models.Pinger
	recorders []models.Recorder
	buffer    *Buffer
	now       func() time.Time

	consecutiveFailures int
}

// New creates a new Sampler. Recorders see every observation as it is taken.
func New(cfg Config, pinger models.Pinger, recorders ...models.Recorder) *Sampler {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 2 * cfg.Interval
	}
	return &Sampler{
		config:    cfg,
		pinger:    pinger,
		recorders: recorders,
		buffer:    NewBuffer(1024),
		now:       time.Now,
	}
}

// Run samples until ctx is cancelled. Cancellation is only observed between
// cycles: an attempt in flight always completes and is recorded. The
// sampler can run once; the returned observations are sealed.
func (s *Sampler) Run(ctx context.Context) (Recording, error) {
	if s.buffer.sealed {
		return Recording{}, ErrSealed
	}
	if s.config.Interval <= 0 {
		return Recording{}, errors.New("interval must be positive")
	}

	log.Info("Starting ping monitoring",
		"target", s.config.Target,
		"interval", s.config.Interval,
		"timeout", s.config.Timeout,
		"method", s.pinger.Name())

	rec := Recording{Started: s.now()}

	for ctx.Err() == nil {
		cycleStart := s.now()
		s.performPing(ctx, cycleStart)

		wait := s.config.Interval - s.now().Sub(cycleStart)
		if wait <= 0 {
			continue
		}
		if !sleep(ctx, wait) {
			break
		}
	}

	rec.Stopped = s.now()
	log.Info("Monitoring stopped", "target", s.config.Target, "observations", s.buffer.Len())
	rec.Observations = s.buffer.Seal()
	return rec, nil
}

// sleep waits for d or until ctx ends, reporting whether the full wait elapsed.
func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
