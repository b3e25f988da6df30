package monitor

import (
	"context"
	"time"

	"github.com/charmbracelet/log"

	"github.com/veryresto/pingmo/internal/models"
)

// performPing executes one attempt, appends its observation and hands it
// to the recorders. Failures are data, not errors.
func (s *Sampler) performPing(ctx context.Context, issued time.Time) {
	// The attempt outlives an interrupt; only its own timeout stops it.
	attemptCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.config.Timeout)
	defer cancel()

	var obs models.Observation
	rtt, err := s.pinger.Ping(attemptCtx, s.config.Target)
	if err != nil {
		obs = models.NewFailure(issued, s.config.Target)
		s.consecutiveFailures++
		log.Debug("Ping failed", "target", s.config.Target, "error", err)
		if s.consecutiveFailures >= consecutiveFailureWarning {
			log.Warn("Consecutive timeouts", "target", s.config.Target, "count", s.consecutiveFailures)
		} else {
			log.Info("Ping timeout", "target", s.config.Target)
		}
	} else {
		obs = models.NewSuccess(issued, s.config.Target, rtt)
		s.consecutiveFailures = 0
		log.Info("Ping", "target", s.config.Target, "latency_ms", rtt)
	}

	if err := s.buffer.Append(obs); err != nil {
		log.Error("Failed to append observation", "error", err)
		return
	}

	for _, r := range s.recorders {
		if err := r.Record(obs); err != nil {
			log.Error("Failed to record observation", "error", err)
		}
	}
}
