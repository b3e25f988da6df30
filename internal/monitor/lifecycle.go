package monitor

import (
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-co-op/gocron/v2"
)

// maintenanceInterval is how often the archive is pruned while sampling.
const maintenanceInterval = time.Hour

// Pruner deletes archived runs older than a retention window
type Pruner interface {
	Prune(olderThan time.Duration) (int64, error)
}

// Maintenance runs periodic archive housekeeping next to the sampler
type Maintenance struct {
	scheduler gocron.Scheduler
	archive   Pruner
	retention time.Duration
}

// NewMaintenance creates a maintenance scheduler for archive
func NewMaintenance(archive Pruner, retention time.Duration) (*Maintenance, error) {
	scheduler, err := gocron.NewScheduler()
	if err != nil {
		return nil, fmt.Errorf("failed to create scheduler: %w", err)
	}
	return &Maintenance{
		scheduler: scheduler,
		archive:   archive,
		retention: retention,
	}, nil
}

// Start schedules maintenance every hour, running it once immediately
func (m *Maintenance) Start() error {
	_, err := m.scheduler.NewJob(
		gocron.DurationJob(maintenanceInterval),
		gocron.NewTask(m.performMaintenance),
		gocron.WithStartAt(gocron.WithStartImmediately()),
		gocron.WithSingletonMode(gocron.LimitModeReschedule),
	)
	if err != nil {
		return fmt.Errorf("failed to create maintenance job: %w", err)
	}

	m.scheduler.Start()
	return nil
}

// Stop waits for a running job and shuts the scheduler down
func (m *Maintenance) Stop() error {
	if err := m.scheduler.Shutdown(); err != nil {
		return fmt.Errorf("failed to stop scheduler: %w", err)
	}
	return nil
}

// performMaintenance runs maintenance tasks
func (m *Maintenance) performMaintenance() {
	log.Debug("Running maintenance tasks...")

	removed, err := m.archive.Prune(m.retention)
	if err != nil {
		log.Error("Failed to prune archive", "error", err)
		return
	}
	if removed > 0 {
		log.Info("Pruned archived runs", "runs", removed, "retention", m.retention)
	}
}
