package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/veryresto/pingmo/internal/config"
	"github.com/veryresto/pingmo/internal/database"
	"github.com/veryresto/pingmo/internal/export"
	"github.com/veryresto/pingmo/internal/metrics"
	"github.com/veryresto/pingmo/internal/models"
	"github.com/veryresto/pingmo/internal/monitor"
	"github.com/veryresto/pingmo/internal/ping"
	"github.com/veryresto/pingmo/internal/report"
	"github.com/veryresto/pingmo/internal/stats"
	"github.com/veryresto/pingmo/internal/web"
)

// newPinger builds the prober selected by cfg.Method. The returned close
// function releases its resources.
var newPinger = func(cfg config.Config) (models.Pinger, func(), error) {
	timeout := cfg.AttemptTimeout()
	switch cfg.Method {
	case config.MethodICMP:
		p, err := ping.NewICMP(cfg.Bind4, cfg.Bind6, timeout)
		if err != nil {
			return nil, nil, err
		}
		return p, func() { p.Close() }, nil
	default:
		return ping.New(timeout), func() {}, nil
	}
}

// archive is the optional SQLite copy of the run
type archive struct {
	db          *database.DB
	runID       string
	maintenance *monitor.Maintenance
}

func openArchive(cfg config.Config, started time.Time) (*archive, error) {
	db, err := database.New(cfg.DatabasePath)
	if err != nil {
		return nil, err
	}
	if err := db.InitSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize database schema: %w", err)
	}

	a := &archive{db: db, runID: uuid.NewString()}
	run := models.Run{
		ID:        a.runID,
		Target:    cfg.Target,
		Interval:  cfg.Interval.Seconds(),
		StartedAt: started,
	}
	if err := db.StartRun(run); err != nil {
		db.Close()
		return nil, err
	}

	a.maintenance, err = monitor.NewMaintenance(db, cfg.Retention)
	if err == nil {
		err = a.maintenance.Start()
	}
	if err != nil {
		db.Close()
		return nil, err
	}
	return a, nil
}

func (a *archive) close() {
	if err := a.maintenance.Stop(); err != nil {
		log.Warn("Failed to stop maintenance", "error", err)
	}
	if err := a.db.Close(); err != nil {
		log.Warn("Failed to close database", "error", err)
	}
}

// runMonitor samples until ctx ends, then summarizes and exports. Only
// configuration problems and a failed export are returned as errors.
func runMonitor(ctx context.Context, cfg config.Config, out io.Writer) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	setLogLevel(strings.ToLower(cfg.LogLevel))

	output := cfg.Output
	if output == "" {
		output = export.DefaultPath(time.Now())
	}
	if err := export.CheckWritable(output); err != nil {
		return fmt.Errorf("%w: %v", config.ErrInvalid, err)
	}

	pinger, closePinger, err := newPinger(cfg)
	if err != nil {
		return fmt.Errorf("failed to create pinger: %w", err)
	}
	defer closePinger()

	var recorders []models.Recorder

	var server *web.Server
	var ln net.Listener
	if cfg.Listen != "" {
		m := metrics.New(cfg.Target)
		recorders = append(recorders, m)
		server = web.New(m.Registry())
		if ln, err = net.Listen("tcp", cfg.Listen); err != nil {
			return fmt.Errorf("%w: listen %s: %v", config.ErrInvalid, cfg.Listen, err)
		}
	}

	var arc *archive
	if cfg.DatabasePath != "" {
		if arc, err = openArchive(cfg, time.Now()); err != nil {
			if ln != nil {
				ln.Close()
			}
			return fmt.Errorf("failed to open archive: %w", err)
		}
		defer arc.close()
		recorders = append(recorders, arc.db.Recorder(arc.runID))
		log.Info("Archiving run", "run", arc.runID, "db", cfg.DatabasePath)
	}

	sampler := monitor.New(monitor.Config{
		Target:   cfg.Target,
		Interval: cfg.Interval,
		Timeout:  cfg.AttemptTimeout(),
	}, pinger, recorders...)

	g, gctx := errgroup.WithContext(ctx)
	serverCtx, stopServer := context.WithCancel(gctx)
	defer stopServer()

	var rec monitor.Recording
	g.Go(func() error {
		defer stopServer()
		var err error
		rec, err = sampler.Run(gctx)
		return err
	})
	if server != nil {
		g.Go(func() error {
			return server.Serve(serverCtx, ln)
		})
	}

	if err := g.Wait(); err != nil && !errors.Is(err, context.Canceled) {
		log.Error("Monitoring ended with an error", "error", err)
	}

	started := rec.Started
	if len(rec.Observations) > 0 {
		started = rec.Observations[0].Timestamp
	}
	summary := stats.Summarize(rec.Observations, stats.Meta{
		Target:   cfg.Target,
		Interval: cfg.Interval,
		Started:  started,
		Ended:    rec.Stopped,
	})
	doc := models.Document{Summary: summary, Results: rec.Observations}
	if doc.Results == nil {
		doc.Results = []models.Observation{}
	}

	exportErr := export.Write(output, doc)

	runID := ""
	if arc != nil {
		runID = arc.runID
		if err := arc.db.FinishRun(arc.runID, summary); err != nil {
			log.Error("Failed to finish archived run", "run", runID, "error", err)
		}
	}

	if exportErr != nil {
		kv := []interface{}{"path", output, "lost", len(doc.Results), "error", exportErr}
		if runID != "" {
			kv = append(kv, "run", runID, "recover", "pingmo export --db "+cfg.DatabasePath+" --run "+runID)
		}
		log.Error("Failed to write results", kv...)
		return fmt.Errorf("export failed: %w", exportErr)
	}
	log.Info("Results written", "path", output, "observations", len(doc.Results))

	if cfg.ChartDir != "" {
		if _, err := report.GenerateReport(cfg.ChartDir, doc); err != nil {
			log.Warn("Failed to generate report", "error", err)
		}
	}

	report.PrintSummary(out, summary)
	return nil
}
