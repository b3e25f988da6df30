package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/veryresto/pingmo/internal/models"
)

// ErrRunNotFound is returned when a run ID is not in the archive.
var ErrRunNotFound = errors.New("run not found")

// StartRun registers a new monitoring run
func (db *DB) StartRun(run models.Run) error {
	query := `
        INSERT INTO runs (id, target, interval_seconds, started_at)
        VALUES (?, ?, ?, ?)
    `
	_, err := db.Exec(query, run.ID, run.Target, run.Interval, run.StartedAt.UTC())
	if err != nil {
		return fmt.Errorf("start run %s: %w", run.ID, err)
	}
	return nil
}

// FinishRun stores the final summary of a run
func (db *DB) FinishRun(id string, summary models.Summary) error {
	data, err := json.Marshal(summary)
	if err != nil {
		return fmt.Errorf("encode summary: %w", err)
	}

	query := `UPDATE runs SET ended_at = ?, summary_json = ? WHERE id = ?`
	res, err := db.Exec(query, summary.MonitoringEnded.UTC(), string(data), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("finish run %s: %w", id, ErrRunNotFound)
	}
	return nil
}

// SaveObservation saves a ping observation under a run
func (db *DB) SaveObservation(runID string, obs models.Observation) error {
	query := `
        INSERT INTO observations (run_id, timestamp, target, success, latency_ms)
        VALUES (?, ?, ?, ?, ?)
    `
	var latency sql.NullFloat64
	if l, ok := obs.Latency(); ok {
		latency = sql.NullFloat64{Float64: l, Valid: true}
	}

	_, err := db.Exec(query,
		runID,
		obs.Timestamp.UTC(),
		obs.Target,
		obs.Success,
		latency,
	)
	return err
}

// ListRuns retrieves the most recent runs, newest first
func (db *DB) ListRuns(limit int) ([]models.Run, error) {
	query := `
        SELECT
            r.id,
            r.target,
            r.interval_seconds,
            r.started_at,
            r.ended_at,
            COUNT(o.id) as observations,
            SUM(CASE WHEN o.success THEN 1 ELSE 0 END) as successful
        FROM runs r
        LEFT JOIN observations o ON o.run_id = r.id
        GROUP BY r.id
        ORDER BY r.started_at DESC
        LIMIT ?
    `

	rows, err := db.Query(query, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []models.Run
	for rows.Next() {
		var r models.Run
		var ended sql.NullTime
		var successful sql.NullInt64
		if err := rows.Scan(&r.ID, &r.Target, &r.Interval, &r.StartedAt, &ended, &r.Observations, &successful); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		if ended.Valid {
			r.EndedAt = &ended.Time
		}
		if r.Observations > 0 {
			rate := float64(successful.Int64) / float64(r.Observations) * 100
			r.SuccessRate = &rate
		}
		runs = append(runs, r)
	}

	return runs, rows.Err()
}

// LoadRun retrieves a single run by ID
func (db *DB) LoadRun(id string) (models.Run, error) {
	query := `
        SELECT
            r.id, r.target, r.interval_seconds, r.started_at, r.ended_at,
            (SELECT COUNT(*) FROM observations o WHERE o.run_id = r.id)
        FROM runs r
        WHERE r.id = ?
    `

	var r models.Run
	var ended sql.NullTime
	err := db.QueryRow(query, id).Scan(&r.ID, &r.Target, &r.Interval, &r.StartedAt, &ended, &r.Observations)
	if errors.Is(err, sql.ErrNoRows) {
		return r, fmt.Errorf("%s: %w", id, ErrRunNotFound)
	}
	if err != nil {
		return r, err
	}
	if ended.Valid {
		r.EndedAt = &ended.Time
	}
	return r, nil
}

// LoadObservations retrieves the observations of a run in sampling order
func (db *DB) LoadObservations(runID string) ([]models.Observation, error) {
	query := `
        SELECT timestamp, target, success, latency_ms
        FROM observations
        WHERE run_id = ?
        ORDER BY timestamp, id
    `

	rows, err := db.Query(query, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var observations []models.Observation
	for rows.Next() {
		var o models.Observation
		var latency sql.NullFloat64
		if err := rows.Scan(&o.Timestamp, &o.Target, &o.Success, &latency); err != nil {
			return nil, fmt.Errorf("scan observation: %w", err)
		}
		if o.Success && latency.Valid {
			o = models.NewSuccess(o.Timestamp, o.Target, latency.Float64)
		} else {
			o = models.NewFailure(o.Timestamp, o.Target)
		}
		observations = append(observations, o)
	}

	return observations, rows.Err()
}

// RunRecorder archives the observations of one run as they are taken
type RunRecorder struct {
	db    *DB
	runID string
}

// Recorder returns a models.Recorder bound to runID
func (db *DB) Recorder(runID string) *RunRecorder {
	return &RunRecorder{db: db, runID: runID}
}

// Record saves obs under the recorder's run
func (r *RunRecorder) Record(obs models.Observation) error {
	if err := r.db.SaveObservation(r.runID, obs); err != nil {
		return fmt.Errorf("archive observation: %w", err)
	}
	return nil
}
