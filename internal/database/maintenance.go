package database

import (
	"fmt"
	"time"
)

// Prune deletes finished runs, and their observations, that ended more
// than olderThan ago. Unfinished runs are kept: they may still be sampling
// or waiting to be exported.
func (db *DB) Prune(olderThan time.Duration) (int64, error) {
	cutoff := time.Now().Add(-olderThan).UTC()

	tx, err := db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	deleteObservations := `
        DELETE FROM observations
        WHERE run_id IN (SELECT id FROM runs WHERE ended_at IS NOT NULL AND ended_at < ?)
    `
	if _, err := tx.Exec(deleteObservations, cutoff); err != nil {
		return 0, fmt.Errorf("prune observations: %w", err)
	}

	res, err := tx.Exec(`DELETE FROM runs WHERE ended_at IS NOT NULL AND ended_at < ?`, cutoff)
	if err != nil {
		return 0, fmt.Errorf("prune runs: %w", err)
	}
	removed, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}

	if err := tx.Commit(); err != nil {
		return 0, err
	}

	// Vacuum to reclaim space (run occasionally)
	if removed > 0 && time.Now().Day() == 1 {
		if _, err := db.Exec("VACUUM"); err != nil {
			return removed, fmt.Errorf("vacuum: %w", err)
		}
	}

	return removed, nil
}
