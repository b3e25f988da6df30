package database

import (
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite"
)

// DB wraps sql.DB with the run archive operations
type DB struct {
	*sql.DB
}

// New opens (creating if needed) the archive database at path
func New(path string) (*DB, error) {
	db, err := sql.Open("sqlite", path+"?_time_format=sqlite")
	if err != nil {
		return nil, fmt.Errorf("database open failed: %w", err)
	}

	// One connection: the sampler and the maintenance job take turns, and
	// the pragmas below stay in effect.
	db.SetMaxOpenConns(1)

	for _, pragma := range []string{
		"PRAGMA journal_mode=WAL",
		"PRAGMA synchronous=NORMAL",
		"PRAGMA busy_timeout=5000",
	} {
		if _, err := db.Exec(pragma); err != nil {
			db.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	return &DB{db}, nil
}

// InitSchema creates all necessary tables
func (db *DB) InitSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS runs (
        id TEXT PRIMARY KEY,
        target TEXT NOT NULL,
        interval_seconds REAL NOT NULL,
        started_at DATETIME NOT NULL,
        ended_at DATETIME,
        summary_json TEXT
    );

    CREATE INDEX IF NOT EXISTS idx_runs_started ON runs(started_at);

    CREATE TABLE IF NOT EXISTS observations (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        run_id TEXT NOT NULL,
        timestamp DATETIME NOT NULL,
        target TEXT NOT NULL,
        success BOOLEAN NOT NULL,
        latency_ms REAL
    );

    CREATE INDEX IF NOT EXISTS idx_observations_run ON observations(run_id, timestamp);
    `

	if _, err := db.Exec(schema); err != nil {
		return fmt.Errorf("schema creation failed: %w", err)
	}

	return nil
}
