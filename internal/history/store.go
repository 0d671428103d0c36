// Package history records each pipeline run in a local SQLite database so
// past runs can be inspected with `annoreport history`.
package history

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// Store provides access to the run-history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded pipeline execution.
type Run struct {
	ID           int64
	Project      string
	Date         string // YYYYMMDD
	SnapshotPath string // "" when the snapshot could not be saved
	TotalTasks   int    // rows in today's aggregated table
	Baseline     bool   // whether a prior snapshot existed to diff against
	NewTasks     int
	ChangedTasks int
	Exported     int // annotation archives downloaded
	StartedAt    time.Time
	FinishedAt   time.Time
}

// New opens (or creates) the SQLite database at the given path.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	// Enable WAL mode for better concurrent access.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("set WAL mode: %w", err)
	}

	s := &Store{db: db}
	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id             INTEGER PRIMARY KEY AUTOINCREMENT,
		project        TEXT NOT NULL,
		date           TEXT NOT NULL,
		snapshot_path  TEXT DEFAULT '',
		total_tasks    INTEGER NOT NULL DEFAULT 0,
		baseline       INTEGER NOT NULL DEFAULT 0,
		new_tasks      INTEGER NOT NULL DEFAULT 0,
		changed_tasks  INTEGER NOT NULL DEFAULT 0,
		exported       INTEGER NOT NULL DEFAULT 0,
		started_at     DATETIME NOT NULL,
		finished_at    DATETIME NOT NULL
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// RecordRun inserts a completed run and returns its generated ID.
func (s *Store) RecordRun(r Run) (int64, error) {
	res, err := s.db.Exec(
		`INSERT INTO runs (project, date, snapshot_path, total_tasks, baseline, new_tasks, changed_tasks, exported, started_at, finished_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Project, r.Date, r.SnapshotPath, r.TotalTasks, r.Baseline,
		r.NewTasks, r.ChangedTasks, r.Exported, r.StartedAt.UTC(), r.FinishedAt.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("insert run: %w", err)
	}
	id, _ := res.LastInsertId()
	return id, nil
}

// ListRuns returns the most recent runs, newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	rows, err := s.db.Query(
		`SELECT id, project, date, snapshot_path, total_tasks, baseline, new_tasks, changed_tasks, exported, started_at, finished_at
		 FROM runs ORDER BY id DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var baseline int
		if err := rows.Scan(
			&r.ID, &r.Project, &r.Date, &r.SnapshotPath, &r.TotalTasks,
			&baseline, &r.NewTasks, &r.ChangedTasks, &r.Exported,
			&r.StartedAt, &r.FinishedAt,
		); err != nil {
			return nil, fmt.Errorf("scan run: %w", err)
		}
		r.Baseline = baseline != 0
		runs = append(runs, r)
	}
	return runs, rows.Err()
}
