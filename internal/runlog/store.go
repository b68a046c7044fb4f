// Package runlog keeps a persistent history of reorder runs, their
// per-item outcomes, and error messages in a local SQLite database.
package runlog

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/archival-ops/aspace-reorder/internal/domain"
)

// RunStatus is the lifecycle state of a recorded run
type RunStatus string

const (
	RunRunning   RunStatus = "running"
	RunCompleted RunStatus = "completed"
	RunFailed    RunStatus = "failed"
	RunCancelled RunStatus = "cancelled"
)

// Run is one recorded reorder run
type Run struct {
	ID           string
	Parent       domain.Parent
	Mode         string
	Status       RunStatus
	Total        int
	SuccessCount int
	ErrorCount   int
	StartedAt    time.Time
	FinishedAt   *time.Time
}

// Store provides SQLite-backed run history
type Store struct {
	db *sql.DB
}

// New creates a Store with the given database path, creating parent
// directories and running migrations as needed
func New(dbPath string) (*Store, error) {
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, err
		}
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, err
	}

	if _, err := db.Exec("PRAGMA foreign_keys = ON"); err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("running migrations: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the database connection
func (s *Store) Close() error {
	return s.db.Close()
}

// BeginRun records the start of a run and returns it with a fresh id
func (s *Store) BeginRun(parent domain.Parent, mode string, total int) (*Run, error) {
	run := &Run{
		ID:        uuid.NewString(),
		Parent:    parent,
		Mode:      mode,
		Status:    RunRunning,
		Total:     total,
		StartedAt: time.Now(),
	}

	_, err := s.db.Exec(`
		INSERT INTO runs (id, parent_type, parent_id, mode, status, total, started_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		run.ID, string(run.Parent.Type), run.Parent.ID, run.Mode, string(run.Status), run.Total, run.StartedAt,
	)
	if err != nil {
		return nil, err
	}
	return run, nil
}

// FinishRun records a run's final status and counters
func (s *Store) FinishRun(id string, status RunStatus, successCount, errorCount int) error {
	_, err := s.db.Exec(`
		UPDATE runs SET status = ?, success_count = ?, error_count = ?, finished_at = ? WHERE id = ?
	`, string(status), successCount, errorCount, time.Now(), id)
	return err
}

// RecordOutcomes appends the per-item outcomes of a run
func (s *Store) RecordOutcomes(runID string, outcomes []domain.MoveOutcome) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO outcomes (run_id, object_id, position, status, detail) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, o := range outcomes {
		if _, err := stmt.Exec(runID, o.ObjectID, o.Position, string(o.Status), o.Detail); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Log appends a message to a run's log
func (s *Store) Log(runID, level, message string) error {
	_, err := s.db.Exec(`INSERT INTO messages (run_id, level, message) VALUES (?, ?, ?)`, runID, level, message)
	return err
}

// ListRuns returns the most recent runs, newest first
func (s *Store) ListRuns(limit int) ([]*Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
		SELECT id, parent_type, parent_id, mode, status, total, success_count, error_count, started_at, finished_at
		FROM runs ORDER BY started_at DESC LIMIT ?
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}

// GetRun retrieves one run by id
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`
		SELECT id, parent_type, parent_id, mode, status, total, success_count, error_count, started_at, finished_at
		FROM runs WHERE id = ?
	`, id)
	return scanRun(row)
}

// Outcomes returns a run's per-item outcomes in insertion order
func (s *Store) Outcomes(runID string) ([]domain.MoveOutcome, error) {
	rows, err := s.db.Query(`
		SELECT object_id, position, status, detail FROM outcomes WHERE run_id = ? ORDER BY id
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var outcomes []domain.MoveOutcome
	for rows.Next() {
		var o domain.MoveOutcome
		var status string
		var detail sql.NullString
		if err := rows.Scan(&o.ObjectID, &o.Position, &status, &detail); err != nil {
			return nil, err
		}
		o.Status = domain.MoveStatus(status)
		o.Detail = detail.String
		outcomes = append(outcomes, o)
	}
	return outcomes, rows.Err()
}

type scannable interface {
	Scan(dest ...any) error
}

func scanRun(row scannable) (*Run, error) {
	var run Run
	var parentType string
	var status string
	var finishedAt sql.NullTime
	err := row.Scan(&run.ID, &parentType, &run.Parent.ID, &run.Mode, &status,
		&run.Total, &run.SuccessCount, &run.ErrorCount, &run.StartedAt, &finishedAt)
	if err != nil {
		return nil, err
	}
	run.Parent.Type = domain.RecordType(parentType)
	run.Status = RunStatus(status)
	if finishedAt.Valid {
		t := finishedAt.Time
		run.FinishedAt = &t
	}
	return &run, nil
}
