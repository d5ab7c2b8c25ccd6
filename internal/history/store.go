// Package history records setup runs in a SQLite database.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"pysetup/internal/workflow"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id          TEXT PRIMARY KEY,
	target      TEXT NOT NULL,
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL DEFAULT 0,
	state       TEXT NOT NULL,
	stopped_at  INTEGER NOT NULL DEFAULT -1
);
CREATE TABLE IF NOT EXISTS step_results (
	run_id      TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	position    INTEGER NOT NULL,
	step_id     TEXT NOT NULL,
	label       TEXT NOT NULL,
	ok          INTEGER NOT NULL,
	reason      TEXT NOT NULL DEFAULT '',
	started_at  INTEGER NOT NULL,
	finished_at INTEGER NOT NULL,
	PRIMARY KEY (run_id, position)
);
`

var ErrNotFound = errors.New("run not found")

// Path returns the default database location under the user's state dir.
func Path() string {
	dir := os.Getenv("XDG_STATE_HOME")
	if dir == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(".local", "state", "pysetup", "history.db")
		}
		dir = filepath.Join(home, ".local", "state")
	}
	return filepath.Join(dir, "pysetup", "history.db")
}

type Store struct {
	db *sql.DB
}

func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("create history directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	db.SetMaxOpenConns(1)
	if _, err := db.Exec(`PRAGMA journal_mode = WAL`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set journal mode: %w", err)
	}
	if _, err := db.Exec(`PRAGMA busy_timeout = 5000`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("set busy timeout: %w", err)
	}
	if _, err := db.Exec(`PRAGMA foreign_keys = ON`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enable foreign keys: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

type StepRecord struct {
	Position int
	StepID   workflow.StepID
	Label    string
	OK       bool
	Reason   string
	Started  time.Time
	Finished time.Time
}

type Run struct {
	ID       string
	Target   string
	Started  time.Time
	Finished time.Time
	State    string
	// StoppedAt is the zero-based failed step index, or -1.
	StoppedAt int
	Steps     []StepRecord
}

// Begin records a new running run and returns its id.
func (s *Store) Begin(ctx context.Context, target string, started time.Time) (string, error) {
	id := uuid.NewString()
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO runs (id, target, started_at, state) VALUES (?, ?, ?, ?)`,
		id, target, started.UnixMilli(), workflow.RunRunning.String())
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}
	return id, nil
}

// Finish stores the final state and every step result of a run.
func (s *Store) Finish(ctx context.Context, id string, rep workflow.Report) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	finished := rep.Finished
	if finished.IsZero() {
		finished = time.Now()
	}
	res, err := tx.ExecContext(ctx,
		`UPDATE runs SET finished_at = ?, state = ?, stopped_at = ? WHERE id = ?`,
		finished.UnixMilli(), rep.Status.State.String(), rep.Status.Index, id)
	if err != nil {
		return fmt.Errorf("update run: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	for i, r := range rep.Results {
		_, err := tx.ExecContext(ctx,
			`INSERT OR REPLACE INTO step_results (run_id, position, step_id, label, ok, reason, started_at, finished_at)
			 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			id, i, string(r.Def.ID), r.Def.Label, boolInt(r.Outcome.OK), r.Outcome.Reason,
			r.Started.UnixMilli(), r.Finished.UnixMilli())
		if err != nil {
			return fmt.Errorf("insert step result: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// Recent lists the newest runs first, without step details.
func (s *Store) Recent(ctx context.Context, limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, target, started_at, finished_at, state, stopped_at FROM runs
		 ORDER BY started_at DESC, rowid DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	var out []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate runs: %w", err)
	}
	return out, nil
}

// Get loads one run with its step results.
func (s *Store) Get(ctx context.Context, id string) (Run, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT id, target, started_at, finished_at, state, stopped_at FROM runs WHERE id = ?`, id)
	r, err := scanRun(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Run{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return Run{}, err
	}

	rows, err := s.db.QueryContext(ctx,
		`SELECT position, step_id, label, ok, reason, started_at, finished_at FROM step_results
		 WHERE run_id = ? ORDER BY position`, id)
	if err != nil {
		return Run{}, fmt.Errorf("query step results: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			rec       StepRecord
			stepID    string
			ok        int
			started   int64
			finishedU int64
		)
		if err := rows.Scan(&rec.Position, &stepID, &rec.Label, &ok, &rec.Reason, &started, &finishedU); err != nil {
			return Run{}, fmt.Errorf("scan step result: %w", err)
		}
		rec.StepID = workflow.StepID(stepID)
		rec.OK = ok != 0
		rec.Started = time.UnixMilli(started)
		rec.Finished = time.UnixMilli(finishedU)
		r.Steps = append(r.Steps, rec)
	}
	if err := rows.Err(); err != nil {
		return Run{}, fmt.Errorf("iterate step results: %w", err)
	}
	return r, nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var (
		r        Run
		started  int64
		finished int64
	)
	if err := sc.Scan(&r.ID, &r.Target, &started, &finished, &r.State, &r.StoppedAt); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Run{}, err
		}
		return Run{}, fmt.Errorf("scan run: %w", err)
	}
	r.Started = time.UnixMilli(started)
	if finished > 0 {
		r.Finished = time.UnixMilli(finished)
	}
	return r, nil
}

func boolInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
