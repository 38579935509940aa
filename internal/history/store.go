// Package history maintains a small, best-effort cross-run SQLite index
// under <workdir>/history.db. It is never authoritative: state.json and
// trace.jsonl (internal/loop) remain the sole record of a run; this
// index exists purely so `formalchip report --list` can answer "what
// has this project run" without walking the run directory tree. A
// write failure here must never fail a run, and the index can always
// be rebuilt from the state.json files under workdir.
package history

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite"

	"github.com/ulamai/formalchip/internal/model"
)

// RunSummary is one row of the runs table.
type RunSummary struct {
	RunID        string
	Project      string
	Status       string
	StartedAt    time.Time
	CompletedAt  *time.Time
	Iterations   int
	EvidencePack string
}

// IterationSummary is one row of the iterations table.
type IterationSummary struct {
	RunID      string
	Index      int
	Status     string
	DurationMs int64
}

// Store wraps a single-connection SQLite handle. SQLite's own locking
// model is happiest with one connection, matching the teacher's store.
type Store struct {
	db *sql.DB
}

// Open creates dbPath's parent if needed and opens (creating if absent)
// the history database, ensuring the schema exists.
func Open(dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("creating history db dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("opening history db: %w", err)
	}
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	if err := createSchema(db); err != nil {
		db.Close()
		return nil, err
	}
	return &Store{db: db}, nil
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
CREATE TABLE IF NOT EXISTS runs (
	run_id            TEXT PRIMARY KEY,
	project           TEXT NOT NULL,
	status            TEXT NOT NULL,
	started_at        TEXT NOT NULL,
	completed_at      TEXT,
	iterations        INTEGER NOT NULL DEFAULT 0,
	evidence_pack_path TEXT
);
CREATE TABLE IF NOT EXISTS iterations (
	run_id      TEXT NOT NULL,
	idx         INTEGER NOT NULL,
	status      TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	PRIMARY KEY (run_id, idx)
);
CREATE INDEX IF NOT EXISTS idx_runs_project ON runs(project);
`)
	if err != nil {
		return fmt.Errorf("creating history schema: %w", err)
	}
	return nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// UpsertRun records (or updates) the run-level row. Called through
// RecordFromState at run_started, after every iteration and at
// run_completed/terminal error, and by Reindex.
func (s *Store) UpsertRun(summary RunSummary) error {
	var completedAt interface{}
	if summary.CompletedAt != nil {
		completedAt = summary.CompletedAt.UTC().Format(time.RFC3339)
	}
	_, err := s.db.Exec(`
INSERT INTO runs (run_id, project, status, started_at, completed_at, iterations, evidence_pack_path)
VALUES (?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(run_id) DO UPDATE SET
	status = excluded.status,
	completed_at = excluded.completed_at,
	iterations = excluded.iterations,
	evidence_pack_path = excluded.evidence_pack_path
`, summary.RunID, summary.Project, summary.Status,
		summary.StartedAt.UTC().Format(time.RFC3339), completedAt,
		summary.Iterations, summary.EvidencePack)
	if err != nil {
		return fmt.Errorf("upserting run %s: %w", summary.RunID, err)
	}
	return nil
}

// UpsertIteration records one iteration row, called after every
// iteration the loop runs.
func (s *Store) UpsertIteration(it IterationSummary) error {
	_, err := s.db.Exec(`
INSERT INTO iterations (run_id, idx, status, duration_ms)
VALUES (?, ?, ?, ?)
ON CONFLICT(run_id, idx) DO UPDATE SET
	status = excluded.status,
	duration_ms = excluded.duration_ms
`, it.RunID, it.Index, it.Status, it.DurationMs)
	if err != nil {
		return fmt.Errorf("upserting iteration %s/%d: %w", it.RunID, it.Index, err)
	}
	return nil
}

// ListRuns returns runs for a project (or every project if name is
// empty), most recent first.
func (s *Store) ListRuns(project string) ([]RunSummary, error) {
	query := `SELECT run_id, project, status, started_at, completed_at, iterations, evidence_pack_path FROM runs`
	args := []interface{}{}
	if project != "" {
		query += ` WHERE project = ?`
		args = append(args, project)
	}
	query += ` ORDER BY started_at DESC`

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunSummary
	for rows.Next() {
		var r RunSummary
		var started string
		var completed sql.NullString
		if err := rows.Scan(&r.RunID, &r.Project, &r.Status, &started, &completed, &r.Iterations, &r.EvidencePack); err != nil {
			return nil, fmt.Errorf("scanning run row: %w", err)
		}
		r.StartedAt, _ = time.Parse(time.RFC3339, started)
		if completed.Valid {
			t, err := time.Parse(time.RFC3339, completed.String)
			if err == nil {
				r.CompletedAt = &t
			}
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// RecordFromState upserts a run row (and every iteration row) straight
// from a model.RunState, used both by the loop's live updates and by
// Reindex's rebuild-from-state.json path.
func (s *Store) RecordFromState(project string, state *model.RunState) error {
	if err := s.UpsertRun(RunSummary{
		RunID:        state.RunID,
		Project:      project,
		Status:       state.Status,
		StartedAt:    state.StartedAt,
		CompletedAt:  state.CompletedAt,
		Iterations:   len(state.Iterations),
		EvidencePack: state.EvidencePack,
	}); err != nil {
		return err
	}
	for _, it := range state.Iterations {
		if err := s.UpsertIteration(IterationSummary{
			RunID:      state.RunID,
			Index:      it.Index,
			Status:     it.Status,
			DurationMs: int64(it.DurationSeconds * 1000),
		}); err != nil {
			return err
		}
	}
	return nil
}
