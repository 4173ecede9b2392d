// Package history persists coverage runs in SQLite so pass/fail trends
// stay visible across fuzz runs.
package history

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/ruuvi/oaskit/api"
)

// Store is a coverage run archive backed by a single SQLite file.
type Store struct {
	db *sql.DB
}

// RunInputs records where a run's three source files came from.
type RunInputs struct {
	OpenAPI string
	HAR     string
	JUnit   string
}

// Run is one archived coverage run.
type Run struct {
	ID        string
	CreatedAt time.Time
	Inputs    RunInputs
	Summary   api.Summary
	Endpoints int
}

// Open opens (and if needed initializes) the store at dbPath.
func Open(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite %s: %w", dbPath, err)
	}
	if _, err := db.Exec("PRAGMA journal_mode = WAL"); err != nil {
		_ = db.Close()
		return nil, err
	}

	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		created_at INTEGER NOT NULL,
		openapi_path TEXT NOT NULL,
		har_path TEXT NOT NULL,
		junit_path TEXT NOT NULL,
		documented INTEGER NOT NULL,
		passing INTEGER NOT NULL,
		failing INTEGER NOT NULL,
		untested INTEGER NOT NULL,
		extra INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS run_endpoints (
		run_id TEXT NOT NULL,
		method TEXT NOT NULL,
		path TEXT NOT NULL,
		color TEXT NOT NULL,
		detail JSON NOT NULL,
		PRIMARY KEY (run_id, method, path)
	) WITHOUT ROWID;
	`
	if _, err := db.Exec(schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

// RecordRun appends one run transactionally and returns its id.
func (s *Store) RecordRun(rep *api.Report, inputs RunInputs) (string, error) {
	id := uuid.NewString()

	tx, err := s.db.Begin()
	if err != nil {
		return "", err
	}
	defer func() { _ = tx.Rollback() }()

	_, err = tx.Exec(`
		INSERT INTO runs (id, created_at, openapi_path, har_path, junit_path,
			documented, passing, failing, untested, extra)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, time.Now().Unix(), inputs.OpenAPI, inputs.HAR, inputs.JUnit,
		rep.Summary.Documented, rep.Summary.Passing, rep.Summary.Failing,
		rep.Summary.Untested, rep.Summary.Extra)
	if err != nil {
		return "", fmt.Errorf("insert run: %w", err)
	}

	stmt, err := tx.Prepare(`
		INSERT INTO run_endpoints (run_id, method, path, color, detail)
		VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return "", err
	}
	defer func() { _ = stmt.Close() }()

	for _, ep := range rep.Endpoints {
		detail, err := json.Marshal(ep)
		if err != nil {
			return "", err
		}
		if _, err := stmt.Exec(id, ep.Method, ep.Path, ep.Color, string(detail)); err != nil {
			return "", fmt.Errorf("insert endpoint %s %s: %w", ep.Method, ep.Path, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", err
	}
	return id, nil
}

// Runs lists archived runs, newest first. limit <= 0 returns all.
func (s *Store) Runs(limit int) ([]Run, error) {
	q := `
		SELECT r.id, r.created_at, r.openapi_path, r.har_path, r.junit_path,
			r.documented, r.passing, r.failing, r.untested, r.extra,
			(SELECT COUNT(*) FROM run_endpoints e WHERE e.run_id = r.id)
		FROM runs r
		ORDER BY r.created_at DESC, r.id`
	args := []any{}
	if limit > 0 {
		q += " LIMIT ?"
		args = append(args, limit)
	}
	rows, err := s.db.Query(q, args...)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []Run
	for rows.Next() {
		var r Run
		var created int64
		if err := rows.Scan(&r.ID, &created, &r.Inputs.OpenAPI, &r.Inputs.HAR, &r.Inputs.JUnit,
			&r.Summary.Documented, &r.Summary.Passing, &r.Summary.Failing,
			&r.Summary.Untested, &r.Summary.Extra, &r.Endpoints); err != nil {
			return nil, err
		}
		r.CreatedAt = time.Unix(created, 0)
		out = append(out, r)
	}
	return out, rows.Err()
}

// Endpoints returns the archived per-endpoint reports for one run.
func (s *Store) Endpoints(runID string) ([]api.EndpointReport, error) {
	rows, err := s.db.Query(
		`SELECT detail FROM run_endpoints WHERE run_id = ? ORDER BY method, path`, runID)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rows.Close() }()

	var out []api.EndpointReport
	for rows.Next() {
		var detail string
		if err := rows.Scan(&detail); err != nil {
			return nil, err
		}
		var ep api.EndpointReport
		if err := json.Unmarshal([]byte(detail), &ep); err != nil {
			return nil, fmt.Errorf("decode endpoint detail: %w", err)
		}
		out = append(out, ep)
	}
	return out, rows.Err()
}
