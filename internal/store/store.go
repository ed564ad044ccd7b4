// Package store persists runs and their findings in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

// Store provides persistence for runs and findings.
type Store interface {
	// BeginRun records a new run in the "running" state and returns its ID.
	BeginRun(root string, started time.Time) (int64, error)
	// InsertFindings stores findings for a run in one transaction.
	InsertFindings(runID int64, findings []Finding) error
	// FinishRun writes the final totals and status of a run.
	FinishRun(runID int64, totals RunTotals) error
	// LatestRun returns the most recent run, or nil if there is none.
	LatestRun() (*Run, error)
	// GetRun returns the run with the given ID, or nil if there is none.
	GetRun(id int64) (*Run, error)
	// ListRuns returns up to limit runs, newest first.
	ListRuns(limit int) ([]Run, error)
	// ListFindings returns a run's findings ordered by path and line.
	ListFindings(runID int64, q Query) ([]Finding, error)
	// KindCounts returns per-kind totals for a run, largest first.
	KindCounts(runID int64) ([]KindCount, error)
	// Close closes the underlying database.
	Close() error
}

// SQLiteStore implements Store backed by SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// Open creates or opens a SQLite database at the given path and initializes the schema.
func Open(dbPath string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_journal_mode=WAL&_foreign_keys=on&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if err := Init(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("init schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

func (s *SQLiteStore) BeginRun(root string, started time.Time) (int64, error) {
	res, err := s.db.Exec(
		"INSERT INTO runs (root, started_at, status) VALUES (?, ?, 'running')",
		root, started.UTC(),
	)
	if err != nil {
		return 0, fmt.Errorf("begin run: %w", err)
	}
	return res.LastInsertId()
}

func (s *SQLiteStore) InsertFindings(runID int64, findings []Finding) error {
	if len(findings) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(
		"INSERT INTO findings (run_id, path, line, kind, message, symbol) VALUES (?, ?, ?, ?, ?, ?)",
	)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, f := range findings {
		if _, err := stmt.Exec(runID, f.Path, f.Line, f.Kind, f.Message, f.Symbol); err != nil {
			return fmt.Errorf("insert finding %s:%d: %w", f.Path, f.Line, err)
		}
	}
	return tx.Commit()
}

func (s *SQLiteStore) FinishRun(runID int64, totals RunTotals) error {
	status := "ok"
	if totals.Failed {
		status = "failed"
	}
	res, err := s.db.Exec(
		"UPDATE runs SET finished_at = ?, files = ?, warnings = ?, suppressed = ?, status = ? WHERE id = ?",
		time.Now().UTC(), totals.Files, totals.Warnings, totals.Suppressed, status, runID,
	)
	if err != nil {
		return fmt.Errorf("finish run %d: %w", runID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("finish run %d: no such run", runID)
	}
	return nil
}

const runColumns = "id, root, started_at, finished_at, files, warnings, suppressed, status"

func scanRun(row interface{ Scan(...any) error }) (Run, error) {
	var r Run
	var finished sql.NullTime
	if err := row.Scan(&r.ID, &r.Root, &r.StartedAt, &finished, &r.Files, &r.Warnings, &r.Suppressed, &r.Status); err != nil {
		return Run{}, err
	}
	if finished.Valid {
		t := finished.Time
		r.FinishedAt = &t
	}
	return r, nil
}

func (s *SQLiteStore) LatestRun() (*Run, error) {
	r, err := scanRun(s.db.QueryRow("SELECT " + runColumns + " FROM runs ORDER BY id DESC LIMIT 1"))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) GetRun(id int64) (*Run, error) {
	r, err := scanRun(s.db.QueryRow("SELECT "+runColumns+" FROM runs WHERE id = ?", id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &r, nil
}

func (s *SQLiteStore) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query("SELECT "+runColumns+" FROM runs ORDER BY id DESC LIMIT ?", limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// escapeLike escapes LIKE wildcards so prefixes match literally.
func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}

func (s *SQLiteStore) ListFindings(runID int64, q Query) ([]Finding, error) {
	var b strings.Builder
	b.WriteString("SELECT id, run_id, path, line, kind, message, symbol FROM findings WHERE run_id = ?")
	args := []any{runID}
	if q.Path != "" {
		b.WriteString(` AND path LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(q.Path)+"%")
	}
	if q.Kind != "" {
		b.WriteString(" AND kind = ?")
		args = append(args, q.Kind)
	}
	if q.Symbol != "" {
		b.WriteString(` AND symbol LIKE ? ESCAPE '\'`)
		args = append(args, escapeLike(q.Symbol)+"%")
	}
	b.WriteString(" ORDER BY path, line, id")
	if q.Limit > 0 {
		b.WriteString(" LIMIT ?")
		args = append(args, q.Limit)
	}

	rows, err := s.db.Query(b.String(), args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Finding
	for rows.Next() {
		var f Finding
		if err := rows.Scan(&f.ID, &f.RunID, &f.Path, &f.Line, &f.Kind, &f.Message, &f.Symbol); err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) KindCounts(runID int64) ([]KindCount, error) {
	rows, err := s.db.Query(
		"SELECT kind, COUNT(*) AS n FROM findings WHERE run_id = ? GROUP BY kind ORDER BY n DESC, kind",
		runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []KindCount
	for rows.Next() {
		var kc KindCount
		if err := rows.Scan(&kc.Kind, &kc.Count); err != nil {
			return nil, err
		}
		out = append(out, kc)
	}
	return out, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
