// Package covdb stores coverage summaries in an SQLite database so that
// runs can be tracked over time and queried without reparsing tracefiles.
package covdb

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/karpierz/lcov/pkg/summary"
)

const schemaVersion = 1

// Store wraps the coverage history database.
type Store struct {
	db *sql.DB
}

// Run is one recorded coverage snapshot.
type Run struct {
	ID         int64
	Label      string
	RecordedAt time.Time
	FileCount  int
	Lines      summary.Counts
	Funcs      summary.Counts
	Branches   summary.Counts
}

// FileRow is the per-file breakdown of a run.
type FileRow struct {
	Path     string
	Lines    summary.Counts
	Funcs    summary.Counts
	Branches summary.Counts
}

// Open opens or creates the database at path and ensures the schema exists.
func Open(path string) (*Store, error) {
	db, err := sql.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)&_pragma=foreign_keys(ON)")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := createSchema(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("create schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error {
	return s.db.Close()
}

func createSchema(db *sql.DB) error {
	_, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS schema_version (version INTEGER NOT NULL);

		CREATE TABLE IF NOT EXISTS runs (
			id             INTEGER PRIMARY KEY AUTOINCREMENT,
			label          TEXT NOT NULL,
			recorded_at    TEXT NOT NULL,
			file_count     INTEGER NOT NULL DEFAULT 0,
			lines_hit      INTEGER NOT NULL DEFAULT 0,
			lines_total    INTEGER NOT NULL DEFAULT 0,
			funcs_hit      INTEGER NOT NULL DEFAULT 0,
			funcs_total    INTEGER NOT NULL DEFAULT 0,
			branches_hit   INTEGER NOT NULL DEFAULT 0,
			branches_total INTEGER NOT NULL DEFAULT 0
		);

		CREATE TABLE IF NOT EXISTS run_files (
			run_id         INTEGER NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
			file_path      TEXT NOT NULL,
			lines_hit      INTEGER NOT NULL DEFAULT 0,
			lines_total    INTEGER NOT NULL DEFAULT 0,
			funcs_hit      INTEGER NOT NULL DEFAULT 0,
			funcs_total    INTEGER NOT NULL DEFAULT 0,
			branches_hit   INTEGER NOT NULL DEFAULT 0,
			branches_total INTEGER NOT NULL DEFAULT 0,
			PRIMARY KEY (run_id, file_path)
		);

		CREATE INDEX IF NOT EXISTS idx_runs_label ON runs(label);
		CREATE INDEX IF NOT EXISTS idx_run_files_run ON run_files(run_id);
	`)
	if err != nil {
		return err
	}

	var count int
	if err := db.QueryRow("SELECT COUNT(*) FROM schema_version").Scan(&count); err != nil {
		return err
	}
	if count == 0 {
		_, err = db.Exec("INSERT INTO schema_version (version) VALUES (?)", schemaVersion)
		return err
	}

	var currentVersion int
	if err := db.QueryRow("SELECT version FROM schema_version").Scan(&currentVersion); err != nil {
		return err
	}
	if currentVersion < schemaVersion {
		if _, err := db.Exec("UPDATE schema_version SET version = ?", schemaVersion); err != nil {
			return err
		}
	}
	return nil
}

// RecordRun stores one snapshot of a summary tree under the given label and
// returns the new run's id. The per-file breakdown is written in the same
// transaction.
func (s *Store) RecordRun(label string, at time.Time, tree *summary.Tree) (int64, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return 0, err
	}

	fileCount := 0
	for _, dir := range tree.Dirs {
		fileCount += len(dir.Files)
	}

	res, err := tx.Exec(`
		INSERT INTO runs (label, recorded_at, file_count,
			lines_hit, lines_total, funcs_hit, funcs_total, branches_hit, branches_total)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, label, at.UTC().Format(time.RFC3339), fileCount,
		tree.Lines.Hit, tree.Lines.Total,
		tree.Funcs.Hit, tree.Funcs.Total,
		tree.Branches.Hit, tree.Branches.Total)
	if err != nil {
		tx.Rollback()
		return 0, fmt.Errorf("insert run: %w", err)
	}

	runID, err := res.LastInsertId()
	if err != nil {
		tx.Rollback()
		return 0, err
	}

	for _, dir := range tree.Dirs {
		for _, f := range dir.Files {
			_, err := tx.Exec(`
				INSERT INTO run_files (run_id, file_path,
					lines_hit, lines_total, funcs_hit, funcs_total, branches_hit, branches_total)
				VALUES (?, ?, ?, ?, ?, ?, ?, ?)
			`, runID, f.Path,
				f.Lines.Hit, f.Lines.Total,
				f.Funcs.Hit, f.Funcs.Total,
				f.Branches.Hit, f.Branches.Total)
			if err != nil {
				tx.Rollback()
				return 0, fmt.Errorf("insert run file %s: %w", f.Path, err)
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit run: %w", err)
	}
	return runID, nil
}

// Runs returns all recorded runs, most recent first.
func (s *Store) Runs() ([]Run, error) {
	rows, err := s.db.Query(`
		SELECT id, label, recorded_at, file_count,
			lines_hit, lines_total, funcs_hit, funcs_total, branches_hit, branches_total
		FROM runs ORDER BY recorded_at DESC, id DESC
	`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		var recordedAt string
		if err := rows.Scan(&r.ID, &r.Label, &recordedAt, &r.FileCount,
			&r.Lines.Hit, &r.Lines.Total,
			&r.Funcs.Hit, &r.Funcs.Total,
			&r.Branches.Hit, &r.Branches.Total); err != nil {
			return nil, err
		}
		if t, err := time.Parse(time.RFC3339, recordedAt); err == nil {
			r.RecordedAt = t
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// RunFiles returns the per-file breakdown of a run, sorted by path.
func (s *Store) RunFiles(runID int64) ([]FileRow, error) {
	rows, err := s.db.Query(`
		SELECT file_path,
			lines_hit, lines_total, funcs_hit, funcs_total, branches_hit, branches_total
		FROM run_files WHERE run_id = ? ORDER BY file_path
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var files []FileRow
	for rows.Next() {
		var f FileRow
		if err := rows.Scan(&f.Path,
			&f.Lines.Hit, &f.Lines.Total,
			&f.Funcs.Hit, &f.Funcs.Total,
			&f.Branches.Hit, &f.Branches.Total); err != nil {
			return nil, err
		}
		files = append(files, f)
	}
	return files, rows.Err()
}
