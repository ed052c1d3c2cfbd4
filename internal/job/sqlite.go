// SPDX-License-Identifier: MIT
package job

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"voiceforge/internal/voice"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS jobs (
	id          TEXT PRIMARY KEY,
	kind        TEXT NOT NULL,
	status      TEXT NOT NULL,
	progress    REAL NOT NULL,
	message     TEXT NOT NULL DEFAULT '',
	result_ref  TEXT NOT NULL DEFAULT '',
	error       TEXT NOT NULL DEFAULT '',
	analysis    TEXT,
	created_at  TEXT NOT NULL,
	updated_at  TEXT NOT NULL
);`

// SQLiteStore persists job records in a local SQLite database. It backs
// the same Store interface as MemoryStore for deployments that want job
// state to survive restarts.
type SQLiteStore struct {
	db *sql.DB
}

var _ Store = (*SQLiteStore)(nil)

// NewSQLiteStore opens (and if needed initializes) the database at path.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open job database: %w", err)
	}
	// One writer at a time keeps the Update read-modify-write atomic
	// without SQLite busy errors.
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(sqliteSchema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize job schema: %w", err)
	}
	return &SQLiteStore{db: db}, nil
}

// Close releases the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// Create inserts a new job record.
func (s *SQLiteStore) Create(j Job) error {
	analysis, err := marshalAnalysis(j.Analysis)
	if err != nil {
		return err
	}
	_, err = s.db.Exec(
		`INSERT INTO jobs (id, kind, status, progress, message, result_ref, error, analysis, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		j.ID, string(j.Kind), string(j.Status), j.Progress, j.Message, j.ResultRef, j.Error,
		analysis, j.CreatedAt.Format(time.RFC3339Nano), j.UpdatedAt.Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to insert job %s: %w", j.ID, err)
	}
	return nil
}

// Get returns a snapshot of the job.
func (s *SQLiteStore) Get(id string) (Job, error) {
	row := s.db.QueryRow(
		`SELECT id, kind, status, progress, message, result_ref, error, analysis, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	return scanJob(row)
}

// Update performs a read-modify-write inside a transaction.
func (s *SQLiteStore) Update(id string, mutate func(*Job)) (Job, error) {
	tx, err := s.db.Begin()
	if err != nil {
		return Job{}, fmt.Errorf("failed to begin update: %w", err)
	}
	defer tx.Rollback()

	row := tx.QueryRow(
		`SELECT id, kind, status, progress, message, result_ref, error, analysis, created_at, updated_at
		 FROM jobs WHERE id = ?`, id)
	j, err := scanJob(row)
	if err != nil {
		return Job{}, err
	}

	mutate(&j)
	j.UpdatedAt = time.Now().UTC()

	analysis, err := marshalAnalysis(j.Analysis)
	if err != nil {
		return Job{}, err
	}
	_, err = tx.Exec(
		`UPDATE jobs SET status = ?, progress = ?, message = ?, result_ref = ?, error = ?, analysis = ?, updated_at = ?
		 WHERE id = ?`,
		string(j.Status), j.Progress, j.Message, j.ResultRef, j.Error, analysis,
		j.UpdatedAt.Format(time.RFC3339Nano), j.ID,
	)
	if err != nil {
		return Job{}, fmt.Errorf("failed to update job %s: %w", id, err)
	}
	if err := tx.Commit(); err != nil {
		return Job{}, fmt.Errorf("failed to commit update: %w", err)
	}
	return j.snapshot(), nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(row rowScanner) (Job, error) {
	var (
		j                    Job
		kind, status         string
		analysis             sql.NullString
		createdAt, updatedAt string
	)
	err := row.Scan(&j.ID, &kind, &status, &j.Progress, &j.Message, &j.ResultRef, &j.Error,
		&analysis, &createdAt, &updatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, fmt.Errorf("failed to scan job row: %w", err)
	}

	j.Kind = Kind(kind)
	j.Status = Status(status)
	if analysis.Valid && analysis.String != "" {
		var p voice.Profile
		if err := json.Unmarshal([]byte(analysis.String), &p); err != nil {
			return Job{}, fmt.Errorf("failed to decode job analysis: %w", err)
		}
		j.Analysis = &p
	}
	if j.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
		return Job{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if j.UpdatedAt, err = time.Parse(time.RFC3339Nano, updatedAt); err != nil {
		return Job{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}
	return j, nil
}

func marshalAnalysis(p *voice.Profile) (any, error) {
	if p == nil {
		return nil, nil
	}
	data, err := json.Marshal(p)
	if err != nil {
		return nil, fmt.Errorf("failed to encode job analysis: %w", err)
	}
	return string(data), nil
}
