// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package ledger records pdf2md runs in a SQLite database so repeated
// conversions of the same file can be traced.
package ledger

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/pdiddy/pdf2md/pkg/types"
)

// Ledger wraps the run database.
type Ledger struct {
	db *sql.DB
}

// Open opens or creates the ledger at path, creating parent directories and
// the schema as needed.
func Open(path string) (*Ledger, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating ledger directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("opening ledger: %w", err)
	}

	l := &Ledger{db: db}
	if err := l.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating ledger schema: %w", err)
	}
	return l, nil
}

// Close releases the database connection.
func (l *Ledger) Close() error {
	return l.db.Close()
}

func (l *Ledger) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			input TEXT NOT NULL,
			output TEXT,
			backend TEXT,
			pages INTEGER,
			images INTEGER,
			status TEXT NOT NULL,
			error TEXT,
			started_at TEXT NOT NULL,
			finished_at TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_input ON runs(input)`,
	}
	for _, stmt := range statements {
		if _, err := l.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Record appends one run.
func (l *Ledger) Record(r types.RunRecord) error {
	_, err := l.db.Exec(
		`INSERT INTO runs (input, output, backend, pages, images, status, error, started_at, finished_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.Input, r.Output, r.Backend, r.Pages, r.Images, string(r.Status), r.Error,
		r.StartedAt.UTC().Format(time.RFC3339Nano), r.FinishedAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("recording run for %s: %w", r.Input, err)
	}
	return nil
}

// Runs returns the recorded runs for input, oldest first. An empty input
// returns every run.
func (l *Ledger) Runs(input string) ([]types.RunRecord, error) {
	query := `SELECT input, output, backend, pages, images, status, error, started_at, finished_at
		FROM runs`
	var args []any
	if input != "" {
		query += ` WHERE input = ?`
		args = append(args, input)
	}
	query += ` ORDER BY id`

	rows, err := l.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying runs: %w", err)
	}
	defer rows.Close()

	var out []types.RunRecord
	for rows.Next() {
		var (
			r                 types.RunRecord
			output, backend   sql.NullString
			errMsg            sql.NullString
			pages, images     sql.NullInt64
			status            string
			started, finished string
		)
		if err := rows.Scan(&r.Input, &output, &backend, &pages, &images, &status, &errMsg, &started, &finished); err != nil {
			return nil, fmt.Errorf("scanning run: %w", err)
		}
		r.Output = output.String
		r.Backend = backend.String
		r.Pages = int(pages.Int64)
		r.Images = int(images.Int64)
		r.Status = types.ConversionStatus(status)
		r.Error = errMsg.String
		if r.StartedAt, err = time.Parse(time.RFC3339Nano, started); err != nil {
			return nil, fmt.Errorf("parsing started_at: %w", err)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339Nano, finished); err != nil {
			return nil, fmt.Errorf("parsing finished_at: %w", err)
		}
		out = append(out, r)
	}
	return out, rows.Err()
}
