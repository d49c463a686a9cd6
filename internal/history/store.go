// Package history persists deployment records in a local SQLite database
// under the project's state directory. The reconciler uses it to tell
// incremental runs from full ones; the deploy command appends to it; the
// dashboard reads recent rows from it.
package history

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "modernc.org/sqlite" // Pure-Go SQLite driver.
)

// schema contains the DDL executed on first open. Using IF NOT EXISTS makes
// it safe to run on every startup.
const schema = `
CREATE TABLE IF NOT EXISTS deployments (
    id          INTEGER PRIMARY KEY AUTOINCREMENT,
    name        TEXT NOT NULL,
    tx_id       TEXT NOT NULL DEFAULT '',
    network     TEXT NOT NULL,
    status      TEXT NOT NULL,
    deployed_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_deployments_name ON deployments(name);
`

// Deployment statuses recorded by the deploy command.
const (
	StatusSuccess   = "success"
	StatusFailed    = "failed"
	StatusSubmitted = "submitted"
)

// Record is one deployment history row.
type Record struct {
	ID         int64
	Name       string
	TxID       string
	Network    string
	Status     string
	DeployedAt time.Time
}

// Store is a deployment history database. Construct with Open.
type Store struct {
	db *sql.DB
}

// DefaultPath returns the history database location for a project root.
func DefaultPath(root string) string {
	return filepath.Join(root, ".stacksorbit", "history.db")
}

// Open opens (or creates) the history database at dbPath, enables WAL mode
// and a busy timeout, and creates the schema if needed. Parent directories
// are created.
func Open(ctx context.Context, dbPath string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0o755); err != nil {
		return nil, fmt.Errorf("history: create state dir: %w", err)
	}
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("history: open database: %w", err)
	}

	// Limit to one connection. SQLite only supports a single writer; using
	// one connection avoids SQLITE_BUSY contention between pooled
	// connections that each need their own PRAGMA setup.
	db.SetMaxOpenConns(1)

	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode=WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: enable WAL mode: %w", err)
	}
	if _, err := db.ExecContext(ctx, "PRAGMA busy_timeout=5000"); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: set busy timeout: %w", err)
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("history: create schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Close releases the database handle.
func (s *Store) Close() error {
	return s.db.Close()
}

// Record appends a deployment record.
func (s *Store) Record(ctx context.Context, name, txID, network, status string) error {
	const q = `INSERT INTO deployments (name, tx_id, network, status) VALUES (?, ?, ?, ?)`
	if _, err := s.db.ExecContext(ctx, q, name, txID, network, status); err != nil {
		return fmt.Errorf("history: record deployment %q: %w", name, err)
	}
	return nil
}

// HasRecords reports whether any deployment has ever been recorded.
func (s *Store) HasRecords(ctx context.Context) (bool, error) {
	var one int
	err := s.db.QueryRowContext(ctx, "SELECT 1 FROM deployments LIMIT 1").Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("history: check records: %w", err)
	}
	return true, nil
}

// Successful returns the distinct names of contracts with a successful
// deployment record.
func (s *Store) Successful(ctx context.Context) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		"SELECT DISTINCT name FROM deployments WHERE status = ? ORDER BY name", StatusSuccess)
	if err != nil {
		return nil, fmt.Errorf("history: query successful deployments: %w", err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("history: scan deployment name: %w", err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate successful deployments: %w", err)
	}
	return names, nil
}

// Recent returns up to limit most recent records, newest first.
func (s *Store) Recent(ctx context.Context, limit int) ([]Record, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, tx_id, network, status, deployed_at
		FROM deployments ORDER BY id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("history: query recent deployments: %w", err)
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var r Record
		if err := rows.Scan(&r.ID, &r.Name, &r.TxID, &r.Network, &r.Status, &r.DeployedAt); err != nil {
			return nil, fmt.Errorf("history: scan deployment row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("history: iterate recent deployments: %w", err)
	}
	return out, nil
}
