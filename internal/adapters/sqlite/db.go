package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"
)

// Driver names accepted by Open
const (
	DriverModernc = "sqlite"  // modernc.org/sqlite, pure Go
	DriverCGO     = "sqlite3" // github.com/mattn/go-sqlite3
)

const maxOpenConns = 5

const schema = `
	CREATE TABLE IF NOT EXISTS nodes (
		id TEXT PRIMARY KEY,
		text TEXT NOT NULL,
		role TEXT NOT NULL,
		metadata TEXT,
		parent_id TEXT
	);
	CREATE TABLE IF NOT EXISTS edges (
		id TEXT PRIMARY KEY,
		source TEXT NOT NULL,
		target TEXT NOT NULL,
		edge_type TEXT NOT NULL,
		metadata TEXT
	);
	CREATE TABLE IF NOT EXISTS snapshots (
		id TEXT PRIMARY KEY,
		state TEXT NOT NULL,
		checksum TEXT NOT NULL,
		created_at INTEGER NOT NULL
	);
	CREATE TABLE IF NOT EXISTS commits (
		seq INTEGER PRIMARY KEY AUTOINCREMENT,
		id TEXT NOT NULL UNIQUE,
		parent_id TEXT,
		agent_id TEXT NOT NULL,
		message TEXT NOT NULL,
		timestamp INTEGER NOT NULL,
		snapshot_id TEXT NOT NULL REFERENCES snapshots(id)
	);
	CREATE INDEX IF NOT EXISTS idx_commits_timestamp ON commits(timestamp DESC, seq DESC);
`

// Open opens (creating if needed) the database at path and ensures the schema
// exists. The returned pool is shared by every store.
func Open(ctx context.Context, driver, path string) (*sql.DB, error) {
	if driver == "" {
		driver = DriverModernc
	}

	path, err := expandHome(path)
	if err != nil {
		return nil, err
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create database directory: %w", err)
	}

	dsn, err := dataSourceName(driver, path)
	if err != nil {
		return nil, err
	}

	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)

	if err := Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}

	return db, nil
}

// Migrate creates the tables if they are absent
func Migrate(ctx context.Context, db *sql.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to setup database: %w", err)
	}
	return nil
}

// dataSourceName builds a DSN carrying per-connection pragmas. Pragmas set
// with Exec would only reach one connection of the pool.
func dataSourceName(driver, path string) (string, error) {
	q := url.Values{}
	switch driver {
	case DriverModernc:
		q.Add("_pragma", "journal_mode(WAL)")
		q.Add("_pragma", "busy_timeout(5000)")
		q.Add("_pragma", "foreign_keys(1)")
		q.Add("_pragma", "synchronous(NORMAL)")
	case DriverCGO:
		q.Set("_journal_mode", "WAL")
		q.Set("_busy_timeout", "5000")
		q.Set("_foreign_keys", "on")
		q.Set("_synchronous", "NORMAL")
	default:
		return "", fmt.Errorf("unsupported sqlite driver %q (expected %q or %q)", driver, DriverModernc, DriverCGO)
	}
	return "file:" + path + "?" + q.Encode(), nil
}

func expandHome(path string) (string, error) {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("failed to get home directory: %w", err)
		}
		return filepath.Join(home, path[1:]), nil
	}
	return path, nil
}
