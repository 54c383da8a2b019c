// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package cache

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

const defaultSQLitePath = "grounding-cache.db"

// SQLiteStore is a durable tier backed by a local SQLite database.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens or creates the database at path and its schema.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	if path == "" {
		path = defaultSQLitePath
	}
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("creating cache directory: %w", err)
		}
	}

	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_busy_timeout=5000")
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}
	// Durable writes arrive from many goroutines; one connection keeps
	// SQLite from returning SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &SQLiteStore{db: db}
	if err := s.createSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS cache_entries (
			namespace TEXT NOT NULL,
			key TEXT NOT NULL,
			value TEXT NOT NULL,
			updated_at TEXT NOT NULL,
			PRIMARY KEY (namespace, key)
		)`,
	}
	for _, stmt := range statements {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("executing schema statement: %w", err)
		}
	}
	return nil
}

// Get looks up one entry.
func (s *SQLiteStore) Get(ctx context.Context, ns Namespace, key string) (Entry, bool, error) {
	var value, updated string
	err := s.db.QueryRowContext(ctx,
		`SELECT value, updated_at FROM cache_entries WHERE namespace = ? AND key = ?`,
		string(ns), key,
	).Scan(&value, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return Entry{}, false, nil
	}
	if err != nil {
		return Entry{}, false, fmt.Errorf("querying %s entry: %w", ns, err)
	}

	ts, err := time.Parse(time.RFC3339Nano, updated)
	if err != nil {
		return Entry{}, false, fmt.Errorf("parsing timestamp %q: %w", updated, err)
	}
	return Entry{Namespace: ns, Key: key, Value: value, Timestamp: ts}, true, nil
}

// Set upserts e; the last write wins.
func (s *SQLiteStore) Set(ctx context.Context, e Entry) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT INTO cache_entries (namespace, key, value, updated_at) VALUES (?, ?, ?, ?)
		ON CONFLICT(namespace, key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at`,
		string(e.Namespace), e.Key, e.Value, e.Timestamp.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("upserting %s entry: %w", e.Namespace, err)
	}
	return nil
}

// Count returns the number of entries per namespace.
func (s *SQLiteStore) Count(ctx context.Context) (map[Namespace]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT namespace, count(*) FROM cache_entries GROUP BY namespace`)
	if err != nil {
		return nil, fmt.Errorf("counting entries: %w", err)
	}
	defer rows.Close()

	counts := make(map[Namespace]int)
	for rows.Next() {
		var ns string
		var n int
		if err := rows.Scan(&ns, &n); err != nil {
			return nil, fmt.Errorf("scanning count: %w", err)
		}
		counts[Namespace(ns)] = n
	}
	return counts, rows.Err()
}

// Close releases the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
