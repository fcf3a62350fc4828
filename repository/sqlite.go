package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	_ "modernc.org/sqlite" // Pure Go SQLite driver
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS preferences (
	namespace  TEXT    NOT NULL,
	key        TEXT    NOT NULL,
	value      INTEGER NOT NULL,
	updated_at TEXT    NOT NULL DEFAULT (datetime('now')),
	PRIMARY KEY (namespace, key)
)`

// SQLitePreferenceStore persists preferences in a local SQLite file
type SQLitePreferenceStore struct {
	conn      *sql.DB
	path      string
	namespace string
}

// NewSQLitePreferenceStore opens (and if needed creates) the database at path.
// ":memory:" gives a private in-memory database.
func NewSQLitePreferenceStore(ctx context.Context, path, namespace string) (*SQLitePreferenceStore, error) {
	dsn := path
	if path != ":memory:" {
		if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
		dsn = path + "?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)"
	}

	conn, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// a single connection keeps ":memory:" databases shared and serialises writers
	conn.SetMaxOpenConns(1)

	if err := conn.PingContext(ctx); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}
	if _, err := conn.ExecContext(ctx, sqliteSchema); err != nil {
		conn.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &SQLitePreferenceStore{conn: conn, path: path, namespace: namespace}, nil
}

func (s *SQLitePreferenceStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	var value bool
	err := s.conn.QueryRowContext(ctx,
		`SELECT value FROM preferences WHERE namespace = ? AND key = ?`,
		s.namespace, key).Scan(&value)
	if errors.Is(err, sql.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

func (s *SQLitePreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	_, err := s.conn.ExecContext(ctx, `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES (?, ?, ?, datetime('now'))
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`, s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (s *SQLitePreferenceStore) All(ctx context.Context) (map[string]bool, error) {
	rows, err := s.conn.QueryContext(ctx,
		`SELECT key, value FROM preferences WHERE namespace = ?`, s.namespace)
	if err != nil {
		return nil, fmt.Errorf("failed to query preferences: %w", err)
	}
	defer rows.Close()

	out := make(map[string]bool)
	for rows.Next() {
		var key string
		var value bool
		if err := rows.Scan(&key, &value); err != nil {
			return nil, fmt.Errorf("failed to scan preference: %w", err)
		}
		out[key] = value
	}
	return out, rows.Err()
}

func (s *SQLitePreferenceStore) Close() error {
	return s.conn.Close()
}

// Path returns the database file backing the store
func (s *SQLitePreferenceStore) Path() string {
	return s.path
}
