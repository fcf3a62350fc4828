package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// DBTX is an interface that both pgxpool.Pool and pgx.Tx satisfy.
type DBTX interface {
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

const postgresSchema = `
CREATE TABLE IF NOT EXISTS preferences (
	namespace  TEXT        NOT NULL,
	key        TEXT        NOT NULL,
	value      BOOLEAN     NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
	PRIMARY KEY (namespace, key)
)`

// PostgresPreferenceStore persists preferences in a shared PostgreSQL database
type PostgresPreferenceStore struct {
	pool      *pgxpool.Pool
	db        DBTX
	namespace string
}

// NewPostgresPreferenceStore connects with a pool and ensures the table exists
func NewPostgresPreferenceStore(ctx context.Context, connString, namespace string) (*PostgresPreferenceStore, error) {
	pool, err := pgxpool.New(ctx, connString)
	if err != nil {
		return nil, fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := WithRetry(ctx, DefaultRetryConfig, "ping bookmark database", func() error {
		return pool.Ping(ctx)
	}); err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to ping database: %w", err)
	}

	if _, err := pool.Exec(ctx, postgresSchema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("failed to create preferences table: %w", err)
	}

	return &PostgresPreferenceStore{pool: pool, db: pool, namespace: namespace}, nil
}

// WithTx returns a store that runs its statements inside tx
func (s *PostgresPreferenceStore) WithTx(tx pgx.Tx) *PostgresPreferenceStore {
	return &PostgresPreferenceStore{pool: s.pool, db: tx, namespace: s.namespace}
}

func (s *PostgresPreferenceStore) GetBool(ctx context.Context, key string, def bool) (bool, error) {
	var value bool
	err := s.db.QueryRow(ctx,
		`SELECT value FROM preferences WHERE namespace = $1 AND key = $2`,
		s.namespace, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return def, nil
	}
	if err != nil {
		return def, fmt.Errorf("failed to read preference %s: %w", key, err)
	}
	return value, nil
}

func (s *PostgresPreferenceStore) SetBool(ctx context.Context, key string, value bool) error {
	_, err := s.db.Exec(ctx, `
		INSERT INTO preferences (namespace, key, value, updated_at)
		VALUES ($1, $2, $3, NOW())
		ON CONFLICT (namespace, key)
		DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()
	`, s.namespace, key, value)
	if err != nil {
		return fmt.Errorf("failed to write preference %s: %w", key, err)
	}
	return nil
}

func (s *PostgresPreferenceStore) All(ctx context.Context) (map[string]bool, error) {
	rows, err := s.db.Query(ctx,
		`SELECT key, value FROM preferences WHERE namespace = $1`, s.namespace)
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

// Health checks if the database connection is healthy
func (s *PostgresPreferenceStore) Health(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

func (s *PostgresPreferenceStore) Close() error {
	if s.pool != nil {
		s.pool.Close()
	}
	return nil
}

// Pool returns the underlying connection pool. Intended for test cleanup.
func (s *PostgresPreferenceStore) Pool() *pgxpool.Pool {
	return s.pool
}
