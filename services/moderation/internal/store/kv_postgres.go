package store

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const kvSchema = `CREATE TABLE IF NOT EXISTS kv_store (
	key        TEXT PRIMARY KEY,
	value      JSONB NOT NULL,
	updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresKV keeps collections in a single key/value table. Update holds a
// transaction-scoped advisory lock on the key, which also covers keys that
// do not have a row yet.
type PostgresKV struct {
	pool *pgxpool.Pool
}

func NewPostgresKV(pool *pgxpool.Pool) *PostgresKV {
	return &PostgresKV{pool: pool}
}

// EnsureSchema creates the kv_store table when missing.
func (s *PostgresKV) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, kvSchema)
	return err
}

func (s *PostgresKV) Get(ctx context.Context, key string) ([]byte, error) {
	return getValue(ctx, s.pool, key)
}

func (s *PostgresKV) Set(ctx context.Context, key string, value []byte) error {
	return putValue(ctx, s.pool, key, value)
}

func (s *PostgresKV) Update(ctx context.Context, key string, fn func([]byte) ([]byte, error)) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback(ctx) }()

	if _, err := tx.Exec(ctx, `SELECT pg_advisory_xact_lock(hashtext($1))`, key); err != nil {
		return err
	}
	cur, err := getValue(ctx, tx, key)
	if err != nil && !errors.Is(err, ErrKeyNotFound) {
		return err
	}
	next, err := fn(cur)
	if err != nil {
		return err
	}
	if err := putValue(ctx, tx, key, next); err != nil {
		return err
	}
	return tx.Commit(ctx)
}

func (s *PostgresKV) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}

// pgExecutor is satisfied by both *pgxpool.Pool and pgx.Tx.
type pgExecutor interface {
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
}

func getValue(ctx context.Context, q pgExecutor, key string) ([]byte, error) {
	var raw string
	err := q.QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrKeyNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(raw), nil
}

func putValue(ctx context.Context, q pgExecutor, key string, value []byte) error {
	const stmt = `INSERT INTO kv_store (key, value, updated_at)
	              VALUES ($1, $2::jsonb, now())
	              ON CONFLICT (key) DO UPDATE SET
	                value = EXCLUDED.value,
	                updated_at = now()`
	_, err := q.Exec(ctx, stmt, key, string(value))
	return err
}
