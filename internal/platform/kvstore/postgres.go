package kvstore

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/rxcheck/rxcheck/internal/platform/db"
)

type queryable interface {
	Query(ctx context.Context, sql string, args ...interface{}) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...interface{}) pgx.Row
	Exec(ctx context.Context, sql string, args ...interface{}) (pgconn.CommandTag, error)
}

// PostgresStore keeps each key as one row of the kv_store table
// (migrations/001_kv_store.sql).
type PostgresStore struct {
	pool *pgxpool.Pool
}

func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

func (s *PostgresStore) conn(ctx context.Context) queryable {
	if tx := db.TxFromContext(ctx); tx != nil {
		return tx
	}
	return s.pool
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	var value string
	err := s.conn(ctx).QueryRow(ctx, `SELECT value::text FROM kv_store WHERE key = $1`, key).Scan(&value)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return []byte(value), nil
}

func (s *PostgresStore) Set(ctx context.Context, key string, value []byte) error {
	_, err := s.conn(ctx).Exec(ctx, `
		INSERT INTO kv_store (key, value, updated_at)
		VALUES ($1, $2::jsonb, NOW())
		ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = NOW()`,
		key, string(value))
	if err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (s *PostgresStore) Clear(ctx context.Context) error {
	if _, err := s.conn(ctx).Exec(ctx, `DELETE FROM kv_store`); err != nil {
		return fmt.Errorf("clear kv_store: %w", err)
	}
	return nil
}

// Update locks the row for the duration of fn so concurrent appends to the
// same key serialize.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) error {
	return db.WithTx(ctx, s.pool, func(ctx context.Context) error {
		// Insert a placeholder first so FOR UPDATE has a row to lock.
		if _, err := s.conn(ctx).Exec(ctx, `
			INSERT INTO kv_store (key, value) VALUES ($1, 'null'::jsonb)
			ON CONFLICT (key) DO NOTHING`, key); err != nil {
			return fmt.Errorf("reserve %s: %w", key, err)
		}
		var current string
		if err := s.conn(ctx).QueryRow(ctx,
			`SELECT value::text FROM kv_store WHERE key = $1 FOR UPDATE`, key).Scan(&current); err != nil {
			return fmt.Errorf("lock %s: %w", key, err)
		}
		var in []byte
		if current != "null" {
			in = []byte(current)
		}
		next, err := fn(in)
		if err != nil {
			return err
		}
		return s.Set(ctx, key, next)
	})
}

func (s *PostgresStore) Ping(ctx context.Context) error {
	return s.pool.Ping(ctx)
}
