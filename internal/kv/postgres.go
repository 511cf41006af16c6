package kv

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"sales-crm/pkg/utils"
)

// PostgresStore keeps slots in a single table:
//
//	CREATE TABLE kv_slots (
//	  key        text PRIMARY KEY,
//	  value      bytea NOT NULL,
//	  updated_at timestamptz NOT NULL DEFAULT now()
//	);
type PostgresStore struct {
	db *sql.DB
}

func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

// EnsureSchema creates the slot table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	const q = `
CREATE TABLE IF NOT EXISTS kv_slots (
  key        text PRIMARY KEY,
  value      bytea NOT NULL,
  updated_at timestamptz NOT NULL DEFAULT now()
)
`
	if _, err := s.db.ExecContext(ctx, q); err != nil {
		return fmt.Errorf("kv: ensure schema: %w", err)
	}
	return nil
}

func (s *PostgresStore) Get(ctx context.Context, key string) ([]byte, error) {
	const q = `SELECT value FROM kv_slots WHERE key = $1`
	var v []byte
	if err := s.db.QueryRowContext(ctx, q, key).Scan(&v); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("kv: postgres get %s: %w", key, err)
	}
	return v, nil
}

const upsertSlot = `
INSERT INTO kv_slots (key, value, updated_at)
VALUES ($1, $2, now())
ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()
`

func (s *PostgresStore) Put(ctx context.Context, key string, value []byte) error {
	if _, err := s.db.ExecContext(ctx, upsertSlot, key, value); err != nil {
		return fmt.Errorf("kv: postgres put %s: %w", key, err)
	}
	return nil
}

// Update locks the slot row for the duration of fn. A missing row is not
// locked; concurrent first writers are resolved by the upsert.
func (s *PostgresStore) Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error) {
	var out []byte
	err := utils.WithTx(ctx, s.db, nil, func(ctx context.Context, tx *sql.Tx) error {
		const q = `SELECT value FROM kv_slots WHERE key = $1 FOR UPDATE`
		var cur []byte
		found := true
		if err := tx.QueryRowContext(ctx, q, key).Scan(&cur); err != nil {
			if !errors.Is(err, sql.ErrNoRows) {
				return err
			}
			found = false
		}
		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		if _, err := tx.ExecContext(ctx, upsertSlot, key, next); err != nil {
			return err
		}
		out = next
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("kv: postgres update %s: %w", key, err)
	}
	return out, nil
}
