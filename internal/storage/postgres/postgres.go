// Package postgres implements the dataset blob store on PostgreSQL via
// pgxpool. Payloads live in a JSONB column, so ad hoc SQL against the
// stored datasets stays possible even though the store itself never
// inspects them.
package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"ingest/internal/dataset"
	"ingest/internal/storage"
)

// Store implements storage.Store for PostgreSQL.
type Store struct {
	pool *pgxpool.Pool
}

func init() {
	storage.Register("postgres", New)
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    source_file TEXT NOT NULL,
    payload     JSONB NOT NULL,
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// New connects to cfg.DSN and ensures the schema.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	pool, err := pgxpool.New(ctx, cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, err
	}
	if _, err := pool.Exec(ctx, schema); err != nil {
		pool.Close()
		return nil, fmt.Errorf("create datasets table: %w", err)
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() { s.pool.Close() }

// Save implements storage.Store via ON CONFLICT DO UPDATE.
func (s *Store) Save(ctx context.Context, ds *dataset.Dataset) error {
	payload, err := storage.Encode(ds)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, `
INSERT INTO datasets (id, name, source_file, payload, updated_at)
VALUES ($1, $2, $3, $4, now())
ON CONFLICT (id) DO UPDATE
SET name = EXCLUDED.name,
    source_file = EXCLUDED.source_file,
    payload = EXCLUDED.payload,
    updated_at = now()`,
		ds.ID, ds.Name, ds.SourceFile, payload)
	if err != nil {
		return fmt.Errorf("save dataset %s: %w", ds.ID, err)
	}
	return nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context, id string) (*dataset.Dataset, error) {
	var payload []byte
	err := s.pool.QueryRow(ctx,
		`SELECT payload FROM datasets WHERE id = $1`, id).Scan(&payload)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", id, err)
	}
	return storage.Decode(payload)
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context) ([]storage.Entry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT id, name, source_file FROM datasets ORDER BY updated_at DESC`)
	if err != nil {
		return nil, fmt.Errorf("list datasets: %w", err)
	}
	defer rows.Close()

	var out []storage.Entry
	for rows.Next() {
		var e storage.Entry
		if err := rows.Scan(&e.ID, &e.Name, &e.SourceFile); err != nil {
			return nil, fmt.Errorf("scan dataset entry: %w", err)
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// Delete implements storage.Store.
func (s *Store) Delete(ctx context.Context, id string) error {
	tag, err := s.pool.Exec(ctx, `DELETE FROM datasets WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
