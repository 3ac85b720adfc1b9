// Package sqlite implements the dataset blob store on SQLite via the
// pure-Go modernc.org driver, so commands work without cgo or a server.
package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "modernc.org/sqlite"

	"ingest/internal/dataset"
	"ingest/internal/storage"
)

// Store implements storage.Store for SQLite.
//
// Payloads are stored as TEXT; modernc.org/sqlite round-trips TEXT
// reliably, and JSON blobs stay greppable when debugging a store file.
type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("sqlite", New)
}

const schema = `
CREATE TABLE IF NOT EXISTS datasets (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL,
    source_file TEXT NOT NULL,
    payload     TEXT NOT NULL,
    updated_at  TEXT NOT NULL DEFAULT (strftime('%Y-%m-%dT%H:%M:%fZ','now'))
)`

// New opens (or creates) the store at cfg.DSN and ensures the schema.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlite", cfg.DSN)
	if err != nil {
		return nil, err
	}
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, schema); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("create datasets table: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() { _ = s.db.Close() }

// Save implements storage.Store via INSERT OR REPLACE.
func (s *Store) Save(ctx context.Context, ds *dataset.Dataset) error {
	payload, err := storage.Encode(ds)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
INSERT OR REPLACE INTO datasets (id, name, source_file, payload, updated_at)
VALUES (?, ?, ?, ?, strftime('%Y-%m-%dT%H:%M:%fZ','now'))`,
		ds.ID, ds.Name, ds.SourceFile, string(payload))
	if err != nil {
		return fmt.Errorf("save dataset %s: %w", ds.ID, err)
	}
	return nil
}

// Load implements storage.Store.
func (s *Store) Load(ctx context.Context, id string) (*dataset.Dataset, error) {
	var payload string
	err := s.db.QueryRowContext(ctx,
		`SELECT payload FROM datasets WHERE id = ?`, id).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("load dataset %s: %w", id, err)
	}
	return storage.Decode([]byte(payload))
}

// List implements storage.Store.
func (s *Store) List(ctx context.Context) ([]storage.Entry, error) {
	rows, err := s.db.QueryContext(ctx,
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete dataset %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", id, storage.ErrNotFound)
	}
	return nil
}

var _ storage.Store = (*Store)(nil)
