// Package mssql implements the dataset blob store on SQL Server via
// database/sql and the microsoft/go-mssqldb driver. Upserts use MERGE,
// the idiomatic SQL Server equivalent of Postgres ON CONFLICT.
package mssql

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	_ "github.com/microsoft/go-mssqldb"

	"ingest/internal/dataset"
	"ingest/internal/storage"
)

// Store implements storage.Store for SQL Server.
type Store struct {
	db *sql.DB
}

func init() {
	storage.Register("mssql", New)
}

const schema = `
IF OBJECT_ID('datasets', 'U') IS NULL
CREATE TABLE datasets (
    id          NVARCHAR(64)  NOT NULL PRIMARY KEY,
    name        NVARCHAR(400) NOT NULL,
    source_file NVARCHAR(400) NOT NULL,
    payload     NVARCHAR(MAX) NOT NULL,
    updated_at  DATETIMEOFFSET NOT NULL DEFAULT SYSDATETIMEOFFSET()
)`

// New connects to cfg.DSN and ensures the schema.
func New(ctx context.Context, cfg storage.Config) (storage.Store, error) {
	db, err := sql.Open("sqlserver", cfg.DSN)
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

// Save implements storage.Store via MERGE.
func (s *Store) Save(ctx context.Context, ds *dataset.Dataset) error {
	payload, err := storage.Encode(ds)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx, `
MERGE datasets AS target
USING (SELECT @p1 AS id, @p2 AS name, @p3 AS source_file, @p4 AS payload) AS src
ON target.id = src.id
WHEN MATCHED THEN UPDATE SET
    name = src.name,
    source_file = src.source_file,
    payload = src.payload,
    updated_at = SYSDATETIMEOFFSET()
WHEN NOT MATCHED THEN INSERT (id, name, source_file, payload)
    VALUES (src.id, src.name, src.source_file, src.payload);`,
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
		`SELECT payload FROM datasets WHERE id = @p1`, id).Scan(&payload)
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
	res, err := s.db.ExecContext(ctx, `DELETE FROM datasets WHERE id = @p1`, id)
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
