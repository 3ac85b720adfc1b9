// Package storage persists ingested datasets as opaque JSON blobs.
//
// The store never interprets the payload; it round-trips whatever the
// dataset package marshals. Identity, display name, and source file are
// duplicated into their own columns so List works without decoding
// blobs.
//
// Backends register themselves under a kind ("sqlite", "postgres",
// "mssql") from an init function; Open selects one by kind.
package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	"ingest/internal/dataset"
)

// ErrNotFound is returned by Load and Delete for unknown dataset ids.
var ErrNotFound = errors.New("dataset not found")

// Config selects and configures a backend.
type Config struct {
	// Kind must match a registered backend kind.
	Kind string
	// DSN is passed through to the backend factory; validation is
	// backend-specific.
	DSN string
}

// Entry is one row of a store listing.
type Entry struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	SourceFile string `json:"source_file"`
}

// Store is the backend-agnostic dataset blob store.
type Store interface {
	// Save inserts or replaces the dataset under its ID.
	Save(ctx context.Context, ds *dataset.Dataset) error

	// Load returns the dataset stored under id, or ErrNotFound.
	Load(ctx context.Context, id string) (*dataset.Dataset, error)

	// List returns the stored entries, newest first.
	List(ctx context.Context) ([]Entry, error)

	// Delete removes the dataset under id, or returns ErrNotFound.
	Delete(ctx context.Context, id string) error

	// Close releases backend resources. Treat as call-once.
	Close()
}

// Encode marshals the dataset to its canonical blob payload.
func Encode(ds *dataset.Dataset) ([]byte, error) {
	b, err := json.Marshal(ds)
	if err != nil {
		return nil, fmt.Errorf("encode dataset %s: %w", ds.ID, err)
	}
	return b, nil
}

// Decode reverses Encode.
func Decode(payload []byte) (*dataset.Dataset, error) {
	var ds dataset.Dataset
	if err := json.Unmarshal(payload, &ds); err != nil {
		return nil, fmt.Errorf("decode dataset payload: %w", err)
	}
	return &ds, nil
}

type factory func(ctx context.Context, cfg Config) (Store, error)

var (
	mu        sync.RWMutex
	factories = map[string]factory{}
)

// Register registers a backend under a kind. Called from backend init
// functions. Registering an empty kind, a nil factory, or a duplicate
// kind panics so misconfiguration fails at startup.
func Register(kind string, f factory) {
	mu.Lock()
	defer mu.Unlock()

	if kind == "" {
		panic("storage: Register called with empty kind")
	}
	if f == nil {
		panic("storage: Register called with nil factory")
	}
	if _, exists := factories[kind]; exists {
		panic(fmt.Sprintf("storage: factory already registered for kind=%q", kind))
	}
	factories[kind] = f
}

// Open constructs a Store using the registered backend factory for
// cfg.Kind. Safe for concurrent use with Register.
func Open(ctx context.Context, cfg Config) (Store, error) {
	if cfg.Kind == "" {
		return nil, fmt.Errorf("storage: missing kind")
	}

	mu.RLock()
	f := factories[cfg.Kind]
	mu.RUnlock()

	if f == nil {
		return nil, fmt.Errorf("storage: unsupported kind=%q", cfg.Kind)
	}
	return f(ctx, cfg)
}
