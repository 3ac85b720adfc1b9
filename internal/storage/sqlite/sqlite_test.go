package sqlite

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"ingest/internal/dataset"
	"ingest/internal/storage"
)

func openTestStore(t *testing.T) storage.Store {
	t.Helper()

	dsn := filepath.Join(t.TempDir(), "datasets.db")
	st, err := storage.Open(context.Background(), storage.Config{Kind: "sqlite", DSN: dsn})
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(st.Close)
	return st
}

func makeDataset(name string) *dataset.Dataset {
	cols := []dataset.Column{
		{Name: "id", Type: dataset.TypeNumber, Unique: true},
		{Name: "label", Type: dataset.TypeString},
	}
	rows := []dataset.Row{
		{"id": dataset.Number(1), "label": dataset.String("a")},
		{"id": dataset.Number(2), "label": dataset.String("b")},
	}
	return dataset.New(name, name+".csv", cols, rows)
}

// TestSaveLoadRoundTrip verifies a dataset survives the blob store.
func TestSaveLoadRoundTrip(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	ctx := context.Background()

	ds := makeDataset("first")
	if err := st.Save(ctx, ds); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got, err := st.Load(ctx, ds.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.ID != ds.ID || got.Name != "first" || got.Summary != ds.Summary {
		t.Fatalf("loaded = %+v", got)
	}
	if v, ok := got.Rows[1]["id"].Num(); !ok || v != 2 {
		t.Fatalf("row value = %v", got.Rows[1]["id"])
	}
}

// TestSaveReplaces verifies saving under the same id overwrites.
func TestSaveReplaces(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	ctx := context.Background()

	ds := makeDataset("before")
	if err := st.Save(ctx, ds); err != nil {
		t.Fatalf("Save: %v", err)
	}
	ds.Name = "after"
	if err := st.Save(ctx, ds); err != nil {
		t.Fatalf("re-Save: %v", err)
	}

	got, err := st.Load(ctx, ds.ID)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got.Name != "after" {
		t.Fatalf("name = %q, want after", got.Name)
	}

	entries, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("entries = %d, want 1 (replaced, not duplicated)", len(entries))
	}
}

// TestListAndDelete verifies listing and the not-found contract.
func TestListAndDelete(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	ctx := context.Background()

	a := makeDataset("a")
	b := makeDataset("b")
	for _, ds := range []*dataset.Dataset{a, b} {
		if err := st.Save(ctx, ds); err != nil {
			t.Fatalf("Save: %v", err)
		}
	}

	entries, err := st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("entries = %+v, want 2", entries)
	}

	if err := st.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := st.Load(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("Load after delete = %v, want ErrNotFound", err)
	}
	if err := st.Delete(ctx, a.ID); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("second Delete = %v, want ErrNotFound", err)
	}

	entries, err = st.List(ctx)
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if len(entries) != 1 || entries[0].ID != b.ID {
		t.Fatalf("entries = %+v, want only b", entries)
	}
}

// TestLoadUnknown verifies the not-found sentinel for fresh stores.
func TestLoadUnknown(t *testing.T) {
	t.Parallel()

	st := openTestStore(t)
	if _, err := st.Load(context.Background(), "nope"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("err = %v, want ErrNotFound", err)
	}
}
