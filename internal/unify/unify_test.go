package unify

import (
	"reflect"
	"testing"

	"ingest/internal/dataset"
	"ingest/internal/parser"
)

// TestSheetsUnion verifies first-seen column ordering, empty-string fill
// for absent columns, and exactly one origin tag per row.
func TestSheetsUnion(t *testing.T) {
	t.Parallel()

	sheets := []parser.RawSheet{
		{
			Name:   "Q1",
			Header: []string{"region", "sales"},
			Rows:   [][]string{{"north", "100"}, {"south", "200"}},
		},
		{
			Name:   "Q2",
			Header: []string{"sales", "returns", "region"},
			Rows:   [][]string{{"300", "7", "east"}},
		},
	}

	u := Sheets(sheets)

	wantCols := []string{"region", "sales", "returns"}
	if !reflect.DeepEqual(u.Columns, wantCols) {
		t.Fatalf("Columns = %v, want %v (first-seen order)", u.Columns, wantCols)
	}
	if len(u.Rows) != 3 {
		t.Fatalf("len(Rows) = %d, want 3", len(u.Rows))
	}

	// Q1 rows: "returns" absent from that sheet must be empty string,
	// present as a key.
	first := u.Rows[0]
	if v, ok := first["returns"]; !ok || v != "" {
		t.Fatalf("Q1 returns = %q (present=%t), want empty string", v, ok)
	}
	if first[dataset.SheetTag] != "Q1" {
		t.Fatalf("tag = %q, want Q1", first[dataset.SheetTag])
	}

	// Q2 row keeps its own values under union keys.
	last := u.Rows[2]
	if last["region"] != "east" || last["sales"] != "300" || last["returns"] != "7" {
		t.Fatalf("Q2 row = %v", last)
	}
	if last[dataset.SheetTag] != "Q2" {
		t.Fatalf("tag = %q, want Q2", last[dataset.SheetTag])
	}

	// Every row carries exactly the union keys plus one tag.
	for i, r := range u.Rows {
		if len(r) != len(wantCols)+1 {
			t.Fatalf("row %d has %d keys, want %d", i, len(r), len(wantCols)+1)
		}
	}
}

// TestSheetRows verifies per-sheet snapshots stay confined to the sheet's
// own columns with no tag.
func TestSheetRows(t *testing.T) {
	t.Parallel()

	sh := parser.RawSheet{
		Name:   "A",
		Header: []string{"x", "y"},
		Rows:   [][]string{{"1", "2"}},
	}
	rows := SheetRows(sh)
	if len(rows) != 1 {
		t.Fatalf("len(rows) = %d, want 1", len(rows))
	}
	if _, tagged := rows[0][dataset.SheetTag]; tagged {
		t.Fatal("per-sheet rows must not carry the origin tag")
	}
	if rows[0]["x"] != "1" || rows[0]["y"] != "2" {
		t.Fatalf("row = %v", rows[0])
	}
}

// TestSheetsDuplicateHeaderAcrossSheets verifies a column name appearing
// in several sheets contributes a single union column.
func TestSheetsDuplicateHeaderAcrossSheets(t *testing.T) {
	t.Parallel()

	u := Sheets([]parser.RawSheet{
		{Name: "A", Header: []string{"id"}, Rows: [][]string{{"1"}}},
		{Name: "B", Header: []string{"id"}, Rows: [][]string{{"2"}}},
	})
	if len(u.Columns) != 1 || u.Columns[0] != "id" {
		t.Fatalf("Columns = %v, want [id]", u.Columns)
	}
}
