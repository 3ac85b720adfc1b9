package dataset

import (
	"encoding/json"
	"testing"
	"time"
)

func twoColumns() []Column {
	return []Column{
		{Name: "name", Type: TypeString},
		{Name: "age", Type: TypeNumber, Nullable: true},
	}
}

// TestComputeSummary verifies row/column counts, per-type counts, missing
// values, and duplicate rows over a small grid.
func TestComputeSummary(t *testing.T) {
	t.Parallel()

	cols := twoColumns()
	rows := []Row{
		{"name": String("Alice"), "age": Number(30)},
		{"name": String("Bob"), "age": Null()},
		{"name": String("Alice"), "age": Number(30)},
	}

	s := ComputeSummary(cols, rows)

	if s.TotalRows != 3 || s.TotalColumns != 2 {
		t.Fatalf("counts = %d rows, %d cols; want 3, 2", s.TotalRows, s.TotalColumns)
	}
	if s.StringColumns != 1 || s.NumberColumns != 1 {
		t.Fatalf("type counts = %d string, %d number; want 1, 1", s.StringColumns, s.NumberColumns)
	}
	if s.MissingValues != 1 {
		t.Fatalf("MissingValues = %d, want 1", s.MissingValues)
	}
	if s.DuplicateRows != 1 {
		t.Fatalf("DuplicateRows = %d, want 1", s.DuplicateRows)
	}
}

// TestFingerprintCanonical verifies that fingerprints do not depend on row
// construction order and that the origin-sheet tag is excluded.
func TestFingerprintCanonical(t *testing.T) {
	t.Parallel()

	cols := twoColumns()

	a := Row{"name": String("Alice"), "age": Number(30)}
	b := Row{"age": Number(30), "name": String("Alice")}
	if Fingerprint(cols, a) != Fingerprint(cols, b) {
		t.Fatal("fingerprint depends on construction order")
	}

	tagged := Row{"name": String("Alice"), "age": Number(30), SheetTag: String("Q1")}
	if Fingerprint(cols, a) != Fingerprint(cols, tagged) {
		t.Fatal("fingerprint must ignore the origin-sheet tag")
	}

	c := Row{"name": String("Alice"), "age": Number(31)}
	if Fingerprint(cols, a) == Fingerprint(cols, c) {
		t.Fatal("distinct rows collided")
	}
}

// TestFingerprintNullVsEmpty verifies the null marker and the empty string
// both render as "" in fingerprints (they are the same missing cell for
// duplicate purposes) while distinct real values stay distinct.
func TestFingerprintNullVsEmpty(t *testing.T) {
	t.Parallel()

	cols := []Column{{Name: "v", Type: TypeString}}
	if Fingerprint(cols, Row{"v": Null()}) != Fingerprint(cols, Row{"v": String("")}) {
		t.Fatal("null and empty string should fingerprint identically")
	}
	if Fingerprint(cols, Row{"v": String("x")}) == Fingerprint(cols, Row{"v": String("y")}) {
		t.Fatal("distinct values collided")
	}
}

// TestAppendRowDuplicateIncrement verifies the duplicate counter moves by
// exactly 1 when an exact duplicate row is appended.
func TestAppendRowDuplicateIncrement(t *testing.T) {
	t.Parallel()

	ds := New("people", "people.csv", twoColumns(), []Row{
		{"name": String("Alice"), "age": Number(30)},
		{"name": String("Bob"), "age": Number(41)},
	})
	before := ds.Summary.DuplicateRows

	if err := ds.AppendRow(Row{"name": String("Alice"), "age": Number(30)}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if got := ds.Summary.DuplicateRows; got != before+1 {
		t.Fatalf("DuplicateRows = %d, want %d", got, before+1)
	}
	if ds.Summary.TotalRows != 3 {
		t.Fatalf("TotalRows = %d, want 3", ds.Summary.TotalRows)
	}
}

// TestEditOperations exercises the structural operations and checks that
// every one of them re-derives the summary.
func TestEditOperations(t *testing.T) {
	t.Parallel()

	ds := New("people", "people.csv", twoColumns(), []Row{
		{"name": String("Alice"), "age": Number(30)},
	})

	if err := ds.AddColumn(Column{Name: "city", Type: TypeString}); err != nil {
		t.Fatalf("AddColumn: %v", err)
	}
	if ds.Summary.TotalColumns != 3 {
		t.Fatalf("TotalColumns = %d, want 3", ds.Summary.TotalColumns)
	}
	if !ds.Rows[0]["city"].IsNull() {
		t.Fatal("new column must backfill null")
	}
	if err := ds.AddColumn(Column{Name: "city"}); err == nil {
		t.Fatal("duplicate AddColumn should fail")
	}

	if err := ds.RenameColumn("city", "location"); err != nil {
		t.Fatalf("RenameColumn: %v", err)
	}
	if _, ok := ds.Rows[0]["location"]; !ok {
		t.Fatal("rename must rewrite row keys")
	}
	if _, ok := ds.Rows[0]["city"]; ok {
		t.Fatal("rename must remove the old row key")
	}
	if err := ds.RenameColumn("missing", "x"); err == nil {
		t.Fatal("renaming a missing column should fail")
	}

	if err := ds.AppendRow(Row{"name": String("Bob")}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if !ds.Rows[1]["age"].IsNull() {
		t.Fatal("absent keys must be filled with null")
	}
	if err := ds.AppendRow(Row{"ghost": String("x")}); err == nil {
		t.Fatal("unknown row key should be rejected")
	}

	if err := ds.UpdateRow(1, Row{"name": String("Bob"), "age": Number(44)}); err != nil {
		t.Fatalf("UpdateRow: %v", err)
	}
	if v, _ := ds.Rows[1]["age"].Num(); v != 44 {
		t.Fatalf("UpdateRow did not apply, age = %v", ds.Rows[1]["age"])
	}

	if err := ds.DeleteColumn("location"); err != nil {
		t.Fatalf("DeleteColumn: %v", err)
	}
	if ds.Summary.TotalColumns != 2 {
		t.Fatalf("TotalColumns = %d, want 2", ds.Summary.TotalColumns)
	}

	if err := ds.DeleteRow(0); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if ds.Summary.TotalRows != 1 {
		t.Fatalf("TotalRows = %d, want 1", ds.Summary.TotalRows)
	}
	if err := ds.DeleteRow(5); err == nil {
		t.Fatal("out-of-range DeleteRow should fail")
	}
}

// TestSelectSheet verifies view switching between sheet snapshots and the
// combined view.
func TestSelectSheet(t *testing.T) {
	t.Parallel()

	colsA := []Column{{Name: "a", Type: TypeString}}
	colsB := []Column{{Name: "b", Type: TypeString}}
	sheetA := Sheet{Name: "A", Columns: colsA, Rows: []Row{{"a": String("1")}}}
	sheetA.Summary = ComputeSummary(sheetA.Columns, sheetA.Rows)
	sheetB := Sheet{Name: "B", Columns: colsB, Rows: []Row{{"b": String("2")}, {"b": String("3")}}}
	sheetB.Summary = ComputeSummary(sheetB.Columns, sheetB.Rows)

	combinedCols := []Column{{Name: "a", Type: TypeString}, {Name: "b", Type: TypeString}}
	combined := Sheet{
		Name:    "combined",
		Columns: combinedCols,
		Rows: []Row{
			{"a": String("1"), "b": String(""), SheetTag: String("A")},
			{"a": String(""), "b": String("2"), SheetTag: String("B")},
			{"a": String(""), "b": String("3"), SheetTag: String("B")},
		},
	}
	combined.Summary = ComputeSummary(combined.Columns, combined.Rows)

	ds := NewMultiSheet("wb", "wb.xlsx", combined, []Sheet{sheetA, sheetB})

	if ds.ActiveSheet != CombinedView || ds.Summary.TotalRows != 3 {
		t.Fatalf("default view = sheet %d with %d rows; want combined with 3", ds.ActiveSheet, ds.Summary.TotalRows)
	}

	if err := ds.SelectSheet(1); err != nil {
		t.Fatalf("SelectSheet(1): %v", err)
	}
	if ds.Summary.TotalRows != 2 || len(ds.Columns) != 1 {
		t.Fatalf("sheet view = %d rows, %d cols; want 2, 1", ds.Summary.TotalRows, len(ds.Columns))
	}

	if err := ds.SelectSheet(CombinedView); err != nil {
		t.Fatalf("SelectSheet(combined): %v", err)
	}
	if ds.Summary.TotalRows != 3 {
		t.Fatalf("combined view rows = %d, want 3", ds.Summary.TotalRows)
	}

	if err := ds.SelectSheet(7); err == nil {
		t.Fatal("out-of-range sheet index should fail")
	}
}

// TestEditsSurviveSheetSwitch verifies structural edits persist in the
// backing snapshot: switching away from the edited view and back must not
// restore the pre-edit state.
func TestEditsSurviveSheetSwitch(t *testing.T) {
	t.Parallel()

	cols := []Column{{Name: "a", Type: TypeString}}
	sheetA := Sheet{Name: "A", Columns: cols, Rows: []Row{{"a": String("1")}}}
	sheetA.Summary = ComputeSummary(sheetA.Columns, sheetA.Rows)
	sheetB := Sheet{Name: "B", Columns: cols, Rows: []Row{{"a": String("2")}, {"a": String("3")}}}
	sheetB.Summary = ComputeSummary(sheetB.Columns, sheetB.Rows)

	combined := Sheet{
		Name:    "combined",
		Columns: cols,
		Rows: []Row{
			{"a": String("1"), SheetTag: String("A")},
			{"a": String("2"), SheetTag: String("B")},
			{"a": String("3"), SheetTag: String("B")},
		},
	}
	combined.Summary = ComputeSummary(combined.Columns, combined.Rows)

	ds := NewMultiSheet("wb", "wb.xlsx", combined, []Sheet{sheetA, sheetB})

	// Edit the combined view, leave, come back.
	if err := ds.AppendRow(Row{"a": String("4")}); err != nil {
		t.Fatalf("AppendRow: %v", err)
	}
	if err := ds.SelectSheet(0); err != nil {
		t.Fatalf("SelectSheet(0): %v", err)
	}
	if err := ds.SelectSheet(CombinedView); err != nil {
		t.Fatalf("SelectSheet(combined): %v", err)
	}
	if ds.Summary.TotalRows != 4 {
		t.Fatalf("combined rows after round trip = %d, want 4", ds.Summary.TotalRows)
	}

	// Edit a sheet snapshot the same way.
	if err := ds.SelectSheet(1); err != nil {
		t.Fatalf("SelectSheet(1): %v", err)
	}
	if err := ds.DeleteRow(0); err != nil {
		t.Fatalf("DeleteRow: %v", err)
	}
	if err := ds.SelectSheet(CombinedView); err != nil {
		t.Fatalf("SelectSheet(combined): %v", err)
	}
	if err := ds.SelectSheet(1); err != nil {
		t.Fatalf("SelectSheet(1) again: %v", err)
	}
	if ds.Summary.TotalRows != 1 {
		t.Fatalf("sheet B rows after round trip = %d, want 1", ds.Summary.TotalRows)
	}
}

// TestValueJSONRoundTrip verifies the tagged union survives the natural
// JSON encoding used by the blob store.
func TestValueJSONRoundTrip(t *testing.T) {
	t.Parallel()

	when := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		in   Value
	}{
		{"null", Null()},
		{"string", String("hello")},
		{"empty string", String("")},
		{"number", Number(12.5)},
		{"date", Date(when)},
		{"bool", Bool(true)},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			b, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("marshal: %v", err)
			}
			var out Value
			if err := json.Unmarshal(b, &out); err != nil {
				t.Fatalf("unmarshal: %v", err)
			}
			if out.Kind() != tt.in.Kind() || out.Display() != tt.in.Display() {
				t.Fatalf("round trip = %v (%q), want %v (%q)", out.Kind(), out.Display(), tt.in.Kind(), tt.in.Display())
			}
		})
	}
}

// TestNumberNeverNaN verifies the Number constructor collapses non-finite
// input to the null marker.
func TestNumberNeverNaN(t *testing.T) {
	t.Parallel()

	nan := Number(0.0 / zero())
	if !nan.IsNull() {
		t.Fatal("NaN must collapse to null")
	}
}

func zero() float64 { return 0 }
