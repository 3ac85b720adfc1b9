// Package dataset defines the structured result of ingesting one tabular
// file: typed columns, typed rows, per-sheet snapshots, and the derived
// summary, together with the structural edit operations that keep the
// summary consistent.
//
// Invariants maintained by this package:
//   - Every row contains exactly the keys declared in Columns, plus an
//     optional hidden origin-sheet tag (SheetTag).
//   - len(Rows) == Summary.TotalRows after every structural operation.
package dataset

import "github.com/google/uuid"

// Type is the inferred column type.
type Type string

const (
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeDate    Type = "date"
	TypeBoolean Type = "boolean"
)

// SheetTag is the hidden row key carrying the origin sheet name for rows
// re-projected from a multi-sheet source. It is not a declared column and
// is excluded from summaries, quality scoring, and fingerprints.
const SheetTag = "_sheet"

// MaxColumnExamples caps the example values retained per column.
const MaxColumnExamples = 5

// Column is one declared column of a Dataset.
type Column struct {
	Name     string   `json:"name"`
	Type     Type     `json:"type"`
	Nullable bool     `json:"nullable"`
	Unique   bool     `json:"unique"`
	Examples []string `json:"examples,omitempty"`
}

// Row maps column name to a typed cell value.
type Row map[string]Value

// Summary holds the derived structural counts for a row/column grid.
type Summary struct {
	TotalRows      int `json:"total_rows"`
	TotalColumns   int `json:"total_columns"`
	StringColumns  int `json:"string_columns"`
	NumberColumns  int `json:"number_columns"`
	DateColumns    int `json:"date_columns"`
	BooleanColumns int `json:"boolean_columns"`
	MissingValues  int `json:"missing_values"`
	DuplicateRows  int `json:"duplicate_rows"`
}

// Sheet is one self-contained tabular fragment of a multi-sheet source,
// confined to its own column set, prior to unification.
type Sheet struct {
	Name    string   `json:"name"`
	Columns []Column `json:"columns"`
	Rows    []Row    `json:"rows"`
	Summary Summary  `json:"summary"`
}

// Dataset is the typed result of ingesting one uploaded file.
//
// For multi-sheet sources, Columns/Rows/Summary hold the currently active
// view: the unified combined view by default (ActiveSheet == CombinedView),
// or one sheet's snapshot after SelectSheet. Sheets retains the per-sheet
// snapshots, and Combined the unified view, so switching is lossless.
type Dataset struct {
	ID         string   `json:"id"`
	Name       string   `json:"name"`
	SourceFile string   `json:"source_file"`
	Columns    []Column `json:"columns"`
	Rows       []Row    `json:"rows"`
	Summary    Summary  `json:"summary"`

	Sheets      []Sheet `json:"sheets,omitempty"`
	Combined    *Sheet  `json:"combined,omitempty"`
	ActiveSheet int     `json:"active_sheet"`
}

// CombinedView is the ActiveSheet index denoting the unified view.
const CombinedView = -1

// New constructs a single-sheet Dataset with a fresh identifier and a
// derived summary.
func New(name, sourceFile string, cols []Column, rows []Row) *Dataset {
	return &Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		SourceFile:  sourceFile,
		Columns:     cols,
		Rows:        rows,
		Summary:     ComputeSummary(cols, rows),
		ActiveSheet: CombinedView,
	}
}

// NewMultiSheet constructs a Dataset whose default view is the unified
// combined grid, retaining per-sheet snapshots for later switching.
func NewMultiSheet(name, sourceFile string, combined Sheet, sheets []Sheet) *Dataset {
	ds := &Dataset{
		ID:          uuid.NewString(),
		Name:        name,
		SourceFile:  sourceFile,
		Columns:     combined.Columns,
		Rows:        combined.Rows,
		Summary:     combined.Summary,
		Sheets:      sheets,
		Combined:    &combined,
		ActiveSheet: CombinedView,
	}
	return ds
}

// SelectSheet switches the active view to the i-th sheet snapshot, or back
// to the combined view when i == CombinedView. Out-of-range indexes are
// rejected.
func (d *Dataset) SelectSheet(i int) error {
	switch {
	case i == CombinedView:
		if d.Combined != nil {
			d.Columns = d.Combined.Columns
			d.Rows = d.Combined.Rows
			d.Summary = d.Combined.Summary
		}
	case i >= 0 && i < len(d.Sheets):
		sh := d.Sheets[i]
		d.Columns = sh.Columns
		d.Rows = sh.Rows
		d.Summary = sh.Summary
	default:
		return errIndexOutOfRange("sheet", i, len(d.Sheets))
	}
	d.ActiveSheet = i
	return nil
}

// ColumnNames returns the declared column names in order.
func (d *Dataset) ColumnNames() []string {
	out := make([]string, len(d.Columns))
	for i, c := range d.Columns {
		out[i] = c.Name
	}
	return out
}

// ColumnIndex returns the position of the named column, or -1.
func (d *Dataset) ColumnIndex(name string) int {
	for i, c := range d.Columns {
		if c.Name == name {
			return i
		}
	}
	return -1
}
