// Package unify computes the union schema across the sheets of a
// multi-sheet source and re-projects every sheet's rows onto it.
//
// The union column order is first appearance scanning sheets in source
// order; columns a sheet does not declare are filled with the empty
// string; every re-projected row carries a hidden origin-sheet tag so the
// combined view can be filtered or split again later.
package unify

import (
	"ingest/internal/dataset"
	"ingest/internal/parser"
)

// Union is the combined raw view of a multi-sheet source.
type Union struct {
	// Columns is the ordered union of all sheet column names.
	Columns []string
	// Rows holds every sheet's rows re-projected onto Columns, keyed by
	// column name, with dataset.SheetTag set to the origin sheet name.
	Rows []map[string]string
}

// Sheets re-projects the given raw sheets onto their union schema.
// Single-sheet sources should not be passed here; unification is skipped
// entirely for them.
func Sheets(sheets []parser.RawSheet) Union {
	var u Union

	seen := make(map[string]struct{})
	for _, sh := range sheets {
		for _, name := range sh.Header {
			if name == "" {
				continue
			}
			if _, ok := seen[name]; ok {
				continue
			}
			seen[name] = struct{}{}
			u.Columns = append(u.Columns, name)
		}
	}

	for _, sh := range sheets {
		for _, rec := range sh.Rows {
			row := make(map[string]string, len(u.Columns)+1)
			for _, name := range u.Columns {
				row[name] = ""
			}
			for i, name := range sh.Header {
				if name == "" || i >= len(rec) {
					continue
				}
				row[name] = rec[i]
			}
			row[dataset.SheetTag] = sh.Name
			u.Rows = append(u.Rows, row)
		}
	}

	return u
}

// SheetRows converts one sheet's grid to name-keyed rows confined to that
// sheet's own narrower column set (no tag, no union fill). Used for the
// per-sheet snapshots kept alongside the combined view.
func SheetRows(sh parser.RawSheet) []map[string]string {
	out := make([]map[string]string, 0, len(sh.Rows))
	for _, rec := range sh.Rows {
		row := make(map[string]string, len(sh.Header))
		for i, name := range sh.Header {
			if name == "" || i >= len(rec) {
				continue
			}
			row[name] = rec[i]
		}
		out = append(out, row)
	}
	return out
}
