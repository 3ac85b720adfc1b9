// Package clean coerces raw cell strings to their column's declared type.
//
// Cleaning is pure and total: it never fails for any input value. Anything
// that does not parse as the declared type becomes the null marker, never
// NaN, an invalid time, or a silently wrong value.
package clean

import (
	"strings"

	"ingest/internal/dataset"
	"ingest/internal/infer"
)

// Cell coerces one raw cell to the declared type.
//
//   - number: unparsable or empty input becomes null; results are always
//     finite (the Number constructor rejects NaN/Inf).
//   - date: unparsable or empty input becomes null.
//   - boolean: recognizes the same literal set as inference; anything else
//     becomes null.
//   - string: trimmed; empty input stays the empty string (not null), so
//     the null-vs-empty distinction is preserved for typed columns only.
func Cell(raw string, t dataset.Type) dataset.Value {
	raw = strings.TrimSpace(raw)

	switch t {
	case dataset.TypeNumber:
		if raw == "" {
			return dataset.Null()
		}
		f, ok := infer.ParseNumber(raw)
		if !ok {
			return dataset.Null()
		}
		return dataset.Number(f)

	case dataset.TypeDate:
		if raw == "" {
			return dataset.Null()
		}
		ts, ok := infer.ParseDate(raw)
		if !ok {
			return dataset.Null()
		}
		return dataset.Date(ts)

	case dataset.TypeBoolean:
		if raw == "" {
			return dataset.Null()
		}
		b, ok := infer.ParseBool(raw)
		if !ok {
			return dataset.Null()
		}
		return dataset.Bool(b)

	default:
		return dataset.String(raw)
	}
}

// Rows cleans a raw grid against the declared columns. The hidden
// origin-sheet tag, when present, passes through unchanged as a string.
func Rows(raw []map[string]string, cols []dataset.Column) []dataset.Row {
	out := make([]dataset.Row, 0, len(raw))
	for _, r := range raw {
		row := make(dataset.Row, len(cols)+1)
		for _, c := range cols {
			row[c.Name] = Cell(r[c.Name], c.Type)
		}
		if tag, ok := r[dataset.SheetTag]; ok {
			row[dataset.SheetTag] = dataset.String(tag)
		}
		out = append(out, row)
	}
	return out
}
