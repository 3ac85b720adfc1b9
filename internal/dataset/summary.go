package dataset

import (
	"crypto/sha256"
	"encoding/hex"
	"sort"
)

// ComputeSummary derives the structural summary for a grid. A cell counts
// as missing when it is the null marker or an empty string; the hidden
// origin-sheet tag is ignored.
func ComputeSummary(cols []Column, rows []Row) Summary {
	s := Summary{
		TotalRows:    len(rows),
		TotalColumns: len(cols),
	}

	for _, c := range cols {
		switch c.Type {
		case TypeNumber:
			s.NumberColumns++
		case TypeDate:
			s.DateColumns++
		case TypeBoolean:
			s.BooleanColumns++
		default:
			s.StringColumns++
		}
	}

	for _, r := range rows {
		for _, c := range cols {
			if CellMissing(r[c.Name]) {
				s.MissingValues++
			}
		}
	}

	s.DuplicateRows = CountDuplicates(cols, rows)
	return s
}

// CellMissing reports whether a cell carries no usable value.
func CellMissing(v Value) bool {
	if v.IsNull() {
		return true
	}
	if s, ok := v.Str(); ok && s == "" {
		return true
	}
	return false
}

// Fingerprint returns a deterministic identity for a row's full value
// sequence. Keys are canonicalized by sorting column names before hashing,
// so map iteration order and row construction order never influence the
// result. The origin-sheet tag is excluded: identical rows from different
// sheets are still duplicates of each other in the combined view.
func Fingerprint(cols []Column, r Row) string {
	names := make([]string, len(cols))
	for i, c := range cols {
		names[i] = c.Name
	}
	sort.Strings(names)

	h := sha256.New()
	for _, name := range names {
		h.Write([]byte(name))
		h.Write([]byte{0x1f})
		h.Write([]byte(r[name].Display()))
		h.Write([]byte{0x1e})
	}
	return hex.EncodeToString(h.Sum(nil))
}

// CountDuplicates counts rows whose canonical value sequence repeats an
// earlier row's. Appending an exact duplicate of an existing row increases
// the result by exactly 1.
func CountDuplicates(cols []Column, rows []Row) int {
	if len(rows) < 2 {
		return 0
	}
	seen := make(map[string]struct{}, len(rows))
	dups := 0
	for _, r := range rows {
		fp := Fingerprint(cols, r)
		if _, ok := seen[fp]; ok {
			dups++
			continue
		}
		seen[fp] = struct{}{}
	}
	return dups
}
