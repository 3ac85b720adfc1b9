package dataset

import "fmt"

// Structural edit operations. Each mutates the active view, re-derives
// the Summary, and writes the view back to its backing snapshot before
// returning, preserving the row/column invariants. The write-back keeps
// sheet switching lossless: selecting another sheet and returning does
// not discard the edit.
//
// Concurrent edits to the same Dataset are not guarded by a lock; the last
// writer to complete a full summary re-derivation wins.

func errIndexOutOfRange(what string, i, n int) error {
	return fmt.Errorf("dataset: %s index %d out of range [0,%d)", what, i, n)
}

// commit re-derives the Summary and stores the active view into the
// snapshot SelectSheet would otherwise restore from.
func (d *Dataset) commit() {
	d.Summary = ComputeSummary(d.Columns, d.Rows)
	switch {
	case d.ActiveSheet == CombinedView:
		if d.Combined != nil {
			d.Combined.Columns = d.Columns
			d.Combined.Rows = d.Rows
			d.Combined.Summary = d.Summary
		}
	case d.ActiveSheet >= 0 && d.ActiveSheet < len(d.Sheets):
		d.Sheets[d.ActiveSheet].Columns = d.Columns
		d.Sheets[d.ActiveSheet].Rows = d.Rows
		d.Sheets[d.ActiveSheet].Summary = d.Summary
	}
}

// AddColumn appends a new column and fills every existing row with the
// null marker. Duplicate names are rejected.
func (d *Dataset) AddColumn(col Column) error {
	if d.ColumnIndex(col.Name) >= 0 {
		return fmt.Errorf("dataset: column %q already exists", col.Name)
	}
	if col.Type == "" {
		col.Type = TypeString
	}
	col.Nullable = true
	d.Columns = append(d.Columns, col)
	for _, r := range d.Rows {
		r[col.Name] = Null()
	}
	d.commit()
	return nil
}

// RenameColumn renames a column and rewrites the key in every row.
func (d *Dataset) RenameColumn(oldName, newName string) error {
	i := d.ColumnIndex(oldName)
	if i < 0 {
		return fmt.Errorf("dataset: no column %q", oldName)
	}
	if newName == oldName {
		return nil
	}
	if d.ColumnIndex(newName) >= 0 {
		return fmt.Errorf("dataset: column %q already exists", newName)
	}
	d.Columns[i].Name = newName
	for _, r := range d.Rows {
		if v, ok := r[oldName]; ok {
			r[newName] = v
			delete(r, oldName)
		}
	}
	d.commit()
	return nil
}

// DeleteColumn removes a column and its values from every row.
func (d *Dataset) DeleteColumn(name string) error {
	i := d.ColumnIndex(name)
	if i < 0 {
		return fmt.Errorf("dataset: no column %q", name)
	}
	d.Columns = append(d.Columns[:i], d.Columns[i+1:]...)
	for _, r := range d.Rows {
		delete(r, name)
	}
	d.commit()
	return nil
}

// AppendRow adds a row. Keys absent from the declared columns are
// rejected; declared columns absent from the row are filled with the null
// marker so the row invariant holds.
func (d *Dataset) AppendRow(r Row) error {
	normalized, err := d.normalizeRow(r)
	if err != nil {
		return err
	}
	d.Rows = append(d.Rows, normalized)
	d.commit()
	return nil
}

// UpdateRow replaces the i-th row.
func (d *Dataset) UpdateRow(i int, r Row) error {
	if i < 0 || i >= len(d.Rows) {
		return errIndexOutOfRange("row", i, len(d.Rows))
	}
	normalized, err := d.normalizeRow(r)
	if err != nil {
		return err
	}
	d.Rows[i] = normalized
	d.commit()
	return nil
}

// DeleteRow removes the i-th row.
func (d *Dataset) DeleteRow(i int) error {
	if i < 0 || i >= len(d.Rows) {
		return errIndexOutOfRange("row", i, len(d.Rows))
	}
	d.Rows = append(d.Rows[:i], d.Rows[i+1:]...)
	d.commit()
	return nil
}

func (d *Dataset) normalizeRow(r Row) (Row, error) {
	for k := range r {
		if k == SheetTag {
			continue
		}
		if d.ColumnIndex(k) < 0 {
			return nil, fmt.Errorf("dataset: row key %q is not a declared column", k)
		}
	}
	out := make(Row, len(d.Columns)+1)
	for _, c := range d.Columns {
		v, ok := r[c.Name]
		if !ok {
			v = Null()
		}
		out[c.Name] = v
	}
	if tag, ok := r[SheetTag]; ok {
		out[SheetTag] = tag
	}
	return out, nil
}
