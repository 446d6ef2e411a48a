// Package table holds the format-agnostic tabular data that generation
// produces and validation consumes.
package table

import "fmt"

// Row is one record aligned with Table.Columns. A nil cell is null.
type Row []any

// Table is an ordered set of columns and rows. Cells hold nil, int64,
// float64 or string values.
type Table struct {
	Columns []string
	Rows    []Row
}

// New returns an empty table with the given columns.
func New(columns ...string) *Table {
	return &Table{Columns: append([]string(nil), columns...)}
}

// Append adds a row. It fails when the row width does not match the columns.
func (t *Table) Append(row Row) error {
	if len(row) != len(t.Columns) {
		return fmt.Errorf("row has %d cells, table has %d columns", len(row), len(t.Columns))
	}
	t.Rows = append(t.Rows, row)
	return nil
}

// Len is the number of rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// ColumnIndex returns the position of a column, or -1.
func (t *Table) ColumnIndex(name string) int {
	for i, c := range t.Columns {
		if c == name {
			return i
		}
	}
	return -1
}

// Column returns every cell of the named column in row order.
func (t *Table) Column(name string) ([]any, bool) {
	i := t.ColumnIndex(name)
	if i < 0 {
		return nil, false
	}
	out := make([]any, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			out[r] = row[i]
		}
	}
	return out, true
}

// Cell returns the value at row r in the named column. Missing cells are nil.
func (t *Table) Cell(r int, column string) any {
	i := t.ColumnIndex(column)
	if i < 0 || r < 0 || r >= len(t.Rows) || i >= len(t.Rows[r]) {
		return nil
	}
	return t.Rows[r][i]
}

// Record returns row r as a column name to value map.
func (t *Table) Record(r int) map[string]any {
	rec := make(map[string]any, len(t.Columns))
	for i, c := range t.Columns {
		if i < len(t.Rows[r]) {
			rec[c] = t.Rows[r][i]
		} else {
			rec[c] = nil
		}
	}
	return rec
}

// FromRecords builds a table from name to value maps, taking the column
// order from columns.
func FromRecords(columns []string, records []map[string]any) *Table {
	t := New(columns...)
	for _, rec := range records {
		row := make(Row, len(columns))
		for i, c := range columns {
			row[i] = rec[c]
		}
		t.Rows = append(t.Rows, row)
	}
	return t
}
