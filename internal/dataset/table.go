package dataset

import (
	"fmt"
	"strings"
)

// Table is a raw tabular dataset with unknown column semantics.
// Rows are normalized by the readers so every row has len(Columns) cells.
type Table struct {
	Name    string
	Columns []string
	Rows    [][]string
}

// New creates a table, padding or truncating rows to the header width.
func New(name string, columns []string, rows [][]string) *Table {
	t := &Table{
		Name:    name,
		Columns: append([]string(nil), columns...),
		Rows:    make([][]string, 0, len(rows)),
	}
	for _, row := range rows {
		t.Rows = append(t.Rows, normalizeRow(row, len(columns)))
	}
	return t
}

// Len returns the number of data rows.
func (t *Table) Len() int {
	return len(t.Rows)
}

// Width returns the number of columns.
func (t *Table) Width() int {
	return len(t.Columns)
}

// Index returns the position of a column by exact name, or -1.
func (t *Table) Index(column string) int {
	for i, c := range t.Columns {
		if c == column {
			return i
		}
	}
	return -1
}

// Column returns the values of the column at index i in row order.
func (t *Table) Column(i int) []string {
	values := make([]string, len(t.Rows))
	for r, row := range t.Rows {
		if i < len(row) {
			values[r] = row[i]
		}
	}
	return values
}

// Cell returns the value at (row, col), or "" when out of range.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Validate checks the header for empty and duplicate column names.
// Duplicate names would make the schema map ambiguous.
func (t *Table) Validate() error {
	if len(t.Columns) == 0 {
		return fmt.Errorf("table %q has no columns", t.Name)
	}
	seen := make(map[string]int, len(t.Columns))
	for i, c := range t.Columns {
		if strings.TrimSpace(c) == "" {
			return fmt.Errorf("table %q: column %d has an empty header", t.Name, i+1)
		}
		if j, ok := seen[c]; ok {
			return fmt.Errorf("table %q: duplicate column %q at positions %d and %d", t.Name, c, j+1, i+1)
		}
		seen[c] = i
	}
	return nil
}

func normalizeRow(row []string, width int) []string {
	out := make([]string, width)
	copy(out, row)
	return out
}

func isBlankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
