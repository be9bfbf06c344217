// Package table provides the immutable in-memory table that flows through
// the cleaning pipeline.
//
// A Table is an ordered list of equally long Columns. Every operation that
// changes the shape or content of a table returns a new Table and leaves the
// receiver untouched; columns themselves are never mutated after construction,
// so tables may share them freely.
//
//	t, err := table.New(
//	    table.NewText("Gender", []string{"Male", "Female"}, nil),
//	    table.NewNumeric("LoanAmount", []float64{150, math.NaN()}),
//	)
//	pruned := t.Drop("Loan_ID") // returns t when the column is absent
package table

import (
	"fmt"
)

// Table is an ordered collection of named columns of equal length
type Table struct {
	columns []*Column
	rows    int
}

// New builds a table from columns. All columns must have the same length
// and distinct names.
func New(columns ...*Column) (*Table, error) {
	t := &Table{columns: make([]*Column, 0, len(columns))}
	seen := make(map[string]struct{}, len(columns))
	for i, col := range columns {
		if col == nil {
			return nil, fmt.Errorf("column %d is nil", i)
		}
		if _, dup := seen[col.Name()]; dup {
			return nil, fmt.Errorf("duplicate column name %q", col.Name())
		}
		seen[col.Name()] = struct{}{}
		if i == 0 {
			t.rows = col.Len()
		} else if col.Len() != t.rows {
			return nil, fmt.Errorf("column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows)
		}
		t.columns = append(t.columns, col)
	}
	return t, nil
}

// NumRows returns the number of rows
func (t *Table) NumRows() int { return t.rows }

// NumCols returns the number of columns
func (t *Table) NumCols() int { return len(t.columns) }

// Names returns the column names in order
func (t *Table) Names() []string {
	names := make([]string, len(t.columns))
	for i, col := range t.columns {
		names[i] = col.Name()
	}
	return names
}

// Index returns the position of the named column or -1
func (t *Table) Index(name string) int {
	for i, col := range t.columns {
		if col.Name() == name {
			return i
		}
	}
	return -1
}

// Has reports whether the named column exists
func (t *Table) Has(name string) bool { return t.Index(name) >= 0 }

// Column returns the named column
func (t *Table) Column(name string) (*Column, bool) {
	i := t.Index(name)
	if i < 0 {
		return nil, false
	}
	return t.columns[i], true
}

// Columns returns the columns in order. The slice is a copy.
func (t *Table) Columns() []*Column {
	out := make([]*Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// Drop returns a table without the named column, or t itself when the
// column does not exist.
func (t *Table) Drop(name string) *Table {
	i := t.Index(name)
	if i < 0 {
		return t
	}
	cols := make([]*Column, 0, len(t.columns)-1)
	cols = append(cols, t.columns[:i]...)
	cols = append(cols, t.columns[i+1:]...)
	return &Table{columns: cols, rows: t.rows}
}

// With returns a table where col replaces the column of the same name, or is
// appended when no such column exists. It panics if col has the wrong length.
func (t *Table) With(col *Column) *Table {
	t.mustFit(col)
	cols := t.Columns()
	if i := t.Index(col.Name()); i >= 0 {
		cols[i] = col
	} else {
		cols = append(cols, col)
	}
	rows := t.rows
	if len(t.columns) == 0 {
		rows = col.Len()
	}
	return &Table{columns: cols, rows: rows}
}

// Replace returns a table where the named column is swapped for the given
// columns at the same position. Missing names leave t unchanged.
func (t *Table) Replace(name string, with ...*Column) *Table {
	i := t.Index(name)
	if i < 0 {
		return t
	}
	for _, col := range with {
		t.mustFit(col)
	}
	cols := make([]*Column, 0, len(t.columns)-1+len(with))
	cols = append(cols, t.columns[:i]...)
	cols = append(cols, with...)
	cols = append(cols, t.columns[i+1:]...)
	return &Table{columns: cols, rows: t.rows}
}

// Row returns the formatted cells of row i in column order
func (t *Table) Row(i int) []string {
	row := make([]string, len(t.columns))
	for j, col := range t.columns {
		row[j] = col.Cell(i)
	}
	return row
}

// Records returns every row formatted for CSV output
func (t *Table) Records() [][]string {
	records := make([][]string, t.rows)
	for i := range records {
		records[i] = t.Row(i)
	}
	return records
}

func (t *Table) mustFit(col *Column) {
	if len(t.columns) > 0 && col.Len() != t.rows {
		panic(fmt.Sprintf("table: column %q has %d rows, expected %d", col.Name(), col.Len(), t.rows))
	}
}
