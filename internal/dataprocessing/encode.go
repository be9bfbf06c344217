package dataprocessing

import (
	"fmt"
	"math"
	"sort"

	"loanprep/internal/table"
)

// Encoding policies
const (
	PolicyOrdinal = "ordinal"
	PolicyOneHot  = "onehot"
)

// ColumnEncoding records the categories fitted for one column, in code
// order. For one-hot the first category is the dropped reference.
type ColumnEncoding struct {
	Column     string   `json:"column"`
	Categories []string `json:"categories"`
	Indicators []string `json:"indicators,omitempty"`
}

// Encoding is the categorical encoding applied during one run
type Encoding struct {
	Policy  string           `json:"policy"`
	Columns []ColumnEncoding `json:"columns"`
}

// Lookup returns the fitted encoding of a column
func (e *Encoding) Lookup(column string) (ColumnEncoding, bool) {
	for _, c := range e.Columns {
		if c.Column == column {
			return c, true
		}
	}
	return ColumnEncoding{}, false
}

// DropColumn removes the named column. Absent columns leave t unchanged.
func DropColumn(t *table.Table, name string) *table.Table {
	return t.Drop(name)
}

// EncodeTarget maps the labels of a text column through mapping. Any other
// label, and any missing cell, becomes NaN for ValidateTarget to catch.
// A numeric column is mapped through the formatted value of each cell.
func EncodeTarget(t *table.Table, column string, mapping map[string]float64) *table.Table {
	col, ok := t.Column(column)
	if !ok {
		return t
	}

	out := make([]float64, col.Len())
	for i := range out {
		out[i] = math.NaN()
		if col.IsNull(i) {
			continue
		}
		if v, found := mapping[col.Cell(i)]; found {
			out[i] = v
		}
	}
	return t.With(table.NewNumeric(column, out))
}

// categories returns the distinct present values of a column in sorted
// order: numeric order for numeric columns, lexical order for text.
func categories(col *table.Column) []string {
	if col.Kind() == table.Numeric {
		seen := make(map[float64]struct{})
		var nums []float64
		for _, v := range col.Floats() {
			if math.IsNaN(v) {
				continue
			}
			if _, dup := seen[v]; !dup {
				seen[v] = struct{}{}
				nums = append(nums, v)
			}
		}
		sort.Float64s(nums)
		cats := make([]string, len(nums))
		for i, v := range nums {
			cats[i] = table.FormatFloat(v)
		}
		return cats
	}

	seen := make(map[string]struct{})
	var cats []string
	values, nulls := col.Texts()
	for i, v := range values {
		if nulls[i] {
			continue
		}
		if _, dup := seen[v]; !dup {
			seen[v] = struct{}{}
			cats = append(cats, v)
		}
	}
	sort.Strings(cats)
	return cats
}

// EncodeOrdinal replaces each listed column with the index of its value in
// the column's sorted distinct values, giving codes 0..k-1. Missing cells
// stay missing and absent columns are skipped.
func EncodeOrdinal(t *table.Table, columns []string) (*table.Table, *Encoding) {
	enc := &Encoding{Policy: PolicyOrdinal}
	out := t

	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		cats := categories(col)
		codes := make(map[string]float64, len(cats))
		for i, c := range cats {
			codes[c] = float64(i)
		}

		values := make([]float64, col.Len())
		for i := range values {
			if col.IsNull(i) {
				values[i] = math.NaN()
				continue
			}
			values[i] = codes[col.Cell(i)]
		}

		out = out.With(table.NewNumeric(name, values))
		enc.Columns = append(enc.Columns, ColumnEncoding{Column: name, Categories: cats})
	}

	return out, enc
}

// EncodeOneHot replaces each listed column with k-1 numeric 0/1 indicator
// columns named <column>_<category>, placed where the column was. The first
// sorted category is the reference and is represented by all zeros, as is a
// missing cell. An indicator name that collides with another column is an
// error.
func EncodeOneHot(t *table.Table, columns []string) (*table.Table, *Encoding, error) {
	enc := &Encoding{Policy: PolicyOneHot}
	out := t

	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok {
			continue
		}
		cats := categories(col)
		ce := ColumnEncoding{Column: name, Categories: cats}

		var indicators []*table.Column
		if len(cats) > 1 {
			for _, cat := range cats[1:] {
				indicator := fmt.Sprintf("%s_%s", name, cat)
				if out.Has(indicator) {
					return nil, nil, fmt.Errorf("one-hot column %q for %q already exists", indicator, name)
				}
				values := make([]float64, col.Len())
				for i := range values {
					if !col.IsNull(i) && col.Cell(i) == cat {
						values[i] = 1
					}
				}
				indicators = append(indicators, table.NewNumeric(indicator, values))
				ce.Indicators = append(ce.Indicators, indicator)
			}
		}

		out = out.Replace(name, indicators...)
		enc.Columns = append(enc.Columns, ce)
	}

	return out, enc, nil
}
