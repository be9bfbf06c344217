package dataprocessing

import (
	"math"

	"loanprep/internal/table"
)

// ColumnFill describes how one column was imputed
type ColumnFill struct {
	Column string `json:"column"`
	Kind   string `json:"kind"`
	Filled int    `json:"filled"`
	Value  string `json:"value"`
}

// ImputeReport lists the columns that had missing values. Columns with no
// present value at all are reported in Unfillable and left untouched.
type ImputeReport struct {
	Fills      []ColumnFill `json:"fills"`
	Unfillable []string     `json:"unfillable,omitempty"`
}

// TotalFilled returns the number of cells filled across all columns
func (r *ImputeReport) TotalFilled() int {
	total := 0
	for _, f := range r.Fills {
		total += f.Filled
	}
	return total
}

// ImputeMissing fills missing values in every column: text columns take
// their mode and numeric columns their median.
func ImputeMissing(t *table.Table) (*table.Table, *ImputeReport) {
	report := &ImputeReport{}
	out := t

	for _, col := range t.Columns() {
		missing := col.NullCount()
		if missing == 0 {
			continue
		}

		var filled *table.Column
		var value string
		switch col.Kind() {
		case table.Numeric:
			values := col.Floats()
			median := Median(values)
			if math.IsNaN(median) {
				report.Unfillable = append(report.Unfillable, col.Name())
				continue
			}
			for i, v := range values {
				if math.IsNaN(v) {
					values[i] = median
				}
			}
			filled = table.NewNumeric(col.Name(), values)
			value = table.FormatFloat(median)
		default:
			values, nulls := col.Texts()
			mode, ok := Mode(values, nulls)
			if !ok {
				report.Unfillable = append(report.Unfillable, col.Name())
				continue
			}
			for i := range values {
				if nulls[i] {
					values[i] = mode
				}
			}
			filled = table.NewText(col.Name(), values, nil)
			value = mode
		}

		out = out.With(filled)
		report.Fills = append(report.Fills, ColumnFill{
			Column: col.Name(),
			Kind:   col.Kind().String(),
			Filled: missing,
			Value:  value,
		})
	}

	return out, report
}
