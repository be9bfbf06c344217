package dataprocessing

import (
	"math"

	"loanprep/internal/table"
)

// ScaleStats are the parameters a column was standardized with
type ScaleStats struct {
	Column string  `json:"column"`
	Mean   float64 `json:"mean"`
	Std    float64 `json:"std"`
}

// Constant reports whether the column had zero spread, which turns every
// scaled value into NaN.
func (s ScaleStats) Constant() bool {
	return s.Std == 0 || math.IsNaN(s.Std)
}

// StandardScale standardizes each listed numeric column to
// (v - mean) / std using the population standard deviation of the column.
// Absent and text columns are skipped. A zero standard deviation is not
// special-cased and yields NaN.
func StandardScale(t *table.Table, columns []string) (*table.Table, []ScaleStats) {
	out := t
	var stats []ScaleStats

	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok || col.Kind() != table.Numeric {
			continue
		}

		values := col.Floats()
		mean, std := MeanStdDev(values)
		for i, v := range values {
			values[i] = (v - mean) / std
		}

		out = out.With(table.NewNumeric(name, values))
		stats = append(stats, ScaleStats{Column: name, Mean: mean, Std: std})
	}

	return out, stats
}
