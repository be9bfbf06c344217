package dataprocessing

import (
	"math"

	"loanprep/internal/table"
)

// DefaultIQRFactor is the fence multiplier of the classic Tukey rule
const DefaultIQRFactor = 1.5

// Fence is the closed interval a clipped column was limited to
type Fence struct {
	Column  string  `json:"column"`
	Q1      float64 `json:"q1"`
	Q3      float64 `json:"q3"`
	Lower   float64 `json:"lower"`
	Upper   float64 `json:"upper"`
	Clipped int     `json:"clipped"`
}

// ClipOutliersIQR clips each listed numeric column to
// [Q1 - 1.5*IQR, Q3 + 1.5*IQR]. Absent and text columns are skipped.
func ClipOutliersIQR(t *table.Table, columns []string) (*table.Table, []Fence) {
	return ClipOutliers(t, columns, DefaultIQRFactor)
}

// ClipOutliers is ClipOutliersIQR with a configurable fence factor
func ClipOutliers(t *table.Table, columns []string, factor float64) (*table.Table, []Fence) {
	out := t
	var fences []Fence

	for _, name := range columns {
		col, ok := t.Column(name)
		if !ok || col.Kind() != table.Numeric {
			continue
		}

		values := col.Floats()
		q1 := Quantile(values, 0.25)
		q3 := Quantile(values, 0.75)
		if math.IsNaN(q1) {
			continue
		}
		iqr := q3 - q1
		fence := Fence{
			Column: name,
			Q1:     q1,
			Q3:     q3,
			Lower:  q1 - factor*iqr,
			Upper:  q3 + factor*iqr,
		}

		for i, v := range values {
			switch {
			case math.IsNaN(v):
			case v < fence.Lower:
				values[i] = fence.Lower
				fence.Clipped++
			case v > fence.Upper:
				values[i] = fence.Upper
				fence.Clipped++
			}
		}

		out = out.With(table.NewNumeric(name, values))
		fences = append(fences, fence)
	}

	return out, fences
}
