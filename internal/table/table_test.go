package table

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleTable(t *testing.T) *Table {
	t.Helper()
	tbl, err := New(
		NewText("Loan_ID", []string{"LP001", "LP002", "LP003"}, nil),
		NewText("Gender", []string{"Male", "", "Female"}, []bool{false, true, false}),
		NewNumeric("LoanAmount", []float64{150, math.NaN(), 120.5}),
	)
	require.NoError(t, err)
	return tbl
}

func TestNew(t *testing.T) {
	tests := []struct {
		name    string
		columns []*Column
		wantErr string
	}{
		{
			name:    "empty table",
			columns: nil,
		},
		{
			name: "equal lengths",
			columns: []*Column{
				NewNumeric("a", []float64{1, 2}),
				NewText("b", []string{"x", "y"}, nil),
			},
		},
		{
			name: "length mismatch",
			columns: []*Column{
				NewNumeric("a", []float64{1, 2}),
				NewNumeric("b", []float64{1}),
			},
			wantErr: `column "b" has 1 rows, expected 2`,
		},
		{
			name: "duplicate names",
			columns: []*Column{
				NewNumeric("a", []float64{1}),
				NewNumeric("a", []float64{2}),
			},
			wantErr: `duplicate column name "a"`,
		},
		{
			name:    "nil column",
			columns: []*Column{nil},
			wantErr: "column 0 is nil",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl, err := New(tt.columns...)
			if tt.wantErr != "" {
				require.Error(t, err)
				assert.Contains(t, err.Error(), tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, len(tt.columns), tbl.NumCols())
		})
	}
}

func TestTable_Drop(t *testing.T) {
	tbl := sampleTable(t)

	dropped := tbl.Drop("Loan_ID")
	assert.Equal(t, []string{"Gender", "LoanAmount"}, dropped.Names())
	assert.Equal(t, 3, dropped.NumRows())
	// receiver untouched
	assert.Equal(t, []string{"Loan_ID", "Gender", "LoanAmount"}, tbl.Names())

	same := dropped.Drop("Loan_ID")
	assert.Same(t, dropped, same)
}

func TestTable_With(t *testing.T) {
	tbl := sampleTable(t)

	replaced := tbl.With(NewNumeric("LoanAmount", []float64{1, 2, 3}))
	col, ok := replaced.Column("LoanAmount")
	require.True(t, ok)
	assert.Equal(t, []float64{1, 2, 3}, col.Floats())
	assert.Equal(t, 2, replaced.Index("LoanAmount"))

	orig, _ := tbl.Column("LoanAmount")
	assert.True(t, orig.IsNull(1))

	appended := tbl.With(NewNumeric("Extra", []float64{0, 0, 0}))
	assert.Equal(t, []string{"Loan_ID", "Gender", "LoanAmount", "Extra"}, appended.Names())

	assert.Panics(t, func() { tbl.With(NewNumeric("Short", []float64{1})) })
}

func TestTable_Replace(t *testing.T) {
	tbl := sampleTable(t)

	out := tbl.Replace("Gender",
		NewNumeric("Gender_Male", []float64{1, 0, 0}),
		NewNumeric("Gender_Other", []float64{0, 0, 0}),
	)
	assert.Equal(t, []string{"Loan_ID", "Gender_Male", "Gender_Other", "LoanAmount"}, out.Names())
	assert.Same(t, tbl, tbl.Replace("Missing"))
}

func TestTable_Records(t *testing.T) {
	tbl := sampleTable(t)

	assert.Equal(t, [][]string{
		{"LP001", "Male", "150"},
		{"LP002", "", ""},
		{"LP003", "Female", "120.5"},
	}, tbl.Records())
}

func TestColumn_CopiesInput(t *testing.T) {
	values := []float64{1, 2}
	col := NewNumeric("a", values)
	values[0] = 99
	assert.Equal(t, 1.0, col.Float(0))

	texts := []string{"x"}
	tc := NewText("b", texts, nil)
	texts[0] = "changed"
	assert.Equal(t, "x", tc.Text(0))
}

func TestColumn_Nulls(t *testing.T) {
	num := NewNumeric("n", []float64{1, math.NaN(), math.NaN()})
	assert.Equal(t, 2, num.NullCount())
	assert.Equal(t, "", num.Cell(1))

	txt := NewText("t", []string{"a", "ignored"}, []bool{false, true})
	assert.Equal(t, 1, txt.NullCount())
	assert.True(t, txt.IsNull(1))
	assert.Equal(t, "", txt.Text(1))

	assert.Panics(t, func() { txt.Float(0) })
	assert.Panics(t, func() { num.Text(0) })
}

func TestFormatFloat(t *testing.T) {
	assert.Equal(t, "1", FormatFloat(1))
	assert.Equal(t, "-0.25", FormatFloat(-0.25))
	assert.Equal(t, "5000", FormatFloat(5000))
	assert.Equal(t, "", FormatFloat(math.NaN()))
}

func TestKind_String(t *testing.T) {
	assert.Equal(t, "numeric", Numeric.String())
	assert.Equal(t, "text", Text.String())
	assert.Equal(t, "unknown", Kind(7).String())
}
