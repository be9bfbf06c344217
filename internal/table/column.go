package table

import (
	"math"
	"strconv"
)

// Kind identifies how a column stores its values
type Kind int

const (
	// Numeric columns hold float64 values, missing values are NaN
	Numeric Kind = iota
	// Text columns hold strings with a separate null mask
	Text
)

// String returns the kind name used in logs and manifests
func (k Kind) String() string {
	switch k {
	case Numeric:
		return "numeric"
	case Text:
		return "text"
	default:
		return "unknown"
	}
}

// Column is an immutable named sequence of values of one Kind.
// Constructors copy their inputs, so callers may reuse their slices.
type Column struct {
	name  string
	kind  Kind
	nums  []float64
	texts []string
	nulls []bool
}

// NewNumeric creates a numeric column. NaN marks a missing value.
func NewNumeric(name string, values []float64) *Column {
	nums := make([]float64, len(values))
	copy(nums, values)
	return &Column{name: name, kind: Numeric, nums: nums}
}

// NewText creates a text column. nulls may be nil when no value is missing,
// otherwise it must have the same length as values.
func NewText(name string, values []string, nulls []bool) *Column {
	texts := make([]string, len(values))
	copy(texts, values)
	mask := make([]bool, len(values))
	if nulls != nil {
		copy(mask, nulls)
	}
	for i := range mask {
		if mask[i] {
			texts[i] = ""
		}
	}
	return &Column{name: name, kind: Text, texts: texts, nulls: mask}
}

// Name returns the column name
func (c *Column) Name() string { return c.name }

// Kind returns the storage kind
func (c *Column) Kind() Kind { return c.kind }

// Len returns the number of values
func (c *Column) Len() int {
	if c.kind == Numeric {
		return len(c.nums)
	}
	return len(c.texts)
}

// IsNull reports whether the value at row i is missing
func (c *Column) IsNull(i int) bool {
	if c.kind == Numeric {
		return math.IsNaN(c.nums[i])
	}
	return c.nulls[i]
}

// NullCount returns the number of missing values
func (c *Column) NullCount() int {
	n := 0
	for i := 0; i < c.Len(); i++ {
		if c.IsNull(i) {
			n++
		}
	}
	return n
}

// Float returns the numeric value at row i. It panics on text columns.
func (c *Column) Float(i int) float64 {
	if c.kind != Numeric {
		panic("table: Float called on text column " + c.name)
	}
	return c.nums[i]
}

// Text returns the string value at row i. It panics on numeric columns.
func (c *Column) Text(i int) string {
	if c.kind != Text {
		panic("table: Text called on numeric column " + c.name)
	}
	return c.texts[i]
}

// Floats returns a copy of the numeric values
func (c *Column) Floats() []float64 {
	out := make([]float64, len(c.nums))
	copy(out, c.nums)
	return out
}

// Texts returns copies of the text values and their null mask
func (c *Column) Texts() ([]string, []bool) {
	texts := make([]string, len(c.texts))
	copy(texts, c.texts)
	nulls := make([]bool, len(c.nulls))
	copy(nulls, c.nulls)
	return texts, nulls
}

// Cell formats the value at row i the way it is written to CSV.
// Missing values become the empty string.
func (c *Column) Cell(i int) string {
	if c.IsNull(i) {
		return ""
	}
	if c.kind == Numeric {
		return FormatFloat(c.nums[i])
	}
	return c.texts[i]
}

// FormatFloat renders v with the shortest representation that round-trips
func FormatFloat(v float64) string {
	if math.IsNaN(v) {
		return ""
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
