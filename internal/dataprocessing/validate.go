package dataprocessing

import (
	"fmt"
	"math"

	apperrors "loanprep/internal/errors"
	"loanprep/internal/table"
)

// ValidateTarget fails with errors.ErrValidationFailure when the target
// column is absent, is not numeric, or still holds missing values after
// encoding.
func ValidateTarget(t *table.Table, column string) error {
	col, ok := t.Column(column)
	if !ok {
		return apperrors.NewValidationFailure(column, "target column not found")
	}
	if col.Kind() != table.Numeric {
		return apperrors.NewValidationFailure(column, "target column was not encoded")
	}

	unmapped := 0
	first := -1
	for i, v := range col.Floats() {
		if math.IsNaN(v) {
			if first < 0 {
				first = i
			}
			unmapped++
		}
	}
	if unmapped > 0 {
		return apperrors.NewValidationFailure(column,
			fmt.Sprintf("target column %q has %d rows with an unexpected label value after encoding", column, unmapped)).
			WithContext("unmapped_rows", unmapped).
			WithContext("first_row", first)
	}
	return nil
}
