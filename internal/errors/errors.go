package errors

import (
	"fmt"
)

// Sentinels for the two failures a pipeline run can surface to its caller.
// Match them with errors.Is; concrete errors carry message, cause and context.
var (
	// ErrMissingInput is returned when the input path does not resolve to a readable file
	ErrMissingInput = &AppError{Type: ErrTypeNotFound}

	// ErrValidationFailure is returned when the target column still holds
	// unmapped or missing values after encoding
	ErrValidationFailure = &AppError{Type: ErrTypeValidation}
)

// NewMissingInputError creates a not found error for an input file
func NewMissingInputError(path string, cause error) *AppError {
	return NewAppError(ErrTypeNotFound, fmt.Sprintf("input file %s not found", path), cause).
		WithContext("path", path)
}

// NewValidationFailure creates a validation error for a column
func NewValidationFailure(column, message string) *AppError {
	return NewAppError(ErrTypeValidation, message, nil).
		WithContext("column", column)
}

