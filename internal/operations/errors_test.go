package operations

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	apperrors "loanprep/internal/errors"
)

func TestOperationErrorMessage(t *testing.T) {
	tests := []struct {
		name string
		err  *OperationError
		want string
	}{
		{
			name: "validation without cause",
			err:  NewValidationError("write", "output path is empty"),
			want: "[validation] write: output path is empty",
		},
		{
			name: "execution with cause",
			err:  NewExecutionError("load", errors.New("no such file")),
			want: "[execution] load: Step execution failed: no such file",
		},
		{
			name: "fatal without step",
			err:  NewFatalError("state missing", nil),
			want: "[fatal] state missing",
		},
		{
			name: "nil",
			err:  nil,
			want: "unknown operation error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.err.Error())
		})
	}
}

func TestOperationErrorUnwrapsDomainErrors(t *testing.T) {
	cause := apperrors.NewValidationFailure("Loan_Status", "2 rows with an unexpected label")
	err := WrapError(cause, StageIDValidate, "Step execution failed")

	assert.True(t, errors.Is(err, apperrors.ErrValidationFailure))
	assert.False(t, errors.Is(err, apperrors.ErrMissingInput))
	assert.Equal(t, StageIDValidate, FailedStep(err))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(err))

	// wrapping twice keeps the original step
	outer := fmt.Errorf("run failed: %w", err)
	assert.Equal(t, StageIDValidate, FailedStep(outer))
	assert.Same(t, err, WrapError(outer, StageIDWrite, "ignored"))
}

func TestGetErrorType(t *testing.T) {
	assert.Equal(t, ErrorType(""), GetErrorType(nil))
	assert.Equal(t, ErrorTypeExecution, GetErrorType(errors.New("plain")))
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(NewCancellationError("clip", context.Canceled)))
	assert.True(t, errors.Is(NewCancellationError("clip", context.Canceled), context.Canceled))
	assert.Nil(t, WrapError(nil, "x", "y"))
	assert.Empty(t, FailedStep(errors.New("plain")))
}
