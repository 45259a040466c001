package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestOperationErrorMessage(t *testing.T) {
	err := NewValidationError("scan", "no source documents")
	assert.Equal(t, "[validation] scan: no source documents", err.Error())

	fatal := NewFatalError("step state not found", nil)
	assert.Equal(t, "[fatal] step state not found", fatal.Error())
}

func TestOperationErrorUnwrap(t *testing.T) {
	cause := errors.New("disk full")
	err := NewExecutionError("export", cause, false)
	assert.ErrorIs(t, err, cause)
}

func TestIsRetryable(t *testing.T) {
	assert.True(t, IsRetryable(NewTimeoutError("scan", "1m")))
	assert.True(t, IsRetryable(NewExecutionError("scan", errors.New("x"), true)))
	assert.False(t, IsRetryable(NewValidationError("scan", "bad")))
	assert.False(t, IsRetryable(errors.New("plain")))
	assert.False(t, IsRetryable(nil))
}

func TestWrapError(t *testing.T) {
	assert.Nil(t, WrapError(nil, "scan", "ignored"))

	wrapped := WrapError(errors.New("boom"), "export", "step execution failed")
	assert.Equal(t, ErrorTypeExecution, wrapped.Type)
	assert.Equal(t, "export", wrapped.Step)

	// Wrapping an OperationError keeps its type and fills the step.
	inner := NewTimeoutError("", "1m")
	rewrapped := WrapError(inner, "consolidate", "")
	assert.Equal(t, ErrorTypeTimeout, rewrapped.Type)
	assert.Equal(t, "consolidate", rewrapped.Step)
}
