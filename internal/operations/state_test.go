package operations

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperationStateTransitions(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Equal(t, OperationStatusPending, state.Status)

	state.Start()
	assert.Equal(t, OperationStatusRunning, state.Status)
	assert.Nil(t, state.EndTime)

	state.Complete()
	assert.Equal(t, OperationStatusCompleted, state.Status)
	require.NotNil(t, state.EndTime)
}

func TestOperationStateFail(t *testing.T) {
	state := NewOperationState("op-1")
	state.Start()

	cause := errors.New("boom")
	state.Fail(cause)

	assert.Equal(t, OperationStatusFailed, state.Status)
	assert.Equal(t, cause, state.Error)
	assert.NotNil(t, state.EndTime)
}

func TestOperationStateContext(t *testing.T) {
	state := NewOperationState("op-1")

	state.SetContext(ContextKeyDocuments, []string{"a.xlsx"})
	v, ok := state.GetContext(ContextKeyDocuments)
	require.True(t, ok)
	assert.Equal(t, []string{"a.xlsx"}, v)

	_, ok = state.GetContext("missing")
	assert.False(t, ok)
}

func TestGetConfigString(t *testing.T) {
	state := NewOperationState("op-1")
	assert.Equal(t, "fallback", state.GetConfigString(ContextKeyInputDir, "fallback"))

	state.SetConfig(ContextKeyInputDir, "/data")
	assert.Equal(t, "/data", state.GetConfigString(ContextKeyInputDir, "fallback"))

	state.SetConfig(ContextKeyOutputPath, 42)
	assert.Equal(t, "fallback", state.GetConfigString(ContextKeyOutputPath, "fallback"))
}

func TestOperationStateClone(t *testing.T) {
	state := NewOperationState("op-1")
	state.SetStep(StepIDScan, NewStepState(StepIDScan, StepNameScan))
	state.SetContext(ContextKeyProcessed, 3)

	clone := state.Clone()
	clone.SetContext(ContextKeyProcessed, 99)
	clone.GetStep(StepIDScan).Complete()

	v, _ := state.GetContext(ContextKeyProcessed)
	assert.Equal(t, 3, v)
	assert.Equal(t, StepStatusPending, state.GetStep(StepIDScan).Status)
}

func TestHasFailuresAndIsComplete(t *testing.T) {
	state := NewOperationState("op-1")
	a := NewStepState("a", "A")
	b := NewStepState("b", "B")
	state.SetStep("a", a)
	state.SetStep("b", b)

	assert.False(t, state.HasFailures())
	assert.False(t, state.IsComplete())

	a.Complete()
	b.Fail(errors.New("boom"))

	assert.True(t, state.HasFailures())
	assert.True(t, state.IsComplete())
}
