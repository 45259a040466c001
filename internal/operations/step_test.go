package operations

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStepStateLifecycle(t *testing.T) {
	s := NewStepState(StepIDConsolidate, StepNameConsolidate)
	assert.Equal(t, StepStatusPending, s.Status)
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, StepStatusActive, s.Status)
	require.NotNil(t, s.StartTime)

	s.UpdateProgress(50, "halfway")
	assert.Equal(t, 50.0, s.Progress)
	assert.Equal(t, "halfway", s.Message)

	s.Complete()
	assert.Equal(t, StepStatusCompleted, s.Status)
	assert.Equal(t, 100.0, s.Progress)
	assert.GreaterOrEqual(t, s.Duration(), time.Duration(0))
}

func TestStepStateFailAndSkip(t *testing.T) {
	s := NewStepState("a", "A")
	s.Start()
	cause := errors.New("boom")
	s.Fail(cause)
	assert.Equal(t, StepStatusFailed, s.Status)
	assert.Equal(t, cause, s.Error)

	s2 := NewStepState("b", "B")
	s2.Skip("dependency failed")
	assert.Equal(t, StepStatusSkipped, s2.Status)
	assert.Equal(t, "dependency failed", s2.Message)
}

func TestStepStateMetadata(t *testing.T) {
	s := NewStepState("a", "A")
	s.SetMetadata("files_found", 4)
	assert.Equal(t, 4, s.Metadata["files_found"])
}

func TestBaseStep(t *testing.T) {
	b := NewBaseStep("export", "Report Export", []string{"consolidate"})
	assert.Equal(t, "export", b.ID())
	assert.Equal(t, "Report Export", b.Name())
	assert.Equal(t, []string{"consolidate"}, b.GetDependencies())
	assert.NoError(t, b.Validate(NewOperationState("op")))
}
