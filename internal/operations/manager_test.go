package operations

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// mockHub records broadcast calls for assertions.
type mockHub struct {
	mu       sync.Mutex
	messages []string
}

func (h *mockHub) BroadcastUpdate(eventType, subtype, action string, payload interface{}) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.messages = append(h.messages, eventType)
}

func (h *mockHub) count() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.messages)
}

func newTestManager(t *testing.T, steps ...Step) (*Manager, *mockHub) {
	t.Helper()
	hub := &mockHub{}
	m := NewManager(hub, nil, nil)
	t.Cleanup(m.Stop)
	for _, s := range steps {
		require.NoError(t, m.RegisterStep(s))
	}
	return m, hub
}

func TestManagerExecuteSuccess(t *testing.T) {
	var order []string
	m, hub := newTestManager(t,
		newFakeStep("scan", nil, func(ctx context.Context, state *OperationState) error {
			order = append(order, "scan")
			return nil
		}),
		newFakeStep("consolidate", []string{"scan"}, func(ctx context.Context, state *OperationState) error {
			order = append(order, "consolidate")
			return nil
		}),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.NoError(t, err)

	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, []string{"scan", "consolidate"}, order)
	assert.Equal(t, StepStatusCompleted, resp.Steps["scan"].Status)
	assert.Equal(t, StepStatusCompleted, resp.Steps["consolidate"].Status)
	assert.Eventually(t, func() bool { return hub.count() > 0 }, time.Second, 10*time.Millisecond,
		"broadcaster should publish snapshots to the hub")
}

func TestManagerExecuteGeneratesID(t *testing.T) {
	m, _ := newTestManager(t, newFakeStep("scan", nil, nil))

	resp, err := m.Execute(context.Background(), OperationRequest{})
	require.NoError(t, err)
	assert.NotEmpty(t, resp.ID)
}

func TestManagerFailureSkipsDependents(t *testing.T) {
	executed := false
	m, _ := newTestManager(t,
		newFakeStep("scan", nil, func(ctx context.Context, state *OperationState) error {
			return NewValidationError("scan", "no source documents")
		}),
		newFakeStep("consolidate", []string{"scan"}, func(ctx context.Context, state *OperationState) error {
			executed = true
			return nil
		}),
	)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.Error(t, err)

	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.False(t, executed)
	assert.Equal(t, StepStatusFailed, resp.Steps["scan"].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps["consolidate"].Status)
}

func TestManagerRetriesRetryableErrors(t *testing.T) {
	attempts := 0
	m, _ := newTestManager(t,
		newFakeStep("scan", nil, func(ctx context.Context, state *OperationState) error {
			attempts++
			if attempts < 2 {
				return NewExecutionError("scan", errors.New("transient"), true)
			}
			return nil
		}),
	)
	m.GetConfig().RetryConfig.InitialDelay = 0
	m.GetConfig().RetryConfig.MaxDelay = 0

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, 2, attempts)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
}

func TestManagerDoesNotRetryFatalErrors(t *testing.T) {
	attempts := 0
	m, _ := newTestManager(t,
		newFakeStep("scan", nil, func(ctx context.Context, state *OperationState) error {
			attempts++
			return NewFatalError("broken", nil)
		}),
	)

	_, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)
}

func TestManagerCancelledContext(t *testing.T) {
	m, _ := newTestManager(t, newFakeStep("scan", nil, nil))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	resp, err := m.Execute(ctx, OperationRequest{ID: "op-1"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeCancellation, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
}

func TestManagerGetOperationNotFound(t *testing.T) {
	m, _ := newTestManager(t)
	_, err := m.GetOperation("ghost")
	assert.ErrorIs(t, err, ErrOperationNotFound)
}

func TestManagerValidationFailureSkipsStep(t *testing.T) {
	step := newFakeStep("consolidate", nil, nil)
	step.validate = func(state *OperationState) error {
		return errors.New("no document list in operation context")
	}
	m, _ := newTestManager(t, step)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, StepStatusSkipped, resp.Steps["consolidate"].Status)
}
