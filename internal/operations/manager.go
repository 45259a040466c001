package operations

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Manager orchestrates operation execution
type Manager struct {
	registry    *Registry
	config      *Config
	hub         WebSocketHub
	broadcaster *StatusBroadcaster

	// Active operations
	mu         sync.RWMutex
	operations map[string]*OperationState
	cancels    map[string]context.CancelFunc
}

// NewManager creates a new operation manager with dependency injection
func NewManager(hub WebSocketHub, registry *Registry, config *Config) *Manager {
	if registry == nil {
		registry = NewRegistry()
	}
	if config == nil {
		config = NewConfig()
	}

	return &Manager{
		registry:    registry,
		config:      config,
		hub:         hub,
		broadcaster: NewStatusBroadcaster(hub, slog.Default()),
		operations:  make(map[string]*OperationState),
		cancels:     make(map[string]context.CancelFunc),
	}
}

// RegisterStep registers a step with the manager
func (m *Manager) RegisterStep(step Step) error {
	return m.registry.Register(step)
}

// GetRegistry returns the registry for accessing registered steps
func (m *Manager) GetRegistry() *Registry {
	return m.registry
}

// GetBroadcaster returns the status broadcaster
func (m *Manager) GetBroadcaster() *StatusBroadcaster {
	return m.broadcaster
}

// Execute runs an operation with the given request. The call blocks until
// the run finishes; callers wanting a background run launch it on their
// own goroutine and follow progress over the WebSocket hub.
func (m *Manager) Execute(ctx context.Context, req OperationRequest) (*OperationResponse, error) {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}

	state := NewOperationState(req.ID)

	if req.InputDir != "" {
		state.SetConfig(ContextKeyInputDir, req.InputDir)
	}
	if req.OutputPath != "" {
		state.SetConfig(ContextKeyOutputPath, req.OutputPath)
	}
	for k, v := range req.Parameters {
		state.SetConfig(k, v)
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	m.storeOperation(state, cancel)
	defer m.releaseOperation(req.ID)

	steps, err := m.registry.GetDependencyOrder()
	if err != nil {
		err = fmt.Errorf("failed to order steps: %w", err)
		slog.ErrorContext(ctx, "operation setup failed",
			slog.String("operation_id", req.ID),
			slog.Any("error", err))
		state.Fail(err)
		return m.createResponse(state), err
	}
	if len(steps) == 0 {
		err := NewValidationError("", "no steps registered")
		state.Fail(err)
		return m.createResponse(state), err
	}

	for _, step := range steps {
		state.SetStep(step.ID(), NewStepState(step.ID(), step.Name()))
	}
	m.broadcaster.CreateOperation(req.ID, steps)

	slog.InfoContext(ctx, "operation started",
		slog.String("operation_id", req.ID),
		slog.Int("step_count", len(steps)))

	state.Start()
	m.broadcaster.StartOperation(req.ID)

	err = m.executeSequential(ctx, state, steps)

	if err != nil {
		state.Fail(err)
		m.broadcaster.FailOperation(req.ID, err)
	} else {
		state.Complete()
		m.broadcaster.CompleteOperation(req.ID, "Operation completed successfully")
	}

	return m.createResponse(state), err
}

// executeSequential executes steps one by one
func (m *Manager) executeSequential(ctx context.Context, state *OperationState, steps []Step) error {
	for i, step := range steps {
		select {
		case <-ctx.Done():
			slog.WarnContext(ctx, "operation cancelled",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()))
			return NewCancellationError(step.ID())
		default:
		}

		stepState := state.GetStep(step.ID())
		if stepState != nil && stepState.Status == StepStatusSkipped {
			continue
		}

		slog.InfoContext(ctx, "executing step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("step_number", i+1),
			slog.Int("total_steps", len(steps)))

		if err := m.executeStep(ctx, state, step); err != nil {
			if !m.config.ContinueOnError {
				m.skipDependentSteps(state, steps, step.ID())
				return err
			}
			slog.WarnContext(ctx, "step failed, continuing",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.Any("error", err))
		}
	}
	return nil
}

// executeStep executes a single step with timeout and retry logic
func (m *Manager) executeStep(ctx context.Context, state *OperationState, step Step) error {
	stepState := state.GetStep(step.ID())
	if stepState == nil {
		return NewFatalError("step state not found", nil)
	}

	if err := m.checkDependencies(state, step); err != nil {
		stepState.Skip(fmt.Sprintf("Dependencies not met: %v", err))
		m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, stepState.Message)
		return err
	}

	if err := step.Validate(state); err != nil {
		stepState.Skip(fmt.Sprintf("Validation failed: %v", err))
		m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, stepState.Message)
		return NewValidationError(step.ID(), err.Error())
	}

	timeout := m.config.GetStepTimeout(step.ID())
	stepCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	retryConfig := m.config.RetryConfig
	var lastErr error

	for attempt := 1; attempt <= retryConfig.MaxAttempts; attempt++ {
		stepState.Start()
		m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 1, "Step started")

		startTime := time.Now()
		err := step.Execute(stepCtx, state)
		duration := time.Since(startTime)

		if err == nil {
			stepState.Complete()
			m.broadcaster.CompleteStep(state.ID, step.ID(), "Step completed successfully")
			slog.InfoContext(ctx, "step completed",
				slog.String("operation_id", state.ID),
				slog.String("step", step.ID()),
				slog.Duration("duration", duration))
			return nil
		}

		slog.ErrorContext(ctx, "step execution failed",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Duration("duration", duration),
			slog.Any("error", err))

		lastErr = err

		if !IsRetryable(err) || attempt >= retryConfig.MaxAttempts {
			stepState.Fail(err)
			m.broadcaster.FailStep(state.ID, step.ID(), err)
			return WrapError(err, step.ID(), "step execution failed")
		}

		delay := m.calculateRetryDelay(attempt, retryConfig)
		slog.WarnContext(ctx, "retrying step",
			slog.String("operation_id", state.ID),
			slog.String("step", step.ID()),
			slog.Int("attempt", attempt),
			slog.Duration("delay", delay))

		select {
		case <-time.After(delay):
		case <-stepCtx.Done():
			timeoutErr := NewTimeoutError(step.ID(), timeout.String())
			stepState.Fail(timeoutErr)
			m.broadcaster.FailStep(state.ID, step.ID(), timeoutErr)
			return timeoutErr
		}
	}

	stepState.Fail(lastErr)
	m.broadcaster.FailStep(state.ID, step.ID(), lastErr)
	return WrapError(lastErr, step.ID(), "step execution failed after retries")
}

// skipDependentSteps marks all steps that depend on the failed step as
// skipped, transitively.
func (m *Manager) skipDependentSteps(state *OperationState, steps []Step, failedStepID string) {
	for _, step := range steps {
		for _, dep := range step.GetDependencies() {
			if dep != failedStepID {
				continue
			}
			stepState := state.GetStep(step.ID())
			if stepState != nil && stepState.Status == StepStatusPending {
				stepState.Skip(fmt.Sprintf("Dependency %s failed", failedStepID))
				m.broadcaster.UpdateStepProgress(state.ID, step.ID(), 0, stepState.Message)
				m.skipDependentSteps(state, steps, step.ID())
			}
			break
		}
	}
}

// checkDependencies verifies that all dependencies completed
func (m *Manager) checkDependencies(state *OperationState, step Step) error {
	for _, dep := range step.GetDependencies() {
		depState := state.GetStep(dep)
		if depState == nil {
			return fmt.Errorf("dependency %s not found", dep)
		}
		if depState.Status != StepStatusCompleted {
			return fmt.Errorf("dependency %s not completed (status: %s)", dep, depState.Status)
		}
	}
	return nil
}

// calculateRetryDelay calculates the delay before the next retry
func (m *Manager) calculateRetryDelay(attempt int, config RetryConfig) time.Duration {
	delay := config.InitialDelay * time.Duration(float64(attempt-1)*config.Multiplier)
	if delay < config.InitialDelay {
		delay = config.InitialDelay
	}
	if delay > config.MaxDelay {
		delay = config.MaxDelay
	}
	return delay
}

// createResponse creates an operation response from state
func (m *Manager) createResponse(state *OperationState) *OperationResponse {
	resp := &OperationResponse{
		ID:       state.ID,
		Status:   state.Status,
		Duration: state.Duration(),
		Steps:    state.Steps,
	}
	if state.Error != nil {
		resp.Error = state.Error.Error()
	}
	return resp
}

// GetOperation retrieves the state of a running operation
func (m *Manager) GetOperation(id string) (*OperationState, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	state, exists := m.operations[id]
	if !exists {
		return nil, ErrOperationNotFound
	}
	return state.Clone(), nil
}

// ListOperations returns all active operations
func (m *Manager) ListOperations() []*OperationState {
	m.mu.RLock()
	defer m.mu.RUnlock()

	operations := make([]*OperationState, 0, len(m.operations))
	for _, state := range m.operations {
		operations = append(operations, state.Clone())
	}
	return operations
}

// CancelOperation cancels a running operation
func (m *Manager) CancelOperation(id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	state, exists := m.operations[id]
	if !exists {
		return ErrOperationNotFound
	}

	state.Cancel()
	if cancel, ok := m.cancels[id]; ok {
		cancel()
	}
	m.broadcaster.CancelOperation(id)
	return nil
}

// GetConfig returns the current configuration
func (m *Manager) GetConfig() *Config {
	return m.config
}

// Stop shuts down the manager's broadcaster
func (m *Manager) Stop() {
	m.broadcaster.Stop()
}

func (m *Manager) storeOperation(state *OperationState, cancel context.CancelFunc) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.operations[state.ID] = state
	m.cancels[state.ID] = cancel
}

func (m *Manager) releaseOperation(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.operations, id)
	delete(m.cancels, id)
}
