package operations

import (
	"time"
)

// Config represents the operation execution configuration
type Config struct {
	// Execution mode; consolidation is inherently sequential
	ExecutionMode ExecutionMode `json:"execution_mode"`

	// Step-specific timeouts
	StepTimeouts map[string]time.Duration `json:"step_timeouts"`

	// Retry configuration for steps
	RetryConfig RetryConfig `json:"retry_config"`

	// Whether to continue to later steps after a step failure
	ContinueOnError bool `json:"continue_on_error"`
}

// NewConfig returns the default operation configuration
func NewConfig() *Config {
	return &Config{
		ExecutionMode: ExecutionModeSequential,
		StepTimeouts: map[string]time.Duration{
			StepIDScan:        DefaultScanTimeout,
			StepIDConsolidate: DefaultConsolidateTimeout,
			StepIDExport:      DefaultExportTimeout,
		},
		RetryConfig:     NewRetryConfig(),
		ContinueOnError: false,
	}
}

// GetStepTimeout returns the timeout for a specific step
func (c *Config) GetStepTimeout(stepID string) time.Duration {
	if timeout, ok := c.StepTimeouts[stepID]; ok {
		return timeout
	}
	return DefaultStepTimeout
}

// SetStepTimeout sets the timeout for a specific step
func (c *Config) SetStepTimeout(stepID string, timeout time.Duration) {
	if c.StepTimeouts == nil {
		c.StepTimeouts = make(map[string]time.Duration)
	}
	c.StepTimeouts[stepID] = timeout
}
