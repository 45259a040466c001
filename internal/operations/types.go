package operations

import (
	"time"
)

// Step identifiers
const (
	StepIDScan        = "scan"
	StepIDConsolidate = "consolidate"
	StepIDExport      = "export"
)

// Step names
const (
	StepNameScan        = "Source Discovery"
	StepNameConsolidate = "Record Extraction"
	StepNameExport      = "Report Export"
)

// Context keys for passing data between steps
const (
	ContextKeyInputDir   = "input_dir"
	ContextKeyOutputPath = "output_path"
	ContextKeyCSVPath    = "csv_path"
	ContextKeyDocuments  = "documents"
	ContextKeyReport     = "report"
	ContextKeyProcessed  = "processed"
	ContextKeyFailed     = "failed"
)

// Default timeouts
const (
	DefaultStepTimeout        = 30 * time.Minute
	DefaultScanTimeout        = 1 * time.Minute
	DefaultConsolidateTimeout = 30 * time.Minute
	DefaultExportTimeout      = 5 * time.Minute
)

// ExecutionMode defines how steps are executed
type ExecutionMode string

const (
	ExecutionModeSequential ExecutionMode = "sequential"
)

// RetryConfig defines retry behavior for steps
type RetryConfig struct {
	MaxAttempts  int           `json:"max_attempts"`
	InitialDelay time.Duration `json:"initial_delay"`
	MaxDelay     time.Duration `json:"max_delay"`
	Multiplier   float64       `json:"multiplier"`
}

// NewRetryConfig returns the default retry configuration
func NewRetryConfig() RetryConfig {
	return RetryConfig{
		MaxAttempts:  3,
		InitialDelay: 1 * time.Second,
		MaxDelay:     30 * time.Second,
		Multiplier:   2.0,
	}
}

// OperationRequest represents a request to execute an operation
type OperationRequest struct {
	ID         string                 `json:"id"`
	InputDir   string                 `json:"input_dir,omitempty"`
	OutputPath string                 `json:"output_path,omitempty"`
	Parameters map[string]interface{} `json:"parameters,omitempty"`
}

// OperationResponse represents the response from an operation execution
type OperationResponse struct {
	ID       string                `json:"id"`
	Status   OperationStatusValue  `json:"status"`
	Duration time.Duration         `json:"duration"`
	Steps    map[string]*StepState `json:"steps"`
	Error    string                `json:"error,omitempty"`
}

// ProgressUpdate represents a progress update from a step
type ProgressUpdate struct {
	StepID   string                 `json:"step_id"`
	Progress float64                `json:"progress"`
	Message  string                 `json:"message"`
	ETA      string                 `json:"eta,omitempty"`
	Metadata map[string]interface{} `json:"metadata,omitempty"`
}
