package operations

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"
	"strings"

	"bordereau/internal/bordereau"
	"bordereau/internal/exporter"
	"bordereau/internal/files"
	"bordereau/pkg/contracts/domain"
)

// ScanStep locates the source workbooks and prepares the output target.
type ScanStep struct {
	BaseStep
	discovery     *files.Discovery
	manager       *files.Manager
	defaultInput  string
	defaultOutput string
}

// NewScanStep creates the source discovery step.
func NewScanStep(discovery *files.Discovery, manager *files.Manager, defaultInput, defaultOutput string) *ScanStep {
	return &ScanStep{
		BaseStep:      NewBaseStep(StepIDScan, StepNameScan, nil),
		discovery:     discovery,
		manager:       manager,
		defaultInput:  defaultInput,
		defaultOutput: defaultOutput,
	}
}

// Execute finds the workbooks to consolidate and removes any previous
// report so the run starts clean.
func (s *ScanStep) Execute(ctx context.Context, state *OperationState) error {
	inputDir := state.GetConfigString(ContextKeyInputDir, s.defaultInput)
	outputPath := state.GetConfigString(ContextKeyOutputPath, s.defaultOutput)

	found, err := s.discovery.FindSourceDocuments(inputDir, filepath.Base(outputPath))
	if err != nil {
		return NewExecutionError(s.ID(), err, true)
	}
	if len(found) == 0 {
		return NewValidationError(s.ID(), fmt.Sprintf("no source documents in %s", inputDir))
	}

	if err := s.manager.PrepareOutput(outputPath); err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	slog.InfoContext(ctx, "source documents found",
		slog.String("operation_id", state.ID),
		slog.String("input_dir", inputDir),
		slog.Int("count", len(found)))

	state.SetContext(ContextKeyDocuments, files.Paths(found))
	state.SetContext(ContextKeyOutputPath, outputPath)

	if step := state.GetStep(s.ID()); step != nil {
		step.SetMetadata("files_found", len(found))
	}
	return nil
}

// ConsolidateStep runs schema discovery and per-document extraction.
type ConsolidateStep struct {
	BaseStep
	consolidator *bordereau.Consolidator
	broadcaster  *StatusBroadcaster
}

// NewConsolidateStep creates the record extraction step. The broadcaster
// is optional; without it progress stays internal.
func NewConsolidateStep(consolidator *bordereau.Consolidator, broadcaster *StatusBroadcaster) *ConsolidateStep {
	return &ConsolidateStep{
		BaseStep:     NewBaseStep(StepIDConsolidate, StepNameConsolidate, []string{StepIDScan}),
		consolidator: consolidator,
		broadcaster:  broadcaster,
	}
}

// Validate requires the scan step to have produced a document list.
func (s *ConsolidateStep) Validate(state *OperationState) error {
	if _, ok := state.GetContext(ContextKeyDocuments); !ok {
		return fmt.Errorf("no document list in operation context")
	}
	return nil
}

// Execute consolidates the documents into an in-memory report.
func (s *ConsolidateStep) Execute(ctx context.Context, state *OperationState) error {
	v, _ := state.GetContext(ContextKeyDocuments)
	paths, ok := v.([]string)
	if !ok {
		return NewFatalError("document list has unexpected type", nil)
	}

	tracker := NewProgressTracker(s.ID(), len(paths))
	stepState := state.GetStep(s.ID())

	report, err := s.consolidator.Run(ctx, paths, func(processed, failed, total int, document string) {
		tracker.Increment(document)
		_, _, pct, _ := tracker.GetProgress()
		msg := fmt.Sprintf("%d/%d documents (%d failed), ETA %s", processed+failed, total, failed, tracker.GetETA())
		if stepState != nil {
			stepState.UpdateProgress(pct, msg)
		}
		if s.broadcaster != nil {
			s.broadcaster.UpdateStepProgress(state.ID, s.ID(), int(pct), msg)
		}
	})
	if err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	state.SetContext(ContextKeyReport, report)
	state.SetContext(ContextKeyProcessed, report.Processed)
	state.SetContext(ContextKeyFailed, report.Failed)

	if stepState != nil {
		stepState.SetMetadata("processed", report.Processed)
		stepState.SetMetadata("failed", report.Failed)
	}
	return nil
}

// ExportStep writes the consolidated report to disk.
type ExportStep struct {
	BaseStep
	xlsx *exporter.XLSXWriter
	csv  *exporter.CSVWriter
}

// NewExportStep creates the report export step. The CSV writer is
// optional; without it only the workbook is written.
func NewExportStep(xlsx *exporter.XLSXWriter, csv *exporter.CSVWriter) *ExportStep {
	return &ExportStep{
		BaseStep: NewBaseStep(StepIDExport, StepNameExport, []string{StepIDConsolidate}),
		xlsx:     xlsx,
		csv:      csv,
	}
}

// Validate requires a report from the consolidate step.
func (s *ExportStep) Validate(state *OperationState) error {
	if _, ok := state.GetContext(ContextKeyReport); !ok {
		return fmt.Errorf("no report in operation context")
	}
	return nil
}

// Execute persists the report, plus a CSV mirror next to it.
func (s *ExportStep) Execute(ctx context.Context, state *OperationState) error {
	v, _ := state.GetContext(ContextKeyReport)
	report, ok := v.(*domain.Report)
	if !ok {
		return NewFatalError("report has unexpected type", nil)
	}

	outputPath := state.GetConfigString(ContextKeyOutputPath, "")
	if p, ok := state.GetContext(ContextKeyOutputPath); ok {
		if s, ok := p.(string); ok && s != "" {
			outputPath = s
		}
	}
	if outputPath == "" {
		return NewValidationError(s.ID(), "no output path configured")
	}

	if err := s.xlsx.Write(outputPath, report); err != nil {
		return NewExecutionError(s.ID(), err, false)
	}

	if s.csv != nil {
		csvPath := state.GetConfigString(ContextKeyCSVPath,
			strings.TrimSuffix(outputPath, filepath.Ext(outputPath))+".csv")
		if err := s.csv.Write(csvPath, report); err != nil {
			return NewExecutionError(s.ID(), err, false)
		}
	}

	slog.InfoContext(ctx, "report written",
		slog.String("operation_id", state.ID),
		slog.String("path", outputPath),
		slog.Int("rows", len(report.Rows)))

	if step := state.GetStep(s.ID()); step != nil {
		step.SetMetadata("rows", len(report.Rows))
		step.SetMetadata("output_path", outputPath)
	}
	return nil
}
