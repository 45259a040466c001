package operations

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bordereau/internal/bordereau"
	"bordereau/internal/exporter"
	"bordereau/internal/files"
)

func newPipelineManager(t *testing.T, dir string) (*Manager, string) {
	t.Helper()

	layout := bordereau.DefaultLayout()
	outputPath := filepath.Join(dir, "Proposta_Bordereau.xlsx")

	m := NewManager(&mockHub{}, nil, nil)
	t.Cleanup(m.Stop)

	require.NoError(t, m.RegisterStep(NewScanStep(
		files.NewDiscovery(dir), files.NewManager(dir), dir, outputPath)))
	require.NoError(t, m.RegisterStep(NewConsolidateStep(
		bordereau.NewConsolidator(layout, nil), m.GetBroadcaster())))
	require.NoError(t, m.RegisterStep(NewExportStep(
		exporter.NewXLSXWriter(layout.OutputSheetName, nil), exporter.NewCSVWriter(nil))))

	return m, outputPath
}

func writeSampleEvent(t *testing.T, dir, name, registration string) {
	t.Helper()
	ev := bordereau.DefaultSampleEvent()
	ev.Registration = registration
	require.NoError(t, bordereau.WriteSampleDocument(filepath.Join(dir, name), bordereau.DefaultLayout(), ev))
}

func TestPipelineEndToEnd(t *testing.T) {
	dir := t.TempDir()
	writeSampleEvent(t, dir, "evento_b.xlsx", "2024/002")
	writeSampleEvent(t, dir, "evento_a.xlsx", "2024/001")

	m, outputPath := newPipelineManager(t, dir)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)

	for _, id := range []string{StepIDScan, StepIDConsolidate, StepIDExport} {
		require.Contains(t, resp.Steps, id)
		assert.Equal(t, StepStatusCompleted, resp.Steps[id].Status, id)
	}
	assert.Equal(t, 2, resp.Steps[StepIDScan].Metadata["files_found"])
	assert.Equal(t, 2, resp.Steps[StepIDConsolidate].Metadata["processed"])
	assert.Equal(t, 0, resp.Steps[StepIDConsolidate].Metadata["failed"])

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	layout := bordereau.DefaultLayout()
	rows, err := f.GetRows(layout.OutputSheetName)
	require.NoError(t, err)
	require.Len(t, rows, 3, "header plus one row per workbook")

	assert.Equal(t, "Nº Registo", rows[0][0])
	// Documents are consolidated in filename order.
	assert.Equal(t, "2024/001", rows[1][0])
	assert.Equal(t, "2024/002", rows[2][0])

	csvPath := filepath.Join(dir, "Proposta_Bordereau.csv")
	_, err = os.Stat(csvPath)
	assert.NoError(t, err, "CSV mirror should be written alongside the workbook")
}

func TestPipelineSkipsUnreadableDocument(t *testing.T) {
	dir := t.TempDir()
	writeSampleEvent(t, dir, "evento_a.xlsx", "2024/001")
	// Sorts after the valid workbook so schema discovery still succeeds.
	require.NoError(t, os.WriteFile(filepath.Join(dir, "zz_corrupto.xlsx"), []byte("not a workbook"), 0o644))

	m, outputPath := newPipelineManager(t, dir)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, 1, resp.Steps[StepIDConsolidate].Metadata["processed"])
	assert.Equal(t, 1, resp.Steps[StepIDConsolidate].Metadata["failed"])

	f, err := excelize.OpenFile(outputPath)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows(bordereau.DefaultLayout().OutputSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 2, "failed workbook contributes no row")
}

func TestPipelineNoDocuments(t *testing.T) {
	dir := t.TempDir()
	m, outputPath := newPipelineManager(t, dir)

	resp, err := m.Execute(context.Background(), OperationRequest{ID: "op-1"})
	require.Error(t, err)
	assert.Equal(t, ErrorTypeValidation, GetErrorType(err))
	assert.Equal(t, OperationStatusFailed, resp.Status)
	assert.Equal(t, StepStatusFailed, resp.Steps[StepIDScan].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDConsolidate].Status)
	assert.Equal(t, StepStatusSkipped, resp.Steps[StepIDExport].Status)

	_, statErr := os.Stat(outputPath)
	assert.True(t, os.IsNotExist(statErr))
}

func TestPipelineHonoursRequestPaths(t *testing.T) {
	inputDir := t.TempDir()
	outDir := t.TempDir()
	writeSampleEvent(t, inputDir, "evento_a.xlsx", "2024/001")

	outputPath := filepath.Join(outDir, "relatorio.xlsx")

	m, _ := newPipelineManager(t, t.TempDir())

	resp, err := m.Execute(context.Background(), OperationRequest{
		ID:         "op-1",
		InputDir:   inputDir,
		OutputPath: outputPath,
	})
	require.NoError(t, err)
	assert.Equal(t, OperationStatusCompleted, resp.Status)
	assert.Equal(t, outputPath, resp.Steps[StepIDExport].Metadata["output_path"])

	_, err = os.Stat(outputPath)
	assert.NoError(t, err)
	_, err = os.Stat(filepath.Join(outDir, "relatorio.csv"))
	assert.NoError(t, err)
}
