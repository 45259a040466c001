package exporter

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/xuri/excelize/v2"

	apperrors "bordereau/internal/errors"
	"bordereau/pkg/contracts/domain"
)

// XLSXWriter writes a consolidated report as a single-sheet workbook:
// row 1 carries the discovered header, rows 2..N one row per document.
type XLSXWriter struct {
	sheetName string
	logger    *slog.Logger
}

// NewXLSXWriter creates a report writer targeting the given sheet name.
func NewXLSXWriter(sheetName string, logger *slog.Logger) *XLSXWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &XLSXWriter{sheetName: sheetName, logger: logger}
}

// Write persists the report at path. Any failure is an OutputWriteError;
// a partially written file is removed so reruns never see stale output.
func (w *XLSXWriter) Write(path string, report *domain.Report) error {
	w.logger.Info("writing report",
		slog.String("path", path),
		slog.Int("rows", len(report.Rows)),
		slog.Int("columns", len(report.Header)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", w.sheetName); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	if err := w.writeRow(f, 1, report.Header); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	for i, row := range report.Rows {
		if err := w.writeRow(f, i+2, row); err != nil {
			return apperrors.NewOutputWriteError(path, err)
		}
	}

	if err := f.SaveAs(path); err != nil {
		os.Remove(path)
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}

func (w *XLSXWriter) writeRow(f *excelize.File, rowNum int, values []string) error {
	cell, err := excelize.CoordinatesToCellName(1, rowNum)
	if err != nil {
		return err
	}
	// SetSheetRow writes the whole row in one call.
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	if err := f.SetSheetRow(w.sheetName, cell, &row); err != nil {
		return fmt.Errorf("failed to write row %d: %w", rowNum, err)
	}
	return nil
}
