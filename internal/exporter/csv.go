package exporter

import (
	"encoding/csv"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "bordereau/internal/errors"
	"bordereau/pkg/contracts/domain"
)

// CSVWriter mirrors a consolidated report as a CSV file. The mirror is
// byte-stable across runs over unchanged input, which the xlsx container
// format cannot guarantee.
type CSVWriter struct {
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance
func NewCSVWriter(logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{logger: logger}
}

// Write persists the report's header and rows at path.
func (w *CSVWriter) Write(path string, report *domain.Report) error {
	w.logger.Info("writing CSV mirror",
		slog.String("path", path),
		slog.Int("rows", len(report.Rows)))

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	file, err := os.Create(path)
	if err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	defer file.Close()

	// UTF-8 BOM so spreadsheet applications pick up the accented labels.
	if _, err := file.Write([]byte{0xEF, 0xBB, 0xBF}); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	writer := csv.NewWriter(file)
	defer writer.Flush()

	if err := writer.Write(report.Header); err != nil {
		return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to write header: %w", err))
	}
	for i, row := range report.Rows {
		if err := writer.Write(row); err != nil {
			return apperrors.NewOutputWriteError(path, fmt.Errorf("failed to write record %d: %w", i, err))
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}
