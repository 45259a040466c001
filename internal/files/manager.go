package files

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	apperrors "bordereau/internal/errors"
)

// Manager prepares the filesystem for a consolidation run.
type Manager struct {
	basePath string
}

// NewManager creates a new file manager instance
func NewManager(basePath string) *Manager {
	return &Manager{basePath: basePath}
}

// FileExists checks if a file exists at the given path
func (m *Manager) FileExists(path string) bool {
	_, err := os.Stat(m.resolvePath(path))
	return err == nil
}

// PrepareOutput removes a previous report at path so the new one starts
// clean. A locked report (open in a spreadsheet application) surfaces as
// an OutputWriteError before any document is read.
func (m *Manager) PrepareOutput(path string) error {
	fullPath := m.resolvePath(path)

	err := os.Remove(fullPath)
	switch {
	case err == nil:
		slog.Info("previous report removed", slog.String("path", fullPath))
		return nil
	case errors.Is(err, fs.ErrNotExist):
		slog.Info("report will be created", slog.String("path", fullPath))
		return nil
	default:
		return apperrors.NewOutputWriteError(fullPath,
			fmt.Errorf("cannot replace existing report, close it if open: %w", err))
	}
}

// CreateDirectory creates a directory with all parent directories
func (m *Manager) CreateDirectory(path string) error {
	return os.MkdirAll(m.resolvePath(path), 0755)
}

// resolvePath makes relative paths relative to the manager's base path.
func (m *Manager) resolvePath(path string) string {
	if filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(m.basePath, path)
}
