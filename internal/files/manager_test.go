package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPrepareOutputRemovesExisting(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "report.xlsx")
	require.NoError(t, os.WriteFile(path, []byte("old"), 0644))

	m := NewManager(dir)
	require.NoError(t, m.PrepareOutput("report.xlsx"))
	assert.False(t, m.FileExists("report.xlsx"))
}

func TestPrepareOutputMissingIsFine(t *testing.T) {
	m := NewManager(t.TempDir())
	assert.NoError(t, m.PrepareOutput("report.xlsx"))
}

func TestCreateDirectory(t *testing.T) {
	dir := t.TempDir()
	m := NewManager(dir)
	require.NoError(t, m.CreateDirectory("a/b/c"))
	assert.True(t, m.FileExists("a/b/c"))
}
