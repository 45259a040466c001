package files

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte("x"), 0644))
}

func TestFindSourceDocuments(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "b.xlsx")
	touch(t, dir, "a.xlsx")
	touch(t, dir, "c.xlsx")
	touch(t, dir, "~$a.xlsx")
	touch(t, dir, "Proposta_Bordereau.xlsx")
	touch(t, dir, "notes.txt")
	require.NoError(t, os.Mkdir(filepath.Join(dir, "sub.xlsx"), 0755))

	files, err := NewDiscovery(dir).FindSourceDocuments(".", "Proposta_Bordereau.xlsx")
	require.NoError(t, err)

	names := make([]string, len(files))
	for i, f := range files {
		names[i] = f.Name
	}
	assert.Equal(t, []string{"a.xlsx", "b.xlsx", "c.xlsx"}, names)
}

func TestFindSourceDocumentsEmptyDir(t *testing.T) {
	files, err := NewDiscovery(t.TempDir()).FindSourceDocuments(".", "out.xlsx")
	require.NoError(t, err)
	assert.Empty(t, files)
}

func TestFindSourceDocumentsMissingDir(t *testing.T) {
	_, err := NewDiscovery(t.TempDir()).FindSourceDocuments("missing", "out.xlsx")
	assert.Error(t, err)
}

func TestPaths(t *testing.T) {
	files := []FileInfo{{Path: "/x/a.xlsx"}, {Path: "/x/b.xlsx"}}
	assert.Equal(t, []string{"/x/a.xlsx", "/x/b.xlsx"}, Paths(files))
}
