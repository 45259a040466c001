package exporter

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"bordereau/pkg/contracts/domain"
)

func sampleReport() *domain.Report {
	return &domain.Report{
		Header: []string{"Nº Registo", "Data", "Valor Total"},
		Rows: []domain.Row{
			{"2024/001", "15-01-2024", "2430"},
			{"2024/002", "16-01-2024", "980"},
		},
		Processed: 2,
	}
}

func TestXLSXWriterWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "report.xlsx")
	w := NewXLSXWriter("Bordereaux_Geral", nil)
	require.NoError(t, w.Write(path, sampleReport()))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bordereaux_Geral")
	require.NoError(t, err)
	require.Len(t, rows, 3)

	assert.Equal(t, []string{"Nº Registo", "Data", "Valor Total"}, rows[0])
	assert.Equal(t, []string{"2024/001", "15-01-2024", "2430"}, rows[1])
	assert.Equal(t, []string{"2024/002", "16-01-2024", "980"}, rows[2])
}

func TestXLSXWriterHeaderOnly(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.xlsx")
	report := &domain.Report{Header: []string{"A", "B"}}
	require.NoError(t, NewXLSXWriter("Bordereaux_Geral", nil).Write(path, report))

	f, err := excelize.OpenFile(path)
	require.NoError(t, err)
	defer f.Close()

	rows, err := f.GetRows("Bordereaux_Geral")
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, []string{"A", "B"}, rows[0])
}

func TestXLSXWriterIdempotent(t *testing.T) {
	dir := t.TempDir()
	w := NewXLSXWriter("Bordereaux_Geral", nil)

	first := filepath.Join(dir, "one.xlsx")
	second := filepath.Join(dir, "two.xlsx")
	require.NoError(t, w.Write(first, sampleReport()))
	require.NoError(t, w.Write(second, sampleReport()))

	readAll := func(path string) [][]string {
		f, err := excelize.OpenFile(path)
		require.NoError(t, err)
		defer f.Close()
		rows, err := f.GetRows("Bordereaux_Geral")
		require.NoError(t, err)
		return rows
	}
	assert.Equal(t, readAll(first), readAll(second))
}
