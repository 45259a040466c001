package bordereau

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	apperrors "bordereau/internal/errors"
)

// writeSample generates a workbook in dir and returns its path.
func writeSample(t *testing.T, dir, name string, ev SampleEvent) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, WriteSampleDocument(path, DefaultLayout(), ev))
	return path
}

// writeWithoutSentinel generates a workbook whose category table never
// terminates with the sentinel marker.
func writeWithoutSentinel(t *testing.T, dir, name string) string {
	t.Helper()
	layout := DefaultLayout()
	f := excelize.NewFile()
	defer f.Close()
	require.NoError(t, f.SetSheetName("Sheet1", layout.SheetName))
	require.NoError(t, f.SetCellValue(layout.SheetName, "B24", "Normal"))
	path := filepath.Join(dir, name)
	require.NoError(t, f.SaveAs(path))
	return path
}

func openSource(t *testing.T, path string) *SourceDocument {
	t.Helper()
	doc, err := OpenSource(path, DefaultLayout())
	require.NoError(t, err)
	t.Cleanup(func() { doc.Close() })
	return doc
}

func TestDiscoverSchema(t *testing.T) {
	dir := t.TempDir()
	doc := openSource(t, writeSample(t, dir, "event.xlsx", DefaultSampleEvent()))

	layout := DefaultLayout()
	schema, err := NewDiscoverer(layout).Discover(doc)
	require.NoError(t, err)

	// 3 categories plus the sentinel row itself.
	assert.Equal(t, 4, schema.PairCount)
	assert.Equal(t, layout.StaticCount(), schema.StaticCount)
	assert.Equal(t, layout.SummaryCount(), schema.SummaryCount)
	assert.Len(t, schema.Columns, schema.TotalColumns())

	assert.Equal(t, layout.StaticLabels, schema.Columns[:schema.StaticCount])
	assert.Equal(t, []string{
		"Normal", "Valor Normal",
		"Estudantes", "Valor Estudantes",
		"Seniores > 65", "Valor Seniores > 65",
		"Convites", "Valor Convites",
	}, schema.Columns[schema.StaticCount:schema.StaticCount+2*schema.PairCount])
	assert.Equal(t, []string{
		"Total Bilheteira", "Total Postos TL", "Total Internet",
		"Total de Bilhetes", "Valor Total", "Observação",
	}, schema.Columns[schema.StaticCount+2*schema.PairCount:])
}

func TestDiscoverSchemaSkipsBlankCategoryRows(t *testing.T) {
	ev := DefaultSampleEvent()
	ev.Categories = []SampleCategory{
		{Name: "Normal", Count: 100, Price: 12.0},
		{}, // blank row inside the table
		{Name: "Estudantes", Count: 30, Price: 6.0},
	}

	dir := t.TempDir()
	doc := openSource(t, writeSample(t, dir, "event.xlsx", ev))

	schema, err := NewDiscoverer(DefaultLayout()).Discover(doc)
	require.NoError(t, err)

	// Blank row contributes no pair: Normal, Estudantes, Convites.
	assert.Equal(t, 3, schema.PairCount)
	assert.NotContains(t, schema.Columns, "Valor ")
}

func TestDiscoverSentinelNotFound(t *testing.T) {
	dir := t.TempDir()
	doc := openSource(t, writeWithoutSentinel(t, dir, "broken.xlsx"))

	_, err := NewDiscoverer(DefaultLayout()).Discover(doc)
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeSentinelNotFound, apperrors.TypeOf(err))
}

func TestOpenSourceMissingSheet(t *testing.T) {
	f := excelize.NewFile()
	defer f.Close()
	path := filepath.Join(t.TempDir(), "nosheet.xlsx")
	require.NoError(t, f.SaveAs(path))

	_, err := OpenSource(path, DefaultLayout())
	require.Error(t, err)
	assert.Equal(t, apperrors.ErrTypeMissingSheet, apperrors.TypeOf(err))
}
