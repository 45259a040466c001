package bordereau

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bordereau/pkg/contracts/domain"
)

func timeParse(yyyymmdd string) (time.Time, error) {
	return time.Parse("2006-01-02", yyyymmdd)
}

func formatDayFirst(yyyymmdd string) string {
	t, _ := timeParse(yyyymmdd)
	return t.Format("02-01-2006")
}

func discoverFrom(t *testing.T, doc *SourceDocument) *domain.Schema {
	t.Helper()
	schema, err := NewDiscoverer(DefaultLayout()).Discover(doc)
	require.NoError(t, err)
	return schema
}

func TestExtractRow(t *testing.T) {
	dir := t.TempDir()
	doc := openSource(t, writeSample(t, dir, "event.xlsx", DefaultSampleEvent()))
	schema := discoverFrom(t, doc)

	row, err := NewExtractor(DefaultLayout(), nil).Extract(doc, schema)
	require.NoError(t, err)
	require.Len(t, row, schema.TotalColumns())

	assert.Equal(t, domain.Row{
		// Static region; month and weekday derive from the date field.
		"2024/001", "15-01-2024", "Janeiro", "Segunda-feira", "21:30",
		"A Noite dos Assassinos", "Teatro Municipal", "Teatro",
		"M/12", "Espetáculo", "220",
		// Category pairs; the sentinel row has no price.
		"120", "12", "40", "6", "25", "6", "15", "",
		// Summary metrics and observation.
		"1830", "240", "360", "200", "2430", "Sessão esgotada",
	}, row)
}

func TestExtractDateDecomposition(t *testing.T) {
	tests := []struct {
		name    string
		date    string // yyyy-mm-dd, written as a real date cell
		month   string
		weekday string
	}{
		{name: "monday in january", date: "2024-01-15", month: "Janeiro", weekday: "Segunda-feira"},
		{name: "sunday in december", date: "2023-12-31", month: "Dezembro", weekday: "Domingo"},
		{name: "saturday in august", date: "2026-08-29", month: "Agosto", weekday: "Sábado"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ev := DefaultSampleEvent()
			var err error
			ev.Date, err = timeParse(tt.date)
			require.NoError(t, err)

			dir := t.TempDir()
			doc := openSource(t, writeSample(t, dir, "event.xlsx", ev))
			schema := discoverFrom(t, doc)

			row, extractErr := NewExtractor(DefaultLayout(), nil).Extract(doc, schema)
			require.NoError(t, extractErr)

			assert.Equal(t, formatDayFirst(tt.date), row[1])
			assert.Equal(t, tt.month, row[2])
			assert.Equal(t, tt.weekday, row[3])
		})
	}
}

func TestExtractPadsShorterCategoryTable(t *testing.T) {
	dir := t.TempDir()

	// Schema comes from a document with three categories plus sentinel.
	schemaDoc := openSource(t, writeSample(t, dir, "full.xlsx", DefaultSampleEvent()))
	schema := discoverFrom(t, schemaDoc)

	short := DefaultSampleEvent()
	short.Categories = short.Categories[:1]
	shortDoc := openSource(t, writeSample(t, dir, "short.xlsx", short))

	row, err := NewExtractor(DefaultLayout(), nil).Extract(shortDoc, schema)
	require.NoError(t, err)
	require.Len(t, row, schema.TotalColumns())

	// Two pairs present (Normal plus sentinel), two pairs padded.
	dynamic := row[schema.StaticCount : schema.StaticCount+2*schema.PairCount]
	assert.Equal(t, domain.Row{"120", "12", "15", "", "", "", "", ""}, dynamic)

	// Summary columns stay aligned after the padding.
	assert.Equal(t, "Sessão esgotada", row[len(row)-1])
}

func TestExtractTruncatesLongerCategoryTable(t *testing.T) {
	dir := t.TempDir()

	short := DefaultSampleEvent()
	short.Categories = short.Categories[:1]
	schemaDoc := openSource(t, writeSample(t, dir, "short.xlsx", short))
	schema := discoverFrom(t, schemaDoc)

	longDoc := openSource(t, writeSample(t, dir, "full.xlsx", DefaultSampleEvent()))

	row, err := NewExtractor(DefaultLayout(), nil).Extract(longDoc, schema)
	require.NoError(t, err)
	require.Len(t, row, schema.TotalColumns())
	assert.Equal(t, "Sessão esgotada", row[len(row)-1])
}

func TestExtractSummaryOffsets(t *testing.T) {
	// Sentinel lands on row 24+3 = 27; summary at 29, observation at 32.
	dir := t.TempDir()
	doc := openSource(t, writeSample(t, dir, "event.xlsx", DefaultSampleEvent()))

	sentinelRow, err := findSentinelRow(doc, DefaultLayout())
	require.NoError(t, err)
	assert.Equal(t, 27, sentinelRow)

	obs, err := doc.Value(CellAddress{Col: 2, Row: sentinelRow + 5})
	require.NoError(t, err)
	assert.Equal(t, "Sessão esgotada", obs)

	total, err := doc.Value(CellAddress{Col: 6, Row: sentinelRow + 2})
	require.NoError(t, err)
	assert.Equal(t, "1830", total)
}

func TestExtractSentinelNotFound(t *testing.T) {
	dir := t.TempDir()
	schemaDoc := openSource(t, writeSample(t, dir, "ok.xlsx", DefaultSampleEvent()))
	schema := discoverFrom(t, schemaDoc)

	broken := openSource(t, writeWithoutSentinel(t, dir, "broken.xlsx"))
	_, err := NewExtractor(DefaultLayout(), nil).Extract(broken, schema)
	require.Error(t, err)
}
