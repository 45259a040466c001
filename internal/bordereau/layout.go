// Package bordereau implements the consolidation core: schema discovery,
// record extraction and the run orchestration that turns a folder of
// per-event ticket-sales workbooks into a single bordereau report.
package bordereau

// StaticField binds one fixed source cell to its output column. Output
// columns are 1-based; columns without a source cell (month and weekday)
// are computed during extraction.
type StaticField struct {
	Column int
	Cell   string
}

// Layout is the immutable coordinate map of a source workbook. It is
// injected into the discoverer, the extractor and the consolidator so the
// core carries no package-level mutable state.
type Layout struct {
	// SheetName is the single sheet read from every source document.
	SheetName string
	// OutputSheetName is the sheet the consolidated report is written to.
	OutputSheetName string

	// StaticLabels are the fixed header labels of the static region, in
	// output column order.
	StaticLabels []string
	// StaticFields maps source cells to static output columns.
	StaticFields []StaticField
	// MonthColumn and WeekdayColumn receive the localized month and
	// weekday names derived from any date-valued static field.
	MonthColumn   int
	WeekdayColumn int

	// CategoryFirstRow is the first row of the category table.
	CategoryFirstRow int
	// SentinelMarker ends the category table; SentinelScanLimit bounds
	// the search for it.
	SentinelMarker    string
	SentinelScanLimit int
	// LabelColumn holds category names, CountColumn and PriceColumn the
	// per-category values read during extraction.
	LabelColumn string
	CountColumn string
	PriceColumn string
	// ValueLabelPrefix prefixes the second label of each category pair.
	ValueLabelPrefix string

	// SummaryRowOffset is added to the sentinel row to find the summary
	// metrics; SummaryColumns lists their columns in output order.
	SummaryRowOffset int
	SummaryColumns   []string
	SummaryLabels    []string
	// ObservationOffset is added to the sentinel row to find the free-text
	// observation field.
	ObservationOffset int
	ObservationColumn string
	ObservationLabel  string

	// Months is 1-indexed by calendar month, Weekdays 0-indexed with
	// Monday first.
	Months   []string
	Weekdays []string
	// DateFormat renders date-valued fields, Go reference-time layout.
	DateFormat string
}

// DefaultLayout returns the layout of the theatre box-office workbooks the
// system was built for.
func DefaultLayout() *Layout {
	return &Layout{
		SheetName:       "Folha1",
		OutputSheetName: "Bordereaux_Geral",

		StaticLabels: []string{
			"Nº Registo", "Data", "Mês", "Dia da Semana", "Hora",
			"Nome do Espetáculo", "Local", "Atividade",
			"Classificação Etária", "Evento", "Lotação Máxima",
		},
		StaticFields: []StaticField{
			{Column: 1, Cell: "F1"},
			{Column: 2, Cell: "F5"},
			{Column: 5, Cell: "F7"},
			{Column: 6, Cell: "F3"},
			{Column: 7, Cell: "F15"},
			{Column: 8, Cell: "F13"},
			{Column: 9, Cell: "F9"},
			{Column: 10, Cell: "F11"},
			{Column: 11, Cell: "F17"},
		},
		MonthColumn:   3,
		WeekdayColumn: 4,

		CategoryFirstRow:  24,
		SentinelMarker:    "Convites",
		SentinelScanLimit: 99,
		LabelColumn:       "B",
		CountColumn:       "D",
		PriceColumn:       "E",
		ValueLabelPrefix:  "Valor ",

		SummaryRowOffset: 2,
		SummaryColumns:   []string{"F", "H", "J", "D", "E"},
		SummaryLabels: []string{
			"Total Bilheteira", "Total Postos TL", "Total Internet",
			"Total de Bilhetes", "Valor Total",
		},
		ObservationOffset: 5,
		ObservationColumn: "B",
		ObservationLabel:  "Observação",

		Months: []string{
			"Janeiro", "Fevereiro", "Março", "Abril", "Maio", "Junho",
			"Julho", "Agosto", "Setembro", "Outubro", "Novembro", "Dezembro",
		},
		Weekdays: []string{
			"Segunda-feira", "Terça-feira", "Quarta-feira",
			"Quinta-feira", "Sexta-feira", "Sábado", "Domingo",
		},
		DateFormat: "02-01-2006",
	}
}

// StaticCount returns the number of static header labels.
func (l *Layout) StaticCount() int {
	return len(l.StaticLabels)
}

// SummaryCount returns the number of summary labels including the
// observation field.
func (l *Layout) SummaryCount() int {
	return len(l.SummaryLabels) + 1
}
