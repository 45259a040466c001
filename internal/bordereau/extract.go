package bordereau

import (
	"log/slog"

	"bordereau/pkg/contracts/domain"
)

// Extractor produces one report row per source document, aligned to a
// schema discovered from the first document of the run.
type Extractor struct {
	layout *Layout
	logger *slog.Logger
}

// NewExtractor creates a record extractor for the given layout.
func NewExtractor(layout *Layout, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{layout: layout, logger: logger}
}

// Extract reads one document and returns its row. The sentinel row is
// re-located per document because category tables differ in length; the
// dynamic region is then padded or truncated to the schema's pair count so
// that len(row) == schema.TotalColumns() always holds and the summary
// columns never shift.
func (e *Extractor) Extract(doc *SourceDocument, schema *domain.Schema) (domain.Row, error) {
	sentinelRow, err := findSentinelRow(doc, e.layout)
	if err != nil {
		return nil, err
	}

	row := make(domain.Row, schema.TotalColumns())

	if err := e.extractStatic(doc, row); err != nil {
		return nil, err
	}
	if err := e.extractCategories(doc, schema, sentinelRow, row); err != nil {
		return nil, err
	}
	if err := e.extractSummary(doc, schema, sentinelRow, row); err != nil {
		return nil, err
	}

	return row, nil
}

// extractStatic fills the static region from the fixed source cells. A
// date-valued field is rendered with the layout's date format and
// additionally drives the month and weekday columns, whichever field it
// came from.
func (e *Extractor) extractStatic(doc *SourceDocument, row domain.Row) error {
	for _, field := range e.layout.StaticFields {
		addr, err := ParseCellRef(field.Cell)
		if err != nil {
			return err
		}

		if t, ok := doc.TimeValue(addr); ok {
			row[field.Column-1] = t.Format(e.layout.DateFormat)
			row[e.layout.MonthColumn-1] = e.layout.Months[int(t.Month())-1]
			// time.Weekday is Sunday-based, the name table Monday-based.
			row[e.layout.WeekdayColumn-1] = e.layout.Weekdays[(int(t.Weekday())+6)%7]
			continue
		}

		v, err := doc.Value(addr)
		if err != nil {
			return err
		}
		row[field.Column-1] = v
	}
	return nil
}

// extractCategories fills the dynamic region with one count/price pair per
// non-empty category row, matching the rows the discoverer counted.
func (e *Extractor) extractCategories(doc *SourceDocument, schema *domain.Schema, sentinelRow int, row domain.Row) error {
	values := make([]string, 0, 2*schema.PairCount)

	for r := e.layout.CategoryFirstRow; r <= sentinelRow; r++ {
		labelAddr, err := CellAt(e.layout.LabelColumn, r)
		if err != nil {
			return err
		}
		name, err := doc.Value(labelAddr)
		if err != nil {
			return err
		}
		if name == "" {
			continue
		}

		countAddr, err := CellAt(e.layout.CountColumn, r)
		if err != nil {
			return err
		}
		count, err := doc.Value(countAddr)
		if err != nil {
			return err
		}

		priceAddr, err := CellAt(e.layout.PriceColumn, r)
		if err != nil {
			return err
		}
		price, err := doc.Value(priceAddr)
		if err != nil {
			return err
		}

		values = append(values, count, price)
	}

	if len(values) != 2*schema.PairCount {
		e.logger.Warn("category table differs from schema document, realigning",
			slog.String("document", doc.Name()),
			slog.Int("document_pairs", len(values)/2),
			slog.Int("schema_pairs", schema.PairCount))
	}

	for i := 0; i < 2*schema.PairCount; i++ {
		if i < len(values) {
			row[schema.StaticCount+i] = values[i]
		}
	}
	return nil
}

// extractSummary fills the trailing summary region: five metrics two rows
// below the sentinel, plus the observation field five rows below it.
func (e *Extractor) extractSummary(doc *SourceDocument, schema *domain.Schema, sentinelRow int, row domain.Row) error {
	base := schema.StaticCount + 2*schema.PairCount
	summaryRow := sentinelRow + e.layout.SummaryRowOffset

	for i, col := range e.layout.SummaryColumns {
		addr, err := CellAt(col, summaryRow)
		if err != nil {
			return err
		}
		v, err := doc.Value(addr)
		if err != nil {
			return err
		}
		row[base+i] = v
	}

	obsAddr, err := CellAt(e.layout.ObservationColumn, sentinelRow+e.layout.ObservationOffset)
	if err != nil {
		return err
	}
	obs, err := doc.Value(obsAddr)
	if err != nil {
		return err
	}
	row[base+len(e.layout.SummaryColumns)] = obs

	return nil
}
