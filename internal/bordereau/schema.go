package bordereau

import (
	apperrors "bordereau/internal/errors"
	"bordereau/pkg/contracts/domain"
)

// Discoverer derives the report schema from the category table of a single
// source document.
type Discoverer struct {
	layout *Layout
}

// NewDiscoverer creates a schema discoverer for the given layout.
func NewDiscoverer(layout *Layout) *Discoverer {
	return &Discoverer{layout: layout}
}

// findSentinelRow scans the label column top-down for the exact sentinel
// marker and returns its row. The scan is bounded; not finding the marker
// within the bound yields a SentinelNotFoundError.
func findSentinelRow(doc *SourceDocument, layout *Layout) (int, error) {
	for row := layout.CategoryFirstRow; row <= layout.SentinelScanLimit; row++ {
		addr, err := CellAt(layout.LabelColumn, row)
		if err != nil {
			return 0, err
		}
		v, err := doc.Value(addr)
		if err != nil {
			return 0, err
		}
		if v == layout.SentinelMarker {
			return row, nil
		}
	}
	return 0, apperrors.NewSentinelNotFoundError(
		layout.SentinelMarker, layout.CategoryFirstRow, layout.SentinelScanLimit, doc.Name())
}

// Discover builds the ordered column schema: the fixed static labels, one
// name/value label pair per non-empty category row up to and including the
// sentinel row, and the fixed summary labels.
func (d *Discoverer) Discover(doc *SourceDocument) (*domain.Schema, error) {
	sentinelRow, err := findSentinelRow(doc, d.layout)
	if err != nil {
		return nil, err
	}

	columns := make([]string, 0, d.layout.StaticCount()+d.layout.SummaryCount())
	columns = append(columns, d.layout.StaticLabels...)

	pairs := 0
	for row := d.layout.CategoryFirstRow; row <= sentinelRow; row++ {
		addr, err := CellAt(d.layout.LabelColumn, row)
		if err != nil {
			return nil, err
		}
		name, err := doc.Value(addr)
		if err != nil {
			return nil, err
		}
		// Blank category rows contribute no columns. Extraction skips
		// them the same way so rows stay aligned with the header.
		if name == "" {
			continue
		}
		columns = append(columns, name, d.layout.ValueLabelPrefix+name)
		pairs++
	}

	columns = append(columns, d.layout.SummaryLabels...)
	columns = append(columns, d.layout.ObservationLabel)

	return &domain.Schema{
		Columns:      columns,
		StaticCount:  d.layout.StaticCount(),
		PairCount:    pairs,
		SummaryCount: d.layout.SummaryCount(),
	}, nil
}
