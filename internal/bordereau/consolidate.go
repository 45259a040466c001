package bordereau

import (
	"context"
	"log/slog"
	"path/filepath"
	"sort"

	apperrors "bordereau/internal/errors"
	"bordereau/internal/infrastructure"
	"bordereau/pkg/contracts/domain"
)

// ProgressFunc receives one update per processed document. total counts all
// documents of the run; processed and failed are running tallies.
type ProgressFunc func(processed, failed, total int, document string)

// Consolidator orchestrates one run: schema discovery from the first
// document, then sequential extraction of every document in sorted order.
// A failed document is logged, counted and skipped; only schema discovery
// failure aborts the run.
type Consolidator struct {
	layout     *Layout
	logger     *slog.Logger
	metrics    *infrastructure.BusinessMetrics
	discoverer *Discoverer
	extractor  *Extractor
}

// ConsolidatorOption configures a Consolidator.
type ConsolidatorOption func(*Consolidator)

// WithMetrics attaches per-document outcome metrics to the run.
func WithMetrics(m *infrastructure.BusinessMetrics) ConsolidatorOption {
	return func(c *Consolidator) {
		c.metrics = m
	}
}

// NewConsolidator creates a consolidator for the given layout.
func NewConsolidator(layout *Layout, logger *slog.Logger, opts ...ConsolidatorOption) *Consolidator {
	if logger == nil {
		logger = slog.Default()
	}
	c := &Consolidator{
		layout:     layout,
		logger:     logger,
		discoverer: NewDiscoverer(layout),
		extractor:  NewExtractor(layout, logger),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Run consolidates the given workbooks into one report. Documents are
// processed in sorted-filename order so repeated runs over the same input
// produce identical output. The returned report carries one result per
// document; failed documents contribute no row.
func (c *Consolidator) Run(ctx context.Context, paths []string, progress ProgressFunc) (*domain.Report, error) {
	if len(paths) == 0 {
		return nil, apperrors.NewValidationError("no source documents to consolidate")
	}

	sorted := make([]string, len(paths))
	copy(sorted, paths)
	sort.Slice(sorted, func(i, j int) bool {
		return filepath.Base(sorted[i]) < filepath.Base(sorted[j])
	})

	schema, err := c.discoverSchema(sorted[0])
	if err != nil {
		return nil, err
	}

	c.logger.InfoContext(ctx, "schema discovered",
		slog.String("document", filepath.Base(sorted[0])),
		slog.Int("columns", schema.TotalColumns()),
		slog.Int("category_pairs", schema.PairCount))

	report := &domain.Report{
		Header:  schema.Columns,
		Results: make([]domain.DocumentResult, 0, len(sorted)),
	}

	for _, path := range sorted {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		name := filepath.Base(path)
		row, err := c.extractDocument(path, schema)

		result := domain.DocumentResult{Document: name}
		if err != nil {
			result.Err = err
			result.Error = err.Error()
			report.Failed++
			c.logger.WarnContext(ctx, "document skipped",
				slog.String("document", name),
				slog.String("error_type", string(apperrors.TypeOf(err))),
				slog.Any("error", err))
		} else {
			result.Row = row
			report.Rows = append(report.Rows, row)
			report.Processed++
			c.logger.InfoContext(ctx, "document extracted",
				slog.String("document", name))
		}
		report.Results = append(report.Results, result)

		if c.metrics != nil {
			c.metrics.RecordDocumentOutcome(ctx, err == nil, string(apperrors.TypeOf(err)))
		}
		if progress != nil {
			progress(report.Processed, report.Failed, len(sorted), name)
		}
	}

	c.logger.InfoContext(ctx, "consolidation complete",
		slog.Int("processed", report.Processed),
		slog.Int("failed", report.Failed))

	return report, nil
}

// discoverSchema derives the schema from the first document of the run.
// Any failure here is wrapped as a header generation error and aborts the
// run before a report exists.
func (c *Consolidator) discoverSchema(path string) (*domain.Schema, error) {
	doc, err := OpenSource(path, c.layout)
	if err != nil {
		return nil, apperrors.NewHeaderGenerationError(err)
	}
	defer doc.Close()

	schema, err := c.discoverer.Discover(doc)
	if err != nil {
		return nil, apperrors.NewHeaderGenerationError(err)
	}
	return schema, nil
}

// extractDocument opens, extracts and closes a single document.
func (c *Consolidator) extractDocument(path string, schema *domain.Schema) (domain.Row, error) {
	doc, err := OpenSource(path, c.layout)
	if err != nil {
		return nil, err
	}
	defer doc.Close()

	return c.extractor.Extract(doc, schema)
}
