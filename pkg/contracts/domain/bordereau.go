// Package domain holds the data types shared by the consolidation core,
// the exporters and the transport layer.
package domain

// SchemaRegion identifies one of the three contiguous label regions of the
// report schema.
type SchemaRegion string

const (
	RegionStatic  SchemaRegion = "static"
	RegionDynamic SchemaRegion = "dynamic"
	RegionSummary SchemaRegion = "summary"
)

// Schema is the ordered list of report column labels, derived once per
// consolidation run from the first source document. Columns are
// partitioned into three contiguous regions: static event-metadata labels,
// category name/value pairs discovered from the document's category table,
// and trailing summary labels.
type Schema struct {
	Columns      []string `json:"columns"`
	StaticCount  int      `json:"static_count"`
	PairCount    int      `json:"pair_count"`
	SummaryCount int      `json:"summary_count"`
}

// TotalColumns returns the expected column count:
// static + 2*pairs + summary.
func (s *Schema) TotalColumns() int {
	return s.StaticCount + 2*s.PairCount + s.SummaryCount
}

// Row is one extracted report row. Values are the formatted cell contents;
// an empty string marks an absent value. len(Row) always equals the
// schema's total column count.
type Row []string

// DocumentResult is the tagged outcome of extracting one source document:
// either a row or an error, never both.
type DocumentResult struct {
	Document string `json:"document"`
	Row      Row    `json:"row,omitempty"`
	Err      error  `json:"-"`
	Error    string `json:"error,omitempty"`
}

// Succeeded reports whether the document contributed a row.
func (r DocumentResult) Succeeded() bool {
	return r.Err == nil
}

// Report is the consolidated bordereau: one header plus one row per
// successfully extracted document, in sorted-filename order.
type Report struct {
	Header    []string         `json:"header"`
	Rows      []Row            `json:"rows"`
	Results   []DocumentResult `json:"results"`
	Processed int              `json:"processed"`
	Failed    int              `json:"failed"`
}
