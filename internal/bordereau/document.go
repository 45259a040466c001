package bordereau

import (
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "bordereau/internal/errors"
)

// SourceDocument is a read-only handle to one per-event workbook. All cell
// reads target the single sheet named by the layout.
type SourceDocument struct {
	path  string
	sheet string
	file  *excelize.File
}

// OpenSource opens a workbook and verifies the required sheet exists.
// A missing sheet yields a MissingSheetError so the caller can skip the
// document and continue the run.
func OpenSource(path string, layout *Layout) (*SourceDocument, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, apperrors.NewParsingError("failed to open workbook", err).
			WithContext("document", filepath.Base(path))
	}

	idx, err := f.GetSheetIndex(layout.SheetName)
	if err != nil || idx < 0 {
		f.Close()
		return nil, apperrors.NewMissingSheetError(layout.SheetName, filepath.Base(path))
	}

	return &SourceDocument{
		path:  path,
		sheet: layout.SheetName,
		file:  f,
	}, nil
}

// Close releases the underlying workbook.
func (d *SourceDocument) Close() error {
	return d.file.Close()
}

// Path returns the full path the document was opened from.
func (d *SourceDocument) Path() string {
	return d.path
}

// Name returns the document's base filename, used in logs and errors.
func (d *SourceDocument) Name() string {
	return filepath.Base(d.path)
}

// Value returns the formatted cell value at the given address. Absent
// cells read as the empty string.
func (d *SourceDocument) Value(addr CellAddress) (string, error) {
	v, err := d.file.GetCellValue(d.sheet, addr.Ref())
	if err != nil {
		return "", apperrors.NewParsingError("failed to read cell "+addr.Ref(), err).
			WithContext("document", d.Name())
	}
	return strings.TrimSpace(v), nil
}

// TimeValue reports whether the cell holds a date and, if so, returns it.
// A cell is a date when it stores a numeric serial under a date number
// format.
func (d *SourceDocument) TimeValue(addr CellAddress) (time.Time, bool) {
	raw, err := d.file.GetCellValue(d.sheet, addr.Ref(), excelize.Options{RawCellValue: true})
	if err != nil {
		return time.Time{}, false
	}

	serial, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return time.Time{}, false
	}

	styleID, err := d.file.GetCellStyle(d.sheet, addr.Ref())
	if err != nil {
		return time.Time{}, false
	}
	style, err := d.file.GetStyle(styleID)
	if err != nil || !isDateNumFmt(style) {
		return time.Time{}, false
	}

	t, err := excelize.ExcelDateToTime(serial, false)
	if err != nil {
		return time.Time{}, false
	}
	return t, true
}

// isDateNumFmt reports whether a style renders numbers as dates or times.
func isDateNumFmt(style *excelize.Style) bool {
	if style == nil {
		return false
	}
	if style.CustomNumFmt != nil {
		return strings.ContainsAny(strings.ToLower(*style.CustomNumFmt), "ymdh")
	}
	// Built-in date and time format ranges.
	switch {
	case style.NumFmt >= 14 && style.NumFmt <= 22:
		return true
	case style.NumFmt >= 27 && style.NumFmt <= 36:
		return true
	case style.NumFmt >= 45 && style.NumFmt <= 47:
		return true
	case style.NumFmt >= 50 && style.NumFmt <= 58:
		return true
	}
	return false
}
