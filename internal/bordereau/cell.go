package bordereau

import (
	"fmt"

	"github.com/xuri/excelize/v2"
)

// CellAddress is an immutable (column, row) pair, both 1-based.
type CellAddress struct {
	Col int
	Row int
}

// ParseCellRef converts a human-readable reference such as "F17" into a
// CellAddress.
func ParseCellRef(ref string) (CellAddress, error) {
	col, row, err := excelize.CellNameToCoordinates(ref)
	if err != nil {
		return CellAddress{}, fmt.Errorf("invalid cell reference %q: %w", ref, err)
	}
	return CellAddress{Col: col, Row: row}, nil
}

// CellAt builds an address from column letters and a row number.
func CellAt(columnLetters string, row int) (CellAddress, error) {
	col, err := excelize.ColumnNameToNumber(columnLetters)
	if err != nil {
		return CellAddress{}, fmt.Errorf("invalid column %q: %w", columnLetters, err)
	}
	if row < 1 {
		return CellAddress{}, fmt.Errorf("invalid row %d", row)
	}
	return CellAddress{Col: col, Row: row}, nil
}

// Ref returns the human-readable form of the address, e.g. "F17".
func (a CellAddress) Ref() string {
	ref, err := excelize.CoordinatesToCellName(a.Col, a.Row)
	if err != nil {
		return fmt.Sprintf("R%dC%d", a.Row, a.Col)
	}
	return ref
}

// String implements fmt.Stringer.
func (a CellAddress) String() string {
	return a.Ref()
}
