package bordereau

import (
	"fmt"
	"time"

	"github.com/xuri/excelize/v2"

	apperrors "bordereau/internal/errors"
)

// SampleCategory is one category row of a generated workbook. An empty
// Name produces a blank row in the category table.
type SampleCategory struct {
	Name  string
	Count int
	Price float64
}

// SampleEvent describes the contents of a generated demo workbook, laid
// out the way a real box-office export is.
type SampleEvent struct {
	Registration string
	Date         time.Time
	Hour         string
	Name         string
	Venue        string
	Activity     string
	AgeRating    string
	EventType    string
	Capacity     int

	Categories []SampleCategory
	Invites    int

	TotalBoxOffice float64
	TotalOutlets   float64
	TotalInternet  float64
	TotalTickets   int
	TotalValue     float64
	Observation    string
}

// DefaultSampleEvent returns a populated demo event.
func DefaultSampleEvent() SampleEvent {
	return SampleEvent{
		Registration: "2024/001",
		Date:         time.Date(2024, time.January, 15, 0, 0, 0, 0, time.UTC),
		Hour:         "21:30",
		Name:         "A Noite dos Assassinos",
		Venue:        "Teatro Municipal",
		Activity:     "Teatro",
		AgeRating:    "M/12",
		EventType:    "Espetáculo",
		Capacity:     220,
		Categories: []SampleCategory{
			{Name: "Normal", Count: 120, Price: 12.0},
			{Name: "Estudantes", Count: 40, Price: 6.0},
			{Name: "Seniores > 65", Count: 25, Price: 6.0},
		},
		Invites:        15,
		TotalBoxOffice: 1830.0,
		TotalOutlets:   240.0,
		TotalInternet:  360.0,
		TotalTickets:   200,
		TotalValue:     2430.0,
		Observation:    "Sessão esgotada",
	}
}

// WriteSampleDocument generates one source workbook at path, populated
// from ev according to the layout. Used by the demo command and by tests.
func WriteSampleDocument(path string, layout *Layout, ev SampleEvent) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", layout.SheetName); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	set := func(cell string, value interface{}) error {
		return f.SetCellValue(layout.SheetName, cell, value)
	}

	static := map[string]interface{}{
		"F1":  ev.Registration,
		"F5":  ev.Date,
		"F7":  ev.Hour,
		"F3":  ev.Name,
		"F15": ev.Venue,
		"F13": ev.Activity,
		"F9":  ev.AgeRating,
		"F11": ev.EventType,
		"F17": ev.Capacity,
	}
	for cell, value := range static {
		if err := set(cell, value); err != nil {
			return apperrors.NewOutputWriteError(path, err)
		}
	}

	row := layout.CategoryFirstRow
	for _, cat := range ev.Categories {
		if cat.Name != "" {
			if err := writeCategoryRow(f, layout, row, cat.Name, cat.Count, cat.Price); err != nil {
				return apperrors.NewOutputWriteError(path, err)
			}
		}
		row++
	}

	// The sentinel row is itself a category row counting invitations.
	sentinelRow := row
	if err := writeCategoryRow(f, layout, sentinelRow, layout.SentinelMarker, ev.Invites, 0); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	summaryRow := sentinelRow + layout.SummaryRowOffset
	summary := []interface{}{
		ev.TotalBoxOffice, ev.TotalOutlets, ev.TotalInternet, ev.TotalTickets, ev.TotalValue,
	}
	for i, col := range layout.SummaryColumns {
		if err := set(fmt.Sprintf("%s%d", col, summaryRow), summary[i]); err != nil {
			return apperrors.NewOutputWriteError(path, err)
		}
	}

	obsCell := fmt.Sprintf("%s%d", layout.ObservationColumn, sentinelRow+layout.ObservationOffset)
	if err := set(obsCell, ev.Observation); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}

	if err := f.SaveAs(path); err != nil {
		return apperrors.NewOutputWriteError(path, err)
	}
	return nil
}

func writeCategoryRow(f *excelize.File, layout *Layout, row int, name string, count int, price float64) error {
	if err := f.SetCellValue(layout.SheetName, fmt.Sprintf("%s%d", layout.LabelColumn, row), name); err != nil {
		return err
	}
	if err := f.SetCellValue(layout.SheetName, fmt.Sprintf("%s%d", layout.CountColumn, row), count); err != nil {
		return err
	}
	if price != 0 {
		return f.SetCellValue(layout.SheetName, fmt.Sprintf("%s%d", layout.PriceColumn, row), price)
	}
	return nil
}
