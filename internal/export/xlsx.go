package export

import (
	"fmt"
	"io"
	"time"

	"github.com/xuri/excelize/v2"

	"github.com/gemeindetools/planweb/internal/german"
	"github.com/gemeindetools/planweb/internal/plan"
)

// Each location occupies a 4-column block; each occurrence a 2-row block:
//
//	time      | sermon | communion | organist
//	occasion  |        | baptism   | music
const columnsPerLocation = 4

type xlsxStyles struct {
	header       int
	headerBottom int
	headerLeft   int
	headerBoth   int
	day          int
	dayBottom    int
	cell         int
	cellBottom   int
	cellLeft     int
	cellBoth     int
}

// WritePlanXlsx renders the plan table as the admin overview spreadsheet:
// one sheet named after the month, a day column, and per location a block of
// time/sermon/communion/organist columns.
func WritePlanXlsx(w io.Writer, table *plan.Table, from time.Time) error {
	f := excelize.NewFile()
	defer f.Close()

	sheet := german.MonthYear(from)
	if err := f.SetSheetName(f.GetSheetName(0), sheet); err != nil {
		return fmt.Errorf("rename sheet: %w", err)
	}

	styles, err := newXlsxStyles(f)
	if err != nil {
		return err
	}

	if err := f.SetColWidth(sheet, "A", "A", 20); err != nil {
		return fmt.Errorf("set day column width: %w", err)
	}

	if err := writeXlsxHeader(f, sheet, table.Locations, styles); err != nil {
		return err
	}

	row := 4 // first data row, after the three header rows
	for _, planRow := range table.Rows {
		height := maxOccurrences(planRow, table.Locations)

		if err := setCell(f, sheet, 1, row, planRow.ShortDay, styles.day); err != nil {
			return err
		}
		if err := setCell(f, sheet, 1, row+1, planRow.SpecialDayName, styles.dayBottom); err != nil {
			return err
		}

		for locationIndex, location := range table.Locations {
			baseCol := 2 + locationIndex*columnsPerLocation
			cell := planRow.Cells[location]

			for slot := 0; slot < height; slot++ {
				top, bottom := occurrenceLines(cell, slot)
				for offset := 0; offset < columnsPerLocation; offset++ {
					style := styles.cell
					if offset == 0 {
						style = styles.cellLeft
					}
					if err := setCell(f, sheet, baseCol+offset, row+slot*2, top[offset], style); err != nil {
						return err
					}

					style = styles.cellBottom
					if offset == 0 {
						style = styles.cellBoth
					}
					if err := setCell(f, sheet, baseCol+offset, row+slot*2+1, bottom[offset], style); err != nil {
						return err
					}
				}
			}
		}

		row += 2 * height
	}

	if err := f.Write(w); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

func writeXlsxHeader(f *excelize.File, sheet string, locations []string, styles xlsxStyles) error {
	topLabels := []string{"Uhr-", "Prediger", "Abm", "Organist"}
	bottomLabels := []string{"zeit", "", "Taufe", "Musik"}

	for locationIndex, location := range locations {
		baseCol := 2 + locationIndex*columnsPerLocation

		if err := setCell(f, sheet, baseCol, 1, location, styles.headerLeft); err != nil {
			return err
		}
		for offset, label := range topLabels {
			style := styles.header
			if offset == 0 {
				style = styles.headerLeft
			}
			if err := setCell(f, sheet, baseCol+offset, 2, label, style); err != nil {
				return err
			}
		}
		for offset, label := range bottomLabels {
			style := styles.headerBottom
			if offset == 0 {
				style = styles.headerBoth
			}
			if err := setCell(f, sheet, baseCol+offset, 3, label, style); err != nil {
				return err
			}
		}
	}
	return nil
}

// occurrenceLines returns the two 4-column lines of one occurrence slot,
// empty strings when the location has fewer occurrences than the day's
// tallest cell.
func occurrenceLines(cell *plan.Cell, slot int) (top, bottom [columnsPerLocation]string) {
	if cell == nil || slot >= cell.Len() {
		return top, bottom
	}
	top = [columnsPerLocation]string{cell.ShortTime[slot], cell.PredigtLastname[slot], cell.Abendmahl[slot], cell.OrganistLastname[slot]}
	bottom = [columnsPerLocation]string{cell.ShortName[slot], "", cell.Taufe[slot], cell.Musik[slot]}
	return top, bottom
}

func maxOccurrences(row *plan.Row, locations []string) int {
	height := 1
	for _, location := range locations {
		if cell, ok := row.Cells[location]; ok && cell.Len() > height {
			height = cell.Len()
		}
	}
	return height
}

func setCell(f *excelize.File, sheet string, col, row int, value string, style int) error {
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return err
	}
	if err := f.SetCellStr(sheet, name, value); err != nil {
		return fmt.Errorf("set cell %s: %w", name, err)
	}
	if err := f.SetCellStyle(sheet, name, name, style); err != nil {
		return fmt.Errorf("style cell %s: %w", name, err)
	}
	return nil
}

func newXlsxStyles(f *excelize.File) (xlsxStyles, error) {
	bold := &excelize.Font{Bold: true}
	thin := func(sides ...string) []excelize.Border {
		var borders []excelize.Border
		for _, side := range []string{"top", "left", "bottom", "right"} {
			borders = append(borders, excelize.Border{Type: side, Style: 1, Color: "000000"})
		}
		for _, side := range sides {
			for i := range borders {
				if borders[i].Type == side {
					borders[i].Style = 2
				}
			}
		}
		return borders
	}

	var (
		styles xlsxStyles
		err    error
	)
	if styles.header, err = f.NewStyle(&excelize.Style{Font: bold}); err != nil {
		return styles, err
	}
	if styles.headerBottom, err = f.NewStyle(&excelize.Style{Font: bold, Border: []excelize.Border{{Type: "bottom", Style: 2, Color: "000000"}}}); err != nil {
		return styles, err
	}
	if styles.headerLeft, err = f.NewStyle(&excelize.Style{Font: bold, Border: []excelize.Border{{Type: "left", Style: 2, Color: "000000"}}}); err != nil {
		return styles, err
	}
	if styles.headerBoth, err = f.NewStyle(&excelize.Style{Font: bold, Border: []excelize.Border{
		{Type: "bottom", Style: 2, Color: "000000"},
		{Type: "left", Style: 2, Color: "000000"},
	}}); err != nil {
		return styles, err
	}
	if styles.day, err = f.NewStyle(&excelize.Style{Font: bold, Border: thin()}); err != nil {
		return styles, err
	}
	if styles.dayBottom, err = f.NewStyle(&excelize.Style{Font: bold, Border: thin("bottom")}); err != nil {
		return styles, err
	}
	if styles.cell, err = f.NewStyle(&excelize.Style{Border: thin()}); err != nil {
		return styles, err
	}
	if styles.cellBottom, err = f.NewStyle(&excelize.Style{Border: thin("bottom")}); err != nil {
		return styles, err
	}
	if styles.cellLeft, err = f.NewStyle(&excelize.Style{Border: thin("left")}); err != nil {
		return styles, err
	}
	if styles.cellBoth, err = f.NewStyle(&excelize.Style{Border: thin("bottom", "left")}); err != nil {
		return styles, err
	}
	return styles, nil
}
