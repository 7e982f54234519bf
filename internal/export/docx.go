// Package export renders the aggregated monthly plan into its download
// formats: a word-processor document for the congregation printout, a
// spreadsheet for the admin overview, and a VCF contact export.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/fumiama/go-docx"

	"github.com/gemeindetools/planweb/internal/german"
	"github.com/gemeindetools/planweb/internal/plan"
)

// Font sizes in half-points.
const (
	headingSize = "64"
	bodySize    = "30"
	footerSize  = "22"
)

// PlanFilename returns the download name for a plan export, e.g.
// "Monatsplan_2024_Dezember.docx".
func PlanFilename(from time.Time, extension string) string {
	return fmt.Sprintf("Monatsplan_%s_%s.%s", from.Format("2006"), german.MonthName(from.Month()), extension)
}

// WritePlanDocx renders the plan table as the print-ready congregation
// document: a heading, one table row per day with one column per location,
// and the configured footer lines.
func WritePlanDocx(w io.Writer, table *plan.Table, from time.Time, footerTexts []string) error {
	doc := docx.New().WithDefaultTheme()

	heading := doc.AddParagraph()
	heading.AddText("Unsere Gottesdienste im " + german.MonthYear(from)).
		Size(headingSize).Color("000000").Bold()

	tbl := doc.AddTable(len(table.Rows)+1, len(table.Locations)+1, 0, nil)

	header := tbl.TableRows[0]
	for i, location := range table.Locations {
		header.TableCells[i+1].AddParagraph().AddText(location).Size(bodySize).Bold()
	}

	for rowNo, row := range table.Rows {
		cells := tbl.TableRows[rowNo+1].TableCells

		dayCell := cells[0]
		dayCell.AddParagraph().AddText(row.ShortDay).Size(bodySize).Bold()
		if row.SpecialDayName != "" {
			dayCell.AddParagraph().AddText(row.SpecialDayName).Size(bodySize).Bold()
		}

		for i, location := range table.Locations {
			cell, ok := row.Cells[location]
			if !ok {
				continue
			}
			writeDocxEntries(cells[i+1], cell)
		}
	}

	for _, footer := range footerTexts {
		doc.AddParagraph().AddText(footer).Size(footerSize)
	}

	_, err := doc.WriteTo(w)
	return err
}

// writeDocxEntries fills one table cell with the occurrences of a (day,
// location) pair: a bold time/occasion line, then the special-service and
// sermon lines where present.
func writeDocxEntries(target *docx.WTableCell, cell *plan.Cell) {
	for i := 0; i < cell.Len(); i++ {
		line := cell.ShortTime[i]
		if cell.ShortName[i] != "" {
			line += " " + cell.ShortName[i]
		}
		target.AddParagraph().AddText(line).Size(bodySize).Bold()

		if cell.SpecialService[i] != "" {
			target.AddParagraph().AddText(" " + cell.SpecialService[i]).Size(bodySize)
		}
		if cell.Predigt[i] != "" {
			target.AddParagraph().AddText("(" + cell.Predigt[i] + ")").Size(bodySize)
		}
	}
}
