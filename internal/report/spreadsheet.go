// Package report renders recipes and balances into downloadable documents.
package report

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/Simplici0/marges/internal/pricing"
)

const (
	MediaTypeSpreadsheet = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	MediaTypePDF         = "application/pdf"

	costSheet = "Analyse_Couts"
)

var costHeaders = []string{"Matière", "Quantité", "Prix unitaire en fg", "Total"}

// summaryFills mirrors the colours of the on-screen table.
var summaryFills = map[pricing.SummaryKind]string{
	pricing.TotalGeneral: "#00B050",
	pricing.UnitCost:     "#0070C0",
	pricing.SalePrice:    "#FFC000",
	pricing.UnitMargin:   "#FFFF00",
}

// SpreadsheetFileName is the download name for a category label.
func SpreadsheetFileName(fileLabel string) string {
	return fmt.Sprintf("Rapport_Couts_%s.xlsx", fileLabel)
}

// Spreadsheet writes the table to a one-sheet workbook: header, ingredient
// rows, then summary rows whose quantity and price cells stay blank.
func Spreadsheet(table pricing.Table) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", costSheet); err != nil {
		return nil, fmt.Errorf("rename sheet: %w", err)
	}

	if err := f.SetSheetRow(costSheet, "A1", &costHeaders); err != nil {
		return nil, fmt.Errorf("write header: %w", err)
	}
	headerStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})
	if err != nil {
		return nil, fmt.Errorf("create header style: %w", err)
	}
	if err := f.SetCellStyle(costSheet, "A1", "D1", headerStyle); err != nil {
		return nil, fmt.Errorf("style header: %w", err)
	}

	line := 2
	for i, row := range table.Rows {
		total := row.LineTotal()
		if i < len(table.LineTotals) {
			total = table.LineTotals[i]
		}
		values := []interface{}{
			row.Name,
			row.Quantity.InexactFloat64(),
			row.UnitPrice.InexactFloat64(),
			total.InexactFloat64(),
		}
		if err := setRow(f, line, values); err != nil {
			return nil, err
		}
		line++
	}

	for _, s := range table.Summary {
		if err := setRow(f, line, []interface{}{s.Label, nil, nil, s.Value.InexactFloat64()}); err != nil {
			return nil, err
		}
		style, err := f.NewStyle(summaryStyle(s.Kind))
		if err != nil {
			return nil, fmt.Errorf("create summary style: %w", err)
		}
		start, _ := excelize.CoordinatesToCellName(1, line)
		end, _ := excelize.CoordinatesToCellName(len(costHeaders), line)
		if err := f.SetCellStyle(costSheet, start, end, style); err != nil {
			return nil, fmt.Errorf("style summary row: %w", err)
		}
		line++
	}

	if err := f.SetColWidth(costSheet, "A", "A", 28); err != nil {
		return nil, fmt.Errorf("set column width: %w", err)
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, fmt.Errorf("write workbook: %w", err)
	}
	return buf.Bytes(), nil
}

func setRow(f *excelize.File, line int, values []interface{}) error {
	cell, err := excelize.CoordinatesToCellName(1, line)
	if err != nil {
		return fmt.Errorf("cell name for line %d: %w", line, err)
	}
	if err := f.SetSheetRow(costSheet, cell, &values); err != nil {
		return fmt.Errorf("write line %d: %w", line, err)
	}
	return nil
}

func summaryStyle(kind pricing.SummaryKind) *excelize.Style {
	style := &excelize.Style{
		Fill:   excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{summaryFills[kind]}},
		NumFmt: 4, // #,##0.00
	}
	if kind == pricing.UnitMargin {
		style.Font = &excelize.Font{Bold: true}
	}
	return style
}
