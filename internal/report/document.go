package report

import (
	"fmt"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
	"github.com/signintech/gopdf"
	"golang.org/x/image/font/gofont/gobold"
	"golang.org/x/image/font/gofont/goregular"

	"github.com/Simplici0/marges/internal/bilan"
)

const (
	DocumentFileName = "bilan_journalier.pdf"

	currencyCode = "GNF"

	fontRegular = "go"
	fontBold    = "go-bold"

	pageMargin   = 40.0
	contentWidth = 595.28 - 2*pageMargin
)

// FormatFG renders an amount in Guinean francs, rounded to the franc.
func FormatFG(amount decimal.Decimal) string {
	return money.New(amount.Round(0).IntPart(), currencyCode).Display()
}

type documentLine struct {
	text string
	font string
	size float64
	h    float64
}

// Document renders the single-page daily balance summary. Only aggregate
// figures are listed; the production and payroll tables are not reproduced.
func Document(stats bilan.Stats) ([]byte, error) {
	pdf := &gopdf.GoPdf{}
	pdf.Start(gopdf.Config{PageSize: *gopdf.PageSizeA4})
	pdf.AddPage()

	if err := pdf.AddTTFFontData(fontRegular, goregular.TTF); err != nil {
		return nil, fmt.Errorf("load regular font: %w", err)
	}
	if err := pdf.AddTTFFontData(fontBold, gobold.TTF); err != nil {
		return nil, fmt.Errorf("load bold font: %w", err)
	}

	if err := pdf.SetFont(fontBold, "", 16); err != nil {
		return nil, fmt.Errorf("set title font: %w", err)
	}
	pdf.SetX(pageMargin)
	pdf.SetY(pageMargin)
	title := "Rapport de Bilan Journalier"
	if err := pdf.CellWithOption(&gopdf.Rect{W: contentWidth, H: 20}, title, gopdf.CellOption{Align: gopdf.Center}); err != nil {
		return nil, fmt.Errorf("write title: %w", err)
	}
	pdf.Br(40)

	lines := []documentLine{
		{text: "RECAPITULATIF GLOBAL", font: fontBold, size: 12, h: 22},
		{text: "- Total bénéfice brut : " + FormatFG(stats.TotalMargin), font: fontRegular, size: 11, h: 18},
		{text: "- Pertes Petits : " + FormatFG(stats.LossSmall), font: fontRegular, size: 11, h: 18},
		{text: "- Pertes Grands : " + FormatFG(stats.LossLarge), font: fontRegular, size: 11, h: 18},
		{text: "- Pertes Biscuits : " + FormatFG(stats.LossBiscuits), font: fontRegular, size: 11, h: 18},
		{text: "- Total dépenses : " + FormatFG(stats.TotalPayroll), font: fontRegular, size: 11, h: 18},
		{text: "- BÉNÉFICE NET : " + FormatFG(stats.NetMargin), font: fontBold, size: 11, h: 22},
	}
	for _, l := range lines {
		if err := pdf.SetFont(l.font, "", l.size); err != nil {
			return nil, fmt.Errorf("set font: %w", err)
		}
		pdf.SetX(pageMargin)
		if err := pdf.Cell(nil, l.text); err != nil {
			return nil, fmt.Errorf("write %q: %w", l.text, err)
		}
		pdf.Br(l.h)
	}

	out, err := pdf.GetBytesPdfReturnErr()
	if err != nil {
		return nil, fmt.Errorf("render pdf: %w", err)
	}
	return out, nil
}
