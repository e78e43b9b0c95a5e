package pricing

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/marges/internal/recipe"
)

// SummaryKind enumerates the synthetic rows appended to a displayed recipe.
type SummaryKind int

const (
	TotalGeneral SummaryKind = iota
	UnitCost
	SalePrice
	UnitMargin
)

// Label is the row name shown in tables and exports.
func (k SummaryKind) Label() string {
	switch k {
	case TotalGeneral:
		return "TOTAL GÉNÉRAL"
	case UnitCost:
		return "COÛT DIRECT P/UNITÉ"
	case SalePrice:
		return "PRIX DE VENTE"
	case UnitMargin:
		return "MARGE BÉNÉFICE P/UNITÉ"
	default:
		return "?"
	}
}

// SummaryRow is display-only. Stores accept recipe.Row values, so a summary
// row can never be persisted.
type SummaryRow struct {
	Kind  SummaryKind     `json:"-"`
	Label string          `json:"label"`
	Value decimal.Decimal `json:"value"`
}

// Table is a recipe ready for display or export.
type Table struct {
	Category   string            `json:"category"`
	Rows       []recipe.Row      `json:"rows"`
	LineTotals []decimal.Decimal `json:"line_totals"`
	Summary    []SummaryRow      `json:"summary"`
	Economics  UnitEconomics     `json:"-"`
	UnitCount  decimal.Decimal   `json:"unit_count"`
	Fallback   bool              `json:"unit_count_fallback"`
}

// Summarize computes totals and unit economics and appends the summary rows.
func Summarize(r recipe.Recipe, marker string, salePrice decimal.Decimal) Table {
	totals := ComputeTotals(r)
	econ := ComputeUnitEconomics(r, marker, salePrice)

	return Table{
		Category:   r.Category,
		Rows:       r.Clone().Rows,
		LineTotals: totals.LineTotals,
		Summary: []SummaryRow{
			{Kind: TotalGeneral, Label: TotalGeneral.Label(), Value: totals.GrandTotal},
			{Kind: UnitCost, Label: UnitCost.Label(), Value: econ.UnitCost},
			{Kind: SalePrice, Label: SalePrice.Label(), Value: econ.SalePrice},
			{Kind: UnitMargin, Label: UnitMargin.Label(), Value: econ.UnitMargin},
		},
		Economics: econ,
		UnitCount: econ.UnitCount,
		Fallback:  !econ.UnitRowFound,
	}
}

// ParseForecastTarget validates raw operator input for a forecast target.
func ParseForecastTarget(raw string) (int, error) {
	raw = strings.TrimSpace(raw)
	value, err := strconv.Atoi(raw)
	if err != nil {
		if _, ferr := strconv.ParseFloat(raw, 64); ferr == nil {
			return 0, fmt.Errorf("%w: le nombre d'unités doit être un entier", ErrInvalidForecastTarget)
		}
		return 0, fmt.Errorf("%w: le nombre d'unités doit être numérique", ErrInvalidForecastTarget)
	}
	if value <= 0 {
		return 0, fmt.Errorf("%w: le nombre d'unités doit être supérieur à 0", ErrInvalidForecastTarget)
	}
	return value, nil
}
