package pricing

import (
	"errors"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/marges/internal/recipe"
)

// DefaultUnitMarker identifies the row whose quantity is the batch size.
const DefaultUnitMarker = "cuillères"

// ErrInvalidForecastTarget is returned for a forecast target that is not a
// positive integer.
var ErrInvalidForecastTarget = errors.New("objectif de production invalide")

var one = decimal.NewFromInt(1)

// Totals holds the per-row line totals and their sum.
type Totals struct {
	LineTotals []decimal.Decimal
	GrandTotal decimal.Decimal
}

// UnitEconomics contains the per-unit figures of a recipe.
type UnitEconomics struct {
	UnitCount    decimal.Decimal
	UnitRowFound bool
	UnitCost     decimal.Decimal
	SalePrice    decimal.Decimal
	UnitMargin   decimal.Decimal
}

// ComputeTotals computes Quantity × UnitPrice per row and the grand total.
func ComputeTotals(r recipe.Recipe) Totals {
	totals := Totals{
		LineTotals: make([]decimal.Decimal, len(r.Rows)),
		GrandTotal: decimal.Zero,
	}
	for i, row := range r.Rows {
		line := row.LineTotal()
		totals.LineTotals[i] = line
		totals.GrandTotal = totals.GrandTotal.Add(line)
	}
	return totals
}

// LocateUnitCountRow returns the first row whose name contains marker,
// ignoring case.
func LocateUnitCountRow(r recipe.Recipe, marker string) (recipe.Row, bool) {
	needle := strings.ToLower(marker)
	for _, row := range r.Rows {
		if strings.Contains(strings.ToLower(row.Name), needle) {
			return row, true
		}
	}
	return recipe.Row{}, false
}

// unitDivisor is the unit-count quantity, or 1 when the row is missing or zero.
func unitDivisor(r recipe.Recipe, marker string) (decimal.Decimal, bool) {
	row, ok := LocateUnitCountRow(r, marker)
	if !ok || row.Quantity.IsZero() {
		return one, ok
	}
	return row.Quantity, true
}

// ComputeUnitEconomics derives unit cost and unit margin. The margin is not
// clamped and may be negative.
func ComputeUnitEconomics(r recipe.Recipe, marker string, salePrice decimal.Decimal) UnitEconomics {
	divisor, found := unitDivisor(r, marker)
	unitCost := ComputeTotals(r).GrandTotal.Div(divisor)

	return UnitEconomics{
		UnitCount:    divisor,
		UnitRowFound: found,
		UnitCost:     unitCost,
		SalePrice:    salePrice,
		UnitMargin:   salePrice.Sub(unitCost),
	}
}

// ComputeForecast scales every quantity by targetUnits / unit count and rounds
// the result to the nearest integer.
func ComputeForecast(r recipe.Recipe, marker string, targetUnits int) (recipe.Recipe, error) {
	if targetUnits <= 0 {
		return recipe.Recipe{}, ErrInvalidForecastTarget
	}

	divisor, _ := unitDivisor(r, marker)
	target := decimal.NewFromInt(int64(targetUnits))

	out := r.Clone()
	for i, row := range out.Rows {
		out.Rows[i].Quantity = row.Quantity.Mul(target).Div(divisor).Round(0)
	}
	return out, nil
}
