package recipe

import (
	"github.com/shopspring/decimal"
)

// Row is one ingredient line of a recipe.
type Row struct {
	Name      string          `json:"name"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

// LineTotal returns Quantity × UnitPrice.
func (r Row) LineTotal() decimal.Decimal {
	return r.Quantity.Mul(r.UnitPrice)
}

// Recipe is the ordered list of rows for one product category.
type Recipe struct {
	Category string `json:"category"`
	Rows     []Row  `json:"rows"`
}

// Clone returns a copy whose rows can be mutated independently.
func (r Recipe) Clone() Recipe {
	rows := make([]Row, len(r.Rows))
	copy(rows, r.Rows)
	return Recipe{Category: r.Category, Rows: rows}
}

// Ledger maps an ingredient name to its shared unit price.
type Ledger map[string]decimal.Decimal

// ApplyLedgerOverlay replaces the unit price of every row whose name is known
// to the ledger. Rows with unknown names keep their stored price.
func ApplyLedgerOverlay(r Recipe, ledger Ledger) Recipe {
	out := r.Clone()
	for i, row := range out.Rows {
		if price, ok := ledger[row.Name]; ok {
			out.Rows[i].UnitPrice = price
		}
	}
	return out
}
