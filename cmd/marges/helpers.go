package main

import (
	"encoding/json"
	"fmt"
	"io"
	"path/filepath"
	"text/tabwriter"

	"github.com/shopspring/decimal"

	"github.com/Simplici0/marges/internal/pricing"
)

func defaultDBPath(dataDir string) string {
	return filepath.Join(dataDir, "marges.db")
}

func amount(d decimal.Decimal) string {
	return d.StringFixed(2)
}

// printTable writes the recipe grid followed by its summary rows.
func printTable(out io.Writer, table pricing.Table) error {
	w := tabwriter.NewWriter(out, 0, 0, 2, ' ', tabwriter.AlignRight)

	fmt.Fprintf(w, "Matière\tQuantité\tPrix unitaire en fg\tTotal\t\n")
	for i, row := range table.Rows {
		fmt.Fprintf(w, "%s\t%s\t%s\t%s\t\n",
			row.Name,
			row.Quantity.String(),
			amount(row.UnitPrice),
			amount(table.LineTotals[i]))
	}
	for _, s := range table.Summary {
		fmt.Fprintf(w, "%s\t\t\t%s\t\n", s.Label, amount(s.Value))
	}
	if err := w.Flush(); err != nil {
		return err
	}

	if table.Fallback {
		fmt.Fprintln(out, "(aucune ligne d'unités trouvée, coût unitaire calculé sur 1 unité)")
	}
	return nil
}

func printJSON(out io.Writer, v any) error {
	enc := json.NewEncoder(out)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
