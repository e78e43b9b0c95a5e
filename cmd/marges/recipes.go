package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func (c *cli) categoriesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "categories",
		Short: "List product categories",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "CLÉ\tLIBELLÉ\tPRIX DE VENTE\n")
			for _, cat := range a.Catalog.Categories {
				fmt.Fprintf(w, "%s\t%s\t%s\n", cat.Key, cat.Label, amount(a.Catalog.SalePrices[cat.Tier]))
			}
			return w.Flush()
		},
	}
}

func (c *cli) showCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "show <category>",
		Short: "Show a recipe with ledger prices and unit economics",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.LoadRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			table, err := a.Table(args[0], r)
			if err != nil {
				return err
			}
			if asJSON {
				return printJSON(cmd.OutOrStdout(), table)
			}
			return printTable(cmd.OutOrStdout(), table)
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "print the table as JSON")
	return cmd
}

func (c *cli) forecastCmd() *cobra.Command {
	var save bool

	cmd := &cobra.Command{
		Use:   "forecast <category> <units>",
		Short: "Scale a recipe to a production target",
		Long: `Scale every quantity of the recipe so that it yields the given number of
units. Quantities are rounded to whole numbers. With --save the scaled recipe
replaces the stored one and its prices are merged into the ledger.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			category := args[0]

			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.LoadRecipe(cmd.Context(), category)
			if err != nil {
				return err
			}
			scaled, err := a.Forecast(r, args[1])
			if err != nil {
				return err
			}

			table, err := a.Table(category, scaled)
			if err != nil {
				return err
			}
			if err := printTable(cmd.OutOrStdout(), table); err != nil {
				return err
			}

			if save {
				if err := a.SaveRecipe(cmd.Context(), category, scaled); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "recette %s enregistrée\n", category)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&save, "save", false, "save the scaled recipe")
	return cmd
}

func (c *cli) exportCmd() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "export <category>",
		Short: "Export a recipe cost analysis to a spreadsheet",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			r, err := a.LoadRecipe(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			name, data, err := a.ExportSpreadsheet(args[0], r)
			if err != nil {
				return err
			}
			if output == "" {
				output = name
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default Rapport_Couts_<Label>.xlsx)")
	return cmd
}
