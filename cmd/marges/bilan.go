package main

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/marges/internal/bilan"
	"github.com/Simplici0/marges/internal/catalog"
	"github.com/Simplici0/marges/internal/report"
)

func (c *cli) bilanCmd() *cobra.Command {
	var input, output string

	cmd := &cobra.Command{
		Use:   "bilan",
		Short: "Compute the daily balance and optionally render it as PDF",
		Long: `Compute the daily balance from a YAML file with "production" and "payroll"
lists. Without --input the sample balance of the catalog is used.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			in, err := c.loadBilanInput(input)
			if err != nil {
				return err
			}
			stats := bilan.Compute(in)

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Bénéfice brut\t%s\n", report.FormatFG(stats.TotalMargin))
			fmt.Fprintf(w, "Pertes petits\t%s\n", report.FormatFG(stats.LossSmall))
			fmt.Fprintf(w, "Pertes grands\t%s\n", report.FormatFG(stats.LossLarge))
			fmt.Fprintf(w, "Pertes biscuits\t%s\n", report.FormatFG(stats.LossBiscuits))
			fmt.Fprintf(w, "Total dépenses\t%s\n", report.FormatFG(stats.TotalPayroll))
			fmt.Fprintf(w, "Bénéfice net\t%s\n", report.FormatFG(stats.NetMargin))
			if err := w.Flush(); err != nil {
				return err
			}

			if output == "" {
				return nil
			}
			data, err := report.Document(stats)
			if err != nil {
				return err
			}
			if err := os.WriteFile(output, data, 0o644); err != nil {
				return fmt.Errorf("write %s: %w", output, err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s\n", output)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "balance input as YAML")
	cmd.Flags().StringVarP(&output, "output", "o", "", "write the PDF report to this file")
	return cmd
}

func (c *cli) loadBilanInput(path string) (bilan.Input, error) {
	if path == "" {
		cat, err := catalog.Load(c.cfg.CatalogPath)
		if err != nil {
			return bilan.Input{}, err
		}
		return cat.Bilan, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return bilan.Input{}, fmt.Errorf("read balance input: %w", err)
	}
	var in bilan.Input
	if err := yaml.Unmarshal(data, &in); err != nil {
		return bilan.Input{}, fmt.Errorf("decode balance input: %w", err)
	}
	return in, nil
}
