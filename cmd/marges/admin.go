package main

import (
	"fmt"
	"os"
	"path/filepath"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/Simplici0/marges/internal/db"
	"github.com/Simplici0/marges/internal/migrations"
)

func (c *cli) ledgerCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "ledger",
		Short: "List the shared ingredient prices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			entries, err := a.Ledger.Entries(cmd.Context())
			if err != nil {
				return err
			}
			if len(entries) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), "Aucun prix enregistré.")
				return nil
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintf(w, "Matière\tPrix unitaire en fg\n")
			for _, e := range entries {
				fmt.Fprintf(w, "%s\t%s\n", e.Name, amount(e.UnitPrice))
			}
			return w.Flush()
		},
	}
}

func (c *cli) seedCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "seed",
		Short: "Save reference-priced recipes for categories never saved",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			a, err := c.openApp(cmd.Context())
			if err != nil {
				return err
			}
			defer a.Close()

			stats, err := a.Seed(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "recettes créées: %d, déjà présentes: %d\n", stats.Inserts, stats.Skipped)
			return nil
		},
	}
}

func (c *cli) migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply SQLite schema migrations",
		Long:  `Create or upgrade the SQLite database at DB_PATH. This is only needed for the sqlite backend.`,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			if err := os.MkdirAll(filepath.Dir(c.cfg.DBPath), 0o755); err != nil {
				return fmt.Errorf("create database directory: %w", err)
			}

			conn, err := db.Open(ctx, c.cfg.DBPath)
			if err != nil {
				return err
			}
			defer conn.Close()

			if err := migrations.Up(ctx, conn); err != nil {
				return err
			}
			v, err := migrations.Version(conn)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "%s: schema version %d\n", c.cfg.DBPath, v)
			return nil
		},
	}
}
