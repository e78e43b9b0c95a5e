package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/app"
	"github.com/Simplici0/marges/internal/config"
	"github.com/Simplici0/marges/internal/logger"
)

// cli carries what PersistentPreRunE prepares for the subcommands.
type cli struct {
	cfg config.Config
	log *zap.Logger

	dataDir  string
	backend  string
	logLevel string
}

func newRootCmd() *cobra.Command {
	c := &cli{}

	root := &cobra.Command{
		Use:   "marges",
		Short: "Recipe costing and daily balance for the bakery",
		Long: `marges computes the cost of each cake recipe from the shared price ledger,
scales recipes to a production target and renders spreadsheet and PDF reports.`,
		SilenceUsage:      true,
		PersistentPreRunE: c.init,
		PersistentPostRun: func(*cobra.Command, []string) {
			if c.log != nil {
				_ = c.log.Sync()
			}
		},
	}

	root.PersistentFlags().StringVar(&c.dataDir, "data-dir", "", "data directory (overrides DATA_DIR)")
	root.PersistentFlags().StringVar(&c.backend, "backend", "", "storage backend: files or sqlite (overrides STORAGE_BACKEND)")
	root.PersistentFlags().StringVar(&c.logLevel, "log-level", "", "log level (overrides LOG_LEVEL)")

	root.AddCommand(c.categoriesCmd())
	root.AddCommand(c.showCmd())
	root.AddCommand(c.forecastCmd())
	root.AddCommand(c.exportCmd())
	root.AddCommand(c.bilanCmd())
	root.AddCommand(c.ledgerCmd())
	root.AddCommand(c.seedCmd())
	root.AddCommand(c.migrateCmd())

	return root
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func (c *cli) init(_ *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	if c.dataDir != "" {
		cfg.DataDir = c.dataDir
		if os.Getenv("DB_PATH") == "" {
			cfg.DBPath = ""
		}
	}
	if c.backend != "" {
		cfg.StorageBackend = c.backend
	}
	if c.logLevel != "" {
		cfg.LogLevel = c.logLevel
	}
	if cfg.DBPath == "" {
		cfg.DBPath = defaultDBPath(cfg.DataDir)
	}
	switch cfg.StorageBackend {
	case config.BackendFiles, config.BackendSQLite:
	default:
		return fmt.Errorf("unknown backend %q", cfg.StorageBackend)
	}

	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}

	c.cfg = cfg
	c.log = log
	return nil
}

// openApp opens storage for one command. The CLI never talks to Redis: it has
// no sessions to share.
func (c *cli) openApp(ctx context.Context) (*app.App, error) {
	cfg := c.cfg
	cfg.RedisAddr = ""
	return app.New(ctx, cfg, c.log)
}
