// Package app wires storage, catalog, ledger and sessions together for the
// HTTP server and the CLI.
package app

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/catalog"
	"github.com/Simplici0/marges/internal/config"
	"github.com/Simplici0/marges/internal/db"
	"github.com/Simplici0/marges/internal/ledger"
	"github.com/Simplici0/marges/internal/migrations"
	"github.com/Simplici0/marges/internal/pricing"
	"github.com/Simplici0/marges/internal/recipe"
	"github.com/Simplici0/marges/internal/report"
	"github.com/Simplici0/marges/internal/seed"
	"github.com/Simplici0/marges/internal/session"
	"github.com/Simplici0/marges/internal/storage/filestore"
	"github.com/Simplici0/marges/internal/storage/sqlitestore"
)

// repository is what both storage backends provide.
type repository interface {
	ledger.Repository
	recipe.Repository
}

type App struct {
	Config   config.Config
	Catalog  *catalog.Catalog
	Ledger   *ledger.Service
	Recipes  *recipe.Store
	Sessions session.Store

	logger  *zap.Logger
	closers []func() error
}

// New opens the configured backend and session store. The caller must Close
// the returned App.
func New(ctx context.Context, cfg config.Config, logger *zap.Logger) (*App, error) {
	cat, err := catalog.Load(cfg.CatalogPath)
	if err != nil {
		return nil, err
	}

	a := &App{Config: cfg, Catalog: cat, logger: logger}

	repo, err := a.openRepository(ctx)
	if err != nil {
		a.Close()
		return nil, err
	}
	a.Ledger = ledger.NewService(repo, logger)
	a.Recipes = recipe.NewStore(repo, cat, logger)

	if cfg.RedisAddr != "" {
		rs := session.NewRedisStore(cfg.RedisAddr, cfg.RedisPassword, cfg.RedisDB, cfg.SessionTTL)
		a.closers = append(a.closers, rs.Close)
		if err := rs.Ping(ctx); err != nil {
			a.Close()
			return nil, err
		}
		a.Sessions = rs
	} else {
		a.Sessions = session.NewMemoryStore(cfg.SessionTTL)
	}

	logger.Info("application ready",
		zap.String("backend", cfg.StorageBackend),
		zap.Bool("redis_sessions", cfg.RedisAddr != ""),
		zap.Int("categories", len(cat.Categories)))

	if cfg.SeedOnStart {
		if _, err := a.Seed(ctx); err != nil {
			a.Close()
			return nil, err
		}
	}
	return a, nil
}

func (a *App) openRepository(ctx context.Context) (repository, error) {
	switch a.Config.StorageBackend {
	case config.BackendSQLite:
		if err := os.MkdirAll(filepath.Dir(a.Config.DBPath), 0o755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}
		conn, err := db.Open(ctx, a.Config.DBPath)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, conn.Close)
		if err := migrations.Up(ctx, conn); err != nil {
			return nil, err
		}
		return sqlitestore.New(conn, a.logger), nil
	default:
		return filestore.New(a.Config.DataDir, a.logger)
	}
}

// Close releases the database and Redis connections.
func (a *App) Close() error {
	var first error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil && first == nil {
			first = err
		}
	}
	a.closers = nil
	return first
}

// LoadRecipe returns the stored (or default) recipe of category with ledger
// prices applied.
func (a *App) LoadRecipe(ctx context.Context, category string) (recipe.Recipe, error) {
	r, err := a.Recipes.Load(ctx, category)
	if err != nil {
		return recipe.Recipe{}, err
	}
	l, err := a.Ledger.Load(ctx)
	if err != nil {
		return recipe.Recipe{}, err
	}
	return recipe.ApplyLedgerOverlay(r, l), nil
}

// SaveRecipe records r's prices in the ledger, then stores its rows. A
// failed recipe write after a successful merge leaves the ledger updated.
func (a *App) SaveRecipe(ctx context.Context, category string, r recipe.Recipe) error {
	if _, err := a.Catalog.Category(category); err != nil {
		return err
	}
	if err := a.Ledger.Merge(ctx, r.Rows); err != nil {
		return err
	}
	return a.Recipes.Save(ctx, category, r)
}

// Table computes the displayed table of r for category.
func (a *App) Table(category string, r recipe.Recipe) (pricing.Table, error) {
	price, err := a.Catalog.SalePrice(category)
	if err != nil {
		return pricing.Table{}, err
	}
	return pricing.Summarize(r, a.Catalog.UnitMarker, price), nil
}

// Forecast scales r to the raw production target entered by the user.
func (a *App) Forecast(r recipe.Recipe, rawTarget string) (recipe.Recipe, error) {
	target, err := pricing.ParseForecastTarget(rawTarget)
	if err != nil {
		return recipe.Recipe{}, err
	}
	return pricing.ComputeForecast(r, a.Catalog.UnitMarker, target)
}

// ExportSpreadsheet renders r as a workbook and returns its download name.
func (a *App) ExportSpreadsheet(category string, r recipe.Recipe) (string, []byte, error) {
	cat, err := a.Catalog.Category(category)
	if err != nil {
		return "", nil, err
	}
	table, err := a.Table(category, r)
	if err != nil {
		return "", nil, err
	}
	data, err := report.Spreadsheet(table)
	if err != nil {
		return "", nil, fmt.Errorf("export %s: %w", category, err)
	}
	return report.SpreadsheetFileName(catalog.FileLabel(cat)), data, nil
}

// Seed saves reference recipes for categories never saved.
func (a *App) Seed(ctx context.Context) (seed.Stats, error) {
	return seed.Run(ctx, seed.Deps{
		Catalog: a.Catalog,
		Ledger:  a.Ledger,
		Recipes: a.Recipes,
		Logger:  a.logger,
	})
}
