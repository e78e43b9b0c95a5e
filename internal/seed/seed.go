package seed

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/catalog"
	"github.com/Simplici0/marges/internal/recipe"
)

// Ledger receives the prices of every seeded recipe.
type Ledger interface {
	Merge(ctx context.Context, rows []recipe.Row) error
}

// Recipes is where seeded recipes are saved.
type Recipes interface {
	Exists(ctx context.Context, category string) (bool, error)
	Save(ctx context.Context, category string, r recipe.Recipe) error
}

// Deps contains what the seed writes to.
type Deps struct {
	Catalog *catalog.Catalog
	Ledger  Ledger
	Recipes Recipes
	Logger  *zap.Logger
}

// Stats contains seed operation counters.
type Stats struct {
	Inserts int
	Skipped int
}

// Run saves the reference-priced default recipe of every category that was
// never saved. It goes through the same ledger merge and recipe save as a
// user save, so a second run finds every category present and does nothing.
func Run(ctx context.Context, deps Deps) (Stats, error) {
	stats := Stats{}

	for _, cat := range deps.Catalog.Categories {
		exists, err := deps.Recipes.Exists(ctx, cat.Key)
		if err != nil {
			return stats, fmt.Errorf("check recipe %s: %w", cat.Key, err)
		}
		if exists {
			stats.Skipped++
			continue
		}

		r, err := deps.Catalog.ReferenceRecipe(cat.Key)
		if err != nil {
			return stats, err
		}
		if err := deps.Ledger.Merge(ctx, r.Rows); err != nil {
			return stats, fmt.Errorf("seed ledger for %s: %w", cat.Key, err)
		}
		if err := deps.Recipes.Save(ctx, cat.Key, r); err != nil {
			return stats, fmt.Errorf("seed recipe %s: %w", cat.Key, err)
		}
		stats.Inserts++
	}

	deps.Logger.Info("seed finished",
		zap.Int("inserts", stats.Inserts),
		zap.Int("skipped", stats.Skipped))
	return stats, nil
}
