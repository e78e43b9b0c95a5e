package recipe

import (
	"context"
	"fmt"

	"go.uber.org/zap"
)

// Repository persists recipe rows per category.
type Repository interface {
	// LoadRecipe returns found=false when nothing was ever saved for category.
	LoadRecipe(ctx context.Context, category string) (rows []Row, found bool, err error)
	SaveRecipe(ctx context.Context, category string, rows []Row) error
}

// Defaults supplies the built-in recipe of a category. It also rejects
// unknown categories.
type Defaults interface {
	DefaultRecipe(category string) (Recipe, error)
}

// Store loads and saves recipes, falling back to the category default when
// nothing is persisted.
type Store struct {
	repo     Repository
	defaults Defaults
	logger   *zap.Logger
}

func NewStore(repo Repository, defaults Defaults, logger *zap.Logger) *Store {
	return &Store{repo: repo, defaults: defaults, logger: logger}
}

// Load returns the persisted recipe for category, or its default.
func (s *Store) Load(ctx context.Context, category string) (Recipe, error) {
	def, err := s.defaults.DefaultRecipe(category)
	if err != nil {
		return Recipe{}, err
	}

	rows, found, err := s.repo.LoadRecipe(ctx, category)
	if err != nil {
		return Recipe{}, fmt.Errorf("load recipe %s: %w", category, err)
	}
	if !found {
		s.logger.Debug("no saved recipe, using default", zap.String("category", category))
		return def, nil
	}

	return Recipe{Category: category, Rows: rows}, nil
}

// Exists reports whether a recipe was ever saved for category.
func (s *Store) Exists(ctx context.Context, category string) (bool, error) {
	if _, err := s.defaults.DefaultRecipe(category); err != nil {
		return false, err
	}

	_, found, err := s.repo.LoadRecipe(ctx, category)
	if err != nil {
		return false, fmt.Errorf("load recipe %s: %w", category, err)
	}
	return found, nil
}

// Save overwrites the stored recipe of category with r's rows.
func (s *Store) Save(ctx context.Context, category string, r Recipe) error {
	if _, err := s.defaults.DefaultRecipe(category); err != nil {
		return err
	}

	if err := s.repo.SaveRecipe(ctx, category, r.Rows); err != nil {
		return fmt.Errorf("save recipe %s: %w", category, err)
	}

	s.logger.Info("recipe saved",
		zap.String("category", category),
		zap.Int("rows", len(r.Rows)))
	return nil
}
