// Package ledger maintains the price list shared by every recipe.
package ledger

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/recipe"
)

// Repository persists the whole ledger at once.
type Repository interface {
	// LoadLedger returns an empty ledger when nothing was ever saved.
	LoadLedger(ctx context.Context) (recipe.Ledger, error)
	SaveLedger(ctx context.Context, l recipe.Ledger) error
}

// Entry is one ledger line.
type Entry struct {
	Name      string          `json:"name"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Service struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) *Service {
	return &Service{repo: repo, logger: logger}
}

// Load returns the persisted ledger, empty if none exists.
func (s *Service) Load(ctx context.Context) (recipe.Ledger, error) {
	l, err := s.repo.LoadLedger(ctx)
	if err != nil {
		return nil, fmt.Errorf("load ledger: %w", err)
	}
	if l == nil {
		l = recipe.Ledger{}
	}
	return l, nil
}

// Merge writes the price of every edited row into the ledger and persists it.
// Existing names are overwritten and new names are added. Nothing is ever
// removed. The read-modify-write is not atomic: two concurrent merges can
// lose one another's updates.
func (s *Service) Merge(ctx context.Context, rows []recipe.Row) error {
	l, err := s.Load(ctx)
	if err != nil {
		return err
	}

	var added, updated int
	for _, row := range rows {
		if _, ok := l[row.Name]; ok {
			updated++
		} else {
			added++
		}
		l[row.Name] = row.UnitPrice
	}

	if err := s.repo.SaveLedger(ctx, l); err != nil {
		return fmt.Errorf("save ledger: %w", err)
	}

	s.logger.Info("ledger merged",
		zap.Int("added", added),
		zap.Int("updated", updated),
		zap.Int("size", len(l)))
	return nil
}

// Entries lists the ledger sorted by ingredient name.
func (s *Service) Entries(ctx context.Context) ([]Entry, error) {
	l, err := s.Load(ctx)
	if err != nil {
		return nil, err
	}
	return SortedEntries(l), nil
}

// SortedEntries flattens a ledger into entries ordered by name.
func SortedEntries(l recipe.Ledger) []Entry {
	entries := make([]Entry, 0, len(l))
	for name, price := range l {
		entries = append(entries, Entry{Name: name, UnitPrice: price})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries
}
