// Package filestore keeps the ledger and the recipes as flat CSV tables in a
// data directory: one ledger file and one file per category.
package filestore

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/ledger"
	"github.com/Simplici0/marges/internal/recipe"
)

const ledgerFileName = "ledger.csv"

var (
	ledgerHeader = []string{"Matière", "Prix unitaire en fg"}
	recipeHeader = []string{"Matière", "Quantité", "Prix unitaire en fg", "Total"}
)

type Store struct {
	dir    string
	logger *zap.Logger
}

// New creates the data directory if needed.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}
	return &Store{dir: dir, logger: logger}, nil
}

// RecipeFileName is the file holding the recipe of category.
func RecipeFileName(category string) string {
	return "recette_" + category + ".csv"
}

func (s *Store) LoadLedger(ctx context.Context) (recipe.Ledger, error) {
	records, found, err := s.readTable(ledgerFileName)
	if err != nil {
		return nil, err
	}
	l := recipe.Ledger{}
	if !found {
		return l, nil
	}

	for i, rec := range records {
		if len(rec) < 2 {
			return nil, fmt.Errorf("%s line %d: expected 2 columns, got %d", ledgerFileName, i+2, len(rec))
		}
		price, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, fmt.Errorf("%s line %d: parse price: %w", ledgerFileName, i+2, err)
		}
		l[rec[0]] = price
	}
	return l, nil
}

func (s *Store) SaveLedger(ctx context.Context, l recipe.Ledger) error {
	records := make([][]string, 0, len(l))
	for _, e := range ledger.SortedEntries(l) {
		records = append(records, []string{e.Name, e.UnitPrice.String()})
	}
	return s.writeTable(ledgerFileName, ledgerHeader, records)
}

func (s *Store) LoadRecipe(ctx context.Context, category string) ([]recipe.Row, bool, error) {
	name := RecipeFileName(category)
	records, found, err := s.readTable(name)
	if err != nil || !found {
		return nil, found, err
	}

	rows := make([]recipe.Row, 0, len(records))
	for i, rec := range records {
		if len(rec) < 3 {
			return nil, false, fmt.Errorf("%s line %d: expected at least 3 columns, got %d", name, i+2, len(rec))
		}
		qty, err := decimal.NewFromString(rec[1])
		if err != nil {
			return nil, false, fmt.Errorf("%s line %d: parse quantity: %w", name, i+2, err)
		}
		price, err := decimal.NewFromString(rec[2])
		if err != nil {
			return nil, false, fmt.Errorf("%s line %d: parse price: %w", name, i+2, err)
		}
		// The total column is derived and ignored on read.
		rows = append(rows, recipe.Row{Name: rec[0], Quantity: qty, UnitPrice: price})
	}
	return rows, true, nil
}

func (s *Store) SaveRecipe(ctx context.Context, category string, rows []recipe.Row) error {
	records := make([][]string, 0, len(rows))
	for _, row := range rows {
		records = append(records, []string{
			row.Name,
			row.Quantity.String(),
			row.UnitPrice.String(),
			row.LineTotal().String(),
		})
	}
	return s.writeTable(RecipeFileName(category), recipeHeader, records)
}

// readTable returns the data records of a CSV file without its header.
func (s *Store) readTable(name string) ([][]string, bool, error) {
	f, err := os.Open(filepath.Join(s.dir, name))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("open %s: %w", name, err)
	}
	defer f.Close()

	r := csv.NewReader(f)
	r.FieldsPerRecord = -1

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, true, nil
		}
		return nil, false, fmt.Errorf("read %s header: %w", name, err)
	}

	records, err := r.ReadAll()
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w", name, err)
	}
	return records, true, nil
}

// writeTable replaces a CSV file by writing a temp file in the same directory
// and renaming it over the old one.
func (s *Store) writeTable(name string, header []string, records [][]string) error {
	tmp, err := os.CreateTemp(s.dir, "."+name+".*.tmp")
	if err != nil {
		return fmt.Errorf("create temp file for %s: %w", name, err)
	}
	tmpPath := tmp.Name()

	w := csv.NewWriter(tmp)
	if err := w.Write(header); err != nil {
		return s.abortWrite(tmp, tmpPath, fmt.Errorf("write %s header: %w", name, err))
	}
	if err := w.WriteAll(records); err != nil {
		return s.abortWrite(tmp, tmpPath, fmt.Errorf("write %s: %w", name, err))
	}
	if err := tmp.Close(); err != nil {
		return s.abortWrite(nil, tmpPath, fmt.Errorf("close %s: %w", name, err))
	}

	if err := os.Rename(tmpPath, filepath.Join(s.dir, name)); err != nil {
		return s.abortWrite(nil, tmpPath, fmt.Errorf("replace %s: %w", name, err))
	}

	s.logger.Debug("table written", zap.String("file", name), zap.Int("records", len(records)))
	return nil
}

func (s *Store) abortWrite(f *os.File, tmpPath string, cause error) error {
	if f != nil {
		_ = f.Close()
	}
	if err := os.Remove(tmpPath); err != nil && !errors.Is(err, os.ErrNotExist) {
		s.logger.Error("failed to remove temporary file", zap.String("path", tmpPath), zap.Error(err))
	}
	return cause
}
