// Package sqlitestore keeps the ledger and the recipes in SQLite tables.
// Amounts are stored as decimal strings so a save/load round trip is exact.
package sqlitestore

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/Simplici0/marges/internal/recipe"
)

type Store struct {
	db     *sql.DB
	logger *zap.Logger
}

// New expects a database already migrated with the migrations package.
func New(db *sql.DB, logger *zap.Logger) *Store {
	return &Store{db: db, logger: logger}
}

func (s *Store) LoadLedger(ctx context.Context) (recipe.Ledger, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT name, unit_price FROM price_ledger`)
	if err != nil {
		return nil, fmt.Errorf("query price ledger: %w", err)
	}
	defer rows.Close()

	l := recipe.Ledger{}
	for rows.Next() {
		var name, raw string
		if err := rows.Scan(&name, &raw); err != nil {
			return nil, fmt.Errorf("scan price ledger: %w", err)
		}
		price, err := decimal.NewFromString(raw)
		if err != nil {
			return nil, fmt.Errorf("parse price of %q: %w", name, err)
		}
		l[name] = price
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate price ledger: %w", err)
	}

	return l, nil
}

// SaveLedger upserts every entry. Entries absent from l are left alone, which
// matches the ledger's never-delete rule.
func (s *Store) SaveLedger(ctx context.Context, l recipe.Ledger) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin ledger transaction: %w", err)
	}

	for name, price := range l {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO price_ledger (name, unit_price)
			VALUES (?, ?)
			ON CONFLICT(name) DO UPDATE SET
				unit_price = excluded.unit_price,
				updated_at = CURRENT_TIMESTAMP
		`, name, price.String()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("upsert ledger entry %q: %w", name, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit ledger transaction: %w", err)
	}
	return nil
}

func (s *Store) LoadRecipe(ctx context.Context, category string) ([]recipe.Row, bool, error) {
	var exists bool
	if err := s.db.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM recipes WHERE category = ?)`, category,
	).Scan(&exists); err != nil {
		return nil, false, fmt.Errorf("check recipe existence: %w", err)
	}
	if !exists {
		return nil, false, nil
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT name, quantity, unit_price
		FROM recipe_rows
		WHERE category = ?
		ORDER BY position
	`, category)
	if err != nil {
		return nil, false, fmt.Errorf("query recipe rows: %w", err)
	}
	defer rows.Close()

	out := make([]recipe.Row, 0)
	for rows.Next() {
		var name, rawQty, rawPrice string
		if err := rows.Scan(&name, &rawQty, &rawPrice); err != nil {
			return nil, false, fmt.Errorf("scan recipe row: %w", err)
		}
		qty, err := decimal.NewFromString(rawQty)
		if err != nil {
			return nil, false, fmt.Errorf("parse quantity of %q: %w", name, err)
		}
		price, err := decimal.NewFromString(rawPrice)
		if err != nil {
			return nil, false, fmt.Errorf("parse price of %q: %w", name, err)
		}
		out = append(out, recipe.Row{Name: name, Quantity: qty, UnitPrice: price})
	}
	if err := rows.Err(); err != nil {
		return nil, false, fmt.Errorf("iterate recipe rows: %w", err)
	}

	return out, true, nil
}

// SaveRecipe replaces every row of category in one transaction.
func (s *Store) SaveRecipe(ctx context.Context, category string, rows []recipe.Row) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin recipe transaction: %w", err)
	}

	if _, err := tx.ExecContext(ctx, `
		INSERT INTO recipes (category) VALUES (?)
		ON CONFLICT(category) DO UPDATE SET saved_at = CURRENT_TIMESTAMP
	`, category); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("upsert recipe %s: %w", category, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM recipe_rows WHERE category = ?`, category); err != nil {
		_ = tx.Rollback()
		return fmt.Errorf("clear recipe rows %s: %w", category, err)
	}

	for i, row := range rows {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO recipe_rows (category, position, name, quantity, unit_price, line_total)
			VALUES (?, ?, ?, ?, ?, ?)
		`, category, i, row.Name, row.Quantity.String(), row.UnitPrice.String(), row.LineTotal().String()); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("insert recipe row %d: %w", i, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit recipe transaction: %w", err)
	}

	s.logger.Debug("recipe rows written", zap.String("category", category), zap.Int("rows", len(rows)))
	return nil
}
