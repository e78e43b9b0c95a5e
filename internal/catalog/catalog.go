// Package catalog holds the product catalog: the fixed set of categories,
// the sale price of each tier and the default recipe of each category.
// It is configuration data, loaded from YAML.
package catalog

import (
	_ "embed"
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"

	"github.com/Simplici0/marges/internal/bilan"
	"github.com/Simplici0/marges/internal/recipe"
)

//go:embed default.yaml
var defaultYAML []byte

// ErrUnknownCategory is returned for a category key outside the catalog.
var ErrUnknownCategory = errors.New("unknown category")

// Category is one product variant.
type Category struct {
	Key    string `yaml:"key" json:"key"`
	Label  string `yaml:"label" json:"label"`
	Tier   string `yaml:"tier" json:"tier"`
	Recipe string `yaml:"recipe" json:"recipe"`
}

// DefaultRow is a row of a default recipe.
type DefaultRow struct {
	Name           string          `yaml:"name"`
	Quantity       decimal.Decimal `yaml:"quantity"`
	ReferencePrice decimal.Decimal `yaml:"reference_price"`
}

// Catalog is the parsed catalog file.
type Catalog struct {
	UnitMarker string                     `yaml:"unit_marker"`
	SalePrices map[string]decimal.Decimal `yaml:"sale_prices"`
	Categories []Category                 `yaml:"categories"`
	Recipes    map[string][]DefaultRow    `yaml:"recipes"`
	Bilan      bilan.Input                `yaml:"bilan"`
}

// Default returns the catalog embedded in the binary.
func Default() (*Catalog, error) {
	return Parse(defaultYAML)
}

// Load reads the catalog at path, or the embedded one when path is empty.
func Load(path string) (*Catalog, error) {
	if path == "" {
		return Default()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read catalog: %w", err)
	}
	return Parse(data)
}

// Parse decodes and validates a catalog document.
func Parse(data []byte) (*Catalog, error) {
	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, fmt.Errorf("decode catalog: %w", err)
	}
	if err := c.validate(); err != nil {
		return nil, err
	}
	return &c, nil
}

func (c *Catalog) validate() error {
	if strings.TrimSpace(c.UnitMarker) == "" {
		return fmt.Errorf("catalog: unit_marker is required")
	}
	if len(c.Categories) == 0 {
		return fmt.Errorf("catalog: at least one category is required")
	}

	seen := make(map[string]bool, len(c.Categories))
	for _, cat := range c.Categories {
		if cat.Key == "" {
			return fmt.Errorf("catalog: category %q has no key", cat.Label)
		}
		if seen[cat.Key] {
			return fmt.Errorf("catalog: duplicate category %q", cat.Key)
		}
		seen[cat.Key] = true

		if _, ok := c.SalePrices[cat.Tier]; !ok {
			return fmt.Errorf("catalog: category %q uses unknown tier %q", cat.Key, cat.Tier)
		}
		if _, ok := c.Recipes[cat.Recipe]; !ok {
			return fmt.Errorf("catalog: category %q uses unknown recipe %q", cat.Key, cat.Recipe)
		}
	}
	return nil
}

// Category looks up a category by key.
func (c *Catalog) Category(key string) (Category, error) {
	for _, cat := range c.Categories {
		if cat.Key == key {
			return cat, nil
		}
	}
	return Category{}, fmt.Errorf("%w: %q", ErrUnknownCategory, key)
}

// SalePrice is the fixed unit sale price of the category's tier.
func (c *Catalog) SalePrice(key string) (decimal.Decimal, error) {
	cat, err := c.Category(key)
	if err != nil {
		return decimal.Zero, err
	}
	return c.SalePrices[cat.Tier], nil
}

// DefaultRecipe returns the built-in recipe of a category with zero prices.
func (c *Catalog) DefaultRecipe(key string) (recipe.Recipe, error) {
	return c.buildRecipe(key, false)
}

// ReferenceRecipe returns the built-in recipe priced with reference prices.
func (c *Catalog) ReferenceRecipe(key string) (recipe.Recipe, error) {
	return c.buildRecipe(key, true)
}

func (c *Catalog) buildRecipe(key string, priced bool) (recipe.Recipe, error) {
	cat, err := c.Category(key)
	if err != nil {
		return recipe.Recipe{}, err
	}

	defaults := c.Recipes[cat.Recipe]
	rows := make([]recipe.Row, 0, len(defaults))
	for _, d := range defaults {
		price := decimal.Zero
		if priced {
			price = d.ReferencePrice
		}
		rows = append(rows, recipe.Row{Name: d.Name, Quantity: d.Quantity, UnitPrice: price})
	}
	return recipe.Recipe{Category: cat.Key, Rows: rows}, nil
}

// FileLabel turns a category label into a file-name fragment, e.g.
// "Petits chocolat" -> "Petits_chocolat".
func FileLabel(cat Category) string {
	return strings.ReplaceAll(cat.Label, " ", "_")
}
