package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault_HasFourCategories(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Categories, 4)
	assert.Equal(t, "cuillères", c.UnitMarker)

	small, err := c.SalePrice("petits-vanilles")
	require.NoError(t, err)
	assert.Equal(t, "4200", small.String())

	large, err := c.SalePrice("grands-chocolat")
	require.NoError(t, err)
	assert.Equal(t, "8500", large.String())
}

func TestDefaultRecipe_ZeroPrices(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	r, err := c.DefaultRecipe("petits-chocolat")
	require.NoError(t, err)

	require.Len(t, r.Rows, 10)
	assert.Equal(t, "petits-chocolat", r.Category)
	assert.Equal(t, "Farine (gramme)", r.Rows[0].Name)
	assert.Equal(t, "1400", r.Rows[0].Quantity.String())
	assert.Equal(t, "Cacao (unité)", r.Rows[4].Name)
	for _, row := range r.Rows {
		assert.True(t, row.UnitPrice.IsZero(), "row %s should have a zero price", row.Name)
	}
}

func TestReferenceRecipe_UsesReferencePrices(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	r, err := c.ReferenceRecipe("grands-vanilles")
	require.NoError(t, err)

	assert.Equal(t, "Citron (unité)", r.Rows[4].Name)
	assert.Equal(t, "1000", r.Rows[4].UnitPrice.String())
	assert.Equal(t, "67.5", r.Rows[9].UnitPrice.String())
	assert.Equal(t, "140", r.Rows[9].Quantity.String())
}

func TestUnknownCategory(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	_, err = c.DefaultRecipe("tartes")
	assert.ErrorIs(t, err, ErrUnknownCategory)

	_, err = c.SalePrice("tartes")
	assert.ErrorIs(t, err, ErrUnknownCategory)
}

func TestDefault_BilanDefaults(t *testing.T) {
	c, err := Default()
	require.NoError(t, err)

	require.Len(t, c.Bilan.Production, 1)
	assert.Equal(t, "Kipé", c.Bilan.Production[0].District)
	assert.Equal(t, 120, c.Bilan.Production[0].Small)
	require.Len(t, c.Bilan.Payroll, 5)
	assert.Equal(t, "1400000", c.Bilan.Payroll[0].Amount.String())
}

func TestLoad_FromFileAndValidation(t *testing.T) {
	dir := t.TempDir()

	good := filepath.Join(dir, "catalog.yaml")
	require.NoError(t, os.WriteFile(good, []byte(`
unit_marker: "louches"
sale_prices: { unique: 1000 }
categories:
  - { key: soupe, label: Soupe du jour, tier: unique, recipe: soupe }
recipes:
  soupe:
    - { name: "Louches", quantity: 20 }
`), 0o600))

	c, err := Load(good)
	require.NoError(t, err)
	assert.Equal(t, "louches", c.UnitMarker)
	cat, err := c.Category("soupe")
	require.NoError(t, err)
	assert.Equal(t, "Soupe_du_jour", FileLabel(cat))

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(`
unit_marker: "x"
sale_prices: { small: 1 }
categories:
  - { key: a, label: A, tier: huge, recipe: r }
recipes:
  r: []
`), 0o600))

	_, err = Load(bad)
	assert.Error(t, err)
}
