package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// run executes the CLI against a fresh data directory.
func run(t *testing.T, dataDir string, args ...string) (string, error) {
	t.Helper()
	t.Setenv("APP_ENV", "test")
	t.Setenv("LOG_LEVEL", "error")
	t.Setenv("REDIS_ADDR", "")
	t.Setenv("DB_PATH", "")
	t.Setenv("SEED_ON_START", "false")
	t.Setenv("STORAGE_BACKEND", "files")

	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--data-dir", dataDir}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestRootHasSubcommands(t *testing.T) {
	cmd := newRootCmd()
	names := map[string]bool{}
	for _, sub := range cmd.Commands() {
		names[sub.Name()] = true
	}
	for _, want := range []string{"categories", "show", "forecast", "export", "bilan", "ledger", "seed", "migrate"} {
		assert.True(t, names[want], "missing subcommand %s", want)
	}
}

func TestCategories(t *testing.T) {
	out, err := run(t, t.TempDir(), "categories")
	require.NoError(t, err)
	assert.Contains(t, out, "petits-chocolat")
	assert.Contains(t, out, "8500.00")
}

func TestSeedThenShow(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "recettes créées: 4")

	out, err = run(t, dir, "seed")
	require.NoError(t, err)
	assert.Contains(t, out, "recettes créées: 0, déjà présentes: 4")

	out, err = run(t, dir, "show", "petits-chocolat")
	require.NoError(t, err)
	assert.Contains(t, out, "Farine (gramme)")
	assert.Contains(t, out, "TOTAL GÉNÉRAL")
	assert.Contains(t, out, "PRIX DE VENTE")

	_, err = os.Stat(filepath.Join(dir, "recette_petits-chocolat.csv"))
	require.NoError(t, err)

	out, err = run(t, dir, "ledger")
	require.NoError(t, err)
	assert.Contains(t, out, "Citron (unité)")
}

func TestForecastRejectsBadTarget(t *testing.T) {
	_, err := run(t, t.TempDir(), "forecast", "petits-chocolat", "beaucoup")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "objectif de production invalide")
}

func TestForecastSave(t *testing.T) {
	dir := t.TempDir()

	out, err := run(t, dir, "forecast", "grands-vanilles", "280", "--save")
	require.NoError(t, err)
	assert.Contains(t, out, "recette grands-vanilles enregistrée")

	out, err = run(t, dir, "show", "grands-vanilles", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"quantity": "3200"`)
}

func TestShowUnknownCategory(t *testing.T) {
	_, err := run(t, t.TempDir(), "show", "tartes")
	assert.Error(t, err)
}

func TestExportAndBilan(t *testing.T) {
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "out.xlsx")
	_, err := run(t, dir, "export", "petits-vanilles", "-o", xlsx)
	require.NoError(t, err)
	info, err := os.Stat(xlsx)
	require.NoError(t, err)
	assert.Positive(t, info.Size())

	input := filepath.Join(dir, "bilan.yaml")
	require.NoError(t, os.WriteFile(input, []byte(`
production:
  - district: Kipé
    small: 10
    loss_small: 1
    margin_per_unit: 100
payroll:
  - { name: Bangaly, amount: 2000 }
`), 0o600))

	pdf := filepath.Join(dir, "bilan.pdf")
	out, err := run(t, dir, "bilan", "-i", input, "-o", pdf)
	require.NoError(t, err)
	assert.True(t, strings.Contains(out, "900") && strings.Contains(out, "Bénéfice net"), out)

	data, err := os.ReadFile(pdf)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(data, []byte("%PDF-")))
}

func TestMigrate(t *testing.T) {
	out, err := run(t, t.TempDir(), "migrate")
	require.NoError(t, err)
	assert.Contains(t, out, "schema version 2")
}
