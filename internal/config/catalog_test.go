package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeCatalogFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "catalog.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadCatalog(t *testing.T) {
	path := writeCatalogFile(t, `
finish: "Завершить заказ"
berries:
  - name: "Голубика"
    price_per_kg: 500
  - name: "Вишня"
    price_per_kg: 390
`)

	cat, err := LoadCatalog(path)
	require.NoError(t, err)

	price, ok := cat.Price("Голубика")
	assert.True(t, ok)
	assert.Equal(t, 500, price)

	_, ok = cat.Price("Манго")
	assert.False(t, ok)

	assert.True(t, cat.IsFinish("Завершить заказ"))
	assert.False(t, cat.IsFinish("Голубика"))
}

func TestLoadCatalogMissingFile(t *testing.T) {
	_, err := LoadCatalog(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestLoadCatalogBadYAML(t *testing.T) {
	path := writeCatalogFile(t, "berries: [broken")
	_, err := LoadCatalog(path)
	require.Error(t, err)
}

func TestCatalogValidate(t *testing.T) {
	valid := Catalog{
		Finish: "Завершить заказ",
		Berries: []CatalogItem{
			{Name: "Голубика", PricePerKg: 500},
		},
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		catalog Catalog
	}{
		{
			name:    "no finish label",
			catalog: Catalog{Berries: []CatalogItem{{Name: "Голубика", PricePerKg: 500}}},
		},
		{
			name:    "no berries",
			catalog: Catalog{Finish: "Завершить заказ"},
		},
		{
			name: "empty berry name",
			catalog: Catalog{Finish: "Завершить заказ", Berries: []CatalogItem{
				{Name: "", PricePerKg: 100},
			}},
		},
		{
			name: "finish label priced as berry",
			catalog: Catalog{Finish: "Завершить заказ", Berries: []CatalogItem{
				{Name: "Завершить заказ", PricePerKg: 100},
			}},
		},
		{
			name: "zero price",
			catalog: Catalog{Finish: "Завершить заказ", Berries: []CatalogItem{
				{Name: "Голубика", PricePerKg: 0},
			}},
		},
		{
			name: "duplicate berry",
			catalog: Catalog{Finish: "Завершить заказ", Berries: []CatalogItem{
				{Name: "Голубика", PricePerKg: 500},
				{Name: "Голубика", PricePerKg: 450},
			}},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, tt.catalog.Validate())
		})
	}
}
