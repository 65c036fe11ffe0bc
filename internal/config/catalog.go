package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// CatalogItem is one berry on the menu with its price per kilogram.
type CatalogItem struct {
	Name       string `yaml:"name"`
	PricePerKg int    `yaml:"price_per_kg"`
}

// Catalog is the produce assortment offered by the shop. Finish is the
// label of the terminal menu button that closes the cart.
type Catalog struct {
	Finish  string        `yaml:"finish"`
	Berries []CatalogItem `yaml:"berries"`
}

func LoadCatalog(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read catalog file: %w", err)
	}

	var cat Catalog
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, fmt.Errorf("failed to parse catalog file: %w", err)
	}

	if err := cat.Validate(); err != nil {
		return nil, fmt.Errorf("invalid catalog %s: %w", path, err)
	}
	return &cat, nil
}

func (c *Catalog) Validate() error {
	if c.Finish == "" {
		return fmt.Errorf("finish button label is required")
	}
	if len(c.Berries) == 0 {
		return fmt.Errorf("catalog has no berries")
	}

	seen := make(map[string]bool, len(c.Berries))
	for _, item := range c.Berries {
		if item.Name == "" {
			return fmt.Errorf("catalog item with empty name")
		}
		if item.Name == c.Finish {
			return fmt.Errorf("%q is the finish button and cannot be priced", item.Name)
		}
		if item.PricePerKg <= 0 {
			return fmt.Errorf("berry %q has non-positive price %d", item.Name, item.PricePerKg)
		}
		if seen[item.Name] {
			return fmt.Errorf("berry %q listed twice", item.Name)
		}
		seen[item.Name] = true
	}
	return nil
}

// Price returns the per-kg price of a berry and whether it is on the menu.
func (c *Catalog) Price(name string) (int, bool) {
	for _, item := range c.Berries {
		if item.Name == name {
			return item.PricePerKg, true
		}
	}
	return 0, false
}

// IsFinish reports whether the label is the terminal menu button.
func (c *Catalog) IsFinish(label string) bool {
	return label == c.Finish
}
