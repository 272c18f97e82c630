package main

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"

	"github.com/grindworks/grindstone/internal/database"
)

type shopCatalog struct {
	Items []struct {
		Name           string `yaml:"name"`
		Description    string `yaml:"description"`
		PointCost      int    `yaml:"point_cost"`
		CurrencyReward int    `yaml:"currency_reward"`
	} `yaml:"shop_items"`
}

// seedShop loads the shop catalog YAML and inserts it if the shop table is
// empty.
func seedShop(db *database.Database, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read shop file: %w", err)
	}

	var parsed shopCatalog
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return fmt.Errorf("failed to parse shop YAML: %w", err)
	}

	items := make([]*database.ShopItem, 0, len(parsed.Items))
	for _, entry := range parsed.Items {
		if entry.Name == "" || entry.PointCost <= 0 {
			return fmt.Errorf("shop item %q: name and a positive point_cost are required", entry.Name)
		}
		items = append(items, &database.ShopItem{
			Name:           entry.Name,
			Description:    entry.Description,
			PointCost:      entry.PointCost,
			CurrencyReward: entry.CurrencyReward,
		})
	}
	return db.SeedShopItems(items)
}
