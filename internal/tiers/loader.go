package tiers

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ItemRarityStats are the stat multipliers attached to an item rarity bracket.
type ItemRarityStats struct {
	PriceMult  float64 `yaml:"price_mult"`
	DamageMult float64 `yaml:"damage_mult"`
	ExpMult    float64 `yaml:"exp_mult"`
}

// MoldStats are the stat multipliers attached to a mold bracket. Mold is a
// second, independent quality axis applied to items alongside rarity.
type MoldStats struct {
	PriceMult float64 `yaml:"price_mult"`
	ExpMult   float64 `yaml:"exp_mult"`
}

// EnemyRarityStats are the stat multipliers attached to an enemy rarity bracket.
type EnemyRarityStats struct {
	HealthMult float64 `yaml:"health_mult"`
	DamageMult float64 `yaml:"damage_mult"`
	ExpMult    float64 `yaml:"exp_mult"`
	CashMult   float64 `yaml:"cash_mult"`
}

// rowDefinition is a tier row as it appears in the tables YAML file.
type rowDefinition[T any] struct {
	Name      string `yaml:"name"`
	Threshold int    `yaml:"threshold"`
	Stats     T      `yaml:",inline"`
}

// TablesConfig is the structure of the tiers YAML file. Items and enemies roll
// against separate rarity tables; molds are a second, independent axis on items.
type TablesConfig struct {
	ItemRarity  []rowDefinition[ItemRarityStats]  `yaml:"item_rarity"`
	Mold        []rowDefinition[MoldStats]        `yaml:"mold"`
	EnemyRarity []rowDefinition[EnemyRarityStats] `yaml:"enemy_rarity"`
}

// Tables bundles the three constructed tier tables.
type Tables struct {
	ItemRarity  *Table[ItemRarityStats]
	Mold        *Table[MoldStats]
	EnemyRarity *Table[EnemyRarityStats]
}

// LoadTablesFromYAML loads and validates the three tier tables from a YAML file.
func LoadTablesFromYAML(filename string) (*Tables, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read tiers file: %w", err)
	}

	var config TablesConfig
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse tiers YAML: %w", err)
	}

	return BuildTables(&config)
}

// BuildTables constructs tier tables from parsed definitions.
func BuildTables(config *TablesConfig) (*Tables, error) {
	itemRarity, err := buildTable("item_rarity", config.ItemRarity)
	if err != nil {
		return nil, err
	}
	mold, err := buildTable("mold", config.Mold)
	if err != nil {
		return nil, err
	}
	enemyRarity, err := buildTable("enemy_rarity", config.EnemyRarity)
	if err != nil {
		return nil, err
	}

	return &Tables{ItemRarity: itemRarity, Mold: mold, EnemyRarity: enemyRarity}, nil
}

func buildTable[T any](name string, defs []rowDefinition[T]) (*Table[T], error) {
	rows := make([]Row[T], 0, len(defs))
	for _, def := range defs {
		rows = append(rows, Row[T]{
			Name:      def.Name,
			Threshold: def.Threshold,
			Stats:     def.Stats,
		})
	}

	table, err := NewTable(rows)
	if err != nil {
		return nil, fmt.Errorf("invalid %s table: %w", name, err)
	}
	return table, nil
}
