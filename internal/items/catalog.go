package items

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// WeaponDefinition is a weapon archetype from the weapons YAML file. Base stats
// are multiplied by the rolled rarity and mold tiers at generation time.
type WeaponDefinition struct {
	Name        string  `yaml:"name"`
	BasePrice   float64 `yaml:"base_price"`
	BaseDamage  float64 `yaml:"base_damage"`
	BaseDefense float64 `yaml:"base_defense"`
	// UnlockMoldLevel is the mold track level required before this archetype
	// can be generated.
	UnlockMoldLevel int `yaml:"unlock_mold_level"`
}

// Catalog holds the loaded weapon archetypes in file order.
type Catalog struct {
	Weapons []WeaponDefinition
}

// catalogFile is the structure of the weapons YAML file.
type catalogFile struct {
	Weapons []WeaponDefinition `yaml:"weapons"`
}

// LoadCatalogFromYAML loads weapon archetypes from a YAML file.
func LoadCatalogFromYAML(filename string) (*Catalog, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read weapons file: %w", err)
	}

	var file catalogFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse weapons YAML: %w", err)
	}

	return NewCatalog(file.Weapons)
}

// NewCatalog validates and constructs a weapon catalog. At least one archetype
// must be available from mold level 1 or no item could ever generate.
func NewCatalog(weapons []WeaponDefinition) (*Catalog, error) {
	if len(weapons) == 0 {
		return nil, fmt.Errorf("weapon catalog is empty")
	}

	baseUnlocked := false
	for i, w := range weapons {
		if w.Name == "" {
			return nil, fmt.Errorf("weapon %d has no name", i)
		}
		if w.BaseDamage <= 0 {
			return nil, fmt.Errorf("weapon %q: base damage must be positive", w.Name)
		}
		if w.UnlockMoldLevel <= 1 {
			baseUnlocked = true
		}
	}
	if !baseUnlocked {
		return nil, fmt.Errorf("no weapon is unlocked at mold level 1")
	}

	copied := make([]WeaponDefinition, len(weapons))
	copy(copied, weapons)
	return &Catalog{Weapons: copied}, nil
}

// Unlocked returns the archetypes available at the given mold level.
func (c *Catalog) Unlocked(moldLevel int) []WeaponDefinition {
	var out []WeaponDefinition
	for _, w := range c.Weapons {
		if w.UnlockMoldLevel <= moldLevel {
			out = append(out, w)
		}
	}
	return out
}
