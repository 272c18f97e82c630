package enemies

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ChampionsHallName identifies the top-tier area that stacks its own flat
// reward multipliers on top of elite status.
const ChampionsHallName = "Champions Hall"

// Area is a static hunting-ground descriptor. Areas are read-only
// configuration, not runtime entities.
type Area struct {
	Name string `yaml:"name"`
	// Denizen is the noun used when naming spawned enemies ("Ancient wolf").
	Denizen string `yaml:"denizen"`
	// LuckMultiplier further shrinks the enemy rarity roll ceiling.
	LuckMultiplier float64 `yaml:"luck_multiplier"`
	// EliteMultiplier scales the chance of the independent elite roll.
	EliteMultiplier  float64 `yaml:"elite_multiplier"`
	LevelRequirement int     `yaml:"level_requirement"`
	// DropsItemsOnDefeat gates whether defeats here can yield bonus loot.
	DropsItemsOnDefeat bool `yaml:"drops_items_on_defeat"`
}

// IsChampionsHall reports whether this is the designated top-tier area.
func (a *Area) IsChampionsHall() bool {
	return a.Name == ChampionsHallName
}

// areasFile is the structure of the areas YAML file.
type areasFile struct {
	Areas []Area `yaml:"areas"`
}

// LoadAreasFromYAML loads area descriptors from a YAML file.
func LoadAreasFromYAML(filename string) ([]Area, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read areas file: %w", err)
	}

	var file areasFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse areas YAML: %w", err)
	}

	if len(file.Areas) == 0 {
		return nil, fmt.Errorf("areas file defines no areas")
	}
	for i, area := range file.Areas {
		if area.Name == "" {
			return nil, fmt.Errorf("area %d has no name", i)
		}
		if area.LuckMultiplier < 1 {
			return nil, fmt.Errorf("area %q: luck multiplier must be at least 1", area.Name)
		}
		if area.EliteMultiplier < 1 {
			return nil, fmt.Errorf("area %q: elite multiplier must be at least 1", area.Name)
		}
	}

	return file.Areas, nil
}

// FindArea returns the area with the given name, or nil.
func FindArea(areas []Area, name string) *Area {
	for i := range areas {
		if areas[i].Name == name {
			return &areas[i]
		}
	}
	return nil
}
