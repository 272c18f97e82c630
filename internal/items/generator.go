package items

import (
	"math/rand"

	"github.com/grindworks/grindstone/internal/progression"
	"github.com/grindworks/grindstone/internal/tiers"
)

// Cost scaling by rarity rank from the bottom of the table: each rank adds 15%
// on top of the tier multipliers, capped so top-tier prices stay bounded.
const (
	costScalingStep = 0.15
	costScalingCap  = 1.85
)

// Generator produces items by rolling the rarity and mold tier tables. All
// dependencies are injected; the generator has no global state.
type Generator struct {
	tables  *tiers.Tables
	catalog *Catalog
	ids     *IDAllocator
	rng     *rand.Rand
}

// NewGenerator creates an item generator using the given tables, weapon
// catalog, ID allocator, and random source.
func NewGenerator(tables *tiers.Tables, catalog *Catalog, ids *IDAllocator, rng *rand.Rand) *Generator {
	return &Generator{tables: tables, catalog: catalog, ids: ids, rng: rng}
}

// SetIDs swaps the ID allocator, used when restoring a saved game replaces the
// free list.
func (g *Generator) SetIDs(ids *IDAllocator) {
	g.ids = ids
}

// costScaling returns the rarity-rank price factor.
func costScaling(rankFromBottom int) float64 {
	factor := 1 + costScalingStep*float64(rankFromBottom)
	if factor > costScalingCap {
		factor = costScalingCap
	}
	return factor
}

// Generate rolls a new item for the given progression state. The rarity and
// mold rolls are independent, each bounded by its own track's multiplier.
func (g *Generator) Generate(prog *progression.State) *Item {
	return g.generate(prog, prog.MoldMultiplier())
}

// GenerateLoot rolls a bonus item for an enemy kill. The loot path shrinks the
// mold roll bound by the player's luck multiplier on top of the mold
// multiplier, so loot molds run rarer than shop-generated ones.
func (g *Generator) GenerateLoot(prog *progression.State) *Item {
	return g.generate(prog, prog.MoldMultiplier()*prog.LuckMultiplier())
}

func (g *Generator) generate(prog *progression.State, moldMultiplier float64) *Item {
	rarityCeiling := tiers.RollCeiling(prog.LuckMultiplier())
	moldCeiling := tiers.RollCeiling(moldMultiplier)

	rarityRoll := g.rng.Intn(rarityCeiling) + 1
	moldRoll := g.rng.Intn(moldCeiling) + 1

	rarity := g.tables.ItemRarity.Resolve(rarityRoll)
	mold := g.tables.Mold.Resolve(moldRoll)

	unlocked := g.catalog.Unlocked(prog.MoldLevel)
	weapon := unlocked[g.rng.Intn(len(unlocked))]

	odds := tiers.RoundOdds(rarity.Odds(rarityCeiling) * mold.Odds(moldCeiling))

	return &Item{
		ID:            g.ids.Allocate(),
		Odds:          odds,
		RarityTier:    rarity.Name,
		MoldTier:      mold.Name,
		WeaponType:    weapon.Name,
		Price:         weapon.BasePrice * rarity.Stats.PriceMult * mold.Stats.PriceMult * costScaling(rarity.RankFromBottom),
		Damage:        weapon.BaseDamage * rarity.Stats.DamageMult,
		Defense:       weapon.BaseDefense * rarity.Stats.DamageMult / 2,
		RarityExpMult: rarity.Stats.ExpMult,
		MoldExpMult:   mold.Stats.ExpMult,
	}
}
