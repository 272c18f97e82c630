package enemies

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/grindworks/grindstone/internal/tiers"
)

// Base stat block scaled by the rolled rarity tier.
const (
	baseHealth = 50.0
	baseDamage = 5.0
	baseExp    = 10.0
	baseCash   = 5.0
)

// Elite roll: a spawn is elite when a roll in [1, 1000/area.EliteMultiplier]
// lands on 1, so higher-elite areas roll against a smaller range.
const eliteRollRange = 1000

// Elite stat multipliers.
const (
	eliteHealthMult = 20.0
	eliteDamageMult = 10.0
	eliteExpMult    = 20.0
	eliteCashMult   = 35.0
)

// Champions Hall stacks a further flat multiplier block on every spawn there,
// multiplicatively with elite status when both apply.
const (
	hallHealthMult = 200.0
	hallDamageMult = 200.0
	hallExpMult    = 750.0
	hallCashMult   = 1500.0
)

// Despawn curve: floor(120 * ln(rankFromBottom+5) / ln(1.2)) seconds. Rarer
// enemies linger longer so players get more time to engage them.
const (
	despawnBaseSeconds = 120
	despawnLogBase     = 1.2
	despawnRankOffset  = 5
)

// Generator produces enemies by rolling the enemy rarity table.
type Generator struct {
	table  *tiers.Table[tiers.EnemyRarityStats]
	rng    *rand.Rand
	nextID int64
}

// NewGenerator creates an enemy generator using the given rarity table and
// random source.
func NewGenerator(table *tiers.Table[tiers.EnemyRarityStats], rng *rand.Rand) *Generator {
	return &Generator{table: table, rng: rng}
}

// DespawnDuration returns how long an enemy of the given rarity rank (from the
// bottom of the table) lingers before expiry.
func DespawnDuration(rankFromBottom int) time.Duration {
	seconds := math.Floor(despawnBaseSeconds * math.Log(float64(rankFromBottom+despawnRankOffset)) / math.Log(despawnLogBase))
	return time.Duration(seconds) * time.Second
}

// Generate rolls a new enemy for the given area. The rarity roll ceiling is
// shrunk by both the player's enemy-luck multiplier and the area's own luck
// multiplier; the elite roll is independent.
func (g *Generator) Generate(area *Area, enemyLuckMultiplier float64, now time.Time) *Enemy {
	ceiling := tiers.RollCeiling(enemyLuckMultiplier * area.LuckMultiplier)
	roll := g.rng.Intn(ceiling) + 1
	rarity := g.table.Resolve(roll)

	isElite := g.rollElite(area.EliteMultiplier)

	health := baseHealth * rarity.Stats.HealthMult
	damage := baseDamage * rarity.Stats.DamageMult
	exp := baseExp * rarity.Stats.ExpMult
	cash := baseCash * rarity.Stats.CashMult

	if isElite {
		health *= eliteHealthMult
		damage *= eliteDamageMult
		exp *= eliteExpMult
		cash *= eliteCashMult
	}
	if area.IsChampionsHall() {
		health *= hallHealthMult
		damage *= hallDamageMult
		exp *= hallExpMult
		cash *= hallCashMult
	}

	name := fmt.Sprintf("%s %s", rarity.Name, area.Denizen)
	if isElite {
		name = "Elite " + name
	}

	g.nextID++
	return &Enemy{
		ID:           g.nextID,
		Name:         name,
		RarityTier:   rarity.Name,
		IsElite:      isElite,
		Health:       health,
		Damage:       damage,
		ExpReward:    exp,
		CashReward:   cash,
		Odds:         tiers.RoundOdds(rarity.Odds(ceiling)),
		SpawnedAt:    now,
		DespawnAfter: DespawnDuration(rarity.RankFromBottom),
	}
}

func (g *Generator) rollElite(eliteMultiplier float64) bool {
	bound := int(math.Floor(eliteRollRange / eliteMultiplier))
	if bound < 1 {
		bound = 1
	}
	return g.rng.Intn(bound)+1 == 1
}
