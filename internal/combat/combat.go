// Package combat implements the deterministic turn loop between a player's
// equipped weapon and an enemy.
package combat

import (
	"math"

	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/items"
)

// PlayerHealth is the fixed per-encounter player health pool. It always resets
// between encounters and is never persisted.
const PlayerHealth = 100.0

// Outcome is the result of a resolved encounter. Reward application (experience,
// currency, loot drops) is the caller's responsibility.
type Outcome struct {
	Victory bool
	// PlayerTurns is the number of attacks the player landed.
	PlayerTurns int
	// PlayerHealthLeft is the remaining pool after the encounter (0 on defeat).
	PlayerHealthLeft float64
	ExpGained        float64
	CashGained       float64
}

// Resolve runs the turn loop: the player strikes first each round for
// floor(weapon damage); if the enemy survives it strikes back for
// max(0, floor(enemy damage / weapon defense)). Zero weapon defense is treated
// as 1 to avoid dividing by zero. The loop always terminates in victory or
// defeat: player damage is at least 1 and a zero-damage enemy simply loses.
func Resolve(weapon *items.Item, enemy *enemies.Enemy) Outcome {
	playerDamage := math.Floor(weapon.Damage)
	if playerDamage < 1 {
		playerDamage = 1
	}

	defense := math.Floor(weapon.Defense)
	if defense < 1 {
		defense = 1
	}
	enemyDamage := math.Max(0, math.Floor(enemy.Damage/defense))

	playerHealth := PlayerHealth
	enemyHealth := enemy.Health
	turns := 0

	for {
		enemyHealth -= playerDamage
		turns++
		if enemyHealth <= 0 {
			return Outcome{
				Victory:          true,
				PlayerTurns:      turns,
				PlayerHealthLeft: playerHealth,
				ExpGained:        enemy.ExpReward,
				CashGained:       enemy.CashReward,
			}
		}

		playerHealth -= enemyDamage
		if playerHealth <= 0 {
			return Outcome{Victory: false, PlayerTurns: turns}
		}
	}
}
