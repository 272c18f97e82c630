// Package enemies implements enemy generation and the per-area spawn lists
// that hold live enemies until they are defeated or expire.
package enemies

import "time"

// Enemy is a spawned enemy instance. Enemies are transient: they live in an
// area's spawn list and are never persisted.
type Enemy struct {
	ID         int64   `json:"id"`
	Name       string  `json:"name"`
	RarityTier string  `json:"rarity_tier"`
	IsElite    bool    `json:"is_elite"`
	Health     float64 `json:"health"`
	Damage     float64 `json:"damage"`
	ExpReward  float64 `json:"exp_reward"`
	CashReward float64 `json:"cash_reward"`
	// Odds is the "1 in N" figure for the rarity roll that produced this enemy.
	Odds      float64   `json:"odds"`
	SpawnedAt time.Time `json:"spawned_at"`
	// DespawnAfter is how long the enemy lingers before the expiry sweep
	// removes it. Rarer enemies linger longer.
	DespawnAfter time.Duration `json:"despawn_after"`
}

// ExpiresAt returns the instant the expiry sweep will remove the enemy.
func (e *Enemy) ExpiresAt() time.Time {
	return e.SpawnedAt.Add(e.DespawnAfter)
}

// Expired reports whether the enemy should be pruned at the given time.
func (e *Enemy) Expired(now time.Time) bool {
	return !now.Before(e.ExpiresAt())
}
