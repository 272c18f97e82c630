// Package progression tracks player level, experience, and the two upgrade
// tracks (luck and mold) whose multipliers drive tier resolution.
package progression

import (
	"errors"
	"math"
)

var (
	// ErrInsufficientFunds is returned when an upgrade purchase costs more than
	// the available currency. No levels are applied.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrInvalidAmount is returned for non-positive upgrade counts.
	ErrInvalidAmount = errors.New("upgrade count must be positive")
)

// Track identifies an upgrade track.
type Track int

const (
	TrackLuck Track = iota
	TrackMold
)

// String returns the string representation of a Track.
func (t Track) String() string {
	switch t {
	case TrackLuck:
		return "luck"
	case TrackMold:
		return "mold"
	default:
		return "unknown"
	}
}

// Multiplier curve constants. The curve has two regimes split at level 50:
// logarithmic growth below, power-law growth above. The jump at the boundary is
// deliberate balance tuning.
const (
	curveSplitLevel = 50

	luckLogOffset   = 0.6931 // ln(2), normalizes level 1 to 1.0
	luckLogScale    = 0.35
	luckPowExponent = 0.62
	luckPowScale    = 0.30

	moldLogOffset   = 0.6931
	moldLogScale    = 0.25
	moldPowExponent = 0.55
	moldPowScale    = 0.35

	enemyLogOffset   = 0.6931
	enemyLogScale    = 0.30
	enemyPowExponent = 0.58
	enemyPowScale    = 0.32
)

// Upgrade cost constants: level L to L+1 costs round(L^exponent) + offset.
const (
	luckCostExponent = 2.2
	luckCostOffset   = 10

	moldCostExponent = 2.5
	moldCostOffset   = 25
)

// State is a player's mutable progression record.
type State struct {
	Level      int
	Experience float64
	LuckLevel  int
	MoldLevel  int
}

// NewState returns a fresh level-1 progression state.
func NewState() *State {
	return &State{Level: 1, LuckLevel: 1, MoldLevel: 1}
}

// RequiredExp returns the experience needed to advance past the given level.
// Formula: floor(100 * level^1.05)
func RequiredExp(level int) float64 {
	if level < 1 {
		level = 1
	}
	return math.Floor(100 * math.Pow(float64(level), 1.05))
}

// AddExperience awards experience and resolves level-ups by repeated
// subtraction, so a single large award can gain several levels. Returns the
// number of levels gained. Non-positive amounts are ignored.
func (s *State) AddExperience(amount float64) int {
	if amount <= 0 {
		return 0
	}

	s.Experience += amount
	gained := 0
	for s.Experience >= RequiredExp(s.Level) {
		s.Experience -= RequiredExp(s.Level)
		s.Level++
		gained++
	}
	return gained
}

// computeMultiplier evaluates the two-regime curve, rounding to 2 decimals at
// each stage.
func computeMultiplier(level int, logOffset, logScale, powExponent, powScale float64) float64 {
	if level < 1 {
		level = 1
	}
	if level <= curveSplitLevel {
		return round2(1 + (math.Log(1+float64(level))-logOffset)*logScale)
	}
	return round2(math.Pow(float64(level), powExponent) * powScale)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}

// LuckMultiplier returns the item-rarity roll multiplier for the luck track.
func (s *State) LuckMultiplier() float64 {
	return computeMultiplier(s.LuckLevel, luckLogOffset, luckLogScale, luckPowExponent, luckPowScale)
}

// MoldMultiplier returns the mold roll multiplier for the mold track.
func (s *State) MoldMultiplier() float64 {
	return computeMultiplier(s.MoldLevel, moldLogOffset, moldLogScale, moldPowExponent, moldPowScale)
}

// EnemyLuckMultiplier returns the enemy-rarity roll multiplier, which grows
// with player level rather than with an upgrade track.
func (s *State) EnemyLuckMultiplier() float64 {
	return computeMultiplier(s.Level, enemyLogOffset, enemyLogScale, enemyPowExponent, enemyPowScale)
}

// UpgradeCost returns the cost of raising a track from level to level+1.
func UpgradeCost(track Track, level int) int {
	if level < 1 {
		level = 1
	}
	switch track {
	case TrackMold:
		return int(math.Round(math.Pow(float64(level), moldCostExponent))) + moldCostOffset
	default:
		return int(math.Round(math.Pow(float64(level), luckCostExponent))) + luckCostOffset
	}
}

// BulkUpgradeCost sums the incremental costs of raising a track count times
// starting at the given level. Cost is non-linear, so each step is priced at
// its own level.
func BulkUpgradeCost(track Track, level, count int) int {
	total := 0
	for i := 0; i < count; i++ {
		total += UpgradeCost(track, level+i)
	}
	return total
}

// PurchaseUpgrade raises a track by count levels if available currency covers
// the summed incremental cost. The purchase is atomic: on failure no levels are
// applied and the returned cost is what the purchase would have required (0 for
// invalid counts). The caller deducts the returned cost on success.
func (s *State) PurchaseUpgrade(track Track, count int, available int) (int, error) {
	if count <= 0 {
		return 0, ErrInvalidAmount
	}

	level := s.trackLevel(track)
	total := BulkUpgradeCost(track, level, count)
	if total > available {
		return total, ErrInsufficientFunds
	}

	switch track {
	case TrackMold:
		s.MoldLevel += count
	default:
		s.LuckLevel += count
	}
	return total, nil
}

func (s *State) trackLevel(track Track) int {
	if track == TrackMold {
		return s.MoldLevel
	}
	return s.LuckLevel
}
