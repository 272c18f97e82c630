package combat

import (
	"testing"

	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/items"
)

func testWeapon(damage, defense float64) *items.Item {
	return &items.Item{ID: 0, WeaponType: "sword", Damage: damage, Defense: defense}
}

func testEnemy(health, damage float64) *enemies.Enemy {
	return &enemies.Enemy{
		ID:         1,
		Name:       "Grunt wolf",
		Health:     health,
		Damage:     damage,
		ExpReward:  10,
		CashReward: 5,
	}
}

func TestResolveVictoryTurnCount(t *testing.T) {
	// Damage 10 vs health 25: 25 -> 15 -> 5 -> -5, exactly 3 player turns.
	outcome := Resolve(testWeapon(10, 5), testEnemy(25, 2))

	if !outcome.Victory {
		t.Fatal("Expected victory")
	}
	if outcome.PlayerTurns != 3 {
		t.Errorf("Expected 3 player turns, got %d", outcome.PlayerTurns)
	}
	if outcome.ExpGained != 10 || outcome.CashGained != 5 {
		t.Errorf("Rewards = %v exp / %v cash, want 10 / 5", outcome.ExpGained, outcome.CashGained)
	}
	// Enemy struck back twice for floor(2/5)=0: player pool untouched.
	if outcome.PlayerHealthLeft != PlayerHealth {
		t.Errorf("Player health = %v, want untouched %v", outcome.PlayerHealthLeft, PlayerHealth)
	}
}

func TestResolveDefeat(t *testing.T) {
	// Enemy deals floor(500/1)=500 per turn: player falls on the first
	// counterattack and earns nothing.
	outcome := Resolve(testWeapon(1, 1), testEnemy(1000, 500))

	if outcome.Victory {
		t.Fatal("Expected defeat")
	}
	if outcome.ExpGained != 0 || outcome.CashGained != 0 {
		t.Error("Defeat must grant no rewards")
	}
}

func TestResolveZeroDefenseGuard(t *testing.T) {
	// Defense 0 must behave as defense 1 instead of dividing by zero.
	outcome := Resolve(testWeapon(50, 0), testEnemy(100, 30))

	if !outcome.Victory {
		t.Fatal("Expected victory")
	}
	// 2 player turns; one counterattack at floor(30/1)=30.
	if outcome.PlayerHealthLeft != PlayerHealth-30 {
		t.Errorf("Player health = %v, want %v", outcome.PlayerHealthLeft, PlayerHealth-30)
	}
}

func TestResolveFlooredDamage(t *testing.T) {
	// Fractional weapon damage floors: 9.9 -> 9 per strike, 3 turns for 25 hp.
	outcome := Resolve(testWeapon(9.9, 5), testEnemy(25, 0))

	if !outcome.Victory {
		t.Fatal("Expected victory")
	}
	if outcome.PlayerTurns != 3 {
		t.Errorf("Expected 3 turns with floored damage, got %d", outcome.PlayerTurns)
	}
}
