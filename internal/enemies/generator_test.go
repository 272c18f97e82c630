package enemies

import (
	"math"
	"math/rand"
	"testing"
	"time"

	"github.com/grindworks/grindstone/internal/tiers"
)

func createTestTable(t *testing.T) *tiers.Table[tiers.EnemyRarityStats] {
	t.Helper()
	table, err := tiers.NewTable([]tiers.Row[tiers.EnemyRarityStats]{
		{Name: "Ancient", Threshold: 10, Stats: tiers.EnemyRarityStats{HealthMult: 300, DamageMult: 25, ExpMult: 200, CashMult: 250}},
		{Name: "Veteran", Threshold: 2000, Stats: tiers.EnemyRarityStats{HealthMult: 10, DamageMult: 4, ExpMult: 9, CashMult: 10}},
		{Name: "Grunt", Threshold: tiers.MaxRollValue, Stats: tiers.EnemyRarityStats{HealthMult: 1, DamageMult: 1, ExpMult: 1, CashMult: 1}},
	})
	if err != nil {
		t.Fatalf("Failed to build enemy table: %v", err)
	}
	return table
}

func testArea() *Area {
	return &Area{
		Name:             "Meadow",
		Denizen:          "wolf",
		LuckMultiplier:   1,
		EliteMultiplier:  1,
		LevelRequirement: 1,
	}
}

func TestGenerateGruntStats(t *testing.T) {
	table := createTestTable(t)
	now := time.Now()

	// Find a seed producing a non-elite Grunt for exact arithmetic.
	var enemy *Enemy
	for seed := int64(0); seed < 50; seed++ {
		gen := NewGenerator(table, rand.New(rand.NewSource(seed)))
		candidate := gen.Generate(testArea(), 1, now)
		if candidate.RarityTier == "Grunt" && !candidate.IsElite {
			enemy = candidate
			break
		}
	}
	if enemy == nil {
		t.Fatal("No seed produced a plain Grunt")
	}

	if enemy.Health != baseHealth || enemy.Damage != baseDamage {
		t.Errorf("Grunt stats = %v/%v, want base %v/%v", enemy.Health, enemy.Damage, baseHealth, baseDamage)
	}
	if enemy.ExpReward != baseExp || enemy.CashReward != baseCash {
		t.Errorf("Grunt rewards = %v/%v, want base %v/%v", enemy.ExpReward, enemy.CashReward, baseExp, baseCash)
	}
	if enemy.Name != "Grunt wolf" {
		t.Errorf("Enemy name = %q, want %q", enemy.Name, "Grunt wolf")
	}
}

func TestEliteMultipliesStats(t *testing.T) {
	table := createTestTable(t)
	area := testArea()
	area.EliteMultiplier = 1000 // elite roll range collapses to [1,1]: always elite
	now := time.Now()

	var enemy *Enemy
	for seed := int64(0); seed < 50; seed++ {
		gen := NewGenerator(table, rand.New(rand.NewSource(seed)))
		candidate := gen.Generate(area, 1, now)
		if candidate.RarityTier == "Grunt" {
			enemy = candidate
			break
		}
	}
	if enemy == nil {
		t.Fatal("No seed produced a Grunt")
	}

	if !enemy.IsElite {
		t.Fatal("Elite multiplier 1000 must force elite status")
	}
	if enemy.Health != baseHealth*eliteHealthMult {
		t.Errorf("Elite health = %v, want %v", enemy.Health, baseHealth*eliteHealthMult)
	}
	if enemy.Damage != baseDamage*eliteDamageMult {
		t.Errorf("Elite damage = %v, want %v", enemy.Damage, baseDamage*eliteDamageMult)
	}
	if enemy.ExpReward != baseExp*eliteExpMult {
		t.Errorf("Elite exp = %v, want %v", enemy.ExpReward, baseExp*eliteExpMult)
	}
	if enemy.CashReward != baseCash*eliteCashMult {
		t.Errorf("Elite cash = %v, want %v", enemy.CashReward, baseCash*eliteCashMult)
	}
	if enemy.Name != "Elite Grunt wolf" {
		t.Errorf("Elite name = %q, want %q", enemy.Name, "Elite Grunt wolf")
	}
}

func TestChampionsHallStacksWithElite(t *testing.T) {
	table := createTestTable(t)
	area := &Area{
		Name:               ChampionsHallName,
		Denizen:            "champion",
		LuckMultiplier:     1,
		EliteMultiplier:    1000, // always elite
		DropsItemsOnDefeat: true,
	}
	now := time.Now()

	var enemy *Enemy
	for seed := int64(0); seed < 50; seed++ {
		gen := NewGenerator(table, rand.New(rand.NewSource(seed)))
		candidate := gen.Generate(area, 1, now)
		if candidate.RarityTier == "Grunt" {
			enemy = candidate
			break
		}
	}
	if enemy == nil {
		t.Fatal("No seed produced a Grunt")
	}

	// Elite and hall multipliers stack multiplicatively.
	if enemy.Health != baseHealth*eliteHealthMult*hallHealthMult {
		t.Errorf("Hall elite health = %v, want %v", enemy.Health, baseHealth*eliteHealthMult*hallHealthMult)
	}
	if enemy.CashReward != baseCash*eliteCashMult*hallCashMult {
		t.Errorf("Hall elite cash = %v, want %v", enemy.CashReward, baseCash*eliteCashMult*hallCashMult)
	}
}

func TestDespawnDuration(t *testing.T) {
	// floor(120 * ln(rank+5) / ln(1.2)) seconds
	for rank := 0; rank < 6; rank++ {
		want := time.Duration(math.Floor(120*math.Log(float64(rank+5))/math.Log(1.2))) * time.Second
		if got := DespawnDuration(rank); got != want {
			t.Errorf("DespawnDuration(%d) = %v, want %v", rank, got, want)
		}
	}

	// Rarer enemies linger longer.
	if DespawnDuration(5) <= DespawnDuration(0) {
		t.Error("Despawn duration must grow with rarity rank")
	}
}

func TestAreaLuckShrinksCeiling(t *testing.T) {
	table := createTestTable(t)
	now := time.Now()

	rareRate := func(areaLuck float64) float64 {
		gen := NewGenerator(table, rand.New(rand.NewSource(11)))
		area := testArea()
		area.LuckMultiplier = areaLuck
		hits := 0
		const trials = 30000
		for i := 0; i < trials; i++ {
			if gen.Generate(area, 1, now).RarityTier != "Grunt" {
				hits++
			}
		}
		return float64(hits) / trials
	}

	if low, high := rareRate(1), rareRate(20); high <= low {
		t.Errorf("Area luck 20 rare rate %.5f should exceed luck 1 rate %.5f", high, low)
	}
}
