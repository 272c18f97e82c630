// Package game ties the generation, progression, combat, and sell-queue pieces
// together into a per-player session. A session owns all of one player's
// mutable game state; nothing is shared across players and no package-level
// state exists. The host drives time explicitly through Tick, so the core is
// testable without real timers.
package game

import (
	"errors"
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/grindworks/grindstone/internal/combat"
	"github.com/grindworks/grindstone/internal/config"
	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/items"
	"github.com/grindworks/grindstone/internal/progression"
	"github.com/grindworks/grindstone/internal/sellqueue"
	"github.com/grindworks/grindstone/internal/tiers"
)

var (
	// ErrTargetNotFound is returned when an operation references an item or
	// enemy that is no longer present. Absence is authoritative: the enemy may
	// have been pruned by the expiry sweep in the same tick.
	ErrTargetNotFound = errors.New("target not found")

	// ErrAreaLocked is returned when travelling to an area above the player's
	// level.
	ErrAreaLocked = errors.New("area level requirement not met")

	// ErrUnknownArea is returned for area names not in the catalog.
	ErrUnknownArea = errors.New("unknown area")

	// ErrNoWeaponEquipped is returned when fighting without an equipped weapon.
	ErrNoWeaponEquipped = errors.New("no weapon equipped")
)

// Session is one player's live game state. All exported methods are safe for
// concurrent use; a single mutex serializes every mutation, which is the
// single-writer discipline the design calls for.
type Session struct {
	mu       sync.Mutex
	PlayerID int64

	prog      *progression.State
	currency  float64
	inventory []*items.Item
	equipped  *items.Item
	ids       *items.IDAllocator
	queue     *sellqueue.Queue

	areas   []enemies.Area
	current *enemies.Area
	spawns  map[string]*enemies.SpawnList

	itemGen  *items.Generator
	enemyGen *enemies.Generator
	settings *config.GameSettings

	subscribers    map[int]func(Event)
	nextSubscriber int

	lastSpawn time.Time
	dirty     bool
}

// NewSession creates a fresh session for a player. Tables, catalogs, areas,
// settings, and the random source are all injected; the session discovers
// nothing ambiently.
func NewSession(playerID int64, tables *tiers.Tables, catalog *items.Catalog, areas []enemies.Area, settings *config.GameSettings, rng *rand.Rand) (*Session, error) {
	if len(areas) == 0 {
		return nil, errors.New("no areas configured")
	}

	ids := items.NewIDAllocator()
	s := &Session{
		PlayerID:    playerID,
		prog:        progression.NewState(),
		currency:    settings.StartingCurrency,
		ids:         ids,
		queue:       sellqueue.New(),
		areas:       areas,
		spawns:      make(map[string]*enemies.SpawnList),
		itemGen:     items.NewGenerator(tables, catalog, ids, rng),
		enemyGen:    enemies.NewGenerator(tables.EnemyRarity, rng),
		settings:    settings,
		subscribers: make(map[int]func(Event)),
	}

	s.current = enemies.FindArea(areas, settings.DefaultArea)
	if s.current == nil {
		s.current = &areas[0]
	}
	for i := range areas {
		s.spawns[areas[i].Name] = enemies.NewSpawnList()
	}

	return s, nil
}

// GenerateItem rolls a new item and routes it to the inventory, or straight to
// the sell queue when its combined odds fall below the auto-sell threshold.
func (s *Session) GenerateItem(now time.Time) (*items.Item, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.itemGen.Generate(s.prog)
	autoSold := s.routeItem(item, false, now)
	return item, autoSold
}

// routeItem places a generated item and emits itemGenerated. Callers hold the
// lock. Returns true when the item was auto-sold.
func (s *Session) routeItem(item *items.Item, fromLoot bool, now time.Time) bool {
	autoSold := item.Odds < s.settings.AutoSellThreshold
	if autoSold {
		s.queue.Enqueue(item, s.sellDelay(), now)
	} else {
		s.inventory = append(s.inventory, item)
	}
	s.dirty = true
	s.emit(EventItemGenerated, ItemGeneratedData{Item: item, AutoSold: autoSold, FromLoot: fromLoot})
	return autoSold
}

func (s *Session) sellDelay() time.Duration {
	seconds := s.settings.SellDelaySeconds
	if seconds <= 0 {
		seconds = 30
	}
	return time.Duration(seconds) * time.Second
}

// SellItem moves an inventory item into the sell-delay queue.
func (s *Session) SellItem(itemID int, now time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.takeFromInventory(itemID)
	if item == nil {
		return ErrTargetNotFound
	}
	s.queue.Enqueue(item, s.sellDelay(), now)
	s.dirty = true
	return nil
}

// CancelSale pulls an item back out of the sell queue into the inventory.
func (s *Session) CancelSale(itemID int) (*items.Item, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.queue.Cancel(itemID)
	if item == nil {
		return nil, ErrTargetNotFound
	}
	s.inventory = append(s.inventory, item)
	s.dirty = true
	return item, nil
}

// Equip moves an inventory item into the equipped slot; a previously equipped
// weapon returns to the inventory.
func (s *Session) Equip(itemID int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	item := s.takeFromInventory(itemID)
	if item == nil {
		return ErrTargetNotFound
	}
	if s.equipped != nil {
		s.inventory = append(s.inventory, s.equipped)
	}
	s.equipped = item
	s.dirty = true
	return nil
}

// takeFromInventory removes and returns an item by ID. Callers hold the lock.
func (s *Session) takeFromInventory(itemID int) *items.Item {
	for i, item := range s.inventory {
		if item.ID == itemID {
			s.inventory = append(s.inventory[:i], s.inventory[i+1:]...)
			return item
		}
	}
	return nil
}

// PurchaseUpgrade buys count levels on an upgrade track, charging the summed
// incremental cost. The purchase is atomic.
func (s *Session) PurchaseUpgrade(track progression.Track, count int) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	cost, err := s.prog.PurchaseUpgrade(track, count, int(s.currency))
	if err != nil {
		return cost, err
	}
	s.currency -= float64(cost)
	s.dirty = true
	return cost, nil
}

// GrantCurrency credits spendable currency, e.g. from a shop reward.
func (s *Session) GrantCurrency(amount float64) {
	if amount <= 0 {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.currency += amount
	s.dirty = true
}

// SetPreferences updates the per-player tunables. A non-positive threshold
// disables auto-sell; an unrecognized sort falls back to newest-first.
func (s *Session) SetPreferences(autoSellThreshold float64, inventorySort string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if autoSellThreshold < 0 {
		autoSellThreshold = 0
	}
	switch inventorySort {
	case "price", "odds":
	default:
		inventorySort = "newest"
	}
	s.settings.AutoSellThreshold = autoSellThreshold
	s.settings.InventorySort = inventorySort
	s.dirty = true
}

// TravelTo switches the hunting area, enforcing its level requirement.
func (s *Session) TravelTo(areaName string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	area := enemies.FindArea(s.areas, areaName)
	if area == nil {
		return ErrUnknownArea
	}
	if s.prog.Level < area.LevelRequirement {
		return ErrAreaLocked
	}
	s.current = area
	s.dirty = true
	return nil
}

// FightResult describes a resolved encounter, including any bonus loot drop.
type FightResult struct {
	Outcome      combat.Outcome
	LevelsGained int
	Drop         *items.Item
	DropAutoSold bool
}

// FightEnemy resolves combat against an enemy in the current area. A target
// that was defeated or pruned concurrently yields ErrTargetNotFound, not a
// fatal error. Victory awards experience and cash; elite kills and Champions
// Hall kills additionally roll a loot drop when the area allows drops.
func (s *Session) FightEnemy(enemyID int64, now time.Time) (*FightResult, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.equipped == nil {
		return nil, ErrNoWeaponEquipped
	}

	list := s.spawns[s.current.Name]
	enemy := list.Find(enemyID)
	if enemy == nil || enemy.Expired(now) {
		return nil, ErrTargetNotFound
	}

	outcome := combat.Resolve(s.equipped, enemy)
	result := &FightResult{Outcome: outcome}
	s.dirty = true

	if !outcome.Victory {
		return result, nil
	}

	list.Remove(enemyID)
	s.currency += outcome.CashGained
	result.LevelsGained = s.prog.AddExperience(outcome.ExpGained)

	s.emit(EventEnemyDefeated, EnemyDefeatedData{Enemy: enemy, ExpGained: outcome.ExpGained, CashGained: outcome.CashGained})
	if result.LevelsGained > 0 {
		s.emit(EventLeveledUp, LeveledUpData{NewLevel: s.prog.Level, LevelsGained: result.LevelsGained})
	}

	if s.current.DropsItemsOnDefeat && (enemy.IsElite || s.current.IsChampionsHall()) {
		drop := s.itemGen.GenerateLoot(s.prog)
		result.Drop = drop
		result.DropAutoSold = s.routeItem(drop, true, now)
	}

	return result, nil
}

// Tick advances the session to now: spawns an enemy in the current area on the
// spawn cadence, prunes expired enemies everywhere, and resolves due sales.
// The host calls this on its own clock; ordering relative to other operations
// is not guaranteed and does not need to be.
func (s *Session) Tick(now time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.spawnTick(now)

	for _, list := range s.spawns {
		list.Prune(now)
	}

	for _, sale := range s.queue.Tick(now) {
		s.currency += sale.Currency
		levels := s.prog.AddExperience(sale.Exp)
		s.ids.Recycle(sale.Item.ID)
		s.dirty = true
		s.emit(EventItemSold, ItemSoldData{Item: sale.Item, Currency: sale.Currency, ExpGained: sale.Exp})
		if levels > 0 {
			s.emit(EventLeveledUp, LeveledUpData{NewLevel: s.prog.Level, LevelsGained: levels})
		}
	}
}

func (s *Session) spawnTick(now time.Time) {
	interval := time.Duration(s.settings.SpawnIntervalSeconds) * time.Second
	if interval <= 0 {
		interval = 10 * time.Second
	}
	if !s.lastSpawn.IsZero() && now.Sub(s.lastSpawn) < interval {
		return
	}
	s.lastSpawn = now

	enemy := s.enemyGen.Generate(s.current, s.prog.EnemyLuckMultiplier(), now)
	s.spawns[s.current.Name].Add(enemy)
	s.emit(EventEnemySpawned, enemy)
}

// EnemiesHere returns the live enemies in the current area.
func (s *Session) EnemiesHere(now time.Time) []*enemies.Enemy {
	s.mu.Lock()
	defer s.mu.Unlock()

	var out []*enemies.Enemy
	for _, e := range s.spawns[s.current.Name].All() {
		if !e.Expired(now) {
			out = append(out, e)
		}
	}
	return out
}

// View is a read-only snapshot of the session for presentation.
type View struct {
	Level               int               `json:"level"`
	Experience          float64           `json:"experience"`
	ExpToNext           float64           `json:"exp_to_next"`
	LuckLevel           int               `json:"luck_level"`
	MoldLevel           int               `json:"mold_level"`
	LuckMultiplier      float64           `json:"luck_multiplier"`
	MoldMultiplier      float64           `json:"mold_multiplier"`
	EnemyLuckMultiplier float64           `json:"enemy_luck_multiplier"`
	Currency            float64           `json:"currency"`
	CurrentArea         string            `json:"current_area"`
	Equipped            *items.Item       `json:"equipped,omitempty"`
	Inventory           []items.Item      `json:"inventory"`
	PendingSales        []sellqueue.Entry `json:"pending_sales"`
}

// CurrentView assembles a View of the session. Inventory order follows the
// configured sort preference.
func (s *Session) CurrentView() View {
	s.mu.Lock()
	defer s.mu.Unlock()

	inventory := make([]items.Item, 0, len(s.inventory))
	for _, item := range s.sortedInventory() {
		inventory = append(inventory, *item)
	}

	var equipped *items.Item
	if s.equipped != nil {
		copied := *s.equipped
		equipped = &copied
	}

	return View{
		Level:               s.prog.Level,
		Experience:          s.prog.Experience,
		ExpToNext:           progression.RequiredExp(s.prog.Level),
		LuckLevel:           s.prog.LuckLevel,
		MoldLevel:           s.prog.MoldLevel,
		LuckMultiplier:      s.prog.LuckMultiplier(),
		MoldMultiplier:      s.prog.MoldMultiplier(),
		EnemyLuckMultiplier: s.prog.EnemyLuckMultiplier(),
		Currency:            s.currency,
		CurrentArea:         s.current.Name,
		Equipped:            equipped,
		Inventory:           inventory,
		PendingSales:        s.queue.Entries(),
	}
}

// sortedInventory orders the inventory per the configured preference. Callers
// hold the lock.
func (s *Session) sortedInventory() []*items.Item {
	out := make([]*items.Item, len(s.inventory))
	copy(out, s.inventory)

	switch s.settings.InventorySort {
	case "price":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Price > out[j].Price })
	case "odds":
		sort.SliceStable(out, func(i, j int) bool { return out[i].Odds > out[j].Odds })
	}
	return out
}

// Dirty reports whether state changed since the last ClearDirty, for the
// autosave sweep.
func (s *Session) Dirty() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.dirty
}

// ClearDirty marks the session as persisted.
func (s *Session) ClearDirty() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.dirty = false
}
