package game

import (
	"time"

	"github.com/grindworks/grindstone/internal/items"
	"github.com/grindworks/grindstone/internal/sellqueue"
)

// SnapshotVersion tags serialized state for forward migration.
const SnapshotVersion = 1

// Snapshot is the flat JSON-serializable form of a session. Timestamps are
// absolute so queued sales survive restarts. Unknown fields on load default
// rather than fail.
type Snapshot struct {
	Version      int               `json:"version"`
	Level        int               `json:"level"`
	Experience   float64           `json:"experience"`
	LuckLevel    int               `json:"luck_level"`
	MoldLevel    int               `json:"mold_level"`
	Currency     float64           `json:"currency"`
	CurrentArea  string            `json:"current_area"`
	Inventory    []items.Item      `json:"inventory"`
	EquippedID   *int              `json:"equipped_id,omitempty"`
	Equipped     *items.Item       `json:"equipped,omitempty"`
	NextItemID   int               `json:"next_item_id"`
	RecycledIDs  []int             `json:"recycled_ids"`
	PendingSales []QueuedSale      `json:"pending_sales"`

	// Player preferences ride along with the state. A nil threshold keeps the
	// server default.
	AutoSellThreshold *float64 `json:"auto_sell_threshold,omitempty"`
	InventorySort     string   `json:"inventory_sort,omitempty"`
}

// QueuedSale is a sell-queue entry in serialized form.
type QueuedSale struct {
	Item         items.Item `json:"item"`
	EnqueuedAt   time.Time  `json:"enqueued_at"`
	DelaySeconds int        `json:"delay_seconds"`
}

// Snapshot captures the session's persistent state.
func (s *Session) Snapshot() *Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()

	next, recycled := s.ids.Snapshot()
	snap := &Snapshot{
		Version:     SnapshotVersion,
		Level:       s.prog.Level,
		Experience:  s.prog.Experience,
		LuckLevel:   s.prog.LuckLevel,
		MoldLevel:   s.prog.MoldLevel,
		Currency:    s.currency,
		CurrentArea: s.current.Name,
		NextItemID:  next,
		RecycledIDs: recycled,
	}

	for _, item := range s.inventory {
		snap.Inventory = append(snap.Inventory, *item)
	}
	if s.equipped != nil {
		copied := *s.equipped
		snap.Equipped = &copied
		snap.EquippedID = &copied.ID
	}
	for _, entry := range s.queue.Entries() {
		snap.PendingSales = append(snap.PendingSales, QueuedSale{
			Item:         *entry.Item,
			EnqueuedAt:   entry.EnqueuedAt,
			DelaySeconds: int(entry.Delay / time.Second),
		})
	}

	threshold := s.settings.AutoSellThreshold
	snap.AutoSellThreshold = &threshold
	snap.InventorySort = s.settings.InventorySort

	return snap
}

// RestoreSnapshot replaces the session's state with a saved snapshot,
// normalizing anything missing or out of range. A nil snapshot resets to
// defaults; enemies are transient and never restored.
func (s *Session) RestoreSnapshot(snap *Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if snap == nil {
		snap = &Snapshot{Version: SnapshotVersion}
	}

	s.prog.Level = clampMin(snap.Level, 1)
	s.prog.Experience = snap.Experience
	if s.prog.Experience < 0 {
		s.prog.Experience = 0
	}
	s.prog.LuckLevel = clampMin(snap.LuckLevel, 1)
	s.prog.MoldLevel = clampMin(snap.MoldLevel, 1)

	s.currency = snap.Currency
	if s.currency < 0 {
		s.currency = s.settings.StartingCurrency
	}

	s.inventory = nil
	for i := range snap.Inventory {
		copied := snap.Inventory[i]
		s.inventory = append(s.inventory, &copied)
	}
	s.equipped = nil
	if snap.Equipped != nil {
		copied := *snap.Equipped
		s.equipped = &copied
	}

	s.ids = items.RestoreIDAllocator(snap.NextItemID, snap.RecycledIDs)
	s.itemGen.SetIDs(s.ids)

	var entries []sellqueue.Entry
	for i := range snap.PendingSales {
		queued := snap.PendingSales[i]
		copied := queued.Item
		delay := time.Duration(queued.DelaySeconds) * time.Second
		if delay <= 0 {
			delay = s.sellDelay()
		}
		entries = append(entries, sellqueue.Entry{Item: &copied, EnqueuedAt: queued.EnqueuedAt, Delay: delay})
	}
	s.queue = sellqueue.Restore(entries)

	s.current = nil
	if snap.CurrentArea != "" {
		for i := range s.areas {
			if s.areas[i].Name == snap.CurrentArea && s.prog.Level >= s.areas[i].LevelRequirement {
				s.current = &s.areas[i]
				break
			}
		}
	}
	if s.current == nil {
		s.current = &s.areas[0]
	}

	if snap.AutoSellThreshold != nil && *snap.AutoSellThreshold >= 0 {
		s.settings.AutoSellThreshold = *snap.AutoSellThreshold
	}
	switch snap.InventorySort {
	case "price", "odds", "newest":
		s.settings.InventorySort = snap.InventorySort
	}

	s.dirty = false
}

func clampMin(v, min int) int {
	if v < min {
		return min
	}
	return v
}
