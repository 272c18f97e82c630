// Package items defines generated weapons and the weighted-random item
// generator that produces them.
package items

// Item is a concrete generated weapon. An item is owned by exactly one of the
// player inventory, the sell queue, or the equipped slot; moving it between
// those is a transfer, never a copy.
type Item struct {
	ID         int     `json:"id"`
	Odds       float64 `json:"odds"` // combined "1 in N" rarity figure shown to the player
	RarityTier string  `json:"rarity_tier"`
	MoldTier   string  `json:"mold_tier"`
	WeaponType string  `json:"weapon_type"`
	Price      float64 `json:"price"`
	Damage     float64 `json:"damage"`
	Defense    float64 `json:"defense"`
	// Exp multipliers are captured at generation time so a later sale does not
	// need to re-resolve the tier tables.
	RarityExpMult float64 `json:"rarity_exp_mult"`
	MoldExpMult   float64 `json:"mold_exp_mult"`
}

// IDAllocator hands out dense item IDs, reusing IDs recycled by sales before
// growing the counter.
type IDAllocator struct {
	next     int
	recycled []int
}

// NewIDAllocator creates an allocator starting at 0 with no recycled IDs.
func NewIDAllocator() *IDAllocator {
	return &IDAllocator{}
}

// RestoreIDAllocator rebuilds an allocator from persisted state.
func RestoreIDAllocator(next int, recycled []int) *IDAllocator {
	if next < 0 {
		next = 0
	}
	a := &IDAllocator{next: next}
	a.recycled = append(a.recycled, recycled...)
	return a
}

// Allocate returns the next item ID, preferring recycled IDs (LIFO) so the ID
// space stays dense.
func (a *IDAllocator) Allocate() int {
	if n := len(a.recycled); n > 0 {
		id := a.recycled[n-1]
		a.recycled = a.recycled[:n-1]
		return id
	}
	id := a.next
	a.next++
	return id
}

// Recycle returns a sold item's ID to the free list.
func (a *IDAllocator) Recycle(id int) {
	a.recycled = append(a.recycled, id)
}

// Snapshot returns the allocator's persistent state: the monotonic counter and
// a copy of the free list.
func (a *IDAllocator) Snapshot() (next int, recycled []int) {
	out := make([]int, len(a.recycled))
	copy(out, a.recycled)
	return a.next, out
}
