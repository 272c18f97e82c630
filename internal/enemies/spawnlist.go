package enemies

import "time"

// SpawnList holds the live enemies of one area. The list is unbounded; a
// periodic expiry sweep prunes aged-out enemies. Absence from the list is
// authoritative: an enemy pruned in the same tick as an attack simply isn't
// found, and the caller treats that as a no-op.
type SpawnList struct {
	enemies []*Enemy
}

// NewSpawnList creates an empty spawn list.
func NewSpawnList() *SpawnList {
	return &SpawnList{}
}

// Add appends a spawned enemy.
func (l *SpawnList) Add(e *Enemy) {
	l.enemies = append(l.enemies, e)
}

// Find returns the enemy with the given ID, or nil if it has been defeated or
// pruned.
func (l *SpawnList) Find(id int64) *Enemy {
	for _, e := range l.enemies {
		if e.ID == id {
			return e
		}
	}
	return nil
}

// Remove deletes the enemy with the given ID, reporting whether it was present.
func (l *SpawnList) Remove(id int64) bool {
	for i, e := range l.enemies {
		if e.ID == id {
			l.enemies = append(l.enemies[:i], l.enemies[i+1:]...)
			return true
		}
	}
	return false
}

// Prune removes and returns all enemies whose despawn time has passed.
func (l *SpawnList) Prune(now time.Time) []*Enemy {
	var expired []*Enemy
	remaining := l.enemies[:0]
	for _, e := range l.enemies {
		if e.Expired(now) {
			expired = append(expired, e)
		} else {
			remaining = append(remaining, e)
		}
	}
	l.enemies = remaining
	return expired
}

// All returns the live enemies in spawn order. The returned slice is a copy.
func (l *SpawnList) All() []*Enemy {
	out := make([]*Enemy, len(l.enemies))
	copy(out, l.enemies)
	return out
}

// Len returns the number of live enemies.
func (l *SpawnList) Len() int {
	return len(l.enemies)
}
