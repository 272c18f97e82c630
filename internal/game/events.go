package game

import (
	"github.com/grindworks/grindstone/internal/enemies"
	"github.com/grindworks/grindstone/internal/items"
)

// EventType identifies a discrete game event emitted by a session.
type EventType string

const (
	EventItemGenerated EventType = "itemGenerated"
	EventEnemySpawned  EventType = "enemySpawned"
	EventEnemyDefeated EventType = "enemyDefeated"
	EventLeveledUp     EventType = "leveledUp"
	EventItemSold      EventType = "itemSold"
)

// Event is a discrete notification delivered to presentation-layer
// subscribers. A session functions correctly with zero subscribers.
type Event struct {
	Type EventType `json:"type"`
	Data any       `json:"data"`
}

// ItemGeneratedData describes a freshly generated item and where it was routed.
type ItemGeneratedData struct {
	Item *items.Item `json:"item"`
	// AutoSold is true when the item's odds fell below the auto-sell threshold
	// and it went straight to the sell queue.
	AutoSold bool `json:"auto_sold"`
	// FromLoot is true when the item came from an enemy drop.
	FromLoot bool `json:"from_loot"`
}

// EnemyDefeatedData describes a combat victory.
type EnemyDefeatedData struct {
	Enemy      *enemies.Enemy `json:"enemy"`
	ExpGained  float64        `json:"exp_gained"`
	CashGained float64        `json:"cash_gained"`
}

// LeveledUpData describes one or more level gains from a single award.
type LeveledUpData struct {
	NewLevel     int `json:"new_level"`
	LevelsGained int `json:"levels_gained"`
}

// ItemSoldData describes a resolved sale.
type ItemSoldData struct {
	Item      *items.Item `json:"item"`
	Currency  float64     `json:"currency"`
	ExpGained float64     `json:"exp_gained"`
}

// Subscribe registers a callback for session events and returns an unsubscribe
// function. Callbacks run synchronously on the session's goroutine and must
// not block.
func (s *Session) Subscribe(fn func(Event)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubscriber
	s.nextSubscriber++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// emit delivers an event to every subscriber. Callers hold the session lock.
func (s *Session) emit(eventType EventType, data any) {
	for _, fn := range s.subscribers {
		fn(Event{Type: eventType, Data: data})
	}
}
