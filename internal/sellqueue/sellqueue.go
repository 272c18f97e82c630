// Package sellqueue implements the sell-delay queue: items placed here convert
// to currency and experience after a fixed real-time delay instead of
// instantly, and may be pulled back before the timer runs out.
package sellqueue

import (
	"time"

	"github.com/grindworks/grindstone/internal/items"
)

// Entry is an item waiting out its sell delay. EnqueuedAt is absolute so
// entries survive serialization across restarts.
type Entry struct {
	Item       *items.Item   `json:"item"`
	EnqueuedAt time.Time     `json:"enqueued_at"`
	Delay      time.Duration `json:"delay"`
}

// ResolvesAt returns the instant the entry converts to currency.
func (e Entry) ResolvesAt() time.Time {
	return e.EnqueuedAt.Add(e.Delay)
}

// Sale is a resolved entry: the item plus the currency and experience it
// yields. Experience scales with the item's captured tier exp multipliers.
type Sale struct {
	Item     *items.Item
	Currency float64
	Exp      float64
}

// Queue is a sell-delay queue. It owns the items queued in it; Tick and Cancel
// transfer ownership back out.
type Queue struct {
	entries []Entry
}

// New creates an empty queue.
func New() *Queue {
	return &Queue{}
}

// Restore rebuilds a queue from persisted entries.
func Restore(entries []Entry) *Queue {
	q := &Queue{}
	q.entries = append(q.entries, entries...)
	return q
}

// Enqueue adds an item with the given delay, stamping the current time.
func (q *Queue) Enqueue(item *items.Item, delay time.Duration, now time.Time) {
	q.entries = append(q.entries, Entry{Item: item, EnqueuedAt: now, Delay: delay})
}

// Tick resolves every entry whose delay has elapsed and returns the batch of
// sales. Each entry resolves exactly once; later ticks can never return it
// again.
func (q *Queue) Tick(now time.Time) []Sale {
	var sales []Sale
	remaining := q.entries[:0]
	for _, e := range q.entries {
		if now.Before(e.ResolvesAt()) {
			remaining = append(remaining, e)
			continue
		}
		sales = append(sales, Sale{
			Item:     e.Item,
			Currency: e.Item.Price,
			Exp:      e.Item.Price * e.Item.RarityExpMult * e.Item.MoldExpMult,
		})
	}
	q.entries = remaining
	return sales
}

// Cancel removes the entry for the given item ID before it resolves and
// returns the item so the caller can place it back in inventory. Returns nil
// if the ID is not queued.
func (q *Queue) Cancel(itemID int) *items.Item {
	for i, e := range q.entries {
		if e.Item.ID == itemID {
			q.entries = append(q.entries[:i], q.entries[i+1:]...)
			return e.Item
		}
	}
	return nil
}

// Entries returns a copy of the pending entries, for serialization and display.
func (q *Queue) Entries() []Entry {
	out := make([]Entry, len(q.entries))
	copy(out, q.entries)
	return out
}

// Len returns the number of pending entries.
func (q *Queue) Len() int {
	return len(q.entries)
}
