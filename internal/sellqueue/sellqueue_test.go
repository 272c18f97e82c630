package sellqueue

import (
	"testing"
	"time"

	"github.com/grindworks/grindstone/internal/items"
)

func testItem(id int, price float64) *items.Item {
	return &items.Item{
		ID:            id,
		WeaponType:    "sword",
		Price:         price,
		RarityExpMult: 2,
		MoldExpMult:   3,
	}
}

func TestTickRoundTrip(t *testing.T) {
	q := New()
	now := time.Now()
	q.Enqueue(testItem(0, 100), 30*time.Second, now)

	if sales := q.Tick(now.Add(29 * time.Second)); len(sales) != 0 {
		t.Errorf("Entry resolved %v early", time.Second)
	}

	sales := q.Tick(now.Add(30 * time.Second))
	if len(sales) != 1 {
		t.Fatalf("Expected 1 sale at the deadline, got %d", len(sales))
	}
	if sales[0].Currency != 100 {
		t.Errorf("Sale currency = %v, want price 100", sales[0].Currency)
	}
	if sales[0].Exp != 100*2*3 {
		t.Errorf("Sale exp = %v, want price * rarity mult * mold mult = 600", sales[0].Exp)
	}

	// The entry must not resolve a second time.
	if sales := q.Tick(now.Add(time.Hour)); len(sales) != 0 {
		t.Errorf("Entry resolved twice: %d extra sales", len(sales))
	}
}

func TestTickResolvesBatch(t *testing.T) {
	q := New()
	now := time.Now()
	q.Enqueue(testItem(0, 10), 10*time.Second, now)
	q.Enqueue(testItem(1, 20), 10*time.Second, now)
	q.Enqueue(testItem(2, 30), 60*time.Second, now)

	sales := q.Tick(now.Add(10 * time.Second))
	if len(sales) != 2 {
		t.Fatalf("Expected 2 simultaneous sales, got %d", len(sales))
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 pending entry, got %d", q.Len())
	}
}

func TestCancelReturnsItem(t *testing.T) {
	q := New()
	now := time.Now()
	item := testItem(5, 50)
	q.Enqueue(item, 30*time.Second, now)

	got := q.Cancel(5)
	if got != item {
		t.Fatal("Cancel should hand back the queued item")
	}
	if q.Len() != 0 {
		t.Errorf("Cancelled entry still queued, len %d", q.Len())
	}

	// Cancelling an ID that is not queued is a nil no-op.
	if q.Cancel(5) != nil {
		t.Error("Cancelling a vanished ID should return nil")
	}

	// A cancelled item never sells.
	if sales := q.Tick(now.Add(time.Hour)); len(sales) != 0 {
		t.Errorf("Cancelled item resolved: %d sales", len(sales))
	}
}

func TestRestore(t *testing.T) {
	now := time.Now()
	entries := []Entry{
		{Item: testItem(1, 10), EnqueuedAt: now.Add(-40 * time.Second), Delay: 30 * time.Second},
		{Item: testItem(2, 20), EnqueuedAt: now, Delay: 30 * time.Second},
	}

	q := Restore(entries)
	sales := q.Tick(now)
	if len(sales) != 1 || sales[0].Item.ID != 1 {
		t.Fatalf("Restored overdue entry should resolve immediately, got %d sales", len(sales))
	}
	if q.Len() != 1 {
		t.Errorf("Expected 1 pending entry after restore tick, got %d", q.Len())
	}
}
