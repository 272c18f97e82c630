package game

import (
	"encoding/json"
	"testing"
	"time"
)

func TestSnapshotRoundTrip(t *testing.T) {
	s := newTestSession(t, 20)
	now := time.Now()

	s.currency = 4321
	s.prog.Level = 12
	s.prog.Experience = 88
	s.prog.LuckLevel = 5
	s.prog.MoldLevel = 3

	kept, _ := s.GenerateItem(now)
	weapon, _ := s.GenerateItem(now)
	queued, _ := s.GenerateItem(now)
	if err := s.Equip(weapon.ID); err != nil {
		t.Fatalf("Equip failed: %v", err)
	}
	if err := s.SellItem(queued.ID, now); err != nil {
		t.Fatalf("SellItem failed: %v", err)
	}
	if err := s.TravelTo("Dark Forest"); err != nil {
		t.Fatalf("TravelTo failed: %v", err)
	}

	snap := s.Snapshot()
	if snap.Version != SnapshotVersion {
		t.Errorf("Snapshot version = %d, want %d", snap.Version, SnapshotVersion)
	}

	// Round-trip through JSON the way the persistence layer stores it.
	blob, err := json.Marshal(snap)
	if err != nil {
		t.Fatalf("Marshal failed: %v", err)
	}
	var decoded Snapshot
	if err := json.Unmarshal(blob, &decoded); err != nil {
		t.Fatalf("Unmarshal failed: %v", err)
	}

	restored := newTestSession(t, 21)
	restored.RestoreSnapshot(&decoded)

	view := restored.CurrentView()
	if view.Level != 12 || view.Experience != 88 {
		t.Errorf("Restored level/exp = %d/%v, want 12/88", view.Level, view.Experience)
	}
	if view.LuckLevel != 5 || view.MoldLevel != 3 {
		t.Errorf("Restored track levels = %d/%d, want 5/3", view.LuckLevel, view.MoldLevel)
	}
	if view.Currency != 4321 {
		t.Errorf("Restored currency = %v, want 4321", view.Currency)
	}
	if view.CurrentArea != "Dark Forest" {
		t.Errorf("Restored area = %q, want Dark Forest", view.CurrentArea)
	}
	if len(view.Inventory) != 1 || view.Inventory[0].ID != kept.ID {
		t.Errorf("Restored inventory should hold item %d", kept.ID)
	}
	if view.Equipped == nil || view.Equipped.ID != weapon.ID {
		t.Error("Restored equipped weapon missing")
	}
	if len(view.PendingSales) != 1 || view.PendingSales[0].Item.ID != queued.ID {
		t.Error("Restored sell queue entry missing")
	}
}

func TestSnapshotPreservesIDFreeList(t *testing.T) {
	s := newTestSession(t, 22)
	s.settings.SellDelaySeconds = 5
	now := time.Now()

	s.GenerateItem(now)
	second, _ := s.GenerateItem(now)
	if err := s.SellItem(second.ID, now); err != nil {
		t.Fatalf("SellItem failed: %v", err)
	}
	s.Tick(now.Add(5 * time.Second)) // sale resolves, ID 1 recycled

	restored := newTestSession(t, 23)
	restored.RestoreSnapshot(s.Snapshot())

	item, _ := restored.GenerateItem(now)
	if item.ID != 1 {
		t.Errorf("Restored session allocated ID %d, want recycled 1", item.ID)
	}
}

func TestRestoreSnapshotDefaults(t *testing.T) {
	s := newTestSession(t, 24)

	// Nil snapshot resets to a sane default state instead of failing.
	s.RestoreSnapshot(nil)
	view := s.CurrentView()
	if view.Level != 1 || view.LuckLevel != 1 || view.MoldLevel != 1 {
		t.Errorf("Defaults not applied: level %d luck %d mold %d", view.Level, view.LuckLevel, view.MoldLevel)
	}
	if view.CurrentArea != "Meadow" {
		t.Errorf("Default area = %q, want first area", view.CurrentArea)
	}
}

func TestRestoreSnapshotNormalizesBadFields(t *testing.T) {
	s := newTestSession(t, 25)

	s.RestoreSnapshot(&Snapshot{
		Version:     SnapshotVersion,
		Level:       0,     // below minimum
		LuckLevel:   -3,    // below minimum
		Currency:    -50,   // negative resets to starting currency
		CurrentArea: "Gone", // unknown area falls back
	})

	view := s.CurrentView()
	if view.Level != 1 || view.LuckLevel != 1 {
		t.Errorf("Levels not clamped: %d/%d", view.Level, view.LuckLevel)
	}
	if view.Currency != s.settings.StartingCurrency {
		t.Errorf("Currency = %v, want starting %v", view.Currency, s.settings.StartingCurrency)
	}
	if view.CurrentArea != "Meadow" {
		t.Errorf("Area = %q, want fallback Meadow", view.CurrentArea)
	}
}

func TestRestoreSnapshotLockedAreaFallsBack(t *testing.T) {
	s := newTestSession(t, 26)

	// A saved area above the restored level may not be re-entered.
	s.RestoreSnapshot(&Snapshot{Version: SnapshotVersion, Level: 1, LuckLevel: 1, MoldLevel: 1, CurrentArea: "Dark Forest"})
	if got := s.CurrentView().CurrentArea; got != "Meadow" {
		t.Errorf("Area = %q, want fallback Meadow for locked save", got)
	}
}
