package database

import (
	"encoding/json"
	"errors"
	"path/filepath"
	"testing"
	"time"
)

func setupTestDB(t *testing.T) *Database {
	t.Helper()

	db, err := Open(filepath.Join(t.TempDir(), "test.db"))
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	t.Cleanup(func() {
		db.Close()
	})
	return db
}

func TestCreateAccount(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("Alice", "correct-horse-battery")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	if account.Username != "alice" {
		t.Errorf("expected lowercased username alice, got %q", account.Username)
	}

	// a points row should be seeded alongside the account
	balance, err := db.GetPointsBalance(account.ID)
	if err != nil {
		t.Fatalf("GetPointsBalance failed: %v", err)
	}
	if balance != 0 {
		t.Errorf("expected zero starting balance, got %d", balance)
	}

	if _, err := db.CreateAccount("ALICE", "other-password"); !errors.Is(err, ErrAccountExists) {
		t.Errorf("expected ErrAccountExists for duplicate username, got %v", err)
	}
}

func TestAuthenticate(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("bob", "hunter2hunter2")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	got, err := db.Authenticate("bob", "hunter2hunter2")
	if err != nil {
		t.Fatalf("Authenticate failed: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("expected account ID %d, got %d", account.ID, got.ID)
	}

	if _, err := db.Authenticate("bob", "wrong"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for bad password, got %v", err)
	}
	if _, err := db.Authenticate("nobody", "hunter2hunter2"); !errors.Is(err, ErrInvalidCredentials) {
		t.Errorf("expected ErrInvalidCredentials for unknown user, got %v", err)
	}
}

func TestAuthSessions(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("carol", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	token, expires, err := db.CreateAuthSession(account.ID, time.Hour)
	if err != nil {
		t.Fatalf("CreateAuthSession failed: %v", err)
	}
	if token == "" {
		t.Fatal("expected non-empty session token")
	}
	if !expires.After(time.Now()) {
		t.Errorf("expected future expiry, got %v", expires)
	}

	got, err := db.GetAccountBySession(token)
	if err != nil {
		t.Fatalf("GetAccountBySession failed: %v", err)
	}
	if got.ID != account.ID {
		t.Errorf("expected account ID %d, got %d", account.ID, got.ID)
	}

	if err := db.DeleteAuthSession(token); err != nil {
		t.Fatalf("DeleteAuthSession failed: %v", err)
	}
	if _, err := db.GetAccountBySession(token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestExpiredAuthSession(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("dave", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	token, _, err := db.CreateAuthSession(account.ID, -time.Minute)
	if err != nil {
		t.Fatalf("CreateAuthSession failed: %v", err)
	}
	if _, err := db.GetAccountBySession(token); !errors.Is(err, ErrSessionNotFound) {
		t.Errorf("expected ErrSessionNotFound for expired session, got %v", err)
	}

	// expired row was deleted on lookup, nothing left to purge
	purged, err := db.PurgeExpiredSessions()
	if err != nil {
		t.Fatalf("PurgeExpiredSessions failed: %v", err)
	}
	if purged != 0 {
		t.Errorf("expected 0 purged, got %d", purged)
	}
}

func TestTaskLifecycle(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("erin", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	task, err := db.CreateTask(account.ID, "Write report", "quarterly numbers", nil, 25)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}
	if task.Done {
		t.Error("new task should not be done")
	}

	due := time.Now().Add(24 * time.Hour)
	task, err = db.UpdateTask(account.ID, task.ID, "Write report", "final numbers", &due, 40)
	if err != nil {
		t.Fatalf("UpdateTask failed: %v", err)
	}
	if task.Points != 40 {
		t.Errorf("expected 40 points after update, got %d", task.Points)
	}

	awarded, err := db.CompleteTask(account.ID, task.ID)
	if err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}
	if awarded != 40 {
		t.Errorf("expected 40 points awarded, got %d", awarded)
	}

	balance, err := db.GetPointsBalance(account.ID)
	if err != nil {
		t.Fatalf("GetPointsBalance failed: %v", err)
	}
	if balance != 40 {
		t.Errorf("expected balance 40 after completion, got %d", balance)
	}

	// completing twice must not double-award
	if _, err := db.CompleteTask(account.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second completion, got %v", err)
	}

	if err := db.DeleteTask(account.ID, task.ID); err != nil {
		t.Fatalf("DeleteTask failed: %v", err)
	}
	if err := db.DeleteTask(account.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound on second delete, got %v", err)
	}
}

func TestTaskScoping(t *testing.T) {
	db := setupTestDB(t)

	owner, err := db.CreateAccount("frank", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}
	other, err := db.CreateAccount("grace", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	task, err := db.CreateTask(owner.ID, "Private task", "", nil, 10)
	if err != nil {
		t.Fatalf("CreateTask failed: %v", err)
	}

	if _, err := db.GetTask(other.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound for foreign account, got %v", err)
	}
	if _, err := db.CompleteTask(other.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound completing foreign task, got %v", err)
	}
	if err := db.DeleteTask(other.ID, task.ID); !errors.Is(err, ErrTaskNotFound) {
		t.Errorf("expected ErrTaskNotFound deleting foreign task, got %v", err)
	}
}

func TestListTasksOrder(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("heidi", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	first, _ := db.CreateTask(account.ID, "first", "", nil, 5)
	second, _ := db.CreateTask(account.ID, "second", "", nil, 5)
	if _, err := db.CompleteTask(account.ID, first.ID); err != nil {
		t.Fatalf("CompleteTask failed: %v", err)
	}

	tasks, err := db.ListTasks(account.ID)
	if err != nil {
		t.Fatalf("ListTasks failed: %v", err)
	}
	if len(tasks) != 2 {
		t.Fatalf("expected 2 tasks, got %d", len(tasks))
	}
	if tasks[0].ID != second.ID || tasks[0].Done {
		t.Errorf("expected pending task first, got id=%d done=%v", tasks[0].ID, tasks[0].Done)
	}
	if tasks[1].ID != first.ID || !tasks[1].Done {
		t.Errorf("expected completed task last, got id=%d done=%v", tasks[1].ID, tasks[1].Done)
	}
}

func TestSpendPoints(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("ivan", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, err := db.AddPoints(account.ID, 100); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}

	balance, err := db.SpendPoints(account.ID, 60)
	if err != nil {
		t.Fatalf("SpendPoints failed: %v", err)
	}
	if balance != 40 {
		t.Errorf("expected balance 40, got %d", balance)
	}

	if _, err := db.SpendPoints(account.ID, 41); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("expected ErrInsufficientPoints, got %v", err)
	}

	// failed spend must leave the balance untouched
	balance, err = db.GetPointsBalance(account.ID)
	if err != nil {
		t.Fatalf("GetPointsBalance failed: %v", err)
	}
	if balance != 40 {
		t.Errorf("expected balance 40 after rejected spend, got %d", balance)
	}
}

func TestShopPurchase(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("judy", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	err = db.SeedShopItems([]*ShopItem{
		{Name: "Small cash pack", Description: "A little spending money", PointCost: 50, CurrencyReward: 200},
		{Name: "Large cash pack", Description: "A lot of spending money", PointCost: 200, CurrencyReward: 1000},
	})
	if err != nil {
		t.Fatalf("SeedShopItems failed: %v", err)
	}

	// seeding again must not duplicate
	if err := db.SeedShopItems([]*ShopItem{{Name: "Dup", PointCost: 1, CurrencyReward: 1}}); err != nil {
		t.Fatalf("SeedShopItems failed: %v", err)
	}
	list, err := db.ListShopItems()
	if err != nil {
		t.Fatalf("ListShopItems failed: %v", err)
	}
	if len(list) != 2 {
		t.Fatalf("expected 2 shop items, got %d", len(list))
	}
	if list[0].PointCost > list[1].PointCost {
		t.Error("expected items ordered cheapest first")
	}

	if _, _, err := db.PurchaseShopItem(account.ID, list[0].ID); !errors.Is(err, ErrInsufficientPoints) {
		t.Errorf("expected ErrInsufficientPoints with empty balance, got %v", err)
	}

	if _, err := db.AddPoints(account.ID, 75); err != nil {
		t.Fatalf("AddPoints failed: %v", err)
	}
	item, balance, err := db.PurchaseShopItem(account.ID, list[0].ID)
	if err != nil {
		t.Fatalf("PurchaseShopItem failed: %v", err)
	}
	if item.CurrencyReward != 200 {
		t.Errorf("expected currency reward 200, got %d", item.CurrencyReward)
	}
	if balance != 25 {
		t.Errorf("expected balance 25 after purchase, got %d", balance)
	}

	purchases, err := db.ListPurchases(account.ID)
	if err != nil {
		t.Fatalf("ListPurchases failed: %v", err)
	}
	if len(purchases) != 1 || purchases[0].PointsSpent != 50 {
		t.Errorf("unexpected purchase history: %+v", purchases)
	}

	if _, _, err := db.PurchaseShopItem(account.ID, 9999); !errors.Is(err, ErrShopItemNotFound) {
		t.Errorf("expected ErrShopItemNotFound, got %v", err)
	}
}

func TestGameStateRoundTrip(t *testing.T) {
	db := setupTestDB(t)

	account, err := db.CreateAccount("kevin", "password1234")
	if err != nil {
		t.Fatalf("CreateAccount failed: %v", err)
	}

	if _, _, err := db.LoadGameState(account.ID); !errors.Is(err, ErrStateNotFound) {
		t.Errorf("expected ErrStateNotFound for fresh account, got %v", err)
	}

	state := json.RawMessage(`{"level":3,"currency":120}`)
	if err := db.SaveGameState(account.ID, state, 1); err != nil {
		t.Fatalf("SaveGameState failed: %v", err)
	}

	// second save must replace, not conflict
	state = json.RawMessage(`{"level":4,"currency":90}`)
	if err := db.SaveGameState(account.ID, state, 1); err != nil {
		t.Fatalf("SaveGameState upsert failed: %v", err)
	}

	got, version, err := db.LoadGameState(account.ID)
	if err != nil {
		t.Fatalf("LoadGameState failed: %v", err)
	}
	if version != 1 {
		t.Errorf("expected schema version 1, got %d", version)
	}
	var decoded struct {
		Level    int `json:"level"`
		Currency int `json:"currency"`
	}
	if err := json.Unmarshal(got, &decoded); err != nil {
		t.Fatalf("failed to decode stored state: %v", err)
	}
	if decoded.Level != 4 || decoded.Currency != 90 {
		t.Errorf("expected level=4 currency=90, got %+v", decoded)
	}

	if _, err := db.GameStateUpdatedAt(account.ID); err != nil {
		t.Errorf("GameStateUpdatedAt failed: %v", err)
	}
}

func TestRebindPostgres(t *testing.T) {
	d := &postgresDialect{}
	got := d.Rebind(`INSERT INTO t (a, b) VALUES (?, ?)`)
	want := `INSERT INTO t (a, b) VALUES ($1, $2)`
	if got != want {
		t.Errorf("Rebind = %q, want %q", got, want)
	}
}
