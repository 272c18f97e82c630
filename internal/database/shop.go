package database

import (
	"database/sql"
	"errors"
	"time"
)

// ErrShopItemNotFound is returned for purchases of unknown or disabled items.
var ErrShopItemNotFound = errors.New("shop item not found")

// ShopItem is a reward purchasable with earned points. CurrencyReward is the
// in-game cash granted on purchase.
type ShopItem struct {
	ID             int64
	Name           string
	Description    string
	PointCost      int
	CurrencyReward int
	Enabled        bool
}

// Purchase records a completed shop purchase.
type Purchase struct {
	ID          int64
	AccountID   int64
	ShopItemID  int64
	PointsSpent int
	PurchasedAt time.Time
}

// ListShopItems returns enabled shop items, cheapest first.
func (d *Database) ListShopItems() ([]*ShopItem, error) {
	rows, err := d.db.Query(
		`SELECT id, name, description, point_cost, currency_reward, enabled
		FROM shop_items WHERE enabled = 1 ORDER BY point_cost ASC, id ASC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*ShopItem
	for rows.Next() {
		var item ShopItem
		var enabled int
		if err := rows.Scan(&item.ID, &item.Name, &item.Description,
			&item.PointCost, &item.CurrencyReward, &enabled); err != nil {
			return nil, err
		}
		item.Enabled = enabled != 0
		list = append(list, &item)
	}
	return list, rows.Err()
}

// SeedShopItems inserts shop items if the table is empty. Used at startup so
// a fresh database has something to buy.
func (d *Database) SeedShopItems(items []*ShopItem) error {
	var count int
	if err := d.db.QueryRow(`SELECT COUNT(*) FROM shop_items`).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	tx, err := d.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, item := range items {
		if _, err := tx.Exec(d.dialect.Rebind(
			`INSERT INTO shop_items (name, description, point_cost, currency_reward, enabled) VALUES (?, ?, ?, ?, 1)`),
			item.Name, item.Description, item.PointCost, item.CurrencyReward); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// PurchaseShopItem spends points on a shop item inside one transaction and
// records the purchase. Returns the item bought and the remaining balance.
func (d *Database) PurchaseShopItem(accountID, itemID int64) (*ShopItem, int, error) {
	tx, err := d.db.Begin()
	if err != nil {
		return nil, 0, err
	}
	defer tx.Rollback()

	var item ShopItem
	var enabled int
	err = tx.QueryRow(d.dialect.Rebind(
		`SELECT id, name, description, point_cost, currency_reward, enabled
		FROM shop_items WHERE id = ? AND enabled = 1`), itemID).Scan(
		&item.ID, &item.Name, &item.Description, &item.PointCost, &item.CurrencyReward, &enabled)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrShopItemNotFound
		}
		return nil, 0, err
	}
	item.Enabled = enabled != 0

	var balance int
	err = tx.QueryRow(d.dialect.Rebind(
		`SELECT balance FROM points WHERE account_id = ?`), accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrAccountNotFound
		}
		return nil, 0, err
	}
	if balance < item.PointCost {
		return nil, 0, ErrInsufficientPoints
	}

	balance -= item.PointCost
	if _, err := tx.Exec(d.dialect.Rebind(
		`UPDATE points SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE account_id = ?`),
		balance, accountID); err != nil {
		return nil, 0, err
	}
	if _, err := tx.Exec(d.dialect.Rebind(
		`INSERT INTO purchases (account_id, shop_item_id, points_spent) VALUES (?, ?, ?)`),
		accountID, item.ID, item.PointCost); err != nil {
		return nil, 0, err
	}

	if err := tx.Commit(); err != nil {
		return nil, 0, err
	}
	return &item, balance, nil
}

// ListPurchases returns an account's purchase history, newest first.
func (d *Database) ListPurchases(accountID int64) ([]*Purchase, error) {
	rows, err := d.db.Query(d.dialect.Rebind(
		`SELECT id, account_id, shop_item_id, points_spent, purchased_at
		FROM purchases WHERE account_id = ? ORDER BY id DESC`), accountID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var list []*Purchase
	for rows.Next() {
		var p Purchase
		if err := rows.Scan(&p.ID, &p.AccountID, &p.ShopItemID, &p.PointsSpent, &p.PurchasedAt); err != nil {
			return nil, err
		}
		list = append(list, &p)
	}
	return list, rows.Err()
}
