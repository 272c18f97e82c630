package database

import (
	"database/sql"
	"errors"
)

// ErrInsufficientPoints is returned when a spend exceeds the balance.
var ErrInsufficientPoints = errors.New("insufficient points")

// GetPointsBalance returns an account's current point balance.
func (d *Database) GetPointsBalance(accountID int64) (int, error) {
	var balance int
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT balance FROM points WHERE account_id = ?`), accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	return balance, nil
}

// AddPoints credits points to an account and returns the new balance.
func (d *Database) AddPoints(accountID int64, amount int) (int, error) {
	if amount < 0 {
		return 0, errors.New("amount cannot be negative")
	}
	_, err := d.db.Exec(d.dialect.Rebind(
		`UPDATE points SET balance = balance + ?, updated_at = CURRENT_TIMESTAMP WHERE account_id = ?`),
		amount, accountID)
	if err != nil {
		return 0, err
	}
	return d.GetPointsBalance(accountID)
}

// SpendPoints debits points from an account, failing without changes if the
// balance is too low. Returns the new balance.
func (d *Database) SpendPoints(accountID int64, amount int) (int, error) {
	if amount < 0 {
		return 0, errors.New("amount cannot be negative")
	}

	tx, err := d.db.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	var balance int
	err = tx.QueryRow(d.dialect.Rebind(
		`SELECT balance FROM points WHERE account_id = ?`), accountID).Scan(&balance)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, ErrAccountNotFound
		}
		return 0, err
	}
	if balance < amount {
		return 0, ErrInsufficientPoints
	}

	balance -= amount
	if _, err := tx.Exec(d.dialect.Rebind(
		`UPDATE points SET balance = ?, updated_at = CURRENT_TIMESTAMP WHERE account_id = ?`),
		balance, accountID); err != nil {
		return 0, err
	}

	return balance, tx.Commit()
}
