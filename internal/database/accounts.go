package database

import (
	"database/sql"
	"errors"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// bcrypt cost factor (12 is a good balance of security and performance)
const bcryptCost = 12

var (
	// ErrAccountExists is returned when registering a taken username.
	ErrAccountExists = errors.New("username already taken")

	// ErrAccountNotFound is returned when an account lookup fails.
	ErrAccountNotFound = errors.New("account not found")

	// ErrInvalidCredentials is returned for a bad username/password pair.
	ErrInvalidCredentials = errors.New("invalid credentials")
)

// Account is a registered user.
type Account struct {
	ID        int64
	Username  string
	CreatedAt time.Time
	LastLogin *time.Time
}

// CreateAccount registers a new account. The username is stored lowercased;
// the password is hashed with bcrypt before storage. A points row is seeded
// alongside.
func (d *Database) CreateAccount(username, password string) (*Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))
	if username == "" {
		return nil, errors.New("username cannot be empty")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcryptCost)
	if err != nil {
		return nil, err
	}

	id, err := d.insertReturningID(
		`INSERT INTO accounts (username, password_hash) VALUES (?, ?)`,
		username, string(hash),
	)
	if err != nil {
		if d.dialect.IsDuplicateKeyError(err) {
			return nil, ErrAccountExists
		}
		return nil, err
	}

	if _, err := d.db.Exec(d.dialect.Rebind(
		`INSERT INTO points (account_id, balance) VALUES (?, 0)`), id); err != nil {
		return nil, err
	}

	return &Account{ID: id, Username: username, CreatedAt: time.Now()}, nil
}

// Authenticate verifies a username/password pair and stamps the last login.
func (d *Database) Authenticate(username, password string) (*Account, error) {
	username = strings.ToLower(strings.TrimSpace(username))

	var account Account
	var hash string
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT id, username, password_hash, created_at FROM accounts WHERE username = ?`),
		username).Scan(&account.ID, &account.Username, &hash, &account.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	_, _ = d.db.Exec(d.dialect.Rebind(
		`UPDATE accounts SET last_login = CURRENT_TIMESTAMP WHERE id = ?`), account.ID)

	return &account, nil
}

// GetAccountByID fetches an account by its primary key.
func (d *Database) GetAccountByID(id int64) (*Account, error) {
	var account Account
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT id, username, created_at, last_login FROM accounts WHERE id = ?`),
		id).Scan(&account.ID, &account.Username, &account.CreatedAt, &account.LastLogin)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrAccountNotFound
		}
		return nil, err
	}
	return &account, nil
}
