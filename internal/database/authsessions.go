package database

import (
	"crypto/rand"
	"database/sql"
	"encoding/base64"
	"errors"
	"time"
)

// ErrSessionNotFound is returned for missing or expired auth sessions.
var ErrSessionNotFound = errors.New("session not found")

// newSessionToken returns a URL-safe random token.
func newSessionToken() (string, error) {
	buf := make([]byte, 24)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// CreateAuthSession mints a session token for an account.
func (d *Database) CreateAuthSession(accountID int64, ttl time.Duration) (string, time.Time, error) {
	token, err := newSessionToken()
	if err != nil {
		return "", time.Time{}, err
	}

	expiresAt := time.Now().UTC().Add(ttl)
	_, err = d.db.Exec(d.dialect.Rebind(
		`INSERT INTO auth_sessions (token, account_id, expires_at) VALUES (?, ?, ?)`),
		token, accountID, expiresAt)
	if err != nil {
		return "", time.Time{}, err
	}
	return token, expiresAt, nil
}

// GetAccountBySession resolves a session token to its account, rejecting
// expired sessions.
func (d *Database) GetAccountBySession(token string) (*Account, error) {
	var account Account
	var expiresAt time.Time
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT a.id, a.username, a.created_at, s.expires_at
		FROM auth_sessions s
		JOIN accounts a ON a.id = s.account_id
		WHERE s.token = ?`),
		token).Scan(&account.ID, &account.Username, &account.CreatedAt, &expiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}

	if time.Now().UTC().After(expiresAt) {
		_ = d.DeleteAuthSession(token)
		return nil, ErrSessionNotFound
	}
	return &account, nil
}

// DeleteAuthSession removes a session token (logout).
func (d *Database) DeleteAuthSession(token string) error {
	_, err := d.db.Exec(d.dialect.Rebind(
		`DELETE FROM auth_sessions WHERE token = ?`), token)
	return err
}

// PurgeExpiredSessions removes all expired session rows and returns how many
// were deleted.
func (d *Database) PurgeExpiredSessions() (int64, error) {
	result, err := d.db.Exec(d.dialect.Rebind(
		`DELETE FROM auth_sessions WHERE expires_at < ?`), time.Now().UTC())
	if err != nil {
		return 0, err
	}
	return result.RowsAffected()
}
