package database

import (
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// ErrStateNotFound is returned when an account has no saved game state.
var ErrStateNotFound = errors.New("game state not found")

// SaveGameState upserts an account's serialized game state.
func (d *Database) SaveGameState(accountID int64, state json.RawMessage, schemaVersion int) error {
	_, err := d.db.Exec(d.dialect.UpsertGameState(), accountID, []byte(state), schemaVersion)
	return err
}

// LoadGameState returns an account's saved state blob and its schema version.
func (d *Database) LoadGameState(accountID int64) (json.RawMessage, int, error) {
	var state []byte
	var version int
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT state, schema_version FROM game_states WHERE account_id = ?`), accountID).Scan(&state, &version)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, 0, ErrStateNotFound
		}
		return nil, 0, err
	}
	return json.RawMessage(state), version, nil
}

// GameStateUpdatedAt reports when an account's state was last saved.
func (d *Database) GameStateUpdatedAt(accountID int64) (time.Time, error) {
	var updated time.Time
	err := d.db.QueryRow(d.dialect.Rebind(
		`SELECT updated_at FROM game_states WHERE account_id = ?`), accountID).Scan(&updated)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return time.Time{}, ErrStateNotFound
		}
		return time.Time{}, err
	}
	return updated, nil
}
