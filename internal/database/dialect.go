package database

import (
	"fmt"
	"strings"
)

// Dialect abstracts the SQL syntax differences between SQLite and PostgreSQL.
type Dialect interface {
	// DriverName returns the driver name for sql.Open().
	DriverName() string

	// InitStatements returns backend-specific statements run at open.
	InitStatements() []string

	// Rebind converts a query written with ? placeholders to the backend's
	// placeholder style.
	Rebind(query string) string

	// ReturningClause returns the clause appended to INSERTs that need the new
	// row ID; empty when LastInsertId() works.
	ReturningClause(column string) string

	// SupportsLastInsertID reports whether sql.Result.LastInsertId() works.
	SupportsLastInsertID() bool

	// IsDuplicateKeyError reports whether err is a unique constraint violation.
	IsDuplicateKeyError(err error) bool

	// UpsertGameState returns the backend's insert-or-replace statement for the
	// game_states table.
	UpsertGameState() string
}

// NewDialect creates a Dialect for the given driver name; anything other than
// "postgres" selects SQLite.
func NewDialect(driver string) Dialect {
	if driver == "postgres" {
		return &postgresDialect{}
	}
	return &sqliteDialect{}
}

type sqliteDialect struct{}

func (d *sqliteDialect) DriverName() string { return "sqlite" }

func (d *sqliteDialect) InitStatements() []string {
	return []string{
		"PRAGMA foreign_keys = ON",
		"PRAGMA journal_mode = WAL",
		"PRAGMA busy_timeout = 5000",
	}
}

func (d *sqliteDialect) Rebind(query string) string { return query }

func (d *sqliteDialect) ReturningClause(string) string { return "" }

func (d *sqliteDialect) SupportsLastInsertID() bool { return true }

func (d *sqliteDialect) IsDuplicateKeyError(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}

func (d *sqliteDialect) UpsertGameState() string {
	return `INSERT OR REPLACE INTO game_states (account_id, state, schema_version, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)`
}

type postgresDialect struct{}

func (d *postgresDialect) DriverName() string { return "postgres" }

func (d *postgresDialect) InitStatements() []string { return nil }

// Rebind converts ? placeholders to $1, $2, ...
func (d *postgresDialect) Rebind(query string) string {
	var result strings.Builder
	position := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			fmt.Fprintf(&result, "$%d", position)
			position++
		} else {
			result.WriteByte(query[i])
		}
	}
	return result.String()
}

func (d *postgresDialect) ReturningClause(column string) string {
	return " RETURNING " + column
}

func (d *postgresDialect) SupportsLastInsertID() bool { return false }

func (d *postgresDialect) IsDuplicateKeyError(err error) bool {
	if err == nil {
		return false
	}
	msg := err.Error()
	// 23505 is unique_violation
	return strings.Contains(msg, "duplicate key") || strings.Contains(msg, "23505")
}

func (d *postgresDialect) UpsertGameState() string {
	return d.Rebind(`INSERT INTO game_states (account_id, state, schema_version, updated_at)
		VALUES (?, ?, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (account_id) DO UPDATE
		SET state = EXCLUDED.state, schema_version = EXCLUDED.schema_version, updated_at = CURRENT_TIMESTAMP`)
}
