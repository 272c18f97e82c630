// Package database provides persistence for accounts, auth sessions, tasks,
// points, the shop, and saved game states. SQLite is the default backend;
// PostgreSQL is selectable through the dialect layer.
package database

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"

	_ "github.com/lib/pq"
	_ "modernc.org/sqlite"
)

// Database wraps the SQL connection and provides persistence operations.
type Database struct {
	db      *sql.DB
	dialect Dialect
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Database, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}
	return open(NewDialect("sqlite"), path)
}

// OpenPostgres connects to a PostgreSQL database with the given DSN.
func OpenPostgres(dsn string) (*Database, error) {
	return open(NewDialect("postgres"), dsn)
}

func open(dialect Dialect, dataSource string) (*Database, error) {
	db, err := sql.Open(dialect.DriverName(), dataSource)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	for _, stmt := range dialect.InitStatements() {
		if _, err := db.Exec(stmt); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to run init statement %q: %w", stmt, err)
		}
	}

	d := &Database{db: db, dialect: dialect}
	if err := d.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return d, nil
}

// Close closes the database connection.
func (d *Database) Close() error {
	return d.db.Close()
}

// migrate creates the schema if it doesn't exist.
func (d *Database) migrate() error {
	serial := "INTEGER PRIMARY KEY AUTOINCREMENT"
	if d.dialect.DriverName() == "postgres" {
		serial = "BIGSERIAL PRIMARY KEY"
	}

	migrations := []string{
		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS accounts (
			id %s,
			username TEXT UNIQUE NOT NULL,
			password_hash TEXT NOT NULL,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			last_login TIMESTAMP
		)`, serial),

		`CREATE TABLE IF NOT EXISTS auth_sessions (
			token TEXT PRIMARY KEY,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			expires_at TIMESTAMP NOT NULL
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS tasks (
			id %s,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			title TEXT NOT NULL,
			notes TEXT NOT NULL DEFAULT '',
			due_at TIMESTAMP,
			points INTEGER NOT NULL DEFAULT 0,
			done INTEGER NOT NULL DEFAULT 0,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
			completed_at TIMESTAMP
		)`, serial),

		`CREATE TABLE IF NOT EXISTS points (
			account_id INTEGER PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			balance INTEGER NOT NULL DEFAULT 0,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS shop_items (
			id %s,
			name TEXT UNIQUE NOT NULL,
			description TEXT NOT NULL DEFAULT '',
			point_cost INTEGER NOT NULL,
			currency_reward INTEGER NOT NULL DEFAULT 0,
			enabled INTEGER NOT NULL DEFAULT 1
		)`, serial),

		fmt.Sprintf(`CREATE TABLE IF NOT EXISTS purchases (
			id %s,
			account_id INTEGER NOT NULL REFERENCES accounts(id) ON DELETE CASCADE,
			shop_item_id INTEGER NOT NULL REFERENCES shop_items(id),
			points_spent INTEGER NOT NULL,
			purchased_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`, serial),

		`CREATE TABLE IF NOT EXISTS game_states (
			account_id INTEGER PRIMARY KEY REFERENCES accounts(id) ON DELETE CASCADE,
			state TEXT NOT NULL,
			schema_version INTEGER NOT NULL DEFAULT 1,
			updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`,
	}

	for _, migration := range migrations {
		if _, err := d.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// insertReturningID runs an INSERT and returns the new row ID, using
// LastInsertId or a RETURNING clause depending on the backend.
func (d *Database) insertReturningID(query string, args ...any) (int64, error) {
	query = d.dialect.Rebind(query)
	if d.dialect.SupportsLastInsertID() {
		result, err := d.db.Exec(query, args...)
		if err != nil {
			return 0, err
		}
		return result.LastInsertId()
	}

	var id int64
	err := d.db.QueryRow(query+d.dialect.ReturningClause("id"), args...).Scan(&id)
	return id, err
}
