package authkit

import (
	"context"
	"database/sql"

	goerrors "github.com/goliatone/go-errors"
	"github.com/uptrace/bun"
	"github.com/uptrace/bun/dialect/sqlitedialect"
	"github.com/uptrace/bun/driver/sqliteshim"
)

var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id TEXT NOT NULL PRIMARY KEY,
	user_role TEXT NOT NULL DEFAULT 'user',
	status TEXT NOT NULL DEFAULT 'active',
	first_name TEXT NOT NULL DEFAULT '',
	last_name TEXT NOT NULL DEFAULT '',
	username TEXT NOT NULL UNIQUE,
	email TEXT NOT NULL UNIQUE,
	phone_number TEXT DEFAULT '',
	department TEXT DEFAULT '',
	password_hash TEXT DEFAULT '',
	can_manage_users BOOLEAN NOT NULL DEFAULT FALSE,
	can_view_reports BOOLEAN NOT NULL DEFAULT FALSE,
	can_manage_settings BOOLEAN NOT NULL DEFAULT FALSE,
	last_login_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	updated_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
);`,
	`CREATE TABLE IF NOT EXISTS refresh_tokens (
	id TEXT NOT NULL PRIMARY KEY,
	user_id TEXT NOT NULL,
	token TEXT NOT NULL UNIQUE,
	expires_at TIMESTAMP NOT NULL,
	revoked_at TIMESTAMP,
	created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (user_id) REFERENCES users (id) ON DELETE CASCADE
);`,
	`CREATE INDEX IF NOT EXISTS idx_refresh_tokens_user_id ON refresh_tokens(user_id);`,
}

// OpenSQLite opens a SQLite-backed bun database. Use ":memory:" for tests
// and local tooling; production deployments point the same repositories at
// their own bun.DB.
func OpenSQLite(dsn string) (*bun.DB, error) {
	db, err := sql.Open(sqliteshim.ShimName, dsn)
	if err != nil {
		return nil, goerrors.Wrap(err, goerrors.CategoryOperation, "failed to open database")
	}

	// In-memory SQLite loses the schema when its single connection drops.
	db.SetMaxOpenConns(1)

	return bun.NewDB(db, sqlitedialect.New()), nil
}

// EnsureSchema creates the users and refresh_tokens tables if missing.
func EnsureSchema(ctx context.Context, db *bun.DB) error {
	if _, err := db.ExecContext(ctx, "PRAGMA foreign_keys = ON;"); err != nil {
		return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to enable foreign keys")
	}

	for _, stmt := range schemaStatements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return goerrors.Wrap(err, goerrors.CategoryOperation, "failed to apply schema")
		}
	}

	return nil
}
