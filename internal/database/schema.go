package database

import (
	"context"
	"fmt"
)

// schemaStatements are safe to run on every start.
var schemaStatements = []string{
	`CREATE TABLE IF NOT EXISTS users (
		id UUID PRIMARY KEY,
		email VARCHAR(255) NOT NULL,
		username VARCHAR(100),
		first_name VARCHAR(100),
		last_name VARCHAR(100),
		password_hash VARCHAR(255),
		google_id VARCHAR(255),
		wallet_address VARCHAR(42),
		is_active BOOLEAN NOT NULL DEFAULT TRUE,
		is_verified BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_email_key ON users (email)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_username_key ON users (username)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_google_id_key ON users (google_id)`,
	`CREATE UNIQUE INDEX IF NOT EXISTS users_wallet_address_key ON users (wallet_address)`,
	`CREATE TABLE IF NOT EXISTS ratelimit_config (
		scope VARCHAR(64) PRIMARY KEY,
		rate VARCHAR(32) NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		updated_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS auth_events (
		id UUID PRIMARY KEY,
		user_id UUID REFERENCES users (id) ON DELETE SET NULL,
		event_type VARCHAR(64) NOT NULL,
		metadata JSONB,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS auth_events_user_id_idx ON auth_events (user_id, created_at DESC)`,
}

// CreateTables creates every table and index the API needs. Existing objects are
// left untouched, so calling it again is a no-op.
func (db *DB) CreateTables(ctx context.Context) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin schema transaction: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	for _, stmt := range schemaStatements {
		if _, err := tx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("create schema: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit schema: %w", err)
	}
	return nil
}
