package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Migrate creates the tables used by the bot if they don't exist.
func Migrate(ctx context.Context, db *sql.DB, d Dialect) error {
	timestamp := "TIMESTAMPTZ"
	if d == SQLite {
		timestamp = "TIMESTAMP"
	}

	statements := []string{
		// Same shape as the guild_config table the bot used on Supabase.
		`CREATE TABLE IF NOT EXISTS guild_config (
			guild_id TEXT PRIMARY KEY,
			role_id TEXT,
			intro_notify_channel TEXT,
			channel_id TEXT,
			updated_at ` + timestamp + ` NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS intro_submissions (
			id TEXT PRIMARY KEY,
			guild_id TEXT NOT NULL,
			submitter_id TEXT NOT NULL,
			accepted BOOLEAN NOT NULL,
			role_granted BOOLEAN NOT NULL DEFAULT FALSE,
			already_had_role BOOLEAN NOT NULL DEFAULT FALSE,
			notified BOOLEAN NOT NULL DEFAULT FALSE,
			created_at ` + timestamp + ` NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_intro_submissions_submitter
			ON intro_submissions (guild_id, submitter_id, created_at)`,
		`CREATE INDEX IF NOT EXISTS idx_intro_submissions_created_at
			ON intro_submissions (created_at)`,
	}

	for _, stmt := range statements {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
