package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"discord_intro_bot/internal/domain/guildconfig"
)

// columns maps config keys to guild_config columns; keys outside the map
// are rejected.
var columns = map[guildconfig.Key]string{
	guildconfig.KeyRoleID:               "role_id",
	guildconfig.KeyIntroNotifyChannelID: "intro_notify_channel",
	guildconfig.KeyChannelID:            "channel_id",
}

// SQLGuildConfigRepository stores guild settings in PostgreSQL or SQLite.
type SQLGuildConfigRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLGuildConfigRepository(db *sql.DB, d Dialect) *SQLGuildConfigRepository {
	return &SQLGuildConfigRepository{db: db, dialect: d}
}

func (r *SQLGuildConfigRepository) Get(ctx context.Context, guildID string) (guildconfig.SubmissionConfig, error) {
	query := r.dialect.rebind(`SELECT role_id, intro_notify_channel, channel_id
               FROM guild_config WHERE guild_id = $1`)

	var roleID, notifyID, channelID sql.NullString
	err := r.db.QueryRowContext(ctx, query, guildID).Scan(&roleID, &notifyID, &channelID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return guildconfig.SubmissionConfig{}, nil
		}
		return guildconfig.SubmissionConfig{}, fmt.Errorf("error getting guild config: %w", err)
	}

	return guildconfig.SubmissionConfig{
		RoleID:               nullable(roleID),
		IntroNotifyChannelID: nullable(notifyID),
		RestrictedChannelID:  nullable(channelID),
	}, nil
}

func (r *SQLGuildConfigRepository) Set(ctx context.Context, guildID string, key guildconfig.Key, value string) error {
	column, ok := columns[key]
	if !ok {
		return fmt.Errorf("%w: %q", guildconfig.ErrUnknownKey, key)
	}

	// column comes from the fixed map above, never from user input.
	query := r.dialect.rebind(fmt.Sprintf(`INSERT INTO guild_config (guild_id, %[1]s, updated_at)
               VALUES ($1, $2, CURRENT_TIMESTAMP)
               ON CONFLICT (guild_id) DO UPDATE SET %[1]s = excluded.%[1]s, updated_at = CURRENT_TIMESTAMP`, column))

	v := sql.NullString{String: value, Valid: value != ""}
	if _, err := r.db.ExecContext(ctx, query, guildID, v); err != nil {
		return fmt.Errorf("error saving guild config %s: %w", key, err)
	}
	return nil
}

func nullable(ns sql.NullString) *string {
	if !ns.Valid || ns.String == "" {
		return nil
	}
	s := ns.String
	return &s
}
