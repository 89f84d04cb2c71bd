package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"discord_intro_bot/internal/domain/audit"
)

type SQLAuditRepository struct {
	db      *sql.DB
	dialect Dialect
}

func NewSQLAuditRepository(db *sql.DB, d Dialect) *SQLAuditRepository {
	return &SQLAuditRepository{db: db, dialect: d}
}

func (r *SQLAuditRepository) Create(ctx context.Context, rec *audit.Record) error {
	query := r.dialect.rebind(`INSERT INTO intro_submissions
               (id, guild_id, submitter_id, accepted, role_granted, already_had_role, notified, created_at)
               VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`)

	_, err := r.db.ExecContext(ctx, query,
		rec.ID, rec.GuildID, rec.SubmitterID,
		rec.Accepted, rec.RoleGranted, rec.AlreadyHadRole, rec.Notified,
		rec.CreatedAt)
	if err != nil {
		return fmt.Errorf("error creating submission record: %w", err)
	}
	return nil
}

func (r *SQLAuditRepository) ListBySubmitter(ctx context.Context, guildID, submitterID string, limit int) ([]*audit.Record, error) {
	query := r.dialect.rebind(`SELECT id, guild_id, submitter_id, accepted, role_granted, already_had_role, notified, created_at
               FROM intro_submissions WHERE guild_id = $1 AND submitter_id = $2
               ORDER BY created_at DESC LIMIT $3`)

	rows, err := r.db.QueryContext(ctx, query, guildID, submitterID, limit)
	if err != nil {
		return nil, fmt.Errorf("error listing submission records: %w", err)
	}
	defer rows.Close()

	records := make([]*audit.Record, 0)
	for rows.Next() {
		rec := &audit.Record{}
		if err := rows.Scan(&rec.ID, &rec.GuildID, &rec.SubmitterID,
			&rec.Accepted, &rec.RoleGranted, &rec.AlreadyHadRole, &rec.Notified,
			&rec.CreatedAt); err != nil {
			return nil, fmt.Errorf("error scanning submission record: %w", err)
		}
		records = append(records, rec)
	}
	if err = rows.Err(); err != nil {
		return nil, fmt.Errorf("error iterating submission records: %w", err)
	}
	return records, nil
}

// DeleteOlderThan removes records created before cutoff and returns how many.
func (r *SQLAuditRepository) DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error) {
	query := r.dialect.rebind(`DELETE FROM intro_submissions WHERE created_at < $1`)

	res, err := r.db.ExecContext(ctx, query, cutoff.UTC())
	if err != nil {
		return 0, fmt.Errorf("error pruning submission records: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("error counting pruned records: %w", err)
	}
	return n, nil
}
