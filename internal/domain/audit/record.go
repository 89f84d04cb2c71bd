// internal/domain/audit/record.go
package audit

import (
	"context"
	"time"
)

// Record is one processed submission. Ignored submissions are never recorded.
type Record struct {
	ID             string
	GuildID        string
	SubmitterID    string
	Accepted       bool
	RoleGranted    bool
	AlreadyHadRole bool
	Notified       bool
	CreatedAt      time.Time
}

// Repository persists submission records.
type Repository interface {
	Create(ctx context.Context, r *Record) error
	ListBySubmitter(ctx context.Context, guildID, submitterID string, limit int) ([]*Record, error)
	DeleteOlderThan(ctx context.Context, cutoff time.Time) (int64, error)
}
