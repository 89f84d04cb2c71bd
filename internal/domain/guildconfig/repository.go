package guildconfig

import "context"

// Reader loads a guild's config. A guild with nothing stored yields an empty
// SubmissionConfig and a nil error.
type Reader interface {
	Get(ctx context.Context, guildID string) (SubmissionConfig, error)
}

// Repository is the read/write config store. Set rejects unknown keys with
// ErrUnknownKey; an empty value clears the key.
type Repository interface {
	Reader
	Set(ctx context.Context, guildID string, key Key, value string) error
}
