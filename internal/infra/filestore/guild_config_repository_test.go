package filestore

import (
	"context"
	"io"
	"os"
	"path/filepath"
	"testing"

	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLogger() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func TestOpenCreatesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	_, err := Open(path, quietLogger())
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{}`, string(data))
}

func TestSetGetRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	ctx := context.Background()

	repo, err := Open(path, quietLogger())
	require.NoError(t, err)
	require.NoError(t, repo.Set(ctx, "g1", guildconfig.KeyRoleID, "r1"))
	require.NoError(t, repo.Set(ctx, "g1", guildconfig.KeyChannelID, "c1"))

	// A fresh repository sees what the first one wrote.
	reopened, err := Open(path, quietLogger())
	require.NoError(t, err)
	cfg, err := reopened.Get(ctx, "g1")
	require.NoError(t, err)
	require.NotNil(t, cfg.RoleID)
	assert.Equal(t, "r1", *cfg.RoleID)
	assert.Equal(t, "c1", *cfg.RestrictedChannelID)
	assert.Nil(t, cfg.IntroNotifyChannelID)

	require.NoError(t, reopened.Set(ctx, "g1", guildconfig.KeyRoleID, ""))
	cfg, err = reopened.Get(ctx, "g1")
	require.NoError(t, err)
	assert.Nil(t, cfg.RoleID)

	other, err := reopened.Get(ctx, "g2")
	require.NoError(t, err)
	assert.Equal(t, guildconfig.SubmissionConfig{}, other)
}

func TestSetRejectsUnknownKey(t *testing.T) {
	repo, err := Open(filepath.Join(t.TempDir(), "config.json"), quietLogger())
	require.NoError(t, err)

	err = repo.Set(context.Background(), "g1", guildconfig.Key("prefix"), "!")
	assert.ErrorIs(t, err, guildconfig.ErrUnknownKey)
}

func TestOpenToleratesBadFiles(t *testing.T) {
	for name, content := range map[string]string{
		"empty":   "  \n",
		"corrupt": "{not json",
		"null":    "null",
	} {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.json")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

			repo, err := Open(path, quietLogger())
			require.NoError(t, err)
			cfg, err := repo.Get(context.Background(), "g1")
			require.NoError(t, err)
			assert.Equal(t, guildconfig.SubmissionConfig{}, cfg)

			require.NoError(t, repo.Set(context.Background(), "g1", guildconfig.KeyRoleID, "r1"))
			cfg, err = repo.Get(context.Background(), "g1")
			require.NoError(t, err)
			require.NotNil(t, cfg.RoleID)
			assert.Equal(t, "r1", *cfg.RoleID)
		})
	}
}
