package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	t.Setenv("DISCORD_TOKEN", "token")
	return dir
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "token", cfg.DiscordToken)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, DriverSQLite, cfg.ConfigDriver)
	assert.Equal(t, "private", cfg.ReplyVisibility)
	assert.Equal(t, "embed", cfg.NotifyFormat)
	assert.Equal(t, "additive", cfg.AckPolicy)
	assert.Equal(t, 5*time.Minute, cfg.ConfigCacheTTL)
	assert.Equal(t, 15*time.Second, cfg.EventTimeout)
	assert.Equal(t, "3000", cfg.Port)
	assert.Equal(t, 90, cfg.AuditRetentionDays)
	assert.Zero(t, cfg.TelegramMirrorChatID)
	assert.Empty(t, cfg.CommandGuilds)
}

func TestLoadFromEnv(t *testing.T) {
	isolate(t)
	t.Setenv("COMMAND_GUILDS", "111, 222,,")
	t.Setenv("DEVELOPER_IDS", "42")
	t.Setenv("CONFIG_DRIVER", "POSTGRES")
	t.Setenv("DATABASE_URL", "postgres://localhost/intro")
	t.Setenv("ACK_POLICY", "fixed")
	t.Setenv("REPLY_VISIBILITY", "public")
	t.Setenv("TELEGRAM_TOKEN", "tg")
	t.Setenv("TELEGRAM_MIRROR_CHAT_ID", "-100123")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, []string{"111", "222"}, cfg.CommandGuilds)
	assert.Equal(t, []string{"42"}, cfg.DeveloperIDs)
	assert.Equal(t, DriverPostgres, cfg.ConfigDriver)
	assert.Equal(t, "fixed", cfg.AckPolicy)
	assert.Equal(t, "public", cfg.ReplyVisibility)
	assert.Equal(t, int64(-100123), cfg.TelegramMirrorChatID)
}

func TestLoadFromYAML(t *testing.T) {
	dir := isolate(t)
	yaml := "NOTIFY_FORMAT: plain\nPORT: \"8080\"\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0o644))

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "plain", cfg.NotifyFormat)
	assert.Equal(t, "8080", cfg.Port)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{name: "missing token", env: map[string]string{"DISCORD_TOKEN": ""}},
		{name: "bad driver", env: map[string]string{"CONFIG_DRIVER": "mongo"}},
		{name: "postgres without url", env: map[string]string{"CONFIG_DRIVER": "postgres"}},
		{name: "bad visibility", env: map[string]string{"REPLY_VISIBILITY": "secret"}},
		{name: "bad notify format", env: map[string]string{"NOTIFY_FORMAT": "html"}},
		{name: "bad ack policy", env: map[string]string{"ACK_POLICY": "loud"}},
		{name: "bad timeout", env: map[string]string{"EVENT_TIMEOUT": "soon"}},
		{name: "mirror without token", env: map[string]string{"TELEGRAM_MIRROR_CHAT_ID": "1"}},
		{name: "bad mirror chat", env: map[string]string{"TELEGRAM_MIRROR_CHAT_ID": "abc", "TELEGRAM_TOKEN": "tg"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := Load()
			assert.Error(t, err)
		})
	}
}
