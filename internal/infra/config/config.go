package config

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Config store drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverFile     = "file"
)

// AppConfig holds all configuration for the application
type AppConfig struct {
	DiscordToken  string
	LogLevel      string
	Environment   string
	CommandGuilds []string // empty registers commands globally
	DeveloperIDs  []string

	ConfigDriver   string
	DatabaseURL    string
	SQLitePath     string
	ConfigFilePath string
	RedisURL       string
	ConfigCacheTTL time.Duration

	ReplyVisibility string
	NotifyFormat    string
	AckPolicy       string
	EventTimeout    time.Duration

	Port string

	TelegramToken        string
	TelegramMirrorChatID int64 // 0 disables the mirror

	AuditRetentionDays int
	CronSpecAuditPrune string
}

func defaults(v *viper.Viper) {
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("ENVIRONMENT", "development")
	v.SetDefault("CONFIG_DRIVER", DriverSQLite)
	v.SetDefault("SQLITE_PATH", "./data/intro.db")
	v.SetDefault("CONFIG_FILE_PATH", "./config.json")
	v.SetDefault("CONFIG_CACHE_TTL", "5m")
	v.SetDefault("REPLY_VISIBILITY", "private")
	v.SetDefault("NOTIFY_FORMAT", "embed")
	v.SetDefault("ACK_POLICY", "additive")
	v.SetDefault("EVENT_TIMEOUT", "15s")
	v.SetDefault("PORT", "3000")
	v.SetDefault("AUDIT_RETENTION_DAYS", 90)
	v.SetDefault("CRON_SPEC_AUDIT_PRUNE", "0 4 * * *") // 04:00 daily
}

// Load reads configuration from environment variables, a .env file and an
// optional config.yaml in the working directory. Environment wins over the file.
func Load() (*AppConfig, error) {
	// godotenv.Load will not override existing env variables.
	_ = godotenv.Load()

	v := viper.New()
	defaults(v)
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AutomaticEnv()
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config.yaml: %w", err)
		}
	}
	return fromViper(v)
}

func fromViper(v *viper.Viper) (*AppConfig, error) {
	cfg := &AppConfig{
		DiscordToken:    strings.TrimSpace(v.GetString("DISCORD_TOKEN")),
		LogLevel:        strings.ToLower(v.GetString("LOG_LEVEL")),
		Environment:     strings.ToLower(v.GetString("ENVIRONMENT")),
		CommandGuilds:   splitList(v.GetString("COMMAND_GUILDS")),
		DeveloperIDs:    splitList(v.GetString("DEVELOPER_IDS")),
		ConfigDriver:    strings.ToLower(v.GetString("CONFIG_DRIVER")),
		DatabaseURL:     v.GetString("DATABASE_URL"),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		ConfigFilePath:  v.GetString("CONFIG_FILE_PATH"),
		RedisURL:        v.GetString("REDIS_URL"),
		ReplyVisibility: strings.ToLower(v.GetString("REPLY_VISIBILITY")),
		NotifyFormat:    strings.ToLower(v.GetString("NOTIFY_FORMAT")),
		AckPolicy:       strings.ToLower(v.GetString("ACK_POLICY")),
		Port:            v.GetString("PORT"),
		TelegramToken:   v.GetString("TELEGRAM_TOKEN"),
	}
	cfg.CronSpecAuditPrune = v.GetString("CRON_SPEC_AUDIT_PRUNE")

	if cfg.DiscordToken == "" {
		return nil, fmt.Errorf("DISCORD_TOKEN is not set")
	}

	var err error
	if cfg.ConfigCacheTTL, err = time.ParseDuration(v.GetString("CONFIG_CACHE_TTL")); err != nil {
		return nil, fmt.Errorf("invalid CONFIG_CACHE_TTL: %w", err)
	}
	if cfg.EventTimeout, err = time.ParseDuration(v.GetString("EVENT_TIMEOUT")); err != nil {
		return nil, fmt.Errorf("invalid EVENT_TIMEOUT: %w", err)
	}
	if cfg.AuditRetentionDays, err = strconv.Atoi(v.GetString("AUDIT_RETENTION_DAYS")); err != nil {
		return nil, fmt.Errorf("invalid AUDIT_RETENTION_DAYS: %w", err)
	}

	if chatID := v.GetString("TELEGRAM_MIRROR_CHAT_ID"); chatID != "" {
		cfg.TelegramMirrorChatID, err = strconv.ParseInt(chatID, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("invalid TELEGRAM_MIRROR_CHAT_ID: %w", err)
		}
		if cfg.TelegramToken == "" {
			return nil, fmt.Errorf("TELEGRAM_MIRROR_CHAT_ID is set but TELEGRAM_TOKEN is not")
		}
	}

	if err := oneOf("CONFIG_DRIVER", cfg.ConfigDriver, DriverSQLite, DriverPostgres, DriverFile); err != nil {
		return nil, err
	}
	if cfg.ConfigDriver == DriverPostgres && cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is not set")
	}
	if err := oneOf("REPLY_VISIBILITY", cfg.ReplyVisibility, "public", "private"); err != nil {
		return nil, err
	}
	if err := oneOf("NOTIFY_FORMAT", cfg.NotifyFormat, "plain", "embed"); err != nil {
		return nil, err
	}
	if err := oneOf("ACK_POLICY", cfg.AckPolicy, "additive", "fixed"); err != nil {
		return nil, err
	}

	return cfg, nil
}

func oneOf(name, value string, allowed ...string) error {
	for _, a := range allowed {
		if value == a {
			return nil
		}
	}
	return fmt.Errorf("invalid %s %q, expected one of %s", name, value, strings.Join(allowed, ", "))
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
