package main

import (
	"context"
	"database/sql"
	"fmt"

	"discord_intro_bot/internal/domain/audit"
	"discord_intro_bot/internal/domain/guildconfig"
	"discord_intro_bot/internal/infra/cache"
	"discord_intro_bot/internal/infra/config"
	idb "discord_intro_bot/internal/infra/database"
	"discord_intro_bot/internal/infra/filestore"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// stores holds the configured persistence backends. audits is nil for the
// file driver.
type stores struct {
	configs guildconfig.Repository
	audits  audit.Repository
	closers []func() error
}

func (s *stores) Close() {
	for i := len(s.closers) - 1; i >= 0; i-- {
		_ = s.closers[i]()
	}
}

func openStores(ctx context.Context, cfg *config.AppConfig, log *logrus.Entry) (*stores, error) {
	st := &stores{}

	switch cfg.ConfigDriver {
	case config.DriverFile:
		repo, err := filestore.Open(cfg.ConfigFilePath, log)
		if err != nil {
			return nil, fmt.Errorf("could not open config file: %w", err)
		}
		st.configs = repo
		log.WithField("path", cfg.ConfigFilePath).Info("Using JSON file config store; submission audit disabled.")
	default:
		db, dialect, err := openDatabase(cfg)
		if err != nil {
			return nil, fmt.Errorf("could not connect to database: %w", err)
		}
		st.closers = append(st.closers, db.Close)
		if err := idb.Migrate(ctx, db, dialect); err != nil {
			st.Close()
			return nil, err
		}
		st.configs = idb.NewSQLGuildConfigRepository(db, dialect)
		st.audits = idb.NewSQLAuditRepository(db, dialect)
		log.WithField("driver", cfg.ConfigDriver).Info("Database connection established successfully.")
	}

	if cfg.RedisURL != "" {
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			st.Close()
			return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
		}
		rdb := redis.NewClient(opts)
		if err := rdb.Ping(ctx).Err(); err != nil {
			log.WithError(err).Warn("Redis unreachable, config cache disabled")
			_ = rdb.Close()
		} else {
			st.closers = append(st.closers, rdb.Close)
			st.configs = cache.NewGuildConfigCache(st.configs, rdb, cfg.ConfigCacheTTL, log)
			log.WithField("ttl", cfg.ConfigCacheTTL.String()).Info("Guild config cache enabled.")
		}
	}

	return st, nil
}

func openDatabase(cfg *config.AppConfig) (*sql.DB, idb.Dialect, error) {
	if cfg.ConfigDriver == config.DriverPostgres {
		db, err := idb.NewPostgresConnection(cfg.DatabaseURL)
		return db, idb.Postgres, err
	}
	db, err := idb.NewSQLiteConnection(cfg.SQLitePath)
	return db, idb.SQLite, err
}
