package cache

import (
	"context"
	"errors"
	"time"

	"discord_intro_bot/internal/domain/guildconfig"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

const (
	keyPrefix = "intro:guildconfig:"
	// presentField marks a cached entry so that a guild with nothing set is
	// still a cache hit.
	presentField = "_cached"
)

// GuildConfigCache is a read-through Redis cache in front of a guild config
// repository. Redis failures fall back to the underlying store.
type GuildConfigCache struct {
	next   guildconfig.Repository
	rdb    *redis.Client
	ttl    time.Duration
	logger *logrus.Entry
}

func NewGuildConfigCache(next guildconfig.Repository, rdb *redis.Client, ttl time.Duration, logger *logrus.Entry) *GuildConfigCache {
	return &GuildConfigCache{
		next:   next,
		rdb:    rdb,
		ttl:    ttl,
		logger: logger.WithField("component", "guild_config_cache"),
	}
}

func cacheKey(guildID string) string {
	return keyPrefix + guildID
}

// genKey is bumped on every Set; a fill only lands if it is unchanged since
// the store read.
func genKey(guildID string) string {
	return keyPrefix + guildID + ":gen"
}

type getter interface {
	Get(ctx context.Context, key string) *redis.StringCmd
}

func generation(ctx context.Context, rc getter, guildID string) (string, error) {
	gen, err := rc.Get(ctx, genKey(guildID)).Result()
	if errors.Is(err, redis.Nil) {
		return "", nil
	}
	return gen, err
}

func (c *GuildConfigCache) Get(ctx context.Context, guildID string) (guildconfig.SubmissionConfig, error) {
	fields, err := c.rdb.HGetAll(ctx, cacheKey(guildID)).Result()
	if err != nil {
		c.logger.WithError(err).WithField("guild_id", guildID).Warn("Cache read failed, using store")
	} else if _, ok := fields[presentField]; ok {
		return fromFields(fields), nil
	}

	seen, genErr := generation(ctx, c.rdb, guildID)

	cfg, err := c.next.Get(ctx, guildID)
	if err != nil {
		return guildconfig.SubmissionConfig{}, err
	}
	if genErr != nil {
		return cfg, nil
	}

	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		current, err := generation(ctx, tx, guildID)
		if err != nil {
			return err
		}
		if current != seen {
			return nil // a Set landed after our store read
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Del(ctx, cacheKey(guildID))
			pipe.HSet(ctx, cacheKey(guildID), toFields(cfg))
			pipe.Expire(ctx, cacheKey(guildID), c.ttl)
			return nil
		})
		return err
	}, genKey(guildID))
	if err != nil && !errors.Is(err, redis.TxFailedErr) {
		c.logger.WithError(err).WithField("guild_id", guildID).Warn("Cache write failed")
	}
	return cfg, nil
}

// Set writes through to the store and drops the cached entry.
func (c *GuildConfigCache) Set(ctx context.Context, guildID string, key guildconfig.Key, value string) error {
	if err := c.next.Set(ctx, guildID, key, value); err != nil {
		return err
	}
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(guildID))
		pipe.Del(ctx, cacheKey(guildID))
		return nil
	})
	if err != nil {
		c.logger.WithError(err).WithField("guild_id", guildID).Warn("Cache invalidation failed")
	}
	return nil
}

func toFields(cfg guildconfig.SubmissionConfig) map[string]interface{} {
	fields := map[string]interface{}{presentField: "1"}
	for _, k := range guildconfig.Keys {
		if v := cfg.Get(k); v != nil {
			fields[string(k)] = *v
		}
	}
	return fields
}

func fromFields(fields map[string]string) guildconfig.SubmissionConfig {
	var cfg guildconfig.SubmissionConfig
	for _, k := range guildconfig.Keys {
		if v, ok := fields[string(k)]; ok {
			cfg = cfg.With(k, v)
		}
	}
	return cfg
}
