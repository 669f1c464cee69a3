package agents

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"dispatch-voice/pkg/logger"

	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "agent_config:"

// CachedRepo is a read-through Redis cache in front of a Repository.
//
// Configs are immutable once saved, so entries are never invalidated; the TTL
// only bounds memory. Redis failures degrade to the underlying repository.
type CachedRepo struct {
	inner Repository
	rdb   redis.Cmdable
	ttl   time.Duration
}

func NewCachedRepo(inner Repository, rdb redis.Cmdable, ttl time.Duration) *CachedRepo {
	return &CachedRepo{inner: inner, rdb: rdb, ttl: ttl}
}

func (r *CachedRepo) Create(ctx context.Context, c Config) error {
	if err := r.inner.Create(ctx, c); err != nil {
		return err
	}
	r.store(ctx, c)
	return nil
}

func (r *CachedRepo) Get(ctx context.Context, id string) (Config, error) {
	raw, err := r.rdb.Get(ctx, cacheKeyPrefix+id).Bytes()
	switch {
	case err == nil:
		var c Config
		if jerr := json.Unmarshal(raw, &c); jerr == nil {
			return c, nil
		}
		logger.From(ctx).Warn("agent config cache entry unreadable", "agent_config_id", id)
	case !errors.Is(err, redis.Nil):
		logger.From(ctx).Warn("agent config cache read failed", "agent_config_id", id, "err", err)
	}

	c, err := r.inner.Get(ctx, id)
	if err != nil {
		return Config{}, err
	}
	r.store(ctx, c)
	return c, nil
}

func (r *CachedRepo) List(ctx context.Context, limit int) ([]Config, error) {
	return r.inner.List(ctx, limit)
}

func (r *CachedRepo) store(ctx context.Context, c Config) {
	raw, err := json.Marshal(c)
	if err != nil {
		return
	}
	if err := r.rdb.Set(ctx, cacheKeyPrefix+c.ID, raw, r.ttl).Err(); err != nil {
		logger.From(ctx).Warn("agent config cache write failed", "agent_config_id", c.ID, "err", err)
	}
}
