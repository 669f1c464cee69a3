package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig covers the agent configuration cache. Zero values take defaults.
type RedisConfig struct {
	Addr string

	// IOTimeout applies to dial, read and write.
	IOTimeout   time.Duration
	PoolSize    int
	PingTimeout time.Duration
}

func (c RedisConfig) withDefaults() RedisConfig {
	out := c
	if out.IOTimeout <= 0 {
		out.IOTimeout = 2 * time.Second
	}
	if out.PoolSize <= 0 {
		out.PoolSize = 10
	}
	if out.PingTimeout <= 0 {
		out.PingTimeout = 2 * time.Second
	}
	return out
}

// OpenRedis returns a client that answered PING.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	cfg = cfg.withDefaults()
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr:            cfg.Addr,
		DialTimeout:     cfg.IOTimeout,
		ReadTimeout:     cfg.IOTimeout,
		WriteTimeout:    cfg.IOTimeout,
		PoolSize:        cfg.PoolSize,
		ConnMaxIdleTime: 5 * time.Minute,
	})

	if err := PingRedis(ctx, rdb, cfg.PingTimeout); err != nil {
		_ = rdb.Close()
		return nil, err
	}
	return rdb, nil
}

// PingRedis backs /readyz and OpenRedis.
func PingRedis(ctx context.Context, rdb *redis.Client, timeout time.Duration) error {
	if rdb == nil {
		return fmt.Errorf("redis client is nil")
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		return fmt.Errorf("redis ping: %w", err)
	}
	return nil
}
