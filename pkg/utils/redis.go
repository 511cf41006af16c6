package utils

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig describes the slot storage connection. Zero durations and sizes
// fall back to conservative defaults.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int

	DialTimeout time.Duration
	IOTimeout   time.Duration
	PoolSize    int
	PingTimeout time.Duration
}

func (c RedisConfig) options() *redis.Options {
	dial := orDuration(c.DialTimeout, 3*time.Second)
	io := orDuration(c.IOTimeout, 2*time.Second)
	pool := c.PoolSize
	if pool <= 0 {
		pool = 10
	}
	return &redis.Options{
		Addr:            c.Addr,
		Password:        c.Password,
		DB:              c.DB,
		DialTimeout:     dial,
		ReadTimeout:     io,
		WriteTimeout:    io,
		PoolSize:        pool,
		ConnMaxIdleTime: 5 * time.Minute,
	}
}

// OpenRedis builds a client and checks it with PING before returning it.
func OpenRedis(ctx context.Context, cfg RedisConfig) (*redis.Client, error) {
	if cfg.Addr == "" {
		return nil, fmt.Errorf("redis addr is required")
	}
	rdb := redis.NewClient(cfg.options())

	pingCtx, cancel := context.WithTimeout(ctx, orDuration(cfg.PingTimeout, 2*time.Second))
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("redis ping failed: %w", err)
	}
	return rdb, nil
}

func orDuration(v, def time.Duration) time.Duration {
	if v <= 0 {
		return def
	}
	return v
}
