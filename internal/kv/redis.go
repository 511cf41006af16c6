package kv

import (
	"context"
	"errors"
	"fmt"

	"github.com/redis/go-redis/v9"
)

const maxUpdateRetries = 10

// RedisStore keeps each slot as a plain string key, optionally prefixed.
type RedisStore struct {
	rdb    *redis.Client
	prefix string
}

func NewRedisStore(rdb *redis.Client, prefix string) *RedisStore {
	return &RedisStore{rdb: rdb, prefix: prefix}
}

func (s *RedisStore) key(k string) string { return s.prefix + k }

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, error) {
	v, err := s.rdb.Get(ctx, s.key(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("kv: redis get %s: %w", key, err)
	}
	return v, nil
}

func (s *RedisStore) Put(ctx context.Context, key string, value []byte) error {
	if err := s.rdb.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("kv: redis set %s: %w", key, err)
	}
	return nil
}

// Update uses WATCH/MULTI and retries when another writer touched the key.
func (s *RedisStore) Update(ctx context.Context, key string, fn UpdateFunc) ([]byte, error) {
	k := s.key(key)
	var out []byte
	txf := func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, k).Bytes()
		found := true
		if errors.Is(err, redis.Nil) {
			found, err = false, nil
		}
		if err != nil {
			return err
		}
		next, err := fn(cur, found)
		if err != nil {
			return err
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, k, next, 0)
			return nil
		})
		if err == nil {
			out = next
		}
		return err
	}

	for i := 0; i < maxUpdateRetries; i++ {
		err := s.rdb.Watch(ctx, txf, k)
		if err == nil {
			return out, nil
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return nil, fmt.Errorf("kv: redis update %s: %w", key, err)
	}
	return nil, fmt.Errorf("kv: redis update %s: too much contention", key)
}
