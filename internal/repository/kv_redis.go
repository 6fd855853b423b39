package repository // Redis-backed key-value persistence

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"
)

// RedisKV stores values as plain Redis strings.  Keys are namespaced with an
// optional prefix so several deployments can share one database.
type RedisKV struct {
	rdb    *redis.Client
	prefix string
}

// NewRedisKV constructs a RedisKV.  A nil client is accepted so callers can
// pass the result of config.NewRedisClient directly; every call then fails
// with ErrUnavailable.
func NewRedisKV(rdb *redis.Client, prefix string) *RedisKV {
	return &RedisKV{rdb: rdb, prefix: prefix}
}

func (r *RedisKV) key(k string) string {
	if r.prefix == "" {
		return k
	}
	return r.prefix + ":" + k
}

// Load fetches all keys with a single MGET.  Keys that do not exist are
// left out of the result.
func (r *RedisKV) Load(ctx context.Context, keys ...string) (map[string][]byte, error) {
	if r.rdb == nil {
		return nil, ErrUnavailable
	}
	if len(keys) == 0 {
		return nil, ErrNoKeys
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = r.key(k)
	}
	vals, err := r.rdb.MGet(ctx, full...).Result()
	if err != nil {
		return nil, fmt.Errorf("redis mget: %w", err)
	}
	out := make(map[string][]byte, len(keys))
	for i, v := range vals {
		switch t := v.(type) {
		case string:
			out[keys[i]] = []byte(t)
		case []byte:
			out[keys[i]] = t
		}
	}
	return out, nil
}

// Save writes every entry inside MULTI/EXEC so the update is atomic.
func (r *RedisKV) Save(ctx context.Context, entries map[string][]byte) error {
	if r.rdb == nil {
		return ErrUnavailable
	}
	if len(entries) == 0 {
		return nil
	}
	pairs := make([]interface{}, 0, len(entries)*2)
	for k, v := range entries {
		pairs = append(pairs, r.key(k), v)
	}
	_, err := r.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.MSet(ctx, pairs...)
		return nil
	})
	if err != nil {
		return fmt.Errorf("redis mset: %w", err)
	}
	return nil
}
