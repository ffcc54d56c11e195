package redisad

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"

	"homestay/internal/adapters/observability"
)

type Cache struct{ c *redis.Client }

func New(addr, pass string, db int) *Cache {
	return &Cache{c: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db})}
}

// NewFromClient wraps an existing client; used by tests.
func NewFromClient(c *redis.Client) *Cache { return &Cache{c: c} }

func (r *Cache) Get(ctx context.Context, key string, dst any) (bool, error) {
	v, err := r.c.Get(ctx, key).Bytes()
	if err == redis.Nil {
		observability.ObserveCache("redis", "miss")
		return false, nil
	}
	if err != nil {
		// A store outage reads as a miss so callers fall through to canonical.
		observability.ObserveCache("redis", "miss")
		log.Error().Err(err).Str("key", key).Msg("cache get failed")
		return false, err
	}
	observability.ObserveCache("redis", "hit")
	return true, json.Unmarshal(v, dst)
}

func (r *Cache) Set(ctx context.Context, key string, v any, ttlSec int) error {
	b, _ := json.Marshal(v)
	observability.ObserveCache("redis", "set")
	if err := r.c.Set(ctx, key, b, time.Duration(ttlSec)*time.Second).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache set failed")
		return err
	}
	return nil
}

func (r *Cache) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	observability.ObserveCache("redis", "del")
	if err := r.c.Del(ctx, keys...).Err(); err != nil {
		log.Error().Err(err).Strs("keys", keys).Msg("cache del failed")
		return err
	}
	return nil
}

// DelPattern removes every key matching pattern via SCAN, in batches. KEYS is
// avoided so a large filtered-list namespace cannot stall the store.
func (r *Cache) DelPattern(ctx context.Context, pattern string) error {
	observability.ObserveCache("redis", "del")
	var cursor uint64
	for {
		keys, next, err := r.c.Scan(ctx, cursor, pattern, 200).Result()
		if err != nil {
			log.Error().Err(err).Str("pattern", pattern).Msg("cache scan failed")
			return err
		}
		if len(keys) > 0 {
			if err := r.c.Del(ctx, keys...).Err(); err != nil {
				log.Error().Err(err).Str("pattern", pattern).Msg("cache pattern del failed")
				return err
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *Cache) Expire(ctx context.Context, key string, ttlSec int) error {
	return r.c.Expire(ctx, key, time.Duration(ttlSec)*time.Second).Err()
}

func (r *Cache) ListPush(ctx context.Context, key string, v any) error {
	b, _ := json.Marshal(v)
	if err := r.c.LPush(ctx, key, b).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache lpush failed")
		return err
	}
	return nil
}

func (r *Cache) ListTrim(ctx context.Context, key string, max int64) error {
	if err := r.c.LTrim(ctx, key, 0, max-1).Err(); err != nil {
		log.Error().Err(err).Str("key", key).Msg("cache ltrim failed")
		return err
	}
	return nil
}
