package llmgateway

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache is the LLM response cache contract. A nil Cache disables
// caching entirely (Gateway checks for nil before calling it).
type Cache interface {
	Get(ctx context.Context, key string) (string, bool)
	Set(ctx context.Context, key, value string, ttl time.Duration)
}

// RedisCache backs Cache with go-redis, gated by ENABLE_LLM_CACHE per
// spec.md §6. Cache misses and Redis errors are treated identically
// (a miss): the gateway must never fail a run because the cache is
// unreachable.
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache builds a RedisCache against addr (host:port).
func NewRedisCache(addr string) *RedisCache {
	return &RedisCache{client: redis.NewClient(&redis.Options{Addr: addr})}
}

func (c *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	val, err := c.client.Get(ctx, key).Result()
	if err != nil {
		return "", false
	}
	return val, true
}

func (c *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	_ = c.client.Set(ctx, key, value, ttl).Err()
}
