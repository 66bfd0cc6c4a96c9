package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// TTLs
const (
	TTLFeed    = 30 * time.Second // memory feed (changes on every reaction)
	TTLMemory  = 2 * time.Minute  // single memory detail
	TTLDefault = 5 * time.Minute
)

// Key prefixes
const (
	PrefixFeed   = "memories:feed:"
	PrefixMemory = "memories:detail:"
	KeyStats     = "memories:stats"
)

// ErrMiss is returned when a key is absent or the cache is unavailable
var ErrMiss = errors.New("cache miss")

// Service is the Redis-backed cache used by the memory engine
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error

	// Feed cache, keyed by feed variant (category and sort; "" = default feed)
	GetFeed(ctx context.Context, variant string, dest interface{}) error
	SetFeed(ctx context.Context, variant string, data interface{}) error

	// Memory detail cache
	GetMemory(ctx context.Context, memoryID string, dest interface{}) error
	SetMemory(ctx context.Context, memoryID string, data interface{}) error

	// Archive-wide stats
	GetStats(ctx context.Context, dest interface{}) error
	SetStats(ctx context.Context, data interface{}) error

	// InvalidateMemory drops the detail entry of one memory, the stats and every feed variant
	InvalidateMemory(ctx context.Context, memoryID string) error

	IsAvailable() bool
	Ping(ctx context.Context) error
}

type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. A nil client yields a no-op cache.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return ErrMiss
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return ErrMiss
	}
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil // no Redis, nothing to do
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil || len(keys) == 0 {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

func feedKey(variant string) string {
	if variant == "" {
		return PrefixFeed + "all"
	}
	return PrefixFeed + variant
}

func (c *redisCache) GetFeed(ctx context.Context, variant string, dest interface{}) error {
	return c.Get(ctx, feedKey(variant), dest)
}

func (c *redisCache) SetFeed(ctx context.Context, variant string, data interface{}) error {
	return c.Set(ctx, feedKey(variant), data, TTLFeed)
}

func (c *redisCache) GetStats(ctx context.Context, dest interface{}) error {
	return c.Get(ctx, KeyStats, dest)
}

func (c *redisCache) SetStats(ctx context.Context, data interface{}) error {
	return c.Set(ctx, KeyStats, data, TTLFeed)
}

func (c *redisCache) GetMemory(ctx context.Context, memoryID string, dest interface{}) error {
	return c.Get(ctx, PrefixMemory+memoryID, dest)
}

func (c *redisCache) SetMemory(ctx context.Context, memoryID string, data interface{}) error {
	return c.Set(ctx, PrefixMemory+memoryID, data, TTLMemory)
}

func (c *redisCache) InvalidateMemory(ctx context.Context, memoryID string) error {
	if c.client == nil {
		return nil
	}
	keys := []string{KeyStats}
	if memoryID != "" {
		keys = append(keys, PrefixMemory+memoryID)
	}
	if err := c.client.Del(ctx, keys...).Err(); err != nil {
		return err
	}
	return c.deleteByPattern(ctx, PrefixFeed+"*")
}

func (c *redisCache) deleteByPattern(ctx context.Context, pattern string) error {
	iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
	for iter.Next(ctx) {
		if err := c.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
