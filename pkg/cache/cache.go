package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Cache TTLs
const (
	TTLStats     = 3 * time.Minute  // dashboard stats, invalidated on every transition anyway
	TTLModerator = 5 * time.Minute  // moderator profile for /me
	TTLSearch    = 30 * time.Second // search results (freshness matters)
	TTLDefault   = 5 * time.Minute
)

// Cache key prefixes
const (
	PrefixStats     = "modq:stats:"
	PrefixModerator = "modq:moderator:"
	PrefixSearch    = "modq:search:"
)

// Service is the Redis cache facade. Every operation is a no-op (or a
// miss) when Redis is not configured, so callers never branch on
// availability themselves.
type Service interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
	Exists(ctx context.Context, key string) (bool, error)

	// Queue stats cache
	GetQueueStats(ctx context.Context) ([]byte, error)
	SetQueueStats(ctx context.Context, data interface{}) error
	InvalidateQueueStats(ctx context.Context) error

	// Moderator profile cache
	GetModerator(ctx context.Context, moderatorID string) ([]byte, error)
	SetModerator(ctx context.Context, moderatorID string, data interface{}) error
	InvalidateModerator(ctx context.Context, moderatorID string) error

	// Search result cache
	GetSearch(ctx context.Context, queryHash string) ([]byte, error)
	SetSearch(ctx context.Context, queryHash string, data interface{}) error
	InvalidateSearches(ctx context.Context) error

	// Utilities
	IsAvailable() bool
	Ping(ctx context.Context) error
}

// redisCache is the Redis-backed implementation
type redisCache struct {
	client *redis.Client
}

// NewService creates a cache service. client may be nil.
func NewService(client *redis.Client) Service {
	return &redisCache{client: client}
}

// IsAvailable reports whether Redis is configured
func (c *redisCache) IsAvailable() bool {
	return c.client != nil
}

// Ping tests the Redis connection
func (c *redisCache) Ping(ctx context.Context) error {
	if c.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	return c.client.Ping(ctx).Err()
}

// Get reads a cached value into dest
func (c *redisCache) Get(ctx context.Context, key string, dest interface{}) error {
	if c.client == nil {
		return fmt.Errorf("redis not available")
	}

	data, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		return err
	}

	return json.Unmarshal(data, dest)
}

// Set stores a value with the given TTL
func (c *redisCache) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	if c.client == nil {
		return nil
	}

	data, err := json.Marshal(value)
	if err != nil {
		return err
	}

	return c.client.Set(ctx, key, data, ttl).Err()
}

// Delete removes cached values
func (c *redisCache) Delete(ctx context.Context, keys ...string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, keys...).Err()
}

// Exists checks whether a key is cached
func (c *redisCache) Exists(ctx context.Context, key string) (bool, error) {
	if c.client == nil {
		return false, nil
	}
	n, err := c.client.Exists(ctx, key).Result()
	return n > 0, err
}

// ========================================
// Queue stats cache
// ========================================

func (c *redisCache) statsKey() string {
	return PrefixStats + "queue"
}

func (c *redisCache) GetQueueStats(ctx context.Context) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.statsKey()).Bytes()
}

func (c *redisCache) SetQueueStats(ctx context.Context, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.statsKey(), jsonData, TTLStats).Err()
}

func (c *redisCache) InvalidateQueueStats(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.statsKey()).Err()
}

// ========================================
// Moderator profile cache
// ========================================

func (c *redisCache) moderatorKey(moderatorID string) string {
	return PrefixModerator + moderatorID
}

func (c *redisCache) GetModerator(ctx context.Context, moderatorID string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.moderatorKey(moderatorID)).Bytes()
}

func (c *redisCache) SetModerator(ctx context.Context, moderatorID string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.moderatorKey(moderatorID), jsonData, TTLModerator).Err()
}

func (c *redisCache) InvalidateModerator(ctx context.Context, moderatorID string) error {
	if c.client == nil {
		return nil
	}
	return c.client.Del(ctx, c.moderatorKey(moderatorID)).Err()
}

// ========================================
// Search result cache
// ========================================

func (c *redisCache) searchKey(queryHash string) string {
	return PrefixSearch + queryHash
}

func (c *redisCache) GetSearch(ctx context.Context, queryHash string) ([]byte, error) {
	if c.client == nil {
		return nil, fmt.Errorf("redis not available")
	}
	return c.client.Get(ctx, c.searchKey(queryHash)).Bytes()
}

func (c *redisCache) SetSearch(ctx context.Context, queryHash string, data interface{}) error {
	if c.client == nil {
		return nil
	}
	jsonData, err := json.Marshal(data)
	if err != nil {
		return err
	}
	return c.client.Set(ctx, c.searchKey(queryHash), jsonData, TTLSearch).Err()
}

func (c *redisCache) InvalidateSearches(ctx context.Context) error {
	if c.client == nil {
		return nil
	}
	return c.deleteByPattern(ctx, PrefixSearch+"*")
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
