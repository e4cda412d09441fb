package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces ladder keys in a shared Redis
const DefaultKeyPrefix = "ladder:ranges:"

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisRangeSetCache implements RangeSetCache using Redis with JSON payloads
type RedisRangeSetCache struct {
	client     *redis.Client
	ownsClient bool // true if we created the client and should close it
	keyPrefix  string
	defaultTTL time.Duration
	logger     *zap.Logger
}

// RedisOption is a functional option for configuring the cache
type RedisOption func(*RedisRangeSetCache)

// WithKeyPrefix overrides DefaultKeyPrefix
func WithKeyPrefix(prefix string) RedisOption {
	return func(c *RedisRangeSetCache) {
		if prefix != "" {
			c.keyPrefix = prefix
		}
	}
}

// WithRedisTTL sets the TTL used when Set is called with zero
func WithRedisTTL(ttl time.Duration) RedisOption {
	return func(c *RedisRangeSetCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisOption {
	return func(c *RedisRangeSetCache) {
		c.logger = logger
	}
}

// NewRedisRangeSetCache connects to Redis and creates a ladder cache
func NewRedisRangeSetCache(ctx context.Context, cfg RedisConfig, opts ...RedisOption) (*RedisRangeSetCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	c := NewRedisRangeSetCacheWithClient(client, opts...)
	c.ownsClient = true
	return c, nil
}

// NewRedisRangeSetCacheWithClient creates a cache with an existing Redis client.
// The caller retains ownership of the client.
func NewRedisRangeSetCacheWithClient(client *redis.Client, opts ...RedisOption) *RedisRangeSetCache {
	c := &RedisRangeSetCache{
		client:     client,
		keyPrefix:  DefaultKeyPrefix,
		defaultTTL: defaultTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *RedisRangeSetCache) key(tenantID, productID uuid.UUID) string {
	return c.keyPrefix + ladderKey(tenantID, productID)
}

// Get retrieves a ladder from Redis
func (c *RedisRangeSetCache) Get(ctx context.Context, tenantID, productID uuid.UUID) (pricing.RangeSet, bool, error) {
	key := c.key(tenantID, productID)

	data, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get ladder from cache: %w", err)
	}

	var rs pricing.RangeSet
	if err := json.Unmarshal(data, &rs); err != nil {
		c.logger.Warn("Dropping corrupted ladder cache entry",
			zap.String("key", key),
			zap.Error(err))
		_ = c.client.Del(ctx, key)
		return nil, false, fmt.Errorf("failed to unmarshal ladder: %w", err)
	}
	if rs == nil {
		rs = pricing.RangeSet{}
	}

	return rs, true, nil
}

// Set stores a ladder in Redis
func (c *RedisRangeSetCache) Set(ctx context.Context, tenantID, productID uuid.UUID, rs pricing.RangeSet, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	if rs == nil {
		rs = pricing.RangeSet{}
	}

	data, err := json.Marshal(rs)
	if err != nil {
		return fmt.Errorf("failed to marshal ladder: %w", err)
	}

	if err := c.client.Set(ctx, c.key(tenantID, productID), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set ladder in cache: %w", err)
	}
	return nil
}

// Delete removes a ladder from Redis
func (c *RedisRangeSetCache) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	if err := c.client.Del(ctx, c.key(tenantID, productID)).Err(); err != nil {
		return fmt.Errorf("failed to delete ladder from cache: %w", err)
	}
	return nil
}

// Backend implements RangeSetCache
func (c *RedisRangeSetCache) Backend() string {
	return BackendRedis
}

// Close closes the Redis client if the cache created it
func (c *RedisRangeSetCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}

// GetClient returns the underlying Redis client
func (c *RedisRangeSetCache) GetClient() *redis.Client {
	return c.client
}

var _ RangeSetCache = (*RedisRangeSetCache)(nil)
