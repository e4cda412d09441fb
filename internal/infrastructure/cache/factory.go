package cache

import (
	"context"
	"fmt"

	"github.com/erp/ladderprice/internal/infrastructure/config"
	"go.uber.org/zap"
)

// Factory creates ladder caches based on configuration
type Factory struct {
	pricing               config.PricingConfig
	redis                 config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory and the caches it creates
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether an unreachable Redis degrades to the in-memory cache.
// Default is false.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a new factory
func NewFactory(pricing config.PricingConfig, redis config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		pricing: pricing,
		redis:   redis,
		logger:  zap.NewNop(),
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// Create returns the configured cache, or nil when caching is disabled
func (f *Factory) Create(ctx context.Context) (RangeSetCache, error) {
	switch f.pricing.CacheBackend {
	case config.CacheBackendNone, "":
		return nil, nil

	case config.CacheBackendMemory:
		f.logger.Info("using in-memory ladder cache", zap.Duration("ttl", f.pricing.CacheTTL))
		return f.createInMemory(), nil

	case config.CacheBackendRedis:
		c, err := NewRedisRangeSetCache(ctx, RedisConfig{
			Addr:     f.redis.Addr(),
			Password: f.redis.Password,
			DB:       f.redis.DB,
		}, WithRedisTTL(f.pricing.CacheTTL), WithRedisLogger(f.logger))
		if err == nil {
			f.logger.Info("using Redis ladder cache", zap.String("addr", f.redis.Addr()))
			return c, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("redis ladder cache unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory ladder cache", zap.Error(err))
		return f.createInMemory(), nil

	default:
		return nil, fmt.Errorf("unknown cache backend %q", f.pricing.CacheBackend)
	}
}

func (f *Factory) createInMemory() *InMemoryRangeSetCache {
	return NewInMemoryRangeSetCache(
		WithDefaultTTL(f.pricing.CacheTTL),
		WithInMemoryLogger(f.logger),
	)
}
