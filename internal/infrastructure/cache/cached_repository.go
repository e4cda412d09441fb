package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// CachedRangeRepository is a read-through cache in front of a pricing.Repository.
// ReplaceRanges writes to the inner repository first and then evicts the cached ladder.
//
// A load that overlaps a replace in the same process never leaves its result in the
// cache: every replace bumps a per-product generation, and a loader whose generation
// changed while it read the repository skips or undoes its cache write. Replaces made
// by another process are only seen through their eviction.
type CachedRangeRepository struct {
	next    pricing.Repository
	cache   RangeSetCache
	ttl     time.Duration
	metrics *telemetry.PricingMetrics
	logger  *zap.Logger

	mu          sync.Mutex
	generations map[string]uint64
}

// NewCachedRangeRepository wraps next with cache. A nil metrics uses no-op instruments.
func NewCachedRangeRepository(next pricing.Repository, cache RangeSetCache, ttl time.Duration, metrics *telemetry.PricingMetrics, logger *zap.Logger) *CachedRangeRepository {
	if metrics == nil {
		metrics = telemetry.NewNoopPricingMetrics()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &CachedRangeRepository{
		next:    next,
		cache:   cache,
		ttl:     ttl,
		metrics: metrics,
		logger:  logger.Named("ladder.cache"),

		generations: make(map[string]uint64),
	}
}

func (r *CachedRangeRepository) generation(key string) uint64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.generations[key]
}

func (r *CachedRangeRepository) bump(key string) {
	r.mu.Lock()
	r.generations[key]++
	r.mu.Unlock()
}

var _ pricing.Repository = (*CachedRangeRepository)(nil)

// LoadRanges serves from cache when possible. Cache failures fall through to the repository.
func (r *CachedRangeRepository) LoadRanges(ctx context.Context, tenantID, productID uuid.UUID) (pricing.RangeSet, error) {
	backend := r.cache.Backend()

	rs, found, err := r.cache.Get(ctx, tenantID, productID)
	switch {
	case err != nil:
		r.metrics.RecordCacheLookup(ctx, backend, telemetry.CacheError)
		r.logger.Warn("ladder cache read failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err))
	case found:
		r.metrics.RecordCacheLookup(ctx, backend, telemetry.CacheHit)
		return rs, nil
	default:
		r.metrics.RecordCacheLookup(ctx, backend, telemetry.CacheMiss)
	}

	key := ladderKey(tenantID, productID)
	gen := r.generation(key)

	rs, err = r.next.LoadRanges(ctx, tenantID, productID)
	if err != nil {
		return nil, err
	}

	if r.generation(key) != gen {
		r.logger.Debug("ladder replaced during load, not caching", zap.String("key", key))
		return rs, nil
	}
	if err := r.cache.Set(ctx, tenantID, productID, rs, r.ttl); err != nil {
		r.logger.Warn("ladder cache write failed",
			zap.String("tenant_id", tenantID.String()),
			zap.String("product_id", productID.String()),
			zap.Error(err))
		return rs, nil
	}
	// a replace may have evicted between the check and the write
	if r.generation(key) != gen {
		if err := r.cache.Delete(ctx, tenantID, productID); err != nil {
			r.logger.Warn("failed to undo stale ladder cache write", zap.String("key", key), zap.Error(err))
		}
	}
	return rs, nil
}

// ReplaceRanges stores rs and evicts the product's cached ladder.
func (r *CachedRangeRepository) ReplaceRanges(ctx context.Context, tenantID, productID uuid.UUID, rs pricing.RangeSet) error {
	if err := r.next.ReplaceRanges(ctx, tenantID, productID, rs); err != nil {
		return err
	}
	r.bump(ladderKey(tenantID, productID))

	if err := r.cache.Delete(ctx, tenantID, productID); err != nil {
		return fmt.Errorf("ladder saved but cache eviction failed: %w", err)
	}
	return nil
}
