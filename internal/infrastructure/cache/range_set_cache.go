// Package cache keeps validated ladders close to the pricing path.
//
// Caches store whole RangeSets keyed by (tenant, product). They hold only what
// the repository returned, so a cached set is always a validated one.
package cache

import (
	"context"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
)

// Backend names reported in cache metrics
const (
	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// RangeSetCache stores product ladders
type RangeSetCache interface {
	// Get returns the cached ladder. found is false on a miss.
	Get(ctx context.Context, tenantID, productID uuid.UUID) (rs pricing.RangeSet, found bool, err error)
	// Set caches rs. A zero ttl uses the cache's default.
	Set(ctx context.Context, tenantID, productID uuid.UUID, rs pricing.RangeSet, ttl time.Duration) error
	// Delete evicts the product's ladder.
	Delete(ctx context.Context, tenantID, productID uuid.UUID) error
	// Backend names the storage for metrics and logs.
	Backend() string
	// Close releases any resources held by the cache.
	Close() error
}

// ladderKey generates the tenant-scoped key for a product's ladder
func ladderKey(tenantID, productID uuid.UUID) string {
	return tenantID.String() + ":" + productID.String()
}
