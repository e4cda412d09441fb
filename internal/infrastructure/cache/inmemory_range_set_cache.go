package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// Constants for in-memory cache configuration
const (
	defaultCleanupInterval = 30 * time.Second
	defaultTTL             = 10 * time.Minute
)

// InMemoryRangeSetCache implements RangeSetCache using process memory.
// It does not share state across instances.
type InMemoryRangeSetCache struct {
	entries         sync.Map // map[string]*cacheEntry
	defaultTTL      time.Duration
	cleanupInterval time.Duration
	logger          *zap.Logger
	now             func() time.Time
	stopCh          chan struct{}
	stopped         int32

	hits   int64
	misses int64
}

// cacheEntry wraps a cached ladder with expiration time
type cacheEntry struct {
	value     pricing.RangeSet
	expiresAt time.Time
}

func (e *cacheEntry) isExpired(now time.Time) bool {
	return now.After(e.expiresAt)
}

// InMemoryOption is a functional option for configuring the cache
type InMemoryOption func(*InMemoryRangeSetCache)

// WithDefaultTTL sets the TTL used when Set is called with zero
func WithDefaultTTL(ttl time.Duration) InMemoryOption {
	return func(c *InMemoryRangeSetCache) {
		if ttl > 0 {
			c.defaultTTL = ttl
		}
	}
}

// WithCleanupInterval sets how often expired entries are swept
func WithCleanupInterval(d time.Duration) InMemoryOption {
	return func(c *InMemoryRangeSetCache) {
		if d > 0 {
			c.cleanupInterval = d
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryOption {
	return func(c *InMemoryRangeSetCache) {
		c.logger = logger
	}
}

// withClock overrides time.Now in tests
func withClock(now func() time.Time) InMemoryOption {
	return func(c *InMemoryRangeSetCache) {
		c.now = now
	}
}

// NewInMemoryRangeSetCache creates a new in-memory ladder cache and starts its sweeper
func NewInMemoryRangeSetCache(opts ...InMemoryOption) *InMemoryRangeSetCache {
	c := &InMemoryRangeSetCache{
		defaultTTL:      defaultTTL,
		cleanupInterval: defaultCleanupInterval,
		logger:          zap.NewNop(),
		now:             time.Now,
		stopCh:          make(chan struct{}),
	}

	for _, opt := range opts {
		opt(c)
	}

	go c.cleanupExpired()

	return c
}

// Get retrieves a ladder from cache
func (c *InMemoryRangeSetCache) Get(ctx context.Context, tenantID, productID uuid.UUID) (pricing.RangeSet, bool, error) {
	key := ladderKey(tenantID, productID)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired(c.now()) {
			atomic.AddInt64(&c.hits, 1)
			return entry.value.Clone(), true, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, false, nil
}

// Set stores a copy of rs
func (c *InMemoryRangeSetCache) Set(ctx context.Context, tenantID, productID uuid.UUID, rs pricing.RangeSet, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = c.defaultTTL
	}
	value := rs.Clone()
	if value == nil {
		value = pricing.RangeSet{}
	}

	c.entries.Store(ladderKey(tenantID, productID), &cacheEntry{
		value:     value,
		expiresAt: c.now().Add(ttl),
	})
	return nil
}

// Delete removes a ladder from cache
func (c *InMemoryRangeSetCache) Delete(ctx context.Context, tenantID, productID uuid.UUID) error {
	c.entries.Delete(ladderKey(tenantID, productID))
	return nil
}

// Backend implements RangeSetCache
func (c *InMemoryRangeSetCache) Backend() string {
	return BackendMemory
}

// Close stops the sweeper
func (c *InMemoryRangeSetCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// GetStats returns cache statistics
func (c *InMemoryRangeSetCache) GetStats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Count returns the number of entries, expired ones included until swept
func (c *InMemoryRangeSetCache) Count() int {
	n := 0
	c.entries.Range(func(_, _ any) bool {
		n++
		return true
	})
	return n
}

// cleanupExpired periodically removes expired entries from the cache
func (c *InMemoryRangeSetCache) cleanupExpired() {
	ticker := time.NewTicker(c.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			func() {
				defer func() {
					if r := recover(); r != nil {
						c.logger.Error("Panic in ladder cache cleanup", zap.Any("panic", r))
					}
				}()
				c.doCleanup()
			}()
		}
	}
}

func (c *InMemoryRangeSetCache) doCleanup() {
	now := c.now()
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired(now) {
			c.entries.Delete(key)
			removed++
		}
		return true
	})

	if removed > 0 {
		c.logger.Debug("Cleaned up expired ladder cache entries", zap.Int("removed", removed))
	}
}

var _ RangeSetCache = (*InMemoryRangeSetCache)(nil)
