package cache

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testLadder() pricing.RangeSet {
	return pricing.RangeSet{
		pricing.NewPriceRange(1, 9, decimal.RequireFromString("5.00")),
		pricing.NewUnboundedPriceRange(10, decimal.RequireFromString("4.00")),
	}
}

// fakeClock is a manually advanced time source
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func TestInMemoryRangeSetCache_GetSet(t *testing.T) {
	cache := NewInMemoryRangeSetCache()
	defer cache.Close()

	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()

	// Test cache miss
	rs, found, err := cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.False(t, found)
	assert.Nil(t, rs)

	err = cache.Set(ctx, tenantID, productID, testLadder(), 5*time.Second)
	require.NoError(t, err)

	// Test cache hit
	rs, found, err = cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	require.True(t, found)
	assert.True(t, testLadder().Equal(rs))

	// Another tenant does not see it
	_, found, err = cache.Get(ctx, uuid.New(), productID)
	require.NoError(t, err)
	assert.False(t, found)

	hits, misses := cache.GetStats()
	assert.Equal(t, int64(1), hits)
	assert.Equal(t, int64(2), misses)
}

func TestInMemoryRangeSetCache_EmptyLadderIsAHit(t *testing.T) {
	cache := NewInMemoryRangeSetCache()
	defer cache.Close()

	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()

	require.NoError(t, cache.Set(ctx, tenantID, productID, nil, 0))

	rs, found, err := cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.True(t, found)
	assert.NotNil(t, rs)
	assert.True(t, rs.IsEmpty())
}

func TestInMemoryRangeSetCache_CopiesValues(t *testing.T) {
	cache := NewInMemoryRangeSetCache()
	defer cache.Close()

	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()

	ladder := testLadder()
	require.NoError(t, cache.Set(ctx, tenantID, productID, ladder, time.Minute))
	*ladder[0].MaxQuantity = 500

	got, _, err := cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), *got[0].MaxQuantity)

	*got[0].MaxQuantity = 700
	again, _, err := cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.Equal(t, int64(9), *again[0].MaxQuantity)
}

func TestInMemoryRangeSetCache_Expiry(t *testing.T) {
	clock := &fakeClock{now: time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)}
	cache := NewInMemoryRangeSetCache(withClock(clock.Now), WithDefaultTTL(time.Minute))
	defer cache.Close()

	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()

	require.NoError(t, cache.Set(ctx, tenantID, productID, testLadder(), 0))

	clock.Advance(59 * time.Second)
	_, found, _ := cache.Get(ctx, tenantID, productID)
	assert.True(t, found)

	clock.Advance(2 * time.Second)
	_, found, _ = cache.Get(ctx, tenantID, productID)
	assert.False(t, found)
	assert.Equal(t, 0, cache.Count())
}

func TestInMemoryRangeSetCache_Cleanup(t *testing.T) {
	clock := &fakeClock{now: time.Now()}
	cache := NewInMemoryRangeSetCache(withClock(clock.Now))
	defer cache.Close()

	ctx := context.Background()
	require.NoError(t, cache.Set(ctx, uuid.New(), uuid.New(), testLadder(), time.Second))
	require.NoError(t, cache.Set(ctx, uuid.New(), uuid.New(), testLadder(), time.Hour))

	clock.Advance(time.Minute)
	cache.doCleanup()

	assert.Equal(t, 1, cache.Count())
}

func TestInMemoryRangeSetCache_Delete(t *testing.T) {
	cache := NewInMemoryRangeSetCache()
	defer cache.Close()

	ctx := context.Background()
	tenantID, productID := uuid.New(), uuid.New()

	require.NoError(t, cache.Set(ctx, tenantID, productID, testLadder(), time.Minute))
	require.NoError(t, cache.Delete(ctx, tenantID, productID))

	_, found, err := cache.Get(ctx, tenantID, productID)
	require.NoError(t, err)
	assert.False(t, found)

	// Deleting a missing key is not an error
	assert.NoError(t, cache.Delete(ctx, tenantID, productID))
}

func TestInMemoryRangeSetCache_Close(t *testing.T) {
	cache := NewInMemoryRangeSetCache(WithCleanupInterval(time.Millisecond))
	assert.Equal(t, BackendMemory, cache.Backend())
	assert.NoError(t, cache.Close())
	assert.NoError(t, cache.Close())
}

func TestInMemoryRangeSetCache_Concurrent(t *testing.T) {
	cache := NewInMemoryRangeSetCache()
	defer cache.Close()

	ctx := context.Background()
	tenantID := uuid.New()
	products := make([]uuid.UUID, 8)
	for i := range products {
		products[i] = uuid.New()
	}

	var wg sync.WaitGroup
	for i := 0; i < 32; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			p := products[i%len(products)]
			_ = cache.Set(ctx, tenantID, p, testLadder(), time.Minute)
			rs, found, err := cache.Get(ctx, tenantID, p)
			assert.NoError(t, err)
			if found {
				assert.Len(t, rs, 2)
			}
			if i%5 == 0 {
				_ = cache.Delete(ctx, tenantID, p)
			}
		}(i)
	}
	wg.Wait()
}
