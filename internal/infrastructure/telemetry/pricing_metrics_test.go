package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/erp/ladderprice/internal/infrastructure/telemetry"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func newRecordingMetrics(t *testing.T) (*telemetry.PricingMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	t.Cleanup(func() { _ = provider.Shutdown(context.Background()) })

	pm, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
		Meter:  provider.Meter("test"),
		Logger: zap.NewNop(),
	})
	require.NoError(t, err)
	return pm, reader
}

// counterTotal sums every data point of the named int64 counter whose attributes
// include want.
func counterTotal(t *testing.T, reader *sdkmetric.ManualReader, name string, want ...attribute.KeyValue) int64 {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))

	var total int64
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != name {
				continue
			}
			sum, ok := m.Data.(metricdata.Sum[int64])
			require.True(t, ok, "%s is not an int64 sum", name)
			for _, dp := range sum.DataPoints {
				if hasAttributes(dp.Attributes, want) {
					total += dp.Value
				}
			}
		}
	}
	return total
}

func hasAttributes(set attribute.Set, want []attribute.KeyValue) bool {
	for _, kv := range want {
		v, ok := set.Value(kv.Key)
		if !ok || v != kv.Value {
			return false
		}
	}
	return true
}

func TestNewPricingMetrics_NilMeter(t *testing.T) {
	pm, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{})

	require.Error(t, err)
	assert.Nil(t, pm)
	assert.Equal(t, "NewPricingMetrics: meter cannot be nil", err.Error())
}

func TestNewNoopPricingMetrics(t *testing.T) {
	pm := telemetry.NewNoopPricingMetrics()

	assert.NotPanics(t, func() {
		ctx := context.Background()
		pm.RecordVendorImport(ctx, uuid.New(), telemetry.ImportAccepted, 1, 1)
		pm.RecordQuote(ctx, uuid.New(), telemetry.QuotePriced, time.Millisecond)
		pm.RecordValidationRejected(ctx, uuid.New(), "GAP_DETECTED")
		pm.RecordCacheLookup(ctx, "memory", telemetry.CacheHit)
	})
}

func TestPricingMetrics_RecordVendorImport(t *testing.T) {
	pm, reader := newRecordingMetrics(t)
	ctx := context.Background()
	tenantID := uuid.New()

	pm.RecordVendorImport(ctx, tenantID, telemetry.ImportAccepted, 2, 0)
	pm.RecordVendorImport(ctx, tenantID, telemetry.ImportAccepted, 0, 1)
	pm.RecordVendorImport(ctx, tenantID, telemetry.ImportRejected, 0, 0)

	assert.Equal(t, int64(2), counterTotal(t, reader, "ladder_vendor_import_total",
		telemetry.AttrOutcome.String("accepted")))
	assert.Equal(t, int64(1), counterTotal(t, reader, "ladder_vendor_import_total",
		telemetry.AttrOutcome.String("rejected")))
	assert.Equal(t, int64(2), counterTotal(t, reader, "ladder_vendor_repairs_total"))
	assert.Equal(t, int64(1), counterTotal(t, reader, "ladder_vendor_dropped_segments_total",
		telemetry.AttrTenantID.String(tenantID.String())))
}

func TestPricingMetrics_RecordQuote(t *testing.T) {
	pm, reader := newRecordingMetrics(t)
	ctx := context.Background()

	pm.RecordQuote(ctx, uuid.New(), telemetry.QuotePriced, 2*time.Millisecond)
	pm.RecordQuote(ctx, uuid.New(), telemetry.QuoteNotFound, time.Millisecond)

	assert.Equal(t, int64(1), counterTotal(t, reader, "ladder_quote_total", telemetry.AttrOutcome.String("priced")))
	assert.Equal(t, int64(1), counterTotal(t, reader, "ladder_quote_total", telemetry.AttrOutcome.String("not_found")))
}

func TestPricingMetrics_ValidationAndCache(t *testing.T) {
	pm, reader := newRecordingMetrics(t)
	ctx := context.Background()

	pm.RecordValidationRejected(ctx, uuid.New(), "GAP_DETECTED")
	pm.RecordCacheLookup(ctx, "redis", telemetry.CacheMiss)
	pm.RecordCacheLookup(ctx, "redis", telemetry.CacheHit)
	pm.RecordCacheLookup(ctx, "redis", telemetry.CacheHit)

	assert.Equal(t, int64(1), counterTotal(t, reader, "ladder_validation_rejected_total",
		telemetry.AttrKind.String("GAP_DETECTED")))
	assert.Equal(t, int64(2), counterTotal(t, reader, "ladder_cache_lookups_total",
		telemetry.AttrBackend.String("redis"), telemetry.AttrResult.String("hit")))
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.Config{ServiceName: "ladder-price-test"}, time.Minute, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.Enabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.Shutdown(ctx))

	pm, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{Meter: mp.Meter("test")})
	require.NoError(t, err)
	assert.NotPanics(t, func() { pm.RecordQuote(ctx, uuid.New(), telemetry.QuotePriced, time.Millisecond) })
}
