package telemetry

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	"go.uber.org/zap"
)

// ImportOutcome labels a vendor text import.
type ImportOutcome string

const (
	ImportAccepted ImportOutcome = "accepted"
	ImportRejected ImportOutcome = "rejected"
	ImportEmpty    ImportOutcome = "empty"
)

// QuoteOutcome labels a quote request.
type QuoteOutcome string

const (
	QuotePriced   QuoteOutcome = "priced"
	QuoteNotFound QuoteOutcome = "not_found"
	QuoteNoLadder QuoteOutcome = "no_ladder"
	QuoteFailed   QuoteOutcome = "failed"
)

// CacheResult labels a cache lookup.
type CacheResult string

const (
	CacheHit   CacheResult = "hit"
	CacheMiss  CacheResult = "miss"
	CacheError CacheResult = "error"
)

// PricingMetrics records ladder pricing activity.
type PricingMetrics struct {
	logger *zap.Logger

	vendorImportTotal       metric.Int64Counter
	vendorRepairsTotal      metric.Int64Counter
	vendorDroppedTotal      metric.Int64Counter
	quoteTotal              metric.Int64Counter
	validationRejectedTotal metric.Int64Counter
	cacheLookupsTotal       metric.Int64Counter
	quoteDuration           metric.Float64Histogram
}

// PricingMetricsConfig holds configuration for pricing metrics.
type PricingMetricsConfig struct {
	Meter  metric.Meter
	Logger *zap.Logger
}

// NewPricingMetrics creates the pricing instruments on cfg.Meter.
func NewPricingMetrics(cfg PricingMetricsConfig) (*PricingMetrics, error) {
	if cfg.Meter == nil {
		return nil, ErrMeterNil
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	pm := &PricingMetrics{logger: logger}

	counters := []struct {
		dst         *metric.Int64Counter
		name        string
		description string
		unit        string
	}{
		{&pm.vendorImportTotal, "ladder_vendor_import_total", "Vendor ladder text imports by outcome", "{imports}"},
		{&pm.vendorRepairsTotal, "ladder_vendor_repairs_total", "Upper bounds changed by gap repair during vendor imports", "{repairs}"},
		{&pm.vendorDroppedTotal, "ladder_vendor_dropped_segments_total", "Vendor text segments the parser could not use", "{segments}"},
		{&pm.quoteTotal, "ladder_quote_total", "Quote requests by outcome", "{quotes}"},
		{&pm.validationRejectedTotal, "ladder_validation_rejected_total", "Candidate ladders rejected by validation, by kind", "{ladders}"},
		{&pm.cacheLookupsTotal, "ladder_cache_lookups_total", "Range set cache lookups by backend and result", "{lookups}"},
	}
	for _, c := range counters {
		counter, err := cfg.Meter.Int64Counter(c.name,
			metric.WithDescription(c.description),
			metric.WithUnit(c.unit),
		)
		if err != nil {
			return nil, fmt.Errorf("failed to create counter %s: %w", c.name, err)
		}
		*c.dst = counter
	}

	var err error
	pm.quoteDuration, err = cfg.Meter.Float64Histogram("ladder_quote_duration_seconds",
		metric.WithDescription("Time to load a ladder and resolve a quote"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(SmallDurationBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create histogram ladder_quote_duration_seconds: %w", err)
	}

	return pm, nil
}

// NewNoopPricingMetrics returns metrics backed by a no-op meter
func NewNoopPricingMetrics() *PricingMetrics {
	pm, err := NewPricingMetrics(PricingMetricsConfig{Meter: noop.NewMeterProvider().Meter(TracerName)})
	if err != nil {
		// the no-op meter never fails to create instruments
		panic(err)
	}
	return pm
}

// RecordVendorImport records one vendor text import along with how many segments
// were repaired or dropped.
func (pm *PricingMetrics) RecordVendorImport(ctx context.Context, tenantID uuid.UUID, outcome ImportOutcome, repairs, dropped int) {
	tenant := metric.WithAttributes(AttrTenantID.String(tenantID.String()))
	pm.vendorImportTotal.Add(ctx, 1, tenant, metric.WithAttributes(AttrOutcome.String(string(outcome))))
	if repairs > 0 {
		pm.vendorRepairsTotal.Add(ctx, int64(repairs), tenant)
	}
	if dropped > 0 {
		pm.vendorDroppedTotal.Add(ctx, int64(dropped), tenant)
	}
}

// RecordValidationRejected records a ladder rejected by validation.
func (pm *PricingMetrics) RecordValidationRejected(ctx context.Context, tenantID uuid.UUID, kind string) {
	pm.validationRejectedTotal.Add(ctx, 1, metric.WithAttributes(
		AttrTenantID.String(tenantID.String()),
		AttrKind.String(kind),
	))
}

// RecordQuote records a quote request and how long it took.
func (pm *PricingMetrics) RecordQuote(ctx context.Context, tenantID uuid.UUID, outcome QuoteOutcome, elapsed time.Duration) {
	result := AttrOutcome.String(string(outcome))
	pm.quoteTotal.Add(ctx, 1, metric.WithAttributes(AttrTenantID.String(tenantID.String()), result))
	pm.quoteDuration.Record(ctx, elapsed.Seconds(), metric.WithAttributes(result))
}

// RecordCacheLookup records a range set cache lookup.
func (pm *PricingMetrics) RecordCacheLookup(ctx context.Context, backend string, result CacheResult) {
	pm.cacheLookupsTotal.Add(ctx, 1, metric.WithAttributes(
		AttrBackend.String(backend),
		AttrResult.String(string(result)),
	))
}

// MetricsError is returned when metrics cannot be set up.
type MetricsError struct {
	Op  string
	Err string
}

func (e *MetricsError) Error() string {
	return e.Op + ": " + e.Err
}

// ErrMeterNil is returned when meter is nil.
var ErrMeterNil = &MetricsError{Op: "NewPricingMetrics", Err: "meter cannot be nil"}
