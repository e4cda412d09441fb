package telemetry

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// DefaultMetricInterval is the push interval when none is configured.
// ladderctl runs are short, so most points leave on Shutdown rather than on a tick.
const DefaultMetricInterval = 15 * time.Second

// MeterProvider pushes ladder metrics to the collector over OTLP gRPC.
// The zero value (export disabled) hands out no-op meters.
type MeterProvider struct {
	provider *sdkmetric.MeterProvider
}

// NewMeterProvider starts metric export when cfg.Enabled is set.
// interval <= 0 uses DefaultMetricInterval.
func NewMeterProvider(ctx context.Context, cfg Config, interval time.Duration, logger *zap.Logger) (*MeterProvider, error) {
	mp := &MeterProvider{}
	if !cfg.Enabled {
		return mp, nil
	}
	if interval <= 0 {
		interval = DefaultMetricInterval
	}

	opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(cfg.CollectorEndpoint)}
	if cfg.Insecure {
		opts = append(opts, otlpmetricgrpc.WithInsecure())
	}
	exporter, err := otlpmetricgrpc.New(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create OTLP metrics exporter: %w", err)
	}

	res, err := newResource(cfg.ServiceName)
	if err != nil {
		return nil, err
	}

	mp.provider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(interval))),
	)
	otel.SetMeterProvider(mp.provider)

	logger.Debug("metric export enabled",
		zap.String("collector_endpoint", cfg.CollectorEndpoint),
		zap.Duration("interval", interval),
	)
	return mp, nil
}

// Enabled reports whether metrics leave the process.
func (mp *MeterProvider) Enabled() bool {
	return mp != nil && mp.provider != nil
}

// Meter returns a named meter, or a no-op meter when export is disabled.
func (mp *MeterProvider) Meter(name string) metric.Meter {
	if !mp.Enabled() {
		return noop.NewMeterProvider().Meter(name)
	}
	return mp.provider.Meter(name)
}

// Shutdown pushes the last collection and stops the exporter.
func (mp *MeterProvider) Shutdown(ctx context.Context) error {
	if !mp.Enabled() {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, shutdownTimeout)
	defer cancel()

	if err := mp.provider.Shutdown(ctx); err != nil {
		return fmt.Errorf("failed to shutdown meter provider: %w", err)
	}
	return nil
}

// Metric attribute keys.
var (
	AttrTenantID = attribute.Key("tenant_id")
	AttrOutcome  = attribute.Key("outcome")
	AttrKind     = attribute.Key("kind")
	AttrBackend  = attribute.Key("cache.backend")
	AttrResult   = attribute.Key("cache.result")
)

// SmallDurationBuckets are bucket boundaries for fast in-process operations (seconds).
var SmallDurationBuckets = []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1}
