package main

import (
	"context"
	"errors"
	"fmt"

	pricingapp "github.com/erp/ladderprice/internal/application/pricing"
	"github.com/erp/ladderprice/internal/domain/pricing"
	"github.com/erp/ladderprice/internal/domain/shared/valueobject"
	"github.com/erp/ladderprice/internal/infrastructure/cache"
	"github.com/erp/ladderprice/internal/infrastructure/config"
	"github.com/erp/ladderprice/internal/infrastructure/logger"
	"github.com/erp/ladderprice/internal/infrastructure/persistence"
	"github.com/erp/ladderprice/internal/infrastructure/telemetry"
	"github.com/erp/ladderprice/internal/infrastructure/vendortext"
	"go.uber.org/zap"
)

// app holds everything a command needs plus the teardown for it
type app struct {
	cfg     *config.Config
	log     *zap.Logger
	service *pricingapp.LadderService
	closers []func(context.Context) error
}

func (a *app) onClose(fn func(context.Context) error) {
	a.closers = append(a.closers, fn)
}

// Close releases resources in reverse order of acquisition
func (a *app) Close(ctx context.Context) error {
	var errs []error
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// newApp wires logging, telemetry and the ladder service. The database and
// cache are only opened when withStore is set.
func newApp(ctx context.Context, configPath string, withStore bool) (*app, error) {
	cfg, err := config.LoadFrom(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	base, err := logger.New(logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	a := &app{cfg: cfg, log: base}
	a.onClose(func(context.Context) error { return logger.Sync(base) })

	tc := cfg.Telemetry
	providers, err := telemetry.Setup(ctx, telemetry.Config{
		Enabled:           tc.Enabled,
		CollectorEndpoint: tc.CollectorEndpoint,
		SamplingRatio:     tc.SamplingRatio,
		ServiceName:       tc.ServiceName,
		Insecure:          tc.Insecure,
	}, telemetry.Signals{Metrics: tc.MetricsEnabled, Logs: tc.LogsEnabled}, a.log)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}
	a.onClose(providers.Shutdown)
	a.log = telemetry.Bridge(a.log, providers.Logs, tc.ServiceName)

	metrics, err := telemetry.NewPricingMetrics(telemetry.PricingMetricsConfig{
		Meter:  providers.Metrics.Meter(telemetry.TracerName),
		Logger: a.log,
	})
	if err != nil {
		_ = a.Close(ctx)
		return nil, fmt.Errorf("failed to create pricing metrics: %w", err)
	}

	var repo pricing.Repository
	if withStore {
		repo, err = a.openStore(ctx, metrics)
		if err != nil {
			_ = a.Close(ctx)
			return nil, err
		}
	}

	currency, err := valueobject.ParseCurrency(cfg.Pricing.Currency)
	if err != nil {
		_ = a.Close(ctx)
		return nil, err
	}

	a.service = pricingapp.NewLadderService(
		repo,
		vendortext.NewParser(vendortext.WithPriceScale(cfg.Pricing.VendorPriceScale)),
		metrics,
		pricingapp.Config{Currency: currency, CurrencySymbol: cfg.Pricing.CurrencySymbol},
	)
	return a, nil
}

func (a *app) openStore(ctx context.Context, metrics *telemetry.PricingMetrics) (pricing.Repository, error) {
	cfg := a.cfg

	tracing := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{
		Enabled:         cfg.Telemetry.Enabled && cfg.Telemetry.DBTraceEnabled,
		LogFullSQL:      cfg.Telemetry.DBLogFullSQL,
		SlowQueryThresh: cfg.Telemetry.DBSlowQueryThresh,
	}, a.log)

	db, err := persistence.NewDatabase(&cfg.Database,
		persistence.WithLogger(a.log, logger.MapGormLogLevel(cfg.Database.LogLevel),
			logger.WithSlowThreshold(cfg.Telemetry.DBSlowQueryThresh)),
		persistence.WithTracing(tracing),
	)
	if err != nil {
		return nil, err
	}
	a.onClose(func(context.Context) error { return db.Close() })

	var repo pricing.Repository = persistence.NewGormPriceRangeRepository(db.DB)

	rangeCache, err := cache.NewFactory(cfg.Pricing, cfg.Redis, cache.WithLogger(a.log)).Create(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create ladder cache: %w", err)
	}
	if rangeCache != nil {
		a.onClose(func(context.Context) error { return rangeCache.Close() })
		repo = cache.NewCachedRangeRepository(repo, rangeCache, cfg.Pricing.CacheTTL, metrics, a.log)
	}

	return repo, nil
}
