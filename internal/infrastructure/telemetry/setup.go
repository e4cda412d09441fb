package telemetry

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"
)

// Signals selects which pipelines Setup turns on besides traces.
// Nothing is exported unless Config.Enabled is also set.
type Signals struct {
	Metrics        bool
	Logs           bool
	MetricInterval time.Duration
}

// Providers holds the OTLP pipelines of one ladderctl run.
type Providers struct {
	Traces  *TracerProvider
	Metrics *MeterProvider
	Logs    *LoggerProvider
}

// Setup starts tracing plus whichever of metrics and logs signals asks for.
func Setup(ctx context.Context, cfg Config, signals Signals, logger *zap.Logger) (*Providers, error) {
	p := &Providers{}
	var err error

	if p.Traces, err = NewTracerProvider(ctx, cfg, logger); err != nil {
		return nil, fmt.Errorf("failed to initialize tracing: %w", err)
	}

	metricCfg := cfg
	metricCfg.Enabled = cfg.Enabled && signals.Metrics
	if p.Metrics, err = NewMeterProvider(ctx, metricCfg, signals.MetricInterval, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logCfg := cfg
	logCfg.Enabled = cfg.Enabled && signals.Logs
	if p.Logs, err = NewLoggerProvider(ctx, logCfg, logger); err != nil {
		_ = p.Shutdown(ctx)
		return nil, fmt.Errorf("failed to initialize log export: %w", err)
	}

	return p, nil
}

// Shutdown stops logs first so records about the shutdown itself still go out.
func (p *Providers) Shutdown(ctx context.Context) error {
	var errs []error
	if p.Logs != nil {
		errs = append(errs, p.Logs.Shutdown(ctx))
	}
	if p.Metrics != nil {
		errs = append(errs, p.Metrics.Shutdown(ctx))
	}
	if p.Traces != nil {
		errs = append(errs, p.Traces.Shutdown(ctx))
	}
	return errors.Join(errs...)
}
