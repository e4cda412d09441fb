package telemetry_test

import (
	"context"
	"testing"

	"github.com/erp/ladderprice/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest"
)

func TestNewLoggerProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	lp, err := telemetry.NewLoggerProvider(ctx, telemetry.Config{ServiceName: "ladder-price-test"}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, lp.Enabled())
	assert.NoError(t, lp.Shutdown(ctx))
}

func TestBridge_DisabledReturnsBase(t *testing.T) {
	base := zap.NewNop()

	assert.Same(t, base, telemetry.Bridge(base, nil, "ladder-price-test"))

	lp, err := telemetry.NewLoggerProvider(context.Background(), telemetry.Config{}, base)
	require.NoError(t, err)
	assert.Same(t, base, telemetry.Bridge(base, lp, "ladder-price-test"))
}

func TestSetup_Disabled(t *testing.T) {
	ctx := context.Background()

	p, err := telemetry.Setup(ctx, telemetry.Config{ServiceName: "ladder-price-test"},
		telemetry.Signals{Metrics: true, Logs: true}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, p.Traces.Enabled())
	assert.False(t, p.Metrics.Enabled(), "signals alone do not enable export")
	assert.False(t, p.Logs.Enabled())
	assert.NotNil(t, p.Metrics.Meter("test"))
	assert.NoError(t, p.Shutdown(ctx))
}

func TestProviders_ShutdownNil(t *testing.T) {
	assert.NoError(t, (&telemetry.Providers{}).Shutdown(context.Background()))
}
