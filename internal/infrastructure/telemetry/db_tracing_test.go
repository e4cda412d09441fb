package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type tracedRow struct {
	ID   uint   `gorm:"primaryKey"`
	Name string `gorm:"size:100"`
}

func setupTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedRow{}))
	return db
}

func setupRecorder(t *testing.T) (*sdktrace.TracerProvider, *tracetest.SpanRecorder) {
	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	return tp, sr
}

func attributesOf(span sdktrace.ReadOnlySpan) map[attribute.Key]attribute.Value {
	m := map[attribute.Key]attribute.Value{}
	for _, kv := range span.Attributes() {
		m[kv.Key] = kv.Value
	}
	return m
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := DefaultDBTracingConfig()

	assert.False(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestNewDBTracingPlugin_FillsDefaults(t *testing.T) {
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())

	assert.Equal(t, 200*time.Millisecond, p.config.SlowQueryThresh)
	assert.Equal(t, "postgresql", p.config.DBSystem)
}

func TestDBTracingPlugin_Register_Disabled(t *testing.T) {
	db := setupTestDB(t)

	err := NewDBTracingPlugin(DefaultDBTracingConfig(), zap.NewNop()).Register(db)

	require.NoError(t, err)
	assert.Nil(t, db.Callback().Query().Get("otel_slow_query:query"))
}

func TestDBTracingPlugin_Register_Enabled(t *testing.T) {
	db := setupTestDB(t)
	cfg := DefaultDBTracingConfig()
	cfg.Enabled = true
	cfg.DBSystem = "sqlite"

	require.NoError(t, NewDBTracingPlugin(cfg, zap.NewNop()).Register(db))

	assert.NotNil(t, db.Callback().Query().Get("otel_slow_query:query"))
	assert.NotNil(t, db.Callback().Create().Get("otel_timing:before_create"))
}

func TestDBTracingPlugin_AfterQuery_AnnotatesSpan(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true, SlowQueryThresh: time.Nanosecond}, zap.NewNop())
	require.NoError(t, p.registerCallbacks(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "repository.save")
	require.NoError(t, db.WithContext(ctx).Create(&tracedRow{Name: "row"}).Error)
	span.End()

	ended := sr.Ended()
	require.Len(t, ended, 1)
	attrs := attributesOf(ended[0])
	assert.Equal(t, int64(1), attrs["db.rows_affected"].AsInt64())
	assert.Equal(t, "traced_rows", attrs["db.sql.table"].AsString())
	assert.True(t, attrs["db.slow_query"].AsBool())
}

func TestDBTracingPlugin_AfterQuery_MarksErrors(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, p.registerCallbacks(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "repository.load")
	err := db.WithContext(ctx).Table("missing_table").Find(&[]tracedRow{}).Error
	require.Error(t, err)
	span.End()

	assert.Equal(t, codes.Error, sr.Ended()[0].Status().Code)
}

func TestDBTracingPlugin_RecordNotFoundIsNotAnError(t *testing.T) {
	db := setupTestDB(t)
	tp, sr := setupRecorder(t)
	p := NewDBTracingPlugin(DBTracingConfig{Enabled: true}, zap.NewNop())
	require.NoError(t, p.registerCallbacks(db))

	ctx, span := tp.Tracer("test").Start(context.Background(), "repository.load")
	var row tracedRow
	err := db.WithContext(ctx).First(&row, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)
	span.End()

	assert.NotEqual(t, codes.Error, sr.Ended()[0].Status().Code)
}

func TestWithQueryStartTime(t *testing.T) {
	ctx := WithQueryStartTime(context.Background())

	start, ok := ctx.Value(queryStartTimeKey).(time.Time)
	require.True(t, ok)
	assert.WithinDuration(t, time.Now(), start, time.Second)
}
