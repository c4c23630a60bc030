package telemetry_test

import (
	"testing"
	"time"

	"github.com/cartly/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/codes"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

type tracedOrder struct {
	ID     uint `gorm:"primarykey"`
	Status string
}

func setupTracedDB(t *testing.T, cfg telemetry.DBTracingConfig) (*gorm.DB, *tracetest.SpanRecorder) {
	t.Helper()

	sr := tracetest.NewSpanRecorder()
	tp := sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(sr))
	prev := otel.GetTracerProvider()
	otel.SetTracerProvider(tp)
	t.Cleanup(func() { otel.SetTracerProvider(prev) })

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&tracedOrder{}))

	plugin := telemetry.NewDBTracingPlugin(cfg, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	return db, sr
}

func TestDefaultDBTracingConfig(t *testing.T) {
	cfg := telemetry.DefaultDBTracingConfig()

	assert.True(t, cfg.Enabled)
	assert.False(t, cfg.LogFullSQL)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThresh)
	assert.Equal(t, "postgresql", cfg.DBSystem)
}

func TestRegisterOtelGorm_Disabled(t *testing.T) {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)

	plugin := telemetry.NewDBTracingPlugin(telemetry.DBTracingConfig{Enabled: false}, zap.NewNop())
	require.NoError(t, plugin.RegisterOtelGorm(db))

	// Nothing was installed, queries run without spans.
	require.NoError(t, db.AutoMigrate(&tracedOrder{}))
}

func TestDBTracing_QueryProducesSpan(t *testing.T) {
	db, sr := setupTracedDB(t, telemetry.DefaultDBTracingConfig())

	require.NoError(t, db.Create(&tracedOrder{Status: "pending"}).Error)

	spans := sr.Ended()
	require.NotEmpty(t, spans)

	found := false
	for _, s := range spans {
		for _, attr := range s.Attributes() {
			if string(attr.Key) == "db.sql.table" && attr.Value.AsString() == "traced_orders" {
				found = true
			}
		}
	}
	assert.True(t, found, "expected span annotated with db.sql.table")
}

func TestDBTracing_RecordsRowsAffected(t *testing.T) {
	db, sr := setupTracedDB(t, telemetry.DefaultDBTracingConfig())

	require.NoError(t, db.Create(&tracedOrder{Status: "pending"}).Error)
	require.NoError(t, db.Model(&tracedOrder{}).Where("id = ?", 1).Update("status", "paid").Error)

	var updated bool
	for _, s := range sr.Ended() {
		for _, attr := range s.Attributes() {
			if string(attr.Key) == "db.rows_affected" && attr.Value.AsInt64() == 1 {
				updated = true
			}
		}
	}
	assert.True(t, updated)
}

func TestDBTracing_RecordNotFoundIsNotAnError(t *testing.T) {
	db, sr := setupTracedDB(t, telemetry.DefaultDBTracingConfig())

	var order tracedOrder
	err := db.First(&order, 999).Error
	require.ErrorIs(t, err, gorm.ErrRecordNotFound)

	for _, s := range sr.Ended() {
		assert.NotEqual(t, codes.Error, s.Status().Code, "span %s must not be marked as error", s.Name())
	}
}

func TestDBTracing_SlowQueryAnnotation(t *testing.T) {
	// Zero threshold marks every query as slow.
	db, sr := setupTracedDB(t, telemetry.DBTracingConfig{
		Enabled:         true,
		SlowQueryThresh: 0,
		DBSystem:        "sqlite",
	})

	require.NoError(t, db.Create(&tracedOrder{Status: "pending"}).Error)

	var slowAttr, slowEvent bool
	for _, s := range sr.Ended() {
		for _, attr := range s.Attributes() {
			if string(attr.Key) == "db.slow_query" && attr.Value.AsBool() {
				slowAttr = true
			}
		}
		for _, ev := range s.Events() {
			if ev.Name == "slow_query_warning" {
				slowEvent = true
			}
		}
	}
	assert.True(t, slowAttr, "expected db.slow_query attribute")
	assert.True(t, slowEvent, "expected slow_query_warning event")
}
