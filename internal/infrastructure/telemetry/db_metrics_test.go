package telemetry_test

import (
	"context"
	"testing"
	"time"

	"github.com/cartly/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func newDBMetrics(t *testing.T, cfg telemetry.DBMetricsConfig) (*telemetry.DBMetrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	m, err := telemetry.NewDBMetrics(meter, cfg, zap.NewNop())
	require.NoError(t, err)
	t.Cleanup(m.Stop)
	return m, reader
}

func metricByName(t *testing.T, reader *sdkmetric.ManualReader, name string) (metricdata.Metrics, bool) {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	for _, scope := range rm.ScopeMetrics {
		for _, m := range scope.Metrics {
			if m.Name == name {
				return m, true
			}
		}
	}
	return metricdata.Metrics{}, false
}

func TestDefaultDBMetricsConfig(t *testing.T) {
	cfg := telemetry.DefaultDBMetricsConfig()

	assert.True(t, cfg.Enabled)
	assert.Equal(t, 200*time.Millisecond, cfg.SlowQueryThreshold)
	assert.Equal(t, 15*time.Second, cfg.PoolStatsInterval)
}

func TestDBMetrics_RecordQuery(t *testing.T) {
	m, reader := newDBMetrics(t, telemetry.DefaultDBMetricsConfig())
	ctx := context.Background()

	m.RecordQuery(ctx, "select", "products", 10*time.Millisecond, nil)
	m.RecordQuery(ctx, "INSERT", "orders", 5*time.Millisecond, nil)
	m.RecordQuery(ctx, "", "carts", time.Millisecond, nil)

	total, ok := metricByName(t, reader, "db_query_total")
	require.True(t, ok)
	sum := total.Data.(metricdata.Sum[int64])

	// Operation is uppercased and empty falls back to UNKNOWN.
	ops := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value("db.operation")
		ops[op.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), ops["SELECT"])
	assert.Equal(t, int64(1), ops["INSERT"])
	assert.Equal(t, int64(1), ops["UNKNOWN"])
}

func TestDBMetrics_SlowQueryCounter(t *testing.T) {
	m, reader := newDBMetrics(t, telemetry.DBMetricsConfig{
		Enabled:            true,
		SlowQueryThreshold: 50 * time.Millisecond,
	})
	ctx := context.Background()

	m.RecordQuery(ctx, "SELECT", "products", 10*time.Millisecond, nil)
	_, found := metricByName(t, reader, "db_slow_query_total")
	assert.False(t, found, "fast query must not hit the slow counter")

	m.RecordQuery(ctx, "SELECT", "products", 120*time.Millisecond, nil)
	m.RecordQuery(ctx, "SELECT", "", 120*time.Millisecond, nil)

	slow, found := metricByName(t, reader, "db_slow_query_total")
	require.True(t, found)
	sum := slow.Data.(metricdata.Sum[int64])

	tables := make(map[string]int64)
	for _, dp := range sum.DataPoints {
		table, _ := dp.Attributes.Value("db.table")
		tables[table.AsString()] = dp.Value
	}
	assert.Equal(t, int64(1), tables["products"])
	assert.Equal(t, int64(1), tables["unknown"])
}

func TestDBMetrics_PoolStats(t *testing.T) {
	m, reader := newDBMetrics(t, telemetry.DBMetricsConfig{
		Enabled:           true,
		PoolStatsInterval: time.Hour,
	})

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)

	m.SetSQLDB(sqlDB)
	m.StartPoolStatsCollection(context.Background())

	// The first sample fires immediately on start.
	assert.Eventually(t, func() bool {
		_, found := metricByName(t, reader, "db_pool_connections")
		return found
	}, time.Second, 10*time.Millisecond)

	maxConns, found := metricByName(t, reader, "db_pool_connections_max")
	require.True(t, found)
	assert.NotEmpty(t, maxConns.Data.(metricdata.Gauge[int64]).DataPoints)
}

func TestDBMetrics_PoolStatsWithoutDB(t *testing.T) {
	m, _ := newDBMetrics(t, telemetry.DefaultDBMetricsConfig())

	// Without SetSQLDB the collector refuses to start; Stop stays safe.
	m.StartPoolStatsCollection(context.Background())
	m.Stop()
	m.Stop()
}

type dbMetricsFixture struct {
	db     *gorm.DB
	reader *sdkmetric.ManualReader
}

type metricsProduct struct {
	ID   uint `gorm:"primarykey"`
	Name string
}

func setupPluginDB(t *testing.T) dbMetricsFixture {
	t.Helper()

	m, reader := newDBMetrics(t, telemetry.DefaultDBMetricsConfig())

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&metricsProduct{}))

	require.NoError(t, db.Use(telemetry.NewDBMetricsPlugin(m, zap.NewNop())))
	return dbMetricsFixture{db: db, reader: reader}
}

func TestDBMetricsPlugin_RecordsOperations(t *testing.T) {
	f := setupPluginDB(t)

	require.NoError(t, f.db.Create(&metricsProduct{Name: "mug"}).Error)
	var products []metricsProduct
	require.NoError(t, f.db.Find(&products).Error)
	require.NoError(t, f.db.Model(&metricsProduct{}).Where("id = ?", 1).Update("name", "cup").Error)
	require.NoError(t, f.db.Delete(&metricsProduct{}, 1).Error)

	total, found := metricByName(t, f.reader, "db_query_total")
	require.True(t, found)
	sum := total.Data.(metricdata.Sum[int64])

	seen := make(map[string]bool)
	for _, dp := range sum.DataPoints {
		op, _ := dp.Attributes.Value("db.operation")
		seen[op.AsString()] = true
	}
	for _, op := range []string{"INSERT", "SELECT", "UPDATE", "DELETE"} {
		assert.True(t, seen[op], "missing operation %s", op)
	}
}

func TestDBMetricsPlugin_SniffsRawSQL(t *testing.T) {
	f := setupPluginDB(t)

	var count int64
	require.NoError(t, f.db.Raw("SELECT count(*) FROM metrics_products").Scan(&count).Error)

	total, found := metricByName(t, f.reader, "db_query_total")
	require.True(t, found)
	sum := total.Data.(metricdata.Sum[int64])

	var selects int64
	for _, dp := range sum.DataPoints {
		if op, _ := dp.Attributes.Value("db.operation"); op.AsString() == "SELECT" {
			selects = dp.Value
		}
	}
	assert.GreaterOrEqual(t, selects, int64(1))
}

func TestDBMetricsPlugin_Name(t *testing.T) {
	p := telemetry.NewDBMetricsPlugin(nil, nil)
	assert.Equal(t, "db_metrics", p.Name())
}

func TestDBMetrics_RecordsLatency(t *testing.T) {
	m, reader := newDBMetrics(t, telemetry.DefaultDBMetricsConfig())

	m.RecordQuery(context.Background(), "SELECT", "orders", 25*time.Millisecond, nil)

	hist, found := metricByName(t, reader, "db_query_duration_seconds")
	require.True(t, found)
	data := hist.Data.(metricdata.Histogram[float64])
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(1), data.DataPoints[0].Count)
	assert.InDelta(t, 0.025, data.DataPoints[0].Sum, 1e-9)
}
