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
)

// collectMetrics drains the manual reader and returns the instruments
// recorded for the single expected scope.
func collectMetrics(t *testing.T, reader *sdkmetric.ManualReader) []metricdata.Metrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)
	return rm.ScopeMetrics[0].Metrics
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, mp)
	assert.False(t, mp.IsEnabled())

	// Disabled providers hand out the global no-op meter and idle on
	// flush and shutdown.
	assert.NotNil(t, mp.Meter("storefront"))
	assert.NoError(t, mp.ForceFlush(context.Background()))
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestCounter_AddAndInc(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	counter, err := telemetry.NewCounter(meter, "store_cart_created_total", "Carts created", "{cart}")
	require.NoError(t, err)

	ctx := context.Background()
	counter.Add(ctx, 3, telemetry.AttrOwnerKind.String("guest"))
	counter.Inc(ctx, telemetry.AttrOwnerKind.String("guest"))

	metrics := collectMetrics(t, reader)
	require.Len(t, metrics, 1)
	assert.Equal(t, "store_cart_created_total", metrics[0].Name)

	sum, ok := metrics[0].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, sum.DataPoints, 1)
	assert.Equal(t, int64(4), sum.DataPoints[0].Value)
}

func TestHistogram_RecordDuration(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	hist, err := telemetry.NewHistogram(meter, telemetry.HistogramOpts{
		Name:        "http_request_duration_seconds",
		Description: "Request latency",
		Unit:        "s",
		Boundaries:  telemetry.HTTPDurationBuckets,
	})
	require.NoError(t, err)

	ctx := context.Background()
	hist.Record(ctx, 0.042)
	hist.RecordDuration(ctx, 150*time.Millisecond)

	metrics := collectMetrics(t, reader)
	require.Len(t, metrics, 1)

	data, ok := metrics[0].Data.(metricdata.Histogram[float64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, uint64(2), data.DataPoints[0].Count)
	assert.InDelta(t, 0.192, data.DataPoints[0].Sum, 1e-9)
	assert.Equal(t, telemetry.HTTPDurationBuckets, data.DataPoints[0].Bounds)
}

func TestGauge_Record(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	meter := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test")

	gauge, err := telemetry.NewGauge(meter, "db_pool_connections", "Pool connections", "{connection}")
	require.NoError(t, err)

	ctx := context.Background()
	gauge.Record(ctx, 7, telemetry.AttrDBState.String("idle"))
	gauge.Record(ctx, 5, telemetry.AttrDBState.String("idle"))

	metrics := collectMetrics(t, reader)
	require.Len(t, metrics, 1)

	data, ok := metrics[0].Data.(metricdata.Gauge[int64])
	require.True(t, ok)
	require.Len(t, data.DataPoints, 1)
	assert.Equal(t, int64(5), data.DataPoints[0].Value)
}

func TestDurationBuckets_Ascending(t *testing.T) {
	for _, buckets := range [][]float64{telemetry.HTTPDurationBuckets, telemetry.DBDurationBuckets} {
		for i := 1; i < len(buckets); i++ {
			assert.Less(t, buckets[i-1], buckets[i])
		}
	}
}
