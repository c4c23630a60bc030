package telemetry

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.uber.org/zap"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, tp)
	assert.False(t, tp.IsEnabled())
}

func TestTracerProvider_DisabledIsInert(t *testing.T) {
	tp, err := NewTracerProvider(context.Background(), Config{Enabled: false}, zap.NewNop())
	require.NoError(t, err)

	// Every method on a disabled provider is a safe no-op.
	assert.NotNil(t, tp.Tracer("checkout"))
	assert.NoError(t, tp.ForceFlush(context.Background()))
	assert.NoError(t, tp.Shutdown(context.Background()))

	assert.NoError(t, tp.EnableSpanProfiles())
	assert.False(t, tp.IsSpanProfilesEnabled())
}

func TestConfig_Sampler(t *testing.T) {
	tests := []struct {
		name  string
		ratio float64
		want  sdktrace.Sampler
	}{
		{"always", 1.0, sdktrace.AlwaysSample()},
		{"never", 0.0, sdktrace.NeverSample()},
		{"ratio", 0.25, sdktrace.TraceIDRatioBased(0.25)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Config{SamplingRatio: tt.ratio}.sampler()
			assert.Equal(t, tt.want.Description(), got.Description())
		})
	}
}

func TestConfig_Resource(t *testing.T) {
	res, err := Config{ServiceName: "cartly-backend"}.resource()

	require.NoError(t, err)
	found := false
	for _, attr := range res.Attributes() {
		if string(attr.Key) == "service.name" {
			found = true
			assert.Equal(t, "cartly-backend", attr.Value.AsString())
		}
	}
	assert.True(t, found, "service.name attribute missing from resource")
}
