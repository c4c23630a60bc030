package telemetry

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := NewProfiler(ProfilerConfig{Enabled: false}, zap.NewNop())

	require.NoError(t, err)
	require.NotNil(t, p)
	assert.False(t, p.IsEnabled())
	assert.NoError(t, p.Stop())
	assert.NoError(t, p.Stop())
}

func TestNewProfiler_MissingServerAddress(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{
		Enabled:         true,
		ApplicationName: "cartly-backend",
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "server address")
}

func TestNewProfiler_MissingApplicationName(t *testing.T) {
	_, err := NewProfiler(ProfilerConfig{
		Enabled:       true,
		ServerAddress: "http://localhost:4040",
	}, zap.NewNop())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "application name")
}

func TestDefaultProfileTypes(t *testing.T) {
	types := defaultProfileTypes()

	assert.Contains(t, types, pyroscope.ProfileCPU)
	assert.Contains(t, types, pyroscope.ProfileGoroutines)
	// Mutex and block profiles stay opt-in.
	assert.NotContains(t, types, pyroscope.ProfileMutexCount)
	assert.NotContains(t, types, pyroscope.ProfileBlockCount)
}

func TestPyroscopeLogger(t *testing.T) {
	l := &pyroscopeLogger{zap.NewNop().Sugar()}

	// The adapter must satisfy the SDK's logger interface.
	var _ pyroscope.Logger = l
	l.Infof("upload finished in %dms", 12)
	l.Debugf("payload=%d bytes", 512)
	l.Errorf("upload failed: %v", "timeout")
}
