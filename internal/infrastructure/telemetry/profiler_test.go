package telemetry_test

import (
	"testing"

	"github.com/grafana/pyroscope-go"
	"github.com/landerp/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestParseProfileTypes(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		types, err := telemetry.ParseProfileTypes(nil)
		require.NoError(t, err)
		assert.Equal(t, []pyroscope.ProfileType{
			pyroscope.ProfileCPU,
			pyroscope.ProfileAllocSpace,
			pyroscope.ProfileInuseSpace,
			pyroscope.ProfileGoroutines,
		}, types)
	})

	t.Run("normalizes and dedupes", func(t *testing.T) {
		types, err := telemetry.ParseProfileTypes([]string{" CPU", "mutex_count", "cpu"})
		require.NoError(t, err)
		assert.Equal(t, []pyroscope.ProfileType{pyroscope.ProfileCPU, pyroscope.ProfileMutexCount}, types)
	})

	t.Run("unknown", func(t *testing.T) {
		_, err := telemetry.ParseProfileTypes([]string{"cpu", "heap"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), `"heap"`)
	})
}

func TestNewProfiler_Disabled(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, zap.NewNop())
	require.NoError(t, err)
	assert.False(t, p.Enabled())
	require.NoError(t, p.Stop())
	require.NoError(t, p.Stop())
}

func TestNewProfiler_RejectsBadConfig(t *testing.T) {
	_, err := telemetry.NewProfiler(telemetry.ProfilerConfig{Enabled: true}, zap.NewNop())
	require.Error(t, err)

	_, err = telemetry.NewProfiler(telemetry.ProfilerConfig{
		Enabled:       true,
		ServerAddress: "http://localhost:4040",
		ProfileTypes:  []string{"bogus"},
	}, zap.NewNop())
	require.Error(t, err)
}
