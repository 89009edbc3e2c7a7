package telemetry_test

import (
	"sync"
	"testing"

	"github.com/activityhub/backend/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestNewProfiler(t *testing.T) {
	t.Run("disabled is a no-op", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			ServerAddress:   "http://localhost:4040",
			ApplicationName: "activityhub-test",
		}, zaptest.NewLogger(t))
		require.NoError(t, err)
		assert.False(t, p.IsEnabled())
		assert.NoError(t, p.Stop())
	})

	t.Run("enabled needs a server address", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:         true,
			ApplicationName: "activityhub-test",
		}, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Nil(t, p)
		assert.Contains(t, err.Error(), "server address is required")
	})

	t.Run("enabled needs an application name", func(t *testing.T) {
		p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{
			Enabled:       true,
			ServerAddress: "http://localhost:4040",
		}, zaptest.NewLogger(t))
		require.Error(t, err)
		assert.Nil(t, p)
		assert.Contains(t, err.Error(), "application name is required")
	})
}

func TestProfiler_StopIsIdempotent(t *testing.T) {
	p, err := telemetry.NewProfiler(telemetry.ProfilerConfig{}, zaptest.NewLogger(t))
	require.NoError(t, err)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			assert.NoError(t, p.Stop())
		}()
	}
	wg.Wait()
}
