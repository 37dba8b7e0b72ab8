package telemetry

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap"

	"github.com/rakshit782/marketplace-sync-dashboard/internal/infrastructure/config"
)

func disabledTelemetryConfig() config.TelemetryConfig {
	return config.TelemetryConfig{Enabled: false, ServiceName: "test"}
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	mp, err := NewMeterProvider(context.Background(), disabledTelemetryConfig(), zap.NewNop())
	require.NoError(t, err)

	meter := mp.Meter("test")
	assert.NotNil(t, meter)
	assert.NoError(t, mp.Shutdown(context.Background()))
}

func TestSyncMetrics_RecordRun(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	defer provider.Shutdown(context.Background())

	metrics, err := NewSyncMetrics(provider.Meter("test"))
	require.NoError(t, err)

	metrics.RecordRun(context.Background(), "amazon", "Completed", 40, 2, 3*time.Second)

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	require.Len(t, rm.ScopeMetrics, 1)

	byName := make(map[string]metricdata.Metrics)
	for _, m := range rm.ScopeMetrics[0].Metrics {
		byName[m.Name] = m
	}

	runs, ok := byName["sync.runs.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	require.Len(t, runs.DataPoints, 1)
	assert.Equal(t, int64(1), runs.DataPoints[0].Value)

	processed, ok := byName["sync.items.processed.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(40), processed.DataPoints[0].Value)

	failed, ok := byName["sync.items.failed.total"].Data.(metricdata.Sum[int64])
	require.True(t, ok)
	assert.Equal(t, int64(2), failed.DataPoints[0].Value)
}
