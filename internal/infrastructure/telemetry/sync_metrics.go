package telemetry

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// SyncMetrics records catalog sync run outcomes
type SyncMetrics struct {
	runs           *Counter
	itemsProcessed *Counter
	itemsFailed    *Counter
	runDuration    *Histogram
}

// NewSyncMetrics creates the catalog sync instrument set
func NewSyncMetrics(meter metric.Meter) (*SyncMetrics, error) {
	runs, err := NewCounter(meter, "sync.runs.total", "Total catalog sync runs by terminal status", "{run}")
	if err != nil {
		return nil, err
	}
	processed, err := NewCounter(meter, "sync.items.processed.total", "Catalog items successfully written during sync runs", "{item}")
	if err != nil {
		return nil, err
	}
	failed, err := NewCounter(meter, "sync.items.failed.total", "Catalog items skipped or failed during sync runs", "{item}")
	if err != nil {
		return nil, err
	}
	duration, err := NewHistogram(meter, "sync.run.duration", "Catalog sync run duration", "s", SyncDurationBuckets)
	if err != nil {
		return nil, err
	}
	return &SyncMetrics{
		runs:           runs,
		itemsProcessed: processed,
		itemsFailed:    failed,
		runDuration:    duration,
	}, nil
}

// RecordRun records one completed or failed sync run
func (m *SyncMetrics) RecordRun(ctx context.Context, marketplace, status string, processed, failed int, duration time.Duration) {
	attrs := []attribute.KeyValue{
		AttrMarketplace.String(marketplace),
		AttrSyncStatus.String(status),
	}
	m.runs.Inc(ctx, attrs...)
	m.itemsProcessed.Add(ctx, int64(processed), attrs...)
	m.itemsFailed.Add(ctx, int64(failed), attrs...)
	m.runDuration.RecordDuration(ctx, duration, attrs...)
}
