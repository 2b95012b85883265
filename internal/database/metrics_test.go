package database

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func newTestMetrics(t *testing.T) (*Metrics, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	metrics, err := NewMetrics(mp.Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}
	return metrics, reader
}

func TestRecordQuery(t *testing.T) {
	t.Run("labels queries by table, operation and status", func(t *testing.T) {
		metrics, reader := newTestMetrics(t)
		ctx := context.Background()
		start := time.Now()

		metrics.RecordQuery(ctx, TableIdempotencyKeys, "set", start, nil)
		metrics.RecordQuery(ctx, TableIdempotencyKeys, "set", start, errors.New("conflict"))
		metrics.RecordQuery(ctx, TableRmaSubmissions, "insert", start, nil)

		var rm metricdata.ResourceMetrics
		if err := reader.Collect(ctx, &rm); err != nil {
			t.Fatalf("Failed to collect metrics: %v", err)
		}

		found := false
		for _, sm := range rm.ScopeMetrics {
			for _, m := range sm.Metrics {
				if m.Name != "db_query_duration_seconds" {
					continue
				}
				found = true
				histogram, ok := m.Data.(metricdata.Histogram[float64])
				if !ok {
					t.Fatal("Expected Histogram[float64] data type")
				}
				if len(histogram.DataPoints) != 3 {
					t.Errorf("Expected 3 data points, got %d", len(histogram.DataPoints))
				}
			}
		}
		if !found {
			t.Error("db_query_duration_seconds metric not found")
		}
	})

	t.Run("nil metrics record nothing", func(t *testing.T) {
		var metrics *Metrics
		metrics.RecordQuery(context.Background(), TableIdempotencyKeys, "get", time.Now(), nil)
		metrics.RecordPurge(context.Background(), TableIdempotencyKeys, 3)
	})
}

func TestRecordPurge(t *testing.T) {
	metrics, reader := newTestMetrics(t)
	ctx := context.Background()

	metrics.RecordPurge(ctx, TableIdempotencyKeys, 0)
	metrics.RecordPurge(ctx, TableIdempotencyKeys, 5)
	metrics.RecordPurge(ctx, TableIdempotencyKeys, 2)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name != "db_rows_purged_total" {
				continue
			}
			sum := m.Data.(metricdata.Sum[int64])
			if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 7 {
				t.Errorf("expected 7 purged rows, got %+v", sum.DataPoints)
			}
			return
		}
	}
	t.Error("db_rows_purged_total metric not found")
}
