package kafka

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
)

func TestRecordPublish(t *testing.T) {
	reader := sdkmetric.NewManualReader()
	metrics, err := NewMetrics(sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader)).Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	ctx := context.Background()
	start := time.Now()
	brokerDown := errors.New("broker unavailable")

	metrics.RecordPublish(ctx, "kafka", "rma.workflow.completed", start, nil)
	metrics.RecordPublish(ctx, "kafka", "rma.workflow.failed", start, brokerDown)
	metrics.RecordPublish(ctx, "kafka", "rma.workflow.failed", start, brokerDown)
	metrics.RecordPublish(ctx, "sqs", "rma.workflow.completed", start, nil)

	var rm metricdata.ResourceMetrics
	if err := reader.Collect(ctx, &rm); err != nil {
		t.Fatalf("Failed to collect metrics: %v", err)
	}

	byName := map[string]metricdata.Metrics{}
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			byName[m.Name] = m
		}
	}

	t.Run("latency per backend and event type", func(t *testing.T) {
		histogram, ok := byName["event_publish_latency_seconds"].Data.(metricdata.Histogram[float64])
		if !ok {
			t.Fatal("event_publish_latency_seconds missing")
		}
		if len(histogram.DataPoints) != 3 {
			t.Errorf("expected 3 series, got %d", len(histogram.DataPoints))
		}
	})

	t.Run("failures only for errored publishes", func(t *testing.T) {
		sum, ok := byName["event_publish_failures_total"].Data.(metricdata.Sum[int64])
		if !ok {
			t.Fatal("event_publish_failures_total missing")
		}
		if len(sum.DataPoints) != 1 || sum.DataPoints[0].Value != 2 {
			t.Errorf("expected one failed series with 2 events, got %+v", sum.DataPoints)
		}
	})
}
