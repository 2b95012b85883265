package kafka

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metrics tracks workflow event publishing for every event bus backend, not only Kafka.
type Metrics struct {
	publishLatency  metric.Float64Histogram
	publishFailures metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.publishLatency, err = meter.Float64Histogram(
		"event_publish_latency_seconds",
		metric.WithDescription("Workflow event publish latency"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_publish_latency histogram: %w", err)
	}

	m.publishFailures, err = meter.Int64Counter(
		"event_publish_failures_total",
		metric.WithDescription("Workflow events the backend refused or never acknowledged"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create event_publish_failures counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordPublish(ctx context.Context, backend, eventType string, start time.Time, err error) {
	attrs := metric.WithAttributes(
		attribute.String("backend", backend),
		attribute.String("event_type", eventType),
	)
	m.publishLatency.Record(ctx, time.Since(start).Seconds(), attrs)
	if err != nil {
		m.publishFailures.Add(ctx, 1, attrs)
	}
}
