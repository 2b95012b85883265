package http

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// requestBuckets cover quick tool calls as well as workflow runs that wait out retry
// pauses and the SMS fallback.
var requestBuckets = []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30, 60, 120}

type Metrics struct {
	requestDuration metric.Float64Histogram
	requestsTotal   metric.Int64Counter
	panicsTotal     metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.requestDuration, err = meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration by route"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(requestBuckets...),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_request_duration histogram: %w", err)
	}

	m.requestsTotal, err = meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_requests_total counter: %w", err)
	}

	m.panicsTotal, err = meter.Int64Counter(
		"http_panics_total",
		metric.WithDescription("Handler panics recovered by the HTTP front"),
		metric.WithUnit("{panic}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create http_panics_total counter: %w", err)
	}

	return m, nil
}

// RecordRequest counts one request. route is the matched route pattern, not the raw
// path, so vendor names in the URL do not multiply series.
func (m *Metrics) RecordRequest(ctx context.Context, method, route string, statusCode int, durationSeconds float64) {
	m.requestsTotal.Add(ctx, 1, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
		attribute.Int("status_code", statusCode),
	))
	m.requestDuration.Record(ctx, durationSeconds, metric.WithAttributes(
		attribute.String("method", method),
		attribute.String("route", route),
	))
}

func (m *Metrics) RecordPanic(ctx context.Context, route string) {
	m.panicsTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("route", route)))
}
