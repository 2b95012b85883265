package database

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	queryDuration metric.Float64Histogram
	rowsPurged    metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.queryDuration, err = meter.Float64Histogram(
		"db_query_duration_seconds",
		metric.WithDescription("Duration of idempotency and submission queries"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_query_duration histogram: %w", err)
	}

	m.rowsPurged, err = meter.Int64Counter(
		"db_rows_purged_total",
		metric.WithDescription("Expired rows deleted by background purges"),
		metric.WithUnit("{row}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create db_rows_purged counter: %w", err)
	}

	return m, nil
}

// RecordQuery records one query against table that started at start. A nil receiver
// records nothing, so stores can run without metrics in tests.
func (m *Metrics) RecordQuery(ctx context.Context, table, operation string, start time.Time, err error) {
	if m == nil {
		return
	}
	status := "success"
	if err != nil {
		status = "error"
	}
	m.queryDuration.Record(ctx, time.Since(start).Seconds(), metric.WithAttributes(
		attribute.String("table", table),
		attribute.String("operation", operation),
		attribute.String("status", status),
	))
}

func (m *Metrics) RecordPurge(ctx context.Context, table string, rows int64) {
	if m == nil || rows == 0 {
		return
	}
	m.rowsPurged.Add(ctx, rows, metric.WithAttributes(attribute.String("table", table)))
}
