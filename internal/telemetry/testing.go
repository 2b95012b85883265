package telemetry

import (
	"context"
	"sync/atomic"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
)

// DiscardExporter accepts spans and metrics without sending them anywhere. It counts
// what it received so tests can check that Shutdown flushed pending data.
type DiscardExporter struct {
	spans   atomic.Int64
	exports atomic.Int64
}

var (
	_ sdktrace.SpanExporter = (*DiscardExporter)(nil)
	_ sdkmetric.Exporter    = (*DiscardExporter)(nil)
)

func NewDiscardExporter() *DiscardExporter {
	return &DiscardExporter{}
}

func (d *DiscardExporter) ExportSpans(_ context.Context, spans []sdktrace.ReadOnlySpan) error {
	d.spans.Add(int64(len(spans)))
	return nil
}

func (d *DiscardExporter) Temporality(_ sdkmetric.InstrumentKind) metricdata.Temporality {
	return metricdata.CumulativeTemporality
}

func (d *DiscardExporter) Aggregation(_ sdkmetric.InstrumentKind) sdkmetric.Aggregation {
	return sdkmetric.AggregationDefault{}
}

func (d *DiscardExporter) Export(_ context.Context, _ *metricdata.ResourceMetrics) error {
	d.exports.Add(1)
	return nil
}

func (d *DiscardExporter) ForceFlush(_ context.Context) error {
	return nil
}

func (d *DiscardExporter) Shutdown(_ context.Context) error {
	return nil
}

// Spans returns how many spans were exported.
func (d *DiscardExporter) Spans() int64 {
	return d.spans.Load()
}

// Exports returns how many metric collections were exported.
func (d *DiscardExporter) Exports() int64 {
	return d.exports.Load()
}
