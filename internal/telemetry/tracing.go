package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"
)

const instrumentationName = "github.com/dejobratic/rmaflow"

// Span attribute keys shared by the workflow decorators and adapters.
const (
	AttrVendor         = attribute.Key("rma.vendor")
	AttrIntent         = attribute.Key("rma.intent")
	AttrReason         = attribute.Key("rma.reason")
	AttrWorkflowStatus = attribute.Key("workflow.status")
	AttrStage          = attribute.Key("stage")
)

// StageEvent is the span event name marking a workflow stage transition.
const StageEvent = "workflow.stage"

// Meter returns the service meter from the global provider.
func Meter() metric.Meter {
	return otel.Meter(instrumentationName)
}

// StartSpan starts a span on the service tracer.
func StartSpan(ctx context.Context, spanName string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, spanName, opts...)
}

// RmaAttributes describes one RMA request without any customer contact data.
func RmaAttributes(vendor, intent, reason string) []attribute.KeyValue {
	return []attribute.KeyValue{
		AttrVendor.String(vendor),
		AttrIntent.String(intent),
		AttrReason.String(reason),
	}
}

// RecordStage adds a stage event to the span in ctx. Without a recording span it does
// nothing.
func RecordStage(ctx context.Context, stage string) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	span.AddEvent(StageEvent, trace.WithAttributes(AttrStage.String(stage)))
}

func AddSpanAttributes(span trace.Span, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.SetAttributes(attrs...)
}

func AddSpanEvent(span trace.Span, eventName string, attrs ...attribute.KeyValue) {
	if span == nil {
		return
	}
	span.AddEvent(eventName, trace.WithAttributes(attrs...))
}

func RecordSpanError(span trace.Span, err error) {
	if span == nil || err == nil {
		return
	}
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

func SetSpanSuccess(span trace.Span) {
	if span == nil {
		return
	}
	span.SetStatus(codes.Ok, "")
}

// EndSpan sets the span status from err and ends it.
func EndSpan(span trace.Span, err error) {
	if err != nil {
		RecordSpanError(span, err)
	} else {
		SetSpanSuccess(span)
	}
	span.End()
}

// TraceID returns the hex trace id in ctx, or "" when ctx carries no span.
func TraceID(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasTraceID() {
		return spanCtx.TraceID().String()
	}
	return ""
}

func SpanID(ctx context.Context) string {
	if spanCtx := trace.SpanContextFromContext(ctx); spanCtx.HasSpanID() {
		return spanCtx.SpanID().String()
	}
	return ""
}
