package telemetry

import (
	"context"
	"errors"
	"testing"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

func TestStartSpan(t *testing.T) {
	exp, cleanup := setupTracerProvider(t)
	defer cleanup()

	ctx, parent := StartSpan(context.Background(), "workflow.execute")
	_, child := StartSpan(ctx, "workflow.send_email")
	child.End()
	parent.End()

	spans := exp.GetSpans()
	if len(spans) != 2 {
		t.Fatalf("expected 2 spans, got %d", len(spans))
	}
	if spans[0].Name != "workflow.send_email" || spans[1].Name != "workflow.execute" {
		t.Errorf("unexpected span names: %s, %s", spans[0].Name, spans[1].Name)
	}
	if spans[0].Parent.SpanID() != spans[1].SpanContext.SpanID() {
		t.Error("expected child span to reference its parent")
	}
	if spans[0].InstrumentationScope.Name != instrumentationName {
		t.Errorf("expected scope %s, got %s", instrumentationName, spans[0].InstrumentationScope.Name)
	}
}

func TestSpanHelpers(t *testing.T) {
	t.Run("attributes and events", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "workflow.execute")
		AddSpanAttributes(span, attribute.String("vendor", "amazon"))
		AddSpanEvent(span, "workflow.stage", attribute.String("stage", "EMAIL_SENT"))
		span.End()

		got := exp.GetSpans()[0]
		if len(got.Attributes) != 1 || got.Attributes[0].Value.AsString() != "amazon" {
			t.Errorf("unexpected attributes: %v", got.Attributes)
		}
		if len(got.Events) != 1 || got.Events[0].Name != "workflow.stage" {
			t.Errorf("unexpected events: %v", got.Events)
		}
	})

	t.Run("error then success", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "workflow.execute")
		RecordSpanError(span, errors.New("smtp down"))
		if status := exp.GetSpans(); len(status) != 0 {
			t.Fatalf("span exported before End")
		}
		span.End()

		got := exp.GetSpans()[0]
		if got.Status.Code != codes.Error || got.Status.Description != "smtp down" {
			t.Errorf("expected error status, got %+v", got.Status)
		}

		_, ok := StartSpan(context.Background(), "workflow.execute")
		RecordSpanError(ok, nil)
		SetSpanSuccess(ok)
		ok.End()
		if status := exp.GetSpans()[1].Status.Code; status != codes.Ok {
			t.Errorf("expected ok status, got %v", status)
		}
	})

	t.Run("stage events and rma attributes", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		ctx, span := StartSpan(context.Background(), "workflow.execute")
		AddSpanAttributes(span, RmaAttributes("amazon", "return", "damaged")...)
		RecordStage(ctx, "EMAIL_GENERATED")
		RecordStage(ctx, "EMAIL_SENT")
		EndSpan(span, nil)

		got := exp.GetSpans()[0]
		if len(got.Attributes) != 3 || got.Attributes[0].Key != AttrVendor {
			t.Errorf("unexpected attributes: %v", got.Attributes)
		}
		if len(got.Events) != 2 || got.Events[1].Name != StageEvent {
			t.Fatalf("unexpected events: %v", got.Events)
		}
		if stage := got.Events[1].Attributes[0]; stage.Key != AttrStage || stage.Value.AsString() != "EMAIL_SENT" {
			t.Errorf("unexpected stage attribute: %v", stage)
		}
		if got.Status.Code != codes.Ok {
			t.Errorf("expected ok status, got %v", got.Status.Code)
		}
	})

	t.Run("end span with error", func(t *testing.T) {
		exp, cleanup := setupTracerProvider(t)
		defer cleanup()

		_, span := StartSpan(context.Background(), "workflow.execute")
		EndSpan(span, errors.New("deadline exceeded"))

		if got := exp.GetSpans()[0].Status; got.Code != codes.Error || got.Description != "deadline exceeded" {
			t.Errorf("expected error status, got %+v", got)
		}
	})

	t.Run("stage without a span is ignored", func(t *testing.T) {
		RecordStage(context.Background(), "STARTED")
	})

	t.Run("nil span is ignored", func(t *testing.T) {
		AddSpanAttributes(nil, attribute.String("k", "v"))
		AddSpanEvent(nil, "event")
		RecordSpanError(nil, errors.New("boom"))
		SetSpanSuccess(nil)
	})
}

func TestTraceAndSpanID(t *testing.T) {
	if TraceID(context.Background()) != "" || SpanID(context.Background()) != "" {
		t.Fatal("expected empty ids without a span")
	}

	_, cleanup := setupTracerProvider(t)
	defer cleanup()

	ctx, parent := StartSpan(context.Background(), "parent")
	defer parent.End()
	childCtx, child := StartSpan(ctx, "child")
	defer child.End()

	if TraceID(ctx) == "" || TraceID(ctx) != TraceID(childCtx) {
		t.Error("expected nested spans to share a trace id")
	}
	if SpanID(ctx) == SpanID(childCtx) {
		t.Error("expected nested spans to have different span ids")
	}
}
