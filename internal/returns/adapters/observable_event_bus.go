package adapters

import (
	"context"
	"time"

	"github.com/dejobratic/rmaflow/internal/kafka"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
	"github.com/dejobratic/rmaflow/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableEventBus struct {
	bus     ports.EventBus
	backend string
	metrics *kafka.Metrics
}

func NewObservableEventBus(bus ports.EventBus, backend string, metrics *kafka.Metrics) *ObservableEventBus {
	return &ObservableEventBus{
		bus:     bus,
		backend: backend,
		metrics: metrics,
	}
}

func (e *ObservableEventBus) PublishWorkflowCompleted(ctx context.Context, event ports.WorkflowEvent) error {
	return e.publish(ctx, "EventBus.PublishWorkflowCompleted", event, e.bus.PublishWorkflowCompleted)
}

func (e *ObservableEventBus) PublishWorkflowFailed(ctx context.Context, event ports.WorkflowEvent) error {
	return e.publish(ctx, "EventBus.PublishWorkflowFailed", event, e.bus.PublishWorkflowFailed)
}

func (e *ObservableEventBus) publish(
	ctx context.Context,
	spanName string,
	event ports.WorkflowEvent,
	fn func(context.Context, ports.WorkflowEvent) error,
) error {
	ctx, span := telemetry.StartSpan(ctx, spanName)

	telemetry.AddSpanAttributes(span,
		attribute.String("event.type", event.Type),
		attribute.String("event.backend", e.backend),
		telemetry.AttrVendor.String(event.Vendor),
		telemetry.AttrWorkflowStatus.String(string(event.Status)),
	)

	start := time.Now()
	err := fn(ctx, event)
	e.metrics.RecordPublish(ctx, e.backend, event.Type, start, err)

	telemetry.EndSpan(span, err)
	return err
}
