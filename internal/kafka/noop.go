package kafka

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// NoopEventBus logs events without sending them anywhere. Useful for local dev before wiring Kafka.
type NoopEventBus struct {
	logger *slog.Logger
}

// NewNoopEventBus returns a new no-op event publisher.
func NewNoopEventBus(logger *slog.Logger) *NoopEventBus {
	return &NoopEventBus{logger: logger}
}

func (n *NoopEventBus) PublishWorkflowCompleted(ctx context.Context, event ports.WorkflowEvent) error {
	n.logger.DebugContext(ctx, "event::workflow_completed",
		"vendor", event.Vendor,
		"order_id_last4", event.OrderIDLast4,
		"msg_id", event.MessageID,
	)
	return nil
}

func (n *NoopEventBus) PublishWorkflowFailed(ctx context.Context, event ports.WorkflowEvent) error {
	n.logger.DebugContext(ctx, "event::workflow_failed",
		"vendor", event.Vendor,
		"order_id_last4", event.OrderIDLast4,
		"status", event.Status,
		"reason", event.Error,
	)
	return nil
}
