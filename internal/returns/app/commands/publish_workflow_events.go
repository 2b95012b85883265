package commands

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// EventPublishingHandler announces every terminal workflow result on the event bus once
// the wrapped handler has returned. Publish failures are logged and never change the result.
type EventPublishingHandler struct {
	handler WorkflowHandler
	events  ports.EventBus
	logger  *slog.Logger
}

func NewEventPublishingHandler(handler WorkflowHandler, events ports.EventBus, logger *slog.Logger) *EventPublishingHandler {
	return &EventPublishingHandler{
		handler: handler,
		events:  events,
		logger:  logger,
	}
}

func (p *EventPublishingHandler) Handle(ctx context.Context, cmd ExecuteReturnWorkflowCommand) domain.WorkflowResult {
	result := p.handler.Handle(ctx, cmd)

	event := NewWorkflowEvent(cmd.Request, result)

	var err error
	if result.Status == domain.StatusCompleted {
		err = p.events.PublishWorkflowCompleted(ctx, event)
	} else {
		err = p.events.PublishWorkflowFailed(ctx, event)
	}
	if err != nil {
		p.logger.WarnContext(ctx, "failed to publish workflow event",
			"event_type", event.Type,
			"vendor", event.Vendor,
			"error", err,
		)
	}

	return result
}

// NewWorkflowEvent summarizes a run without contact details or the full order id.
func NewWorkflowEvent(req domain.RmaRequest, result domain.WorkflowResult) ports.WorkflowEvent {
	event := ports.WorkflowEvent{
		Type:         ports.EventWorkflowFailed,
		Vendor:       req.Vendor,
		OrderIDLast4: domain.OrderIDLast4(req.OrderID),
		Intent:       req.Intent,
		Reason:       req.Reason,
		Status:       result.Status,
		Error:        result.Error,
	}
	if result.Status == domain.StatusCompleted {
		event.Type = ports.EventWorkflowCompleted
	}
	if result.Data != nil {
		event.MessageID = result.Data.MsgID
	}
	return event
}
