package commands

import (
	"context"
	"errors"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableWorkflowHandler struct {
	handler WorkflowHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableWorkflowHandler(handler WorkflowHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableWorkflowHandler {
	return &ObservableWorkflowHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableWorkflowHandler) Handle(ctx context.Context, cmd ExecuteReturnWorkflowCommand) domain.WorkflowResult {
	ctx, span := telemetry.StartSpan(ctx, "ExecuteReturnWorkflowCommand.Handle")
	defer span.End()

	req := cmd.Request
	telemetry.AddSpanAttributes(span, telemetry.RmaAttributes(req.Vendor, string(req.Intent), string(req.Reason))...)
	telemetry.AddSpanAttributes(span, attribute.Bool("rma.has_phone", req.HasPhone()))

	o.logger.InfoContext(ctx, "starting return workflow",
		"vendor", req.Vendor,
		"order_id", req.OrderID,
		"intent", req.Intent,
		"reason", req.Reason,
	)

	result := o.handler.Handle(ctx, cmd)

	o.metrics.RecordWorkflow(ctx, string(result.Status), result.ExecutionTime)
	telemetry.AddSpanAttributes(span,
		telemetry.AttrWorkflowStatus.String(string(result.Status)),
		attribute.Float64("workflow.execution_time", result.ExecutionTime),
	)

	if result.Status != domain.StatusCompleted {
		telemetry.RecordSpanError(span, errors.New(result.Error))
		o.logger.ErrorContext(ctx, "return workflow did not complete",
			"status", result.Status,
			"error", result.Error,
			"vendor", req.Vendor,
			"order_id", req.OrderID,
			"execution_time", result.ExecutionTime,
		)
		return result
	}

	o.logger.InfoContext(ctx, "return workflow completed",
		"vendor", req.Vendor,
		"order_id", req.OrderID,
		"message", result.Message,
		"execution_time", result.ExecutionTime,
	)

	telemetry.SetSpanSuccess(span)
	return result
}
