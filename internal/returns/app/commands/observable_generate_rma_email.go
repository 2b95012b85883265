package commands

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
)

type ObservableGenerateRmaEmailHandler struct {
	handler GenerateRmaEmailHandler
	logger  *slog.Logger
	metrics *metrics.Metrics
}

func NewObservableGenerateRmaEmailHandler(handler GenerateRmaEmailHandler, logger *slog.Logger, metrics *metrics.Metrics) *ObservableGenerateRmaEmailHandler {
	return &ObservableGenerateRmaEmailHandler{
		handler: handler,
		logger:  logger,
		metrics: metrics,
	}
}

func (o *ObservableGenerateRmaEmailHandler) Handle(ctx context.Context, cmd GenerateRmaEmailCommand) (GeneratedEmail, error) {
	ctx, span := telemetry.StartSpan(ctx, "GenerateRmaEmailCommand.Handle")
	defer span.End()

	req := cmd.Request
	telemetry.AddSpanAttributes(span, telemetry.RmaAttributes(req.Vendor, string(req.Intent), string(req.Reason))...)
	telemetry.AddSpanAttributes(span, attribute.Int("rma.evidence_count", len(req.EvidenceURLs)))

	generated, err := o.handler.Handle(ctx, cmd)
	if err != nil {
		telemetry.RecordSpanError(span, err)
		level := slog.LevelError
		if domain.IsValidationError(err) {
			level = slog.LevelWarn
		}
		o.logger.Log(ctx, level, "failed to generate rma email",
			"error", err,
			"vendor", req.Vendor,
			"order_id", req.OrderID,
		)
		return GeneratedEmail{}, err
	}

	o.metrics.RecordRmaEmailGenerated(ctx, generated.Vendor.Key, string(req.Intent), string(req.Reason))
	telemetry.AddSpanAttributes(span, attribute.String("rma.vendor_key", generated.Vendor.Key))
	o.logger.InfoContext(ctx, "rma email generated",
		"vendor", generated.Vendor.Key,
		"order_id", req.OrderID,
		"to_email", generated.Email.To,
	)

	telemetry.SetSpanSuccess(span)
	return generated, nil
}
