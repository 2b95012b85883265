package adapters

import (
	"context"
	"errors"

	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
	"github.com/dejobratic/rmaflow/internal/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
)

type ObservableEmailSender struct {
	sender  ports.EmailSender
	metrics *metrics.Metrics
}

func NewObservableEmailSender(sender ports.EmailSender, metrics *metrics.Metrics) *ObservableEmailSender {
	return &ObservableEmailSender{
		sender:  sender,
		metrics: metrics,
	}
}

func (s *ObservableEmailSender) SendEmail(ctx context.Context, msg ports.EmailMessage) (ports.SendResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "EmailSender.SendEmail")
	defer span.End()

	telemetry.AddSpanAttributes(span, attribute.String("email.to", msg.To))

	res, err := s.sender.SendEmail(ctx, msg)
	s.metrics.RecordEmailSent(ctx, err == nil && res.OK)

	return res, finishSend(span, res, err)
}

type ObservableSMSSender struct {
	sender  ports.SMSSender
	metrics *metrics.Metrics
}

func NewObservableSMSSender(sender ports.SMSSender, metrics *metrics.Metrics) *ObservableSMSSender {
	return &ObservableSMSSender{
		sender:  sender,
		metrics: metrics,
	}
}

func (s *ObservableSMSSender) SendSMS(ctx context.Context, phone, text string) (ports.SendResult, error) {
	ctx, span := telemetry.StartSpan(ctx, "SMSSender.SendSMS")
	defer span.End()

	telemetry.AddSpanAttributes(span,
		attribute.String("sms.to", telemetry.MaskTail(phone, telemetry.VisibleTail)),
		attribute.Int("sms.length", len(text)),
	)

	res, err := s.sender.SendSMS(ctx, phone, text)
	s.metrics.RecordSMSSent(ctx, err == nil && res.OK)

	return res, finishSend(span, res, err)
}

func finishSend(span trace.Span, res ports.SendResult, err error) error {
	switch {
	case err != nil:
		telemetry.RecordSpanError(span, err)
	case !res.OK:
		telemetry.RecordSpanError(span, errors.New(res.Reason))
	default:
		telemetry.AddSpanAttributes(span, attribute.String("message.id", res.MessageID))
		telemetry.SetSpanSuccess(span)
	}
	return err
}
