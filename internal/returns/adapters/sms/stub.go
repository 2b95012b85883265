package sms

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// StubSender pretends to deliver text messages when no gateway is configured.
type StubSender struct {
	logger *slog.Logger
}

func NewStubSender(logger *slog.Logger) *StubSender {
	return &StubSender{logger: logger}
}

func (s *StubSender) SendSMS(ctx context.Context, phone, _ string) (ports.SendResult, error) {
	s.logger.WarnContext(ctx, "sms not configured, stubbing sms send", "phone", phone)
	return ports.Sent(newMessageID("sms-stub")), nil
}
