package steps

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// SMSStep sends a text message under a retry policy.
type SMSStep struct {
	sender ports.SMSSender
	policy RetryPolicy
	logger *slog.Logger
}

func NewSMSStep(sender ports.SMSSender, policy RetryPolicy, logger *slog.Logger) *SMSStep {
	return &SMSStep{
		sender: sender,
		policy: policy,
		logger: logger,
	}
}

func (s *SMSStep) Send(ctx context.Context, phone, text string) (ports.SendResult, error) {
	return SendWithRetry(ctx, s.policy, s.logger, "send_sms", func(ctx context.Context) (ports.SendResult, error) {
		return s.sender.SendSMS(ctx, phone, text)
	})
}
