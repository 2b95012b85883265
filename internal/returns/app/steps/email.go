package steps

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// EmailStep sends a generated RMA email under a retry policy.
type EmailStep struct {
	sender ports.EmailSender
	policy RetryPolicy
	logger *slog.Logger
}

func NewEmailStep(sender ports.EmailSender, policy RetryPolicy, logger *slog.Logger) *EmailStep {
	return &EmailStep{
		sender: sender,
		policy: policy,
		logger: logger,
	}
}

// Send delivers email. It never panics; the error is non-nil only when every attempt failed
// or ctx ended first.
func (s *EmailStep) Send(ctx context.Context, email domain.RmaEmail) (ports.SendResult, error) {
	msg := ports.EmailMessage{
		To:      email.To,
		Subject: email.Subject,
		Body:    email.Body,
	}
	return SendWithRetry(ctx, s.policy, s.logger, "send_email", func(ctx context.Context) (ports.SendResult, error) {
		return s.sender.SendEmail(ctx, msg)
	})
}
