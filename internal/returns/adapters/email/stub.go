package email

import (
	"context"
	"log/slog"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// StubSender pretends to deliver email. It stands in when no transport is configured.
type StubSender struct {
	logger *slog.Logger
}

func NewStubSender(logger *slog.Logger) *StubSender {
	return &StubSender{logger: logger}
}

func (s *StubSender) SendEmail(ctx context.Context, msg ports.EmailMessage) (ports.SendResult, error) {
	s.logger.WarnContext(ctx, "smtp not configured, stubbing email send",
		"to", msg.To,
	)
	return ports.Sent(newMessageID("stub")), nil
}
