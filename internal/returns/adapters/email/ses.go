package email

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sesv2"
	"github.com/aws/aws-sdk-go-v2/service/sesv2/types"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// SESAPI is the part of the SES v2 client SESSender uses.
type SESAPI interface {
	SendEmail(ctx context.Context, params *sesv2.SendEmailInput, optFns ...func(*sesv2.Options)) (*sesv2.SendEmailOutput, error)
}

// SESSender delivers email through Amazon SES.
type SESSender struct {
	client SESAPI
	from   string
	logger *slog.Logger
}

func NewSESSender(client SESAPI, from string, logger *slog.Logger) *SESSender {
	return &SESSender{
		client: client,
		from:   from,
		logger: logger,
	}
}

func (s *SESSender) SendEmail(ctx context.Context, msg ports.EmailMessage) (ports.SendResult, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	out, err := s.client.SendEmail(ctx, &sesv2.SendEmailInput{
		FromEmailAddress: aws.String(from),
		Destination: &types.Destination{
			ToAddresses: []string{msg.To},
		},
		Content: &types.EmailContent{
			Simple: &types.Message{
				Subject: &types.Content{Data: aws.String(msg.Subject)},
				Body: &types.Body{
					Text: &types.Content{Data: aws.String(msg.Body)},
				},
			},
		},
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send email",
			"to", msg.To,
				"error", err,
		)
		return ports.NotSent(err.Error()), nil
	}

	id := aws.ToString(out.MessageId)
	if id == "" {
		id = newMessageID("ses")
	}
	s.logger.InfoContext(ctx, "email sent",
		"to", msg.To,
		"message_id", id,
	)
	return ports.Sent(id), nil
}
