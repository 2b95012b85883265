package sms

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sns"
	"github.com/aws/aws-sdk-go-v2/service/sns/types"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// SNSAPI is the part of the SNS client SNSSender uses.
type SNSAPI interface {
	Publish(ctx context.Context, params *sns.PublishInput, optFns ...func(*sns.Options)) (*sns.PublishOutput, error)
}

// SNSSender publishes transactional SMS directly to a phone number.
type SNSSender struct {
	client   SNSAPI
	senderID string
	logger   *slog.Logger
}

func NewSNSSender(client SNSAPI, senderID string, logger *slog.Logger) *SNSSender {
	return &SNSSender{
		client:   client,
		senderID: senderID,
		logger:   logger,
	}
}

func (s *SNSSender) SendSMS(ctx context.Context, phone, text string) (ports.SendResult, error) {
	attrs := map[string]types.MessageAttributeValue{
		"AWS.SNS.SMS.SMSType": {
			DataType:    aws.String("String"),
			StringValue: aws.String("Transactional"),
		},
	}
	if s.senderID != "" {
		attrs["AWS.SNS.SMS.SenderID"] = types.MessageAttributeValue{
			DataType:    aws.String("String"),
			StringValue: aws.String(s.senderID),
		}
	}

	out, err := s.client.Publish(ctx, &sns.PublishInput{
		PhoneNumber:       aws.String(phone),
		Message:           aws.String(text),
		MessageAttributes: attrs,
	})
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send sms", "phone", phone, "error", err)
		return ports.NotSent(err.Error()), nil
	}

	id := aws.ToString(out.MessageId)
	if id == "" {
		id = newMessageID("sms")
	}
	s.logger.InfoContext(ctx, "sms sent", "phone", phone, "message_id", id)
	return ports.Sent(id), nil
}
