package ports

import "context"

// SendResult reports a delivery attempt. OK=false is an expected failure described by
// Reason; unexpected faults are returned as errors instead.
type SendResult struct {
	OK        bool
	MessageID string
	Reason    string
}

// Sent builds a successful result.
func Sent(messageID string) SendResult {
	return SendResult{OK: true, MessageID: messageID}
}

// NotSent builds an expected-failure result.
func NotSent(reason string) SendResult {
	return SendResult{Reason: reason}
}

// EmailMessage is one outgoing email.
type EmailMessage struct {
	To      string
	Subject string
	Body    string
	From    string
}

// EmailSender delivers email.
type EmailSender interface {
	SendEmail(ctx context.Context, msg EmailMessage) (SendResult, error)
}

// SMSSender delivers text messages.
type SMSSender interface {
	SendSMS(ctx context.Context, phone, text string) (SendResult, error)
}
