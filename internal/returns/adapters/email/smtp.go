// Package email delivers RMA emails over SMTP, Amazon SES or a logging stub.
package email

import (
	"context"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/wneessen/go-mail"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// SMTPConfig holds the relay settings for SMTPSender.
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	UseTLS   bool
	From     string
	Timeout  time.Duration
}

// Dialer sends messages over one SMTP session. *mail.Client implements it.
type Dialer interface {
	DialAndSendWithContext(ctx context.Context, messages ...*mail.Msg) error
}

// SMTPSender relays email through an authenticated SMTP server.
type SMTPSender struct {
	dialer Dialer
	from   string
	logger *slog.Logger
}

// NewSMTPClient builds a go-mail client for cfg using PLAIN auth.
func NewSMTPClient(cfg SMTPConfig) (*mail.Client, error) {
	tls := mail.TLSOpportunistic
	if cfg.UseTLS {
		tls = mail.TLSMandatory
	}

	opts := []mail.Option{
		mail.WithPort(cfg.Port),
		mail.WithSMTPAuth(mail.SMTPAuthPlain),
		mail.WithUsername(cfg.Username),
		mail.WithPassword(cfg.Password),
		mail.WithTLSPolicy(tls),
	}
	if cfg.Timeout > 0 {
		opts = append(opts, mail.WithTimeout(cfg.Timeout))
	}

	return mail.NewClient(cfg.Host, opts...)
}

func NewSMTPSender(dialer Dialer, from string, logger *slog.Logger) *SMTPSender {
	return &SMTPSender{
		dialer: dialer,
		from:   from,
		logger: logger,
	}
}

// SendEmail reports transport and addressing problems as OK=false.
func (s *SMTPSender) SendEmail(ctx context.Context, msg ports.EmailMessage) (ports.SendResult, error) {
	from := msg.From
	if from == "" {
		from = s.from
	}

	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return s.fail(ctx, msg, "invalid sender address: "+err.Error()), nil
	}
	if err := m.To(msg.To); err != nil {
		return s.fail(ctx, msg, "invalid recipient address: "+err.Error()), nil
	}
	m.Subject(msg.Subject)
	m.SetBodyString(mail.TypeTextPlain, msg.Body)
	m.SetMessageID()
	m.SetDate()

	if err := s.dialer.DialAndSendWithContext(ctx, m); err != nil {
		return s.fail(ctx, msg, err.Error()), nil
	}

	id := newMessageID("smtp")
	s.logger.InfoContext(ctx, "email sent",
		"to", msg.To,
		"message_id", id,
	)
	return ports.Sent(id), nil
}

func (s *SMTPSender) fail(ctx context.Context, msg ports.EmailMessage, reason string) ports.SendResult {
	s.logger.ErrorContext(ctx, "failed to send email",
		"to", msg.To,
		"error", reason,
	)
	return ports.NotSent(reason)
}

// newMessageID returns prefix-xxxxxxxx with eight random hex characters.
func newMessageID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
