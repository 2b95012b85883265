// Package sms delivers text messages through a JSON HTTP gateway, Amazon SNS or a
// logging stub.
package sms

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/dejobratic/rmaflow/internal/returns/ports"
	"github.com/dejobratic/rmaflow/internal/telemetry"
)

// DefaultTimeout bounds one gateway call.
const DefaultTimeout = 30 * time.Second

type gatewayRequest struct {
	To      string `json:"to"`
	Message string `json:"message"`
	APIKey  string `json:"api_key"`
}

// HTTPSender posts messages to a JSON SMS gateway.
type HTTPSender struct {
	client *http.Client
	url    string
	apiKey string
	logger *slog.Logger
}

func NewHTTPSender(client *http.Client, url, apiKey string, logger *slog.Logger) *HTTPSender {
	if client == nil {
		client = &http.Client{Timeout: DefaultTimeout}
	}
	return &HTTPSender{
		client: client,
		url:    url,
		apiKey: apiKey,
		logger: logger,
	}
}

// SendSMS treats any non-2xx answer or transport error as an expected failure.
func (s *HTTPSender) SendSMS(ctx context.Context, phone, text string) (ports.SendResult, error) {
	payload, err := json.Marshal(gatewayRequest{To: phone, Message: text, APIKey: s.apiKey})
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("encode sms payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.url, bytes.NewReader(payload))
	if err != nil {
		return ports.SendResult{}, fmt.Errorf("build sms request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		s.logger.ErrorContext(ctx, "failed to send sms", "phone", phone, "error", err)
		return ports.NotSent(err.Error()), nil
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		s.logger.ErrorContext(ctx, "sms api error",
			"phone", phone,
			"status_code", resp.StatusCode,
			"response", telemetry.Redact(string(body)),
		)
		return ports.NotSent(fmt.Sprintf("sms api returned status %d", resp.StatusCode)), nil
	}

	id := newMessageID("sms")
	s.logger.InfoContext(ctx, "sms sent", "phone", phone, "message_id", id)
	return ports.Sent(id), nil
}

func newMessageID(prefix string) string {
	return prefix + "-" + strings.ReplaceAll(uuid.NewString(), "-", "")[:8]
}
