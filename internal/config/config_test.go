package config_test

import (
	"errors"
	"testing"
	"time"

	"github.com/dejobratic/rmaflow/internal/config"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTP.Port != 8787 {
		t.Errorf("expected port 8787, got %d", cfg.HTTP.Port)
	}
	if cfg.Idempotency.Backend != config.BackendRedis {
		t.Errorf("expected redis idempotency backend, got %s", cfg.Idempotency.Backend)
	}
	if cfg.Idempotency.TTL != time.Hour {
		t.Errorf("expected 1h ttl, got %s", cfg.Idempotency.TTL)
	}
	if cfg.Workflow.MaxAttempts != 2 || cfg.Workflow.RetryPause != time.Second {
		t.Errorf("unexpected retry policy: %+v", cfg.Workflow)
	}
	if cfg.Workflow.Timeout != 120*time.Second {
		t.Errorf("expected 120s workflow timeout, got %s", cfg.Workflow.Timeout)
	}
	if cfg.Email.Provider != config.ProviderAuto || cfg.SMS.Provider != config.ProviderAuto {
		t.Errorf("expected auto providers, got %s/%s", cfg.Email.Provider, cfg.SMS.Provider)
	}
	if cfg.Email.SMTPConfigured() || cfg.SMS.HTTPConfigured() {
		t.Error("expected transports to be unconfigured by default")
	}
	if cfg.Telemetry.EnableTracing || cfg.Telemetry.EnableMetrics {
		t.Error("expected telemetry export off without an endpoint")
	}
	if cfg.UsesPostgres() || cfg.UsesAWS() {
		t.Error("expected defaults to need neither postgres nor aws")
	}
}

func TestLoadFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("IDEMPOTENCY_BACKEND", "DynamoDB")
	t.Setenv("IDEMPOTENCY_TTL_SECONDS", "60")
	t.Setenv("SMTP_HOST", "smtp.example.com")
	t.Setenv("SMTP_USERNAME", "bot@example.com")
	t.Setenv("SMTP_PASSWORD", "secret")
	t.Setenv("SMS_API_URL", "https://sms.example.com/send")
	t.Setenv("SMS_API_KEY", "key")
	t.Setenv("EVENTS_BACKEND", "kafka")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092")
	t.Setenv("SUBMISSIONS_BACKEND", "postgres")
	t.Setenv("WORKFLOW_MAX_ATTEMPTS", "3")
	t.Setenv("WORKFLOW_RETRY_PAUSE", "250ms")
	t.Setenv("WORKFLOW_TIMEOUT", "30")
	t.Setenv("OTEL_EXPORTER_OTLP_ENDPOINT", "collector:4317")

	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.HTTP.Port != 9090 {
		t.Errorf("expected port 9090, got %d", cfg.HTTP.Port)
	}
	if cfg.Idempotency.Backend != config.BackendDynamoDB || cfg.Idempotency.TTL != time.Minute {
		t.Errorf("unexpected idempotency config: %+v", cfg.Idempotency)
	}
	if !cfg.Email.SMTPConfigured() || cfg.Email.Sender() != "bot@example.com" {
		t.Errorf("expected smtp configured with username as sender: %+v", cfg.Email)
	}
	if !cfg.SMS.HTTPConfigured() {
		t.Error("expected sms gateway configured")
	}
	if len(cfg.Events.Brokers) != 2 || cfg.Events.Brokers[1] != "k2:9092" {
		t.Errorf("unexpected brokers: %v", cfg.Events.Brokers)
	}
	if cfg.Workflow.MaxAttempts != 3 || cfg.Workflow.RetryPause != 250*time.Millisecond || cfg.Workflow.Timeout != 30*time.Second {
		t.Errorf("unexpected workflow config: %+v", cfg.Workflow)
	}
	if !cfg.Telemetry.EnableTracing || !cfg.Telemetry.EnableMetrics {
		t.Error("expected telemetry export on with an endpoint")
	}
	if !cfg.UsesPostgres() || !cfg.UsesAWS() {
		t.Error("expected postgres and aws to be required")
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{name: "port not a number", key: "PORT", value: "http"},
		{name: "unknown idempotency backend", key: "IDEMPOTENCY_BACKEND", value: "etcd"},
		{name: "zero attempts", key: "WORKFLOW_MAX_ATTEMPTS", value: "0"},
		{name: "bad duration", key: "WORKFLOW_TIMEOUT", value: "soon"},
		{name: "unknown email provider", key: "EMAIL_PROVIDER", value: "pigeon"},
		{name: "http sms without gateway", key: "SMS_PROVIDER", value: "http"},
		{name: "kafka without brokers", key: "EVENTS_BACKEND", value: "kafka"},
		{name: "sqs without queue", key: "EVENTS_BACKEND", value: "sqs"},
		{name: "unknown submissions backend", key: "SUBMISSIONS_BACKEND", value: "s3"},
		{name: "bad sample rate", key: "OTEL_SAMPLE_RATE", value: "most"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			if _, err := config.Load(); err == nil {
				t.Fatalf("expected error for %s=%s", tt.key, tt.value)
			}
		})
	}
}

func TestValidateWrapsSentinel(t *testing.T) {
	cfg, err := config.Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	cfg.Workflow.Timeout = 0
	cfg.Idempotency.TTL = 0

	err = cfg.Validate()
	if !errors.Is(err, config.ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}
