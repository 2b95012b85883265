package app_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"testing"
	"time"

	sdkmetric "go.opentelemetry.io/otel/sdk/metric"

	"github.com/dejobratic/rmaflow/internal/idempotency"
	"github.com/dejobratic/rmaflow/internal/idempotency/memory"
	"github.com/dejobratic/rmaflow/internal/returns/app"
	"github.com/dejobratic/rmaflow/internal/returns/app/steps"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

type countingEmailSender struct {
	calls int
}

func (c *countingEmailSender) SendEmail(ctx context.Context, msg ports.EmailMessage) (ports.SendResult, error) {
	c.calls++
	return ports.Sent("smtp-0000cafe"), nil
}

type countingSMSSender struct {
	calls int
}

func (c *countingSMSSender) SendSMS(ctx context.Context, phone, text string) (ports.SendResult, error) {
	c.calls++
	return ports.Sent("sms-0000beef"), nil
}

type nopRecorder struct{}

func (nopRecorder) Record(ctx context.Context, submission domain.Submission) error { return nil }

type nopEventBus struct{}

func (nopEventBus) PublishWorkflowCompleted(ctx context.Context, event ports.WorkflowEvent) error {
	return nil
}

func (nopEventBus) PublishWorkflowFailed(ctx context.Context, event ports.WorkflowEvent) error {
	return nil
}

func newService(t *testing.T, email ports.EmailSender, sms ports.SMSSender) *app.Service {
	t.Helper()

	m, err := metrics.NewMetrics(sdkmetric.NewMeterProvider().Meter("test"))
	if err != nil {
		t.Fatalf("NewMetrics() failed: %v", err)
	}

	return app.NewService(app.Dependencies{
		Directory:      domain.DefaultDirectory(),
		EmailSender:    email,
		SMSSender:      sms,
		Recorder:       nopRecorder{},
		Events:         nopEventBus{},
		Store:          memory.NewStore(),
		Retry:          steps.RetryPolicy{MaxAttempts: 2, Pause: time.Millisecond},
		Timeout:        time.Minute,
		IdempotencyTTL: time.Hour,
		Logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
		Metrics:        m,
	})
}

func TestServiceExecuteReturnWorkflow(t *testing.T) {
	email, sms := &countingEmailSender{}, &countingSMSSender{}
	svc := newService(t, email, sms)

	result := svc.ExecuteReturnWorkflow(context.Background(), domain.RmaRequest{
		Vendor:       "walmart",
		OrderID:      "WM-99887766",
		ItemSKU:      "SKU-1",
		Intent:       domain.IntentRefund,
		Reason:       domain.ReasonWrongItem,
		ContactPhone: "+15551234567",
	})

	if result.Status != domain.StatusCompleted {
		t.Fatalf("expected completed, got %+v", result)
	}
	if email.calls != 1 || sms.calls != 1 {
		t.Errorf("expected one email and one sms, got %d/%d", email.calls, sms.calls)
	}
}

func TestServiceWorkflowSurvivesCallerCancellation(t *testing.T) {
	svc := newService(t, &countingEmailSender{}, &countingSMSSender{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	result := svc.ExecuteReturnWorkflow(ctx, domain.RmaRequest{
		Vendor:  "walmart",
		OrderID: "WM-1",
		ItemSKU: "SKU-1",
		Intent:  domain.IntentReturn,
		Reason:  domain.ReasonOther,
	})

	if result.Status != domain.StatusCompleted {
		t.Fatalf("expected completed despite cancelled caller, got %+v", result)
	}
}

func TestServiceIdempotentResponses(t *testing.T) {
	svc := newService(t, &countingEmailSender{}, &countingSMSSender{})
	ctx := context.Background()

	if _, ok := svc.GetIdempotentResponse(ctx, app.OperationWorkflowReturn, "key-1"); ok {
		t.Fatal("expected miss before store")
	}

	entry := idempotency.Entry{StatusCode: 200, Body: json.RawMessage(`{"status":"completed"}`)}
	if !svc.SaveIdempotentResponse(ctx, app.OperationWorkflowReturn, "key-1", entry) {
		t.Fatal("expected first save to succeed")
	}
	if svc.SaveIdempotentResponse(ctx, app.OperationWorkflowReturn, "key-1", entry) {
		t.Error("expected second save of the same key to be rejected")
	}

	got, ok := svc.GetIdempotentResponse(ctx, app.OperationWorkflowReturn, "key-1")
	if !ok {
		t.Fatal("expected hit after store")
	}
	if got.StatusCode != 200 || string(got.Body) != `{"status":"completed"}` || got.StoredAt.IsZero() {
		t.Errorf("unexpected entry %+v", got)
	}

	if _, ok := svc.GetIdempotentResponse(ctx, app.OperationSendEmail, "key-1"); ok {
		t.Error("expected operations not to share keys")
	}
}

func TestServiceQueries(t *testing.T) {
	svc := newService(t, &countingEmailSender{}, &countingSMSSender{})
	ctx := context.Background()

	status := svc.WorkflowStatus(ctx)
	if status.MaxRetries != 2 || status.MaxExecutionTime != 60 {
		t.Errorf("unexpected status %+v", status)
	}

	policy, err := svc.VendorPolicy(ctx, "target", "return_window")
	if err != nil || len(policy.Policies) != 1 {
		t.Errorf("unexpected policy %+v, %v", policy, err)
	}
}
