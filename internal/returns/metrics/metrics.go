package metrics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

type Metrics struct {
	workflowsTotal     metric.Int64Counter
	workflowDuration   metric.Float64Histogram
	rmaEmailsGenerated metric.Int64Counter
	emailsSentTotal    metric.Int64Counter
	smsSentTotal       metric.Int64Counter
	submissionsLogged  metric.Int64Counter
	idempotencyReplays metric.Int64Counter
}

func NewMetrics(meter metric.Meter) (*Metrics, error) {
	m := &Metrics{}

	var err error

	m.workflowsTotal, err = meter.Int64Counter(
		"workflows_total",
		metric.WithDescription("Total number of return workflow runs by terminal status"),
		metric.WithUnit("{workflow}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create workflows_total counter: %w", err)
	}

	m.workflowDuration, err = meter.Float64Histogram(
		"workflow_duration_seconds",
		metric.WithDescription("Duration of return workflow runs"),
		metric.WithUnit("s"),
	)
	if err != nil {
		return nil, fmt.Errorf("create workflow_duration histogram: %w", err)
	}

	m.rmaEmailsGenerated, err = meter.Int64Counter(
		"rma_emails_generated_total",
		metric.WithDescription("Total number of RMA emails generated"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create rma_emails_generated_total counter: %w", err)
	}

	m.emailsSentTotal, err = meter.Int64Counter(
		"emails_sent_total",
		metric.WithDescription("Total number of email deliveries by outcome"),
		metric.WithUnit("{email}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create emails_sent_total counter: %w", err)
	}

	m.smsSentTotal, err = meter.Int64Counter(
		"sms_sent_total",
		metric.WithDescription("Total number of SMS deliveries by outcome"),
		metric.WithUnit("{sms}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create sms_sent_total counter: %w", err)
	}

	m.submissionsLogged, err = meter.Int64Counter(
		"submissions_logged_total",
		metric.WithDescription("Total number of RMA submissions recorded"),
		metric.WithUnit("{submission}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create submissions_logged_total counter: %w", err)
	}

	m.idempotencyReplays, err = meter.Int64Counter(
		"idempotency_replays_total",
		metric.WithDescription("Total number of responses served from the idempotency cache"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create idempotency_replays_total counter: %w", err)
	}

	return m, nil
}

func (m *Metrics) RecordWorkflow(ctx context.Context, status string, durationSeconds float64) {
	attrs := metric.WithAttributes(attribute.String("status", status))
	m.workflowsTotal.Add(ctx, 1, attrs)
	m.workflowDuration.Record(ctx, durationSeconds, attrs)
}

func (m *Metrics) RecordRmaEmailGenerated(ctx context.Context, vendor, intent, reason string) {
	m.rmaEmailsGenerated.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("intent", intent),
		attribute.String("reason", reason),
	))
}

func (m *Metrics) RecordEmailSent(ctx context.Context, success bool) {
	m.emailsSentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", statusLabel(success))))
}

func (m *Metrics) RecordSMSSent(ctx context.Context, success bool) {
	m.smsSentTotal.Add(ctx, 1, metric.WithAttributes(attribute.String("status", statusLabel(success))))
}

func (m *Metrics) RecordSubmissionLogged(ctx context.Context, vendor, intent string) {
	m.submissionsLogged.Add(ctx, 1, metric.WithAttributes(
		attribute.String("vendor", vendor),
		attribute.String("intent", intent),
	))
}

func (m *Metrics) RecordIdempotencyReplay(ctx context.Context, operation string) {
	m.idempotencyReplays.Add(ctx, 1, metric.WithAttributes(attribute.String("operation", operation)))
}

func statusLabel(success bool) string {
	if success {
		return "success"
	}
	return "error"
}
