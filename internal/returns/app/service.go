package app

import (
	"context"
	"log/slog"
	"time"

	"github.com/dejobratic/rmaflow/internal/idempotency"
	"github.com/dejobratic/rmaflow/internal/returns/app/commands"
	"github.com/dejobratic/rmaflow/internal/returns/app/queries"
	"github.com/dejobratic/rmaflow/internal/returns/app/steps"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/metrics"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
)

// Operations sharing the idempotency cache. Each gets its own key namespace.
const (
	OperationWorkflowReturn = "workflow_return"
	OperationSendEmail      = "send_email"
)

// Dependencies are the collaborators NewService wires together.
type Dependencies struct {
	Directory      *domain.Directory
	EmailSender    ports.EmailSender
	SMSSender      ports.SMSSender
	Recorder       ports.SubmissionRecorder
	Events         ports.EventBus
	Store          ports.KeyValueStore
	Retry          steps.RetryPolicy
	Timeout        time.Duration
	IdempotencyTTL time.Duration
	Logger         *slog.Logger
	Metrics        *metrics.Metrics
}

// Service bundles the return workflow use cases exposed over HTTP.
type Service struct {
	workflow  commands.WorkflowHandler
	generator commands.GenerateRmaEmailHandler
	policy    *queries.GetVendorPolicyQueryHandler
	info      *queries.GetVendorInfoQueryHandler
	status    *queries.GetWorkflowStatusQueryHandler
	email     *steps.EmailStep
	sms       *steps.SMSStep
	recorder  ports.SubmissionRecorder
	cache     *idempotency.Cache
	metrics   *metrics.Metrics
}

// NewService wires required dependencies.
func NewService(deps Dependencies) *Service {
	emailStep := steps.NewEmailStep(deps.EmailSender, deps.Retry, deps.Logger)
	smsStep := steps.NewSMSStep(deps.SMSSender, deps.Retry, deps.Logger)

	coreGenerator := commands.NewGenerateRmaEmailCommandHandler(deps.Directory)
	generator := commands.NewObservableGenerateRmaEmailHandler(coreGenerator, deps.Logger, deps.Metrics)

	coreWorkflow := commands.NewExecuteReturnWorkflowCommandHandler(generator, emailStep, smsStep, deps.Recorder, deps.Timeout, deps.Logger)
	publishing := commands.NewEventPublishingHandler(coreWorkflow, deps.Events, deps.Logger)
	workflow := commands.NewObservableWorkflowHandler(publishing, deps.Logger, deps.Metrics)

	return &Service{
		workflow:  workflow,
		generator: generator,
		policy:    queries.NewGetVendorPolicyQueryHandler(deps.Directory),
		info:      queries.NewGetVendorInfoQueryHandler(deps.Directory),
		status:    queries.NewGetWorkflowStatusQueryHandler(deps.Directory, deps.Timeout, deps.Retry.MaxAttempts),
		email:     emailStep,
		sms:       smsStep,
		recorder:  deps.Recorder,
		cache:     idempotency.NewCache(deps.Store, deps.IdempotencyTTL, deps.Logger),
		metrics:   deps.Metrics,
	}
}

// ExecuteReturnWorkflow runs the return saga for req. The run is detached from ctx
// cancellation so a disconnecting caller cannot stop it halfway; its own deadline still
// applies.
func (s *Service) ExecuteReturnWorkflow(ctx context.Context, req domain.RmaRequest) domain.WorkflowResult {
	return s.workflow.Handle(context.WithoutCancel(ctx), commands.ExecuteReturnWorkflowCommand{Request: req})
}

// GenerateRmaEmail validates req and renders the vendor email without sending it.
func (s *Service) GenerateRmaEmail(ctx context.Context, req domain.RmaRequest) (commands.GeneratedEmail, error) {
	return s.generator.Handle(ctx, commands.GenerateRmaEmailCommand{Request: req})
}

// SendEmail delivers one email with the workflow's retry policy.
func (s *Service) SendEmail(ctx context.Context, email domain.RmaEmail) (ports.SendResult, error) {
	return s.email.Send(ctx, email)
}

// SendSMS delivers one text message with the workflow's retry policy.
func (s *Service) SendSMS(ctx context.Context, phone, text string) (ports.SendResult, error) {
	return s.sms.Send(ctx, phone, text)
}

// LogSubmission records an RMA submission in the audit trail.
func (s *Service) LogSubmission(ctx context.Context, submission domain.Submission) error {
	return s.recorder.Record(ctx, submission)
}

// VendorPolicy returns policy snippets for vendor.
func (s *Service) VendorPolicy(ctx context.Context, vendor, policyKey string) (queries.VendorPolicy, error) {
	return s.policy.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: vendor, PolicyKey: policyKey})
}

// VendorInfo returns the resolved profile summary for vendor.
func (s *Service) VendorInfo(ctx context.Context, vendor string) (domain.VendorInfo, error) {
	return s.info.Handle(ctx, queries.GetVendorInfoQuery{Vendor: vendor})
}

// WorkflowStatus reports the engine's limits and supported vendors.
func (s *Service) WorkflowStatus(ctx context.Context) queries.WorkflowStatusInfo {
	return s.status.Handle(ctx)
}

// GetIdempotentResponse returns the response stored for key under operation, if any.
func (s *Service) GetIdempotentResponse(ctx context.Context, operation, key string) (idempotency.Entry, bool) {
	var entry idempotency.Entry
	if !s.cache.Scoped(operation).Check(ctx, key, &entry) {
		return idempotency.Entry{}, false
	}
	s.metrics.RecordIdempotencyReplay(ctx, operation)
	return entry, true
}

// SaveIdempotentResponse stores entry for key under operation. It reports false when
// the store failed or the key was already taken.
func (s *Service) SaveIdempotentResponse(ctx context.Context, operation, key string, entry idempotency.Entry) bool {
	if entry.StoredAt.IsZero() {
		entry.StoredAt = time.Now().UTC()
	}
	return s.cache.Scoped(operation).Store(ctx, key, entry)
}
