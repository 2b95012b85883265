package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
	"github.com/dejobratic/rmaflow/internal/returns/ports"
	"github.com/dejobratic/rmaflow/internal/telemetry"
)

const (
	MessageCompleted       = "Return workflow completed successfully"
	MessageFallbackSMS     = "Email failed, sent fallback SMS"
	MessageGenerateFailed  = "Failed to generate RMA email"
	MessageDeliveryFailed  = "Failed to send email and SMS"
	MessageWorkflowFailed  = "Return workflow failed"
	MessageWorkflowTimeout = "Return workflow timed out"
)

// DefaultWorkflowTimeout bounds one run when no timeout is configured.
const DefaultWorkflowTimeout = 120 * time.Second

type ExecuteReturnWorkflowCommand struct {
	Request domain.RmaRequest
}

// WorkflowHandler runs the return saga. It always produces a terminal result and never
// returns an error or panics.
type WorkflowHandler interface {
	Handle(ctx context.Context, cmd ExecuteReturnWorkflowCommand) domain.WorkflowResult
}

// EmailDelivery sends a rendered RMA email, retrying as configured.
type EmailDelivery interface {
	Send(ctx context.Context, email domain.RmaEmail) (ports.SendResult, error)
}

// SMSDelivery sends a text message, retrying as configured.
type SMSDelivery interface {
	Send(ctx context.Context, phone, text string) (ports.SendResult, error)
}

// ExecuteReturnWorkflowCommandHandler runs generate, send email, log submission and
// confirmation SMS in order. Email is the only step whose failure ends the run; when it
// fails and a phone is known, a fallback SMS replaces the remaining steps.
type ExecuteReturnWorkflowCommandHandler struct {
	generator GenerateRmaEmailHandler
	email     EmailDelivery
	sms       SMSDelivery
	recorder  ports.SubmissionRecorder
	timeout   time.Duration
	logger    *slog.Logger
	now       func() time.Time
}

func NewExecuteReturnWorkflowCommandHandler(
	generator GenerateRmaEmailHandler,
	email EmailDelivery,
	sms SMSDelivery,
	recorder ports.SubmissionRecorder,
	timeout time.Duration,
	logger *slog.Logger,
) *ExecuteReturnWorkflowCommandHandler {
	if timeout <= 0 {
		timeout = DefaultWorkflowTimeout
	}
	return &ExecuteReturnWorkflowCommandHandler{
		generator: generator,
		email:     email,
		sms:       sms,
		recorder:  recorder,
		timeout:   timeout,
		logger:    logger,
		now:       time.Now,
	}
}

func (h *ExecuteReturnWorkflowCommandHandler) Handle(ctx context.Context, cmd ExecuteReturnWorkflowCommand) (result domain.WorkflowResult) {
	start := h.now()
	req := cmd.Request

	defer func() {
		if r := recover(); r != nil {
			h.logger.ErrorContext(ctx, "return workflow failed",
				"error", r,
				"vendor", req.Vendor,
				"order_id", req.OrderID,
			)
			h.stage(ctx, domain.StageFailed)
			result = domain.WorkflowResult{
				Status:  domain.StatusFailed,
				Message: MessageWorkflowFailed,
				Error:   fmt.Sprint(r),
			}
		}
		result.ExecutionTime = h.now().Sub(start).Seconds()
	}()

	ctx, cancel := context.WithTimeout(ctx, h.timeout)
	defer cancel()

	return h.run(ctx, req)
}

func (h *ExecuteReturnWorkflowCommandHandler) run(ctx context.Context, req domain.RmaRequest) domain.WorkflowResult {
	h.stage(ctx, domain.StageStarted)

	generated, err := h.generator.Handle(ctx, GenerateRmaEmailCommand{Request: req})
	if err != nil {
		h.stage(ctx, domain.StageFailed)
		return domain.WorkflowResult{
			Status:  domain.StatusFailed,
			Message: MessageGenerateFailed,
			Error:   err.Error(),
		}
	}
	h.stage(ctx, domain.StageEmailGenerated)

	sent, err := h.email.Send(ctx, generated.Email)
	if err != nil || !sent.OK {
		h.stage(ctx, domain.StageEmailFailed)
		return h.fallback(ctx, req, failureReason(sent, err))
	}
	h.stage(ctx, domain.StageEmailSent)

	data := &domain.WorkflowData{
		EmailSent: true,
		MsgID:     sent.MessageID,
		ToEmail:   generated.Email.To,
		Subject:   generated.Email.Subject,
	}

	if ctx.Err() != nil {
		h.logger.WarnContext(ctx, "workflow deadline reached after email was sent, skipping remaining steps",
			"vendor", generated.Vendor.Key,
			"msg_id", sent.MessageID,
		)
		data.Logged = boolPtr(false)
		return h.completed(ctx, data)
	}

	logged := h.logSubmission(ctx, domain.NewSubmission(generated.Vendor.Key, req, sent.MessageID))
	data.Logged = boolPtr(logged)

	data.SMSSent = h.confirm(ctx, req, sent.MessageID)

	return h.completed(ctx, data)
}

// fallback handles an exhausted email step.
func (h *ExecuteReturnWorkflowCommandHandler) fallback(ctx context.Context, req domain.RmaRequest, emailFailure string) domain.WorkflowResult {
	if timedOut(ctx) {
		return h.timedOut(ctx, emailFailure)
	}

	if req.HasPhone() {
		sms, err := h.sms.Send(ctx, req.ContactPhone, domain.FallbackSMSText(req.Vendor, req.OrderID))
		if err == nil && sms.OK {
			h.stage(ctx, domain.StageSMSFallbackSent)
			h.stage(ctx, domain.StageCompleted)
			return domain.WorkflowResult{
				Status:  domain.StatusCompleted,
				Message: MessageFallbackSMS,
				Data: &domain.WorkflowData{
					EmailSent: false,
					SMSSent:   true,
					MsgID:     sms.MessageID,
				},
			}
		}
		h.logger.WarnContext(ctx, "fallback sms failed",
			"phone", req.ContactPhone,
			"error", failureReason(sms, err),
		)
		if timedOut(ctx) {
			return h.timedOut(ctx, emailFailure)
		}
	}

	h.stage(ctx, domain.StageFailed)
	return domain.WorkflowResult{
		Status:  domain.StatusFailed,
		Message: MessageDeliveryFailed,
		Error:   emailFailure,
	}
}

func (h *ExecuteReturnWorkflowCommandHandler) logSubmission(ctx context.Context, submission domain.Submission) (logged bool) {
	defer func() {
		if r := recover(); r != nil {
			h.logger.WarnContext(ctx, "failed to log submission", "vendor", submission.Vendor, "error", r)
			logged = false
		}
	}()

	if err := h.recorder.Record(ctx, submission); err != nil {
		h.logger.WarnContext(ctx, "failed to log submission",
			"vendor", submission.Vendor,
			"order_id_last4", submission.OrderIDLast4,
			"error", err,
		)
		return false
	}
	h.stage(ctx, domain.StageLogged)
	return true
}

func (h *ExecuteReturnWorkflowCommandHandler) confirm(ctx context.Context, req domain.RmaRequest, msgID string) bool {
	if !req.HasPhone() {
		h.logger.DebugContext(ctx, "confirmation sms skipped", "reason", "no phone number provided")
		return false
	}
	if ctx.Err() != nil {
		h.logger.WarnContext(ctx, "workflow deadline reached, skipping confirmation sms")
		return false
	}

	sms, err := h.sms.Send(ctx, req.ContactPhone, domain.ConfirmationSMSText(msgID))
	if err != nil || !sms.OK {
		h.logger.WarnContext(ctx, "failed to send confirmation sms",
			"phone", req.ContactPhone,
			"error", failureReason(sms, err),
		)
		return false
	}
	h.stage(ctx, domain.StageSMSConfirmed)
	return true
}

func (h *ExecuteReturnWorkflowCommandHandler) completed(ctx context.Context, data *domain.WorkflowData) domain.WorkflowResult {
	h.stage(ctx, domain.StageCompleted)
	return domain.WorkflowResult{
		Status:  domain.StatusCompleted,
		Message: MessageCompleted,
		Data:    data,
	}
}

func (h *ExecuteReturnWorkflowCommandHandler) timedOut(ctx context.Context, emailFailure string) domain.WorkflowResult {
	h.stage(ctx, domain.StageTimedOut)
	return domain.WorkflowResult{
		Status:  domain.StatusTimeout,
		Message: MessageWorkflowTimeout,
		Error:   fmt.Sprintf("deadline of %s exceeded before delivery: %s", h.timeout, emailFailure),
	}
}

func (h *ExecuteReturnWorkflowCommandHandler) stage(ctx context.Context, stage domain.Stage) {
	telemetry.RecordStage(ctx, string(stage))
	h.logger.DebugContext(ctx, "workflow stage", "stage", stage)
}

func timedOut(ctx context.Context) bool {
	return errors.Is(ctx.Err(), context.DeadlineExceeded)
}

func failureReason(res ports.SendResult, err error) string {
	switch {
	case err != nil:
		return err.Error()
	case res.Reason != "":
		return res.Reason
	default:
		return "send failed"
	}
}

func boolPtr(v bool) *bool {
	return &v
}
