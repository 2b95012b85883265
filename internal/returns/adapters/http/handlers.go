package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dejobratic/rmaflow/internal/idempotency"
	"github.com/dejobratic/rmaflow/internal/returns/app"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// ReplayedHeader marks a response served from the idempotency cache.
const ReplayedHeader = "Idempotent-Replayed"

const readinessTimeout = 2 * time.Second

// ReadinessCheck probes one backend the service depends on.
type ReadinessCheck struct {
	Name  string
	Check func(ctx context.Context) error
}

// Handler exposes HTTP endpoints for the return workflow and its tools.
type Handler struct {
	service  *app.Service
	validate *validatorv10.Validate
	logger   *slog.Logger
	version  string
	checks   []ReadinessCheck
}

// NewHandler constructs a Handler.
func NewHandler(service *app.Service, logger *slog.Logger, version string, checks ...ReadinessCheck) *Handler {
	return &Handler{
		service:  service,
		validate: NewValidator(),
		logger:   logger,
		version:  version,
		checks:   checks,
	}
}

// Register binds the handlers to r.
func (h *Handler) Register(r chi.Router) {
	r.Get("/health", h.health)
	r.Get("/readyz", h.ready)

	r.Route("/workflow", func(r chi.Router) {
		r.Post("/return", h.executeReturnWorkflow)
		r.Post("/policy", h.queryVendorPolicy)
		r.Get("/status", h.workflowStatus)
		r.Get("/vendors/{vendor}", h.vendorInfo)
	})

	r.Route("/tools", func(r chi.Router) {
		r.Post("/make_rma_email", h.makeRmaEmail)
		r.Post("/send_email", h.sendEmail)
		r.Post("/send_sms", h.sendSMS)
		r.Post("/log_submission", h.logSubmission)
	})
}

func (h *Handler) executeReturnWorkflow(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload ReturnWorkflowRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	idemKey, ok := idempotencyKey(r, payload.IdempotencyKey)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid idempotency key format")
		return
	}
	if h.replay(w, r, app.OperationWorkflowReturn, idemKey) {
		return
	}

	result := h.service.ExecuteReturnWorkflow(ctx, payload.toDomain())

	body, err := json.Marshal(result)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}

	// Failed and timed out runs are left uncached so the caller can retry them.
	if idemKey != "" && result.Status == domain.StatusCompleted {
		h.service.SaveIdempotentResponse(ctx, app.OperationWorkflowReturn, idemKey, idempotency.Entry{
			StatusCode: http.StatusOK,
			Body:       body,
		})
	}

	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) queryVendorPolicy(w http.ResponseWriter, r *http.Request) {
	var payload PolicyQueryRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	policy, err := h.service.VendorPolicy(r.Context(), payload.Vendor, payload.PolicyKey)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, policy)
}

func (h *Handler) workflowStatus(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.WorkflowStatus(r.Context()))
}

func (h *Handler) vendorInfo(w http.ResponseWriter, r *http.Request) {
	info, err := h.service.VendorInfo(r.Context(), chi.URLParam(r, "vendor"))
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, info)
}

func (h *Handler) makeRmaEmail(w http.ResponseWriter, r *http.Request) {
	var payload MakeRmaEmailRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	generated, err := h.service.GenerateRmaEmail(r.Context(), payload.toDomain())
	if err != nil {
		if domain.IsValidationError(err) {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
		h.logger.ErrorContext(r.Context(), "rma email generation failed", "vendor", payload.Vendor, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
		return
	}
	writeJSON(w, http.StatusOK, generated.Email)
}

func (h *Handler) sendEmail(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var payload SendEmailRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	idemKey, ok := idempotencyKey(r, payload.IdempotencyKey)
	if !ok {
		writeError(w, http.StatusBadRequest, "invalid idempotency key format")
		return
	}
	if h.replay(w, r, app.OperationSendEmail, idemKey) {
		return
	}

	res, err := h.service.SendEmail(ctx, domain.RmaEmail{
		To:      payload.To,
		Subject: payload.Subject,
		Body:    payload.Body,
	})
	if err != nil || !res.OK {
		h.logger.ErrorContext(ctx, "tool email send failed", "reason", res.Reason, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send email")
		return
	}

	body, err := json.Marshal(sendResponse{OK: true, MsgID: res.MessageID})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if idemKey != "" {
		h.service.SaveIdempotentResponse(ctx, app.OperationSendEmail, idemKey, idempotency.Entry{
			StatusCode: http.StatusOK,
			Body:       body,
		})
	}

	writeRaw(w, http.StatusOK, body)
}

func (h *Handler) sendSMS(w http.ResponseWriter, r *http.Request) {
	var payload SendSMSRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	res, err := h.service.SendSMS(r.Context(), payload.Phone, payload.Text)
	if err != nil || !res.OK {
		h.logger.ErrorContext(r.Context(), "tool sms send failed", "phone", payload.Phone, "reason", res.Reason, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to send sms")
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{OK: true, MsgID: res.MessageID})
}

func (h *Handler) logSubmission(w http.ResponseWriter, r *http.Request) {
	var payload LogSubmissionRequest
	if err := decodeAndValidate(w, r, h.validate, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	err := h.service.LogSubmission(r.Context(), domain.Submission{
		Vendor:       payload.Vendor,
		OrderIDLast4: payload.OrderIDLast4,
		Intent:       domain.Intent(payload.Intent),
		Reason:       domain.Reason(payload.Reason),
		MsgID:        payload.MsgID,
	})
	if err != nil {
		h.logger.ErrorContext(r.Context(), "tool submission log failed", "vendor", payload.Vendor, "error", err)
		writeError(w, http.StatusInternalServerError, "failed to log submission")
		return
	}
	writeJSON(w, http.StatusOK, sendResponse{OK: true})
}

func (h *Handler) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{
		"status":    "healthy",
		"version":   h.version,
		"timestamp": time.Now().UTC(),
	})
}

func (h *Handler) ready(w http.ResponseWriter, r *http.Request) {
	results := make(map[string]string, len(h.checks))
	status := http.StatusOK

	for _, check := range h.checks {
		ctx, cancel := context.WithTimeout(r.Context(), readinessTimeout)
		err := check.Check(ctx)
		cancel()

		if err != nil {
			h.logger.WarnContext(r.Context(), "readiness check failed", "check", check.Name, "error", err)
			results[check.Name] = err.Error()
			status = http.StatusServiceUnavailable
			continue
		}
		results[check.Name] = "ok"
	}

	state := "ready"
	if status != http.StatusOK {
		state = "not_ready"
	}
	writeJSON(w, status, map[string]any{"status": state, "checks": results})
}

// replay writes the stored response for key and reports whether it did.
func (h *Handler) replay(w http.ResponseWriter, r *http.Request, operation, key string) bool {
	if key == "" {
		return false
	}
	entry, found := h.service.GetIdempotentResponse(r.Context(), operation, key)
	if !found {
		return false
	}

	h.logger.InfoContext(r.Context(), "replaying idempotent response", "operation", operation, "idempotency_key", key)
	w.Header().Set(ReplayedHeader, "true")
	writeRaw(w, entry.StatusCode, entry.Body)
	return true
}

// idempotencyKey prefers the Idempotency-Key header over the body field. It reports
// false when a key was supplied but is malformed.
func idempotencyKey(r *http.Request, fromBody string) (string, bool) {
	key := strings.TrimSpace(r.Header.Get("Idempotency-Key"))
	if key == "" {
		key = strings.TrimSpace(fromBody)
	}
	if key == "" {
		return "", true
	}
	return key, idempotency.ValidKey(key)
}

type sendResponse struct {
	OK    bool   `json:"ok"`
	MsgID string `json:"msg_id,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func writeRaw(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]any{"error": message})
}

