package domain

// WorkflowStatus is the terminal (or reserved) state reported to callers.
type WorkflowStatus string

const (
	// StatusPending and StatusInProgress are reserved; runs only terminate in
	// COMPLETED, FAILED or TIMEOUT.
	StatusPending    WorkflowStatus = "pending"
	StatusInProgress WorkflowStatus = "in_progress"
	StatusCompleted  WorkflowStatus = "completed"
	StatusFailed     WorkflowStatus = "failed"
	StatusTimeout    WorkflowStatus = "timeout"
)

// Stage marks progress through one run.
type Stage string

const (
	StageStarted         Stage = "STARTED"
	StageEmailGenerated  Stage = "EMAIL_GENERATED"
	StageEmailSent       Stage = "EMAIL_SENT"
	StageEmailFailed     Stage = "EMAIL_FAILED"
	StageSMSFallbackSent Stage = "SMS_FALLBACK_SENT"
	StageLogged          Stage = "LOGGED"
	StageSMSConfirmed    Stage = "SMS_CONFIRMED"
	StageCompleted       Stage = "COMPLETED"
	StageFailed          Stage = "FAILED"
	StageTimedOut        Stage = "TIMEOUT"
)

// WorkflowData carries the per-step outcome flags of a run.
type WorkflowData struct {
	EmailSent bool   `json:"email_sent"`
	SMSSent   bool   `json:"sms_sent"`
	Logged    *bool  `json:"logged,omitempty"`
	MsgID     string `json:"msg_id,omitempty"`
	ToEmail   string `json:"to_email,omitempty"`
	Subject   string `json:"subject,omitempty"`
}

// WorkflowResult is the outcome of one orchestrator run.
type WorkflowResult struct {
	Status        WorkflowStatus `json:"status"`
	Message       string         `json:"message"`
	Data          *WorkflowData  `json:"data,omitempty"`
	Error         string         `json:"error,omitempty"`
	ExecutionTime float64        `json:"execution_time"`
}

// IsTerminal reports whether the status ends a run.
func (s WorkflowStatus) IsTerminal() bool {
	switch s {
	case StatusCompleted, StatusFailed, StatusTimeout:
		return true
	default:
		return false
	}
}

// Submission is the audit record written after the RMA email was sent.
type Submission struct {
	Vendor       string `json:"vendor"`
	OrderIDLast4 string `json:"order_id_last4"`
	Intent       Intent `json:"intent"`
	Reason       Reason `json:"reason"`
	MsgID        string `json:"msg_id,omitempty"`
}

// NewSubmission builds the audit record for req, keeping only the tail of the order id.
func NewSubmission(vendor string, req RmaRequest, msgID string) Submission {
	return Submission{
		Vendor:       vendor,
		OrderIDLast4: OrderIDLast4(req.OrderID),
		Intent:       req.Intent,
		Reason:       req.Reason,
		MsgID:        msgID,
	}
}
