package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"reflect"
	"strings"
	"unicode"

	validatorv10 "github.com/go-playground/validator/v10"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

const maxBodyBytes = 1 << 20

var errBodyTooLarge = errors.New("request body too large")

// minPhoneDigits is the smallest number of digits a contact phone may carry.
const minPhoneDigits = 10

type ReturnWorkflowRequest struct {
	Vendor         string   `json:"vendor" validate:"required"`
	OrderID        string   `json:"order_id" validate:"required"`
	ItemSKU        string   `json:"item_sku" validate:"required"`
	Intent         string   `json:"intent" validate:"required,oneof=return refund replacement"`
	Reason         string   `json:"reason" validate:"required,oneof=damaged missing wrong_item not_as_described other"`
	EvidenceURLs   []string `json:"evidence_urls"`
	ContactEmail   string   `json:"contact_email,omitempty" validate:"omitempty,email"`
	ContactPhone   string   `json:"contact_phone,omitempty" validate:"omitempty,phone"`
	IdempotencyKey string   `json:"idempotency_key,omitempty"`
}

func (r ReturnWorkflowRequest) toDomain() domain.RmaRequest {
	return domain.RmaRequest{
		Vendor:       r.Vendor,
		OrderID:      r.OrderID,
		ItemSKU:      r.ItemSKU,
		Intent:       domain.Intent(r.Intent),
		Reason:       domain.Reason(r.Reason),
		EvidenceURLs: r.EvidenceURLs,
		ContactEmail: r.ContactEmail,
		ContactPhone: r.ContactPhone,
	}
}

type MakeRmaEmailRequest struct {
	Vendor       string   `json:"vendor" validate:"required"`
	OrderID      string   `json:"order_id" validate:"required"`
	ItemSKU      string   `json:"item_sku" validate:"required"`
	Intent       string   `json:"intent" validate:"required,oneof=return refund replacement"`
	Reason       string   `json:"reason" validate:"required,oneof=damaged missing wrong_item not_as_described other"`
	EvidenceURLs []string `json:"evidence_urls"`
	ContactEmail string   `json:"contact_email,omitempty" validate:"omitempty,email"`
}

func (r MakeRmaEmailRequest) toDomain() domain.RmaRequest {
	return domain.RmaRequest{
		Vendor:       r.Vendor,
		OrderID:      r.OrderID,
		ItemSKU:      r.ItemSKU,
		Intent:       domain.Intent(r.Intent),
		Reason:       domain.Reason(r.Reason),
		EvidenceURLs: r.EvidenceURLs,
		ContactEmail: r.ContactEmail,
	}
}

type SendEmailRequest struct {
	To             string `json:"to" validate:"required,email"`
	Subject        string `json:"subject" validate:"required"`
	Body           string `json:"body" validate:"required"`
	IdempotencyKey string `json:"idempotency_key,omitempty"`
}

type SendSMSRequest struct {
	Phone string `json:"phone" validate:"required,phone"`
	Text  string `json:"text" validate:"required"`
}

type LogSubmissionRequest struct {
	Vendor       string `json:"vendor" validate:"required"`
	OrderIDLast4 string `json:"order_id_last4" validate:"required,len=4"`
	Intent       string `json:"intent" validate:"required,oneof=return refund replacement"`
	Reason       string `json:"reason" validate:"required,oneof=damaged missing wrong_item not_as_described other"`
	MsgID        string `json:"msg_id,omitempty"`
}

type PolicyQueryRequest struct {
	Vendor    string `json:"vendor" validate:"required"`
	PolicyKey string `json:"policy_key,omitempty"`
}

// NewValidator returns a validator that also understands the phone tag.
func NewValidator() *validatorv10.Validate {
	v := validatorv10.New()
	v.RegisterTagNameFunc(func(field reflect.StructField) string {
		name, _, _ := strings.Cut(field.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	// Registration only fails for an empty tag or nil func.
	_ = v.RegisterValidation("phone", validatePhone)
	return v
}

func validatePhone(fl validatorv10.FieldLevel) bool {
	digits := 0
	for _, r := range fl.Field().String() {
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return digits >= minPhoneDigits
}

// decodeAndValidate reads a JSON body into out and runs struct validation. The
// returned error is safe to show to the caller.
func decodeAndValidate(w http.ResponseWriter, r *http.Request, v *validatorv10.Validate, out any) error {
	body := http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return errors.New("request body is required")
		}
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return errors.New("invalid JSON payload")
	}

	if err := v.Struct(out); err != nil {
		return validationMessage(err)
	}
	return nil
}

func validationMessage(err error) error {
	var fieldErrs validatorv10.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return err
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		msgs = append(msgs, fieldMessage(fe))
	}
	return errors.New(strings.Join(msgs, "; "))
}

func fieldMessage(fe validatorv10.FieldError) string {
	name := fe.Field()
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", name)
	case "email":
		return "invalid email format"
	case "phone":
		return fmt.Sprintf("phone number must contain at least %d digits", minPhoneDigits)
	case "oneof":
		return fmt.Sprintf("%s must be one of: %s", name, fe.Param())
	case "len":
		return fmt.Sprintf("%s must be exactly %s characters", name, fe.Param())
	default:
		return fmt.Sprintf("%s is invalid", name)
	}
}
