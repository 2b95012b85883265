package domain

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrEvidenceRequired    = errors.New("evidence required")
	ErrTooManyEvidenceURLs = errors.New("too many evidence urls")
	ErrInvalidEvidenceURL  = errors.New("invalid evidence url")
	ErrInvalidIntent       = errors.New("invalid intent")
	ErrInvalidReason       = errors.New("invalid reason")
	ErrInvalidContact      = errors.New("invalid contact")
	ErrMissingField        = errors.New("missing field")
)

// ValidationError is a request problem detected before any side effect runs.
type ValidationError struct {
	Kind    error
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func (e *ValidationError) Unwrap() error {
	return e.Kind
}

// IsValidationError reports whether err came from request validation.
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// ValidateEvidence applies the vendor's evidence rules. Checks run in a fixed order so
// the reported error is deterministic: required, count, then each URL in list order.
func ValidateEvidence(vendor VendorProfile, evidenceURLs []string) error {
	if vendor.RequiresEvidence && len(evidenceURLs) == 0 {
		return &ValidationError{
			Kind:    ErrEvidenceRequired,
			Message: fmt.Sprintf("%s requires evidence for RMA requests", vendor.Name),
		}
	}

	if len(evidenceURLs) > vendor.MaxEvidenceURLs {
		return &ValidationError{
			Kind:    ErrTooManyEvidenceURLs,
			Message: fmt.Sprintf("Too many evidence URLs. Maximum allowed: %d", vendor.MaxEvidenceURLs),
		}
	}

	for _, url := range evidenceURLs {
		if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
			return &ValidationError{
				Kind:    ErrInvalidEvidenceURL,
				Message: fmt.Sprintf("Invalid evidence URL format: %s", url),
			}
		}
	}

	return nil
}

// ValidateRmaRequest runs field validation followed by the vendor's evidence rules.
func ValidateRmaRequest(vendor VendorProfile, req RmaRequest) error {
	if err := req.Validate(); err != nil {
		return err
	}
	return ValidateEvidence(vendor, req.EvidenceURLs)
}
