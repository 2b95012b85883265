package domain

import (
	"fmt"
	"strings"
)

// Intent is what the customer wants the vendor to do.
type Intent string

const (
	IntentReturn      Intent = "return"
	IntentRefund      Intent = "refund"
	IntentReplacement Intent = "replacement"
)

// Reason explains why the item is being sent back.
type Reason string

const (
	ReasonDamaged        Reason = "damaged"
	ReasonMissing        Reason = "missing"
	ReasonWrongItem      Reason = "wrong_item"
	ReasonNotAsDescribed Reason = "not_as_described"
	ReasonOther          Reason = "other"
)

var intentDescriptions = map[Intent]string{
	IntentReturn:      "Return the item for a refund",
	IntentRefund:      "Request a refund without returning the item",
	IntentReplacement: "Request a replacement item",
}

var reasonDescriptions = map[Reason]string{
	ReasonDamaged:        "Item arrived damaged or broken",
	ReasonMissing:        "Item was missing from the order",
	ReasonWrongItem:      "Received wrong item",
	ReasonNotAsDescribed: "Item does not match description",
	ReasonOther:          "Other reason not listed",
}

func (i Intent) Valid() bool {
	_, ok := intentDescriptions[i]
	return ok
}

func (r Reason) Valid() bool {
	_, ok := reasonDescriptions[r]
	return ok
}

// Description returns a human-readable sentence, or the raw value when unknown.
func (i Intent) Description() string {
	if d, ok := intentDescriptions[i]; ok {
		return d
	}
	return string(i)
}

// Description returns a human-readable sentence, or the raw value when unknown.
func (r Reason) Description() string {
	if d, ok := reasonDescriptions[r]; ok {
		return d
	}
	return string(r)
}

// RmaRequest is the input of one return workflow run.
type RmaRequest struct {
	Vendor       string   `json:"vendor"`
	OrderID      string   `json:"order_id"`
	ItemSKU      string   `json:"item_sku"`
	Intent       Intent   `json:"intent"`
	Reason       Reason   `json:"reason"`
	EvidenceURLs []string `json:"evidence_urls"`
	ContactEmail string   `json:"contact_email,omitempty"`
	ContactPhone string   `json:"contact_phone,omitempty"`
}

// Validate checks required fields and enum membership. Evidence rules depend on the
// vendor and are checked by ValidateEvidence.
func (r RmaRequest) Validate() error {
	if strings.TrimSpace(r.Vendor) == "" {
		return &ValidationError{Kind: ErrMissingField, Message: "vendor is required"}
	}
	if strings.TrimSpace(r.OrderID) == "" {
		return &ValidationError{Kind: ErrMissingField, Message: "order_id is required"}
	}
	if strings.TrimSpace(r.ItemSKU) == "" {
		return &ValidationError{Kind: ErrMissingField, Message: "item_sku is required"}
	}
	if !r.Intent.Valid() {
		return &ValidationError{Kind: ErrInvalidIntent, Message: fmt.Sprintf("invalid intent: %q", r.Intent)}
	}
	if !r.Reason.Valid() {
		return &ValidationError{Kind: ErrInvalidReason, Message: fmt.Sprintf("invalid reason: %q", r.Reason)}
	}
	if r.ContactEmail != "" && !strings.Contains(r.ContactEmail, "@") {
		return &ValidationError{Kind: ErrInvalidContact, Message: "invalid email format"}
	}
	return nil
}

// HasPhone reports whether an SMS can be sent to the customer.
func (r RmaRequest) HasPhone() bool {
	return strings.TrimSpace(r.ContactPhone) != ""
}

// OrderIDLast4 returns the last four characters of the order id, or all of it when shorter.
func OrderIDLast4(orderID string) string {
	runes := []rune(orderID)
	if len(runes) < 4 {
		return orderID
	}
	return string(runes[len(runes)-4:])
}
