package domain

// GenericVendorKey identifies the fallback profile every directory must carry.
const GenericVendorKey = "generic"

// PolicyUnavailable is returned for policy topics a vendor does not document.
const PolicyUnavailable = "policy information unavailable"

// VendorProfile describes how one retailer handles RMA correspondence.
type VendorProfile struct {
	Key                  string            `json:"key" yaml:"key"`
	Name                 string            `json:"name" yaml:"name"`
	SupportAddress       string            `json:"support_email" yaml:"support_email"`
	EmailTemplate        string            `json:"-" yaml:"email_template"`
	SubjectTemplate      string            `json:"-" yaml:"subject_template"`
	RequiresEvidence     bool              `json:"requires_evidence" yaml:"requires_evidence"`
	MaxEvidenceURLs      int               `json:"max_evidence_urls" yaml:"max_evidence_urls"`
	AutoApproveThreshold *int              `json:"auto_approve_threshold" yaml:"auto_approve_threshold,omitempty"`
	PolicySnippets       map[string]string `json:"-" yaml:"policy_snippets"`
}

// Policies returns a copy of the vendor's policy snippets.
func (p VendorProfile) Policies() map[string]string {
	out := make(map[string]string, len(p.PolicySnippets))
	for k, v := range p.PolicySnippets {
		out[k] = v
	}
	return out
}

// Policy returns a single-topic map, using PolicyUnavailable for unknown topics.
func (p VendorProfile) Policy(topic string) map[string]string {
	value, ok := p.PolicySnippets[topic]
	if !ok {
		value = PolicyUnavailable
	}
	return map[string]string{topic: value}
}

// DefaultProfiles returns the built-in vendor set in lookup order.
func DefaultProfiles() []VendorProfile {
	return []VendorProfile{
		{
			Key:            "amazon",
			Name:           "Amazon",
			SupportAddress: "returns@amazon.com",
			EmailTemplate: `Dear Amazon Customer Service,

I would like to request a {{.Intent}} for my recent order.

Order Details:
- Order ID: {{.OrderID}}
- Item SKU: {{.ItemSKU}}
- Reason: {{.Reason}}
{{.EvidenceSection}}
Please let me know the next steps for processing this request.

Best regards,
{{.ContactInfo}}`,
			SubjectTemplate:  `RMA Request - Order {{.OrderID}} - {{title .Intent}}`,
			RequiresEvidence: true,
			MaxEvidenceURLs:  3,
			PolicySnippets: map[string]string{
				"return_window": "30-day return window",
				"refund_method": "Refund to original payment method",
				"shipping":      "Free return shipping label",
				"condition":     "Item must be in original packaging",
			},
		},
		{
			Key:            "walmart",
			Name:           "Walmart",
			SupportAddress: "customer.service@walmart.com",
			EmailTemplate: `Dear Walmart Customer Service,

I am writing to request a {{.Intent}} for my recent purchase.

Purchase Information:
- Order Number: {{.OrderID}}
- Product SKU: {{.ItemSKU}}
- Issue: {{.Reason}}
{{.EvidenceSection}}
I would appreciate your assistance in resolving this matter.

Thank you,
{{.ContactInfo}}`,
			SubjectTemplate:  `Return Request - Order {{.OrderID}}`,
			RequiresEvidence: false,
			MaxEvidenceURLs:  5,
			PolicySnippets: map[string]string{
				"return_window": "90-day return window",
				"refund_method": "Refund to original payment method or gift card",
				"shipping":      "Free in-store returns",
				"condition":     "Item must be unused",
			},
		},
		{
			Key:            "target",
			Name:           "Target",
			SupportAddress: "guest.service@target.com",
			EmailTemplate: `Dear Target Guest Services,

I need to request a {{.Intent}} for my recent order.

Order Information:
- Order ID: {{.OrderID}}
- Item: {{.ItemSKU}}
- Reason for {{.Intent}}: {{.Reason}}
{{.EvidenceSection}}
Please advise on the return process.

Sincerely,
{{.ContactInfo}}`,
			SubjectTemplate:  `Guest Services - {{title .Intent}} Request - {{.OrderID}}`,
			RequiresEvidence: true,
			MaxEvidenceURLs:  4,
			PolicySnippets: map[string]string{
				"return_window": "90-day return window",
				"refund_method": "Refund to original payment method",
				"shipping":      "Free return shipping label",
				"condition":     "Item must be in original packaging",
			},
		},
		{
			Key:            "bestbuy",
			Name:           "Best Buy",
			SupportAddress: "customer.service@bestbuy.com",
			EmailTemplate: `Dear Best Buy Customer Service,

I would like to initiate a {{.Intent}} for my recent purchase.

Purchase Details:
- Order ID: {{.OrderID}}
- Product SKU: {{.ItemSKU}}
- Issue Description: {{.Reason}}
{{.EvidenceSection}}
Please provide instructions for the return process.

Best regards,
{{.ContactInfo}}`,
			SubjectTemplate:  `Customer Service - {{title .Intent}} - Order {{.OrderID}}`,
			RequiresEvidence: true,
			MaxEvidenceURLs:  3,
			PolicySnippets: map[string]string{
				"return_window": "15-day return window",
				"refund_method": "Refund to original payment method",
				"shipping":      "Free in-store returns",
				"condition":     "Item must be in original packaging with all accessories",
			},
		},
		{
			Key:            GenericVendorKey,
			Name:           "Generic Vendor",
			SupportAddress: "support@vendor.com",
			EmailTemplate: `Dear Customer Service,

I am requesting a {{.Intent}} for my recent order.

Order Information:
- Order ID: {{.OrderID}}
- Item SKU: {{.ItemSKU}}
- Reason: {{.Reason}}
{{.EvidenceSection}}
Please let me know how to proceed with this request.

Thank you,
{{.ContactInfo}}`,
			SubjectTemplate:  `RMA Request - {{.OrderID}} - {{title .Intent}}`,
			RequiresEvidence: false,
			MaxEvidenceURLs:  5,
			PolicySnippets: map[string]string{
				"return_window": "30-day return window",
				"refund_method": "Refund to original payment method",
				"shipping":      "Contact support for a return label",
				"condition":     "Item must be in original packaging",
			},
		},
	}
}
