package domain

import (
	"fmt"
	"strings"
	"text/template"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// DefaultContactInfo signs the email when no contact address was supplied.
const DefaultContactInfo = "Customer"

const evidenceUnavailableNote = "\nNote: Evidence will be provided upon request.\n"

// RmaEmail is a rendered vendor email ready to send.
type RmaEmail struct {
	To      string `json:"to_email"`
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

type emailFields struct {
	OrderID         string
	ItemSKU         string
	Intent          string
	Reason          string
	EvidenceSection string
	ContactInfo     string
}

type vendorTemplates struct {
	subject *template.Template
	body    *template.Template
}

var templateFuncs = template.FuncMap{
	"title": TitleCase,
}

// TitleCase upper-cases the first letter of every word and lower-cases the rest.
func TitleCase(s string) string {
	return cases.Title(language.English).String(s)
}

// HumanizeReason turns a reason code such as wrong_item into "Wrong Item".
func HumanizeReason(reason Reason) string {
	return TitleCase(strings.ReplaceAll(string(reason), "_", " "))
}

// GenerateRmaEmail renders the vendor templates for req. It assumes req already passed
// ValidateRmaRequest.
func GenerateRmaEmail(vendor VendorProfile, req RmaRequest) (RmaEmail, error) {
	tmpl, err := parseTemplates(vendor)
	if err != nil {
		return RmaEmail{}, err
	}

	contact := req.ContactEmail
	if strings.TrimSpace(contact) == "" {
		contact = DefaultContactInfo
	}

	fields := emailFields{
		OrderID:         req.OrderID,
		ItemSKU:         req.ItemSKU,
		Intent:          string(req.Intent),
		Reason:          HumanizeReason(req.Reason),
		EvidenceSection: evidenceSection(vendor, req.EvidenceURLs),
		ContactInfo:     contact,
	}

	var subject, body strings.Builder
	if err := tmpl.subject.Execute(&subject, fields); err != nil {
		return RmaEmail{}, fmt.Errorf("render subject for %s: %w", vendor.Key, err)
	}
	if err := tmpl.body.Execute(&body, fields); err != nil {
		return RmaEmail{}, fmt.Errorf("render body for %s: %w", vendor.Key, err)
	}

	return RmaEmail{
		To:      vendor.SupportAddress,
		Subject: strings.TrimSpace(subject.String()),
		Body:    strings.TrimSpace(body.String()),
	}, nil
}

func evidenceSection(vendor VendorProfile, urls []string) string {
	if len(urls) == 0 {
		// unreachable after validation, kept for direct callers
		if vendor.RequiresEvidence {
			return evidenceUnavailableNote
		}
		return ""
	}

	limit := len(urls)
	if vendor.MaxEvidenceURLs < limit {
		limit = vendor.MaxEvidenceURLs
	}

	var b strings.Builder
	b.WriteString("\nEvidence:\n")
	for i, url := range urls[:limit] {
		fmt.Fprintf(&b, "%d. %s\n", i+1, url)
	}
	return b.String()
}

func parseTemplates(vendor VendorProfile) (vendorTemplates, error) {
	subject, err := template.New(vendor.Key + "-subject").Funcs(templateFuncs).Option("missingkey=error").Parse(vendor.SubjectTemplate)
	if err != nil {
		return vendorTemplates{}, fmt.Errorf("parse subject template: %w", err)
	}
	body, err := template.New(vendor.Key + "-body").Funcs(templateFuncs).Option("missingkey=error").Parse(vendor.EmailTemplate)
	if err != nil {
		return vendorTemplates{}, fmt.Errorf("parse email template: %w", err)
	}
	return vendorTemplates{subject: subject, body: body}, nil
}
