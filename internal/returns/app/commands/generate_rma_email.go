package commands

import (
	"context"
	"fmt"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

type GenerateRmaEmailCommand struct {
	Request domain.RmaRequest
}

// GeneratedEmail is a validated, rendered RMA email and the profile it was rendered for.
type GeneratedEmail struct {
	Vendor domain.VendorProfile
	Email  domain.RmaEmail
}

type GenerateRmaEmailHandler interface {
	Handle(ctx context.Context, cmd GenerateRmaEmailCommand) (GeneratedEmail, error)
}

// GenerateRmaEmailCommandHandler resolves the vendor, validates the request against it and
// renders the email. It has no side effects.
type GenerateRmaEmailCommandHandler struct {
	directory *domain.Directory
}

func NewGenerateRmaEmailCommandHandler(directory *domain.Directory) *GenerateRmaEmailCommandHandler {
	return &GenerateRmaEmailCommandHandler{directory: directory}
}

func (h *GenerateRmaEmailCommandHandler) Handle(_ context.Context, cmd GenerateRmaEmailCommand) (GeneratedEmail, error) {
	vendor := h.directory.Resolve(cmd.Request.Vendor)

	if err := domain.ValidateRmaRequest(vendor, cmd.Request); err != nil {
		return GeneratedEmail{}, err
	}

	email, err := domain.GenerateRmaEmail(vendor, cmd.Request)
	if err != nil {
		return GeneratedEmail{}, fmt.Errorf("render %s email: %w", vendor.Key, err)
	}

	return GeneratedEmail{Vendor: vendor, Email: email}, nil
}
