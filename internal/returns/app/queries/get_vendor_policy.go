package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

// GetVendorPolicyQuery asks for a vendor's policy snippets, or a single topic when
// PolicyKey is set.
type GetVendorPolicyQuery struct {
	Vendor    string
	PolicyKey string
}

// Validate ensures the query names a vendor.
func (q GetVendorPolicyQuery) Validate() error {
	if strings.TrimSpace(q.Vendor) == "" {
		return errors.New("vendor is required")
	}
	return nil
}

// VendorPolicy is the answer to GetVendorPolicyQuery.
type VendorPolicy struct {
	Vendor   string            `json:"vendor"`
	Policies map[string]string `json:"policies"`
}

type GetVendorPolicyQueryHandler struct {
	directory *domain.Directory
}

func NewGetVendorPolicyQueryHandler(directory *domain.Directory) *GetVendorPolicyQueryHandler {
	return &GetVendorPolicyQueryHandler{directory: directory}
}

// Handle resolves the vendor the same way the workflow does, so an unknown vendor
// answers with the generic policies.
func (h *GetVendorPolicyQueryHandler) Handle(_ context.Context, query GetVendorPolicyQuery) (VendorPolicy, error) {
	if err := query.Validate(); err != nil {
		return VendorPolicy{}, err
	}

	return VendorPolicy{
		Vendor:   query.Vendor,
		Policies: h.directory.PolicyInfo(query.Vendor, query.PolicyKey),
	}, nil
}
