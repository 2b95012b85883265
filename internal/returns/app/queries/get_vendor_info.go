package queries

import (
	"context"
	"errors"
	"strings"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

type GetVendorInfoQuery struct {
	Vendor string
}

func (q GetVendorInfoQuery) Validate() error {
	if strings.TrimSpace(q.Vendor) == "" {
		return errors.New("vendor is required")
	}
	return nil
}

type GetVendorInfoQueryHandler struct {
	directory *domain.Directory
}

func NewGetVendorInfoQueryHandler(directory *domain.Directory) *GetVendorInfoQueryHandler {
	return &GetVendorInfoQueryHandler{directory: directory}
}

func (h *GetVendorInfoQueryHandler) Handle(_ context.Context, query GetVendorInfoQuery) (domain.VendorInfo, error) {
	if err := query.Validate(); err != nil {
		return domain.VendorInfo{}, err
	}
	return h.directory.Info(query.Vendor), nil
}
