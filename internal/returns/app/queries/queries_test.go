package queries_test

import (
	"context"
	"testing"
	"time"

	"github.com/dejobratic/rmaflow/internal/returns/app/queries"
	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

func TestGetVendorPolicy(t *testing.T) {
	handler := queries.NewGetVendorPolicyQueryHandler(domain.DefaultDirectory())
	ctx := context.Background()

	t.Run("returns every snippet without a key", func(t *testing.T) {
		policy, err := handler.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: "Amazon"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(policy.Policies) < 2 {
			t.Errorf("expected several policies, got %v", policy.Policies)
		}
		if policy.Vendor != "Amazon" {
			t.Errorf("expected vendor echoed back, got %q", policy.Vendor)
		}
	})

	t.Run("returns placeholder for unknown topic", func(t *testing.T) {
		policy, err := handler.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: "amazon", PolicyKey: "warranty_upgrade"})

		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		if len(policy.Policies) != 1 || policy.Policies["warranty_upgrade"] != domain.PolicyUnavailable {
			t.Errorf("unexpected policies %v", policy.Policies)
		}
	})

	t.Run("unknown vendor answers with generic policies", func(t *testing.T) {
		unknown, err := handler.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: "zzz_store"})
		if err != nil {
			t.Fatalf("expected no error, got %v", err)
		}
		generic, _ := handler.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: domain.GenericVendorKey})

		if len(unknown.Policies) != len(generic.Policies) {
			t.Errorf("expected generic policies, got %v", unknown.Policies)
		}
	})

	t.Run("requires a vendor", func(t *testing.T) {
		if _, err := handler.Handle(ctx, queries.GetVendorPolicyQuery{Vendor: "  "}); err == nil {
			t.Error("expected error for blank vendor")
		}
	})
}

func TestGetVendorInfo(t *testing.T) {
	handler := queries.NewGetVendorInfoQueryHandler(domain.DefaultDirectory())

	info, err := handler.Handle(context.Background(), queries.GetVendorInfoQuery{Vendor: "BestBuy"})
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if info.Key != "bestbuy" || !info.RequiresEvidence || info.MaxEvidenceURLs != 3 {
		t.Errorf("unexpected info %+v", info)
	}

	if _, err := handler.Handle(context.Background(), queries.GetVendorInfoQuery{}); err == nil {
		t.Error("expected error for empty vendor")
	}
}

func TestGetWorkflowStatus(t *testing.T) {
	handler := queries.NewGetWorkflowStatusQueryHandler(domain.DefaultDirectory(), 120*time.Second, 2)

	status := handler.Handle(context.Background())

	if status.Status != "operational" || status.MaxExecutionTime != 120 || status.MaxRetries != 2 {
		t.Errorf("unexpected status %+v", status)
	}
	if len(status.SupportedVendors) != 5 || status.SupportedVendors[0] != "amazon" {
		t.Errorf("unexpected vendors %v", status.SupportedVendors)
	}
}
