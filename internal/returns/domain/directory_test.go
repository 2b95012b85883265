package domain_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/dejobratic/rmaflow/internal/returns/domain"
)

func TestDirectoryResolve(t *testing.T) {
	dir := domain.DefaultDirectory()

	tests := []struct {
		name    string
		input   string
		wantKey string
	}{
		{name: "exact key", input: "amazon", wantKey: "amazon"},
		{name: "case insensitive", input: "AMAZON", wantKey: "amazon"},
		{name: "surrounding whitespace", input: "  Walmart  ", wantKey: "walmart"},
		{name: "key contained in name", input: "Target Store", wantKey: "target"},
		{name: "name contained in key", input: "best", wantKey: "bestbuy"},
		{name: "unknown vendor", input: "zzz_store", wantKey: domain.GenericVendorKey},
		{name: "empty name", input: "", wantKey: domain.GenericVendorKey},
		{name: "whitespace name", input: "   ", wantKey: domain.GenericVendorKey},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := dir.Resolve(tt.input)
			if got.Key != tt.wantKey {
				t.Errorf("Resolve(%q) = %s, want %s", tt.input, got.Key, tt.wantKey)
			}
		})
	}
}

func TestDirectoryResolveIsTotal(t *testing.T) {
	dir := domain.DefaultDirectory()
	inputs := []string{"a", "zz", "Amazon.com", "my-local-shop", "🛒", "generic", "GENERIC VENDOR"}
	for _, in := range inputs {
		p := dir.Resolve(in)
		if p.Key == "" || p.SupportAddress == "" {
			t.Errorf("Resolve(%q) returned an empty profile", in)
		}
	}
}

func TestDirectoryUnknownVendorUsesGenericAddress(t *testing.T) {
	p := domain.DefaultDirectory().Resolve("zzz_store")
	if p.SupportAddress != "support@vendor.com" {
		t.Errorf("expected support@vendor.com, got %s", p.SupportAddress)
	}
}

func TestNewDirectory(t *testing.T) {
	t.Run("requires generic profile", func(t *testing.T) {
		profiles := domain.DefaultProfiles()[:1]
		_, err := domain.NewDirectory(profiles)
		if !errors.Is(err, domain.ErrMissingGenericProfile) {
			t.Fatalf("expected ErrMissingGenericProfile, got %v", err)
		}
	})

	t.Run("rejects profile with broken template", func(t *testing.T) {
		profiles := domain.DefaultProfiles()
		profiles[0].SubjectTemplate = "{{.OrderID"
		_, err := domain.NewDirectory(profiles)
		if !errors.Is(err, domain.ErrInvalidProfile) {
			t.Fatalf("expected ErrInvalidProfile, got %v", err)
		}
	})

	t.Run("rejects evidence requirement with no evidence slots", func(t *testing.T) {
		profiles := domain.DefaultProfiles()
		profiles[0].RequiresEvidence = true
		profiles[0].MaxEvidenceURLs = 0
		_, err := domain.NewDirectory(profiles)
		if !errors.Is(err, domain.ErrInvalidProfile) {
			t.Fatalf("expected ErrInvalidProfile, got %v", err)
		}
	})

	t.Run("keeps configured order", func(t *testing.T) {
		got := domain.DefaultDirectory().Supported()
		want := []string{"amazon", "walmart", "target", "bestbuy", "generic"}
		if len(got) != len(want) {
			t.Fatalf("expected %d vendors, got %d", len(want), len(got))
		}
		for i := range want {
			if got[i] != want[i] {
				t.Errorf("vendor %d: expected %s, got %s", i, want[i], got[i])
			}
		}
	})
}

func TestDirectoryPolicyInfo(t *testing.T) {
	dir := domain.DefaultDirectory()

	t.Run("returns all snippets", func(t *testing.T) {
		got := dir.PolicyInfo("amazon", "")
		if len(got) != 4 {
			t.Fatalf("expected 4 policies, got %d", len(got))
		}
		if got["return_window"] != "30-day return window" {
			t.Errorf("unexpected return_window: %q", got["return_window"])
		}
	})

	t.Run("returns single topic", func(t *testing.T) {
		got := dir.PolicyInfo("walmart", "return_window")
		if len(got) != 1 || got["return_window"] != "90-day return window" {
			t.Errorf("unexpected policy map: %v", got)
		}
	})

	t.Run("unknown topic returns placeholder", func(t *testing.T) {
		got := dir.PolicyInfo("target", "restocking_fee")
		if got["restocking_fee"] != domain.PolicyUnavailable {
			t.Errorf("expected placeholder, got %v", got)
		}
	})

	t.Run("unknown vendor falls back to generic", func(t *testing.T) {
		got := dir.PolicyInfo("zzz_store", "shipping")
		if got["shipping"] != "Contact support for a return label" {
			t.Errorf("expected generic shipping policy, got %v", got)
		}
	})

	t.Run("returned map is a copy", func(t *testing.T) {
		got := dir.PolicyInfo("amazon", "")
		got["return_window"] = "forever"
		again := dir.PolicyInfo("amazon", "")
		if again["return_window"] == "forever" {
			t.Error("directory snippets were mutated through the returned map")
		}
	})
}

func TestParseDirectoryYAML(t *testing.T) {
	data := []byte(`
vendors:
  - key: costco
    name: Costco
    support_email: returns@costco.com
    subject_template: "Costco {{title .Intent}} - {{.OrderID}}"
    email_template: "Order {{.OrderID}} {{.Reason}}{{.EvidenceSection}}{{.ContactInfo}}"
    requires_evidence: false
    max_evidence_urls: 2
    policy_snippets:
      return_window: "90-day return window"
  - key: amazon
    name: Amazon EU
    support_email: returns@amazon.eu
    subject_template: "RMA {{.OrderID}}"
    email_template: "Body {{.OrderID}}"
    requires_evidence: true
    max_evidence_urls: 1
`)

	dir, err := domain.ParseDirectoryYAML(data, domain.DefaultProfiles())
	if err != nil {
		t.Fatalf("ParseDirectoryYAML() failed: %v", err)
	}

	if got := dir.Resolve("costco").SupportAddress; got != "returns@costco.com" {
		t.Errorf("expected costco address, got %s", got)
	}
	if got := dir.Resolve("amazon").SupportAddress; got != "returns@amazon.eu" {
		t.Errorf("expected overridden amazon address, got %s", got)
	}

	supported := dir.Supported()
	if supported[len(supported)-1] != domain.GenericVendorKey {
		t.Errorf("expected generic to stay last, got %v", supported)
	}
}

func TestParseDirectoryYAMLErrors(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{name: "empty payload", data: "   "},
		{name: "malformed yaml", data: "vendors: [\n"},
		{name: "missing address", data: "vendors:\n  - key: acme\n    email_template: x\n    subject_template: y\n"},
		{name: "evidence required without slots", data: "vendors:\n  - key: acme\n    support_email: rma@acme.com\n    email_template: x\n    subject_template: y\n    requires_evidence: true\n    max_evidence_urls: 0\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := domain.ParseDirectoryYAML([]byte(tt.data), domain.DefaultProfiles()); err == nil {
				t.Fatal("expected error, got nil")
			}
		})
	}
}

func TestLoadDirectoryFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "vendors.yaml")
	content := "vendors:\n  - key: ikea\n    name: IKEA\n    support_email: help@ikea.com\n    subject_template: \"IKEA {{.OrderID}}\"\n    email_template: \"{{.OrderID}}\"\n    max_evidence_urls: 3\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write vendor file: %v", err)
	}

	dir, err := domain.LoadDirectoryFile(path)
	if err != nil {
		t.Fatalf("LoadDirectoryFile() failed: %v", err)
	}
	if dir.Resolve("IKEA").Name != "IKEA" {
		t.Error("expected ikea profile to be loaded")
	}

	if _, err := domain.LoadDirectoryFile(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Error("expected error for missing file")
	}
}

func TestDirectoryInfo(t *testing.T) {
	t.Run("spaced name does not match the joined key", func(t *testing.T) {
		if key := domain.DefaultDirectory().Info("Best Buy").Key; key != domain.GenericVendorKey {
			t.Errorf("expected %s, got %s", domain.GenericVendorKey, key)
		}
	})

	info := domain.DefaultDirectory().Info("BestBuy Online")
	if info.Key != "bestbuy" {
		t.Fatalf("expected bestbuy, got %s", info.Key)
	}
	if !info.RequiresEvidence || info.MaxEvidenceURLs != 3 {
		t.Errorf("unexpected evidence rules: %+v", info)
	}
	want := []string{"condition", "refund_method", "return_window", "shipping"}
	if len(info.PolicyTopics) != len(want) {
		t.Fatalf("expected %v, got %v", want, info.PolicyTopics)
	}
	for i := range want {
		if info.PolicyTopics[i] != want[i] {
			t.Errorf("topic %d: expected %s, got %s", i, want[i], info.PolicyTopics[i])
		}
	}
}
