package domain

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrMissingGenericProfile is returned when a directory would have no fallback entry.
	ErrMissingGenericProfile = errors.New("vendor directory requires a generic profile")
	// ErrInvalidProfile is returned for profiles that cannot be used to build RMA emails.
	ErrInvalidProfile = errors.New("invalid vendor profile")
)

// Directory resolves vendor names to profiles. It is read-only once built.
type Directory struct {
	order    []string
	profiles map[string]VendorProfile
}

// NewDirectory builds a directory from profiles, keeping their order for partial matches.
func NewDirectory(profiles []VendorProfile) (*Directory, error) {
	d := &Directory{profiles: make(map[string]VendorProfile, len(profiles))}
	for _, p := range profiles {
		p.Key = normalizeVendorKey(p.Key)
		if err := validateProfile(p); err != nil {
			return nil, err
		}
		if _, exists := d.profiles[p.Key]; !exists {
			d.order = append(d.order, p.Key)
		}
		d.profiles[p.Key] = p
	}
	if _, ok := d.profiles[GenericVendorKey]; !ok {
		return nil, ErrMissingGenericProfile
	}
	return d, nil
}

// DefaultDirectory returns a directory holding the built-in profiles.
func DefaultDirectory() *Directory {
	d, err := NewDirectory(DefaultProfiles())
	if err != nil {
		panic(fmt.Sprintf("built-in vendor profiles are invalid: %v", err))
	}
	return d
}

// Resolve returns the profile for name. It never fails: exact key first, then the
// first configured key contained in name (or containing it), then generic.
func (d *Directory) Resolve(name string) VendorProfile {
	key := normalizeVendorKey(name)
	if key == "" {
		return d.profiles[GenericVendorKey]
	}
	if p, ok := d.profiles[key]; ok {
		return p
	}
	for _, k := range d.order {
		if strings.Contains(key, k) || strings.Contains(k, key) {
			return d.profiles[k]
		}
	}
	return d.profiles[GenericVendorKey]
}

// Supported lists vendor keys in lookup order.
func (d *Directory) Supported() []string {
	out := make([]string, len(d.order))
	copy(out, d.order)
	return out
}

// VendorInfo is the public summary of a resolved vendor profile.
type VendorInfo struct {
	Key                  string   `json:"key"`
	Name                 string   `json:"name"`
	SupportAddress       string   `json:"support_email"`
	RequiresEvidence     bool     `json:"requires_evidence"`
	MaxEvidenceURLs      int      `json:"max_evidence_urls"`
	AutoApproveThreshold *int     `json:"auto_approve_threshold"`
	PolicyTopics         []string `json:"policy_topics"`
}

// Info summarizes the profile name resolves to.
func (d *Directory) Info(name string) VendorInfo {
	p := d.Resolve(name)
	topics := make([]string, 0, len(p.PolicySnippets))
	for topic := range p.PolicySnippets {
		topics = append(topics, topic)
	}
	sort.Strings(topics)
	return VendorInfo{
		Key:                  p.Key,
		Name:                 p.Name,
		SupportAddress:       p.SupportAddress,
		RequiresEvidence:     p.RequiresEvidence,
		MaxEvidenceURLs:      p.MaxEvidenceURLs,
		AutoApproveThreshold: p.AutoApproveThreshold,
		PolicyTopics:         topics,
	}
}

// PolicyInfo returns all policy snippets for the resolved vendor, or only topic when set.
func (d *Directory) PolicyInfo(name, topic string) map[string]string {
	profile := d.Resolve(name)
	if len(profile.PolicySnippets) == 0 {
		return map[string]string{}
	}
	if strings.TrimSpace(topic) != "" {
		return profile.Policy(topic)
	}
	return profile.Policies()
}

type directoryFile struct {
	Vendors []VendorProfile `yaml:"vendors"`
}

// ParseDirectoryYAML overlays the profiles in data on top of base.
func ParseDirectoryYAML(data []byte, base []VendorProfile) (*Directory, error) {
	if len(bytes.TrimSpace(data)) == 0 {
		return nil, fmt.Errorf("vendor file: payload is empty")
	}
	var file directoryFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("vendor file: decode: %w", err)
	}

	merged := make([]VendorProfile, 0, len(base)+len(file.Vendors))
	index := make(map[string]int, len(base))
	for _, p := range base {
		index[normalizeVendorKey(p.Key)] = len(merged)
		merged = append(merged, p)
	}
	for _, p := range file.Vendors {
		key := normalizeVendorKey(p.Key)
		if i, ok := index[key]; ok {
			merged[i] = p
			continue
		}
		index[key] = len(merged)
		merged = append(merged, p)
	}

	// generic stays last so partial matches prefer named vendors
	ordered := make([]VendorProfile, 0, len(merged))
	var generic *VendorProfile
	for i := range merged {
		if normalizeVendorKey(merged[i].Key) == GenericVendorKey {
			generic = &merged[i]
			continue
		}
		ordered = append(ordered, merged[i])
	}
	if generic != nil {
		ordered = append(ordered, *generic)
	}

	return NewDirectory(ordered)
}

// LoadDirectoryFile reads a YAML vendor file and overlays it on the built-in profiles.
func LoadDirectoryFile(path string) (*Directory, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("vendor file: read %s: %w", path, err)
	}
	d, err := ParseDirectoryYAML(data, DefaultProfiles())
	if err != nil {
		return nil, fmt.Errorf("vendor file: %s: %w", path, err)
	}
	return d, nil
}

func validateProfile(p VendorProfile) error {
	switch {
	case p.Key == "":
		return fmt.Errorf("%w: key is required", ErrInvalidProfile)
	case strings.TrimSpace(p.SupportAddress) == "":
		return fmt.Errorf("%w: %s: support_email is required", ErrInvalidProfile, p.Key)
	case strings.TrimSpace(p.EmailTemplate) == "":
		return fmt.Errorf("%w: %s: email_template is required", ErrInvalidProfile, p.Key)
	case strings.TrimSpace(p.SubjectTemplate) == "":
		return fmt.Errorf("%w: %s: subject_template is required", ErrInvalidProfile, p.Key)
	case p.MaxEvidenceURLs < 0:
		return fmt.Errorf("%w: %s: max_evidence_urls must not be negative", ErrInvalidProfile, p.Key)
	case p.RequiresEvidence && p.MaxEvidenceURLs == 0:
		return fmt.Errorf("%w: %s: requires_evidence needs max_evidence_urls above zero", ErrInvalidProfile, p.Key)
	}
	if _, err := parseTemplates(p); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidProfile, p.Key, err)
	}
	return nil
}

func normalizeVendorKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
