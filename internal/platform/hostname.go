package platform

import (
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

// NormalizeDomain lowercases a domain name and strips surrounding whitespace,
// a trailing dot and a leading "www." label.
func NormalizeDomain(name string) string {
	name = strings.ToLower(strings.TrimSpace(name))
	name = strings.TrimSuffix(name, ".")
	return strings.TrimPrefix(name, "www.")
}

// ValidateDomainName checks that name is a registrable-looking host name with
// at least two labels. It expects a normalized name.
func ValidateDomainName(name string) error {
	if name == "" {
		return model.Validationf("domain name is required")
	}
	if !IsValidHostname(name) {
		return model.Validationf("domain name %q is not a valid DNS name", name)
	}
	if !strings.Contains(name, ".") {
		return model.Validationf("domain name %q must include a top-level domain", name)
	}
	return nil
}

// ValidateSubdomain checks a single subdomain label.
func ValidateSubdomain(label string) error {
	if !IsValidLabel(label) || strings.Contains(label, "_") {
		return model.Validationf("subdomain %q is not a valid DNS label", label)
	}
	return nil
}

// IsValidHostname checks if s is a valid DNS hostname.
// Labels separated by dots, each label 1-63 chars, alphanumeric + hyphens,
// no leading/trailing hyphens, total max 253 chars.
func IsValidHostname(s string) bool {
	if s == "" || len(s) > 253 {
		return false
	}
	s = strings.TrimSuffix(s, ".")
	if s == "" {
		return false
	}
	for _, label := range strings.Split(s, ".") {
		if !IsValidLabel(label) {
			return false
		}
	}
	return true
}

// IsValidLabel checks if a single DNS label is valid.
func IsValidLabel(label string) bool {
	n := len(label)
	if n == 0 || n > 63 {
		return false
	}
	if label[0] == '-' || label[n-1] == '-' {
		return false
	}
	for _, c := range label {
		if !((c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9') || c == '-' || c == '_') {
			return false
		}
	}
	return true
}

// ProjectName derives a hosting project name from a domain name.
// Example: shop.example.com -> shop-example-com
func ProjectName(domainName string) string {
	var b strings.Builder
	for _, c := range strings.ToLower(domainName) {
		switch {
		case (c >= 'a' && c <= 'z') || (c >= '0' && c <= '9'):
			b.WriteRune(c)
		default:
			b.WriteByte('-')
		}
	}
	name := strings.Trim(b.String(), "-")
	if len(name) > 100 {
		name = strings.TrimRight(name[:100], "-")
	}
	return name
}
