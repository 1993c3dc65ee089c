package cloudflare

import (
	"net"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/platform"
)

// ValidateRecord checks a record before it is sent to the API. name must be
// fully qualified.
func ValidateRecord(recordType, name, content string) error {
	if !platform.IsValidHostname(name) {
		return model.Validationf("record name %q is not a valid DNS name", name)
	}
	switch recordType {
	case "A":
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() == nil {
			return model.Validationf("A record content must be a valid IPv4 address")
		}
	case "AAAA":
		ip := net.ParseIP(content)
		if ip == nil || ip.To4() != nil {
			return model.Validationf("AAAA record content must be a valid IPv6 address")
		}
	case "CNAME", "MX", "NS":
		if !platform.IsValidHostname(content) {
			return model.Validationf("%s record content must be a valid hostname", recordType)
		}
	case "TXT":
		if content == "" {
			return model.Validationf("TXT record content must not be empty")
		}
		if len(content) > 4096 {
			return model.Validationf("TXT record content must not exceed 4096 characters")
		}
	default:
		return model.Validationf("unsupported record type %q", recordType)
	}
	return nil
}
