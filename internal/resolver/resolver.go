// Package resolver maps a request host name to a domain and subdomain label.
// Resolution is pure: it performs no I/O and accepts any input string.
package resolver

import (
	"net"
	"strings"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/config"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/platform"
)

// Result is the outcome of resolving one host.
type Result struct {
	Host               string `json:"host"`
	Subdomain          string `json:"subdomain"`
	DomainName         string `json:"domainName"`
	HasSubdomain       bool   `json:"hasSubdomain"`
	IsRecognizedPrefix bool   `json:"isRecognizedPrefix"`
	TLDOnly            bool   `json:"tldOnly"`
	KnownHost          bool   `json:"knownHost"`
	Issue              string `json:"issue,omitempty"`
}

type Resolver struct {
	primary         string
	prefixes        map[string]bool
	previewSuffixes []string
	localHosts      map[string]bool
}

func New(r config.Routing) *Resolver {
	res := &Resolver{
		primary:    platform.NormalizeDomain(r.PrimaryDomain),
		prefixes:   make(map[string]bool, len(r.Prefixes)),
		localHosts: make(map[string]bool, len(r.LocalHosts)),
	}
	for _, p := range r.Prefixes {
		if p = strings.ToLower(strings.TrimSpace(p)); p != "" {
			res.prefixes[p] = true
		}
	}
	for _, s := range r.PreviewSuffixes {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			if !strings.HasPrefix(s, ".") {
				s = "." + s
			}
			res.previewSuffixes = append(res.previewSuffixes, s)
		}
	}
	for _, h := range r.LocalHosts {
		if h = strings.ToLower(strings.TrimSpace(h)); h != "" {
			res.localHosts[h] = true
		}
	}
	return res
}

// Resolve maps host, typically a Host header, to a domain and subdomain.
// hint is an explicit subdomain from the request (query parameter or path
// prefix). It is used when the host itself carries no subdomain, and it is
// the only subdomain source for preview and local hosts.
func (r *Resolver) Resolve(host, hint string) Result {
	var res Result
	var issues []string

	h := normalizeHost(host)
	res.Host = h

	switch {
	case r.isKnownHost(h):
		res.KnownHost = true
		res.DomainName = r.primary
	default:
		labels := strings.Split(h, ".")
		switch {
		case len(labels) < 2:
			res.TLDOnly = true
			res.DomainName = r.primary
		case len(labels) == 2:
			res.DomainName = h
		default:
			res.Subdomain = labels[0]
			res.DomainName = strings.Join(labels[1:], ".")
		}
		if h != "" && !platform.IsValidHostname(h) {
			issues = append(issues, "host "+quote(h)+" is not a valid DNS name")
		}
	}

	if res.Subdomain == "" && hint != "" {
		label := strings.ToLower(strings.TrimSpace(hint))
		if platform.ValidateSubdomain(label) == nil {
			res.Subdomain = label
		} else {
			issues = append(issues, "routing hint "+quote(hint)+" is not a valid subdomain label")
		}
	}

	if res.DomainName == "" {
		issues = append(issues, "no primary domain configured for host "+quote(h))
	}

	if res.Subdomain != "" {
		res.HasSubdomain = true
		res.IsRecognizedPrefix = r.prefixes[res.Subdomain]
		if !res.IsRecognizedPrefix {
			issues = append(issues, "subdomain "+quote(res.Subdomain)+" is not a recognized routing prefix")
		}
	}

	res.Issue = strings.Join(issues, "; ")
	return res
}

// isKnownHost reports whether h is a preview or local-development host
// whose labels do not encode tenant routing.
func (r *Resolver) isKnownHost(h string) bool {
	if r.localHosts[h] || strings.HasSuffix(h, ".localhost") {
		return true
	}
	for _, s := range r.previewSuffixes {
		if strings.HasSuffix(h, s) || h == s[1:] {
			return true
		}
	}
	return net.ParseIP(h) != nil
}

// normalizeHost lowercases host and strips the port, a trailing dot and
// leading www labels.
func normalizeHost(host string) string {
	h := strings.ToLower(strings.TrimSpace(host))

	switch {
	case strings.HasPrefix(h, "["):
		if end := strings.IndexByte(h, ']'); end > 0 {
			h = h[1:end]
		} else {
			h = strings.TrimPrefix(h, "[")
		}
	case strings.Count(h, ":") == 1:
		h = h[:strings.IndexByte(h, ':')]
	}

	h = strings.TrimSuffix(h, ".")
	for strings.HasPrefix(h, "www.") {
		h = h[len("www."):]
	}
	return h
}

func quote(s string) string {
	const limit = 64
	if len(s) > limit {
		s = s[:limit] + "..."
	}
	return `"` + s + `"`
}
