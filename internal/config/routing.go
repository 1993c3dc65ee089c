package config

import (
	"fmt"
	"os"
	"strings"

	"gopkg.in/yaml.v3"
)

// Routing holds the host-routing settings consumed by the subdomain resolver.
type Routing struct {
	PrimaryDomain   string   `yaml:"primary_domain"`
	Prefixes        []string `yaml:"prefixes"`
	PreviewSuffixes []string `yaml:"preview_suffixes"`
	LocalHosts      []string `yaml:"local_hosts"`
}

// DefaultRouting returns the routing settings used when no file is configured.
func DefaultRouting() Routing {
	return Routing{
		PrimaryDomain:   getEnv("PRIMARY_DOMAIN", ""),
		Prefixes:        []string{"landing", "offer", "promo", "go", "get", "info", "try", "shop", "start"},
		PreviewSuffixes: []string{".vercel.app"},
		LocalHosts:      []string{"localhost", "127.0.0.1", "0.0.0.0", "::1"},
	}
}

// LoadRouting reads a YAML routing file. Fields missing from the file keep
// their defaults.
func LoadRouting(path string) (Routing, error) {
	r := DefaultRouting()
	if path == "" {
		return r, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Routing{}, fmt.Errorf("reading routing file: %w", err)
	}

	var file Routing
	if err := yaml.Unmarshal(data, &file); err != nil {
		return Routing{}, fmt.Errorf("parsing routing file: %w", err)
	}

	if file.PrimaryDomain != "" {
		r.PrimaryDomain = file.PrimaryDomain
	}
	if len(file.Prefixes) > 0 {
		r.Prefixes = file.Prefixes
	}
	if len(file.PreviewSuffixes) > 0 {
		r.PreviewSuffixes = file.PreviewSuffixes
	}
	if len(file.LocalHosts) > 0 {
		r.LocalHosts = file.LocalHosts
	}

	r.PrimaryDomain = strings.ToLower(strings.TrimSpace(r.PrimaryDomain))
	for i, p := range r.Prefixes {
		r.Prefixes[i] = strings.ToLower(strings.TrimSpace(p))
	}
	return r, nil
}
