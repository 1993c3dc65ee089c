package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	ServiceName     string
	CoreDatabaseURL string
	HTTPListenAddr  string
	SiteListenAddr  string
	LogLevel        string
	// APIToken protects /api/v1 with a bearer token when non-empty.
	APIToken string

	CloudflareBaseURL   string
	CloudflareAPIToken  string
	CloudflareAccountID string

	VercelBaseURL  string
	VercelAPIToken string
	VercelTeamID   string
	// VercelFramework is passed as the framework preset when projects are created.
	VercelFramework string

	// HostingARecord is the apex A record target for bare domains.
	HostingARecord string
	// HostingCNAMETarget is the CNAME target for subdomains and externally-managed domains.
	HostingCNAMETarget string

	ProviderTimeout   time.Duration
	ProviderRetries   int
	ZonePollAttempts  int
	ZonePollInterval  time.Duration
	DeployWorkers     int
	DeployQueueSize   int
	RoutingConfigFile string
}

func Load() (*Config, error) {
	cfg := &Config{
		ServiceName:         getEnv("SERVICE_NAME", "landing-api"),
		CoreDatabaseURL:     getEnv("CORE_DATABASE_URL", ""),
		HTTPListenAddr:      getEnv("HTTP_LISTEN_ADDR", ":8090"),
		SiteListenAddr:      getEnv("SITE_LISTEN_ADDR", ":8080"),
		LogLevel:            getEnv("LOG_LEVEL", "info"),
		APIToken:            getEnv("API_TOKEN", ""),
		CloudflareBaseURL:   getEnv("CLOUDFLARE_BASE_URL", "https://api.cloudflare.com/client/v4"),
		CloudflareAPIToken:  getEnv("CLOUDFLARE_API_TOKEN", ""),
		CloudflareAccountID: getEnv("CLOUDFLARE_ACCOUNT_ID", ""),
		VercelBaseURL:       getEnv("VERCEL_BASE_URL", "https://api.vercel.com"),
		VercelAPIToken:      getEnv("VERCEL_API_TOKEN", ""),
		VercelTeamID:        getEnv("VERCEL_TEAM_ID", ""),
		VercelFramework:     getEnv("VERCEL_FRAMEWORK", "nextjs"),
		HostingARecord:      getEnv("HOSTING_A_RECORD", "76.76.21.21"),
		HostingCNAMETarget:  getEnv("HOSTING_CNAME_TARGET", "cname.vercel-dns.com"),
		RoutingConfigFile:   getEnv("ROUTING_CONFIG_FILE", ""),
	}

	var err error
	if cfg.ProviderTimeout, err = getDuration("PROVIDER_TIMEOUT", 20*time.Second); err != nil {
		return nil, err
	}
	if cfg.ZonePollInterval, err = getDuration("ZONE_POLL_INTERVAL", 5*time.Second); err != nil {
		return nil, err
	}
	if cfg.ProviderRetries, err = getInt("PROVIDER_RETRIES", 3); err != nil {
		return nil, err
	}
	if cfg.ZonePollAttempts, err = getInt("ZONE_POLL_ATTEMPTS", 3); err != nil {
		return nil, err
	}
	if cfg.DeployWorkers, err = getInt("DEPLOY_WORKERS", 4); err != nil {
		return nil, err
	}
	if cfg.DeployQueueSize, err = getInt("DEPLOY_QUEUE_SIZE", 64); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that every variable the service needs is present and
// reports all missing ones at once.
func (c *Config) Validate() error {
	var missing []string
	if c.CoreDatabaseURL == "" {
		missing = append(missing, "CORE_DATABASE_URL")
	}
	if c.HTTPListenAddr == "" {
		missing = append(missing, "HTTP_LISTEN_ADDR")
	}
	if c.SiteListenAddr == "" {
		missing = append(missing, "SITE_LISTEN_ADDR")
	}
	if c.CloudflareAPIToken == "" {
		missing = append(missing, "CLOUDFLARE_API_TOKEN")
	}
	if c.CloudflareAccountID == "" {
		missing = append(missing, "CLOUDFLARE_ACCOUNT_ID")
	}
	if c.VercelAPIToken == "" {
		missing = append(missing, "VERCEL_API_TOKEN")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required environment variables: %s", strings.Join(missing, ", "))
	}
	if c.DeployWorkers < 1 {
		return fmt.Errorf("DEPLOY_WORKERS must be at least 1")
	}
	if c.DeployQueueSize < 1 {
		return fmt.Errorf("DEPLOY_QUEUE_SIZE must be at least 1")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s %q: %w", key, v, err)
	}
	return d, nil
}
