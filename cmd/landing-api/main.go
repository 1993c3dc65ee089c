package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/api"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/cloudflare"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/config"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/core"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/db"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/deploy"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/logging"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/metrics"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/repair"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/resolver"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/site"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/vercel"
)

func main() {
	if len(os.Args) >= 2 && os.Args[1] == "repair" {
		runRepair(os.Args[2:])
		return
	}

	migrateFlag := flag.Bool("migrate", false, "Run database migrations before starting")
	migrateDirFlag := flag.String("migrate-dir", "migrations/core", "Migration files directory")
	flag.Parse()

	cfg := mustLoadConfig()
	logger := logging.NewLogger(cfg)

	routing, err := config.LoadRouting(cfg.RoutingConfigFile)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to load routing config")
	}
	if routing.PrimaryDomain == "" {
		logger.Warn().Msg("no primary domain configured; bare and preview hosts will not resolve")
	}

	if *migrateFlag {
		logger.Info().Str("dir", *migrateDirFlag).Msg("running database migrations")
		if err := db.RunMigrations(cfg.CoreDatabaseURL, *migrateDirFlag, logger); err != nil {
			logger.Fatal().Err(err).Msg("migration failed")
		}
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	conn := db.NewConn(cfg.CoreDatabaseURL)
	pool, err := conn.Init(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to connect to core database")
	}
	defer conn.Close()
	if err := metrics.RegisterPgxPoolMetrics(prometheus.DefaultRegisterer, pool); err != nil {
		logger.Fatal().Err(err).Msg("failed to register pool metrics")
	}

	services := core.NewServices(pool)
	dns, hosting := newProviders(cfg)

	workers := deploy.NewPool(cfg.DeployWorkers, cfg.DeployQueueSize, logger)
	broker := deploy.NewBroker(64)
	orch := deploy.NewOrchestrator(services.Domain, services.Deployment, dns, hosting, workers, broker, deploy.Config{
		Framework:        cfg.VercelFramework,
		ARecord:          cfg.HostingARecord,
		CNAMETarget:      cfg.HostingCNAMETarget,
		ZonePollAttempts: cfg.ZonePollAttempts,
		ZonePollInterval: cfg.ZonePollInterval,
	}, logger)

	recovered, err := orch.Recover(ctx)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to recover interrupted deployments")
	}
	if recovered > 0 {
		logger.Warn().Int("runs", recovered).Msg("marked interrupted deployments as failed")
	}

	reconciler := newRepairService(cfg, services, dns, hosting, logger)

	srv := api.NewServer(logger, api.Deps{
		Orchestrator: orch,
		Runs:         services.Deployment,
		Logs:         broker,
		Domains:      services.Domain,
		Pages:        services.LandingPage,
		Repair:       reconciler,
		DB:           conn,
	}, cfg.APIToken)

	siteHandler := site.NewHandler(resolver.New(routing), services.Domain, services.LandingPage, logger)

	// Streaming routes hold the connection for the life of a run, so the
	// API server sets no write timeout.
	apiServer := &http.Server{
		Addr:              cfg.HTTPListenAddr,
		Handler:           srv,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	siteServer := &http.Server{
		Addr:              cfg.SiteListenAddr,
		Handler:           api.NewSiteRouter(logger, siteHandler),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       15 * time.Second,
		WriteTimeout:      15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	serve(logger, "API", apiServer)
	serve(logger, "site", siteServer)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info().Msg("shutting down servers")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	siteServer.Shutdown(shutdownCtx)
	apiServer.Shutdown(shutdownCtx)
	if err := workers.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("deployment workers did not drain before shutdown deadline")
	}
}

func serve(logger zerolog.Logger, name string, s *http.Server) {
	go func() {
		logger.Info().Str("addr", s.Addr).Msgf("starting %s server", name)
		if err := s.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msgf("%s server failed", name)
		}
	}()
}

func mustLoadConfig() *config.Config {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := cfg.Validate(); err != nil {
		fmt.Fprintf(os.Stderr, "invalid config: %v\n", err)
		os.Exit(1)
	}
	return cfg
}

func newProviders(cfg *config.Config) (*cloudflare.Client, *vercel.Client) {
	dns := cloudflare.NewClient(cfg.CloudflareBaseURL, cfg.CloudflareAPIToken, cfg.CloudflareAccountID,
		cloudflare.WithTimeout(cfg.ProviderTimeout),
		cloudflare.WithRetries(cfg.ProviderRetries, 500*time.Millisecond),
	)
	hosting := vercel.NewClient(cfg.VercelBaseURL, cfg.VercelAPIToken,
		vercel.WithTeam(cfg.VercelTeamID),
		vercel.WithTimeout(cfg.ProviderTimeout),
		vercel.WithRetries(cfg.ProviderRetries, 500*time.Millisecond),
	)
	return dns, hosting
}

func newRepairService(cfg *config.Config, services *core.Services, dns *cloudflare.Client, hosting *vercel.Client, logger zerolog.Logger) *repair.Service {
	return repair.NewService(services.Domain, services.LandingPage, dns, hosting, repair.Config{
		ARecord:     cfg.HostingARecord,
		CNAMETarget: cfg.HostingCNAMETarget,
	}, logger)
}

// runRepair checks one domain from the command line and prints the report.
func runRepair(args []string) {
	fs := flag.NewFlagSet("repair", flag.ExitOnError)
	domainID := fs.String("domain", "", "ID of the domain to check (required)")
	apply := fs.Bool("apply", false, "Apply safe repairs instead of only reporting")
	fs.Parse(args)

	if *domainID == "" {
		fmt.Fprintln(os.Stderr, "error: --domain is required")
		fmt.Fprintln(os.Stderr, "usage: landing-api repair --domain <id> [--apply]")
		os.Exit(1)
	}

	cfg := mustLoadConfig()
	logger := logging.NewLogger(cfg)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	pool, err := db.NewCorePool(ctx, cfg.CoreDatabaseURL)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: failed to connect to database: %v\n", err)
		os.Exit(1)
	}
	defer pool.Close()

	report, err := repairDomain(ctx, cfg, pool, *domainID, *apply, logger)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.Encode(report)
	if report.OverallStatus != repair.OverallFullyConfigured {
		os.Exit(2)
	}
}

func repairDomain(ctx context.Context, cfg *config.Config, pool *pgxpool.Pool, domainID string, apply bool, logger zerolog.Logger) (*repair.Report, error) {
	services := core.NewServices(pool)
	dns, hosting := newProviders(cfg)
	return newRepairService(cfg, services, dns, hosting, logger).Check(ctx, domainID, apply)
}
