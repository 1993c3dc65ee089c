package api

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/handler"
	mw "github.com/OkanLimitless/webpage-creator-sub002/internal/api/middleware"
)

// Pinger reports whether a dependency can serve requests.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Deps are the services behind the API routes.
type Deps struct {
	Orchestrator handler.Provisioner
	Runs         handler.RunReader
	Logs         handler.LogSubscriber
	Domains      handler.DomainRegistry
	Pages        handler.PageRegistry
	Repair       handler.Reconciler
	DB           Pinger
}

type Server struct {
	router   chi.Router
	logger   zerolog.Logger
	deps     Deps
	apiToken string
}

func NewServer(logger zerolog.Logger, deps Deps, apiToken string) *Server {
	s := &Server{
		router:   chi.NewRouter(),
		logger:   logger,
		deps:     deps,
		apiToken: apiToken,
	}

	s.setupMiddleware()
	s.setupRoutes()

	return s
}

func (s *Server) setupMiddleware() {
	s.router.Use(middleware.RequestID)
	s.router.Use(middleware.RealIP)
	s.router.Use(mw.RequestLogger(s.logger))
	s.router.Use(middleware.Recoverer)
	s.router.Use(mw.Metrics("api"))
}

func (s *Server) setupRoutes() {
	// Prometheus metrics endpoint
	s.router.Handle("/metrics", promhttp.Handler())

	// Health check endpoints
	s.router.Get("/healthz", s.handleHealthz)
	s.router.Get("/readyz", s.handleReadyz)

	s.router.Route("/api/v1", func(r chi.Router) {
		r.Use(mw.Auth(s.apiToken))

		provision := handler.NewProvision(s.deps.Orchestrator)
		deployment := handler.NewDeployment(s.deps.Runs, s.deps.Logs, s.deps.Orchestrator)
		domain := handler.NewDomain(s.deps.Domains, s.deps.Pages, s.deps.Repair, s.deps.Orchestrator)
		landingPage := handler.NewLandingPage(s.deps.Domains, s.deps.Pages, s.deps.Orchestrator)

		r.Post("/provision", provision.Create)

		// Deployments
		r.Get("/deployments/{runId}", deployment.Get)
		r.Get("/deployments/{runId}/stream", deployment.Stream)
		r.Get("/deployments/{runId}/ws", deployment.WebSocket)
		r.Post("/deployments/{runId}/cancel", deployment.Cancel)

		// Domains
		r.Get("/domains", domain.List)
		r.Get("/domains/{id}", domain.Get)
		r.Delete("/domains/{id}", domain.Delete)
		r.Get("/domains/{id}/status", domain.Status)
		r.Post("/domains/{id}/verify", domain.Verify)
		r.Post("/domains/{id}/ban", domain.Ban)
		r.Get("/domains/{id}/deployments", deployment.ListByDomain)
		r.Get("/domains/{id}/landing-pages", landingPage.ListByDomain)

		// Landing pages
		r.Post("/landing-pages", landingPage.Create)
		r.Get("/landing-pages/{id}", landingPage.Get)
		r.Delete("/landing-pages/{id}", landingPage.Delete)
	})
}

func (s *Server) handleHealthz(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}

func (s *Server) handleReadyz(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 3*time.Second)
	defer cancel()

	checks := map[string]string{}
	healthy := true

	if err := s.deps.DB.Ping(ctx); err != nil {
		checks["core_db"] = err.Error()
		healthy = false
	} else {
		checks["core_db"] = "ok"
	}

	w.Header().Set("Content-Type", "application/json")
	if healthy {
		w.WriteHeader(http.StatusOK)
	} else {
		w.WriteHeader(http.StatusServiceUnavailable)
	}
	json.NewEncoder(w).Encode(checks)
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// NewSiteRouter serves tenant traffic. Every path goes to the site handler;
// only the health check is reserved.
func NewSiteRouter(logger zerolog.Logger, site http.Handler) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RealIP)
	r.Use(mw.RequestLogger(logger))
	r.Use(middleware.Recoverer)
	r.Use(mw.Metrics("site"))
	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Handle("/*", site)
	return r
}
