// Package site serves tenant landing pages on the public traffic listener.
package site

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/resolver"
)

const sitesPrefix = "/_sites/"

// DomainLookup finds a registered domain by name.
type DomainLookup interface {
	GetByName(ctx context.Context, name string) (*model.Domain, error)
}

// BindingLookup finds the binding for a domain and subdomain label.
type BindingLookup interface {
	GetBinding(ctx context.Context, domainID, subdomain string) (*model.LandingPage, error)
}

type Handler struct {
	resolver *resolver.Resolver
	domains  DomainLookup
	pages    BindingLookup
	logger   zerolog.Logger
}

func NewHandler(res *resolver.Resolver, domains DomainLookup, pages BindingLookup, logger zerolog.Logger) *Handler {
	return &Handler{
		resolver: res,
		domains:  domains,
		pages:    pages,
		logger:   logger.With().Str("component", "site").Logger(),
	}
}

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		writeText(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	res := h.resolver.Resolve(r.Host, hintFrom(r))
	logger := h.logger.With().Str("host", res.Host).Str("domain", res.DomainName).Str("subdomain", res.Subdomain).Logger()
	if res.Issue != "" {
		logger.Debug().Str("issue", res.Issue).Msg("host resolution issue")
	}

	if res.DomainName == "" {
		writeText(w, http.StatusNotFound, "unknown host: "+res.Host)
		return
	}
	domain, err := h.domains.GetByName(r.Context(), res.DomainName)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error().Err(err).Msg("domain lookup failed")
			writeText(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeText(w, http.StatusNotFound, "unknown host: "+res.Host)
		return
	}

	page, err := h.binding(r.Context(), domain.ID, res.Subdomain)
	if err != nil {
		if !errors.Is(err, model.ErrNotFound) {
			logger.Error().Err(err).Msg("binding lookup failed")
			writeText(w, http.StatusInternalServerError, "internal error")
			return
		}
		writeText(w, http.StatusNotFound, "no landing page for "+res.Host)
		return
	}

	host := page.Host(domain.Name)
	body, err := Render(page, host)
	if err != nil {
		logger.Error().Err(err).Str("landing_page", page.ID).Msg("rendering landing page failed")
		writeText(w, http.StatusInternalServerError, "internal error")
		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(http.StatusOK)
	if r.Method == http.MethodGet {
		w.Write(body)
	}
}

// binding looks up the subdomain binding and falls back to the root binding
// when the label has none.
func (h *Handler) binding(ctx context.Context, domainID, subdomain string) (*model.LandingPage, error) {
	if subdomain != "" {
		page, err := h.pages.GetBinding(ctx, domainID, subdomain)
		if err == nil || !errors.Is(err, model.ErrNotFound) {
			return page, err
		}
	}
	return h.pages.GetBinding(ctx, domainID, "")
}

// hintFrom reads an explicit subdomain from the subdomain query parameter or
// a /_sites/{label} path prefix.
func hintFrom(r *http.Request) string {
	if s := r.URL.Query().Get("subdomain"); s != "" {
		return s
	}
	if rest, ok := strings.CutPrefix(r.URL.Path, sitesPrefix); ok {
		label, _, _ := strings.Cut(rest, "/")
		return label
	}
	return ""
}

func writeText(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "text/plain; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	w.Write([]byte(msg + "\n"))
}
