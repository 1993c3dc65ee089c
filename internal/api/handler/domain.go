package handler

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"

	mw "github.com/OkanLimitless/webpage-creator-sub002/internal/api/middleware"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/request"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/response"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
)

type Domain struct {
	domains DomainRegistry
	pages   PageRegistry
	repair  Reconciler
	orch    Provisioner
}

func NewDomain(domains DomainRegistry, pages PageRegistry, repair Reconciler, orch Provisioner) *Domain {
	return &Domain{domains: domains, pages: pages, repair: repair, orch: orch}
}

// List godoc
//
//	@Summary		List domains
//	@Tags			Domains
//	@Security		BearerAuth
//	@Success		200	{array}		model.Domain
//	@Router			/domains [get]
func (h *Domain) List(w http.ResponseWriter, r *http.Request) {
	domains, err := h.domains.List(r.Context())
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, orEmpty(domains))
}

// Get godoc
//
//	@Summary		Get a domain
//	@Tags			Domains
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Domain ID"
//	@Success		200	{object}	model.Domain
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/domains/{id} [get]
func (h *Domain) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.domains.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, domain)
}

// Status godoc
//
//	@Summary		Check domain configuration
//	@Description	Compares the registry with the DNS and hosting providers. With repair=true the safe corrective actions are applied and reported separately from the detected mismatches.
//	@Tags			Domains
//	@Security		BearerAuth
//	@Param			id		path		string	true	"Domain ID"
//	@Param			repair	query		bool	false	"Apply safe repairs"
//	@Success		200		{object}	repair.Report
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		502		{object}	response.ErrorResponse
//	@Router			/domains/{id}/status [get]
func (h *Domain) Status(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	fix, err := request.QueryBool(r, "repair")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	report, err := h.repair.Check(r.Context(), id, fix)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, report)
}

// Verify godoc
//
//	@Summary		Refresh a domain's verification status
//	@Tags			Domains
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Domain ID"
//	@Success		200	{object}	repair.Verification
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/domains/{id}/verify [post]
func (h *Domain) Verify(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	v, err := h.repair.Verify(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, v)
}

// Ban godoc
//
//	@Summary		Record an abuse report against a domain
//	@Tags			Domains
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Domain ID"
//	@Success		200	{object}	map[string]any
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/domains/{id}/ban [post]
func (h *Domain) Ban(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	count, err := h.domains.IncrementBanCount(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	mw.Logger(r).Info().Str("domain_id", id).Int("ban_count", count).Msg("domain ban count incremented")
	response.WriteJSON(w, http.StatusOK, map[string]any{"id": id, "banCount": count})
}

// Delete godoc
//
//	@Summary		Delete a domain
//	@Description	Removes the domain from the registry and queues best-effort removal of its hosts from both providers. Landing pages are removed with it only when cascade=true.
//	@Tags			Domains
//	@Security		BearerAuth
//	@Param			id		path	string	true	"Domain ID"
//	@Param			cascade	query	bool	false	"Also delete landing pages"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/domains/{id} [delete]
func (h *Domain) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	cascade, err := request.QueryBool(r, "cascade")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := deleteDomain(r, h.domains, h.pages, h.orch, id, cascade); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteDomain removes a domain that has no active run and hands its hosts
// to the orchestrator for provider cleanup.
func deleteDomain(r *http.Request, domains DomainRegistry, pages PageRegistry, orch Provisioner, id string, cascade bool, extra ...string) error {
	ctx := r.Context()
	domain, err := domains.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if domain.ActiveRunID != nil {
		return fmt.Errorf("domain %s has deployment %s in progress: %w", domain.Name, *domain.ActiveRunID, model.ErrConflict)
	}

	bound, err := pages.ListByDomain(ctx, id)
	if err != nil {
		return err
	}
	hosts := append([]string{domain.Name}, extra...)
	for i := range bound {
		if bound[i].Subdomain != "" {
			hosts = append(hosts, bound[i].Host(domain.Name))
		}
	}

	if err := domains.Delete(ctx, id, cascade); err != nil {
		return err
	}
	mw.Logger(r).Info().Str("domain", domain.Name).Bool("cascade", cascade).Int("hosts", len(hosts)).Msg("domain deleted")
	orch.Teardown(domain, hosts)
	return nil
}
