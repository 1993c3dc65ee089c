package handler

import (
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	mw "github.com/OkanLimitless/webpage-creator-sub002/internal/api/middleware"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/request"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/response"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/model"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/platform"
)

type LandingPage struct {
	domains DomainRegistry
	pages   PageRegistry
	orch    Provisioner
	now     func() time.Time
}

func NewLandingPage(domains DomainRegistry, pages PageRegistry, orch Provisioner) *LandingPage {
	return &LandingPage{domains: domains, pages: pages, orch: orch, now: time.Now}
}

// LandingPageCreated is returned once the binding exists and its run is queued.
type LandingPageCreated struct {
	LandingPage *model.LandingPage `json:"landingPage"`
	RunID       string             `json:"runId"`
}

// Create godoc
//
//	@Summary		Create a landing page
//	@Description	Binds a subdomain (or the root of an externally-managed domain) to content and starts a deployment run for its host.
//	@Tags			Landing Pages
//	@Security		BearerAuth
//	@Param			body	body		request.CreateLandingPage	true	"Landing page"
//	@Success		202		{object}	LandingPageCreated
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/landing-pages [post]
func (h *LandingPage) Create(w http.ResponseWriter, r *http.Request) {
	var req request.CreateLandingPage
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, err := h.domains.GetByID(r.Context(), req.DomainID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	now := h.now().UTC()
	page := &model.LandingPage{
		ID:        platform.NewID(),
		DomainID:  domain.ID,
		Subdomain: req.Subdomain,
		Name:      req.Name,
		Title:     req.Title,
		Body:      req.Body,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := h.pages.Create(r.Context(), page, domain); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	run, err := h.orch.Start(r.Context(), domain.ID, page.Subdomain)
	if err != nil {
		mw.Logger(r).Warn().Err(err).Str("landing_page_id", page.ID).Str("host", page.Host(domain.Name)).
			Msg("landing page created but its deployment did not start")
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, LandingPageCreated{LandingPage: page, RunID: run.ID})
}

// Get godoc
//
//	@Summary		Get a landing page
//	@Tags			Landing Pages
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Landing page ID"
//	@Success		200	{object}	model.LandingPage
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/landing-pages/{id} [get]
func (h *LandingPage) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, page)
}

// ListByDomain godoc
//
//	@Summary		List a domain's landing pages
//	@Tags			Landing Pages
//	@Security		BearerAuth
//	@Param			id	path	string	true	"Domain ID"
//	@Success		200	{array}	model.LandingPage
//	@Router			/domains/{id}/landing-pages [get]
func (h *LandingPage) ListByDomain(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	pages, err := h.pages.ListByDomain(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	response.WriteJSON(w, http.StatusOK, orEmpty(pages))
}

// Delete godoc
//
//	@Summary		Delete a landing page
//	@Description	Removes the binding and queues removal of its host from both providers. With deleteDomain=true the owning domain is deleted too, provided this was its only binding; otherwise 409.
//	@Tags			Landing Pages
//	@Security		BearerAuth
//	@Param			id				path	string	true	"Landing page ID"
//	@Param			deleteDomain	query	bool	false	"Also delete the domain"
//	@Success		204
//	@Failure		404	{object}	response.ErrorResponse
//	@Failure		409	{object}	response.ErrorResponse
//	@Router			/landing-pages/{id} [delete]
func (h *LandingPage) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	withDomain, err := request.QueryBool(r, "deleteDomain")
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	page, err := h.pages.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}
	domain, err := h.domains.GetByID(r.Context(), page.DomainID)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	if withDomain {
		if err := h.deleteWithDomain(r, page, domain); err != nil {
			response.WriteServiceError(w, err)
			return
		}
		w.WriteHeader(http.StatusNoContent)
		return
	}

	if err := h.pages.Delete(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}
	mw.Logger(r).Info().Str("landing_page_id", id).Str("host", page.Host(domain.Name)).Msg("landing page deleted")
	// The root binding shares the domain's host, which stays attached until the domain goes.
	if page.Subdomain != "" {
		h.orch.Teardown(domain, []string{page.Host(domain.Name)})
	}
	w.WriteHeader(http.StatusNoContent)
}

// deleteWithDomain removes page and then its domain. The domain must have no
// other binding and no run in flight.
func (h *LandingPage) deleteWithDomain(r *http.Request, page *model.LandingPage, domain *model.Domain) error {
	ctx := r.Context()
	if domain.ActiveRunID != nil {
		return fmt.Errorf("domain %s has deployment %s in progress: %w", domain.Name, *domain.ActiveRunID, model.ErrConflict)
	}
	bound, err := h.pages.ListByDomain(ctx, domain.ID)
	if err != nil {
		return err
	}
	for i := range bound {
		if bound[i].ID != page.ID {
			return fmt.Errorf("domain %s still has landing page %s: %w", domain.Name, bound[i].ID, model.ErrConflict)
		}
	}

	if err := h.pages.Delete(ctx, page.ID); err != nil {
		return err
	}
	mw.Logger(r).Info().Str("landing_page_id", page.ID).Str("host", page.Host(domain.Name)).Msg("landing page deleted")
	var extra []string
	if page.Subdomain != "" {
		extra = append(extra, page.Host(domain.Name))
	}
	return deleteDomain(r, h.domains, h.pages, h.orch, domain.ID, false, extra...)
}
