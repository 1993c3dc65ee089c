package handler

import (
	"net/http"

	mw "github.com/OkanLimitless/webpage-creator-sub002/internal/api/middleware"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/request"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/response"
)

type Provision struct {
	orch Provisioner
}

func NewProvision(orch Provisioner) *Provision {
	return &Provision{orch: orch}
}

// ProvisionAccepted is returned once the run is queued.
type ProvisionAccepted struct {
	RunID    string `json:"runId"`
	DomainID string `json:"domainId"`
	Host     string `json:"host"`
	Status   string `json:"status"`
}

// Create godoc
//
//	@Summary		Provision a domain
//	@Description	Registers the domain if it is new and starts a deployment run for its bare host. Returns 202 as soon as the run is queued; follow it through /deployments/{runId} or its stream.
//	@Tags			Provisioning
//	@Security		BearerAuth
//	@Param			body	body		request.Provision	true	"Domain and DNS management mode"
//	@Success		202		{object}	ProvisionAccepted
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Failure		503		{object}	response.ErrorResponse
//	@Router			/provision [post]
func (h *Provision) Create(w http.ResponseWriter, r *http.Request) {
	var req request.Provision
	if err := request.Decode(r, &req); err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	domain, run, err := h.orch.Provision(r.Context(), req.DomainName, req.DNSManagement)
	if err != nil {
		mw.Logger(r).Warn().Err(err).Str("domain", req.DomainName).Msg("provision rejected")
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, ProvisionAccepted{
		RunID:    run.ID,
		DomainID: domain.ID,
		Host:     run.Host,
		Status:   run.Status,
	})
}
