package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/coder/websocket"
	"github.com/coder/websocket/wsjson"
	"github.com/go-chi/chi/v5"

	mw "github.com/OkanLimitless/webpage-creator-sub002/internal/api/middleware"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/request"
	"github.com/OkanLimitless/webpage-creator-sub002/internal/api/response"
)

type Deployment struct {
	runs   RunReader
	orch   Provisioner
	follow follower
}

func NewDeployment(runs RunReader, logs LogSubscriber, orch Provisioner) *Deployment {
	return &Deployment{
		runs:   runs,
		orch:   orch,
		follow: follower{runs: runs, logs: logs, poll: time.Second},
	}
}

// Get godoc
//
//	@Summary		Get a deployment run
//	@Description	Returns the current snapshot of a deployment run including its full log.
//	@Tags			Deployments
//	@Security		BearerAuth
//	@Param			runId	path		string	true	"Run ID"
//	@Success		200		{object}	model.DomainDeployment
//	@Failure		400		{object}	response.ErrorResponse
//	@Failure		404		{object}	response.ErrorResponse
//	@Router			/deployments/{runId} [get]
func (h *Deployment) Get(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "runId"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	run, err := h.runs.GetByID(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, run)
}

// ListByDomain godoc
//
//	@Summary		List deployment runs of a domain
//	@Description	Returns the domain's runs, newest first, without logs.
//	@Tags			Deployments
//	@Security		BearerAuth
//	@Param			id	path		string	true	"Domain ID"
//	@Success		200	{array}		model.DomainDeployment
//	@Failure		400	{object}	response.ErrorResponse
//	@Router			/domains/{id}/deployments [get]
func (h *Deployment) ListByDomain(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "id"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	runs, err := h.runs.ListByDomain(r.Context(), id)
	if err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusOK, orEmpty(runs))
}

// Cancel godoc
//
//	@Summary		Cancel a deployment run
//	@Description	Asks a running deployment to stop before its next provider call. The run ends as cancelled and the domain keeps its previous deployment status.
//	@Tags			Deployments
//	@Security		BearerAuth
//	@Param			runId	path		string	true	"Run ID"
//	@Success		202		{object}	map[string]string
//	@Failure		404		{object}	response.ErrorResponse
//	@Failure		409		{object}	response.ErrorResponse
//	@Router			/deployments/{runId}/cancel [post]
func (h *Deployment) Cancel(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "runId"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.orch.Cancel(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	response.WriteJSON(w, http.StatusAccepted, map[string]string{"runId": id, "status": "cancellation_requested"})
}

// Stream godoc
//
//	@Summary		Stream a deployment log
//	@Description	Server-sent events carrying one JSON object per log entry ({"output": ...}). The last event has "complete": true and the stream then closes.
//	@Tags			Deployments
//	@Security		BearerAuth
//	@Produce		text/event-stream
//	@Param			runId	path	string	true	"Run ID"
//	@Success		200
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/deployments/{runId}/stream [get]
func (h *Deployment) Stream(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "runId"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	flusher, ok := w.(http.Flusher)
	if !ok {
		response.WriteError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}
	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	err = h.follow.follow(r.Context(), id, func(ev StreamEvent) error {
		data, err := json.Marshal(ev)
		if err != nil {
			return err
		}
		if _, err := w.Write(append(append([]byte("data: "), data...), '\n', '\n')); err != nil {
			return err
		}
		flusher.Flush()
		return nil
	})
	if err != nil && r.Context().Err() == nil {
		mw.Logger(r).Warn().Err(err).Str("run_id", id).Msg("deployment stream ended early")
	}
}

// WebSocket godoc
//
//	@Summary		Stream a deployment log over WebSocket
//	@Description	Same events as the server-sent stream, one JSON text message each. The server closes the connection after the complete event.
//	@Tags			Deployments
//	@Security		BearerAuth
//	@Param			runId	path	string	true	"Run ID"
//	@Success		101
//	@Failure		404	{object}	response.ErrorResponse
//	@Router			/deployments/{runId}/ws [get]
func (h *Deployment) WebSocket(w http.ResponseWriter, r *http.Request) {
	id, err := request.RequireID(chi.URLParam(r, "runId"))
	if err != nil {
		response.WriteError(w, http.StatusBadRequest, err.Error())
		return
	}
	if _, err := h.runs.GetByID(r.Context(), id); err != nil {
		response.WriteServiceError(w, err)
		return
	}

	conn, err := websocket.Accept(w, r, &websocket.AcceptOptions{
		InsecureSkipVerify: true, // Dashboards connect cross-origin; the API token authenticates.
	})
	if err != nil {
		mw.Logger(r).Error().Err(err).Msg("websocket upgrade failed")
		return
	}
	defer conn.CloseNow()

	ctx := conn.CloseRead(r.Context())
	err = h.follow.follow(ctx, id, func(ev StreamEvent) error {
		return wsjson.Write(ctx, conn, ev)
	})
	switch {
	case err == nil:
		conn.Close(websocket.StatusNormalClosure, "deployment finished")
	case errors.Is(err, ctx.Err()):
	default:
		mw.Logger(r).Warn().Err(err).Str("run_id", id).Msg("deployment websocket ended early")
		conn.Close(websocket.StatusInternalError, "stream failed")
	}
}

func orEmpty[T any](items []T) []T {
	if items == nil {
		return []T{}
	}
	return items
}
