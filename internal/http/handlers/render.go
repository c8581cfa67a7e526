package handlers

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"adreel/internal/domain"
	"adreel/internal/render"
)

type renderRequest struct {
	Prompt   string `json:"prompt"`
	Tone     string `json:"tone,omitempty"`
	Format   string `json:"format,omitempty"`
	Provider string `json:"provider,omitempty"`
}

type renderAccepted struct {
	JobID     string    `json:"job_id"`
	Provider  string    `json:"provider"`
	CreatedAt time.Time `json:"created_at"`
}

// RenderStart handles POST /v1/render: start a generation job and answer
// with either the terminal status (synchronous providers) or a job id to
// poll.
func (a *App) RenderStart(w http.ResponseWriter, r *http.Request) {
	var req renderRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}

	result, err := a.Controller.StartJob(r.Context(), domain.GenerationRequest{
		Prompt:       req.Prompt,
		Tone:         req.Tone,
		Format:       domain.AspectRatio(req.Format),
		ProviderHint: req.Provider,
	})
	if err != nil {
		a.startError(w, err)
		return
	}

	if result.Status != nil {
		a.json(w, http.StatusOK, map[string]any{"status": result.Status})
		return
	}
	a.json(w, http.StatusAccepted, renderAccepted{
		JobID:     result.Handle.ID,
		Provider:  string(result.Handle.Provider),
		CreatedAt: result.Handle.CreatedAt,
	})
}

// RenderStatus handles GET /v1/render/{job_id}: one canonical snapshot.
func (a *App) RenderStatus(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	status, err := a.Controller.PollJob(r.Context(), jobID)
	if err != nil {
		a.pollError(w, err)
		return
	}
	a.json(w, http.StatusOK, map[string]any{"status": status})
}

// RenderWait handles GET /v1/render/{job_id}/wait: drives the poller
// server-side and answers with the terminal snapshot, for clients that
// prefer one long request over their own polling loop.
func (a *App) RenderWait(w http.ResponseWriter, r *http.Request) {
	jobID := chi.URLParam(r, "job_id")
	if _, ok := a.Controller.Handle(jobID); !ok {
		a.error(w, http.StatusNotFound, "not_found", "unknown job id")
		return
	}

	poller := render.NewPoller(a.Controller.PollJob, render.PollerConfig{
		Interval:                      a.Config.PollInterval,
		Timeout:                       a.Config.PollTimeout,
		MaxConsecutiveTransportErrors: a.Config.PollMaxTransportErrors,
	})
	final := poller.Run(r.Context(), jobID, nil)
	a.json(w, http.StatusOK, map[string]any{"status": final})
}

func (a *App) startError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrConfiguration):
		a.error(w, http.StatusServiceUnavailable, "not_configured", err.Error())
	case errors.Is(err, domain.ErrTransport):
		a.error(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("render start failed")
		a.error(w, http.StatusInternalServerError, "internal", "render failed")
	}
}

func (a *App) pollError(w http.ResponseWriter, err error) {
	switch {
	case domain.IsValidation(err):
		a.error(w, http.StatusBadRequest, "bad_request", err.Error())
	case errors.Is(err, domain.ErrUnknownJob):
		a.error(w, http.StatusNotFound, "not_found", "unknown job id")
	case errors.Is(err, domain.ErrTransport):
		a.error(w, http.StatusBadGateway, "upstream_unavailable", err.Error())
	default:
		a.Logger.Error().Err(err).Msg("render status failed")
		a.error(w, http.StatusInternalServerError, "internal", "status check failed")
	}
}
