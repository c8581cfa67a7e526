package handlers

import (
	"encoding/json"
	"net/http"
	"strings"

	"adreel/internal/middleware"
	"adreel/internal/providers/copywriter"
)

type copyRequest struct {
	Prompt string `json:"prompt"`
	Tone   string `json:"tone,omitempty"`
}

// CopyGenerate handles POST /v1/copy: one stateless script/caption/hashtags
// generation for the brief.
func (a *App) CopyGenerate(w http.ResponseWriter, r *http.Request) {
	var req copyRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		a.error(w, http.StatusBadRequest, "bad_request", "invalid payload")
		return
	}
	if strings.TrimSpace(req.Prompt) == "" {
		a.error(w, http.StatusBadRequest, "bad_request", "prompt is required")
		return
	}

	out, err := a.Copy.GenerateCopy(r.Context(), copywriter.Request{
		Prompt: req.Prompt,
		Tone:   req.Tone,
		Locale: middleware.LocaleFromContext(r.Context()),
	})
	if err != nil {
		a.Logger.Error().Err(err).Msg("copy generation failed")
		a.error(w, http.StatusBadGateway, "upstream_unavailable", "copy generation failed")
		return
	}
	a.json(w, http.StatusOK, out)
}
