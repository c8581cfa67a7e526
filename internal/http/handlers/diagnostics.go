package handlers

import (
	"net/http"

	"adreel/internal/domain"
)

// EnvCheck handles GET /v1/diagnostics/env. It reports key presence only;
// credential values never leave the process.
func (a *App) EnvCheck(w http.ResponseWriter, r *http.Request) {
	a.json(w, http.StatusOK, map[string]any{
		"app_env":               a.Config.AppEnv,
		"render_provider":       a.Config.RenderProvider,
		"use_simulator":         a.Config.UseSimulator,
		"simulator_fallback":    a.Config.SimulatorFallback,
		"eden_key_present":      a.Config.EdenAPIKey != "",
		"replicate_key_present": a.Config.ReplicateAPIToken != "",
		"openai_key_present":    a.Config.OpenAIAPIKey != "",
	})
}

// Probe handles POST /v1/diagnostics/probe: fire one short start request at
// the configured provider and report how it answered, for debugging account
// and endpoint-path issues without going through the wizard.
func (a *App) Probe(w http.ResponseWriter, r *http.Request) {
	result, err := a.Controller.StartJob(r.Context(), domain.GenerationRequest{
		Prompt: "1-second test clip",
	})
	if err != nil {
		a.json(w, http.StatusOK, map[string]any{
			"ok":    false,
			"error": err.Error(),
		})
		return
	}
	out := map[string]any{"ok": true}
	if result.Handle != nil {
		out["job_id"] = result.Handle.ID
		out["provider"] = string(result.Handle.Provider)
	}
	if result.Status != nil {
		out["status"] = result.Status
	}
	a.json(w, http.StatusOK, out)
}
