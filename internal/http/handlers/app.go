package handlers

import (
	"encoding/json"
	"net/http"

	"adreel/internal/infra"
	"adreel/internal/providers/copywriter"
	"adreel/internal/render"
)

// App is the handler container injected into the router.
type App struct {
	Logger     infra.Logger
	Config     *infra.Config
	Controller *render.Controller
	Copy       copywriter.Generator
}

func NewApp(logger infra.Logger, cfg *infra.Config, controller *render.Controller, copyGen copywriter.Generator) *App {
	return &App{
		Logger:     logger,
		Config:     cfg,
		Controller: controller,
		Copy:       copyGen,
	}
}

func (a *App) json(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

func (a *App) error(w http.ResponseWriter, code int, kind, detail string) {
	a.json(w, code, map[string]string{"error": kind, "detail": detail})
}
