package httpapi

import (
	stdhttp "net/http"

	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"

	"adreel/internal/http/handlers"
	"adreel/internal/middleware"
)

func NewRouter(app *handlers.App) stdhttp.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID, chimw.RealIP, chimw.Recoverer)
	r.Use(middleware.CORS(app.Config.AllowedOrigins))
	r.Use(middleware.Logger(app.Logger))
	r.Use(middleware.I18N("en"))

	r.Get("/v1/healthz", app.Health)

	r.Route("/v1/render", func(r chi.Router) {
		r.Post("/", app.RenderStart)
		r.Get("/{job_id}", app.RenderStatus)
		r.Get("/{job_id}/wait", app.RenderWait)
	})

	r.Post("/v1/copy", app.CopyGenerate)

	r.Route("/v1/diagnostics", func(r chi.Router) {
		r.Get("/env", app.EnvCheck)
		r.Post("/probe", app.Probe)
	})

	return r
}
