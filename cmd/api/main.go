package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"adreel/internal/domain"
	"adreel/internal/http/handlers"
	httpapi "adreel/internal/http/httpapi"
	"adreel/internal/infra"
	"adreel/internal/providers"
	"adreel/internal/providers/copywriter"
	"adreel/internal/providers/eden"
	"adreel/internal/providers/replicate"
	"adreel/internal/providers/simulator"
	"adreel/internal/render"
)

func main() {
	_ = godotenv.Load(".env", ".env.local")

	cfg, err := infra.LoadConfig()
	if err != nil {
		panic(err)
	}
	logger := infra.NewLogger(cfg.AppEnv)

	adapters := map[domain.ProviderID]providers.Adapter{
		domain.ProviderSimulator: simulator.New(simulator.Options{Delayed: cfg.SimulatorDelayed}),
		domain.ProviderEden: eden.NewClient(eden.Options{
			APIKey:    cfg.EdenAPIKey,
			BaseURL:   cfg.EdenBaseURL,
			Provider:  cfg.EdenProvider,
			VideoPath: cfg.EdenVideoPath,
		}),
		domain.ProviderReplicate: replicate.NewClient(replicate.Options{
			APIToken:     cfg.ReplicateAPIToken,
			BaseURL:      cfg.ReplicateBaseURL,
			ModelVersion: cfg.ReplicateModelVersion,
		}),
	}

	controller, err := render.NewController(render.ControllerOptions{
		Adapters:            adapters,
		DefaultProvider:     domain.ProviderID(cfg.RenderProvider),
		ForceSimulator:      cfg.UseSimulator,
		FallbackToSimulator: cfg.SimulatorFallback,
		Logger:              &logger,
	})
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build render controller")
	}

	copyGen := copywriter.NewOpenAI(copywriter.OpenAIOptions{
		APIKey:   cfg.OpenAIAPIKey,
		Model:    cfg.OpenAIModel,
		BaseURL:  cfg.OpenAIBaseURL,
		Fallback: copywriter.NewStatic(),
	})

	app := handlers.NewApp(logger, cfg, controller, copyGen)
	router := httpapi.NewRouter(app)
	server := infra.NewHTTPServer(cfg, router)

	go func() {
		logger.Info().Msgf("API listening on :%s", cfg.Port)
		if err := server.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal().Err(err).Msg("http server failed")
		}
	}()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	<-stop

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.HTTPIdleTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		logger.Error().Err(err).Msg("failed to shutdown server")
	}
	logger.Info().Msg("server stopped")
}
