package infra

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config represents application configuration loaded from environment
// variables. It is read once at startup and never mutated afterwards.
type Config struct {
	AppEnv         string
	Port           string
	AllowedOrigins []string

	// RenderProvider selects the active backend ("simulator", "eden",
	// "replicate"). UseSimulator forces the simulator regardless of the
	// selection; it defaults to on so demo environments work with zero
	// credentials. SimulatorFallback controls whether a selected provider
	// with missing credentials silently degrades to the simulator instead
	// of failing the request.
	RenderProvider    string
	UseSimulator      bool
	SimulatorDelayed  bool
	SimulatorFallback bool

	EdenAPIKey    string
	EdenBaseURL   string
	EdenProvider  string
	EdenVideoPath string

	ReplicateAPIToken     string
	ReplicateBaseURL      string
	ReplicateModelVersion string

	OpenAIAPIKey  string
	OpenAIModel   string
	OpenAIBaseURL string

	PollInterval           time.Duration
	PollTimeout            time.Duration
	PollMaxTransportErrors int

	HTTPReadTimeout  time.Duration
	HTTPWriteTimeout time.Duration
	HTTPIdleTimeout  time.Duration
}

// LoadConfig loads configuration from environment variables and applies
// defaults where needed. There are no required values: with an empty
// environment the service runs fully simulated.
func LoadConfig() (*Config, error) {
	cfg := &Config{
		AppEnv:         getEnv("APP_ENV", "development"),
		Port:           getEnv("PORT", "8080"),
		AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "*")),

		RenderProvider:    strings.ToLower(getEnv("RENDER_PROVIDER", "simulator")),
		UseSimulator:      getEnvBool("USE_SIMULATOR", true),
		SimulatorDelayed:  getEnvBool("SIMULATOR_DELAYED", false),
		SimulatorFallback: getEnvBool("SIMULATOR_FALLBACK", true),

		EdenAPIKey:    os.Getenv("EDEN_API_KEY"),
		EdenBaseURL:   getEnv("EDEN_BASE", "https://api.edenai.run/v2"),
		EdenProvider:  getEnv("EDEN_PROVIDER", "pika"),
		EdenVideoPath: getEnv("EDEN_VIDEO_PATH", "/video/generation"),

		ReplicateAPIToken:     firstEnv("REPLICATE_API_TOKEN", "REPLICATE_API_KEY"),
		ReplicateBaseURL:      getEnv("REPLICATE_BASE", "https://api.replicate.com/v1"),
		ReplicateModelVersion: os.Getenv("REPLICATE_MODEL_VERSION"),

		OpenAIAPIKey:  os.Getenv("OPENAI_API_KEY"),
		OpenAIModel:   getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIBaseURL: getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),

		PollInterval:           getEnvDuration("POLL_INTERVAL", 2*time.Second),
		PollTimeout:            getEnvDuration("POLL_TIMEOUT", 3*time.Minute),
		PollMaxTransportErrors: getEnvInt("POLL_MAX_TRANSPORT_ERRORS", 3),

		HTTPReadTimeout:  time.Second * time.Duration(getEnvInt("HTTP_READ_TIMEOUT_SECONDS", 15)),
		HTTPWriteTimeout: time.Second * time.Duration(getEnvInt("HTTP_WRITE_TIMEOUT_SECONDS", 300)),
		HTTPIdleTimeout:  time.Second * time.Duration(getEnvInt("HTTP_IDLE_TIMEOUT_SECONDS", 60)),
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return v
	}
	return fallback
}

func firstEnv(keys ...string) string {
	for _, key := range keys {
		if v := os.Getenv(key); v != "" {
			return v
		}
	}
	return ""
}

func getEnvInt(key string, fallback int) int {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvBool(key string, fallback bool) bool {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		return strings.ToLower(v) != "false"
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if v, ok := os.LookupEnv(key); ok && v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return fallback
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			out = append(out, trimmed)
		}
	}
	return out
}
