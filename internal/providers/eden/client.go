// Package eden integrates the Eden AI job-based video generation API.
package eden

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adreel/internal/domain"
	"adreel/internal/providers"
)

// jobIDFields lists the spellings under which Eden responses have been seen
// carrying the job identifier. They are tried in order.
var jobIDFields = []string{"job_id", "public_id", "id", "jobId"}

// directURLFields are checked when no job id comes back; some providers
// behind Eden resolve immediately with a hosted asset.
var directURLFields = []string{"preview_url", "previewUrl", "video_resource_url", "url"}

// Options configures the Eden client.
type Options struct {
	APIKey string
	// BaseURL defaults to the public Eden v2 endpoint.
	BaseURL string
	// Provider names the upstream engine Eden should dispatch to (e.g. "pika").
	Provider string
	// VideoPath overrides the generation route; it is not fixed across
	// Eden account tiers.
	VideoPath  string
	HTTPClient *http.Client
}

// Client implements providers.Adapter against Eden's asynchronous job API.
type Client struct {
	apiKey    string
	baseURL   string
	provider  string
	videoPath string
	client    *http.Client
}

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.edenai.run/v2"
	}
	provider := strings.TrimSpace(opts.Provider)
	if provider == "" {
		provider = "pika"
	}
	videoPath := opts.VideoPath
	if videoPath == "" {
		videoPath = "/video/generation"
	}
	if !strings.HasPrefix(videoPath, "/") {
		videoPath = "/" + videoPath
	}
	return &Client{
		apiKey:    strings.TrimSpace(opts.APIKey),
		baseURL:   baseURL,
		provider:  provider,
		videoPath: videoPath,
		client:    client,
	}
}

func (c *Client) ID() domain.ProviderID {
	return domain.ProviderEden
}

func (c *Client) HasCredentials() bool {
	return c.apiKey != ""
}

type startPayload struct {
	Providers         string `json:"providers"`
	Text              string `json:"text"`
	Resolution        string `json:"resolution"`
	FallbackProviders string `json:"fallback_providers"`
}

// Start posts a generation request. Eden does not guarantee a single field
// name for the job id, so a known set of spellings is probed; a response
// carrying a direct asset URL instead of an id counts as synchronous success.
func (c *Client) Start(ctx context.Context, req domain.GenerationRequest) (providers.StartOutcome, error) {
	payload := startPayload{
		Providers:  c.provider,
		Text:       buildPrompt(req),
		Resolution: "720p",
	}
	decoded, _, err := providers.DoJSON(ctx, c.client, http.MethodPost, c.baseURL+c.videoPath, c.apiKey, payload)
	if err != nil {
		return providers.StartOutcome{}, fmt.Errorf("eden: start: %w", err)
	}

	if jobID := providers.StringField(decoded, jobIDFields...); jobID != "" {
		return providers.StartOutcome{Handle: &domain.JobHandle{
			ID:        jobID,
			Provider:  domain.ProviderEden,
			CreatedAt: time.Now(),
		}}, nil
	}
	if url := providers.StringField(decoded, directURLFields...); url != "" {
		status := domain.Succeeded(url)
		return providers.StartOutcome{Status: &status}, nil
	}
	return providers.StartOutcome{}, fmt.Errorf("eden: start: %w: no job id or asset url in response", domain.ErrUpstreamContract)
}

// Poll fetches the provider's native job representation. A 404 means the job
// id is gone on Eden's side, which is an unknown-job condition rather than a
// transport fault.
func (c *Client) Poll(ctx context.Context, handle domain.JobHandle) (map[string]any, error) {
	if strings.TrimSpace(handle.ID) == "" {
		return nil, &domain.ValidationError{Field: "job_id", Detail: "job id is required"}
	}
	decoded, code, err := providers.DoJSON(ctx, c.client, http.MethodGet, c.baseURL+c.videoPath+"/"+handle.ID, c.apiKey, nil)
	if err != nil {
		if code == http.StatusNotFound {
			return nil, fmt.Errorf("eden: poll: %w: %s", domain.ErrUnknownJob, handle.ID)
		}
		return nil, fmt.Errorf("eden: poll: %w", err)
	}
	return decoded, nil
}

func buildPrompt(req domain.GenerationRequest) string {
	prompt := strings.TrimSpace(req.Prompt)
	if tone := strings.TrimSpace(req.Tone); tone != "" {
		prompt = fmt.Sprintf("%s. Tone: %s.", prompt, tone)
	}
	return prompt
}

var (
	_ providers.Adapter = (*Client)(nil)
	_ providers.Ready   = (*Client)(nil)
)
