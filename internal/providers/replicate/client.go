// Package replicate integrates Replicate's prediction REST API.
package replicate

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"adreel/internal/domain"
	"adreel/internal/providers"
)

// Options configures the Replicate client.
type Options struct {
	// APIToken accepts either of the two env spellings Replicate deployments
	// have used (REPLICATE_API_TOKEN, REPLICATE_API_KEY).
	APIToken string
	BaseURL  string
	// ModelVersion is the prediction version id. Text-to-video models on
	// Replicate change often, so this stays configurable per deployment.
	ModelVersion string
	HTTPClient   *http.Client
}

// Client implements providers.Adapter against the predictions endpoint.
type Client struct {
	token        string
	baseURL      string
	modelVersion string
	client       *http.Client
}

const defaultModelVersion = "zeroscope-v2-xl"

func NewClient(opts Options) *Client {
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: 30 * time.Second}
	}
	baseURL := strings.TrimRight(opts.BaseURL, "/")
	if baseURL == "" {
		baseURL = "https://api.replicate.com/v1"
	}
	version := strings.TrimSpace(opts.ModelVersion)
	if version == "" {
		version = defaultModelVersion
	}
	return &Client{
		token:        strings.TrimSpace(opts.APIToken),
		baseURL:      baseURL,
		modelVersion: version,
		client:       client,
	}
}

func (c *Client) ID() domain.ProviderID {
	return domain.ProviderReplicate
}

func (c *Client) HasCredentials() bool {
	return c.token != ""
}

type predictionInput struct {
	Prompt      string `json:"prompt"`
	NumFrames   int    `json:"num_frames"`
	FPS         int    `json:"fps"`
	AspectRatio string `json:"aspect_ratio,omitempty"`
}

type predictionPayload struct {
	Version string          `json:"version"`
	Input   predictionInput `json:"input"`
}

// Start creates a prediction and returns its id as a handle. Predictions are
// never resolved synchronously by this API, so a missing id is a contract
// violation.
func (c *Client) Start(ctx context.Context, req domain.GenerationRequest) (providers.StartOutcome, error) {
	aspect := string(req.Format)
	if aspect == "" {
		aspect = string(domain.AspectReel)
	}
	payload := predictionPayload{
		Version: c.modelVersion,
		Input: predictionInput{
			Prompt:      strings.TrimSpace(req.Prompt),
			NumFrames:   24,
			FPS:         12,
			AspectRatio: aspect,
		},
	}
	decoded, _, err := providers.DoJSON(ctx, c.client, http.MethodPost, c.baseURL+"/predictions", c.token, payload)
	if err != nil {
		return providers.StartOutcome{}, fmt.Errorf("replicate: start: %w", err)
	}
	id := providers.StringField(decoded, "id")
	if id == "" {
		return providers.StartOutcome{}, fmt.Errorf("replicate: start: %w: no prediction id in response", domain.ErrUpstreamContract)
	}
	return providers.StartOutcome{Handle: &domain.JobHandle{
		ID:        id,
		Provider:  domain.ProviderReplicate,
		CreatedAt: time.Now(),
	}}, nil
}

// Poll fetches the raw prediction. Status vocabulary
// (starting|processing|succeeded|failed|canceled) and the polymorphic output
// field are left to the normalizer.
func (c *Client) Poll(ctx context.Context, handle domain.JobHandle) (map[string]any, error) {
	if strings.TrimSpace(handle.ID) == "" {
		return nil, &domain.ValidationError{Field: "job_id", Detail: "job id is required"}
	}
	decoded, code, err := providers.DoJSON(ctx, c.client, http.MethodGet, c.baseURL+"/predictions/"+handle.ID, c.token, nil)
	if err != nil {
		if code == http.StatusNotFound {
			return nil, fmt.Errorf("replicate: poll: %w: %s", domain.ErrUnknownJob, handle.ID)
		}
		return nil, fmt.Errorf("replicate: poll: %w", err)
	}
	return decoded, nil
}

var (
	_ providers.Adapter = (*Client)(nil)
	_ providers.Ready   = (*Client)(nil)
)
