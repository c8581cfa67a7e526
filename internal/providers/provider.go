// Package providers defines the contract every generation backend implements
// and the shared HTTP plumbing the remote backends use.
package providers

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"adreel/internal/domain"
)

// StartOutcome is the result of starting a job: either a handle to poll
// (asynchronous provider) or a terminal status resolved synchronously.
// Exactly one of the two fields is set.
type StartOutcome struct {
	Handle *domain.JobHandle
	Status *domain.JobStatus
}

// Adapter is implemented once per backend. Poll returns the provider's raw
// decoded payload; interpreting it into a canonical status is the
// normalizer's job, not the adapter's.
type Adapter interface {
	ID() domain.ProviderID
	Start(ctx context.Context, req domain.GenerationRequest) (StartOutcome, error)
	Poll(ctx context.Context, handle domain.JobHandle) (map[string]any, error)
}

// Ready reports whether an adapter has the credentials it needs for remote
// calls. Adapters that need none (the simulator) always report true.
type Ready interface {
	HasCredentials() bool
}

const maxErrorSnippet = 300

// DoJSON performs an authenticated JSON round trip and decodes the response
// body. Providers sometimes answer error cases with HTML or empty bodies, so
// the content type is checked before any parse attempt; violations surface
// as transport errors rather than parse failures.
func DoJSON(ctx context.Context, client *http.Client, method, url, token string, payload any) (map[string]any, int, error) {
	var body io.Reader
	if payload != nil {
		encoded, err := json.Marshal(payload)
		if err != nil {
			return nil, 0, fmt.Errorf("encode request: %w", err)
		}
		body = strings.NewReader(string(encoded))
	}
	req, err := http.NewRequestWithContext(ctx, method, url, body)
	if err != nil {
		return nil, 0, fmt.Errorf("build request: %w", err)
	}
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := client.Do(req)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: %v", domain.ErrTransport, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: read body: %v", domain.ErrTransport, err)
	}

	if resp.StatusCode >= 300 {
		return nil, resp.StatusCode, fmt.Errorf("%w: status %d: %s", domain.ErrTransport, resp.StatusCode, snippet(raw))
	}
	if ct := resp.Header.Get("Content-Type"); ct != "" && !strings.Contains(ct, "json") {
		return nil, resp.StatusCode, fmt.Errorf("%w: unexpected content type %q: %s", domain.ErrTransport, ct, snippet(raw))
	}

	var decoded map[string]any
	if err := json.Unmarshal(raw, &decoded); err != nil {
		return nil, resp.StatusCode, fmt.Errorf("%w: decode body: %v", domain.ErrTransport, err)
	}
	return decoded, resp.StatusCode, nil
}

func snippet(raw []byte) string {
	text := strings.TrimSpace(string(raw))
	if len(text) > maxErrorSnippet {
		text = text[:maxErrorSnippet]
	}
	return text
}

// StringField returns the first non-empty string under any of the given keys.
func StringField(payload map[string]any, keys ...string) string {
	for _, key := range keys {
		if v, ok := payload[key].(string); ok {
			if trimmed := strings.TrimSpace(v); trimmed != "" {
				return trimmed
			}
		}
	}
	return ""
}
