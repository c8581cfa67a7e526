package render

import (
	"fmt"
	"strings"

	"adreel/internal/domain"
)

// Providers are not contractually bound to a fixed status enum, so canonical
// states are resolved by case-insensitive substring matching against known
// synonyms. Anything unrecognized counts as still processing.
var (
	succeededHints = []string{"succ", "complete", "finished", "done"}
	failedHints    = []string{"fail", "error", "cancel"}
	queuedHints    = []string{"queue", "pending"}
)

// urlFields is the top-level extraction precedence shared by all providers.
var urlFields = []string{"url", "asset_url", "video_url", "video_resource_url", "output_url", "preview_url", "previewUrl"}

// mediaExtensions order the file-type heuristic: video formats outrank image
// formats when an output array offers both.
var (
	videoExtensions = []string{".mp4", ".webm", ".mov", ".m4v"}
	imageExtensions = []string{".png", ".jpg", ".jpeg", ".gif", ".webp"}
)

// Normalize maps one raw provider payload into the canonical status. It
// never fails: malformed input becomes a Failed snapshot with a reason
// instead of an error, because a parse problem is a terminal business
// outcome for the job, not a transport fault.
func Normalize(provider domain.ProviderID, payload map[string]any) domain.JobStatus {
	if payload == nil {
		return domain.Failed("empty provider response")
	}

	rawStatus, ok := stringValue(payload["status"])
	if !ok {
		return domain.Failed("missing status field in provider response")
	}

	switch canonicalState(rawStatus) {
	case domain.StateSucceeded:
		url := extractAssetURL(provider, payload)
		if url == "" {
			// A success with no artifact is not a valid terminal state.
			return domain.Failed("no asset url in success response")
		}
		return domain.Succeeded(url)
	case domain.StateFailed:
		return domain.Failed(failureReason(payload, rawStatus))
	case domain.StateQueued:
		return domain.Queued()
	default:
		return domain.Processing(progressValue(payload))
	}
}

func canonicalState(raw string) domain.JobState {
	status := strings.ToLower(strings.TrimSpace(raw))
	for _, hint := range succeededHints {
		if strings.Contains(status, hint) {
			return domain.StateSucceeded
		}
	}
	for _, hint := range failedHints {
		if strings.Contains(status, hint) {
			return domain.StateFailed
		}
	}
	for _, hint := range queuedHints {
		if strings.Contains(status, hint) {
			return domain.StateQueued
		}
	}
	return domain.StateProcessing
}

// extractAssetURL tries, in order: a direct top-level URL field, the
// provider's nested result bucket, the first array element matching the
// media heuristic, and finally the last array element.
func extractAssetURL(provider domain.ProviderID, payload map[string]any) string {
	for _, field := range urlFields {
		if v, ok := stringValue(payload[field]); ok && looksLikeURL(v) {
			return v
		}
	}
	if url := providerBucketURL(provider, payload); url != "" {
		return url
	}
	if out, ok := payload["output"]; ok {
		if url := outputURL(out); url != "" {
			return url
		}
	}
	return ""
}

// providerBucketURL digs into the nested shape each provider wraps results
// in: Eden returns result[0].video_resource_url, Replicate nests under
// output which outputURL handles.
func providerBucketURL(provider domain.ProviderID, payload map[string]any) string {
	if provider != domain.ProviderEden {
		return ""
	}
	items, ok := payload["result"].([]any)
	if !ok || len(items) == 0 {
		return ""
	}
	entry, ok := items[0].(map[string]any)
	if !ok {
		return ""
	}
	for _, field := range urlFields {
		if v, ok := stringValue(entry[field]); ok && looksLikeURL(v) {
			return v
		}
	}
	return ""
}

// outputURL handles Replicate-style output polymorphism: a bare string, an
// array of strings or objects, or an object with a named video field.
func outputURL(out any) string {
	switch v := out.(type) {
	case string:
		if looksLikeURL(v) {
			return strings.TrimSpace(v)
		}
	case []any:
		return mediaURLFromList(v)
	case map[string]any:
		for _, field := range []string{"video", "url"} {
			if s, ok := stringValue(v[field]); ok && looksLikeURL(s) {
				return s
			}
		}
	}
	return ""
}

func mediaURLFromList(items []any) string {
	candidates := make([]string, 0, len(items))
	for _, item := range items {
		var s string
		switch v := item.(type) {
		case string:
			s = strings.TrimSpace(v)
		case map[string]any:
			s = entryURL(v)
		}
		if looksLikeURL(s) {
			candidates = append(candidates, s)
		}
	}
	if len(candidates) == 0 {
		return ""
	}
	for _, c := range candidates {
		if hasExtension(c, videoExtensions) {
			return c
		}
	}
	for _, c := range candidates {
		if hasExtension(c, imageExtensions) {
			return c
		}
	}
	return candidates[len(candidates)-1]
}

func entryURL(entry map[string]any) string {
	for _, field := range []string{"url", "video", "file"} {
		if s, ok := stringValue(entry[field]); ok {
			return s
		}
	}
	return ""
}

func hasExtension(rawURL string, extensions []string) bool {
	lowered := strings.ToLower(rawURL)
	if idx := strings.IndexAny(lowered, "?#"); idx >= 0 {
		lowered = lowered[:idx]
	}
	for _, ext := range extensions {
		if strings.HasSuffix(lowered, ext) {
			return true
		}
	}
	return false
}

func looksLikeURL(s string) bool {
	s = strings.TrimSpace(strings.ToLower(s))
	return strings.HasPrefix(s, "http://") || strings.HasPrefix(s, "https://")
}

func failureReason(payload map[string]any, rawStatus string) string {
	for _, field := range []string{"error", "reason", "message", "detail"} {
		if v, ok := stringValue(payload[field]); ok {
			return v
		}
	}
	return fmt.Sprintf("provider reported status %q", strings.TrimSpace(rawStatus))
}

// progressValue reads a numeric progress when present; providers that omit
// it get the mid-range default so the UI still shows movement.
func progressValue(payload map[string]any) int {
	switch v := payload["progress"].(type) {
	case float64:
		return domain.ClampProgress(int(v))
	case int:
		return domain.ClampProgress(v)
	case string:
		trimmed := strings.TrimSuffix(strings.TrimSpace(v), "%")
		var n int
		if _, err := fmt.Sscanf(trimmed, "%d", &n); err == nil {
			return domain.ClampProgress(n)
		}
	}
	return 50
}

func stringValue(v any) (string, bool) {
	s, ok := v.(string)
	if !ok {
		return "", false
	}
	s = strings.TrimSpace(s)
	return s, s != ""
}
