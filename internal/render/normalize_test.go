package render

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreel/internal/domain"
)

func TestNormalizeStatusVocabulary(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		want    domain.JobState
	}{
		{"replicate succeeded", map[string]any{"status": "succeeded", "url": "https://x/y.mp4"}, domain.StateSucceeded},
		{"eden finished", map[string]any{"status": "finished", "url": "https://x/y.mp4"}, domain.StateSucceeded},
		{"uppercase success", map[string]any{"status": "SUCCESS", "url": "https://x/y.mp4"}, domain.StateSucceeded},
		{"failed", map[string]any{"status": "failed"}, domain.StateFailed},
		{"error spelling", map[string]any{"status": "ERRORED"}, domain.StateFailed},
		{"canceled is terminal", map[string]any{"status": "canceled"}, domain.StateFailed},
		{"queued", map[string]any{"status": "queued"}, domain.StateQueued},
		{"pending", map[string]any{"status": "pending"}, domain.StateQueued},
		{"starting counts as processing", map[string]any{"status": "starting"}, domain.StateProcessing},
		{"unknown vocabulary", map[string]any{"status": "doing-things"}, domain.StateProcessing},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(domain.ProviderReplicate, tc.payload)
			assert.Equal(t, tc.want, got.State)
		})
	}
}

func TestNormalizePrefersVideoOverImage(t *testing.T) {
	payload := map[string]any{
		"status": "succeeded",
		"output": []any{"https://x/a.png", "https://x/b.mp4"},
	}
	got := Normalize(domain.ProviderReplicate, payload)
	require.Equal(t, domain.StateSucceeded, got.State)
	assert.Equal(t, "https://x/b.mp4", got.AssetURL)
}

func TestNormalizeOutputShapes(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		wantURL string
	}{
		{
			"bare string output",
			map[string]any{"status": "succeeded", "output": "https://x/clip.mp4"},
			"https://x/clip.mp4",
		},
		{
			"object output with video field",
			map[string]any{"status": "succeeded", "output": map[string]any{"video": "https://x/clip.mp4"}},
			"https://x/clip.mp4",
		},
		{
			"array of objects",
			map[string]any{"status": "succeeded", "output": []any{map[string]any{"url": "https://x/clip.webm"}}},
			"https://x/clip.webm",
		},
		{
			"no media extension falls back to last element",
			map[string]any{"status": "succeeded", "output": []any{"https://x/first", "https://x/last"}},
			"https://x/last",
		},
		{
			"query string does not defeat extension match",
			map[string]any{"status": "succeeded", "output": []any{"https://x/a.png?sig=1", "https://x/b.mp4?sig=2"}},
			"https://x/b.mp4?sig=2",
		},
		{
			"top level url wins over output",
			map[string]any{"status": "succeeded", "url": "https://x/direct.mp4", "output": []any{"https://x/other.mp4"}},
			"https://x/direct.mp4",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(domain.ProviderReplicate, tc.payload)
			require.Equal(t, domain.StateSucceeded, got.State)
			assert.Equal(t, tc.wantURL, got.AssetURL)
		})
	}
}

func TestNormalizeEdenResultBucket(t *testing.T) {
	payload := map[string]any{
		"status": "succeeded",
		"result": []any{
			map[string]any{"video_resource_url": "https://x/y.mp4"},
		},
	}
	got := Normalize(domain.ProviderEden, payload)
	require.Equal(t, domain.StateSucceeded, got.State)
	assert.Equal(t, "https://x/y.mp4", got.AssetURL)
}

func TestNormalizeSuccessWithoutURLDowngrades(t *testing.T) {
	got := Normalize(domain.ProviderReplicate, map[string]any{"status": "succeeded"})
	require.Equal(t, domain.StateFailed, got.State)
	assert.Equal(t, "no asset url in success response", got.Reason)
}

func TestNormalizeMalformedInputNeverFails(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
	}{
		{"nil payload", nil},
		{"missing status", map[string]any{"output": "https://x/y.mp4"}},
		{"status wrong type", map[string]any{"status": 42}},
		{"blank status", map[string]any{"status": "  "}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(domain.ProviderEden, tc.payload)
			assert.Equal(t, domain.StateFailed, got.State)
			assert.NotEmpty(t, got.Reason)
		})
	}
}

func TestNormalizeProgress(t *testing.T) {
	cases := []struct {
		name    string
		payload map[string]any
		want    int
	}{
		{"explicit progress", map[string]any{"status": "processing", "progress": float64(30)}, 30},
		{"clamped above", map[string]any{"status": "processing", "progress": float64(180)}, 100},
		{"clamped below", map[string]any{"status": "processing", "progress": float64(-5)}, 0},
		{"string percent", map[string]any{"status": "processing", "progress": "75%"}, 75},
		{"omitted defaults to midpoint", map[string]any{"status": "processing"}, 50},
		{"queued has none", map[string]any{"status": "queued"}, 0},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := Normalize(domain.ProviderReplicate, tc.payload)
			assert.Equal(t, tc.want, got.Progress)
			assert.GreaterOrEqual(t, got.Progress, 0)
			assert.LessOrEqual(t, got.Progress, 100)
		})
	}
}

func TestNormalizeFailureReason(t *testing.T) {
	got := Normalize(domain.ProviderReplicate, map[string]any{"status": "failed", "error": "NSFW content detected"})
	assert.Equal(t, "NSFW content detected", got.Reason)

	got = Normalize(domain.ProviderReplicate, map[string]any{"status": "failed"})
	assert.Contains(t, got.Reason, "failed")
}
