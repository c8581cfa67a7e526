package domain

import (
	"strings"
	"time"
)

// ProviderID identifies a generation backend.
type ProviderID string

const (
	ProviderSimulator ProviderID = "simulator"
	ProviderEden      ProviderID = "eden"
	ProviderReplicate ProviderID = "replicate"

	// ProviderSync marks a handle whose terminal result was already
	// delivered by the start call; such handles are never polled.
	ProviderSync ProviderID = "sync"
)

// AspectRatio enumerates the supported output presets.
type AspectRatio string

const (
	AspectReel      AspectRatio = "9:16"
	AspectSquare    AspectRatio = "1:1"
	AspectLandscape AspectRatio = "16:9"
)

// GenerationRequest is the immutable input for one render action.
type GenerationRequest struct {
	Prompt       string
	Tone         string
	Format       AspectRatio
	ProviderHint string
}

// Validate rejects requests before any provider is contacted.
func (r GenerationRequest) Validate() error {
	if strings.TrimSpace(r.Prompt) == "" {
		return &ValidationError{Field: "prompt", Detail: "prompt is required"}
	}
	switch r.Format {
	case "", AspectReel, AspectSquare, AspectLandscape:
	default:
		return &ValidationError{Field: "format", Detail: "unsupported aspect ratio"}
	}
	return nil
}

// JobHandle is an opaque reference to an asynchronous provider job.
type JobHandle struct {
	ID        string
	Provider  ProviderID
	CreatedAt time.Time
}

// JobState enumerates the canonical job lifecycle states.
type JobState string

const (
	StateQueued     JobState = "queued"
	StateProcessing JobState = "processing"
	StateSucceeded  JobState = "succeeded"
	StateFailed     JobState = "failed"
)

// JobStatus is one immutable observation of a job. AssetURL is set only on
// Succeeded, Reason only on Failed, Progress stays within [0,100].
type JobStatus struct {
	State    JobState `json:"state"`
	Progress int      `json:"progress"`
	AssetURL string   `json:"asset_url,omitempty"`
	Reason   string   `json:"reason,omitempty"`
}

// Terminal reports whether no further transitions are legal for the job.
func (s JobStatus) Terminal() bool {
	return s.State == StateSucceeded || s.State == StateFailed
}

func Queued() JobStatus {
	return JobStatus{State: StateQueued}
}

func Processing(progress int) JobStatus {
	return JobStatus{State: StateProcessing, Progress: ClampProgress(progress)}
}

func Succeeded(assetURL string) JobStatus {
	return JobStatus{State: StateSucceeded, Progress: 100, AssetURL: assetURL}
}

func Failed(reason string) JobStatus {
	return JobStatus{State: StateFailed, Reason: reason}
}

// ClampProgress forces a provider-reported percentage into [0,100].
func ClampProgress(p int) int {
	if p < 0 {
		return 0
	}
	if p > 100 {
		return 100
	}
	return p
}
