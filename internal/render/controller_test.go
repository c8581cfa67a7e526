package render

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"adreel/internal/domain"
	"adreel/internal/providers"
	"adreel/internal/providers/simulator"
)

// fakeAdapter counts outbound calls and replays scripted poll payloads.
type fakeAdapter struct {
	id          domain.ProviderID
	credentials bool
	startCalls  int
	pollCalls   int
	startErr    error
	handle      *domain.JobHandle
	payloads    []map[string]any
	pollErr     error
}

func (f *fakeAdapter) ID() domain.ProviderID { return f.id }

func (f *fakeAdapter) HasCredentials() bool { return f.credentials }

func (f *fakeAdapter) Start(ctx context.Context, req domain.GenerationRequest) (providers.StartOutcome, error) {
	f.startCalls++
	if f.startErr != nil {
		return providers.StartOutcome{}, f.startErr
	}
	return providers.StartOutcome{Handle: f.handle}, nil
}

func (f *fakeAdapter) Poll(ctx context.Context, handle domain.JobHandle) (map[string]any, error) {
	f.pollCalls++
	if f.pollErr != nil {
		return nil, f.pollErr
	}
	idx := f.pollCalls - 1
	if idx >= len(f.payloads) {
		idx = len(f.payloads) - 1
	}
	return f.payloads[idx], nil
}

func newTestController(t *testing.T, opts ControllerOptions) *Controller {
	t.Helper()
	if opts.Adapters == nil {
		opts.Adapters = map[domain.ProviderID]providers.Adapter{}
	}
	if _, ok := opts.Adapters[domain.ProviderSimulator]; !ok {
		opts.Adapters[domain.ProviderSimulator] = simulator.New(simulator.Options{})
	}
	c, err := NewController(opts)
	require.NoError(t, err)
	return c
}

func TestStartJobSimulatorResolvesSynchronously(t *testing.T) {
	c := newTestController(t, ControllerOptions{ForceSimulator: true})

	result, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "15s coffee shop ad"})
	require.NoError(t, err)
	require.Nil(t, result.Handle)
	require.NotNil(t, result.Status)
	assert.Equal(t, domain.StateSucceeded, result.Status.State)
	assert.Equal(t, simulator.SampleAssetURL, result.Status.AssetURL)
}

func TestStartJobEmptyPromptRejectedBeforeAnyCall(t *testing.T) {
	remote := &fakeAdapter{id: domain.ProviderEden, credentials: true}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})

	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "   "})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
	assert.Zero(t, remote.startCalls, "no outbound call may happen for invalid input")
}

func TestStartJobReturnsHandleXorStatus(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{id: domain.ProviderEden, credentials: true, handle: handle}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})

	result, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)
	assert.NotNil(t, result.Handle)
	assert.Nil(t, result.Status)
}

func TestStartJobMissingCredentialsFallsBackToSimulator(t *testing.T) {
	remote := &fakeAdapter{id: domain.ProviderEden, credentials: false}
	c := newTestController(t, ControllerOptions{
		Adapters:            map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider:     domain.ProviderEden,
		FallbackToSimulator: true,
	})

	result, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)
	require.NotNil(t, result.Status)
	assert.Equal(t, domain.StateSucceeded, result.Status.State)
	assert.Zero(t, remote.startCalls)
}

func TestStartJobMissingCredentialsHardFailsWhenFallbackDisabled(t *testing.T) {
	remote := &fakeAdapter{id: domain.ProviderEden, credentials: false}
	c := newTestController(t, ControllerOptions{
		Adapters:            map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider:     domain.ProviderEden,
		FallbackToSimulator: false,
	})

	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.ErrorIs(t, err, domain.ErrConfiguration)
}

func TestStartJobProviderHintOverridesDefault(t *testing.T) {
	eden := &fakeAdapter{id: domain.ProviderEden, credentials: true, handle: &domain.JobHandle{ID: "e-1", Provider: domain.ProviderEden}}
	rep := &fakeAdapter{id: domain.ProviderReplicate, credentials: true, handle: &domain.JobHandle{ID: "r-1", Provider: domain.ProviderReplicate}}
	c := newTestController(t, ControllerOptions{
		Adapters: map[domain.ProviderID]providers.Adapter{
			domain.ProviderEden:      eden,
			domain.ProviderReplicate: rep,
		},
		DefaultProvider: domain.ProviderEden,
	})

	result, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip", ProviderHint: "replicate"})
	require.NoError(t, err)
	assert.Equal(t, "r-1", result.Handle.ID)
	assert.Zero(t, eden.startCalls)
}

func TestStartJobUnsupportedProviderHint(t *testing.T) {
	c := newTestController(t, ControllerOptions{})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip", ProviderHint: "dalle"})
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestStartJobContractErrorSettlesAsFailed(t *testing.T) {
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true,
		startErr: fmt.Errorf("eden: start: %w: no job id or asset url in response", domain.ErrUpstreamContract),
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})

	result, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)
	require.NotNil(t, result.Status)
	assert.Equal(t, domain.StateFailed, result.Status.State)
	assert.Nil(t, result.Handle)
}

func TestPollJobScenarioProcessingThenSucceeded(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true, handle: handle,
		payloads: []map[string]any{
			{"status": "processing"},
			{"status": "processing"},
			{"status": "succeeded", "video_resource_url": "https://x/y.mp4"},
		},
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)

	var states []domain.JobState
	for i := 0; i < 3; i++ {
		status, err := c.PollJob(context.Background(), "abc123")
		require.NoError(t, err)
		states = append(states, status.State)
	}
	assert.Equal(t, []domain.JobState{domain.StateProcessing, domain.StateProcessing, domain.StateSucceeded}, states)
}

func TestPollJobTerminalStateIsIdempotent(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true, handle: handle,
		payloads: []map[string]any{
			{"status": "succeeded", "url": "https://x/y.mp4"},
			// A provider flipping back after success must never be visible.
			{"status": "processing"},
		},
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)

	first, err := c.PollJob(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, domain.StateSucceeded, first.State)

	for i := 0; i < 3; i++ {
		again, err := c.PollJob(context.Background(), "abc123")
		require.NoError(t, err)
		assert.Equal(t, first, again)
	}
	assert.Equal(t, 1, remote.pollCalls, "settled jobs are served from the terminal cache")
}

func TestPollJobUnknownID(t *testing.T) {
	c := newTestController(t, ControllerOptions{})
	_, err := c.PollJob(context.Background(), "never-issued")
	require.ErrorIs(t, err, domain.ErrUnknownJob)
}

func TestPollJobEmptyID(t *testing.T) {
	c := newTestController(t, ControllerOptions{})
	_, err := c.PollJob(context.Background(), "  ")
	require.Error(t, err)
	assert.True(t, domain.IsValidation(err))
}

func TestPollJobTransportErrorPropagates(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true, handle: handle,
		pollErr: fmt.Errorf("eden: poll: %w: status 502", domain.ErrTransport),
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)

	_, err = c.PollJob(context.Background(), "abc123")
	require.ErrorIs(t, err, domain.ErrTransport)
}

func TestPollJobContractErrorSettlesAsFailed(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true, handle: handle,
		pollErr: fmt.Errorf("eden: poll: %w: no recognizable shape", domain.ErrUpstreamContract),
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)

	status, err := c.PollJob(context.Background(), "abc123")
	require.NoError(t, err)
	require.Equal(t, domain.StateFailed, status.State)

	// Settled: later polls return the same failure without touching the adapter.
	again, err := c.PollJob(context.Background(), "abc123")
	require.NoError(t, err)
	assert.Equal(t, status, again)
	assert.Equal(t, 1, remote.pollCalls)
}

func TestPollerAgainstControllerEndToEnd(t *testing.T) {
	handle := &domain.JobHandle{ID: "abc123", Provider: domain.ProviderEden, CreatedAt: time.Now()}
	remote := &fakeAdapter{
		id: domain.ProviderEden, credentials: true, handle: handle,
		payloads: []map[string]any{
			{"status": "processing"},
			{"status": "processing"},
			{"status": "succeeded", "video_resource_url": "https://x/y.mp4"},
		},
	}
	c := newTestController(t, ControllerOptions{
		Adapters:        map[domain.ProviderID]providers.Adapter{domain.ProviderEden: remote},
		DefaultProvider: domain.ProviderEden,
	})
	_, err := c.StartJob(context.Background(), domain.GenerationRequest{Prompt: "a clip"})
	require.NoError(t, err)

	var seen []domain.JobStatus
	final := NewPoller(c.PollJob, PollerConfig{
		Interval:                      time.Millisecond,
		Timeout:                       time.Second,
		MaxConsecutiveTransportErrors: 3,
	}).Run(context.Background(), "abc123", func(s domain.JobStatus) {
		seen = append(seen, s)
	})

	require.Equal(t, domain.StateSucceeded, final.State)
	assert.Equal(t, "https://x/y.mp4", final.AssetURL)
	require.Len(t, seen, 3)
	assert.Equal(t, domain.StateProcessing, seen[0].State)
	assert.Equal(t, domain.StateProcessing, seen[1].State)
}
