// Package simulator is the zero-credential stand-in backend. It keeps demo
// environments fully functional without any live provider access.
package simulator

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"adreel/internal/domain"
	"adreel/internal/providers"
)

// SampleAssetURL is the fixed artifact every simulated job resolves to.
const SampleAssetURL = "https://filesamples.com/samples/video/mp4/sample_640x360.mp4"

// Options configures the simulator.
type Options struct {
	// Delayed switches from instant synchronous success to a handle whose
	// status is derived from wall-clock time elapsed since start.
	Delayed bool
	// Now is injectable for tests; defaults to time.Now.
	Now func() time.Time
}

// Simulator implements providers.Adapter without any network access. Each
// job's start time is tracked independently so concurrent jobs never share
// state.
type Simulator struct {
	delayed bool
	now     func() time.Time

	mu      sync.Mutex
	started map[string]time.Time
}

func New(opts Options) *Simulator {
	now := opts.Now
	if now == nil {
		now = time.Now
	}
	return &Simulator{
		delayed: opts.Delayed,
		now:     now,
		started: make(map[string]time.Time),
	}
}

func (s *Simulator) ID() domain.ProviderID {
	return domain.ProviderSimulator
}

// HasCredentials always holds: the simulator needs none.
func (s *Simulator) HasCredentials() bool {
	return true
}

func (s *Simulator) Start(ctx context.Context, req domain.GenerationRequest) (providers.StartOutcome, error) {
	if !s.delayed {
		status := domain.Succeeded(SampleAssetURL)
		return providers.StartOutcome{Status: &status}, nil
	}

	createdAt := s.now()
	id := "sim-" + uuid.NewString()
	s.mu.Lock()
	s.started[id] = createdAt
	s.mu.Unlock()

	return providers.StartOutcome{Handle: &domain.JobHandle{
		ID:        id,
		Provider:  domain.ProviderSimulator,
		CreatedAt: createdAt,
	}}, nil
}

// Poll derives a fake progression purely from elapsed time: under one second
// the job is still starting, under three it is halfway, afterwards it has
// succeeded. The payload goes through the same normalization path as real
// provider responses.
func (s *Simulator) Poll(ctx context.Context, handle domain.JobHandle) (map[string]any, error) {
	s.mu.Lock()
	startedAt, ok := s.started[handle.ID]
	s.mu.Unlock()
	if !ok {
		return nil, domain.ErrUnknownJob
	}

	elapsed := s.now().Sub(startedAt)
	switch {
	case elapsed < time.Second:
		return map[string]any{"status": "starting", "progress": 0}, nil
	case elapsed < 3*time.Second:
		return map[string]any{"status": "processing", "progress": 50}, nil
	default:
		return map[string]any{"status": "succeeded", "url": SampleAssetURL}, nil
	}
}

var _ providers.Adapter = (*Simulator)(nil)
