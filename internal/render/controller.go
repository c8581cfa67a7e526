package render

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/rs/zerolog"

	"adreel/internal/domain"
	"adreel/internal/infra"
	"adreel/internal/providers"
)

// ControllerOptions wires the façade every inbound request goes through.
type ControllerOptions struct {
	// Adapters holds every constructed backend keyed by id; the simulator
	// entry is mandatory because it is the fallback of last resort.
	Adapters map[domain.ProviderID]providers.Adapter
	// DefaultProvider is the configured selection; requests may override it
	// with a provider hint.
	DefaultProvider domain.ProviderID
	// ForceSimulator routes everything to the simulator regardless of
	// selection ("simulate unless explicitly told not to").
	ForceSimulator bool
	// FallbackToSimulator degrades missing-credential selections to the
	// simulator instead of rejecting them.
	FallbackToSimulator bool
	Logger              *infra.Logger
}

// StartResult carries exactly one of a pollable handle or a terminal status.
type StartResult struct {
	Handle *domain.JobHandle
	Status *domain.JobStatus
}

// Controller selects the active adapter, owns the handles it issues, and
// enforces the canonical status contract on every poll.
type Controller struct {
	adapters            map[domain.ProviderID]providers.Adapter
	defaultProvider     domain.ProviderID
	forceSimulator      bool
	fallbackToSimulator bool
	logger              *infra.Logger

	mu       sync.Mutex
	handles  map[string]domain.JobHandle
	terminal map[string]domain.JobStatus
}

func NewController(opts ControllerOptions) (*Controller, error) {
	if _, ok := opts.Adapters[domain.ProviderSimulator]; !ok {
		return nil, fmt.Errorf("%w: simulator adapter is required", domain.ErrConfiguration)
	}
	defaultProvider := opts.DefaultProvider
	if defaultProvider == "" {
		defaultProvider = domain.ProviderSimulator
	}
	logger := opts.Logger
	if logger == nil {
		discard := zerolog.New(io.Discard)
		l := infra.Logger(discard)
		logger = &l
	}
	return &Controller{
		adapters:            opts.Adapters,
		defaultProvider:     defaultProvider,
		forceSimulator:      opts.ForceSimulator,
		fallbackToSimulator: opts.FallbackToSimulator,
		logger:              logger,
		handles:             make(map[string]domain.JobHandle),
		terminal:            make(map[string]domain.JobStatus),
	}, nil
}

// StartJob validates the request, resolves the adapter, and starts the job.
// The result carries either a handle for polling or an immediately terminal
// status, never both and never neither.
func (c *Controller) StartJob(ctx context.Context, req domain.GenerationRequest) (StartResult, error) {
	if err := req.Validate(); err != nil {
		return StartResult{}, err
	}

	adapter, err := c.selectAdapter(req.ProviderHint)
	if err != nil {
		return StartResult{}, err
	}

	outcome, err := adapter.Start(ctx, req)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamContract) {
			// A malformed contract will not improve on retry; settle the job.
			status := domain.Failed(err.Error())
			return StartResult{Status: &status}, nil
		}
		return StartResult{}, err
	}

	if outcome.Status != nil {
		c.logger.Debug().
			Str("provider", string(adapter.ID())).
			Str("state", string(outcome.Status.State)).
			Msg("job resolved synchronously")
		return StartResult{Status: outcome.Status}, nil
	}
	if outcome.Handle == nil {
		return StartResult{}, fmt.Errorf("%w: adapter returned neither handle nor status", domain.ErrUpstreamContract)
	}

	handle := *outcome.Handle
	c.mu.Lock()
	c.handles[handle.ID] = handle
	c.mu.Unlock()

	c.logger.Info().
		Str("job_id", handle.ID).
		Str("provider", string(handle.Provider)).
		Msg("job started")
	return StartResult{Handle: &handle}, nil
}

// PollJob returns one canonical snapshot for a job previously started here.
// Once a terminal state has been observed for an id, every later call
// returns that same snapshot without touching the provider: terminality is
// absorbing, and a provider flipping back afterwards is a normalization bug
// the caller must never see.
func (c *Controller) PollJob(ctx context.Context, jobID string) (domain.JobStatus, error) {
	jobID = strings.TrimSpace(jobID)
	if jobID == "" {
		return domain.JobStatus{}, &domain.ValidationError{Field: "job_id", Detail: "job id is required"}
	}

	c.mu.Lock()
	if settled, ok := c.terminal[jobID]; ok {
		c.mu.Unlock()
		return settled, nil
	}
	handle, ok := c.handles[jobID]
	c.mu.Unlock()
	if !ok {
		return domain.JobStatus{}, fmt.Errorf("%w: %s", domain.ErrUnknownJob, jobID)
	}
	if handle.Provider == domain.ProviderSync {
		return domain.JobStatus{}, &domain.ValidationError{Field: "job_id", Detail: "job resolved synchronously and cannot be polled"}
	}

	adapter, ok := c.adapters[handle.Provider]
	if !ok {
		return domain.JobStatus{}, fmt.Errorf("%w: no adapter for provider %s", domain.ErrConfiguration, handle.Provider)
	}

	payload, err := adapter.Poll(ctx, handle)
	if err != nil {
		if errors.Is(err, domain.ErrUpstreamContract) {
			status := domain.Failed(err.Error())
			c.settle(jobID, status)
			return status, nil
		}
		return domain.JobStatus{}, err
	}

	status := Normalize(handle.Provider, payload)
	if status.Terminal() {
		status = c.settle(jobID, status)
	}
	return status, nil
}

// Handle returns the handle the controller issued for a job id.
func (c *Controller) Handle(jobID string) (domain.JobHandle, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	handle, ok := c.handles[jobID]
	return handle, ok
}

// settle records the first terminal observation for a job. If a different
// terminal state was already recorded, the stored one wins and the
// divergence is converted into a failure.
func (c *Controller) settle(jobID string, status domain.JobStatus) domain.JobStatus {
	c.mu.Lock()
	defer c.mu.Unlock()
	if existing, ok := c.terminal[jobID]; ok {
		if existing != status {
			failed := domain.Failed("inconsistent provider state")
			c.terminal[jobID] = failed
			return failed
		}
		return existing
	}
	c.terminal[jobID] = status
	return status
}

func (c *Controller) selectAdapter(hint string) (providers.Adapter, error) {
	selected := c.defaultProvider
	if hint = strings.ToLower(strings.TrimSpace(hint)); hint != "" {
		selected = domain.ProviderID(hint)
	}
	if c.forceSimulator {
		selected = domain.ProviderSimulator
	}

	adapter, ok := c.adapters[selected]
	if !ok {
		return nil, &domain.ValidationError{Field: "provider", Detail: fmt.Sprintf("unsupported provider %q", selected)}
	}

	if ready, checks := adapter.(providers.Ready); checks && !ready.HasCredentials() {
		if !c.fallbackToSimulator {
			return nil, fmt.Errorf("%w: credentials missing for provider %s", domain.ErrConfiguration, selected)
		}
		c.logger.Warn().
			Str("provider", string(selected)).
			Msg("credentials missing, falling back to simulator")
		adapter = c.adapters[domain.ProviderSimulator]
	}
	return adapter, nil
}
