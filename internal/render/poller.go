package render

import (
	"context"
	"errors"
	"time"

	"adreel/internal/domain"
)

// PollFunc is one status fetch for a job. Controller.PollJob satisfies it.
type PollFunc func(ctx context.Context, jobID string) (domain.JobStatus, error)

// PollerConfig bounds a polling session.
type PollerConfig struct {
	Interval time.Duration
	Timeout  time.Duration
	// MaxConsecutiveTransportErrors is how many transport failures in a row
	// are tolerated before the session is settled as unreachable. A single
	// transient failure never aborts an otherwise-succeeding job.
	MaxConsecutiveTransportErrors int
}

func (c PollerConfig) withDefaults() PollerConfig {
	if c.Interval <= 0 {
		c.Interval = 2 * time.Second
	}
	if c.Timeout <= 0 {
		c.Timeout = 3 * time.Minute
	}
	if c.MaxConsecutiveTransportErrors <= 0 {
		c.MaxConsecutiveTransportErrors = 3
	}
	return c
}

// Poller drives a PollFunc until a terminal snapshot. Attempts are strictly
// sequential: the next poll is scheduled only after the previous one
// resolved, so terminal states cannot arrive out of order.
type Poller struct {
	poll PollFunc
	cfg  PollerConfig
}

func NewPoller(poll PollFunc, cfg PollerConfig) *Poller {
	return &Poller{poll: poll, cfg: cfg.withDefaults()}
}

// Run polls until a terminal state, the timeout, or cancellation, invoking
// observe for every snapshot. The sequence always ends with exactly one
// terminal snapshot, which is also returned. Cancellation is cooperative:
// it takes effect before the next scheduled attempt.
func (p *Poller) Run(ctx context.Context, jobID string, observe func(domain.JobStatus)) domain.JobStatus {
	if observe == nil {
		observe = func(domain.JobStatus) {}
	}
	deadline := time.NewTimer(p.cfg.Timeout)
	defer deadline.Stop()

	transportFailures := 0
	var previous *domain.JobStatus

	for {
		status, err := p.poll(ctx, jobID)
		switch {
		case err == nil:
			transportFailures = 0
			status = reconcile(previous, status)
			observe(status)
			if status.Terminal() {
				return status
			}
			snapshot := status
			previous = &snapshot
		case errors.Is(err, domain.ErrTransport):
			transportFailures++
			if transportFailures >= p.cfg.MaxConsecutiveTransportErrors {
				final := domain.Failed("upstream unreachable")
				observe(final)
				return final
			}
		case errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded):
			final := domain.Failed("polling aborted")
			observe(final)
			return final
		default:
			// Contract violations, unknown jobs and the like are settled
			// outcomes; retrying cannot change them.
			final := domain.Failed(err.Error())
			observe(final)
			return final
		}

		select {
		case <-ctx.Done():
			final := domain.Failed("polling aborted")
			observe(final)
			return final
		case <-deadline.C:
			final := domain.Failed("timeout")
			observe(final)
			return final
		case <-time.After(p.cfg.Interval):
		}
	}
}

// reconcile enforces the per-session ordering guarantees: progress never
// regresses while processing, and a terminal state observed earlier can only
// be followed by the identical snapshot.
func reconcile(previous *domain.JobStatus, next domain.JobStatus) domain.JobStatus {
	if previous == nil {
		return next
	}
	if previous.Terminal() && *previous != next {
		return domain.Failed("inconsistent provider state")
	}
	if previous.State == domain.StateProcessing && next.State == domain.StateProcessing && next.Progress < previous.Progress {
		next.Progress = previous.Progress
	}
	return next
}
