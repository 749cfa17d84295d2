// Package builder drives the server-side AI workflow-generation jobs and
// the polling client observing them.
package builder

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/atelierhq/atelier/pkg/models"
)

// ErrPollTimeout is returned when a run does not reach a terminal status
// within the attempt budget. It is distinct from a run-reported failure.
var ErrPollTimeout = errors.New("builder run polling timed out")

const (
	// DefaultPollInterval is the pause between status fetches.
	DefaultPollInterval = 2 * time.Second

	// DefaultMaxAttempts bounds polling to roughly six minutes at the
	// default interval.
	DefaultMaxAttempts = 180
)

// StatusFetcher loads the current state of a run, typically backed by the
// run repository or a remote get-run endpoint.
type StatusFetcher func(ctx context.Context, runID string) (*models.BuilderRun, error)

// ProgressFunc is invoked once per poll tick with the freshly fetched run.
type ProgressFunc func(run *models.BuilderRun)

// PollerOption customizes a Poller.
type PollerOption func(*Poller)

// WithInterval overrides the poll interval.
func WithInterval(interval time.Duration) PollerOption {
	return func(p *Poller) {
		if interval > 0 {
			p.interval = interval
		}
	}
}

// WithMaxAttempts overrides the attempt budget.
func WithMaxAttempts(attempts int) PollerOption {
	return func(p *Poller) {
		if attempts > 0 {
			p.maxAttempts = attempts
		}
	}
}

// Poller repeatedly fetches a run's status until it reaches a terminal
// state or the attempt budget is exhausted. It only stops observing; it
// never cancels the remote job.
type Poller struct {
	fetch       StatusFetcher
	interval    time.Duration
	maxAttempts int
	logger      *slog.Logger
}

// NewPoller creates a poller around a status fetcher.
func NewPoller(fetch StatusFetcher, logger *slog.Logger, opts ...PollerOption) *Poller {
	poller := &Poller{
		fetch:       fetch,
		interval:    DefaultPollInterval,
		maxAttempts: DefaultMaxAttempts,
		logger:      logger.With("module", "builder_poller"),
	}

	for _, opt := range opts {
		opt(poller)
	}

	return poller
}

// PollForCompletion observes the run until it is terminal. onProgress, when
// non-nil, is called with every fetched status including the terminal one.
// Exhausting the attempt budget returns ErrPollTimeout.
func (p *Poller) PollForCompletion(ctx context.Context, runID string, onProgress ProgressFunc) (*models.BuilderRun, error) {
	for attempt := 1; attempt <= p.maxAttempts; attempt++ {
		run, err := p.fetch(ctx, runID)
		if err != nil {
			return nil, fmt.Errorf("failed to fetch run %s: %w", runID, err)
		}

		if onProgress != nil {
			onProgress(run)
		}

		if run.Status.Terminal() {
			return run, nil
		}

		if attempt == p.maxAttempts {
			break
		}

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(p.interval):
		}
	}

	p.logger.Warn("run did not finish within attempt budget", "run_id", runID, "attempts", p.maxAttempts)

	return nil, fmt.Errorf("%w: run %s after %d attempts", ErrPollTimeout, runID, p.maxAttempts)
}
