// Package sweeper wires up the cron job that deactivates postings older than
// the configured retention window. Deactivated postings stay in storage and on
// the employer dashboard; they only drop out of the public listing.
package sweeper

import (
	"context"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"

	"jobgrid.org/internal/board"
	"jobgrid.org/internal/obs"
)

// Sweeper wraps robfig/cron and manages the deactivation loop.
type Sweeper struct {
	cron   *cron.Cron
	jobs   board.JobStore
	maxAge time.Duration
	spec   string // cron spec, e.g. "@every 1h"
}

// New creates a Sweeper that fires on spec and deactivates postings older than
// maxAge.
func New(jobs board.JobStore, maxAge time.Duration, spec string) *Sweeper {
	if spec == "" {
		spec = "@every 1h"
	}
	return &Sweeper{
		cron:   cron.New(),
		jobs:   jobs,
		maxAge: maxAge,
		spec:   spec,
	}
}

// Start registers the job and starts the scheduler. Also runs one sweep
// immediately so a long-stopped service catches up without waiting for the
// first tick.
func (s *Sweeper) Start(ctx context.Context) error {
	_, err := s.cron.AddFunc(s.spec, func() {
		s.Sweep(ctx)
	})
	if err != nil {
		return fmt.Errorf("cron.AddFunc: %w", err)
	}

	s.cron.Start()
	obs.LogEvent("info", "sweeper started", map[string]any{"spec": s.spec, "max_age": s.maxAge.String()})

	go s.Sweep(ctx)
	return nil
}

// Stop gracefully shuts down the scheduler.
func (s *Sweeper) Stop() {
	s.cron.Stop()
	obs.LogEvent("info", "sweeper stopped", nil)
}

// Sweep runs one deactivation pass.
func (s *Sweeper) Sweep(ctx context.Context) {
	cutoff := time.Now().UTC().Add(-s.maxAge)
	n, err := s.jobs.DeactivateOlderThan(ctx, cutoff)
	if err != nil {
		obs.LogEvent("error", "sweep failed", map[string]any{"error": err.Error()})
		return
	}
	if n > 0 {
		obs.LogEvent("info", "postings deactivated", map[string]any{"count": n, "cutoff": cutoff.Format(time.RFC3339)})
	}
}
