// Package scheduler runs the update orchestrator on a fixed cron
// schedule.
package scheduler

import (
	"context"
	"fmt"
	"sync"

	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
)

// Scheduler triggers refresh runs on a cron spec. Start is explicit
// and idempotent; nothing fires at construction time.
type Scheduler struct {
	cron   *cron.Cron
	spec   string
	run    func(ctx context.Context) error
	logger zerolog.Logger

	mu      sync.Mutex
	started bool
}

// New creates a scheduler for the given cron spec and run function
func New(spec string, run func(ctx context.Context) error, logger zerolog.Logger) *Scheduler {
	return &Scheduler{
		cron:   cron.New(),
		spec:   spec,
		run:    run,
		logger: logger.With().Str("component", "scheduler").Logger(),
	}
}

// Start registers the schedule, begins ticking and fires one
// immediate run in the background. Calling Start again is a no-op.
func (s *Scheduler) Start() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.started {
		return nil
	}

	if _, err := s.cron.AddFunc(s.spec, s.fire); err != nil {
		return fmt.Errorf("invalid cron schedule %q: %w", s.spec, err)
	}

	s.cron.Start()
	s.started = true

	s.logger.Info().Str("schedule", s.spec).Msg("Scheduler started")

	// Initial run so a fresh deployment has data before the first tick.
	go s.fire()

	return nil
}

// Started reports whether the scheduler has been started
func (s *Scheduler) Started() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.started
}

// Stop halts the schedule and waits for an in-flight run to finish
func (s *Scheduler) Stop() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.started {
		return
	}

	<-s.cron.Stop().Done()
	s.started = false
	s.logger.Info().Msg("Scheduler stopped")
}

// fire executes one run. Failures are logged and the scheduler simply
// waits for the next tick; there is no in-run retry.
func (s *Scheduler) fire() {
	s.logger.Info().Msg("Running scheduled update")
	if err := s.run(context.Background()); err != nil {
		s.logger.Error().Err(err).Msg("Scheduled update failed")
		return
	}
	s.logger.Info().Msg("Scheduled update completed")
}
