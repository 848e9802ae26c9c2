// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

/*
scheduler.go - Backup Scheduling

The scheduler fires the pipeline on a five-field cron expression, by default
"0 2 1 * *": 02:00 on the first of every month in server local time.

Timer Logic:
  - The next fire time is computed from the cron expression after each run
  - Runs are synchronous inside the loop; a run that outlasts the next fire
    time delays it rather than overlapping
  - A failed run is logged and the loop waits for the next fire time

Integration:
The scheduler is started via Start() and stopped via Stop(). The supervisor
wraps it as a suture service.
*/

//nolint:staticcheck // File documentation, not package doc
package backup

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/tomtom215/innledger/internal/cron"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/metrics"
)

// Runner runs one backup. *Pipeline implements it.
type Runner interface {
	Run(ctx context.Context, trigger Trigger) (*Run, error)
}

// Scheduler triggers scheduled runs.
type Scheduler struct {
	expr   *cron.Expression
	loc    *time.Location
	runner Runner
	now    func() time.Time

	stop      chan struct{}
	wg        sync.WaitGroup
	running   bool
	runningMu sync.Mutex

	nextMu sync.RWMutex
	next   time.Time
}

// NewScheduler parses schedule and evaluates it in loc.
func NewScheduler(schedule string, loc *time.Location, runner Runner) (*Scheduler, error) {
	expr, err := cron.Parse(schedule)
	if err != nil {
		return nil, fmt.Errorf("backup schedule: %w", err)
	}
	if loc == nil {
		loc = time.Local
	}
	return &Scheduler{
		expr:   expr,
		loc:    loc,
		runner: runner,
		now:    time.Now,
	}, nil
}

// Start launches the scheduler loop.
func (s *Scheduler) Start(ctx context.Context) error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if s.running {
		return fmt.Errorf("backup scheduler is already running")
	}
	s.running = true
	s.stop = make(chan struct{})

	next := s.expr.Next(s.now(), s.loc)
	s.setNext(next)

	s.wg.Add(1)
	go s.loop(ctx, next)

	logging.Info().Str("schedule", s.expr.String()).Str("location", s.loc.String()).
		Time("next_run", s.Next()).Msg("Backup scheduler started")
	return nil
}

// Stop ends the loop and waits for an in-progress run to finish.
func (s *Scheduler) Stop() error {
	s.runningMu.Lock()
	defer s.runningMu.Unlock()

	if !s.running {
		return nil
	}
	close(s.stop)
	s.wg.Wait()
	s.running = false
	return nil
}

// Next returns the next fire time, or the zero time when stopped.
func (s *Scheduler) Next() time.Time {
	s.nextMu.RLock()
	defer s.nextMu.RUnlock()
	return s.next
}

func (s *Scheduler) setNext(t time.Time) {
	s.nextMu.Lock()
	s.next = t
	s.nextMu.Unlock()
	if t.IsZero() {
		metrics.BackupNextRun.Set(0)
		return
	}
	metrics.BackupNextRun.Set(float64(t.Unix()))
}

func (s *Scheduler) loop(ctx context.Context, next time.Time) {
	defer s.wg.Done()
	defer s.setNext(time.Time{})

	for {
		if next.IsZero() {
			logging.Error().Str("schedule", s.expr.String()).Msg("Backup schedule never fires; scheduler idle")
			select {
			case <-ctx.Done():
			case <-s.stop:
			}
			return
		}
		s.setNext(next)

		timer := time.NewTimer(next.Sub(s.now()))
		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-s.stop:
			timer.Stop()
			return
		case <-timer.C:
		}

		if _, err := s.runner.Run(ctx, TriggerScheduled); err != nil {
			logging.Error().Err(err).Msg("Scheduled backup failed")
		}
		// Compute from no earlier than the slot that fired, in case the
		// wall clock stepped back.
		after := s.now()
		if after.Before(next) {
			after = next
		}
		next = s.expr.Next(after, s.loc)
	}
}
