// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package backup

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"

	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/metrics"
)

// Dispatcher delivers a finished archive.
type Dispatcher interface {
	SendArchive(ctx context.Context, path string) error
}

// Pipeline runs export then send, one run at a time.
type Pipeline struct {
	exporter    *Exporter
	collections []Collection
	dispatcher  Dispatcher
	history     *History

	// Timeout bounds one run, including time spent queued behind another
	// run. Zero means no limit.
	Timeout time.Duration

	// sem holds one token while a run is in flight.
	sem      chan struct{}
	inFlight atomic.Bool

	nextMu sync.Mutex
	nextFn func() time.Time
}

// NewPipeline creates a pipeline. history may be nil.
func NewPipeline(exp *Exporter, colls []Collection, d Dispatcher, history *History) *Pipeline {
	if history == nil {
		history, _ = OpenHistory("", 50) //nolint:errcheck // in-memory history cannot fail
	}
	return &Pipeline{
		exporter:    exp,
		collections: colls,
		dispatcher:  d,
		history:     history,
		sem:         make(chan struct{}, 1),
	}
}

// Run exports every collection and mails the archive. Overlapping callers
// queue for the run slot; the queue wait counts against Timeout. The returned
// Run is recorded in history whether or not the run succeeded; err is the
// wait, export or delivery failure.
func (p *Pipeline) Run(ctx context.Context, trigger Trigger) (*Run, error) {
	if p.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.Timeout)
		defer cancel()
	}

	run := &Run{
		ID:        uuid.New().String(),
		Trigger:   trigger,
		StartedAt: time.Now(),
	}
	ctx = logging.ContextWithCorrelationID(ctx, run.ID[:8])
	logger := logging.Ctx(ctx)

	var err error
	select {
	case p.sem <- struct{}{}:
		err = p.runLocked(ctx, run)
	case <-ctx.Done():
		// Nothing was exported, so the run counts as an export failure.
		run.Status = StatusExportFailed
		err = fmt.Errorf("wait for in-flight backup run: %w", ctx.Err())
	}

	run.FinishedAt = time.Now()
	run.DurationMS = run.FinishedAt.Sub(run.StartedAt).Milliseconds()
	if err != nil {
		run.Error = err.Error()
	}
	metrics.RecordBackupRun(string(trigger), string(run.Status), run.FinishedAt.Sub(run.StartedAt), run.Status == StatusCompleted)

	if herr := p.history.Add(run); herr != nil {
		logger.Warn().Err(herr).Msg("Failed to persist backup history")
	}

	if err != nil {
		logger.Error().Err(err).Str("run_id", run.ID).Str("status", string(run.Status)).Msg("Backup run failed")
		return run, err
	}
	logger.Info().Str("run_id", run.ID).Int64("duration_ms", run.DurationMS).Msg("Backup run completed")
	return run, nil
}

// runLocked executes a run while holding the run slot and releases it.
func (p *Pipeline) runLocked(ctx context.Context, run *Run) error {
	p.inFlight.Store(true)
	metrics.BackupInProgress.Set(1)
	defer func() {
		p.inFlight.Store(false)
		metrics.BackupInProgress.Set(0)
		<-p.sem
	}()

	logging.Ctx(ctx).Info().Str("run_id", run.ID).Str("trigger", string(run.Trigger)).Msg("Backup run started")
	return p.execute(ctx, run)
}

func (p *Pipeline) execute(ctx context.Context, run *Run) error {
	res, err := p.exporter.ExportAll(ctx, p.collections)
	if err != nil {
		run.Status = StatusExportFailed
		return fmt.Errorf("export: %w", err)
	}
	run.Exported = res.Exported
	run.Failed = res.Failed
	run.ArchivePath = res.ArchivePath
	run.ArchiveBytes = res.ArchiveBytes
	metrics.BackupArchiveBytes.Set(float64(res.ArchiveBytes))

	if err := p.dispatcher.SendArchive(ctx, res.ArchivePath); err != nil {
		run.Status = StatusDeliveryFailed
		return fmt.Errorf("deliver: %w", err)
	}
	run.Status = StatusCompleted
	return nil
}

// History returns the retained runs, newest first.
func (p *Pipeline) History() []*Run {
	return p.history.List()
}

// SetNextRun lets the scheduler report its next fire time in Stats.
func (p *Pipeline) SetNextRun(fn func() time.Time) {
	p.nextMu.Lock()
	defer p.nextMu.Unlock()
	p.nextFn = fn
}

// Stats summarizes history and the current state.
func (p *Pipeline) Stats() Stats {
	s := p.history.Stats()
	s.InProgress = p.inFlight.Load()

	p.nextMu.Lock()
	fn := p.nextFn
	p.nextMu.Unlock()
	if fn != nil {
		if next := fn(); !next.IsZero() {
			s.NextScheduled = &next
		}
	}
	return s
}
