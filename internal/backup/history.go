// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package backup

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

// Trigger says what started a run.
type Trigger string

const (
	// TriggerScheduled is the monthly cron run.
	TriggerScheduled Trigger = "scheduled"
	// TriggerManual is the on-demand API run.
	TriggerManual Trigger = "manual"
)

// Status is the outcome of a run.
type Status string

// Run outcomes. Export failures skip delivery.
const (
	StatusCompleted      Status = "completed"
	StatusExportFailed   Status = "export_failed"
	StatusDeliveryFailed Status = "delivery_failed"
)

// Run is one pipeline execution.
type Run struct {
	ID           string              `json:"id"`
	Trigger      Trigger             `json:"trigger"`
	Status       Status              `json:"status"`
	StartedAt    time.Time           `json:"started_at"`
	FinishedAt   time.Time           `json:"finished_at"`
	DurationMS   int64               `json:"duration_ms"`
	Exported     []string            `json:"exported,omitempty"`
	Failed       []CollectionFailure `json:"failed,omitempty"`
	ArchivePath  string              `json:"archive_path,omitempty"`
	ArchiveBytes int64               `json:"archive_bytes,omitempty"`
	Error        string              `json:"error,omitempty"`
}

// Stats summarizes the retained history.
type Stats struct {
	TotalRuns      int        `json:"total_runs"`
	Completed      int        `json:"completed"`
	ExportFailed   int        `json:"export_failed"`
	DeliveryFailed int        `json:"delivery_failed"`
	LastRun        *time.Time `json:"last_run,omitempty"`
	LastStatus     Status     `json:"last_status,omitempty"`
	LastSuccess    *time.Time `json:"last_success,omitempty"`
	InProgress     bool       `json:"in_progress"`
	NextScheduled  *time.Time `json:"next_scheduled,omitempty"`
}

// History keeps the most recent runs in a JSON file.
type History struct {
	path  string
	limit int

	mu   sync.RWMutex
	runs []*Run
}

// OpenHistory loads path if it exists. An empty path keeps history in
// memory only.
//
//nolint:gosec // G304: path comes from backup configuration
func OpenHistory(path string, limit int) (*History, error) {
	if limit < 1 {
		limit = 1
	}
	h := &History{path: path, limit: limit, runs: []*Run{}}
	if path == "" {
		return h, nil
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return h, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read backup history: %w", err)
	}
	if err := json.Unmarshal(data, &h.runs); err != nil {
		return nil, fmt.Errorf("parse backup history %s: %w", path, err)
	}
	h.trimLocked()
	return h, nil
}

// Add appends run and persists the history. The run is kept in memory even
// if the file cannot be written.
func (h *History) Add(run *Run) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.runs = append(h.runs, run)
	h.trimLocked()
	return h.saveLocked()
}

// List returns the retained runs, newest first.
func (h *History) List() []*Run {
	h.mu.RLock()
	defer h.mu.RUnlock()

	out := make([]*Run, len(h.runs))
	for i, r := range h.runs {
		out[len(h.runs)-1-i] = r
	}
	return out
}

// Stats counts the retained runs by status.
func (h *History) Stats() Stats {
	h.mu.RLock()
	defer h.mu.RUnlock()

	var s Stats
	s.TotalRuns = len(h.runs)
	for _, r := range h.runs {
		switch r.Status {
		case StatusCompleted:
			s.Completed++
			finished := r.FinishedAt
			s.LastSuccess = &finished
		case StatusExportFailed:
			s.ExportFailed++
		case StatusDeliveryFailed:
			s.DeliveryFailed++
		}
	}
	if n := len(h.runs); n > 0 {
		last := h.runs[n-1]
		started := last.StartedAt
		s.LastRun = &started
		s.LastStatus = last.Status
	}
	return s
}

func (h *History) trimLocked() {
	if over := len(h.runs) - h.limit; over > 0 {
		h.runs = append([]*Run(nil), h.runs[over:]...)
	}
}

func (h *History) saveLocked() error {
	if h.path == "" {
		return nil
	}
	data, err := json.MarshalIndent(h.runs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode backup history: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(h.path), 0o750); err != nil {
		return fmt.Errorf("create history dir: %w", err)
	}
	if err := os.WriteFile(h.path, data, 0o600); err != nil {
		return fmt.Errorf("write backup history: %w", err)
	}
	return nil
}
