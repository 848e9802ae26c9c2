// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package services

import (
	"context"
	"fmt"
)

// BackupScheduler is the Start/Stop lifecycle of *backup.Scheduler.
type BackupScheduler interface {
	Start(ctx context.Context) error
	Stop() error
}

// BackupSchedulerService adapts the backup scheduler to suture. A failed
// Start is returned so suture retries with backoff.
type BackupSchedulerService struct {
	scheduler BackupScheduler
}

// NewBackupSchedulerService wraps scheduler.
func NewBackupSchedulerService(scheduler BackupScheduler) *BackupSchedulerService {
	return &BackupSchedulerService{scheduler: scheduler}
}

// Serve implements suture.Service.
func (s *BackupSchedulerService) Serve(ctx context.Context) error {
	if err := s.scheduler.Start(ctx); err != nil {
		return fmt.Errorf("backup scheduler start failed: %w", err)
	}

	<-ctx.Done()

	if err := s.scheduler.Stop(); err != nil {
		return fmt.Errorf("backup scheduler stop failed: %w", err)
	}
	return ctx.Err()
}

func (s *BackupSchedulerService) String() string {
	return "backup-scheduler"
}
