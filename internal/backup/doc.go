// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package backup dumps every collection to JSON, zips the dump, and hands the
// archive to a mail dispatcher.
//
// Architecture:
//
//	┌──────────────┐     ┌─────────────────┐     ┌──────────────┐
//	│  Scheduler   │────▶│    Pipeline     │────▶│  Dispatcher  │
//	│ (cron, local)│     │ (single-run mu) │     │   (SMTP)     │
//	└──────────────┘     └─────────────────┘     └──────────────┘
//	       ▲                     │
//	       │                     ▼
//	 GET /backup/send     ┌─────────────────┐
//	 (manual trigger)     │    Exporter     │
//	                      │ work dir + zip  │
//	                      └─────────────────┘
//
// A run is export then send. Export never fails because one collection
// failed: that collection is logged, counted, and left out of the archive.
// Only a work directory or archive failure aborts the run, and then nothing
// is sent.
//
// The work directory and archive path are owned by one Exporter. Pipeline
// holds a mutex around export and send, so a manual trigger that overlaps the
// monthly run waits for it instead of racing on the same files.
//
// Usage:
//
//	exp := &backup.Exporter{WorkDir: cfg.Backup.WorkDir, ArchivePath: cfg.Backup.ArchivePath}
//	hist, _ := backup.OpenHistory(cfg.Backup.HistoryPath, cfg.Backup.HistoryLimit)
//	p := backup.NewPipeline(exp, backup.Descriptors(st, models.All), dispatcher, hist)
//	run, err := p.Run(ctx, backup.TriggerManual)
package backup
