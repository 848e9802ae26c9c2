// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

/*
Package supervisor runs Innledger's long-lived services under suture v4.

The tree has three layers so a failure in one does not take down the others:

	RootSupervisor ("innledger")
	├── DataSupervisor ("data-layer")
	│   └── StoreGCService
	├── JobsSupervisor ("jobs-layer")
	│   └── BackupSchedulerService (if backup.enabled)
	└── APISupervisor ("api-layer")
	    └── HTTPServerService

Crashed services are restarted with suture's backoff. Supervisor events are
logged through sutureslog, fed by the zerolog-backed slog adapter from the
logging package.

Usage:

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{})
	tree.AddDataService(services.NewStoreGCService(st, 10*time.Minute, 0.5))
	tree.AddJobsService(services.NewBackupSchedulerService(scheduler))
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	err = tree.Serve(ctx)
*/
package supervisor
