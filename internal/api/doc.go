// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

/*
Package api provides the HTTP REST API for Innledger.

Routes (all under /api/v1):

  - health/live, health/ready: liveness and store readiness
  - auth/login: exchange admin credentials for a JWT
  - records/{collection}[/{id}]: CRUD over every collection
  - reports/{collection}/{start}/{end}: date-range query, with /items/{field}
    and /totals variants, plus reports/pending/{start}/{end}
  - backup/send: run export and delivery synchronously
  - backup/history, backup/stats: pipeline run history

Days in report paths use DD-MM-YYYY and are inclusive on both ends. An end
day before the start day yields an empty list, not an error.

Every response uses the same envelope:

	{"success": true, "data": ...}
	{"success": false, "message": "...", "error": {"code": "...", ...}}

Middleware stack, outermost first: request ID with logging context, real IP,
panic recovery, CORS, then per-group rate limiting, security headers,
Prometheus instrumentation, gzip and JWT authentication.
*/
package api
