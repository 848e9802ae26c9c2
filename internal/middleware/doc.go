// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

/*
Package middleware provides HTTP middleware shared by the API router.

Key Components:

  - PrometheusMetrics: request counts, latency and in-flight gauge, labelled
    by the chi route pattern so that record IDs do not explode cardinality
  - Compression: gzip for JSON responses above 1 KiB (klauspost gzhttp)

Both are plain func(http.Handler) http.Handler values and can be passed to
chi's Use directly:

	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression())
*/
package middleware
