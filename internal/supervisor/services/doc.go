// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package services adapts Innledger components to suture.Service.
//
// Each wrapper translates a component's own lifecycle (ListenAndServe and
// Shutdown, Start and Stop, a periodic maintenance call) into a blocking
// Serve(ctx) that returns when ctx is canceled or the component fails.
package services
