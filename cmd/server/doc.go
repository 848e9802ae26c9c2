// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package main is the entry point for the Innledger server.
//
// Innledger keeps the books of a small guest house, its restaurant and its
// office: guest stays, daily restaurant sales and expenses, staff, pending
// dues and office expenses. It serves a JSON API for record keeping and
// date-range reports, and mails a zip of every collection to the owner on
// the first of each month.
//
// # Startup Order
//
//  1. Configuration: koanf defaults, optional YAML file, environment
//  2. Logging: zerolog global logger
//  3. Record store: BadgerDB at DB_PATH
//  4. Bootstrap admin from ADMIN_USERNAME / ADMIN_PASSWORD if no admin exists
//  5. Backup pipeline: exporter, mail dispatcher, run history, scheduler
//  6. HTTP API: chi router with JWT authentication
//  7. Supervisor tree: store GC, backup scheduler, HTTP server
//
// # Example Usage
//
// Development without authentication:
//
//	export AUTH_MODE=none
//	export DB_PATH=./data/innledger
//	export BACKUP_ENABLED=false
//	./innledger
//
// Production with monthly backups over Gmail:
//
//	export JWT_SECRET=$(openssl rand -base64 32)
//	export ADMIN_USERNAME=owner
//	export ADMIN_PASSWORD=secure-password
//	export MAIL_SERVICE=gmail
//	export MAIL_USERNAME=innledger@example.com
//	export MAIL_PASSWORD=app-password
//	export MAIL_FROM=innledger@example.com
//	export MAIL_RECIPIENT=owner@example.com
//	./innledger
//
// # Signal Handling
//
// SIGINT and SIGTERM cancel the supervisor tree. The HTTP server drains
// in-flight requests, the scheduler stops waiting for its next fire time,
// and the store is closed last.
package main
