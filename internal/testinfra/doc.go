// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package testinfra provides test infrastructure for integration testing with containers.
//
// This package uses testcontainers-go to run a real SMTP relay so the backup
// mail path can be exercised end to end.
//
// # Mailpit Container
//
// MailpitContainer runs Mailpit, an SMTP sink with an HTTP API for reading
// what it received:
//
//	func TestBackupMail(t *testing.T) {
//	    testinfra.SkipIfNoDocker(t)
//	    ctx := context.Background()
//	    relay, err := testinfra.NewMailpitContainer(ctx)
//	    if err != nil {
//	        t.Fatal(err)
//	    }
//	    defer testinfra.CleanupContainer(t, ctx, relay)
//
//	    d := mail.NewDispatcher(config.MailConfig{Host: relay.SMTPHost, Port: relay.SMTPPort, ...})
//	    // send, then relay.Messages(ctx)
//	}
//
// # Running Integration Tests
//
// Integration tests require Docker and the integration build tag:
//
//	go test -tags integration ./internal/mail/...
package testinfra
