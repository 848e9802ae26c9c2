// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

//go:build integration

package mail

import (
	"context"
	"testing"
	"time"

	"github.com/tomtom215/innledger/internal/config"
	"github.com/tomtom215/innledger/internal/testinfra"
)

func TestSendArchiveToMailpit(t *testing.T) {
	testinfra.SkipIfNoDocker(t)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	relay, err := testinfra.NewMailpitContainer(ctx)
	if err != nil {
		t.Fatalf("start mailpit: %v", err)
	}
	defer testinfra.CleanupContainer(t, context.Background(), relay)

	d := NewDispatcher(config.MailConfig{
		Host:      relay.SMTPHost,
		Port:      relay.SMTPPort,
		Username:  "backup",
		Password:  "secret",
		From:      "backup@innledger.test",
		Recipient: "owner@innledger.test",
		Subject:   "Monthly backup",
		Body:      "Backup archive attached.",
		Timeout:   10 * time.Second,
	})

	if err := d.SendArchive(ctx, writeArchive(t, []byte("PK\x05\x06 empty zip"))); err != nil {
		t.Fatalf("SendArchive() error = %v", err)
	}

	msgs, err := relay.Messages(ctx)
	if err != nil {
		t.Fatalf("Messages() error = %v", err)
	}
	if len(msgs) != 1 {
		t.Fatalf("mailpit holds %d messages, want 1", len(msgs))
	}
	m := msgs[0]
	if m.Subject != "Monthly backup" || m.Attachments != 1 {
		t.Errorf("message = %+v", m)
	}
	if len(m.To) != 1 || m.To[0].Address != "owner@innledger.test" {
		t.Errorf("recipients = %+v", m.To)
	}
}
