// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

//go:build integration

package testinfra

import (
	"context"
	"fmt"
	"net/http"
	"os/exec"
	"testing"
	"time"

	"github.com/goccy/go-json"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/wait"
)

const (
	// DefaultMailpitImage is the Mailpit SMTP sink image.
	DefaultMailpitImage = "axllent/mailpit:v1.21"

	mailpitSMTPPort = "1025/tcp"
	mailpitHTTPPort = "8025/tcp"
)

// SkipIfNoDocker skips t when no Docker daemon answers.
func SkipIfNoDocker(t *testing.T) {
	t.Helper()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if exec.CommandContext(ctx, "docker", "info").Run() != nil {
		t.Skip("Skipping test: Docker not available")
	}
}

// CleanupContainer terminates c and logs instead of failing.
func CleanupContainer(t *testing.T, ctx context.Context, c testcontainers.Container) {
	t.Helper()
	if c == nil {
		return
	}
	if err := c.Terminate(ctx); err != nil {
		t.Logf("Warning: failed to terminate container: %v", err)
	}
}

// MailpitContainer is a running Mailpit relay. Any SMTP credentials are
// accepted, including over plain connections.
type MailpitContainer struct {
	testcontainers.Container
	SMTPHost string
	SMTPPort int
	APIURL   string
}

// MailpitMessage is the summary Mailpit returns for each message.
type MailpitMessage struct {
	ID          string `json:"ID"`
	Subject     string `json:"Subject"`
	Attachments int    `json:"Attachments"`
	Size        int    `json:"Size"`
	To          []struct {
		Address string `json:"Address"`
	} `json:"To"`
}

// NewMailpitContainer starts Mailpit and waits for both ports.
func NewMailpitContainer(ctx context.Context) (*MailpitContainer, error) {
	req := testcontainers.ContainerRequest{
		Image:        DefaultMailpitImage,
		ExposedPorts: []string{mailpitSMTPPort, mailpitHTTPPort},
		Env: map[string]string{
			"MP_SMTP_AUTH_ACCEPT_ANY":     "1",
			"MP_SMTP_AUTH_ALLOW_INSECURE": "1",
		},
		WaitingFor: wait.ForAll(
			wait.ForListeningPort(mailpitSMTPPort),
			wait.ForHTTP("/api/v1/info").WithPort(mailpitHTTPPort),
		).WithStartupTimeout(60 * time.Second),
	}

	c, err := testcontainers.GenericContainer(ctx, testcontainers.GenericContainerRequest{
		ContainerRequest: req,
		Started:          true,
	})
	if err != nil {
		return nil, fmt.Errorf("create mailpit container: %w", err)
	}

	host, err := c.Host(ctx)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get container host: %w", err)
	}
	smtpPort, err := c.MappedPort(ctx, mailpitSMTPPort)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get smtp port: %w", err)
	}
	httpPort, err := c.MappedPort(ctx, mailpitHTTPPort)
	if err != nil {
		c.Terminate(ctx) //nolint:errcheck
		return nil, fmt.Errorf("get api port: %w", err)
	}

	return &MailpitContainer{
		Container: c,
		SMTPHost:  host,
		SMTPPort:  smtpPort.Int(),
		APIURL:    fmt.Sprintf("http://%s:%s", host, httpPort.Port()),
	}, nil
}

// Messages lists every message Mailpit has received.
func (m *MailpitContainer) Messages(ctx context.Context) ([]MailpitMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, m.APIURL+"/api/v1/messages", http.NoBody)
	if err != nil {
		return nil, err
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("list messages: status %d", resp.StatusCode)
	}
	var out struct {
		Messages []MailpitMessage `json:"messages"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return nil, fmt.Errorf("decode messages: %w", err)
	}
	return out.Messages, nil
}
