// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

const testSecret = "0123456789abcdef0123456789abcdef"

// setBaseEnv sets the minimum environment for a valid configuration.
func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv(ConfigPathEnvVar, filepath.Join(t.TempDir(), "absent.yaml"))
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("MAIL_HOST", "smtp.example.com")
	t.Setenv("MAIL_FROM", "ledger@example.com")
	t.Setenv("MAIL_RECIPIENT", "owner@example.com")
}

func TestDefaultConfig(t *testing.T) {
	cfg := defaultConfig()

	if cfg.Backup.Schedule != "0 2 1 * *" {
		t.Errorf("Backup.Schedule = %q, want 0 2 1 * *", cfg.Backup.Schedule)
	}
	if cfg.Backup.Timezone != "Local" {
		t.Errorf("Backup.Timezone = %q, want Local", cfg.Backup.Timezone)
	}
	if cfg.Reporting.Timezone != "Asia/Kolkata" {
		t.Errorf("Reporting.Timezone = %q, want Asia/Kolkata", cfg.Reporting.Timezone)
	}
	if cfg.Reporting.PendingCategory != "Pending" {
		t.Errorf("Reporting.PendingCategory = %q, want Pending", cfg.Reporting.PendingCategory)
	}
	if cfg.Security.AuthMode != "jwt" {
		t.Errorf("Security.AuthMode = %q, want jwt", cfg.Security.AuthMode)
	}
	if cfg.Mail.Recipient != "" {
		t.Errorf("Mail.Recipient should have no default, got %q", cfg.Mail.Recipient)
	}
}

func TestEnvTransformFunc(t *testing.T) {
	tests := map[string]string{
		"MAIL_RECIPIENT":          "mail.recipient",
		"BACKUP_SCHEDULE":         "backup.schedule",
		"HTTP_PORT":               "server.port",
		"REPORT_PENDING_CATEGORY": "reporting.pending_category",
		"log_level":               "logging.level",
		"PATH":                    "",
		"HOME":                    "",
	}
	for in, want := range tests {
		if got := envTransformFunc(in); got != want {
			t.Errorf("envTransformFunc(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestLoadWithKoanfEnvVars(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("HTTP_PORT", "9000")
	t.Setenv("BACKUP_SCHEDULE", "30 3 * * 0")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("MAIL_TIMEOUT", "45s")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}

	if cfg.Server.Port != 9000 {
		t.Errorf("Server.Port = %d, want 9000", cfg.Server.Port)
	}
	if cfg.Backup.Schedule != "30 3 * * 0" {
		t.Errorf("Backup.Schedule = %q", cfg.Backup.Schedule)
	}
	if len(cfg.Security.CORSOrigins) != 2 || cfg.Security.CORSOrigins[1] != "https://b.example" {
		t.Errorf("Security.CORSOrigins = %v", cfg.Security.CORSOrigins)
	}
	if cfg.Mail.Timeout != 45*time.Second {
		t.Errorf("Mail.Timeout = %v, want 45s", cfg.Mail.Timeout)
	}
	if cfg.Mail.Recipient != "owner@example.com" {
		t.Errorf("Mail.Recipient = %q", cfg.Mail.Recipient)
	}
	if cfg.Server.Host != "0.0.0.0" {
		t.Errorf("Server.Host = %q, want default 0.0.0.0", cfg.Server.Host)
	}
}

func TestLoadWithKoanfConfigFile(t *testing.T) {
	setBaseEnv(t)

	content := `
server:
  port: 8888
mail:
  service: gmail
  host: ""
  recipient: "books@example.com"
reporting:
  pending_category: "Dues"
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	os.Unsetenv("MAIL_HOST")
	os.Unsetenv("MAIL_RECIPIENT")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 8888 {
		t.Errorf("Server.Port = %d, want 8888", cfg.Server.Port)
	}
	if cfg.Mail.Host != "smtp.gmail.com" || cfg.Mail.Port != 587 {
		t.Errorf("service preset not applied: %s:%d", cfg.Mail.Host, cfg.Mail.Port)
	}
	if cfg.Mail.Recipient != "books@example.com" {
		t.Errorf("Mail.Recipient = %q", cfg.Mail.Recipient)
	}
	if cfg.Reporting.PendingCategory != "Dues" {
		t.Errorf("Reporting.PendingCategory = %q, want Dues", cfg.Reporting.PendingCategory)
	}
}

func TestLoadWithKoanfEnvOverridesFile(t *testing.T) {
	setBaseEnv(t)

	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 7000\n"), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	t.Setenv(ConfigPathEnvVar, path)
	t.Setenv("HTTP_PORT", "7100")

	cfg, err := LoadWithKoanf()
	if err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
	if cfg.Server.Port != 7100 {
		t.Errorf("Server.Port = %d, want 7100 from env", cfg.Server.Port)
	}
}

func TestLoadWithKoanfValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{name: "missing recipient", env: map[string]string{"MAIL_RECIPIENT": ""}, wantErr: "Recipient"},
		{name: "bad recipient", env: map[string]string{"MAIL_RECIPIENT": "not-an-address"}, wantErr: "valid email"},
		{name: "bad schedule", env: map[string]string{"BACKUP_SCHEDULE": "every month"}, wantErr: "BACKUP_SCHEDULE"},
		{name: "host-local report zone", env: map[string]string{"REPORT_TIMEZONE": "Local"}, wantErr: "REPORT_TIMEZONE"},
		{name: "unknown report zone", env: map[string]string{"REPORT_TIMEZONE": "Nowhere/City"}, wantErr: "REPORT_TIMEZONE"},
		{name: "short jwt secret", env: map[string]string{"JWT_SECRET": "short"}, wantErr: "JWT_SECRET"},
		{name: "bad auth mode", env: map[string]string{"AUTH_MODE": "oidc"}, wantErr: "AUTH_MODE"},
		{name: "auth none in production", env: map[string]string{"AUTH_MODE": "none", "ENVIRONMENT": "production"}, wantErr: "AUTH_MODE=none"},
		{name: "bad port", env: map[string]string{"HTTP_PORT": "70000"}, wantErr: "HTTP_PORT"},
		{name: "bad log format", env: map[string]string{"LOG_FORMAT": "xml"}, wantErr: "LOG_FORMAT"},
		{name: "empty pending category", env: map[string]string{"REPORT_PENDING_CATEGORY": " "}, wantErr: "PENDING"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setBaseEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := LoadWithKoanf()
			if err == nil {
				t.Fatalf("LoadWithKoanf() succeeded, want error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestBackupDisabledSkipsMailValidation(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("BACKUP_ENABLED", "false")
	t.Setenv("MAIL_RECIPIENT", "")

	if _, err := LoadWithKoanf(); err != nil {
		t.Fatalf("LoadWithKoanf() error = %v", err)
	}
}

func TestLocations(t *testing.T) {
	cfg := defaultConfig()
	if got := cfg.BackupLocation(); got != time.Local {
		t.Errorf("BackupLocation() = %v, want Local", got)
	}
	cfg.Reporting.Timezone = "UTC"
	if got := cfg.ReportLocation(); got.String() != "UTC" {
		t.Errorf("ReportLocation() = %v, want UTC", got)
	}
}
