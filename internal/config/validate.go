// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/tomtom215/innledger/internal/calendar"
	"github.com/tomtom215/innledger/internal/cron"
	"github.com/tomtom215/innledger/internal/validation"
)

// Validate checks the merged configuration.
func (c *Config) Validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535")
	}
	if !c.Database.InMemory && c.Database.Path == "" {
		return fmt.Errorf("DB_PATH is required unless DB_IN_MEMORY is set")
	}
	if err := c.validateReporting(); err != nil {
		return err
	}
	if err := c.validateBackup(); err != nil {
		return err
	}
	if err := c.validateSecurity(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateReporting() error {
	if c.Reporting.Timezone == "" || c.Reporting.Timezone == "Local" {
		return fmt.Errorf("REPORT_TIMEZONE must name a fixed IANA zone, not host-local time")
	}
	if _, err := calendar.LoadLocation(c.Reporting.Timezone); err != nil {
		return fmt.Errorf("REPORT_TIMEZONE: %w", err)
	}
	if strings.TrimSpace(c.Reporting.PendingCategory) == "" {
		return fmt.Errorf("REPORT_PENDING_CATEGORY must not be empty")
	}
	return nil
}

func (c *Config) validateBackup() error {
	b := c.Backup
	if b.WorkDir == "" || b.ArchivePath == "" {
		return fmt.Errorf("BACKUP_WORK_DIR and BACKUP_ARCHIVE_PATH are required")
	}
	if b.CompressionLevel < -2 || b.CompressionLevel > 9 {
		return fmt.Errorf("BACKUP_COMPRESSION_LEVEL must be between -2 and 9")
	}
	if b.HistoryLimit < 1 {
		return fmt.Errorf("BACKUP_HISTORY_LIMIT must be at least 1")
	}
	if _, err := calendar.LoadLocation(b.Timezone); err != nil {
		return fmt.Errorf("BACKUP_TIMEZONE: %w", err)
	}
	if _, err := cron.Parse(b.Schedule); err != nil {
		return fmt.Errorf("BACKUP_SCHEDULE: %w", err)
	}
	if !b.Enabled {
		return nil
	}
	// Delivery is part of every run, so the relay must be usable.
	if verr := validation.ValidateStruct(&c.Mail); verr != nil {
		return fmt.Errorf("mail configuration: %w", verr)
	}
	if c.Mail.Timeout <= 0 {
		return fmt.Errorf("MAIL_TIMEOUT must be positive")
	}
	return nil
}

const minJWTSecretLength = 32

func (c *Config) validateSecurity() error {
	s := c.Security
	switch s.AuthMode {
	case "none":
		if c.IsProduction() {
			return fmt.Errorf("AUTH_MODE=none is not allowed when ENVIRONMENT=production")
		}
	case "jwt":
		if len(s.JWTSecret) < minJWTSecretLength {
			return fmt.Errorf("JWT_SECRET must be at least %d characters when AUTH_MODE is jwt", minJWTSecretLength)
		}
		if s.SessionTimeout <= 0 {
			return fmt.Errorf("SESSION_TIMEOUT must be positive")
		}
	default:
		return fmt.Errorf("AUTH_MODE must be one of: none, jwt")
	}

	if s.RateLimitReqs < 1 || s.RateLimitReqs > 100000 {
		return fmt.Errorf("RATE_LIMIT_REQUESTS must be between 1 and 100000")
	}
	if s.RateLimitWindow < time.Second || s.RateLimitWindow > time.Hour {
		return fmt.Errorf("RATE_LIMIT_WINDOW must be between 1s and 1h")
	}
	if s.AuthMode != "none" && c.IsProduction() && c.hasWildcardCORS() {
		return fmt.Errorf("CORS_ORIGINS=* is not allowed in production with authentication enabled")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled":
	default:
		return fmt.Errorf("LOG_LEVEL %q is not a known level", c.Logging.Level)
	}
	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("LOG_FORMAT must be json or console")
	}
	return nil
}

func (c *Config) hasWildcardCORS() bool {
	for _, o := range c.Security.CORSOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// ShouldWarnAboutCORS reports a wildcard origin combined with authentication.
func (c *Config) ShouldWarnAboutCORS() bool {
	return c.Security.AuthMode != "none" && c.hasWildcardCORS()
}

// IsProduction reports ENVIRONMENT=production (or prod).
func (c *Config) IsProduction() bool {
	env := strings.ToLower(c.Server.Environment)
	return env == "production" || env == "prod"
}

// ReportLocation returns the reference zone for record dates and reports.
func (c *Config) ReportLocation() *time.Location {
	loc, err := calendar.LoadLocation(c.Reporting.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// BackupLocation returns the zone the backup schedule is evaluated in.
func (c *Config) BackupLocation() *time.Location {
	loc, err := calendar.LoadLocation(c.Backup.Timezone)
	if err != nil {
		return time.Local
	}
	return loc
}
