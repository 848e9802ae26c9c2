// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

// Package config loads Innledger configuration with koanf.
//
// Sources are layered, later ones winning:
//
//  1. built-in defaults (defaultConfig)
//  2. an optional YAML file (CONFIG_PATH, ./config.yaml, /etc/innledger/config.yaml)
//  3. environment variables (see envMappings)
//
// The result is validated once at startup; an invalid configuration stops
// the process before any service starts.
package config

import "time"

// Config is the complete application configuration.
type Config struct {
	Server    ServerConfig    `koanf:"server"`
	Database  DatabaseConfig  `koanf:"database"`
	Backup    BackupConfig    `koanf:"backup"`
	Mail      MailConfig      `koanf:"mail"`
	Reporting ReportingConfig `koanf:"reporting"`
	Security  SecurityConfig  `koanf:"security"`
	Logging   LoggingConfig   `koanf:"logging"`
}

// ServerConfig holds HTTP listener settings.
type ServerConfig struct {
	Port        int           `koanf:"port"`
	Host        string        `koanf:"host"`
	Timeout     time.Duration `koanf:"timeout"`
	Environment string        `koanf:"environment"`
}

// DatabaseConfig holds the embedded record store settings.
type DatabaseConfig struct {
	Path       string `koanf:"path"`
	InMemory   bool   `koanf:"in_memory"`
	SyncWrites bool   `koanf:"sync_writes"`
}

// BackupConfig controls the export-and-mail pipeline.
type BackupConfig struct {
	Enabled          bool          `koanf:"enabled"`
	WorkDir          string        `koanf:"work_dir"`
	ArchivePath      string        `koanf:"archive_path"`
	HistoryPath      string        `koanf:"history_path"`
	HistoryLimit     int           `koanf:"history_limit"`
	Schedule         string        `koanf:"schedule"`
	Timezone         string        `koanf:"timezone"`
	CompressionLevel int           `koanf:"compression_level"`
	RunTimeout       time.Duration `koanf:"run_timeout"`
}

// MailConfig describes the relay and the fixed backup message.
type MailConfig struct {
	Service   string        `koanf:"service"`
	Host      string        `koanf:"host" validate:"required,hostname_rfc1123"`
	Port      int           `koanf:"port" validate:"gte=1,lte=65535"`
	Username  string        `koanf:"username"`
	Password  string        `koanf:"password"`
	From      string        `koanf:"from" validate:"required,email"`
	Recipient string        `koanf:"recipient" validate:"required,email"`
	Subject   string        `koanf:"subject" validate:"required"`
	Body      string        `koanf:"body"`
	UseTLS    bool          `koanf:"use_tls"`
	Timeout   time.Duration `koanf:"timeout"`

	// Breaker settings for the relay circuit breaker.
	BreakerFailures int           `koanf:"breaker_failures"`
	BreakerTimeout  time.Duration `koanf:"breaker_timeout"`
}

// ReportingConfig holds date-handling settings shared by reports and record writes.
type ReportingConfig struct {
	Timezone        string `koanf:"timezone"`
	PendingCategory string `koanf:"pending_category"`
}

// SecurityConfig holds authentication and HTTP hardening settings.
type SecurityConfig struct {
	AuthMode        string        `koanf:"auth_mode"`
	JWTSecret       string        `koanf:"jwt_secret"`
	SessionTimeout  time.Duration `koanf:"session_timeout"`
	AdminUsername   string        `koanf:"admin_username"`
	AdminPassword   string        `koanf:"admin_password"`
	RateLimitReqs   int           `koanf:"rate_limit_reqs"`
	RateLimitWindow time.Duration `koanf:"rate_limit_window"`
	CORSOrigins     []string      `koanf:"cors_origins"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// Load reads and validates the configuration.
func Load() (*Config, error) {
	return LoadWithKoanf()
}
