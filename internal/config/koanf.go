// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

// DefaultConfigPaths are searched in order when CONFIG_PATH is unset.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/innledger/config.yaml",
	"/etc/innledger/config.yml",
}

// ConfigPathEnvVar overrides the config file location.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:        4000,
			Host:        "0.0.0.0",
			Timeout:     30 * time.Second,
			Environment: "development",
		},
		Database: DatabaseConfig{
			Path:       "/data/innledger",
			SyncWrites: true,
		},
		Backup: BackupConfig{
			Enabled:          true,
			WorkDir:          "/data/backup/work",
			ArchivePath:      "/data/backup/backup.zip",
			HistoryPath:      "/data/backup/history.json",
			HistoryLimit:     50,
			Schedule:         "0 2 1 * *",
			Timezone:         "Local",
			CompressionLevel: 6,
			RunTimeout:       10 * time.Minute,
		},
		Mail: MailConfig{
			Service:         "",
			Port:            587,
			Subject:         "Innledger monthly backup",
			Body:            "Attached is the latest backup of all collections.",
			UseTLS:          true,
			Timeout:         30 * time.Second,
			BreakerFailures: 3,
			BreakerTimeout:  5 * time.Minute,
		},
		Reporting: ReportingConfig{
			Timezone:        "Asia/Kolkata",
			PendingCategory: "Pending",
		},
		Security: SecurityConfig{
			AuthMode:        "jwt",
			SessionTimeout:  24 * time.Hour,
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			CORSOrigins:     []string{"*"},
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// LoadWithKoanf loads defaults, then the optional YAML file, then the
// environment, and validates the merged result.
func LoadWithKoanf() (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	cfg.Mail.applyServicePreset()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

var sliceConfigPaths = []string{
	"security.cors_origins",
}

// processSliceFields splits comma-separated env values for slice fields.
func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok || s == "" {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if len(parts) == 0 {
			continue
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings maps lower-cased environment variable names to koanf paths.
// Unlisted variables are ignored.
var envMappings = map[string]string{
	"http_port":    "server.port",
	"http_host":    "server.host",
	"http_timeout": "server.timeout",
	"environment":  "server.environment",

	"db_path":        "database.path",
	"db_in_memory":   "database.in_memory",
	"db_sync_writes": "database.sync_writes",

	"backup_enabled":           "backup.enabled",
	"backup_work_dir":          "backup.work_dir",
	"backup_archive_path":      "backup.archive_path",
	"backup_history_path":      "backup.history_path",
	"backup_history_limit":     "backup.history_limit",
	"backup_schedule":          "backup.schedule",
	"backup_timezone":          "backup.timezone",
	"backup_compression_level": "backup.compression_level",
	"backup_run_timeout":       "backup.run_timeout",

	"mail_service":          "mail.service",
	"mail_host":             "mail.host",
	"mail_port":             "mail.port",
	"mail_username":         "mail.username",
	"mail_password":         "mail.password",
	"mail_from":             "mail.from",
	"mail_recipient":        "mail.recipient",
	"mail_subject":          "mail.subject",
	"mail_body":             "mail.body",
	"mail_use_tls":          "mail.use_tls",
	"mail_timeout":          "mail.timeout",
	"mail_breaker_failures": "mail.breaker_failures",
	"mail_breaker_timeout":  "mail.breaker_timeout",

	"report_timezone":         "reporting.timezone",
	"report_pending_category": "reporting.pending_category",

	"auth_mode":           "security.auth_mode",
	"jwt_secret":          "security.jwt_secret",
	"session_timeout":     "security.session_timeout",
	"admin_username":      "security.admin_username",
	"admin_password":      "security.admin_password",
	"rate_limit_requests": "security.rate_limit_reqs",
	"rate_limit_window":   "security.rate_limit_window",
	"cors_origins":        "security.cors_origins",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",
}

// envTransformFunc maps an environment variable name to its koanf path.
//
//   - MAIL_RECIPIENT -> mail.recipient
//   - BACKUP_SCHEDULE -> backup.schedule
//   - HTTP_PORT -> server.port
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

// mailServicePresets fill in relay host and port from a named service.
var mailServicePresets = map[string]struct {
	host string
	port int
}{
	"gmail":   {"smtp.gmail.com", 587},
	"outlook": {"smtp.office365.com", 587},
	"hotmail": {"smtp.office365.com", 587},
	"yahoo":   {"smtp.mail.yahoo.com", 587},
	"zoho":    {"smtp.zoho.com", 587},
}

// applyServicePreset resolves Service into Host/Port when Host is unset.
func (m *MailConfig) applyServicePreset() {
	if m.Host != "" || m.Service == "" {
		return
	}
	if p, ok := mailServicePresets[strings.ToLower(m.Service)]; ok {
		m.Host = p.host
		m.Port = p.port
	}
}
