// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/innledger/internal/api"
	"github.com/tomtom215/innledger/internal/auth"
	"github.com/tomtom215/innledger/internal/backup"
	"github.com/tomtom215/innledger/internal/config"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/mail"
	"github.com/tomtom215/innledger/internal/models"
	"github.com/tomtom215/innledger/internal/records"
	"github.com/tomtom215/innledger/internal/report"
	"github.com/tomtom215/innledger/internal/store"
	"github.com/tomtom215/innledger/internal/supervisor"
	"github.com/tomtom215/innledger/internal/supervisor/services"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cfg, err := config.Load()
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("version", version).
		Str("db_path", cfg.Database.Path).
		Str("auth_mode", cfg.Security.AuthMode).
		Str("report_timezone", cfg.Reporting.Timezone).
		Bool("backup_enabled", cfg.Backup.Enabled).
		Msg("Starting Innledger")

	if cfg.ShouldWarnAboutCORS() {
		logging.Warn().Msg("CORS allows any origin; set CORS_ORIGINS in production")
	}

	st, err := store.Open(store.Config{
		Path:       cfg.Database.Path,
		InMemory:   cfg.Database.InMemory,
		SyncWrites: cfg.Database.SyncWrites,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to open record store")
	}
	defer func() {
		if err := st.Close(); err != nil {
			logging.Error().Err(err).Msg("Error closing record store")
		}
	}()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reportLoc := cfg.ReportLocation()
	recordService := records.NewService(st, reportLoc)
	if cfg.Security.AuthMode == auth.ModeJWT {
		if _, err := recordService.EnsureAdmin(ctx, cfg.Security.AdminUsername, cfg.Security.AdminPassword); err != nil {
			logging.Error().Err(err).Msg("Failed to create bootstrap admin")
		}
	}
	aggregator := report.New(st, reportLoc, cfg.Reporting.PendingCategory)

	jwtManager, authMiddleware := initAuth(cfg)

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger(), supervisor.TreeConfig{
		FailureThreshold: 5,
		FailureBackoff:   15 * time.Second,
		ShutdownTimeout:  10 * time.Second,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	tree.AddDataService(services.NewStoreGCService(st, 10*time.Minute, 0.5))

	deps := api.HandlerDeps{
		Records: recordService,
		Reports: aggregator,
		Store:   st,
		Version: version,
	}
	if jwtManager != nil {
		deps.Tokens = jwtManager
	}

	if cfg.Backup.Enabled {
		pipeline, scheduler, err := initBackup(cfg, st)
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to initialize backup pipeline")
		}
		deps.Backup = pipeline
		tree.AddJobsService(services.NewBackupSchedulerService(scheduler))
	} else {
		logging.Warn().Msg("Backup pipeline disabled (BACKUP_ENABLED=false)")
	}

	router := api.NewRouter(
		api.NewHandler(deps),
		api.NewChiMiddleware(api.ChiMiddlewareConfigFromSecurity(&cfg.Security)),
		authMiddleware,
	)

	server := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           router.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       cfg.Server.Timeout,
		WriteTimeout:      writeTimeout(cfg),
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, 10*time.Second))
	logging.Info().Str("addr", server.Addr).Msg("HTTP server service added")

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	errCh := tree.ServeBackground(ctx)
	for err := range errCh {
		if err != nil && !errors.Is(err, context.Canceled) {
			logging.Error().Err(err).Msg("Supervisor tree error")
		}
	}

	unstopped, _ := tree.UnstoppedServiceReport() //nolint:errcheck // report only valid after stop
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Innledger stopped")
}

// initAuth returns the JWT manager (nil when auth is off) and the middleware.
func initAuth(cfg *config.Config) (*auth.JWTManager, *auth.Middleware) {
	if cfg.Security.AuthMode == auth.ModeNone {
		logging.Warn().Msg("Authentication is DISABLED (AUTH_MODE=none); every endpoint is public")
		return nil, api.NewAuthMiddleware(nil, auth.ModeNone)
	}

	jwtManager, err := auth.NewJWTManager(&cfg.Security)
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to initialize JWT manager")
	}
	logging.Info().Dur("session_timeout", cfg.Security.SessionTimeout).Msg("JWT authentication enabled")
	return jwtManager, api.NewAuthMiddleware(jwtManager, auth.ModeJWT)
}

// initBackup wires exporter, dispatcher, history and scheduler.
func initBackup(cfg *config.Config, st *store.Store) (*backup.Pipeline, *backup.Scheduler, error) {
	history, err := backup.OpenHistory(cfg.Backup.HistoryPath, cfg.Backup.HistoryLimit)
	if err != nil {
		return nil, nil, fmt.Errorf("open backup history: %w", err)
	}

	exporter := &backup.Exporter{
		WorkDir:          cfg.Backup.WorkDir,
		ArchivePath:      cfg.Backup.ArchivePath,
		CompressionLevel: cfg.Backup.CompressionLevel,
	}
	pipeline := backup.NewPipeline(
		exporter,
		backup.Descriptors(st, models.All),
		mail.NewDispatcher(cfg.Mail),
		history,
	)
	pipeline.Timeout = cfg.Backup.RunTimeout

	scheduler, err := backup.NewScheduler(cfg.Backup.Schedule, cfg.BackupLocation(), pipeline)
	if err != nil {
		return nil, nil, fmt.Errorf("create backup scheduler: %w", err)
	}
	pipeline.SetNextRun(scheduler.Next)

	logging.Info().
		Str("schedule", cfg.Backup.Schedule).
		Str("timezone", cfg.BackupLocation().String()).
		Str("archive", cfg.Backup.ArchivePath).
		Str("mail_host", cfg.Mail.Host).
		Msg("Backup pipeline configured")
	return pipeline, scheduler, nil
}

// writeTimeout leaves room for a synchronous backup send to finish.
func writeTimeout(cfg *config.Config) time.Duration {
	t := cfg.Server.Timeout
	if cfg.Backup.Enabled && cfg.Backup.RunTimeout+30*time.Second > t {
		t = cfg.Backup.RunTimeout + 30*time.Second
	}
	return t
}
