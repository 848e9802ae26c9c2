// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"context"
	"time"

	"github.com/tomtom215/innledger/internal/backup"
	"github.com/tomtom215/innledger/internal/models"
	"github.com/tomtom215/innledger/internal/report"
)

// RecordService is the record CRUD surface used by the handlers.
type RecordService interface {
	Decode(c models.Collection, body []byte) (models.Record, error)
	Create(ctx context.Context, rec models.Record) error
	Update(ctx context.Context, id string, rec models.Record) error
	Get(ctx context.Context, c models.Collection, id string) (models.Record, error)
	List(ctx context.Context, c models.Collection) ([]models.Record, error)
	Delete(ctx context.Context, c models.Collection, id string) error
	Authenticate(ctx context.Context, username, password string) (*models.Admin, error)
}

// Reporter answers date-range report queries.
type Reporter interface {
	QueryRange(ctx context.Context, c models.Collection, startDay, endDay string) ([]models.Dated, error)
	QueryItems(ctx context.Context, c models.Collection, startDay, endDay, field string) ([]models.LineItem, error)
	Totals(ctx context.Context, c models.Collection, startDay, endDay string) (*report.Summary, error)
	PendingTotal(ctx context.Context, startDay, endDay string) (*report.PendingSummary, error)
}

// BackupRunner runs the backup pipeline on demand.
type BackupRunner interface {
	Run(ctx context.Context, trigger backup.Trigger) (*backup.Run, error)
	History() []*backup.Run
	Stats() backup.Stats
}

// TokenIssuer signs session tokens after a successful login.
type TokenIssuer interface {
	GenerateToken(username, role string) (string, time.Time, error)
}

// Pinger reports store readiness.
type Pinger interface {
	Ping(ctx context.Context) error
}

// Handler holds the dependencies of all API handlers.
type Handler struct {
	records  RecordService
	reports  Reporter
	backup   BackupRunner
	tokens   TokenIssuer
	store    Pinger
	version  string
	started  time.Time
	maxBytes int64
}

// HandlerDeps groups the handler dependencies. Backup may be nil when the
// pipeline is disabled; Tokens may be nil when authentication is off.
type HandlerDeps struct {
	Records RecordService
	Reports Reporter
	Backup  BackupRunner
	Tokens  TokenIssuer
	Store   Pinger
	Version string
}

// defaultMaxBodyBytes caps record request bodies.
const defaultMaxBodyBytes = 1 << 20

// NewHandler creates the handler set.
func NewHandler(deps HandlerDeps) *Handler {
	return &Handler{
		records:  deps.Records,
		reports:  deps.Reports,
		backup:   deps.Backup,
		tokens:   deps.Tokens,
		store:    deps.Store,
		version:  deps.Version,
		started:  time.Now(),
		maxBytes: defaultMaxBodyBytes,
	}
}
