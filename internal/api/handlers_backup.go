// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"context"
	"errors"
	"net/http"

	"github.com/tomtom215/innledger/internal/backup"
	"github.com/tomtom215/innledger/internal/mail"
)

// BackupSend runs export and delivery synchronously and reports the outcome.
// The run is detached from client cancellation so a dropped connection does
// not leave a half-written work directory; the pipeline timeout still applies.
func (h *Handler) BackupSend(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeBackupDisabled, "Backup is disabled", nil)
		return
	}

	run, err := h.backup.Run(context.WithoutCancel(r.Context()), backup.TriggerManual)
	if err == nil {
		respondJSON(w, http.StatusOK, &Response{
			Success: true,
			Message: "Backup exported and sent",
			Data:    run,
			Meta:    newMeta(r),
		})
		return
	}

	status, code, message := http.StatusInternalServerError, ErrCodeExportFailed, "Backup export failed"
	if run != nil && run.Status == backup.StatusDeliveryFailed {
		status, code, message = http.StatusBadGateway, ErrCodeDeliveryFailed, "Backup exported but delivery failed"
	}
	apiErr := &APIError{Code: code, Detail: err.Error()}
	var derr *mail.DeliveryError
	if errors.As(err, &derr) {
		apiErr.Details = map[string]interface{}{"delivery_code": derr.Code}
	}
	respondJSON(w, status, &Response{
		Success: false,
		Message: message,
		Data:    run,
		Error:   apiErr,
		Meta:    newMeta(r),
	})
}

// BackupHistory lists retained runs, newest first.
func (h *Handler) BackupHistory(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeBackupDisabled, "Backup is disabled", nil)
		return
	}
	runs := h.backup.History()
	respondList(w, r, runs, len(runs))
}

// BackupStats summarizes the run history.
func (h *Handler) BackupStats(w http.ResponseWriter, r *http.Request) {
	if h.backup == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeBackupDisabled, "Backup is disabled", nil)
		return
	}
	respondData(w, r, http.StatusOK, h.backup.Stats())
}
