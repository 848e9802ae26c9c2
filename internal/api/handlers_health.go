// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"context"
	"net/http"
	"time"
)

// HealthStatus is the payload of the health endpoints.
type HealthStatus struct {
	Status        string  `json:"status"`
	Version       string  `json:"version,omitempty"`
	UptimeSeconds float64 `json:"uptime_seconds"`
	Store         string  `json:"store,omitempty"`
}

// HealthLive reports that the process is serving requests.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondData(w, r, http.StatusOK, &HealthStatus{
		Status:        "alive",
		Version:       h.version,
		UptimeSeconds: time.Since(h.started).Seconds(),
	})
}

// HealthReady reports whether the record store answers.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	status := &HealthStatus{
		Status:        "ready",
		Version:       h.version,
		UptimeSeconds: time.Since(h.started).Seconds(),
		Store:         "ok",
	}
	if h.store == nil || h.store.Ping(ctx) != nil {
		status.Status, status.Store = "not_ready", "unavailable"
		respondJSON(w, http.StatusServiceUnavailable, &Response{
			Success: false,
			Message: "Record store unavailable",
			Data:    status,
			Error:   &APIError{Code: ErrCodeNotReady},
			Meta:    newMeta(r),
		})
		return
	}
	respondData(w, r, http.StatusOK, status)
}
