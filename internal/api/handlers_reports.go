// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
)

// ReportRange returns the records of a dated collection whose day falls in
// [start, end], oldest first.
func (h *Handler) ReportRange(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	recs, err := h.reports.QueryRange(r.Context(), c, chi.URLParam(r, "start"), chi.URLParam(r, "end"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, r, recs, len(recs))
}

// ReportItems flattens a line-item field across the matching records.
func (h *Handler) ReportItems(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	items, err := h.reports.QueryItems(r.Context(), c,
		chi.URLParam(r, "start"), chi.URLParam(r, "end"), chi.URLParam(r, "field"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondList(w, r, items, len(items))
}

// ReportTotals returns income and expense sums for the window.
func (h *Handler) ReportTotals(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	summary, err := h.reports.Totals(r.Context(), c, chi.URLParam(r, "start"), chi.URLParam(r, "end"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, summary)
}

// ReportPending sums office expenses booked under the pending category.
func (h *Handler) ReportPending(w http.ResponseWriter, r *http.Request) {
	summary, err := h.reports.PendingTotal(r.Context(), chi.URLParam(r, "start"), chi.URLParam(r, "end"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, summary)
}
