// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"errors"
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/models"
)

// collectionParam resolves the {collection} URL parameter.
func collectionParam(r *http.Request) (models.Collection, error) {
	return models.ParseCollection(chi.URLParam(r, "collection"))
}

// sanitize strips password material from outgoing records.
func sanitize(rec models.Record) models.Record {
	if c, ok := rec.(models.Credentialed); ok {
		c.Sanitize()
	}
	return rec
}

// readBody reads a capped request body.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, h.maxBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeInvalidBody, "Request body too large", nil)
			return nil, false
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidBody, "Failed to read request body", err)
		return nil, false
	}
	return body, true
}

// ListRecords returns every record of a collection.
func (h *Handler) ListRecords(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	recs, err := h.records.List(r.Context(), c)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	for _, rec := range recs {
		sanitize(rec)
	}
	respondList(w, r, recs, len(recs))
}

// GetRecord returns one record.
func (h *Handler) GetRecord(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	rec, err := h.records.Get(r.Context(), c, chi.URLParam(r, "id"))
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, sanitize(rec))
}

// CreateRecord validates and stores a new record.
func (h *Handler) CreateRecord(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Decode(c, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.records.Create(r.Context(), rec); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("collection", string(c)).
		Str("id", rec.GetID()).
		Msg("Record created")
	respondData(w, r, http.StatusCreated, sanitize(rec))
}

// UpdateRecord replaces an existing record.
func (h *Handler) UpdateRecord(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	body, ok := h.readBody(w, r)
	if !ok {
		return
	}
	rec, err := h.records.Decode(c, body)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	if err := h.records.Update(r.Context(), chi.URLParam(r, "id"), rec); err != nil {
		respondServiceError(w, r, err)
		return
	}
	respondData(w, r, http.StatusOK, sanitize(rec))
}

// DeleteRecord removes a record.
func (h *Handler) DeleteRecord(w http.ResponseWriter, r *http.Request) {
	c, err := collectionParam(r)
	if err != nil {
		respondServiceError(w, r, err)
		return
	}
	id := chi.URLParam(r, "id")
	if err := h.records.Delete(r.Context(), c, id); err != nil {
		respondServiceError(w, r, err)
		return
	}
	logging.Ctx(r.Context()).Info().
		Str("collection", string(c)).
		Str("id", sanitizeLogValue(id)).
		Msg("Record deleted")
	respondJSON(w, http.StatusOK, &Response{Success: true, Message: "Record deleted", Meta: newMeta(r)})
}
