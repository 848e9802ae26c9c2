// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/innledger/internal/calendar"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/models"
	"github.com/tomtom215/innledger/internal/records"
	"github.com/tomtom215/innledger/internal/report"
	"github.com/tomtom215/innledger/internal/store"
	"github.com/tomtom215/innledger/internal/validation"
)

// Error codes returned in APIError.Code.
const (
	ErrCodeInvalidDate       = "INVALID_DATE_FORMAT"
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeInvalidBody       = "INVALID_BODY"
	ErrCodeUnknownCollection = "UNKNOWN_COLLECTION"
	ErrCodeNotDated          = "COLLECTION_NOT_DATED"
	ErrCodeUnknownField      = "UNKNOWN_FIELD"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeUnauthorized      = "UNAUTHORIZED"
	ErrCodeForbidden         = "FORBIDDEN"
	ErrCodeRateLimited       = "RATE_LIMITED"
	ErrCodeTimeout           = "TIMEOUT"
	ErrCodeInternal          = "INTERNAL_ERROR"
	ErrCodeBackupDisabled    = "BACKUP_DISABLED"
	ErrCodeExportFailed      = "EXPORT_FAILED"
	ErrCodeDeliveryFailed    = "DELIVERY_FAILED"
	ErrCodeNotReady          = "NOT_READY"
)

// Response is the envelope of every API response.
type Response struct {
	Success bool        `json:"success"`
	Message string      `json:"message,omitempty"`
	Data    interface{} `json:"data,omitempty"`
	Error   *APIError   `json:"error,omitempty"`
	Meta    *Meta       `json:"meta,omitempty"`
}

// APIError is the failure detail of an envelope.
type APIError struct {
	Code    string                 `json:"code"`
	Detail  string                 `json:"detail,omitempty"`
	Details map[string]interface{} `json:"details,omitempty"`
}

// Meta carries tracing and list metadata.
type Meta struct {
	RequestID string    `json:"request_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
	Count     *int      `json:"count,omitempty"`
}

func newMeta(r *http.Request) *Meta {
	return &Meta{
		RequestID: logging.RequestIDFromContext(r.Context()),
		Timestamp: time.Now().UTC(),
	}
}

// sanitizeLogValue escapes control characters so user input cannot forge log lines.
func sanitizeLogValue(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		if r < 0x20 || r == 0x7F {
			fmt.Fprintf(&b, "\\x%02x", r)
		} else {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// respondJSON writes resp with the given status.
func respondJSON(w http.ResponseWriter, status int, resp *Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		logging.Error().Err(err).Msg("Failed to marshal JSON response")
		w.WriteHeader(http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	if _, err := w.Write(data); err != nil {
		logging.Error().Err(err).Msg("Failed to write JSON response")
	}
}

// respondData writes a success envelope around data.
func respondData(w http.ResponseWriter, r *http.Request, status int, data interface{}) {
	respondJSON(w, status, &Response{Success: true, Data: data, Meta: newMeta(r)})
}

// respondList writes a success envelope with the item count in Meta.
func respondList(w http.ResponseWriter, r *http.Request, data interface{}, n int) {
	meta := newMeta(r)
	meta.Count = &n
	respondJSON(w, http.StatusOK, &Response{Success: true, Data: data, Meta: meta})
}

// respondError writes a failure envelope. err is logged, never sent.
func respondError(w http.ResponseWriter, r *http.Request, status int, code, message string, err error) {
	if err != nil {
		logging.Ctx(r.Context()).Error().
			Str("code", code).
			Str("path", sanitizeLogValue(r.URL.Path)).
			Str("error", sanitizeLogValue(err.Error())).
			Msg("API error")
	}
	respondJSON(w, status, &Response{
		Success: false,
		Message: message,
		Error:   &APIError{Code: code},
		Meta:    newMeta(r),
	})
}

// respondServiceError maps a domain error onto status, code and message.
// Client errors carry their own message; anything unrecognized is a 500
// with a generic message.
func respondServiceError(w http.ResponseWriter, r *http.Request, err error) {
	var (
		verr     *validation.RequestValidationError
		decErr   *records.DecodeError
		unknown  *models.UnknownCollectionError
		status   int
		apiError APIError
		message  string
	)

	switch {
	case errors.As(err, &verr):
		ae := verr.ToAPIError()
		status, message = http.StatusBadRequest, ae.Message
		apiError = APIError{Code: ae.Code, Details: ae.Details}
	case errors.Is(err, calendar.ErrInvalidDateFormat):
		status, message = http.StatusBadRequest, err.Error()
		apiError = APIError{Code: ErrCodeInvalidDate, Details: map[string]interface{}{"layout": "DD-MM-YYYY"}}
	case errors.As(err, &decErr):
		status, message = http.StatusBadRequest, "Request body is not valid JSON for "+string(decErr.Collection)
		apiError = APIError{Code: ErrCodeInvalidBody, Detail: decErr.Err.Error()}
	case errors.As(err, &unknown):
		status, message = http.StatusBadRequest, unknown.Error()
		apiError = APIError{Code: ErrCodeUnknownCollection}
	case errors.Is(err, records.ErrPasswordRequired):
		status, message = http.StatusBadRequest, err.Error()
		apiError = APIError{Code: ErrCodeValidation, Details: map[string]interface{}{"field": "password", "tag": "required"}}
	case errors.Is(err, report.ErrNotDated):
		status, message = http.StatusBadRequest, err.Error()
		apiError = APIError{Code: ErrCodeNotDated}
	case errors.Is(err, report.ErrUnknownField):
		status, message = http.StatusBadRequest, err.Error()
		apiError = APIError{Code: ErrCodeUnknownField}
	case errors.Is(err, store.ErrNotFound):
		status, message = http.StatusNotFound, "Record not found"
		apiError = APIError{Code: ErrCodeNotFound}
	case errors.Is(err, records.ErrInvalidCredentials):
		status, message = http.StatusUnauthorized, err.Error()
		apiError = APIError{Code: ErrCodeUnauthorized}
	case errors.Is(err, context.DeadlineExceeded):
		respondError(w, r, http.StatusGatewayTimeout, ErrCodeTimeout, "Request timed out", err)
		return
	default:
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Internal server error", err)
		return
	}

	logging.Ctx(r.Context()).Debug().
		Str("code", apiError.Code).
		Str("error", sanitizeLogValue(err.Error())).
		Msg("Request rejected")
	respondJSON(w, status, &Response{
		Success: false,
		Message: message,
		Error:   &apiError,
		Meta:    newMeta(r),
	})
}

// denyAuth renders authentication middleware rejections in the envelope.
func denyAuth(w http.ResponseWriter, r *http.Request, status int, err error) {
	code := ErrCodeUnauthorized
	if status == http.StatusForbidden {
		code = ErrCodeForbidden
	}
	respondJSON(w, status, &Response{
		Success: false,
		Message: err.Error(),
		Error:   &APIError{Code: code},
		Meta:    newMeta(r),
	})
}
