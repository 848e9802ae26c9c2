// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"net/http"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/innledger/internal/auth"
	"github.com/tomtom215/innledger/internal/logging"
	"github.com/tomtom215/innledger/internal/validation"
)

// LoginRequest is the body of POST /auth/login.
type LoginRequest struct {
	Username string `json:"username" validate:"required,max=64"`
	Password string `json:"password" validate:"required,max=256"`
}

// LoginResponse carries the issued token.
type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
}

// Login exchanges admin credentials for a JWT. The token is returned in the
// body and set as an HttpOnly cookie.
func (h *Handler) Login(w http.ResponseWriter, r *http.Request) {
	if h.tokens == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Authentication is disabled", nil)
		return
	}

	var req LoginRequest
	if err := json.NewDecoder(http.MaxBytesReader(w, r.Body, 4096)).Decode(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, ErrCodeInvalidBody, "Request body must be JSON with username and password", nil)
		return
	}
	if verr := validation.ValidateStruct(&req); verr != nil {
		respondServiceError(w, r, verr)
		return
	}

	admin, err := h.records.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		logging.Ctx(r.Context()).Warn().
			Str("username", sanitizeLogValue(req.Username)).
			Msg("Login failed")
		respondServiceError(w, r, err)
		return
	}

	token, expires, err := h.tokens.GenerateToken(admin.Username, auth.RoleAdmin)
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to issue token", err)
		return
	}

	http.SetCookie(w, &http.Cookie{
		Name:     "token",
		Value:    token,
		Path:     "/",
		Expires:  expires,
		HttpOnly: true,
		Secure:   r.TLS != nil || r.Header.Get("X-Forwarded-Proto") == "https",
		SameSite: http.SameSiteStrictMode,
	})
	logging.Ctx(r.Context()).Info().Str("username", admin.Username).Msg("Admin logged in")
	respondData(w, r, http.StatusOK, &LoginResponse{
		Token:     token,
		ExpiresAt: expires,
		Username:  admin.Username,
		Role:      auth.RoleAdmin,
	})
}
