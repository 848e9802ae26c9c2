// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package auth

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/tomtom215/innledger/internal/logging"
)

// Auth modes.
const (
	ModeNone = "none"
	ModeJWT  = "jwt"
)

type contextKey string

// ClaimsContextKey holds *Claims on authenticated requests.
const ClaimsContextKey contextKey = "claims"

var (
	errMissingToken = errors.New("unauthorized: missing token")
	errBadHeader    = errors.New("unauthorized: invalid authorization header")
	errBadToken     = errors.New("unauthorized: invalid token")
)

// DenyFunc writes the response for a rejected request.
type DenyFunc func(w http.ResponseWriter, r *http.Request, status int, err error)

// Middleware enforces bearer-token authentication.
type Middleware struct {
	jwt  *JWTManager
	mode string
	deny DenyFunc
}

// NewMiddleware creates the middleware. jwt may be nil in mode "none".
// deny defaults to http.Error.
func NewMiddleware(jwt *JWTManager, mode string, deny DenyFunc) *Middleware {
	if deny == nil {
		deny = func(w http.ResponseWriter, _ *http.Request, status int, err error) {
			http.Error(w, err.Error(), status)
		}
	}
	return &Middleware{jwt: jwt, mode: mode, deny: deny}
}

// Authenticate rejects requests without a valid admin token.
func (m *Middleware) Authenticate(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if m.mode == ModeNone {
			claims := &Claims{Username: "anonymous", Role: RoleAdmin}
			next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
			return
		}

		token, err := extractToken(r)
		if err != nil {
			m.deny(w, r, http.StatusUnauthorized, err)
			return
		}
		claims, err := m.jwt.ValidateToken(token)
		if err != nil {
			logging.Ctx(r.Context()).Warn().Err(err).Str("path", r.URL.Path).Msg("Token validation failed")
			m.deny(w, r, http.StatusUnauthorized, errBadToken)
			return
		}
		if claims.Role != RoleAdmin {
			m.deny(w, r, http.StatusForbidden, errors.New("forbidden: insufficient permissions"))
			return
		}

		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ClaimsContextKey, claims)))
	})
}

// extractToken reads the bearer token from the Authorization header, or
// the "token" cookie when there is no header.
func extractToken(r *http.Request) (string, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		cookie, err := r.Cookie("token")
		if err != nil || cookie.Value == "" {
			return "", errMissingToken
		}
		return cookie.Value, nil
	}

	scheme, token, ok := strings.Cut(header, " ")
	if !ok || !strings.EqualFold(scheme, "Bearer") || token == "" {
		return "", errBadHeader
	}
	return token, nil
}

// ClaimsFromContext returns the claims stored by Authenticate.
func ClaimsFromContext(ctx context.Context) (*Claims, bool) {
	c, ok := ctx.Value(ClaimsContextKey).(*Claims)
	return c, ok
}
