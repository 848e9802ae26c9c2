// Innledger - Guest House, Restaurant and Office Bookkeeping
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/innledger

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/tomtom215/innledger/internal/auth"
	"github.com/tomtom215/innledger/internal/middleware"
)

// Router wires handlers and middleware into a chi mux.
type Router struct {
	handler       *Handler
	chiMiddleware *ChiMiddleware
	auth          *auth.Middleware
}

// NewRouter creates a router. A nil authMW leaves the data routes open.
func NewRouter(handler *Handler, chiMW *ChiMiddleware, authMW *auth.Middleware) *Router {
	if chiMW == nil {
		chiMW = NewChiMiddleware(nil)
	}
	return &Router{handler: handler, chiMiddleware: chiMW, auth: authMW}
}

// NewAuthMiddleware creates auth middleware that rejects in the API envelope.
func NewAuthMiddleware(jwt *auth.JWTManager, mode string) *auth.Middleware {
	return auth.NewMiddleware(jwt, mode, denyAuth)
}

// Handler builds the route tree.
func (router *Router) Handler() http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDWithLogging())
	r.Use(chimiddleware.RealIP)
	r.Use(chimiddleware.Recoverer)
	r.Use(router.chiMiddleware.CORS())

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Route not found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		respondError(w, r, http.StatusMethodNotAllowed, "METHOD_NOT_ALLOWED", "Method not allowed", nil)
	})

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1/health", func(r chi.Router) {
		r.Use(router.chiMiddleware.RateLimitHealth())
		r.Use(APISecurityHeaders())
		r.Get("/live", router.handler.HealthLive)
		r.Get("/ready", router.handler.HealthReady)
	})

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Use(APISecurityHeaders())
		r.Use(middleware.PrometheusMetrics)
		r.With(router.chiMiddleware.RateLimitLogin()).Post("/login", router.handler.Login)
	})

	r.Route("/api/v1/records/{collection}", func(r chi.Router) {
		router.protected(r)
		r.Get("/", router.handler.ListRecords)
		r.Post("/", router.handler.CreateRecord)
		r.Get("/{id}", router.handler.GetRecord)
		r.Put("/{id}", router.handler.UpdateRecord)
		r.Delete("/{id}", router.handler.DeleteRecord)
	})

	r.Route("/api/v1/reports", func(r chi.Router) {
		router.protected(r)
		r.Get("/pending/{start}/{end}", router.handler.ReportPending)
		r.Get("/{collection}/{start}/{end}", router.handler.ReportRange)
		r.Get("/{collection}/{start}/{end}/items/{field}", router.handler.ReportItems)
		r.Get("/{collection}/{start}/{end}/totals", router.handler.ReportTotals)
	})

	r.Route("/api/v1/backup", func(r chi.Router) {
		router.protected(r)
		r.Get("/send", router.handler.BackupSend)
		r.Get("/history", router.handler.BackupHistory)
		r.Get("/stats", router.handler.BackupStats)
	})

	return r
}

// protected applies the stack shared by every authenticated group.
func (router *Router) protected(r chi.Router) {
	r.Use(router.chiMiddleware.RateLimit())
	r.Use(APISecurityHeaders())
	r.Use(middleware.PrometheusMetrics)
	r.Use(middleware.Compression())
	if router.auth != nil {
		r.Use(router.auth.Authenticate)
	}
}
