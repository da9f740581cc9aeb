// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httprate"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/landspace/landspace/internal/middleware"
	"github.com/landspace/landspace/internal/ratelimit"
)

// Router assembles the full HTTP surface. The gatekeeper runs in the
// global middleware chain, ahead of route matching, so the /api/admin
// prefix is filtered at the edge of the server.
func (s *Server) Router() http.Handler {
	r := chi.NewRouter()

	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(chimiddleware.Recoverer)
	r.Use(middleware.Metrics)

	if len(s.cfg.Server.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   s.cfg.Server.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "x-csrf-token", "x-request-id"},
			AllowCredentials: true,
			MaxAge:           300,
		}))
	}

	// Coarse per-IP throttle over the whole surface; the dual-tier
	// limiter below is the policy layer for the sensitive endpoints.
	if s.cfg.Server.GlobalRateLimit > 0 {
		r.Use(httprate.LimitByIP(s.cfg.Server.GlobalRateLimit, time.Minute))
	}

	r.Use(s.gate.Middleware)

	r.Route("/api", func(r chi.Router) {
		r.Route("/admin", func(r chi.Router) {
			r.With(ratelimit.Middleware(s.limiter, "login", nil)).
				Post("/login", s.handleAdminLogin)
			r.Post("/logout", s.handleAdminLogout)
			r.Get("/session", s.handleAdminSession)
			r.Get("/audit", s.handleAdminAudit)
			r.With(s.csrf.Middleware).Post("/cleanup", s.handleAdminCleanup)
			r.With(s.csrf.Middleware).Post("/sessions/revoke", s.handleRevokeSession)
		})

		r.Route("/portal", func(r chi.Router) {
			r.Post("/login", s.handlePortalLogin)
			r.Post("/logout", s.handlePortalLogout)
			r.Get("/project/{protocol}", s.handlePortalProject)
		})

		r.Get("/csrf", s.handleCSRF)
		r.Post("/contato", s.handleContato)
		r.Get("/draft/{slug}", s.handleDraft)

		r.Route("/v1/health", func(r chi.Router) {
			r.Get("/live", s.handleHealthLive)
			r.Get("/ready", s.handleHealthReady)
		})
	})

	r.Handle("/metrics", promhttp.Handler())

	return r
}
