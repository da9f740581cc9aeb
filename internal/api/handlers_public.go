// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"crypto/subtle"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/landspace/landspace/internal/audit"
	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
	"github.com/landspace/landspace/internal/ratelimit"
	"github.com/landspace/landspace/internal/validation"
)

// handleCSRF issues a fresh double-submit token.
func (s *Server) handleCSRF(w http.ResponseWriter, r *http.Request) {
	token, err := s.csrf.Issue(w)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("issue csrf token")
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"csrfToken": token})
}

type contactRequest struct {
	Name    string `json:"name" validate:"required,min=2,max=120"`
	Email   string `json:"email" validate:"required,email"`
	Phone   string `json:"phone" validate:"omitempty,max=40"`
	Message string `json:"message" validate:"required,max=5000"`
}

// handleContato accepts the public consultancy contact form. Delivery is a
// collaborator concern; this endpoint validates, rate limits on the email
// identity tier, and audits the submission.
func (s *Server) handleContato(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))
	result, err := s.limiter.Check(r.Context(), "contato", ratelimit.ClientIP(r), email)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("contact rate limit check")
	} else if !result.Allowed {
		metrics.RateLimitDenials.WithLabelValues("contato").Inc()
		ratelimit.WriteDenied(w, r, result)
		return
	}

	s.audit.RecordRequest(r, audit.ActionContactSubmitted, true, "", map[string]interface{}{
		"email": email,
		"name":  req.Name,
	})
	logging.Ctx(r.Context()).Info().Str("email", email).Msg("contact form submitted")
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleDraft validates a preview link for unpublished content. The secret
// travels as a query parameter, mirroring how the CMS builds draft URLs.
func (s *Server) handleDraft(w http.ResponseWriter, r *http.Request) {
	secret := r.URL.Query().Get("secret")
	configured := s.cfg.Draft.Secret

	if configured == "" || secret == "" ||
		subtle.ConstantTimeCompare([]byte(secret), []byte(configured)) != 1 {
		respondUnauthorized(w, r, "")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"slug":    chi.URLParam(r, "slug"),
		"preview": true,
	})
}

// handleHealthLive is the liveness probe.
func (s *Server) handleHealthLive(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}

// handleHealthReady is the readiness probe: the audit store must answer.
func (s *Server) handleHealthReady(w http.ResponseWriter, r *http.Request) {
	if _, err := s.auditStore.Count(r.Context(), audit.QueryFilter{Limit: 1}); err != nil {
		respondJSON(w, r, http.StatusServiceUnavailable, map[string]string{"status": "degraded"})
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]string{"status": "ok"})
}
