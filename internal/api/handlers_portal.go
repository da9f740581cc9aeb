// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/landspace/landspace/internal/audit"
	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
	"github.com/landspace/landspace/internal/ratelimit"
	"github.com/landspace/landspace/internal/validation"
)

// codigoInvalido is the user-facing wrong-access-code message.
const codigoInvalido = "Código de acesso inválido"

type portalLoginRequest struct {
	Protocol   string `json:"protocol" validate:"required,min=3,max=64"`
	AccessCode string `json:"accessCode" validate:"required"`
}

// handlePortalLogin authenticates a client against the portal access code
// and mints a session bound to the requested protocol. Rate limited inside
// the handler because the identity tier keys on the protocol from the body.
func (s *Server) handlePortalLogin(w http.ResponseWriter, r *http.Request) {
	var req portalLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	result, err := s.limiter.Check(r.Context(), "portal-login", ratelimit.ClientIP(r), req.Protocol)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("portal login rate limit check")
	} else if !result.Allowed {
		metrics.RateLimitDenials.WithLabelValues("portal-login").Inc()
		ratelimit.WriteDenied(w, r, result)
		return
	}

	if !s.portalCred.Verify(req.AccessCode) {
		metrics.AuthAttempts.WithLabelValues("portal", "failure").Inc()
		s.audit.RecordRequest(r, audit.ActionPortalLoginFailed, false, codigoInvalido, map[string]interface{}{
			"protocol": req.Protocol,
		})
		respondUnauthorized(w, r, codigoInvalido)
		return
	}

	claims, err := s.sessions.CreatePortal(w, req.Protocol)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("mint portal session")
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AuthAttempts.WithLabelValues("portal", "success").Inc()
	s.audit.RecordRequest(r, audit.ActionPortalLoginSuccess, true, "", map[string]interface{}{
		"protocol": req.Protocol,
	})
	logging.Ctx(r.Context()).Info().
		Str("protocol", req.Protocol).
		Str("nonce", claims.Nonce).
		Msg("portal login")
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"success":  true,
		"protocol": req.Protocol,
	})
}

// handlePortalLogout clears the portal cookie and revokes the nonce.
func (s *Server) handlePortalLogout(w http.ResponseWriter, r *http.Request) {
	var protocol string
	if claims, err := s.sessions.ReadPortal(r); err == nil {
		protocol = claims.Protocol
		s.revokeClaims(r, claims.Nonce, claims.ExpiresAt.Time)
	}

	s.sessions.ClearPortal(w)

	metadata := map[string]interface{}{}
	if protocol != "" {
		metadata["protocol"] = protocol
	}
	s.audit.RecordRequest(r, audit.ActionPortalLogout, true, "", metadata)
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handlePortalProject serves the guarded project view for one protocol.
// Any session problem, including a protocol mismatch, is a plain 401.
func (s *Server) handlePortalProject(w http.ResponseWriter, r *http.Request) {
	protocol := chi.URLParam(r, "protocol")

	claims := s.guard.PortalSession(r, protocol)
	if claims == nil {
		respondUnauthorized(w, r, "")
		return
	}

	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"protocol":  claims.Protocol,
		"expiresAt": claims.ExpiresAt.Time,
	})
}
