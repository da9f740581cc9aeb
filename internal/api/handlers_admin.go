// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/landspace/landspace/internal/audit"
	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/metrics"
	"github.com/landspace/landspace/internal/validation"
)

// senhaInvalida is the user-facing wrong-password message.
const senhaInvalida = "Senha inválida"

type adminLoginRequest struct {
	Password string `json:"password" validate:"required"`
}

// handleAdminLogin authenticates the bootstrap admin credential and mints
// the admin session. Rate limited on the IP tier by the router.
func (s *Server) handleAdminLogin(w http.ResponseWriter, r *http.Request) {
	var req adminLoginRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	if !s.adminCred.Verify(req.Password) {
		metrics.AuthAttempts.WithLabelValues("admin", "failure").Inc()
		s.audit.RecordRequest(r, audit.ActionAdminLoginFailed, false, senhaInvalida, nil)
		respondUnauthorized(w, r, senhaInvalida)
		return
	}

	claims, err := s.sessions.CreateAdmin(w)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("mint admin session")
		respondError(w, r, http.StatusInternalServerError, "internal error")
		return
	}

	metrics.AuthAttempts.WithLabelValues("admin", "success").Inc()
	s.audit.RecordRequest(r, audit.ActionAdminLoginSuccess, true, "", nil)
	logging.Ctx(r.Context()).Info().Str("nonce", claims.Nonce).Msg("admin login")
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleAdminLogout clears the admin cookie and revokes the session nonce.
// Allowlisted at the edge so it works even with a broken session.
func (s *Server) handleAdminLogout(w http.ResponseWriter, r *http.Request) {
	if claims, err := s.sessions.GetAdmin(r); err == nil {
		s.revokeClaims(r, claims.Nonce, claims.ExpiresAt.Time)
	}

	s.sessions.ClearAdmin(w)
	s.audit.RecordRequest(r, audit.ActionAdminLogout, true, "", nil)
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleAdminSession is the session introspection endpoint.
func (s *Server) handleAdminSession(w http.ResponseWriter, r *http.Request) {
	claims, err := s.guard.RequireAdmin(r)
	if err != nil {
		respondUnauthorized(w, r, "")
		return
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"authenticated": true,
		"expiresAt":     claims.ExpiresAt.Time,
	})
}

// handleAdminCleanup runs the audit retention job.
func (s *Server) handleAdminCleanup(w http.ResponseWriter, r *http.Request) {
	if _, err := s.guard.RequireAdmin(r); err != nil {
		respondUnauthorized(w, r, "")
		return
	}

	cutoff := time.Now().AddDate(0, 0, -s.cfg.Audit.RetentionDays)
	removed, err := s.auditStore.DeleteOlderThan(r.Context(), cutoff)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("audit retention cleanup")
		respondError(w, r, http.StatusInternalServerError, "cleanup failed")
		return
	}

	s.audit.RecordRequest(r, audit.ActionCleanupExecuted, true, "", map[string]interface{}{
		"removed": removed,
		"cutoff":  cutoff.Format(time.RFC3339),
	})
	respondJSON(w, r, http.StatusOK, map[string]interface{}{"removed": removed})
}

type revokeSessionRequest struct {
	Nonce string `json:"nonce" validate:"required"`
}

// handleRevokeSession denylists a session nonce, immediately invalidating
// the matching token for every guarded route.
func (s *Server) handleRevokeSession(w http.ResponseWriter, r *http.Request) {
	if _, err := s.guard.RequireAdmin(r); err != nil {
		respondUnauthorized(w, r, "")
		return
	}

	var req revokeSessionRequest
	if !decodeBody(w, r, &req) {
		return
	}
	if err := validation.ValidateStruct(&req); err != nil {
		respondError(w, r, http.StatusBadRequest, err.Error())
		return
	}

	// The revoked token's expiry is unknown here; cover the longest
	// possible remaining lifetime.
	ttl := s.cfg.Session.AdminTTL
	if s.cfg.Session.PortalTTL > ttl {
		ttl = s.cfg.Session.PortalTTL
	}
	if err := s.revocations.Revoke(r.Context(), req.Nonce, ttl); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("revoke session nonce")
		respondError(w, r, http.StatusInternalServerError, "revocation failed")
		return
	}

	s.audit.RecordRequest(r, audit.ActionSessionRevoked, true, "", map[string]interface{}{
		"nonce": req.Nonce,
	})
	respondJSON(w, r, http.StatusOK, map[string]bool{"success": true})
}

// handleAdminAudit queries the audit trail with optional filters:
// ?action=ADMIN_LOGIN_FAILED&success=false&limit=50&offset=0
func (s *Server) handleAdminAudit(w http.ResponseWriter, r *http.Request) {
	if _, err := s.guard.RequireAdmin(r); err != nil {
		respondUnauthorized(w, r, "")
		return
	}

	filter, ok := parseAuditFilter(w, r)
	if !ok {
		return
	}

	entries, err := s.auditStore.Query(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("query audit entries")
		respondError(w, r, http.StatusInternalServerError, "query failed")
		return
	}
	total, err := s.auditStore.Count(r.Context(), filter)
	if err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("count audit entries")
		respondError(w, r, http.StatusInternalServerError, "query failed")
		return
	}

	if entries == nil {
		entries = []*audit.Entry{}
	}
	respondJSON(w, r, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"total":   total,
	})
}

// parseAuditFilter builds a QueryFilter from query parameters. Returns
// false after writing a 400 for invalid input.
func parseAuditFilter(w http.ResponseWriter, r *http.Request) (audit.QueryFilter, bool) {
	var filter audit.QueryFilter
	q := r.URL.Query()

	for _, raw := range q["action"] {
		action := audit.Action(raw)
		if !action.Valid() {
			respondError(w, r, http.StatusBadRequest, "unknown audit action")
			return filter, false
		}
		filter.Actions = append(filter.Actions, action)
	}

	if raw := q.Get("success"); raw != "" {
		success, err := strconv.ParseBool(raw)
		if err != nil {
			respondError(w, r, http.StatusBadRequest, "success must be a boolean")
			return filter, false
		}
		filter.Success = &success
	}

	if raw := q.Get("limit"); raw != "" {
		limit, err := strconv.Atoi(raw)
		if err != nil || limit < 1 || limit > 1000 {
			respondError(w, r, http.StatusBadRequest, "limit must be between 1 and 1000")
			return filter, false
		}
		filter.Limit = limit
	}
	if raw := q.Get("offset"); raw != "" {
		offset, err := strconv.Atoi(raw)
		if err != nil || offset < 0 {
			respondError(w, r, http.StatusBadRequest, "offset must be non-negative")
			return filter, false
		}
		filter.Offset = offset
	}

	return filter, true
}

// revokeClaims denylists a nonce for the token's remaining lifetime.
func (s *Server) revokeClaims(r *http.Request, nonce string, expiresAt time.Time) {
	if s.revocations == nil {
		return
	}
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return
	}
	if err := s.revocations.Revoke(r.Context(), nonce, ttl); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("revoke nonce on logout")
	}
}
