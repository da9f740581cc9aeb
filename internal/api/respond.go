// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package api wires the chi router, middleware stack, and HTTP handlers
// for the LandSpace security core.
package api

import (
	"net/http"

	"github.com/goccy/go-json"

	"github.com/landspace/landspace/internal/logging"
)

// errorResponse is the canonical JSON error envelope.
type errorResponse struct {
	Error     string `json:"error"`
	RequestID string `json:"requestId"`
}

// respondJSON writes a JSON response with the given status.
func respondJSON(w http.ResponseWriter, r *http.Request, status int, body interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		logging.Ctx(r.Context()).Error().Err(err).Msg("encode response")
	}
}

// respondUnauthorized writes the canonical 401. Auth failures are never
// cacheable and always carry the request ID for correlation.
func respondUnauthorized(w http.ResponseWriter, r *http.Request, message string) {
	if message == "" {
		message = "unauthorized"
	}
	w.Header().Set("Cache-Control", "no-store")
	w.Header().Set("Pragma", "no-cache")
	respondJSON(w, r, http.StatusUnauthorized, errorResponse{
		Error:     message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// respondError writes a generic JSON error.
func respondError(w http.ResponseWriter, r *http.Request, status int, message string) {
	respondJSON(w, r, status, errorResponse{
		Error:     message,
		RequestID: logging.RequestIDFromContext(r.Context()),
	})
}

// decodeBody decodes a JSON request body into dst, answering malformed
// input with a 400. Returns false when a response has already been written.
func decodeBody(w http.ResponseWriter, r *http.Request, dst interface{}) bool {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		respondError(w, r, http.StatusBadRequest, "invalid request body")
		return false
	}
	return true
}
