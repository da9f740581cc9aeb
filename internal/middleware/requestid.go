// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package middleware holds the cross-cutting HTTP middleware shared by the
// whole router: request correlation and Prometheus instrumentation.
package middleware

import (
	"net/http"

	"github.com/landspace/landspace/internal/logging"
)

// RequestIDHeader is the correlation header, accepted inbound and always
// set on responses.
const RequestIDHeader = "x-request-id"

// RequestID attaches a request ID to every request: the inbound
// x-request-id value when present, otherwise a fresh UUID. The ID is
// stored in the request context for logging and audit correlation and
// echoed on the response.
func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := r.Header.Get(RequestIDHeader)
		if requestID == "" {
			requestID = logging.GenerateRequestID()
		}

		ctx := logging.ContextWithRequestID(r.Context(), requestID)
		w.Header().Set(RequestIDHeader, requestID)

		next.ServeHTTP(w, r.WithContext(ctx))
	})
}
