// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package api

import (
	"fmt"

	"github.com/landspace/landspace/internal/audit"
	"github.com/landspace/landspace/internal/config"
	"github.com/landspace/landspace/internal/csrf"
	"github.com/landspace/landspace/internal/gatekeeper"
	"github.com/landspace/landspace/internal/guard"
	"github.com/landspace/landspace/internal/ratelimit"
	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/token"
)

// Deps are the externally constructed collaborators the server wires into
// its handlers.
type Deps struct {
	// AuditStore answers the admin audit queries and the retention job.
	AuditStore audit.Store

	// AuditWriter is the async fire-and-forget recorder.
	AuditWriter *audit.Writer

	// Revocations is the session nonce denylist.
	Revocations session.RevocationStore

	// Limiter is the dual-tier rate limiter.
	Limiter *ratelimit.Limiter
}

// Server holds the handler state for the whole API surface.
type Server struct {
	cfg         *config.Config
	sessions    *session.Manager
	guard       *guard.Guard
	gate        *gatekeeper.Gatekeeper
	limiter     *ratelimit.Limiter
	csrf        *csrf.Guard
	audit       *audit.Writer
	auditStore  audit.Store
	revocations session.RevocationStore
	adminCred   *Credential
	portalCred  *Credential
}

// NewServer builds the API server. Construction hard-fails without a
// session secret: the fail-open path exists only at the edge gatekeeper,
// never here.
func NewServer(cfg *config.Config, deps Deps) (*Server, error) {
	codec, err := token.NewCodec(cfg.Session.Secret)
	if err != nil {
		return nil, fmt.Errorf("session codec: %w", err)
	}

	sessions := session.NewManager(codec, session.Config{
		Secure:    cfg.Session.SecureCookies,
		AdminTTL:  cfg.Session.AdminTTL,
		PortalTTL: cfg.Session.PortalTTL,
	})

	g, err := guard.New(sessions, deps.Revocations)
	if err != nil {
		return nil, fmt.Errorf("route guard: %w", err)
	}

	adminCred, err := NewCredential(cfg.Admin.Password)
	if err != nil {
		return nil, fmt.Errorf("admin credential: %w", err)
	}
	portalCred, err := NewCredential(cfg.Portal.AccessCode)
	if err != nil {
		return nil, fmt.Errorf("portal credential: %w", err)
	}

	return &Server{
		cfg:      cfg,
		sessions: sessions,
		guard:    g,
		gate:     gatekeeper.New(cfg.Session.Secret),
		limiter:  deps.Limiter,
		csrf: csrf.NewGuard(csrf.Config{
			Secure: cfg.Session.SecureCookies,
			TTL:    cfg.CSRF.TTL,
		}),
		audit:       deps.AuditWriter,
		auditStore:  deps.AuditStore,
		revocations: deps.Revocations,
		adminCred:   adminCred,
		portalCred:  portalCred,
	}, nil
}
