// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

// Package main is the entry point for the LandSpace security core server.
//
// The server fronts the LandSpace marketing platform with its security
// surface: admin and client-portal session authentication, CSRF issuance
// and enforcement, dual-tier rate limiting, the edge gatekeeper for the
// admin API prefix, and the append-only audit trail.
//
// Startup order:
//
//  1. Configuration (koanf: defaults, YAML file, environment)
//  2. Logging (zerolog)
//  3. Stores: DuckDB audit persistence, Badger revocation set (both fall
//     back to in-memory when no path is configured)
//  4. API server (chi router, session codec, guards)
//  5. Supervision tree (suture): HTTP server + maintenance sweepers
//
// Required production environment:
//
//	SESSION_SECRET   signs session tokens; the server refuses to start
//	                 without it
//	ADMIN_PASSWORD   bootstrap admin credential
//
// Graceful shutdown on SIGINT/SIGTERM drains in-flight requests, stops the
// sweepers, flushes the audit buffer, and closes both stores.
package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/dgraph-io/badger/v4"
	_ "github.com/duckdb/duckdb-go/v2"

	"github.com/landspace/landspace/internal/api"
	"github.com/landspace/landspace/internal/audit"
	"github.com/landspace/landspace/internal/config"
	"github.com/landspace/landspace/internal/logging"
	"github.com/landspace/landspace/internal/ratelimit"
	"github.com/landspace/landspace/internal/session"
	"github.com/landspace/landspace/internal/supervisor"
	"github.com/landspace/landspace/internal/supervisor/services"
)

func main() {
	configPath := flag.String("config", "config.yaml", "path to the YAML config file")
	flag.Parse()

	if err := run(*configPath); err != nil {
		logging.Fatal().Err(err).Msg("server exited")
	}
}

func run(configPath string) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
	})

	if cfg.Session.Secret == "" {
		return fmt.Errorf("SESSION_SECRET is required: the server side never runs without a signing secret")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Audit persistence: DuckDB when a path is configured.
	auditStore, closeAudit, err := openAuditStore(ctx, cfg)
	if err != nil {
		return err
	}
	defer closeAudit()

	auditWriter := audit.NewWriter(auditStore, audit.WriterConfig{
		BufferSize:   cfg.Audit.BufferSize,
		WriteTimeout: cfg.Audit.WriteTimeout,
	})
	defer auditWriter.Close()

	// Revocation set: Badger when a path is configured.
	revocations, closeRevocations, err := openRevocationStore(cfg)
	if err != nil {
		return err
	}
	defer closeRevocations()

	rateStore := ratelimit.NewMemoryStore()
	limiter := ratelimit.New(rateStore, ratelimit.Config{
		IPLimit:       cfg.RateLimit.IPLimit,
		IdentityLimit: cfg.RateLimit.IdentityLimit,
		Window:        cfg.RateLimit.Window,
	})

	server, err := api.NewServer(cfg, api.Deps{
		AuditStore:  auditStore,
		AuditWriter: auditWriter,
		Revocations: revocations,
		Limiter:     limiter,
	})
	if err != nil {
		return fmt.Errorf("build api server: %w", err)
	}

	httpServer := &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port),
		Handler:           server.Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	tree := supervisor.New(logging.NewSlogLogger(), supervisor.Config{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	tree.AddAPIService(services.NewHTTPServerService(httpServer, cfg.Server.ShutdownTimeout))
	tree.AddMaintenanceService(services.NewPeriodicService("ratelimit-sweeper", cfg.RateLimit.SweepInterval,
		func(context.Context) error {
			rateStore.Cleanup()
			return nil
		}))
	tree.AddMaintenanceService(services.NewPeriodicService("audit-retention", cfg.Audit.CleanupInterval,
		func(jobCtx context.Context) error {
			cutoff := time.Now().AddDate(0, 0, -cfg.Audit.RetentionDays)
			removed, err := auditStore.DeleteOlderThan(jobCtx, cutoff)
			if err != nil {
				return err
			}
			if removed > 0 {
				logging.Info().Int64("removed", removed).Msg("audit retention cleanup")
			}
			return nil
		}))
	if mem, ok := revocations.(*session.MemoryRevocationStore); ok {
		tree.AddMaintenanceService(services.NewPeriodicService("revocation-sweeper", cfg.RateLimit.SweepInterval,
			func(context.Context) error {
				mem.Cleanup()
				return nil
			}))
	}

	logging.Info().
		Str("addr", httpServer.Addr).
		Bool("secure_cookies", cfg.Session.SecureCookies).
		Msg("landspace security core starting")

	if err := tree.Serve(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}

	logging.Info().Msg("shutdown complete")
	return nil
}

// openAuditStore selects DuckDB or in-memory audit persistence.
func openAuditStore(ctx context.Context, cfg *config.Config) (audit.Store, func(), error) {
	if cfg.Audit.DuckDBPath == "" {
		logging.Warn().Msg("no audit database path configured, using in-memory audit store")
		return audit.NewMemoryStore(), func() {}, nil
	}

	db, err := sql.Open("duckdb", cfg.Audit.DuckDBPath)
	if err != nil {
		return nil, nil, fmt.Errorf("open audit database: %w", err)
	}

	store := audit.NewDuckDBStore(db)
	if err := store.CreateTable(ctx); err != nil {
		db.Close()
		return nil, nil, err
	}

	return store, func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("close audit database")
		}
	}, nil
}

// openRevocationStore selects Badger or in-memory revocation storage.
func openRevocationStore(cfg *config.Config) (session.RevocationStore, func(), error) {
	if cfg.Badger.Path == "" {
		logging.Warn().Msg("no badger path configured, using in-memory revocation store")
		return session.NewMemoryRevocationStore(), func() {}, nil
	}

	opts := badger.DefaultOptions(cfg.Badger.Path).WithLogger(nil)
	db, err := badger.Open(opts)
	if err != nil {
		return nil, nil, fmt.Errorf("open revocation store: %w", err)
	}

	return session.NewBadgerRevocationStore(db), func() {
		if err := db.Close(); err != nil {
			logging.Error().Err(err).Msg("close revocation store")
		}
	}, nil
}
