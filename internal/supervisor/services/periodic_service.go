// LandSpace - Marketing Platform Security Core
// Copyright 2026 LandSpace Tecnologia
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/landspace/landspace

package services

import (
	"context"
	"time"

	"github.com/landspace/landspace/internal/logging"
)

// PeriodicService runs a job on a fixed interval under supervision. It
// backs the rate-limit counter sweep, the revocation sweep, and the audit
// retention job.
type PeriodicService struct {
	name     string
	interval time.Duration
	job      func(ctx context.Context) error
}

// NewPeriodicService creates a supervised ticker service.
func NewPeriodicService(name string, interval time.Duration, job func(ctx context.Context) error) *PeriodicService {
	return &PeriodicService{name: name, interval: interval, job: job}
}

// Serve implements suture.Service.
func (p *PeriodicService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := p.job(ctx); err != nil {
				logging.Error().Err(err).Str("service", p.name).Msg("periodic job failed")
			}
		}
	}
}

// String implements fmt.Stringer for supervisor log messages.
func (p *PeriodicService) String() string {
	return p.name
}
