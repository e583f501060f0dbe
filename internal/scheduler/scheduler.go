// Copyright (c) 2025-2026 Folioworks
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance: purging expired auth tokens
// and trimming the audit event log.
package scheduler

import (
	"context"
	"database/sql"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/folioworks/folio-go/internal/geoip"
	"github.com/folioworks/folio-go/internal/store"
)

// EventRetention is how long audit events are kept.
const EventRetention = 90 * 24 * time.Hour

// Scheduler owns the cron runner and its maintenance jobs.
type Scheduler struct {
	db     *sql.DB
	geo    *geoip.Lookup
	cron   *cron.Cron
	logger *slog.Logger
}

// New creates a scheduler. geo may be nil when GeoIP is not configured.
func New(db *sql.DB, geo *geoip.Lookup, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		db:     db,
		geo:    geo,
		cron:   cron.New(),
		logger: logger,
	}
}

// Start registers and begins the maintenance jobs: hourly token cleanup,
// nightly event log trimming, and a daily GeoIP database reload.
func (s *Scheduler) Start() error {
	if _, err := s.cron.AddFunc("@hourly", s.cleanupTokens); err != nil {
		return err
	}
	if _, err := s.cron.AddFunc("30 3 * * *", s.trimEvents); err != nil {
		return err
	}
	if s.geo != nil {
		if _, err := s.cron.AddFunc("@daily", s.reloadGeoIP); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()))
	return nil
}

// Stop gracefully stops the scheduler, waiting for running jobs.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

// cleanupTokens deletes refresh and password reset tokens past expiry.
func (s *Scheduler) cleanupTokens() {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	queries := store.New(s.db)
	now := time.Now().UTC()

	refresh, err := queries.DeleteExpiredRefreshTokens(ctx, now)
	if err != nil {
		s.logger.Error("failed to delete expired refresh tokens", "error", err)
	}

	reset, err := queries.DeleteExpiredPasswordResetTokens(ctx, now)
	if err != nil {
		s.logger.Error("failed to delete expired reset tokens", "error", err)
	}

	if refresh > 0 || reset > 0 {
		s.logger.Info("cleaned up expired tokens", "refresh", refresh, "reset", reset)
	}
}

// trimEvents removes audit events older than the retention window.
func (s *Scheduler) trimEvents() {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	cutoff := time.Now().UTC().Add(-EventRetention)
	deleted, err := store.New(s.db).DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		s.logger.Error("failed to trim event log", "error", err)
		return
	}
	if deleted > 0 {
		s.logger.Info("trimmed event log", "deleted", deleted)
	}
}

// reloadGeoIP re-opens the GeoIP database when the file on disk changed.
func (s *Scheduler) reloadGeoIP() {
	if err := s.geo.Reload(); err != nil {
		s.logger.Warn("geoip reload failed", "error", err)
	}
}
