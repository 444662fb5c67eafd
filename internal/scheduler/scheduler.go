// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package scheduler runs periodic maintenance over the event store.
package scheduler

import (
	"context"
	"log/slog"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/olegiv/backmon-go/internal/service"
)

// Scheduler handles scheduled maintenance: the hourly retention sweep and
// optional age-based pruning.
type Scheduler struct {
	events        *service.EventService
	cron          *cron.Cron
	logger        *slog.Logger
	retentionDays int
}

// New creates a new scheduler instance. retentionDays <= 0 disables the
// age-based prune job.
func New(events *service.EventService, retentionDays int, logger *slog.Logger) *Scheduler {
	return &Scheduler{
		events:        events,
		cron:          cron.New(),
		logger:        logger,
		retentionDays: retentionDays,
	}
}

// Start registers the maintenance jobs and starts the cron loop.
func (s *Scheduler) Start() error {
	// Hourly sweep. Append enforces the cap on every insert; this only
	// repairs the aftermath of a bug, and normally deletes nothing.
	if _, err := s.cron.AddFunc("0 * * * *", func() {
		if err := s.runSweep(); err != nil {
			s.logger.Error("retention sweep failed", "error", err)
		}
	}); err != nil {
		return err
	}

	if s.retentionDays > 0 {
		if _, err := s.cron.AddFunc("30 3 * * *", func() {
			if err := s.runPrune(); err != nil {
				s.logger.Error("age prune failed", "error", err)
			}
		}); err != nil {
			return err
		}
	}

	s.cron.Start()
	s.logger.Info("scheduler started", "jobs", len(s.cron.Entries()), "retention_days", s.retentionDays)
	return nil
}

// Stop gracefully stops the scheduler.
func (s *Scheduler) Stop() {
	ctx := s.cron.Stop()
	<-ctx.Done()
	s.logger.Info("scheduler stopped")
}

func (s *Scheduler) runSweep() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	deleted, err := s.events.Sweep(ctx)
	if err != nil {
		return err
	}
	if deleted > 0 {
		// A non-zero sweep means an insert committed without its trim.
		s.logger.Warn("retention sweep deleted rows", "deleted", deleted)
	}
	return nil
}

func (s *Scheduler) runPrune() error {
	ctx, cancel := context.WithTimeout(context.Background(), time.Minute)
	defer cancel()

	age := time.Duration(s.retentionDays) * 24 * time.Hour
	deleted, err := s.events.PruneOlderThan(ctx, age)
	if err != nil {
		return err
	}
	s.logger.Info("age prune finished", "deleted", deleted, "retention_days", s.retentionDays)
	return nil
}
