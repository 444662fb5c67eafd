// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package service provides the business logic over the event store:
// atomic append with retention trimming and the read-side status views.
package service

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/olegiv/backmon-go/internal/model"
	"github.com/olegiv/backmon-go/internal/store"
)

// DefaultHistoryLimit is the number of events returned by HistoryView when
// the caller does not specify a limit.
const DefaultHistoryLimit = 100

// EventService owns event ingestion and aggregation. Append runs the insert
// and the retention trim in one transaction, so the per-client cap is never
// visible as exceeded and a failed trim rolls the insert back with it.
type EventService struct {
	db      *sql.DB
	queries *store.Queries
}

// NewEventService creates a new EventService.
func NewEventService(db *sql.DB) *EventService {
	return &EventService{
		db:      db,
		queries: store.New(db),
	}
}

// Append normalizes the input, assigns the creation timestamp, and stores
// the event. Within the same transaction it trims the client's history to
// the retention cap. Returns the fully materialized stored event.
func (s *EventService) Append(ctx context.Context, in model.EventInput) (model.Event, error) {
	norm := in.Normalize()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return model.Event{}, fmt.Errorf("beginning append tx: %w", err)
	}
	defer tx.Rollback()

	qtx := s.queries.WithTx(tx)
	event, err := qtx.InsertEvent(ctx, store.InsertEventParams{
		Client:    norm.Client,
		Database:  norm.Database,
		State:     norm.State,
		Message:   norm.Message,
		Cycle:     norm.Cycle,
		Size:      norm.Size,
		CreatedAt: time.Now().UTC().Truncate(time.Second),
	})
	if err != nil {
		return model.Event{}, fmt.Errorf("inserting event: %w", err)
	}

	if _, err := qtx.TrimClientEvents(ctx, event.Client, model.RetentionCap); err != nil {
		return model.Event{}, fmt.Errorf("trimming events for %q: %w", event.Client, err)
	}

	if err := tx.Commit(); err != nil {
		return model.Event{}, fmt.Errorf("committing append tx: %w", err)
	}

	return event, nil
}

// StatusView returns the latest event per client, most recently updated
// client first. Recomputed on every call; there is no cache to go stale.
func (s *EventService) StatusView(ctx context.Context) ([]model.Event, error) {
	events, err := s.queries.LatestPerClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("querying latest events: %w", err)
	}
	return events, nil
}

// HistoryView returns the limit most recent events across all clients,
// newest first. A non-positive limit falls back to DefaultHistoryLimit.
func (s *EventService) HistoryView(ctx context.Context, limit int) ([]model.Event, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	events, err := s.queries.RecentEvents(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("querying recent events: %w", err)
	}
	return events, nil
}

// Sweep re-asserts the retention cap for every client currently above it.
// Append already enforces the cap synchronously; the sweep exists so a cap
// violation can only ever be a transient bug, never a permanent state.
// Returns the number of rows deleted.
func (s *EventService) Sweep(ctx context.Context) (int64, error) {
	clients, err := s.queries.ListCappedClients(ctx, model.RetentionCap)
	if err != nil {
		return 0, fmt.Errorf("listing capped clients: %w", err)
	}

	var total int64
	for _, client := range clients {
		deleted, err := s.queries.TrimClientEvents(ctx, client, model.RetentionCap)
		if err != nil {
			return total, fmt.Errorf("sweeping events for %q: %w", client, err)
		}
		total += deleted
	}
	return total, nil
}

// PruneOlderThan deletes events older than the given age across all
// clients. Returns the number of rows deleted.
func (s *EventService) PruneOlderThan(ctx context.Context, age time.Duration) (int64, error) {
	cutoff := time.Now().UTC().Add(-age)
	deleted, err := s.queries.DeleteEventsBefore(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("pruning events before %s: %w", cutoff.Format(model.TimeFormat), err)
	}
	return deleted, nil
}
