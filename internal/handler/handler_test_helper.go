// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"database/sql"
	"io"
	"log/slog"
	"testing"

	_ "modernc.org/sqlite"

	"github.com/olegiv/backmon-go/internal/service"
)

// testDB creates an in-memory SQLite database with the events schema.
func testDB(t *testing.T) *sql.DB {
	t.Helper()

	db, err := sql.Open("sqlite", ":memory:")
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	// One connection, or each pooled conn would see its own :memory: database.
	db.SetMaxOpenConns(1)

	schema := `
		CREATE TABLE events (
			id         INTEGER PRIMARY KEY AUTOINCREMENT,
			client     TEXT NOT NULL,
			db_name    TEXT NOT NULL,
			state      TEXT NOT NULL,
			message    TEXT NOT NULL DEFAULT '',
			cycle      TEXT NOT NULL DEFAULT '',
			size       TEXT NOT NULL DEFAULT '',
			created_at DATETIME NOT NULL
		);
		CREATE INDEX idx_events_client ON events(client);
		CREATE INDEX idx_events_client_id ON events(client, id DESC);
		CREATE INDEX idx_events_created_at ON events(created_at DESC);
	`
	if _, err := db.Exec(schema); err != nil {
		t.Fatalf("failed to create schema: %v", err)
	}

	t.Cleanup(func() { db.Close() })
	return db
}

// testEventsHandler creates an EventsHandler over a fresh in-memory database.
func testEventsHandler(t *testing.T) (*EventsHandler, *service.EventService) {
	t.Helper()

	db := testDB(t)
	svc := service.NewEventService(db)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return NewEventsHandler(svc, logger), svc
}
