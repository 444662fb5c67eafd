// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package store provides SQLite persistence for backup events.
package store

import (
	"database/sql"
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"

	_ "modernc.org/sqlite" // SQLite driver for database/sql
)

//go:embed migrations/*.sql
var migrations embed.FS

// dsnPragmas are applied to every pooled connection. busy_timeout in
// particular must hold on each connection, or concurrent appends would see
// SQLITE_BUSY instead of waiting for the single writer.
const dsnPragmas = "?_pragma=journal_mode(WAL)" + // Write-Ahead Logging for better concurrency
	"&_pragma=busy_timeout(5000)" + // Wait 5s when database is locked
	"&_pragma=synchronous(NORMAL)" + // Good balance of safety and speed
	"&_pragma=foreign_keys(ON)" + // Enforce foreign key constraints
	"&_pragma=cache_size(-64000)" + // 64MB cache
	"&_pragma=temp_store(MEMORY)" // Store temp tables in memory

// NewDB opens a SQLite database connection and configures it for concurrent
// readers with a single writer.
func NewDB(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", path+dsnPragmas)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// Verify connection
	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	return db, nil
}

// Migrate runs all pending database migrations.
func Migrate(db *sql.DB) error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("setting dialect: %w", err)
	}

	if err := goose.Up(db, "migrations"); err != nil {
		return fmt.Errorf("running migrations: %w", err)
	}

	return nil
}
