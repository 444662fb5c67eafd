// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package model defines the core domain types for the backup monitor.
package model

import "time"

// Backup event states reported by agents. The state column is free-form
// text; these are the four values the dashboard styles. Anything else is
// stored as-is and rendered with a neutral badge.
const (
	StateStarted = "Started"
	StateOK      = "OK"
	StateError   = "Error"
	StateWarning = "Warning"
)

// Field length limits. Longer input is truncated at the boundary, never
// rejected.
const (
	MaxClientLen   = 100
	MaxDatabaseLen = 100
	MaxStateLen    = 50
	MaxMessageLen  = 500
	MaxCycleLen    = 50
	MaxSizeLen     = 50
)

// Defaults applied when a required field is missing from a payload.
const (
	DefaultClient   = "unknown"
	DefaultDatabase = "?"
	DefaultState    = "?"
)

// RetentionCap is the maximum number of events kept per client. The oldest
// rows by id are deleted when an insert pushes a client over the cap.
const RetentionCap = 500

// TimeFormat is the second-precision UTC format used for created_at in the
// JSON API and on the dashboard.
const TimeFormat = "2006-01-02 15:04:05"

// Event is one immutable record of a backup lifecycle transition.
// ID and CreatedAt are assigned by the store at insertion.
type Event struct {
	ID        int64
	Client    string
	Database  string
	State     string
	Message   string
	Cycle     string
	Size      string
	CreatedAt time.Time
}

// EventInput is the caller-supplied portion of an event, before defaults
// and truncation are applied.
type EventInput struct {
	Client   string
	Database string
	State    string
	Message  string
	Cycle    string
	Size     string
}

// Normalize applies the documented defaults and length limits, returning
// input that is safe to store. Missing optional fields stay empty.
func (in EventInput) Normalize() EventInput {
	return EventInput{
		Client:   Truncate(defaultIfEmpty(in.Client, DefaultClient), MaxClientLen),
		Database: Truncate(defaultIfEmpty(in.Database, DefaultDatabase), MaxDatabaseLen),
		State:    Truncate(defaultIfEmpty(in.State, DefaultState), MaxStateLen),
		Message:  Truncate(in.Message, MaxMessageLen),
		Cycle:    Truncate(in.Cycle, MaxCycleLen),
		Size:     Truncate(in.Size, MaxSizeLen),
	}
}

// Truncate cuts s to at most limit characters (runes, not bytes), so
// multi-byte input is never split mid-character.
func Truncate(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

func defaultIfEmpty(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
