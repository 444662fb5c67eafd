// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package webhook provides asynchronous alert delivery for failed backups.
package webhook

import (
	"time"

	"github.com/olegiv/backmon-go/internal/model"
)

// Alert event types.
const (
	EventBackupError = "backup.error"
)

// Event is the alert payload POSTed to the configured webhook URL.
type Event struct {
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Data      AlertData `json:"data"`
}

// AlertData describes the backup event that triggered the alert.
type AlertData struct {
	ID        int64  `json:"id"`
	Client    string `json:"client"`
	Database  string `json:"database"`
	State     string `json:"state"`
	Message   string `json:"message,omitempty"`
	Cycle     string `json:"cycle,omitempty"`
	Size      string `json:"size,omitempty"`
	CreatedAt string `json:"created_at"`
}

// NewErrorAlert builds an alert event for a stored backup event.
func NewErrorAlert(e model.Event) *Event {
	return &Event{
		Type:      EventBackupError,
		Timestamp: time.Now().UTC(),
		Data: AlertData{
			ID:        e.ID,
			Client:    e.Client,
			Database:  e.Database,
			State:     e.State,
			Message:   e.Message,
			Cycle:     e.Cycle,
			Size:      e.Size,
			CreatedAt: e.CreatedAt.UTC().Format(model.TimeFormat),
		},
	}
}
