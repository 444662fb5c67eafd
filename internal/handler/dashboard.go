// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/olegiv/backmon-go/internal/model"
	"github.com/olegiv/backmon-go/internal/render"
	"github.com/olegiv/backmon-go/internal/service"
)

// DashboardHandler renders the HTML status page.
type DashboardHandler struct {
	events   *service.EventService
	renderer *render.Renderer
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(events *service.EventService, renderer *render.Renderer) *DashboardHandler {
	return &DashboardHandler{
		events:   events,
		renderer: renderer,
	}
}

// dashboardData holds data for the dashboard template.
type dashboardData struct {
	Latest    []model.Event
	History   []model.Event
	UpdatedAt string
}

// Home handles GET / - per-client status cards and the global history
// table. The page carries a 30s auto-refresh hint.
func (h *DashboardHandler) Home(w http.ResponseWriter, r *http.Request) {
	latest, err := h.events.StatusView(r.Context())
	if err != nil {
		slog.Error("failed to load status view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	history, err := h.events.HistoryView(r.Context(), service.DefaultHistoryLimit)
	if err != nil {
		slog.Error("failed to load history view", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
		return
	}

	data := dashboardData{
		Latest:    latest,
		History:   history,
		UpdatedAt: time.Now().UTC().Format(model.TimeFormat) + " UTC",
	}

	if err := h.renderer.Render(w, "dashboard", data); err != nil {
		slog.Error("failed to render dashboard", "error", err)
		http.Error(w, "Internal Server Error", http.StatusInternalServerError)
	}
}
