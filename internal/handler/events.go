// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"

	"github.com/olegiv/backmon-go/internal/model"
	"github.com/olegiv/backmon-go/internal/service"
	"github.com/olegiv/backmon-go/internal/webhook"
)

// maxBodySize bounds the ingest request body. Field limits keep stored
// rows small regardless; this only guards against hostile payloads.
const maxBodySize = 1 << 20

// EventsHandler handles the authenticated write and read endpoints.
type EventsHandler struct {
	events     *service.EventService
	dispatcher *webhook.Dispatcher
	logger     *slog.Logger
}

// NewEventsHandler creates a new EventsHandler.
func NewEventsHandler(events *service.EventService, logger *slog.Logger) *EventsHandler {
	return &EventsHandler{
		events: events,
		logger: logger,
	}
}

// SetDispatcher enables alert dispatching for Error events.
func (h *EventsHandler) SetDispatcher(d *webhook.Dispatcher) {
	h.dispatcher = d
}

// ingestPayload is the wire format of the write endpoint. The SqlBackup
// agent sends the legacy Portuguese field names; English names are accepted
// as well, with the English spelling winning when both are present.
type ingestPayload struct {
	Client   string `json:"client"`
	Cliente  string `json:"cliente"`
	Database string `json:"database"`
	Banco    string `json:"banco"`
	State    string `json:"state"`
	Estado   string `json:"estado"`
	Message  string `json:"message"`
	Mensagem string `json:"mensagem"`
	Cycle    string `json:"cycle"`
	Ciclo    string `json:"ciclo"`
	Size     string `json:"size"`
	Tamanho  string `json:"tamanho"`
}

// input maps the payload onto an EventInput, coalescing the two spellings.
func (p ingestPayload) input() model.EventInput {
	return model.EventInput{
		Client:   coalesce(p.Client, p.Cliente),
		Database: coalesce(p.Database, p.Banco),
		State:    coalesce(p.State, p.Estado),
		Message:  coalesce(p.Message, p.Mensagem),
		Cycle:    coalesce(p.Cycle, p.Ciclo),
		Size:     coalesce(p.Size, p.Tamanho),
	}
}

func coalesce(a, b string) string {
	if a != "" {
		return a
	}
	return b
}

// Ingest handles POST /event (and the legacy /evento). A malformed or empty
// body is not an error: field defaults apply and the event is stored, so a
// broken agent still shows up on the dashboard instead of disappearing.
func (h *EventsHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	var payload ingestPayload
	body, err := io.ReadAll(io.LimitReader(r.Body, maxBodySize))
	if err == nil {
		_ = json.Unmarshal(body, &payload)
	}

	event, err := h.events.Append(r.Context(), payload.input())
	if err != nil {
		logAndInternalError(w, "failed to store event", "error", err, "client", payload.input().Client)
		return
	}

	h.logger.Info("event stored",
		"id", event.ID,
		"client", event.Client,
		"database", event.Database,
		"state", event.State)

	if h.dispatcher != nil && event.State == model.StateError {
		h.dispatcher.Dispatch(webhook.NewErrorAlert(event))
	}

	writeJSON(w, http.StatusOK, map[string]any{"ok": true})
}

// eventJSON is the explicit JSON mapping of a stored event.
type eventJSON struct {
	ID        int64  `json:"id"`
	Client    string `json:"client"`
	Database  string `json:"database"`
	State     string `json:"state"`
	Message   string `json:"message"`
	Cycle     string `json:"cycle"`
	Size      string `json:"size"`
	CreatedAt string `json:"created_at"`
}

func toEventJSON(events []model.Event) []eventJSON {
	out := make([]eventJSON, 0, len(events))
	for _, e := range events {
		out = append(out, eventJSON{
			ID:        e.ID,
			Client:    e.Client,
			Database:  e.Database,
			State:     e.State,
			Message:   e.Message,
			Cycle:     e.Cycle,
			Size:      e.Size,
			CreatedAt: e.CreatedAt.UTC().Format(model.TimeFormat),
		})
	}
	return out
}

// Status handles GET /status - the latest event per client as JSON.
func (h *EventsHandler) Status(w http.ResponseWriter, r *http.Request) {
	events, err := h.events.StatusView(r.Context())
	if err != nil {
		logAndInternalError(w, "failed to load status view", "error", err)
		return
	}

	writeJSON(w, http.StatusOK, toEventJSON(events))
}
