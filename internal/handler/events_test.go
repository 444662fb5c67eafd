// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"regexp"
	"strings"
	"testing"

	"github.com/olegiv/backmon-go/internal/model"
)

func postEvent(t *testing.T, h *EventsHandler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/event", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.Ingest(w, req)
	return w
}

func decodeOK(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	var resp map[string]any
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if resp["ok"] != true {
		t.Errorf("response = %v, want ok=true", resp)
	}
}

func TestIngest_EnglishFields(t *testing.T) {
	h, svc := testEventsHandler(t)

	w := postEvent(t, h, `{"client":"acme","database":"erp","state":"OK","message":"done","cycle":"nightly","size":"1.2 GB"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	decodeOK(t, w)

	events, err := svc.StatusView(context.Background())
	if err != nil {
		t.Fatalf("StatusView: %v", err)
	}
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	e := events[0]
	if e.Client != "acme" || e.Database != "erp" || e.State != "OK" ||
		e.Message != "done" || e.Cycle != "nightly" || e.Size != "1.2 GB" {
		t.Errorf("stored event = %+v", e)
	}
}

func TestIngest_LegacyPortugueseFields(t *testing.T) {
	h, svc := testEventsHandler(t)

	w := postEvent(t, h, `{"cliente":"acme","banco":"erp","estado":"Error","mensagem":"disk full","ciclo":"noturno","tamanho":"500 MB"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	events, _ := svc.StatusView(context.Background())
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	e := events[0]
	if e.Client != "acme" || e.Database != "erp" || e.State != "Error" || e.Message != "disk full" {
		t.Errorf("stored event = %+v", e)
	}
}

func TestIngest_EmptyBodyAppliesDefaults(t *testing.T) {
	h, svc := testEventsHandler(t)

	w := postEvent(t, h, "")
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (availability over strict validation)", w.Code)
	}
	decodeOK(t, w)

	events, _ := svc.StatusView(context.Background())
	if len(events) != 1 {
		t.Fatalf("len = %d, want 1", len(events))
	}
	e := events[0]
	if e.Client != model.DefaultClient {
		t.Errorf("Client = %q, want %q", e.Client, model.DefaultClient)
	}
	if e.Database != model.DefaultDatabase {
		t.Errorf("Database = %q, want %q", e.Database, model.DefaultDatabase)
	}
}

func TestIngest_MalformedJSON(t *testing.T) {
	h, svc := testEventsHandler(t)

	w := postEvent(t, h, `{"client": "acme", broken`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	events, _ := svc.StatusView(context.Background())
	if len(events) != 1 {
		t.Fatalf("malformed payload should still store an event, got %d", len(events))
	}
	if events[0].Client != model.DefaultClient {
		t.Errorf("Client = %q, want default (partial JSON is discarded)", events[0].Client)
	}
}

func TestIngest_TruncatesLongMessage(t *testing.T) {
	h, svc := testEventsHandler(t)

	long := strings.Repeat("x", 600)
	w := postEvent(t, h, `{"client":"acme","message":"`+long+`"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	events, _ := svc.StatusView(context.Background())
	if len(events[0].Message) != model.MaxMessageLen {
		t.Errorf("Message length = %d, want %d", len(events[0].Message), model.MaxMessageLen)
	}
}

func TestIngest_UnrecognizedStateStored(t *testing.T) {
	h, svc := testEventsHandler(t)

	w := postEvent(t, h, `{"client":"acme","state":"Paused"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}

	events, _ := svc.StatusView(context.Background())
	if events[0].State != "Paused" {
		t.Errorf("State = %q, want %q stored as-is", events[0].State, "Paused")
	}
}

func TestStatus_LatestPerClient(t *testing.T) {
	h, _ := testEventsHandler(t)

	postEvent(t, h, `{"client":"acme","state":"Started"}`)
	postEvent(t, h, `{"client":"acme","state":"OK"}`)
	postEvent(t, h, `{"client":"globex","state":"Error"}`)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q, want application/json", ct)
	}

	var events []map[string]any
	if err := json.NewDecoder(w.Body).Decode(&events); err != nil {
		t.Fatalf("decoding response: %v", err)
	}
	if len(events) != 2 {
		t.Fatalf("len = %d, want 2 (one per client)", len(events))
	}

	created, ok := events[0]["created_at"].(string)
	if !ok {
		t.Fatalf("created_at missing from %v", events[0])
	}
	if !regexp.MustCompile(`^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`).MatchString(created) {
		t.Errorf("created_at = %q, want YYYY-MM-DD HH:MM:SS", created)
	}

	for _, e := range events {
		if e["client"] == "acme" && e["state"] != "OK" {
			t.Errorf("acme state = %v, want latest %q", e["state"], "OK")
		}
		if _, ok := e["id"].(float64); !ok {
			t.Errorf("id missing from %v", e)
		}
	}
}

func TestStatus_EmptyStore(t *testing.T) {
	h, _ := testEventsHandler(t)

	req := httptest.NewRequest(http.MethodGet, "/status", nil)
	w := httptest.NewRecorder()
	h.Status(w, req)

	if w.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", w.Code)
	}
	if body := strings.TrimSpace(w.Body.String()); body != "[]" {
		t.Errorf("body = %q, want empty array", body)
	}
}
