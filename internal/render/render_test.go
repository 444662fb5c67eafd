// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import (
	"net/http/httptest"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/olegiv/backmon-go/internal/model"
)

func TestStateStyle_KnownStates(t *testing.T) {
	tests := []struct {
		state string
		icon  string
		class string
	}{
		{model.StateStarted, "🔵", "started"},
		{model.StateOK, "✅", "ok"},
		{model.StateError, "❌", "error"},
		{model.StateWarning, "⚠️", "warning"},
	}
	for _, tt := range tests {
		s := StateStyle(tt.state)
		if s.Icon != tt.icon {
			t.Errorf("StateStyle(%q).Icon = %q, want %q", tt.state, s.Icon, tt.icon)
		}
		if s.Class != tt.class {
			t.Errorf("StateStyle(%q).Class = %q, want %q", tt.state, s.Class, tt.class)
		}
	}
}

func TestStateStyle_Fallback(t *testing.T) {
	for _, state := range []string{"", "?", "Paused", "ok"} {
		s := StateStyle(state)
		if s != neutralStyle {
			t.Errorf("StateStyle(%q) = %+v, want neutral fallback", state, s)
		}
	}
}

func TestRenderer_Render(t *testing.T) {
	fsys := fstest.MapFS{
		"page.html": &fstest.MapFile{
			Data: []byte(`<p>{{stateIcon .State}} {{orDash .Message}} {{formatDate .CreatedAt}}</p>`),
		},
	}

	r, err := New(fsys)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	w := httptest.NewRecorder()
	data := struct {
		State     string
		Message   string
		CreatedAt time.Time
	}{
		State:     model.StateOK,
		CreatedAt: time.Date(2026, 8, 28, 9, 15, 0, 0, time.UTC),
	}
	if err := r.Render(w, "page", data); err != nil {
		t.Fatalf("Render: %v", err)
	}

	body := w.Body.String()
	if !strings.Contains(body, "✅") {
		t.Errorf("body missing state icon: %q", body)
	}
	if !strings.Contains(body, "—") {
		t.Errorf("body missing dash for empty message: %q", body)
	}
	if !strings.Contains(body, "2026-08-28 09:15:00") {
		t.Errorf("body missing formatted date: %q", body)
	}
	if ct := w.Header().Get("Content-Type"); !strings.HasPrefix(ct, "text/html") {
		t.Errorf("Content-Type = %q, want text/html", ct)
	}
}

func TestRenderer_UnknownTemplate(t *testing.T) {
	r, err := New(fstest.MapFS{})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := r.Render(httptest.NewRecorder(), "missing", nil); err == nil {
		t.Fatal("Render should fail for a missing template")
	}
}
