// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package model

import (
	"strings"
	"testing"
)

func TestNormalize_Defaults(t *testing.T) {
	in := EventInput{}.Normalize()

	if in.Client != DefaultClient {
		t.Errorf("Client = %q, want %q", in.Client, DefaultClient)
	}
	if in.Database != DefaultDatabase {
		t.Errorf("Database = %q, want %q", in.Database, DefaultDatabase)
	}
	if in.State != DefaultState {
		t.Errorf("State = %q, want %q", in.State, DefaultState)
	}
	if in.Message != "" || in.Cycle != "" || in.Size != "" {
		t.Errorf("optional fields should stay empty, got %+v", in)
	}
}

func TestNormalize_Truncation(t *testing.T) {
	in := EventInput{
		Client:   strings.Repeat("c", 150),
		Database: strings.Repeat("d", 101),
		State:    strings.Repeat("s", 60),
		Message:  strings.Repeat("m", 600),
		Cycle:    strings.Repeat("y", 51),
		Size:     strings.Repeat("z", 51),
	}.Normalize()

	checks := []struct {
		name  string
		value string
		want  int
	}{
		{"Client", in.Client, MaxClientLen},
		{"Database", in.Database, MaxDatabaseLen},
		{"State", in.State, MaxStateLen},
		{"Message", in.Message, MaxMessageLen},
		{"Cycle", in.Cycle, MaxCycleLen},
		{"Size", in.Size, MaxSizeLen},
	}
	for _, c := range checks {
		if len(c.value) != c.want {
			t.Errorf("%s truncated to %d chars, want exactly %d", c.name, len(c.value), c.want)
		}
	}
}

func TestNormalize_KeepsUnrecognizedState(t *testing.T) {
	in := EventInput{State: "Paused"}.Normalize()
	if in.State != "Paused" {
		t.Errorf("State = %q, want %q (unrecognized states are stored as-is)", in.State, "Paused")
	}
}

func TestTruncate_MultiByte(t *testing.T) {
	// 6 three-byte runes; a byte-based cut at 10 would split a rune.
	s := strings.Repeat("日", 6)
	got := Truncate(s, 4)
	if got != strings.Repeat("日", 4) {
		t.Errorf("Truncate = %q, want 4 whole runes", got)
	}
}

func TestTruncate_ShortInputUnchanged(t *testing.T) {
	if got := Truncate("abc", 10); got != "abc" {
		t.Errorf("Truncate = %q, want %q", got, "abc")
	}
}
