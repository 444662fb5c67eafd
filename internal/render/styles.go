// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package render

import "github.com/olegiv/backmon-go/internal/model"

// Style is the dashboard presentation of an event state.
type Style struct {
	Icon  string
	Color string
	Class string // CSS class suffix used by card and badge selectors
}

// neutralStyle is the fallback for states outside the known vocabulary.
// Unknown states are stored and displayed, just without special styling.
var neutralStyle = Style{Icon: "❓", Color: "#555555", Class: "neutral"}

var stateStyles = map[string]Style{
	model.StateStarted: {Icon: "🔵", Color: "#0078d4", Class: "started"},
	model.StateOK:      {Icon: "✅", Color: "#107c10", Class: "ok"},
	model.StateError:   {Icon: "❌", Color: "#c42b1c", Class: "error"},
	model.StateWarning: {Icon: "⚠️", Color: "#ca5010", Class: "warning"},
}

// StateStyle maps an event state to its dashboard style. Pure function with
// a defined neutral fallback for unrecognized states.
func StateStyle(state string) Style {
	if s, ok := stateStyles[state]; ok {
		return s
	}
	return neutralStyle
}
