// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package render handles HTML template rendering for the dashboard.
package render

import (
	"bytes"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strings"
	"time"

	"github.com/olegiv/backmon-go/internal/model"
)

// Renderer holds the parsed dashboard templates.
type Renderer struct {
	templates map[string]*template.Template
}

// New creates a Renderer from all .html templates in templatesFS.
func New(templatesFS fs.FS) (*Renderer, error) {
	r := &Renderer{templates: make(map[string]*template.Template)}

	entries, err := fs.ReadDir(templatesFS, ".")
	if err != nil {
		return nil, fmt.Errorf("reading templates dir: %w", err)
	}

	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), ".html") {
			continue
		}
		name := strings.TrimSuffix(entry.Name(), ".html")
		tmpl, err := template.New(entry.Name()).Funcs(templateFuncs()).ParseFS(templatesFS, entry.Name())
		if err != nil {
			return nil, fmt.Errorf("parsing template %s: %w", name, err)
		}
		r.templates[name] = tmpl
	}

	return r, nil
}

// Render executes the named template into a buffer first, so a template
// error yields a clean 500 instead of a half-written page.
func (r *Renderer) Render(w http.ResponseWriter, name string, data any) error {
	tmpl, ok := r.templates[name]
	if !ok {
		return fmt.Errorf("template %q not found", name)
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return fmt.Errorf("executing template %q: %w", name, err)
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, err := buf.WriteTo(w)
	return err
}

// templateFuncs returns custom template functions.
func templateFuncs() template.FuncMap {
	return template.FuncMap{
		"formatDate": func(t time.Time) string {
			return t.UTC().Format(model.TimeFormat)
		},
		"formatMinute": func(t time.Time) string {
			return t.UTC().Format("2006-01-02 15:04")
		},
		"stateIcon": func(state string) string {
			return StateStyle(state).Icon
		},
		"stateColor": func(state string) string {
			return StateStyle(state).Color
		},
		"stateClass": func(state string) string {
			return StateStyle(state).Class
		},
		"orDash": func(s string) string {
			if s == "" {
				return "—"
			}
			return s
		},
		"upper": strings.ToUpper,
	}
}
