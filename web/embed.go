// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package web provides embedded web assets.
package web

import "embed"

// Templates contains the embedded HTML templates.
//
//go:embed templates/*.html
var Templates embed.FS
