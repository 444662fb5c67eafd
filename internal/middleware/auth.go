// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

// Package middleware provides HTTP middleware for authentication and
// rate limiting.
package middleware

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"
	"strings"
)

// APIKeyHeader is the header checked for the shared API key. Header lookup
// is case-insensitive per net/http canonicalization.
const APIKeyHeader = "X-Api-Key"

// APIKeyQueryParam is the query parameter fallback for agents that cannot
// set custom headers.
const APIKeyQueryParam = "key"

// APIError represents a JSON error response for the API.
type APIError struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// WriteAPIError writes a JSON error response.
func WriteAPIError(w http.ResponseWriter, statusCode int, code, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)

	apiErr := APIError{}
	apiErr.Error.Code = code
	apiErr.Error.Message = message

	_ = json.NewEncoder(w).Encode(apiErr)
}

// APIKeyAuth creates middleware that validates the shared API key from the
// X-Api-Key header or the key query parameter. Comparison is constant-time;
// a failure reveals nothing beyond pass/fail.
func APIKeyAuth(secret string) func(http.Handler) http.Handler {
	want := []byte(strings.TrimSpace(secret))

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			key := strings.TrimSpace(r.Header.Get(APIKeyHeader))
			if key == "" {
				key = strings.TrimSpace(r.URL.Query().Get(APIKeyQueryParam))
			}

			if key == "" || subtle.ConstantTimeCompare([]byte(key), want) != 1 {
				WriteAPIError(w, http.StatusUnauthorized, "unauthorized", "Missing or invalid API key")
				return
			}

			next.ServeHTTP(w, r)
		})
	}
}
