// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"io"
	"net/http"
	"time"
)

// Delivery configuration constants
const (
	MaxAttempts    = 3                // Maximum number of delivery attempts
	InitialBackoff = 2 * time.Second  // Initial backoff delay
	RequestTimeout = 10 * time.Second // HTTP request timeout
	UserAgent      = "BackMon/1.0"    // User-Agent header value
)

// SignatureHeader carries the hex HMAC-SHA256 of the request body.
const SignatureHeader = "X-Backmon-Signature"

// httpClient is the shared HTTP client with appropriate timeouts.
var httpClient = &http.Client{
	Timeout: RequestTimeout,
	Transport: &http.Transport{
		MaxIdleConns:        10,
		MaxIdleConnsPerHost: 5,
		IdleConnTimeout:     90 * time.Second,
	},
}

// processDelivery attempts to deliver an alert, retrying transient failures
// with exponential backoff until MaxAttempts is reached.
func (d *Dispatcher) processDelivery(ctx context.Context, delivery *QueuedDelivery) {
	backoff := InitialBackoff

	for attempt := 1; attempt <= MaxAttempts; attempt++ {
		statusCode, err := d.attemptDelivery(ctx, delivery)
		if err == nil && statusCode >= 200 && statusCode < 300 {
			d.logger.Info("alert delivered",
				"delivery_id", delivery.DeliveryID,
				"event", delivery.Event,
				"status_code", statusCode,
				"attempt", attempt)
			return
		}

		retriable := err != nil || statusCode >= 500 || statusCode == http.StatusTooManyRequests
		if !retriable || attempt == MaxAttempts {
			d.logger.Warn("alert delivery dead",
				"delivery_id", delivery.DeliveryID,
				"event", delivery.Event,
				"status_code", statusCode,
				"attempts", attempt,
				"error", err)
			return
		}

		d.logger.Debug("alert delivery failed, retrying",
			"delivery_id", delivery.DeliveryID,
			"attempt", attempt,
			"backoff", backoff,
			"error", err)

		select {
		case <-time.After(backoff):
		case <-d.done:
			return
		case <-ctx.Done():
			return
		}
		backoff *= 2
	}
}

// attemptDelivery performs a single HTTP POST of the payload.
func (d *Dispatcher) attemptDelivery(ctx context.Context, delivery *QueuedDelivery) (int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, d.url, bytes.NewReader(delivery.Payload))
	if err != nil {
		return 0, fmt.Errorf("building request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("User-Agent", UserAgent)
	req.Header.Set("X-Backmon-Delivery", delivery.DeliveryID)
	req.Header.Set("X-Backmon-Event", delivery.Event)
	if d.secret != "" {
		req.Header.Set(SignatureHeader, Sign(d.secret, delivery.Payload))
	}

	resp, err := httpClient.Do(req)
	if err != nil {
		return 0, fmt.Errorf("posting alert: %w", err)
	}
	defer resp.Body.Close()

	// Drain so the connection can be reused.
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, 4096))

	return resp.StatusCode, nil
}

// Sign returns the hex HMAC-SHA256 of payload under secret.
func Sign(secret string, payload []byte) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write(payload)
	return hex.EncodeToString(mac.Sum(nil))
}
