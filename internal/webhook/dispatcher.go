// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package webhook

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Dispatcher queues alert events and delivers them with a small worker
// pool. Delivery is best-effort: a full queue or a dead delivery never
// blocks or fails ingestion.
type Dispatcher struct {
	url     string
	secret  string
	logger  *slog.Logger
	queue   chan *QueuedDelivery
	workers int
	wg      sync.WaitGroup
	done    chan struct{}
	mu      sync.RWMutex
	running bool
}

// QueuedDelivery represents a delivery queued for processing.
type QueuedDelivery struct {
	DeliveryID string
	Event      string
	Payload    []byte
}

// Config holds dispatcher configuration.
type Config struct {
	URL       string // Target webhook URL
	Secret    string // HMAC signing secret; empty disables signing
	Workers   int    // Number of concurrent delivery workers
	QueueSize int    // Bounded queue capacity
}

// DefaultConfig returns default dispatcher configuration for the given
// target URL and secret.
func DefaultConfig(url, secret string) Config {
	return Config{
		URL:       url,
		Secret:    secret,
		Workers:   3,
		QueueSize: 100,
	}
}

// NewDispatcher creates a new alert dispatcher.
func NewDispatcher(cfg Config, logger *slog.Logger) *Dispatcher {
	if cfg.Workers <= 0 {
		cfg.Workers = 3
	}
	if cfg.QueueSize <= 0 {
		cfg.QueueSize = 100
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Dispatcher{
		url:     cfg.URL,
		secret:  cfg.Secret,
		logger:  logger,
		queue:   make(chan *QueuedDelivery, cfg.QueueSize),
		workers: cfg.Workers,
		done:    make(chan struct{}),
	}
}

// Start starts the dispatcher workers.
func (d *Dispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	if d.running {
		d.mu.Unlock()
		return
	}
	d.running = true
	d.mu.Unlock()

	d.logger.Info("starting alert dispatcher", "workers", d.workers, "url", d.url)

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(ctx, i)
	}
}

// Stop stops the dispatcher and waits for workers to finish.
func (d *Dispatcher) Stop() {
	d.mu.Lock()
	if !d.running {
		d.mu.Unlock()
		return
	}
	d.running = false
	d.mu.Unlock()

	d.logger.Info("stopping alert dispatcher")
	close(d.done)
	d.wg.Wait()
	d.logger.Info("alert dispatcher stopped")
}

// worker processes queued deliveries.
func (d *Dispatcher) worker(ctx context.Context, id int) {
	defer d.wg.Done()
	d.logger.Debug("alert worker started", "worker_id", id)

	for {
		select {
		case <-d.done:
			d.logger.Debug("alert worker stopping", "worker_id", id)
			return
		case <-ctx.Done():
			d.logger.Debug("alert worker context cancelled", "worker_id", id)
			return
		case delivery := <-d.queue:
			d.processDelivery(ctx, delivery)
		}
	}
}

// Dispatch queues an alert event for delivery. Returns immediately; if the
// queue is full the event is dropped with a warning.
func (d *Dispatcher) Dispatch(event *Event) {
	d.mu.RLock()
	running := d.running
	d.mu.RUnlock()

	if !running {
		d.logger.Warn("dispatcher not running, dropping alert", "event_type", event.Type)
		return
	}

	payload, err := json.Marshal(event)
	if err != nil {
		d.logger.Error("failed to marshal alert payload", "error", err, "event_type", event.Type)
		return
	}

	delivery := &QueuedDelivery{
		DeliveryID: uuid.NewString(),
		Event:      event.Type,
		Payload:    payload,
	}

	select {
	case d.queue <- delivery:
		d.logger.Debug("alert queued", "delivery_id", delivery.DeliveryID, "event", delivery.Event)
	default:
		d.logger.Warn("alert queue full, dropping alert",
			"delivery_id", delivery.DeliveryID,
			"event", delivery.Event)
	}
}
