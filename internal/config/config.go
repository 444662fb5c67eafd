// Copyright (c) 2025-2026 Oleg Ivanchenko
// SPDX-License-Identifier: GPL-3.0-or-later

package config

import (
	"fmt"
	"log/slog"
	"strings"

	"github.com/caarlos0/env/v11"
)

// knownWeakKeys contains default/example API keys that must be rejected.
var knownWeakKeys = []string{
	"change-me-now",
	"changeme",
	"secret",
	"troque-esta-chave-agora",
}

// MinAPIKeyLength is the minimum required length for the shared API key.
const MinAPIKeyLength = 16

// Config holds the application configuration loaded from environment variables.
type Config struct {
	APIKey     string `env:"BACKMON_API_KEY,required"`
	DBPath     string `env:"BACKMON_DB_PATH" envDefault:"./data/backmon.db"`
	ServerHost string `env:"BACKMON_SERVER_HOST" envDefault:"0.0.0.0"`
	ServerPort int    `env:"BACKMON_SERVER_PORT" envDefault:"8080"`
	Env        string `env:"BACKMON_ENV" envDefault:"development"`
	LogLevel   string `env:"BACKMON_LOG_LEVEL" envDefault:"info"`

	// Alert webhook configuration (optional). When set, events with state
	// Error are pushed to this URL by the alert dispatcher.
	AlertWebhookURL    string `env:"BACKMON_ALERT_WEBHOOK_URL"`
	AlertWebhookSecret string `env:"BACKMON_ALERT_WEBHOOK_SECRET"`

	// RetentionDays enables age-based pruning when > 0. The per-client
	// retention cap applies regardless.
	RetentionDays int `env:"BACKMON_RETENTION_DAYS" envDefault:"0"`
}

// IsDevelopment returns true if the application is running in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == "development"
}

// ServerAddr returns the full server address in host:port format.
func (c Config) ServerAddr() string {
	return fmt.Sprintf("%s:%d", c.ServerHost, c.ServerPort)
}

// AlertsEnabled returns true if an alert webhook is configured.
func (c Config) AlertsEnabled() bool {
	return c.AlertWebhookURL != ""
}

// Load parses environment variables and returns a Config struct.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	cfg.APIKey = strings.TrimSpace(cfg.APIKey)

	if len(cfg.APIKey) < MinAPIKeyLength {
		return nil, fmt.Errorf("BACKMON_API_KEY must be at least %d bytes long, got %d bytes; "+
			"generate a secure key with: openssl rand -hex 32",
			MinAPIKeyLength, len(cfg.APIKey))
	}

	for _, weak := range knownWeakKeys {
		if cfg.APIKey == weak {
			return nil, fmt.Errorf("BACKMON_API_KEY is a known default value and must not be used; " +
				"generate a secure key with: openssl rand -hex 32")
		}
	}

	if cfg.RetentionDays < 0 {
		return nil, fmt.Errorf("BACKMON_RETENTION_DAYS must be >= 0, got %d", cfg.RetentionDays)
	}

	if cfg.AlertWebhookURL != "" && cfg.AlertWebhookSecret == "" {
		slog.Warn("BACKMON_ALERT_WEBHOOK_URL is set without BACKMON_ALERT_WEBHOOK_SECRET; " +
			"alert deliveries will not be signed")
	}

	return cfg, nil
}
