// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/tables"
)

// Validate reports every configuration problem at once.
func (c *Config) Validate() error {
	return errors.Join(
		c.validateServer(),
		c.validateLogging(),
		c.validateData(),
		c.Training.Validate(),
		c.validateRetrain(),
		c.validateStorage(),
		c.validateCache(),
		c.validateSecurity(),
	)
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	if c.Server.ReadTimeout <= 0 || c.Server.WriteTimeout <= 0 {
		return errors.New("server read and write timeouts must be positive")
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch strings.ToLower(c.Logging.Format) {
	case "json", "console":
	default:
		return fmt.Errorf("logging.format must be json or console, got %q", c.Logging.Format)
	}
	switch strings.ToLower(c.Logging.Level) {
	case "trace", "debug", "info", "warn", "warning", "error", "fatal", "panic", "disabled", "off":
		return nil
	default:
		return fmt.Errorf("logging.level %q is not a known level", c.Logging.Level)
	}
}

func (c *Config) validateData() error {
	var errs []error
	for name, src := range map[string]tables.Source{
		"data.formulation": c.Data.Formulation,
		"data.evaluation":  c.Data.Evaluation,
	} {
		if src.Path == "" {
			errs = append(errs, fmt.Errorf("%s.path is required", name))
		}
		switch src.ResolvedFormat() {
		case tables.FormatCSV, tables.FormatDuckDB:
		default:
			errs = append(errs, fmt.Errorf("%s.format %q is not csv or duckdb", name, src.Format))
		}
	}
	return errors.Join(errs...)
}

func (c *Config) validateRetrain() error {
	if c.Retrain.Interval < 0 {
		return fmt.Errorf("retrain.interval must not be negative, got %s", c.Retrain.Interval)
	}
	if c.Retrain.Timeout <= 0 {
		return fmt.Errorf("retrain.timeout must be positive, got %s", c.Retrain.Timeout)
	}
	if c.Retrain.LoadFromStore && !c.Storage.Enabled() {
		return errors.New("retrain.load_from_store requires a model store")
	}
	return nil
}

func (c *Config) validateStorage() error {
	switch c.Storage.Backend {
	case BackendNone:
		return nil
	case storage.BackendFile:
		if c.Storage.Path == "" {
			return errors.New("storage.path is required for the file backend")
		}
	case storage.BackendBadger:
		if c.Storage.Path == "" && !c.Storage.InMemory {
			return errors.New("storage.path is required for the badger backend unless in_memory is set")
		}
	default:
		return fmt.Errorf("storage.backend must be file, badger or none, got %q", c.Storage.Backend)
	}
	return nil
}

func (c *Config) validateCache() error {
	if c.Cache.Enabled && (c.Cache.Capacity < 1 || c.Cache.TTL <= 0) {
		return errors.New("cache.capacity and cache.ttl must be positive when the cache is enabled")
	}
	if c.Cache.CleanupInterval < 0 {
		return errors.New("cache.cleanup_interval must not be negative")
	}
	return nil
}

func (c *Config) validateSecurity() error {
	if !c.Security.RateLimitDisabled && (c.Security.RateLimitReqs < 1 || c.Security.RateLimitWindow <= 0) {
		return errors.New("security.rate_limit_requests and rate_limit_window must be positive")
	}
	if c.Security.MaxRequestBytes < 1 {
		return fmt.Errorf("security.max_request_bytes must be positive, got %d", c.Security.MaxRequestBytes)
	}
	return nil
}
