// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package config loads the service configuration.
//
// Values are layered with koanf: built-in defaults first, then an optional
// YAML file, then a fixed set of environment variables. Later layers win.
//
//	server:
//	  port: 8000
//	data:
//	  formulation: {path: /data/formulation.csv}
//	  evaluation:  {path: /data/evaluation.csv}
//	training:
//	  seed: 42
//	  candidates: [linear, random_forest, gradient_boosting]
//	storage:
//	  backend: badger
//	  path: /data/models
package config

import (
	"net"
	"strconv"
	"time"

	"github.com/tomtom215/vulcanus/internal/tables"
	"github.com/tomtom215/vulcanus/internal/train"
)

// Config is the complete service configuration.
type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Logging  LoggingConfig  `koanf:"logging"`
	Data     DataConfig     `koanf:"data"`
	Training train.Config   `koanf:"training"`
	Retrain  RetrainConfig  `koanf:"retrain"`
	Storage  StorageConfig  `koanf:"storage"`
	Cache    CacheConfig    `koanf:"cache"`
	Security SecurityConfig `koanf:"security"`
}

// ServerConfig configures the HTTP listener.
type ServerConfig struct {
	Host            string        `koanf:"host"`
	Port            int           `koanf:"port"`
	ReadTimeout     time.Duration `koanf:"read_timeout"`
	WriteTimeout    time.Duration `koanf:"write_timeout"`
	ShutdownTimeout time.Duration `koanf:"shutdown_timeout"`
	Environment     string        `koanf:"environment"`
}

// LoggingConfig mirrors logging.Config.
type LoggingConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
	Caller bool   `koanf:"caller"`
}

// DataConfig locates the two input tables.
type DataConfig struct {
	Formulation tables.Source `koanf:"formulation"`
	Evaluation  tables.Source `koanf:"evaluation"`
}

// RetrainConfig controls when models are rebuilt.
type RetrainConfig struct {
	// Interval retrains periodically. Zero disables the schedule; on-demand
	// retraining through the API is always available.
	Interval time.Duration `koanf:"interval"`

	// Timeout bounds one training run.
	Timeout time.Duration `koanf:"timeout"`

	// LoadFromStore serves stored models at startup instead of training,
	// when the store holds any.
	LoadFromStore bool `koanf:"load_from_store"`
}

// StorageConfig selects the model store.
type StorageConfig struct {
	// Backend is file, badger or none.
	Backend  string `koanf:"backend"`
	Path     string `koanf:"path"`
	InMemory bool   `koanf:"in_memory"`
}

// Enabled reports whether models are persisted.
func (s StorageConfig) Enabled() bool { return s.Backend != BackendNone }

// BackendNone disables model persistence.
const BackendNone = "none"

// CacheConfig configures the prediction cache.
type CacheConfig struct {
	Enabled  bool          `koanf:"enabled"`
	Capacity int           `koanf:"capacity"`
	TTL      time.Duration `koanf:"ttl"`

	// CleanupInterval is how often expired entries are swept.
	CleanupInterval time.Duration `koanf:"cleanup_interval"`
}

// SecurityConfig holds the HTTP hardening settings.
type SecurityConfig struct {
	CORSOrigins       []string      `koanf:"cors_origins"`
	RateLimitReqs     int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	RateLimitDisabled bool          `koanf:"rate_limit_disabled"`
	MaxRequestBytes   int64         `koanf:"max_request_bytes"`
}

// Addr returns host:port.
func (s ServerConfig) Addr() string {
	return net.JoinHostPort(s.Host, strconv.Itoa(s.Port))
}
