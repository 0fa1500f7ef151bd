// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"

	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/tables"
	"github.com/tomtom215/vulcanus/internal/train"
)

// DefaultConfigPaths are searched in order when no path is given.
var DefaultConfigPaths = []string{
	"config.yaml",
	"config.yml",
	"/etc/vulcanus/config.yaml",
	"/etc/vulcanus/config.yml",
}

// ConfigPathEnvVar overrides the config file path.
const ConfigPathEnvVar = "CONFIG_PATH"

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            8000,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    60 * time.Second,
			ShutdownTimeout: 10 * time.Second,
			Environment:     "development",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
		Data: DataConfig{
			Formulation: tables.Source{Path: "data/formulation.csv"},
			Evaluation:  tables.Source{Path: "data/evaluation.csv"},
		},
		Training: train.DefaultConfig(),
		Retrain: RetrainConfig{
			Timeout:       10 * time.Minute,
			LoadFromStore: false,
		},
		Storage: StorageConfig{
			Backend: storage.BackendFile,
			Path:    "data/models",
		},
		Cache: CacheConfig{
			Enabled:         true,
			Capacity:        1024,
			TTL:             10 * time.Minute,
			CleanupInterval: time.Minute,
		},
		Security: SecurityConfig{
			CORSOrigins:     []string{"*"},
			RateLimitReqs:   100,
			RateLimitWindow: time.Minute,
			MaxRequestBytes: 1 << 20,
		},
	}
}

// Load reads the configuration. An empty path searches CONFIG_PATH and
// DefaultConfigPaths; a missing file is not an error there, but an
// explicit path must exist.
func Load(path string) (*Config, error) {
	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path == "" {
		path = findConfigFile()
	} else if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("config file %s: %w", path, err)
	}
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}
	if err := processSliceFields(k); err != nil {
		return nil, fmt.Errorf("failed to process slice fields: %w", err)
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func findConfigFile() string {
	if p := os.Getenv(ConfigPathEnvVar); p != "" {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	for _, p := range DefaultConfigPaths {
		if _, err := os.Stat(p); err == nil {
			return p
		}
	}
	return ""
}

// sliceConfigPaths arrive from the environment as comma-separated strings.
var sliceConfigPaths = []string{
	"training.candidates",
	"security.cors_origins",
}

func processSliceFields(k *koanf.Koanf) error {
	for _, path := range sliceConfigPaths {
		s, ok := k.Get(path).(string)
		if !ok {
			continue
		}
		var parts []string
		for _, p := range strings.Split(s, ",") {
			if p = strings.TrimSpace(p); p != "" {
				parts = append(parts, p)
			}
		}
		if err := k.Set(path, parts); err != nil {
			return fmt.Errorf("failed to set %s: %w", path, err)
		}
	}
	return nil
}

// envMappings lists every recognized environment variable. Others are
// ignored.
var envMappings = map[string]string{
	"http_host":        "server.host",
	"http_port":        "server.port",
	"read_timeout":     "server.read_timeout",
	"write_timeout":    "server.write_timeout",
	"shutdown_timeout": "server.shutdown_timeout",
	"environment":      "server.environment",

	"log_level":  "logging.level",
	"log_format": "logging.format",
	"log_caller": "logging.caller",

	"formulation_path":   "data.formulation.path",
	"formulation_format": "data.formulation.format",
	"formulation_table":  "data.formulation.table",
	"evaluation_path":    "data.evaluation.path",
	"evaluation_format":  "data.evaluation.format",
	"evaluation_table":   "data.evaluation.table",

	"train_min_samples":            "training.min_samples",
	"train_test_ratio":             "training.test_ratio",
	"train_min_held_out":           "training.min_held_out",
	"train_seed":                   "training.seed",
	"train_workers":                "training.workers",
	"train_candidates":             "training.candidates",
	"train_forest_trees":           "training.forest_trees",
	"train_forest_max_depth":       "training.forest_max_depth",
	"train_boosting_stages":        "training.boosting_stages",
	"train_boosting_learning_rate": "training.boosting_learning_rate",
	"train_boosting_max_depth":     "training.boosting_max_depth",
	"train_tree_max_depth":         "training.tree_max_depth",
	"train_prune_unused_features":  "training.prune_unused_features",

	"retrain_interval":        "retrain.interval",
	"retrain_timeout":         "retrain.timeout",
	"retrain_load_from_store": "retrain.load_from_store",

	"model_store_backend":   "storage.backend",
	"model_store_path":      "storage.path",
	"model_store_in_memory": "storage.in_memory",

	"cache_enabled":          "cache.enabled",
	"cache_capacity":         "cache.capacity",
	"cache_ttl":              "cache.ttl",
	"cache_cleanup_interval": "cache.cleanup_interval",

	"cors_origins":        "security.cors_origins",
	"rate_limit_requests": "security.rate_limit_requests",
	"rate_limit_window":   "security.rate_limit_window",
	"disable_rate_limit":  "security.rate_limit_disabled",
	"max_request_bytes":   "security.max_request_bytes",
}

// envTransformFunc maps an environment variable to its koanf path, or ""
// to skip it.
//
//	HTTP_PORT        -> server.port
//	MODEL_STORE_PATH -> storage.path
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}
