// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package train

import (
	"errors"
	"fmt"
	"runtime"

	"github.com/tomtom215/vulcanus/internal/regress"
)

// Config controls a training run.
type Config struct {
	// MinSamples is the fewest (recipe, reading) pairs a parameter needs.
	MinSamples int `json:"min_samples" koanf:"min_samples"`

	// TestRatio is the held-out fraction of the aligned samples.
	TestRatio float64 `json:"test_ratio" koanf:"test_ratio"`

	// MinHeldOut is the smallest held-out set. Two samples keep R²
	// defined.
	MinHeldOut int `json:"min_held_out" koanf:"min_held_out"`

	// Seed drives the split and every candidate's randomness.
	Seed int64 `json:"seed" koanf:"seed"`

	// Workers bounds concurrent parameter training. 0 means runtime.NumCPU().
	Workers int `json:"workers" koanf:"workers"`

	// Candidates lists algorithm names in priority order. Earlier
	// candidates win R² ties.
	Candidates []string `json:"candidates" koanf:"candidates"`

	ForestTrees          int     `json:"forest_trees" koanf:"forest_trees"`
	ForestMaxDepth       int     `json:"forest_max_depth" koanf:"forest_max_depth"`
	BoostingStages       int     `json:"boosting_stages" koanf:"boosting_stages"`
	BoostingLearningRate float64 `json:"boosting_learning_rate" koanf:"boosting_learning_rate"`
	BoostingMaxDepth     int     `json:"boosting_max_depth" koanf:"boosting_max_depth"`
	TreeMaxDepth         int     `json:"tree_max_depth" koanf:"tree_max_depth"`

	// PruneUnusedFeatures drops materials that are zero in every aligned
	// row of a parameter from that parameter's schema.
	PruneUnusedFeatures bool `json:"prune_unused_features" koanf:"prune_unused_features"`
}

// DefaultConfig returns the standard training configuration.
func DefaultConfig() Config {
	return Config{
		MinSamples:           5,
		TestRatio:            0.2,
		MinHeldOut:           2,
		Seed:                 42,
		Candidates:           []string{regress.NameLinear, regress.NameForest, regress.NameBoosting},
		ForestTrees:          100,
		BoostingStages:       100,
		BoostingLearningRate: 0.1,
		BoostingMaxDepth:     3,
	}
}

// Validate checks the configuration.
func (c *Config) Validate() error {
	var errs []error
	if c.MinSamples < 3 {
		errs = append(errs, fmt.Errorf("min_samples must be at least 3, got %d", c.MinSamples))
	}
	if c.TestRatio <= 0 || c.TestRatio >= 1 {
		errs = append(errs, fmt.Errorf("test_ratio must be in (0, 1), got %v", c.TestRatio))
	}
	if c.MinHeldOut < 1 {
		errs = append(errs, fmt.Errorf("min_held_out must be at least 1, got %d", c.MinHeldOut))
	}
	if c.Workers < 0 {
		errs = append(errs, fmt.Errorf("workers must not be negative, got %d", c.Workers))
	}
	if len(c.Candidates) == 0 {
		errs = append(errs, errors.New("at least one candidate algorithm is required"))
	}
	seen := make(map[string]struct{}, len(c.Candidates))
	for _, name := range c.Candidates {
		if _, ok := factories[name]; !ok {
			errs = append(errs, fmt.Errorf("unknown candidate algorithm %q", name))
		}
		if _, dup := seen[name]; dup {
			errs = append(errs, fmt.Errorf("candidate algorithm %q listed twice", name))
		}
		seen[name] = struct{}{}
	}
	if c.BoostingLearningRate < 0 {
		errs = append(errs, fmt.Errorf("boosting_learning_rate must not be negative, got %v", c.BoostingLearningRate))
	}
	return errors.Join(errs...)
}

// workers resolves the worker pool size.
func (c *Config) workers() int {
	if c.Workers > 0 {
		return c.Workers
	}
	return runtime.NumCPU()
}

// factories builds unfitted candidates from the configuration.
var factories = map[string]func(c *Config) regress.Regressor{
	regress.NameLinear: func(*Config) regress.Regressor {
		return regress.NewLinear()
	},
	regress.NameTree: func(c *Config) regress.Regressor {
		return regress.NewTree(c.TreeMaxDepth, c.Seed)
	},
	regress.NameForest: func(c *Config) regress.Regressor {
		f := regress.NewForest(c.ForestTrees, c.Seed)
		f.MaxDepth = c.ForestMaxDepth
		return f
	},
	regress.NameBoosting: func(c *Config) regress.Regressor {
		b := regress.NewBoosting(c.Seed)
		if c.BoostingStages > 0 {
			b.NEstimators = c.BoostingStages
		}
		if c.BoostingLearningRate > 0 {
			b.LearningRate = c.BoostingLearningRate
		}
		if c.BoostingMaxDepth > 0 {
			b.MaxDepth = c.BoostingMaxDepth
		}
		return b
	},
}

// Algorithms returns every candidate name the trainer understands.
func Algorithms() []string {
	return []string{regress.NameLinear, regress.NameTree, regress.NameForest, regress.NameBoosting}
}
