// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package pipeline builds serving contexts: it loads the formulation and
// evaluation tables, trains a registry or restores one from the model
// store, and bundles the result with its feature matrix.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/tables"
	"github.com/tomtom215/vulcanus/internal/train"
)

// ErrNoStoredModels is returned by Restore when the store is empty.
var ErrNoStoredModels = errors.New("model store holds no models")

// Config locates the input tables and configures training.
type Config struct {
	Formulation tables.Source
	Evaluation  tables.Source
	Training    train.Config
}

// Pipeline builds serving contexts. Store may be nil, in which case trained
// models are not persisted and Restore always fails.
type Pipeline struct {
	cfg     Config
	loader  tables.Loader
	trainer *train.Trainer
	store   storage.ModelStore
	logger  zerolog.Logger
}

// New creates a pipeline that loads tables with tables.NewMultiLoader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func New(cfg Config, store storage.ModelStore, logger zerolog.Logger) (*Pipeline, error) {
	return NewWithLoader(cfg, tables.NewMultiLoader(), store, logger)
}

// NewWithLoader creates a pipeline with a custom table loader.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewWithLoader(cfg Config, loader tables.Loader, store storage.ModelStore, logger zerolog.Logger) (*Pipeline, error) {
	if loader == nil {
		return nil, errors.New("pipeline requires a table loader")
	}
	trainer, err := train.NewTrainer(cfg.Training, logger)
	if err != nil {
		return nil, err
	}
	return &Pipeline{
		cfg:     cfg,
		loader:  loader,
		trainer: trainer,
		store:   store,
		logger:  logger.With().Str("component", "pipeline").Logger(),
	}, nil
}

// LoadTables reads both input tables concurrently.
func (p *Pipeline) LoadTables(ctx context.Context) (formulationTable, evaluationTable *tables.Table, err error) {
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		t, err := p.loader.Load(gctx, p.cfg.Formulation)
		if err != nil {
			return fmt.Errorf("load formulation table %s: %w", p.cfg.Formulation.Path, err)
		}
		formulationTable = t
		return nil
	})
	g.Go(func() error {
		t, err := p.loader.Load(gctx, p.cfg.Evaluation)
		if err != nil {
			return fmt.Errorf("load evaluation table %s: %w", p.cfg.Evaluation.Path, err)
		}
		evaluationTable = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, nil, err
	}
	return formulationTable, evaluationTable, nil
}

// LoadMatrix builds the feature matrix from the formulation table alone.
func (p *Pipeline) LoadMatrix(ctx context.Context) (*formulation.FeatureMatrix, error) {
	t, err := p.loader.Load(ctx, p.cfg.Formulation)
	if err != nil {
		return nil, fmt.Errorf("load formulation table %s: %w", p.cfg.Formulation.Path, err)
	}
	raw, err := formulation.RecipesFromTable(t)
	if err != nil {
		return nil, err
	}
	return formulation.BuildFeatureMatrix(raw)
}

// Train runs a full training pass, persists the registry when a store is
// configured and returns the resulting serving context. A store failure is
// logged and does not fail the run.
func (p *Pipeline) Train(ctx context.Context) (*inference.ServingContext, error) {
	formulationTable, evaluationTable, err := p.LoadTables(ctx)
	if err != nil {
		return nil, err
	}
	result, err := p.trainer.Run(ctx, formulationTable, evaluationTable)
	if err != nil {
		return nil, err
	}

	for _, skipped := range result.Report.Skipped() {
		p.logger.Warn().
			Str("parameter", skipped.Parameter).
			Str("status", string(skipped.Status)).
			Str("reason", skipped.Error).
			Msg("Test parameter not trained")
	}

	if p.store != nil {
		start := time.Now()
		if err := storage.SaveRegistry(ctx, p.store, result.Registry); err != nil {
			p.logger.Error().Err(err).Msg("Failed to persist trained models")
		} else {
			p.logger.Info().
				Int("models", result.Registry.Len()).
				Dur("duration", time.Since(start)).
				Msg("Trained models persisted")
		}
	}

	return inference.NewServingContext(result.Registry, result.Matrix, result.Report)
}

// Restore builds a serving context from the stored models and the current
// formulation table. The context carries no training report.
func (p *Pipeline) Restore(ctx context.Context) (*inference.ServingContext, error) {
	if p.store == nil {
		return nil, ErrNoStoredModels
	}
	registry, err := storage.LoadRegistry(ctx, p.store)
	if err != nil {
		return nil, fmt.Errorf("load stored models: %w", err)
	}
	if registry.Len() == 0 {
		return nil, ErrNoStoredModels
	}
	matrix, err := p.LoadMatrix(ctx)
	if err != nil {
		return nil, err
	}
	p.logger.Info().Int("models", registry.Len()).Msg("Restored models from store")
	return inference.NewServingContext(registry, matrix, nil)
}

// Build restores from the store when preferStore is set and the store holds
// models, and trains otherwise.
func (p *Pipeline) Build(ctx context.Context, preferStore bool) (*inference.ServingContext, error) {
	if preferStore {
		sc, err := p.Restore(ctx)
		if err == nil {
			return sc, nil
		}
		if !errors.Is(err, ErrNoStoredModels) {
			p.logger.Warn().Err(err).Msg("Restoring stored models failed, training instead")
		}
	}
	return p.Train(ctx)
}
