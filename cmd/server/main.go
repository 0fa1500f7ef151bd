// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package main is the entry point for the Vulcanus prediction server.
//
// The server initializes components in the following order:
//
//  1. Configuration: defaults, optional config.yaml and environment (koanf v2)
//  2. Logging: zerolog with the configured level and format
//  3. Model store: file or Badger backend, unless disabled
//  4. Pipeline: table loading, training and restore
//  5. Supervisor tree: TrainingService in the model layer, HTTPServerService
//     in the api layer
//
// The HTTP API answers 503 on prediction endpoints until the first serving
// context is published. SIGINT and SIGTERM shut the tree down gracefully.
//
// Usage:
//
//	./vulcanus-server                       # search CONFIG_PATH, ./config.yaml, ...
//	CONFIG_PATH=/etc/vulcanus/prod.yaml ./vulcanus-server
//	FORMULATION_PATH=data/f.csv EVALUATION_PATH=data/e.csv ./vulcanus-server
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/tomtom215/vulcanus/internal/api"
	"github.com/tomtom215/vulcanus/internal/cache"
	"github.com/tomtom215/vulcanus/internal/config"
	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/logging"
	"github.com/tomtom215/vulcanus/internal/pipeline"
	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/supervisor"
	"github.com/tomtom215/vulcanus/internal/supervisor/services"
)

func main() {
	cfg, err := config.Load("")
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to load configuration")
	}

	logging.Init(logging.Config{
		Level:  cfg.Logging.Level,
		Format: cfg.Logging.Format,
		Caller: cfg.Logging.Caller,
	})

	logging.Info().
		Str("formulation", cfg.Data.Formulation.Path).
		Str("evaluation", cfg.Data.Evaluation.Path).
		Str("storage", cfg.Storage.Backend).
		Strs("candidates", cfg.Training.Candidates).
		Msg("Starting Vulcanus")

	var store storage.ModelStore
	if cfg.Storage.Enabled() {
		store, err = storage.Open(storage.Config{
			Backend:  cfg.Storage.Backend,
			Path:     cfg.Storage.Path,
			InMemory: cfg.Storage.InMemory,
		})
		if err != nil {
			logging.Fatal().Err(err).Msg("Failed to open model store")
		}
		defer func() {
			if err := store.Close(); err != nil {
				logging.Error().Err(err).Msg("Error closing model store")
			}
		}()
	}

	pipe, err := pipeline.New(pipeline.Config{
		Formulation: cfg.Data.Formulation,
		Evaluation:  cfg.Data.Evaluation,
		Training:    cfg.Training,
	}, store, logging.WithComponent("pipeline"))
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create training pipeline")
	}

	holder := &inference.Holder{}
	var predictions *cache.Predictions
	if cfg.Cache.Enabled {
		predictions = cache.NewPredictions(cfg.Cache.Capacity, cfg.Cache.TTL)
	}

	tree, err := supervisor.NewSupervisorTree(logging.NewSlogLogger("supervisor"), supervisor.TreeConfig{
		ShutdownTimeout: cfg.Server.ShutdownTimeout,
	})
	if err != nil {
		logging.Fatal().Err(err).Msg("Failed to create supervisor tree")
	}

	var purger services.Purger
	if predictions != nil {
		purger = predictions
	}
	training := services.NewTrainingService(pipe, holder, purger, services.TrainingServiceConfig{
		LoadFromStore: cfg.Retrain.LoadFromStore,
		Interval:      cfg.Retrain.Interval,
		Timeout:       cfg.Retrain.Timeout,
	}, logging.WithComponent("supervisor"))
	tree.AddModelService(training)
	if predictions != nil {
		tree.AddModelService(services.NewCacheJanitorService(predictions, cfg.Cache.CleanupInterval, logging.WithComponent("supervisor")))
	}

	handler := api.NewHandler(api.HandlerConfig{
		Holder:          holder,
		Cache:           predictions,
		Retrainer:       training,
		MaxRequestBytes: cfg.Security.MaxRequestBytes,
	})
	mw := api.DefaultChiMiddlewareConfig()
	mw.CORSAllowedOrigins = cfg.Security.CORSOrigins
	mw.RateLimitRequests = cfg.Security.RateLimitReqs
	mw.RateLimitWindow = cfg.Security.RateLimitWindow
	mw.RateLimitDisabled = cfg.Security.RateLimitDisabled

	server := &http.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           api.NewRouter(handler, api.RouterConfig{Middleware: mw, RequestTimeout: cfg.Server.WriteTimeout}),
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: 10 * time.Second,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       60 * time.Second,
	}
	tree.AddAPIService(services.NewHTTPServerService(server, server.Addr, cfg.Server.ShutdownTimeout, logging.WithComponent("supervisor")))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		logging.Info().Str("signal", sig.String()).Msg("Received shutdown signal")
		cancel()
	}()

	if err := <-tree.ServeBackground(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logging.Error().Err(err).Msg("Supervisor tree error")
	}

	unstopped, _ := tree.UnstoppedServiceReport()
	for _, svc := range unstopped {
		logging.Warn().Str("service", svc.Name).Msg("Service failed to stop within timeout")
	}

	logging.Info().Msg("Vulcanus stopped")
}
