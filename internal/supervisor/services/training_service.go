// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package services provides the suture services of the server.
package services

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/metrics"
	"github.com/tomtom215/vulcanus/internal/train"
)

// ErrServiceNotRunning is returned by TriggerRetrain before Serve starts or
// after it returns.
var ErrServiceNotRunning = errors.New("training service is not running")

// Builder produces serving contexts. *pipeline.Pipeline satisfies it.
type Builder interface {
	// Build restores stored models when preferStore is set and trains
	// otherwise.
	Build(ctx context.Context, preferStore bool) (*inference.ServingContext, error)

	// Train always runs a full training pass.
	Train(ctx context.Context) (*inference.ServingContext, error)
}

// Purger drops cached predictions after a new context is published.
type Purger interface {
	Purge()
}

// TrainingServiceConfig holds configuration for the training service.
type TrainingServiceConfig struct {
	// LoadFromStore serves stored models at startup when there are any.
	LoadFromStore bool

	// Interval retrains periodically. Zero disables the schedule.
	Interval time.Duration

	// Timeout bounds one run. Zero means 30 minutes.
	Timeout time.Duration
}

// TrainingService builds the first serving context at startup and
// republishes a new one on every successful retrain. At most one run is in
// flight at a time.
type TrainingService struct {
	builder Builder
	holder  *inference.Holder
	purger  Purger
	config  TrainingServiceConfig
	logger  zerolog.Logger
	name    string

	// running guards the single in-flight run.
	running sync.Mutex
	runs    sync.WaitGroup

	ctxMu sync.Mutex
	ctx   context.Context
}

// NewTrainingService creates a training service. purger may be nil.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainingService(builder Builder, holder *inference.Holder, purger Purger, cfg TrainingServiceConfig, logger zerolog.Logger) *TrainingService {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 30 * time.Minute
	}
	return &TrainingService{
		builder: builder,
		holder:  holder,
		purger:  purger,
		config:  cfg,
		logger:  logger.With().Str("service", "training").Logger(),
		name:    "training-service",
	}
}

// Serve implements suture.Service. A failed run is logged and the service
// keeps serving the previous context, if any.
func (s *TrainingService) Serve(ctx context.Context) error {
	s.setContext(ctx)
	defer func() {
		s.setContext(nil)
		s.runs.Wait()
	}()

	s.logger.Info().
		Bool("load_from_store", s.config.LoadFromStore).
		Dur("interval", s.config.Interval).
		Msg("Training service starting")

	// A restart after a crash retrains; the store is only consulted for
	// the very first context.
	if s.running.TryLock() {
		preferStore := s.config.LoadFromStore && !s.holder.Ready()
		s.run(ctx, func(ctx context.Context) (*inference.ServingContext, error) {
			return s.builder.Build(ctx, preferStore)
		})
		s.running.Unlock()
	}

	var tick <-chan time.Time
	if s.config.Interval > 0 {
		ticker := time.NewTicker(s.config.Interval)
		defer ticker.Stop()
		tick = ticker.C
	}

	for {
		select {
		case <-ctx.Done():
			s.logger.Info().Msg("Training service shutting down")
			return ctx.Err()

		case <-tick:
			if !s.running.TryLock() {
				s.logger.Debug().Msg("Scheduled retrain skipped, a run is in progress")
				continue
			}
			s.run(ctx, s.builder.Train)
			s.running.Unlock()
		}
	}
}

// TriggerRetrain starts a training run in the background. It returns
// train.ErrTrainingInProgress when a run is already in flight.
func (s *TrainingService) TriggerRetrain() error {
	// ctxMu orders runs.Add before the Wait in Serve.
	s.ctxMu.Lock()
	defer s.ctxMu.Unlock()
	if s.ctx == nil {
		return ErrServiceNotRunning
	}
	if !s.running.TryLock() {
		return train.ErrTrainingInProgress
	}
	ctx := s.ctx
	s.runs.Add(1)
	go func() {
		defer s.runs.Done()
		defer s.running.Unlock()
		s.run(ctx, s.builder.Train)
	}()
	return nil
}

// run executes one build under the configured timeout and publishes the
// result. The caller holds s.running.
func (s *TrainingService) run(ctx context.Context, build func(context.Context) (*inference.ServingContext, error)) {
	runCtx, cancel := context.WithTimeout(ctx, s.config.Timeout)
	defer cancel()

	start := time.Now()
	sc, err := build(runCtx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		s.logger.Error().Err(err).Dur("duration", time.Since(start)).Msg("Training run failed")
		return
	}

	published := s.holder.Publish(sc)
	metrics.SetServing(published.Registry().Len(), published.Generation())
	if s.purger != nil {
		s.purger.Purge()
	}

	event := s.logger.Info().
		Int("models", published.Registry().Len()).
		Uint64("generation", published.Generation()).
		Dur("duration", time.Since(start))
	if report := published.Report(); report != nil {
		event = event.
			Int("trained", report.Trained).
			Int("insufficient_data", report.InsufficientData).
			Int("fit_errors", report.FitErrors)
	} else {
		event = event.Str("source", "store")
	}
	event.Msg("Serving context published")
}

func (s *TrainingService) setContext(ctx context.Context) {
	s.ctxMu.Lock()
	s.ctx = ctx
	s.ctxMu.Unlock()
}

// String implements fmt.Stringer for suture's event log.
func (s *TrainingService) String() string {
	return s.name
}
