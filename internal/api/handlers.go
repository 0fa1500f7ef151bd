// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package api serves the prediction HTTP API.
//
// Handlers read the current inference.ServingContext from a Holder on every
// request and never mutate it. A retrain publishes a new context; requests
// already running finish against the one they loaded.
package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/vulcanus/internal/cache"
	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/insight"
	"github.com/tomtom215/vulcanus/internal/logging"
	"github.com/tomtom215/vulcanus/internal/train"
)

// Retrainer starts an asynchronous training run. It returns
// train.ErrTrainingInProgress when one is already running.
type Retrainer interface {
	TriggerRetrain() error
}

// HandlerConfig wires a Handler.
type HandlerConfig struct {
	Holder    *inference.Holder
	Cache     *cache.Predictions
	Retrainer Retrainer
	Rules     insight.Rules

	// MaxRequestBytes bounds request bodies. Zero means 1 MiB.
	MaxRequestBytes int64
}

// Handler implements every endpoint.
type Handler struct {
	holder    *inference.Holder
	cache     *cache.Predictions
	retrainer Retrainer
	rules     insight.Rules
	maxBody   int64
	startTime time.Time
}

// NewHandler creates a Handler. A nil Rules uses insight.DefaultRules.
func NewHandler(cfg HandlerConfig) *Handler {
	if cfg.Holder == nil {
		cfg.Holder = &inference.Holder{}
	}
	if cfg.Rules == nil {
		cfg.Rules = insight.DefaultRules()
	}
	if cfg.MaxRequestBytes <= 0 {
		cfg.MaxRequestBytes = 1 << 20
	}
	return &Handler{
		holder:    cfg.Holder,
		cache:     cfg.Cache,
		retrainer: cfg.Retrainer,
		rules:     cfg.Rules,
		maxBody:   cfg.MaxRequestBytes,
		startTime: time.Now(),
	}
}

// serving loads the current context or answers 503.
func (h *Handler) serving(w http.ResponseWriter, r *http.Request) (*inference.ServingContext, bool) {
	sc, err := h.holder.Load()
	if errors.Is(err, inference.ErrNotReady) {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Models are not trained yet", nil)
		return nil, false
	}
	if err != nil {
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Serving context unavailable", err)
		return nil, false
	}
	return sc, true
}

// HealthStatus is the body of the health endpoints.
type HealthStatus struct {
	Status        string     `json:"status"`
	UptimeSeconds float64    `json:"uptime_seconds"`
	Models        int        `json:"models"`
	Generation    uint64     `json:"generation"`
	ServingSince  *time.Time `json:"serving_since,omitempty"`
}

// HealthLive answers 200 while the process runs.
func (h *Handler) HealthLive(w http.ResponseWriter, r *http.Request) {
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:        "alive",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
	}, time.Now())
}

// HealthReady answers 200 once a serving context has been published.
func (h *Handler) HealthReady(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, err := h.holder.Load()
	if err != nil {
		respondJSON(w, http.StatusServiceUnavailable, &APIResponse{
			Status:   "error",
			Data:     HealthStatus{Status: "not_ready", UptimeSeconds: time.Since(h.startTime).Seconds()},
			Metadata: metadata(r, start),
			Error:    &APIError{Code: ErrCodeServiceUnavailable, Message: "Models are not trained yet"},
		})
		return
	}
	since := sc.CreatedAt()
	respondSuccess(w, r, http.StatusOK, HealthStatus{
		Status:        "ready",
		UptimeSeconds: time.Since(h.startTime).Seconds(),
		Models:        sc.Registry().Len(),
		Generation:    sc.Generation(),
		ServingSince:  &since,
	}, start)
}

// Retrain starts a training run in the background.
func (h *Handler) Retrain(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	if h.retrainer == nil {
		respondError(w, r, http.StatusServiceUnavailable, ErrCodeServiceUnavailable, "Retraining is not available", nil)
		return
	}
	if err := h.retrainer.TriggerRetrain(); err != nil {
		if errors.Is(err, train.ErrTrainingInProgress) {
			respondError(w, r, http.StatusConflict, ErrCodeConflict, "A training run is already in progress", nil)
			return
		}
		respondError(w, r, http.StatusInternalServerError, ErrCodeInternal, "Failed to start training", err)
		return
	}
	logging.Ctx(r.Context()).Info().Msg("Retrain requested")
	respondSuccess(w, r, http.StatusAccepted, map[string]string{"status": "started"}, start)
}
