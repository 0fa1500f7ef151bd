// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package api

import (
	"net/http"
	"time"

	"github.com/tomtom215/vulcanus/internal/model"
)

// ModelSummary describes one served model.
type ModelSummary struct {
	Parameter    string                 `json:"parameter"`
	Algorithm    string                 `json:"algorithm"`
	SchemaSize   int                    `json:"schema_size"`
	R2           float64                `json:"r2"`
	MAE          float64                `json:"mae"`
	MSE          float64                `json:"mse"`
	TrainSamples int                    `json:"train_samples"`
	TestSamples  int                    `json:"test_samples"`
	TrainedAt    time.Time              `json:"trained_at"`
	Candidates   []model.CandidateScore `json:"candidates,omitempty"`
	Importances  []model.FeatureWeight  `json:"importances,omitempty"`
}

// ModelsResponse lists the served models.
type ModelsResponse struct {
	Generation uint64         `json:"generation"`
	Models     []ModelSummary `json:"models"`
}

// Summarize converts a trained model for the API.
func Summarize(m *model.TrainedModel) ModelSummary {
	return ModelSummary{
		Parameter:    m.Parameter,
		Algorithm:    m.Algorithm,
		SchemaSize:   len(m.Schema),
		R2:           m.Scores.R2,
		MAE:          m.Scores.MAE,
		MSE:          m.Scores.MSE,
		TrainSamples: m.TrainSamples,
		TestSamples:  m.TestSamples,
		TrainedAt:    m.TrainedAt,
		Candidates:   m.Candidates,
		Importances:  m.Importances,
	}
}

// Models lists every served model in registry order.
func (h *Handler) Models(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, ok := h.serving(w, r)
	if !ok {
		return
	}
	models := sc.Registry().Models()
	out := ModelsResponse{Generation: sc.Generation(), Models: make([]ModelSummary, len(models))}
	for i, m := range models {
		out.Models[i] = Summarize(m)
	}
	respondSuccess(w, r, http.StatusOK, out, start)
}

// ModelReport returns the report of the run that built the served models.
func (h *Handler) ModelReport(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, ok := h.serving(w, r)
	if !ok {
		return
	}
	report := sc.Report()
	if report == nil {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Served models were loaded from the store; no training report is available", nil)
		return
	}
	respondSuccess(w, r, http.StatusOK, report, start)
}
