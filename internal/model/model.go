// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package model defines the trained model and the registry that serves it.
//
// A TrainedModel always carries the ordered feature schema it was fit on.
// Inference never inspects the underlying regressor to discover its inputs;
// it aligns every request to Schema instead.
//
// # Thread Safety
//
// TrainedModel and Registry are immutable once constructed. Concurrent
// lookups and predictions need no locking.
package model

import (
	"errors"
	"fmt"
	"time"

	"github.com/tomtom215/vulcanus/internal/regress"
)

// ErrUnknownParameter is returned for lookups of a parameter with no model.
var ErrUnknownParameter = errors.New("no model for test parameter")

// CandidateScore records how one candidate regressor did on held-out data.
type CandidateScore struct {
	Algorithm string         `json:"algorithm"`
	Scores    regress.Scores `json:"scores"`
	Error     string         `json:"error,omitempty"`
}

// FeatureWeight is one entry of a model's feature importance ranking.
type FeatureWeight struct {
	Material string  `json:"material"`
	Weight   float64 `json:"weight"`
}

// TrainedModel is the selected regressor for one test parameter.
type TrainedModel struct {
	// Parameter is the test parameter this model predicts.
	Parameter string `json:"parameter"`

	// Algorithm names the selected regressor.
	Algorithm string `json:"algorithm"`

	// Regressor is the fitted model.
	Regressor regress.Regressor `json:"-"`

	// Schema is the ordered list of material columns Regressor expects.
	Schema []string `json:"schema"`

	// Scores are the held-out scores of the selected candidate.
	Scores regress.Scores `json:"scores"`

	// Candidates lists every candidate in priority order.
	Candidates []CandidateScore `json:"candidates"`

	// Importances ranks materials by weight, highest first. Empty for
	// regressors without importances.
	Importances []FeatureWeight `json:"importances,omitempty"`

	TrainSamples int       `json:"train_samples"`
	TestSamples  int       `json:"test_samples"`
	Seed         int64     `json:"seed"`
	TrainedAt    time.Time `json:"trained_at"`
}

// Validate checks that the model is usable for serving.
func (m *TrainedModel) Validate() error {
	if m == nil {
		return errors.New("nil model")
	}
	if m.Parameter == "" {
		return errors.New("model without test parameter")
	}
	if m.Regressor == nil {
		return fmt.Errorf("model %q has no regressor", m.Parameter)
	}
	seen := make(map[string]struct{}, len(m.Schema))
	for _, c := range m.Schema {
		if _, dup := seen[c]; dup {
			return fmt.Errorf("model %q schema repeats column %q", m.Parameter, c)
		}
		seen[c] = struct{}{}
	}
	return nil
}

// Registry maps test parameters to trained models.
type Registry struct {
	models map[string]*TrainedModel
	names  []string
}

// NewRegistry builds a registry. Models keep the given order.
func NewRegistry(models []*TrainedModel) (*Registry, error) {
	r := &Registry{models: make(map[string]*TrainedModel, len(models))}
	for _, m := range models {
		if err := m.Validate(); err != nil {
			return nil, err
		}
		if _, dup := r.models[m.Parameter]; dup {
			return nil, fmt.Errorf("duplicate model for %q", m.Parameter)
		}
		r.models[m.Parameter] = m
		r.names = append(r.names, m.Parameter)
	}
	return r, nil
}

// Get returns the model for a test parameter.
func (r *Registry) Get(parameter string) (*TrainedModel, error) {
	m, ok := r.models[parameter]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownParameter, parameter)
	}
	return m, nil
}

// Names returns the registered test parameters in order.
func (r *Registry) Names() []string {
	return append([]string(nil), r.names...)
}

// Models returns the registered models in order.
func (r *Registry) Models() []*TrainedModel {
	out := make([]*TrainedModel, len(r.names))
	for i, n := range r.names {
		out[i] = r.models[n]
	}
	return out
}

// Len returns the number of models.
func (r *Registry) Len() int { return len(r.names) }
