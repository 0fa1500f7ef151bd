// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package inference

import (
	"errors"
	"sort"
	"sync/atomic"
	"time"

	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/metrics"
	"github.com/tomtom215/vulcanus/internal/model"
	"github.com/tomtom215/vulcanus/internal/train"
)

// ErrNotReady is returned when no serving context has been published.
var ErrNotReady = errors.New("no serving context published")

// ServingContext is the read-only state request handlers share.
type ServingContext struct {
	registry   *model.Registry
	matrix     *formulation.FeatureMatrix
	report     *train.Report
	generation uint64
	createdAt  time.Time
}

// NewServingContext bundles a registry with its feature matrix. report may
// be nil when the models were loaded from a store rather than trained.
func NewServingContext(registry *model.Registry, matrix *formulation.FeatureMatrix, report *train.Report) (*ServingContext, error) {
	if registry == nil {
		return nil, errors.New("serving context requires a model registry")
	}
	if matrix == nil {
		return nil, errors.New("serving context requires a feature matrix")
	}
	return &ServingContext{
		registry:  registry,
		matrix:    matrix,
		report:    report,
		createdAt: time.Now().UTC(),
	}, nil
}

// Registry returns the models.
func (s *ServingContext) Registry() *model.Registry { return s.registry }

// Matrix returns the training feature matrix.
func (s *ServingContext) Matrix() *formulation.FeatureMatrix { return s.matrix }

// Report returns the training report, or nil.
func (s *ServingContext) Report() *train.Report { return s.report }

// Generation is assigned when the context is published. It is 0 for an
// unpublished context.
func (s *ServingContext) Generation() uint64 { return s.generation }

// CreatedAt returns when the context was built.
func (s *ServingContext) CreatedAt() time.Time { return s.createdAt }

// Predict predicts every test parameter for f.
func (s *ServingContext) Predict(f Formulation) Predictions {
	start := time.Now()
	p := PredictAll(s.registry, f)
	metrics.RecordPrediction(time.Since(start), p.Failed())
	return p
}

// UnknownMaterials lists the materials of f that are not a column of the
// feature matrix, sorted.
func (s *ServingContext) UnknownMaterials(f Formulation) []string {
	var out []string
	for material := range f {
		if _, ok := s.matrix.ColIndex(material); !ok {
			out = append(out, material)
		}
	}
	sort.Strings(out)
	return out
}

// Holder publishes the current ServingContext.
type Holder struct {
	current    atomic.Pointer[ServingContext]
	generation atomic.Uint64
}

// Publish makes a copy of s current under the next generation number and
// returns it.
func (h *Holder) Publish(s *ServingContext) *ServingContext {
	next := *s
	next.generation = h.generation.Add(1)
	h.current.Store(&next)
	return &next
}

// Load returns the current context.
func (h *Holder) Load() (*ServingContext, error) {
	s := h.current.Load()
	if s == nil {
		return nil, ErrNotReady
	}
	return s, nil
}

// Ready reports whether a context has been published.
func (h *Holder) Ready() bool { return h.current.Load() != nil }
