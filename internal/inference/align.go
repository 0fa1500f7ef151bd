// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package inference serves predictions for new formulations.
//
// Every trained model carries its own ordered feature schema. Align maps a
// request-scoped Formulation onto one schema: materials the schema does not
// know are ignored, schema materials the formulation omits are zero, and the
// vector always has exactly the schema's length and order.
//
// ServingContext bundles a model registry with the feature matrix it was
// trained from. It is immutable; a retrain publishes a new context through a
// Holder instead of mutating the old one, so request handlers read without
// locks.
package inference

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/vulcanus/internal/formulation"
)

// Sentinel errors wrapped by *PredictionError.
var (
	// ErrInvalidAmount is returned for a negative or non-finite amount on a
	// schema column.
	ErrInvalidAmount = errors.New("invalid amount")

	// ErrNonFinitePrediction is returned when a model yields NaN or Inf.
	ErrNonFinitePrediction = errors.New("non-finite prediction")
)

// Formulation maps material names to amounts for one request. It may name
// materials no model knows and omit materials every model knows.
type Formulation map[string]float64

// FromComponents builds a Formulation, trimming names and summing repeats.
func FromComponents(components []formulation.Component) Formulation {
	f := make(Formulation, len(components))
	for _, c := range components {
		f[strings.TrimSpace(c.Material)] += c.Amount
	}
	return f
}

// Components returns the formulation sorted by material name.
func (f Formulation) Components() []formulation.Component {
	out := make([]formulation.Component, 0, len(f))
	for material, amount := range f {
		out = append(out, formulation.Component{Material: material, Amount: amount})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

// Align returns the feature vector a model with schema expects.
func Align(f Formulation, schema []string) ([]float64, error) {
	x := make([]float64, len(schema))
	for j, material := range schema {
		v, ok := f[material]
		if !ok {
			continue
		}
		if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
			return nil, fmt.Errorf("%w: %q = %v", ErrInvalidAmount, material, v)
		}
		x[j] = v
	}
	return x, nil
}

// PredictionError reports a test parameter that could not be predicted.
type PredictionError struct {
	Parameter string
	Err       error
}

// Error implements error.
func (e *PredictionError) Error() string {
	return fmt.Sprintf("predict %q: %v", e.Parameter, e.Err)
}

// Unwrap returns the underlying error.
func (e *PredictionError) Unwrap() error { return e.Err }
