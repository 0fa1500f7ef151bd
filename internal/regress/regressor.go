// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package regress provides the supervised regressors used to model compound
// test parameters.
//
// Every regressor satisfies the same fit/predict contract, so the trainer can
// treat them as interchangeable candidates:
//
//   - Linear: ordinary least squares with an intercept, solved as the
//     minimum-norm solution through an SVD so that formulations with more
//     materials than recipes still fit.
//   - Tree: a CART regression tree using squared error.
//   - Forest: bootstrap-aggregated trees.
//   - Boosting: least-squares gradient boosted trees.
//
// All randomness comes from the Seed field of each regressor, so fitting the
// same data twice yields the same model.
//
// # Persistence
//
// Concrete regressors keep their learned state in exported fields and are
// registered with encoding/gob, which lets the storage package persist a
// Regressor interface value directly.
package regress

import (
	"encoding/gob"
	"errors"
	"fmt"
	"math"
)

// Sentinel errors.
var (
	// ErrNotFitted is returned by Predict before a successful Fit.
	ErrNotFitted = errors.New("regressor not fitted")

	// ErrDimension is returned for empty, ragged or mismatched inputs.
	ErrDimension = errors.New("dimension mismatch")

	// ErrNonFinite is returned when an input contains NaN or Inf.
	ErrNonFinite = errors.New("non-finite value")

	// ErrConstantTarget is returned when every training label is equal.
	ErrConstantTarget = errors.New("constant target")
)

// Regressor is a single-output supervised regression model.
type Regressor interface {
	// Name returns the algorithm identifier.
	Name() string

	// Fit learns from rows of X and labels y.
	Fit(X [][]float64, y []float64) error

	// Predict returns the estimate for one feature vector.
	Predict(x []float64) (float64, error)
}

// FeatureImporter is implemented by regressors that can rank their inputs.
// The returned slice is aligned with the feature columns and sums to 1, or is
// all zero when the model never split.
type FeatureImporter interface {
	FeatureImportances() []float64
}

// Algorithm names.
const (
	NameLinear   = "linear"
	NameTree     = "decision_tree"
	NameForest   = "random_forest"
	NameBoosting = "gradient_boosting"
)

// validateFit checks training input and returns the feature count.
func validateFit(X [][]float64, y []float64) (int, error) {
	if len(X) == 0 {
		return 0, fmt.Errorf("%w: no samples", ErrDimension)
	}
	if len(X) != len(y) {
		return 0, fmt.Errorf("%w: %d rows but %d labels", ErrDimension, len(X), len(y))
	}
	p := len(X[0])
	for i, row := range X {
		if len(row) != p {
			return 0, fmt.Errorf("%w: row %d has %d features, want %d", ErrDimension, i, len(row), p)
		}
		for _, v := range row {
			if !finite(v) {
				return 0, fmt.Errorf("%w: row %d", ErrNonFinite, i)
			}
		}
	}
	constant := true
	for i, v := range y {
		if !finite(v) {
			return 0, fmt.Errorf("%w: label %d", ErrNonFinite, i)
		}
		if v != y[0] {
			constant = false
		}
	}
	if constant {
		return 0, ErrConstantTarget
	}
	return p, nil
}

// validatePredict checks one input vector against the fitted width.
func validatePredict(fitted bool, x []float64, p int) error {
	if !fitted {
		return ErrNotFitted
	}
	if len(x) != p {
		return fmt.Errorf("%w: got %d features, want %d", ErrDimension, len(x), p)
	}
	for _, v := range x {
		if !finite(v) {
			return ErrNonFinite
		}
	}
	return nil
}

func finite(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0)
}

// normalize scales v to sum to 1 in place. An all-zero v is left as is.
func normalize(v []float64) []float64 {
	var total float64
	for _, x := range v {
		total += x
	}
	if total <= 0 {
		return v
	}
	for i := range v {
		v[i] /= total
	}
	return v
}

//nolint:gochecknoinits // gob.Register must be called in init for type registration
func init() {
	gob.Register(&Linear{})
	gob.Register(&Tree{})
	gob.Register(&Forest{})
	gob.Register(&Boosting{})
}
