// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package train

import (
	"errors"
	"fmt"
)

var (
	// ErrAllCandidatesFailed is wrapped by the error of a parameter whose
	// every candidate raised a FitError.
	ErrAllCandidatesFailed = errors.New("every candidate failed to fit")

	// ErrTrainingInProgress is returned when a run is requested while
	// another is still running.
	ErrTrainingInProgress = errors.New("a training run is already in progress")
)

// Gate names the sample threshold a skipped parameter failed.
type Gate string

const (
	// GateObserved counts valid readings before alignment.
	GateObserved Gate = "observed"

	// GateAligned counts readings whose recipe is in the feature matrix.
	GateAligned Gate = "aligned"

	// GateSplit counts training rows left after holding out the test set.
	GateSplit Gate = "split"
)

// InsufficientDataError reports a parameter below a sample threshold.
type InsufficientDataError struct {
	Parameter string
	Gate      Gate
	Have      int
	Need      int
}

// Error implements error.
func (e *InsufficientDataError) Error() string {
	return fmt.Sprintf("insufficient data for %q: %d %s samples, need %d", e.Parameter, e.Have, e.Gate, e.Need)
}

// FitError reports a candidate regressor that failed to fit or evaluate.
type FitError struct {
	Parameter string
	Algorithm string
	Err       error
}

// Error implements error.
func (e *FitError) Error() string {
	return fmt.Sprintf("fit %s for %q: %v", e.Algorithm, e.Parameter, e.Err)
}

// Unwrap returns the underlying error.
func (e *FitError) Unwrap() error { return e.Err }
