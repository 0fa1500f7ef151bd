// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package regress

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// Scores holds held-out goodness of fit.
type Scores struct {
	R2  float64 `json:"r2"`
	MAE float64 `json:"mae"`
	MSE float64 `json:"mse"`
}

// Evaluate predicts every row of X and scores the result against y.
func Evaluate(r Regressor, X [][]float64, y []float64) (Scores, error) {
	if len(X) != len(y) || len(y) == 0 {
		return Scores{}, fmt.Errorf("%w: %d rows, %d labels", ErrDimension, len(X), len(y))
	}
	pred := make([]float64, len(X))
	for i, row := range X {
		v, err := r.Predict(row)
		if err != nil {
			return Scores{}, fmt.Errorf("predict row %d: %w", i, err)
		}
		pred[i] = v
	}
	s := Scores{R2: R2(y, pred), MAE: MAE(y, pred), MSE: MSE(y, pred)}
	if !finite(s.R2) || !finite(s.MAE) || !finite(s.MSE) {
		return s, fmt.Errorf("%w: scores %+v", ErrNonFinite, s)
	}
	return s, nil
}

// R2 is the coefficient of determination. When y has no variance the score
// is 1 for a perfect prediction and 0 otherwise.
func R2(y, pred []float64) float64 {
	mean := stat.Mean(y, nil)
	var ssRes, ssTot float64
	for i, v := range y {
		d := v - pred[i]
		ssRes += d * d
		m := v - mean
		ssTot += m * m
	}
	if ssTot == 0 {
		if ssRes == 0 {
			return 1
		}
		return 0
	}
	return 1 - ssRes/ssTot
}

// MAE is the mean absolute error.
func MAE(y, pred []float64) float64 {
	var sum float64
	for i, v := range y {
		sum += math.Abs(v - pred[i])
	}
	return sum / float64(len(y))
}

// MSE is the mean squared error.
func MSE(y, pred []float64) float64 {
	var sum float64
	for i, v := range y {
		d := v - pred[i]
		sum += d * d
	}
	return sum / float64(len(y))
}
