// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package regress

import (
	"errors"
	"math"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat"
)

// Linear is ordinary least squares with an intercept.
//
// Features and labels are centered before solving, which fits the intercept
// separately and leaves the coefficient system unpenalized. The coefficients
// are the minimum-norm least squares solution, so rank-deficient designs
// (collinear materials, more materials than recipes) are well defined.
type Linear struct {
	Intercept float64
	Coef      []float64

	// Rank is the numerical rank of the centered design matrix.
	Rank int

	NFeatures int
	Fitted    bool
}

// NewLinear returns an unfitted linear regressor.
func NewLinear() *Linear { return &Linear{} }

// Name implements Regressor.
func (l *Linear) Name() string { return NameLinear }

// Fit implements Regressor.
func (l *Linear) Fit(X [][]float64, y []float64) error {
	p, err := validateFit(X, y)
	if err != nil {
		return err
	}
	n := len(X)

	yMean := stat.Mean(y, nil)
	xMean := make([]float64, p)
	col := make([]float64, n)
	for j := 0; j < p; j++ {
		for i := range X {
			col[i] = X[i][j]
		}
		xMean[j] = stat.Mean(col, nil)
	}

	coef := make([]float64, p)
	rank := 0
	if p > 0 {
		a := mat.NewDense(n, p, nil)
		for i, row := range X {
			for j, v := range row {
				a.Set(i, j, v-xMean[j])
			}
		}
		b := mat.NewVecDense(n, nil)
		for i, v := range y {
			b.SetVec(i, v-yMean)
		}

		var svd mat.SVD
		if ok := svd.Factorize(a, mat.SVDThin); !ok {
			return errors.New("linear: SVD factorization failed")
		}
		rcond := float64(max(n, p)) * 2.220446049250313e-16
		rank = svd.Rank(rcond)
		if rank > 0 {
			var beta mat.VecDense
			svd.SolveVecTo(&beta, b, rank)
			for j := 0; j < p; j++ {
				coef[j] = beta.AtVec(j)
			}
		}
	}

	intercept := yMean
	for j, c := range coef {
		intercept -= c * xMean[j]
	}
	for _, c := range coef {
		if math.IsNaN(c) || math.IsInf(c, 0) {
			return errors.New("linear: solution is not finite")
		}
	}

	l.Intercept = intercept
	l.Coef = coef
	l.Rank = rank
	l.NFeatures = p
	l.Fitted = true
	return nil
}

// Predict implements Regressor.
func (l *Linear) Predict(x []float64) (float64, error) {
	if err := validatePredict(l.Fitted, x, l.NFeatures); err != nil {
		return 0, err
	}
	return l.Intercept + floats.Dot(x, l.Coef), nil
}
