// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package regress

import (
	"math/rand"

	"gonum.org/v1/gonum/stat"
)

// Boosting is least-squares gradient boosting over shallow trees.
type Boosting struct {
	NEstimators    int
	LearningRate   float64
	MaxDepth       int
	MinSamplesLeaf int

	// Subsample is the fraction of rows each stage sees. 0 or 1 uses all
	// rows.
	Subsample float64
	Seed      int64

	Init      float64
	Trees     []*Tree
	NFeatures int
	Fitted    bool
}

// NewBoosting returns an unfitted booster with 100 depth-3 stages at a
// learning rate of 0.1.
func NewBoosting(seed int64) *Boosting {
	return &Boosting{NEstimators: 100, LearningRate: 0.1, MaxDepth: 3, MinSamplesLeaf: 1, Seed: seed}
}

// Name implements Regressor.
func (g *Boosting) Name() string { return NameBoosting }

// Fit implements Regressor.
func (g *Boosting) Fit(X [][]float64, y []float64) error {
	p, err := validateFit(X, y)
	if err != nil {
		return err
	}
	if g.NEstimators < 1 {
		g.NEstimators = 1
	}
	if g.LearningRate <= 0 {
		g.LearningRate = 0.1
	}

	rng := rand.New(rand.NewSource(g.Seed)) //nolint:gosec // reproducibility, not security
	n := len(X)
	init := stat.Mean(y, nil)
	current := make([]float64, n)
	for i := range current {
		current[i] = init
	}

	residual := make([]float64, n)
	all := make([]int, n)
	for i := range all {
		all[i] = i
	}
	stageSize := n
	if g.Subsample > 0 && g.Subsample < 1 {
		stageSize = max(1, int(g.Subsample*float64(n)))
	}

	trees := make([]*Tree, 0, g.NEstimators)
	for m := 0; m < g.NEstimators; m++ {
		for i := range residual {
			residual[i] = y[i] - current[i]
		}
		idx := all
		if stageSize < n {
			perm := rng.Perm(n)
			idx = perm[:stageSize]
		}
		t := &Tree{MaxDepth: g.MaxDepth, MinSamplesSplit: 2, MinSamplesLeaf: g.MinSamplesLeaf}
		t.grow(X, residual, idx, p, rng)
		for i, row := range X {
			current[i] += g.LearningRate * t.predict(row)
		}
		trees = append(trees, t)
	}

	g.Init = init
	g.Trees = trees
	g.NFeatures = p
	g.Fitted = true
	return nil
}

// Predict implements Regressor.
func (g *Boosting) Predict(x []float64) (float64, error) {
	if err := validatePredict(g.Fitted, x, g.NFeatures); err != nil {
		return 0, err
	}
	out := g.Init
	for _, t := range g.Trees {
		out += g.LearningRate * t.predict(x)
	}
	return out, nil
}

// FeatureImportances implements FeatureImporter from the summed stage gains.
func (g *Boosting) FeatureImportances() []float64 {
	out := make([]float64, g.NFeatures)
	for _, t := range g.Trees {
		for j, v := range t.Gains {
			out[j] += v
		}
	}
	return normalize(out)
}
