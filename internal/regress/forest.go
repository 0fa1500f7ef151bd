// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package regress

import "math/rand"

// Forest averages bootstrap-trained regression trees.
type Forest struct {
	NTrees         int
	MaxDepth       int
	MinSamplesLeaf int
	MaxFeatures    int
	Seed           int64

	Trees     []*Tree
	NFeatures int
	Fitted    bool
}

// NewForest returns an unfitted forest of nTrees fully grown trees.
func NewForest(nTrees int, seed int64) *Forest {
	return &Forest{NTrees: nTrees, MinSamplesLeaf: 1, Seed: seed}
}

// Name implements Regressor.
func (f *Forest) Name() string { return NameForest }

// Fit implements Regressor. Each tree draws len(X) samples with
// replacement and gets its own seed from the forest's generator.
func (f *Forest) Fit(X [][]float64, y []float64) error {
	p, err := validateFit(X, y)
	if err != nil {
		return err
	}
	if f.NTrees < 1 {
		f.NTrees = 1
	}

	rng := rand.New(rand.NewSource(f.Seed)) //nolint:gosec // reproducibility, not security
	n := len(X)
	trees := make([]*Tree, f.NTrees)
	for k := range trees {
		treeSeed := rng.Int63()
		idx := make([]int, n)
		for i := range idx {
			idx[i] = rng.Intn(n)
		}
		t := &Tree{
			MaxDepth:        f.MaxDepth,
			MinSamplesSplit: 2,
			MinSamplesLeaf:  f.MinSamplesLeaf,
			MaxFeatures:     f.MaxFeatures,
			Seed:            treeSeed,
		}
		t.grow(X, y, idx, p, rand.New(rand.NewSource(treeSeed))) //nolint:gosec // reproducibility, not security
		trees[k] = t
	}

	f.Trees = trees
	f.NFeatures = p
	f.Fitted = true
	return nil
}

// Predict implements Regressor.
func (f *Forest) Predict(x []float64) (float64, error) {
	if err := validatePredict(f.Fitted, x, f.NFeatures); err != nil {
		return 0, err
	}
	var sum float64
	for _, t := range f.Trees {
		sum += t.predict(x)
	}
	return sum / float64(len(f.Trees)), nil
}

// FeatureImportances implements FeatureImporter as the mean of the
// per-tree normalized importances.
func (f *Forest) FeatureImportances() []float64 {
	out := make([]float64, f.NFeatures)
	for _, t := range f.Trees {
		for j, v := range t.FeatureImportances() {
			out[j] += v
		}
	}
	return normalize(out)
}
