// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package regress

import (
	"math/rand"
	"sort"
)

// leaf marks a Node without children.
const leaf = -1

// Node is one node of a fitted tree. Nodes live in a flat slice so a tree
// encodes without pointers.
type Node struct {
	// Feature is the split column, or -1 for a leaf.
	Feature   int
	Threshold float64

	// Left and Right index into Tree.Nodes. Samples with
	// x[Feature] <= Threshold go left.
	Left, Right int

	// Value is the mean label of the samples that reached the node.
	Value float64

	Samples int
}

// Tree is a CART regression tree minimizing squared error.
type Tree struct {
	// MaxDepth limits depth; 0 means unlimited.
	MaxDepth int

	// MinSamplesSplit is the smallest node that may be split (at least 2).
	MinSamplesSplit int

	// MinSamplesLeaf is the smallest allowed child (at least 1).
	MinSamplesLeaf int

	// MaxFeatures is the number of columns tried per split; 0 means all.
	MaxFeatures int

	Seed int64

	Nodes []Node

	// Gains holds the summed squared-error reduction per feature.
	Gains []float64

	NFeatures int
	Fitted    bool
}

// NewTree returns an unfitted tree with the given depth limit.
func NewTree(maxDepth int, seed int64) *Tree {
	return &Tree{MaxDepth: maxDepth, MinSamplesSplit: 2, MinSamplesLeaf: 1, Seed: seed}
}

// Name implements Regressor.
func (t *Tree) Name() string { return NameTree }

// Fit implements Regressor.
func (t *Tree) Fit(X [][]float64, y []float64) error {
	p, err := validateFit(X, y)
	if err != nil {
		return err
	}
	idx := make([]int, len(X))
	for i := range idx {
		idx[i] = i
	}
	t.grow(X, y, idx, p, rand.New(rand.NewSource(t.Seed))) //nolint:gosec // reproducibility, not security
	return nil
}

// grow fits the tree on the samples named by idx. idx may repeat samples.
func (t *Tree) grow(X [][]float64, y []float64, idx []int, p int, rng *rand.Rand) {
	if t.MinSamplesSplit < 2 {
		t.MinSamplesSplit = 2
	}
	if t.MinSamplesLeaf < 1 {
		t.MinSamplesLeaf = 1
	}
	t.NFeatures = p
	t.Nodes = t.Nodes[:0]
	t.Gains = make([]float64, p)

	b := &treeBuilder{tree: t, X: X, y: y, rng: rng, features: make([]int, p)}
	for j := range b.features {
		b.features[j] = j
	}
	b.build(idx, 0)
	t.Fitted = true
}

// Predict implements Regressor.
func (t *Tree) Predict(x []float64) (float64, error) {
	if err := validatePredict(t.Fitted, x, t.NFeatures); err != nil {
		return 0, err
	}
	return t.predict(x), nil
}

func (t *Tree) predict(x []float64) float64 {
	n := 0
	for {
		node := &t.Nodes[n]
		if node.Feature == leaf {
			return node.Value
		}
		if x[node.Feature] <= node.Threshold {
			n = node.Left
		} else {
			n = node.Right
		}
	}
}

// FeatureImportances implements FeatureImporter.
func (t *Tree) FeatureImportances() []float64 {
	return normalize(append([]float64(nil), t.Gains...))
}

type treeBuilder struct {
	tree     *Tree
	X        [][]float64
	y        []float64
	rng      *rand.Rand
	features []int
}

type split struct {
	feature   int
	threshold float64
	sse       float64
}

// build appends the subtree for idx and returns its node index.
func (b *treeBuilder) build(idx []int, depth int) int {
	t := b.tree
	sum, sumSq := 0.0, 0.0
	for _, i := range idx {
		sum += b.y[i]
		sumSq += b.y[i] * b.y[i]
	}
	n := float64(len(idx))
	sse := sumSq - sum*sum/n

	id := len(t.Nodes)
	t.Nodes = append(t.Nodes, Node{Feature: leaf, Value: sum / n, Samples: len(idx)})

	if len(idx) < t.MinSamplesSplit || len(idx) < 2*t.MinSamplesLeaf ||
		(t.MaxDepth > 0 && depth >= t.MaxDepth) || sse <= 1e-12 {
		return id
	}

	best, ok := b.bestSplit(idx, sse)
	if !ok {
		return id
	}

	var left, right []int
	for _, i := range idx {
		if b.X[i][best.feature] <= best.threshold {
			left = append(left, i)
		} else {
			right = append(right, i)
		}
	}

	t.Gains[best.feature] += sse - best.sse

	l := b.build(left, depth+1)
	r := b.build(right, depth+1)
	t.Nodes[id].Feature = best.feature
	t.Nodes[id].Threshold = best.threshold
	t.Nodes[id].Left = l
	t.Nodes[id].Right = r
	return id
}

// bestSplit scans candidate features for the split with the lowest summed
// child squared error. Ties keep the earlier feature and threshold.
func (b *treeBuilder) bestSplit(idx []int, parentSSE float64) (split, bool) {
	t := b.tree
	features := b.features
	if t.MaxFeatures > 0 && t.MaxFeatures < len(features) {
		b.rng.Shuffle(len(features), func(i, j int) { features[i], features[j] = features[j], features[i] })
		features = append([]int(nil), features[:t.MaxFeatures]...)
		sort.Ints(features)
	}

	best := split{sse: parentSSE}
	found := false
	sorted := append([]int(nil), idx...)
	n := len(sorted)
	minLeaf := t.MinSamplesLeaf

	var totalSum, totalSq float64
	for _, i := range idx {
		totalSum += b.y[i]
		totalSq += b.y[i] * b.y[i]
	}

	for _, f := range features {
		sort.SliceStable(sorted, func(a, c int) bool { return b.X[sorted[a]][f] < b.X[sorted[c]][f] })

		var lSum, lSq float64
		for k := 1; k < n; k++ {
			v := b.y[sorted[k-1]]
			lSum += v
			lSq += v * v

			lo, hi := b.X[sorted[k-1]][f], b.X[sorted[k]][f]
			if lo == hi || k < minLeaf || n-k < minLeaf {
				continue
			}
			ln, rn := float64(k), float64(n-k)
			rSum, rSq := totalSum-lSum, totalSq-lSq
			childSSE := (lSq - lSum*lSum/ln) + (rSq - rSum*rSum/rn)
			if childSSE < best.sse-1e-12 {
				threshold := lo + (hi-lo)/2
				if threshold >= hi {
					threshold = lo
				}
				best = split{feature: f, threshold: threshold, sse: childSSE}
				found = true
			}
		}
	}
	return best, found
}
