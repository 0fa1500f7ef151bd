// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package insight derives the human-facing summary of a prediction run:
// a confidence score, recommended uses, the headline properties, reference
// ranges and each material's share of the formulation.
//
// Test parameters are located by substring so that laboratory naming
// variants ("Tensile strength MPa Unaged Condition 160⁰C 15 minutes") still
// match. When several parameters match, the first in registry order wins.
// A property without a successful prediction is reported as absent; no
// placeholder values are ever substituted.
package insight

import (
	"math"
	"sort"
	"strings"

	"github.com/tomtom215/vulcanus/internal/inference"
)

// Matcher selects test parameters whose name contains every substring.
type Matcher []string

// Match reports whether name contains every substring of m.
func (m Matcher) Match(name string) bool {
	if len(m) == 0 {
		return false
	}
	for _, s := range m {
		if !strings.Contains(name, s) {
			return false
		}
	}
	return true
}

// Find returns the first successful prediction whose parameter matches.
func (m Matcher) Find(p inference.Predictions) (float64, bool) {
	for _, o := range p {
		if o.OK() && m.Match(o.Parameter) {
			return o.Value, true
		}
	}
	return 0, false
}

// Confidence is the share of models that produced a prediction, as a
// percentage rounded to two decimals. It is 0 when there are no models.
func Confidence(p inference.Predictions) float64 {
	if len(p) == 0 {
		return 0
	}
	return round(float64(p.Succeeded())/float64(len(p))*100, 2)
}

// MaterialImpact is one material's share of the formulation total.
type MaterialImpact struct {
	Material string  `json:"material"`
	Percent  float64 `json:"percent"`
}

// MaterialImpacts returns each material's amount as a percentage of the
// total, rounded to one decimal, sorted by material name. Unknown materials
// are included. The result is empty when the total is zero.
func MaterialImpacts(f inference.Formulation) []MaterialImpact {
	var total float64
	for _, v := range f {
		total += v
	}
	if total <= 0 || math.IsInf(total, 0) || math.IsNaN(total) {
		return []MaterialImpact{}
	}

	out := make([]MaterialImpact, 0, len(f))
	for material, v := range f {
		out = append(out, MaterialImpact{Material: material, Percent: round(v/total*100, 1)})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Material < out[j].Material })
	return out
}

func round(v float64, places int) float64 {
	scale := math.Pow(10, float64(places))
	return math.Round(v*scale) / scale
}
