// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package insight

import "github.com/tomtom215/vulcanus/internal/inference"

// Comparison operators for Band.
const (
	Above = ">"
	Below = "<"
)

// Band recommends Use when the property value compares to Threshold.
type Band struct {
	Op        string  `json:"op" koanf:"op"`
	Threshold float64 `json:"threshold" koanf:"threshold"`
	Use       string  `json:"use" koanf:"use"`
}

func (b Band) holds(v float64) bool {
	switch b.Op {
	case Above:
		return v > b.Threshold
	case Below:
		return v < b.Threshold
	default:
		return false
	}
}

// Rule maps one property onto a recommendation. Bands are tried in order
// and the first that holds wins; Otherwise applies when none does.
type Rule struct {
	Property  Matcher `json:"property" koanf:"property"`
	Bands     []Band  `json:"bands" koanf:"bands"`
	Otherwise string  `json:"otherwise,omitempty" koanf:"otherwise"`
}

// Apply returns the rule's recommendation, if any.
func (r Rule) Apply(p inference.Predictions) (string, bool) {
	v, ok := r.Property.Find(p)
	if !ok {
		return "", false
	}
	for _, b := range r.Bands {
		if b.holds(v) {
			return b.Use, true
		}
	}
	return r.Otherwise, r.Otherwise != ""
}

// Rules is an ordered rule set.
type Rules []Rule

// DefaultUses is returned when no rule recommends anything.
var DefaultUses = []string{"General rubber compound applications", "Further testing recommended"}

// DefaultRules are the standard compounding heuristics.
func DefaultRules() Rules {
	return Rules{
		{
			Property: Matcher{"Tensile strength", "Unaged"},
			Bands: []Band{
				{Above, 25, "High-stress applications"},
				{Above, 15, "Medium-duty mechanical parts"},
			},
		},
		{
			Property: Matcher{"Elongation at break", "Unaged"},
			Bands: []Band{
				{Above, 500, "Elastic components requiring high stretch"},
				{Above, 300, "Flexible sealing applications"},
			},
		},
		{
			Property: Matcher{"Hardness Shore A", "Unaged"},
			Bands: []Band{
				{Above, 70, "Rigid structural components"},
				{Above, 60, "General industrial applications"},
				{Above, 50, "Moderate-flex components"},
			},
			Otherwise: "Soft, high-compliance applications",
		},
		{
			Property: Matcher{"Abrasion Loss"},
			Bands:    []Band{{Below, 0.4, "Wear-resistant surfaces"}},
		},
		{
			Property: Matcher{"100 Modulus MPa", "Unaged"},
			Bands: []Band{
				{Above, 3.0, "High-stiffness applications"},
				{Above, 2.0, "Moderate-stiffness components"},
			},
		},
	}
}

// RecommendedUses applies every rule in order. When nothing applies it
// returns DefaultUses.
func (rs Rules) RecommendedUses(p inference.Predictions) []string {
	var uses []string
	for _, r := range rs {
		if use, ok := r.Apply(p); ok {
			uses = append(uses, use)
		}
	}
	if len(uses) == 0 {
		return append([]string(nil), DefaultUses...)
	}
	return uses
}

// RecommendedUses applies DefaultRules.
func RecommendedUses(p inference.Predictions) []string {
	return DefaultRules().RecommendedUses(p)
}
