// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package insight

import (
	"errors"
	"slices"
	"testing"

	"github.com/tomtom215/vulcanus/internal/inference"
)

const (
	tensile    = "Tensile strength MPa Unaged Condition 160⁰C 15 minutes"
	elongation = "Elongation at break % Unaged Condition 160⁰C 15 minutes"
	hardness   = "Hardness Shore A Unaged Condition 160⁰C 15 minutes"
	abrasion   = "Abrasion Loss mg m"
	mod100     = "100 Modulus MPa Unaged Condition 160⁰C 15 minutes"
	mod100Aged = "100 Modulus MPa Aged 100⁰C 48Hrs"
)

func ok(param string, v float64) inference.Outcome {
	return inference.Outcome{Parameter: param, Value: v}
}

func failed(param string) inference.Outcome {
	return inference.Outcome{Parameter: param, Err: errors.New("boom")}
}

// checkValue reports a mismatch between an optional property and want.
// A nil want expects the property to be absent.
func checkValue(t *testing.T, name string, got, want *float64) {
	t.Helper()
	switch {
	case want == nil && got != nil:
		t.Errorf("%s = %v, want absent", name, *got)
	case want != nil && got == nil:
		t.Errorf("%s absent, want %v", name, *want)
	case want != nil && *got != *want:
		t.Errorf("%s = %v, want %v", name, *got, *want)
	}
}

func ptr(v float64) *float64 { return &v }

func TestConfidence(t *testing.T) {
	tests := []struct {
		name string
		p    inference.Predictions
		want float64
	}{
		{"no models", nil, 0},
		{"all succeed", inference.Predictions{ok(tensile, 1)}, 100},
		{"two of three", inference.Predictions{ok(tensile, 1), ok(hardness, 2), failed(abrasion)}, 66.67},
		{"all fail", inference.Predictions{failed(abrasion)}, 0},
	}
	for _, tt := range tests {
		if got := Confidence(tt.p); got != tt.want {
			t.Errorf("%s: Confidence() = %v, want %v", tt.name, got, tt.want)
		}
	}
}

func TestRecommendedUses(t *testing.T) {
	tests := []struct {
		name string
		p    inference.Predictions
		want []string
	}{
		{
			name: "no predictions",
			want: DefaultUses,
		},
		{
			name: "failed predictions are ignored",
			p:    inference.Predictions{failed(tensile), failed(hardness)},
			want: DefaultUses,
		},
		{
			name: "strong stiff compound",
			p:    inference.Predictions{ok(tensile, 26), ok(elongation, 520), ok(hardness, 72), ok(abrasion, 0.3), ok(mod100, 3.5)},
			want: []string{
				"High-stress applications",
				"Elastic components requiring high stretch",
				"Rigid structural components",
				"Wear-resistant surfaces",
				"High-stiffness applications",
			},
		},
		{
			name: "middle bands",
			p:    inference.Predictions{ok(tensile, 20), ok(elongation, 400), ok(hardness, 65), ok(mod100, 2.5)},
			want: []string{
				"Medium-duty mechanical parts",
				"Flexible sealing applications",
				"General industrial applications",
				"Moderate-stiffness components",
			},
		},
		{
			name: "soft compound falls through to otherwise",
			p:    inference.Predictions{ok(hardness, 45)},
			want: []string{"Soft, high-compliance applications"},
		},
		{
			name: "boundaries are exclusive",
			p:    inference.Predictions{ok(tensile, 15), ok(abrasion, 0.4)},
			want: DefaultUses,
		},
		{
			name: "aged modulus does not count",
			p:    inference.Predictions{ok(mod100Aged, 5)},
			want: DefaultUses,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := RecommendedUses(tt.p); !slices.Equal(got, tt.want) {
				t.Errorf("RecommendedUses() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRecommendedUses_DefaultNotShared(t *testing.T) {
	uses := RecommendedUses(nil)
	uses[0] = "mutated"
	if DefaultUses[0] != "General rubber compound applications" {
		t.Errorf("DefaultUses[0] = %q after mutating a result", DefaultUses[0])
	}
}

func TestRules_Custom(t *testing.T) {
	rules := Rules{{Property: Matcher{"Tear"}, Bands: []Band{{Above, 50, "Tear resistant"}}}}
	got := rules.RecommendedUses(inference.Predictions{ok("Tear strength", 60)})
	if !slices.Equal(got, []string{"Tear resistant"}) {
		t.Errorf("RecommendedUses() = %q, want [Tear resistant]", got)
	}
}

func TestMatcher_FirstMatchWins(t *testing.T) {
	p := inference.Predictions{
		ok("Tensile strength MPa Unaged Condition 160⁰C 30 minutes", 12),
		ok(tensile, 30),
	}
	v, found := Matcher{"Tensile strength", "Unaged"}.Find(p)
	if !found || v != 12 {
		t.Errorf("Find() = %v, %v, want 12, true", v, found)
	}
	if (Matcher{}).Match("anything") {
		t.Error("an empty Matcher matched")
	}
}

func TestExtractKeyProperties(t *testing.T) {
	p := inference.Predictions{
		ok(tensile, 18.5),
		failed(hardness),
		ok(abrasion, 0.25),
		ok(mod100, 2.1),
		ok(mod100Aged, 3.3),
		ok("50 Modulus MPa Unaged Condition 160⁰C 15 minutes", 1.2),
	}
	kp := ExtractKeyProperties(p)

	checkValue(t, "TensileStrength", kp.TensileStrength, ptr(18.5))
	checkValue(t, "Hardness", kp.Hardness, nil)
	checkValue(t, "Elongation", kp.Elongation, nil)
	checkValue(t, "TearStrength", kp.TearStrength, nil)
	checkValue(t, "AbrasionResistance", kp.AbrasionResistance, ptr(0.25))
	checkValue(t, "Modulus100.Unaged15Min", kp.Modulus100.Unaged15Min, ptr(2.1))
	checkValue(t, "Modulus100.Aged100C48Hrs", kp.Modulus100.Aged100C48Hrs, ptr(3.3))
	checkValue(t, "Modulus100.Unaged30Min", kp.Modulus100.Unaged30Min, nil)
	checkValue(t, "Modulus200.Unaged15Min", kp.Modulus200.Unaged15Min, nil)
	checkValue(t, "Modulus50", kp.Modulus50, ptr(1.2))
}

func TestPropertyRanges(t *testing.T) {
	r := PropertyRanges()
	if len(r) != 8 {
		t.Errorf("PropertyRanges() has %d entries, want 8", len(r))
	}
	if got := r["tensileStrength"]; got != (Range{Low: 10, Medium: 20, High: 30}) {
		t.Errorf("tensileStrength = %+v", got)
	}
	if got := r["modulus300"]; got != (Range{Low: 5, Medium: 10, High: 15}) {
		t.Errorf("modulus300 = %+v", got)
	}
}

func TestMaterialImpacts(t *testing.T) {
	got := MaterialImpacts(inference.Formulation{"NR": 100, "Carbon black": 50, "Sulfur": 2.5})
	want := []MaterialImpact{
		{Material: "Carbon black", Percent: 32.8},
		{Material: "NR", Percent: 65.6},
		{Material: "Sulfur", Percent: 1.6},
	}
	if !slices.Equal(got, want) {
		t.Errorf("MaterialImpacts() = %+v, want %+v", got, want)
	}

	if got := MaterialImpacts(inference.Formulation{"NR": 0}); len(got) != 0 {
		t.Errorf("zero total: MaterialImpacts() = %+v, want empty", got)
	}
	if got := MaterialImpacts(nil); len(got) != 0 {
		t.Errorf("nil: MaterialImpacts() = %+v, want empty", got)
	}
}
