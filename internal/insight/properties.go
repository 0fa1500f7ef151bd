// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package insight

import "github.com/tomtom215/vulcanus/internal/inference"

// ModulusSet holds one modulus across cure and ageing conditions. Nil
// fields had no prediction.
type ModulusSet struct {
	Unaged15Min   *float64 `json:"unaged_15min"`
	Unaged30Min   *float64 `json:"unaged_30min"`
	Aged100C48Hrs *float64 `json:"aged_100C_48hrs"`
	Aged70C7Days  *float64 `json:"aged_70C_7days"`
}

// KeyProperties are the headline properties of a prediction. Nil fields
// had no prediction.
type KeyProperties struct {
	TensileStrength    *float64   `json:"tensileStrength"`
	Elongation         *float64   `json:"elongation"`
	Hardness           *float64   `json:"hardness"`
	AbrasionResistance *float64   `json:"abrasionResistance"`
	TearStrength       *float64   `json:"tearStrength"`
	Modulus50          *float64   `json:"modulus50"`
	Modulus100         ModulusSet `json:"modulus100"`
	Modulus200         ModulusSet `json:"modulus200"`
	Modulus300         ModulusSet `json:"modulus300"`
}

// ExtractKeyProperties looks the headline properties up by substring.
func ExtractKeyProperties(p inference.Predictions) KeyProperties {
	return KeyProperties{
		TensileStrength:    lookup(p, "Tensile strength", "Unaged"),
		Elongation:         lookup(p, "Elongation at break", "Unaged"),
		Hardness:           lookup(p, "Hardness Shore A", "Unaged"),
		AbrasionResistance: lookup(p, "Abrasion Loss mg m"),
		TearStrength:       lookup(p, "Tear strength", "Unaged"),
		Modulus50:          lookup(p, "50 Modulus MPa", "Unaged", "15 minutes"),
		Modulus100:         modulus(p, "100 Modulus MPa"),
		Modulus200:         modulus(p, "200 Modulus MPa"),
		Modulus300:         modulus(p, "300 Modulus MPa"),
	}
}

func modulus(p inference.Predictions, prefix string) ModulusSet {
	return ModulusSet{
		Unaged15Min:   lookup(p, prefix, "Unaged", "15 minutes"),
		Unaged30Min:   lookup(p, prefix, "Unaged", "30 minutes"),
		Aged100C48Hrs: lookup(p, prefix, "Aged 100", "48Hrs"),
		Aged70C7Days:  lookup(p, prefix, "Aged 70", "7Days"),
	}
}

func lookup(p inference.Predictions, substrings ...string) *float64 {
	v, ok := Matcher(substrings).Find(p)
	if !ok {
		return nil
	}
	return &v
}

// Range is a low/medium/high reference band.
type Range struct {
	Low    float64 `json:"low"`
	Medium float64 `json:"medium"`
	High   float64 `json:"high"`
}

// PropertyRanges returns typical values for comparison.
func PropertyRanges() map[string]Range {
	return map[string]Range{
		"tensileStrength":    {10, 20, 30},
		"elongation":         {300, 450, 600},
		"hardness":           {40, 60, 80},
		"abrasionResistance": {0.2, 0.5, 0.8},
		"tearStrength":       {40, 70, 100},
		"modulus100":         {1.0, 2.0, 3.5},
		"modulus200":         {2.5, 5.0, 8.5},
		"modulus300":         {5.0, 10.0, 15.0},
	}
}
