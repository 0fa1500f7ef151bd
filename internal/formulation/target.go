// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package formulation

import (
	"fmt"
	"strings"

	"github.com/tomtom215/vulcanus/internal/tables"
)

// RawObservation is one uncoerced reading of a test parameter.
type RawObservation struct {
	Recipe string
	Value  string
}

// RawParameter is a test parameter row as loaded.
type RawParameter struct {
	Name         string
	Observations []RawObservation
}

// Target is a test parameter's readings aligned to a feature matrix.
type Target struct {
	// Parameter is the test parameter name.
	Parameter string

	// Rows are feature matrix row indices, in matrix order.
	Rows []int

	// Recipes are the recipe names of Rows.
	Recipes []string

	// Values are the readings of Rows.
	Values []float64

	// Observed counts distinct recipes with a valid reading before alignment.
	Observed int

	// Dropped counts unreadable and repeated readings. Blank cells are not
	// readings and are not counted.
	Dropped int

	// Unmatched lists tested recipes that have no formulation.
	Unmatched []string
}

// Len returns the number of aligned samples.
func (t *Target) Len() int { return len(t.Values) }

// ParametersFromTable reads the evaluation table shape: column 0 is the test
// parameter, every further column a recipe. Rows sharing a parameter name
// are merged in order. An empty table yields no parameters.
func ParametersFromTable(t *tables.Table) ([]RawParameter, error) {
	if t == nil || len(t.Header) == 0 {
		return nil, nil
	}

	var (
		params []RawParameter
		index  = make(map[string]int)
	)
	for row := range t.Rows {
		if err := checkRowWidth(t, row, 0); err != nil {
			return nil, err
		}
		name := strings.TrimSpace(t.Cell(row, 0))
		if name == "" {
			for col := 1; col < len(t.Header); col++ {
				if v := t.Cell(row, col); !IsBlank(v) {
					return nil, &DataFormatError{Recipe: strings.TrimSpace(t.Header[col]), Value: v, Reason: fmt.Sprintf("row %d has a reading but no test parameter", row+1)}
				}
			}
			continue
		}
		i, ok := index[name]
		if !ok {
			i = len(params)
			index[name] = i
			params = append(params, RawParameter{Name: name})
		}
		for col := 1; col < len(t.Header); col++ {
			recipe := strings.TrimSpace(t.Header[col])
			if recipe == "" {
				continue
			}
			params[i].Observations = append(params[i].Observations, RawObservation{Recipe: recipe, Value: t.Cell(row, col)})
		}
	}
	return params, nil
}

// ExtractTarget coerces a parameter's readings and keeps those whose recipe
// is a row of m. The first valid reading of a recipe wins.
func ExtractTarget(p RawParameter, m *FeatureMatrix) Target {
	t := Target{Parameter: p.Name}

	readings := make(map[string]float64, len(p.Observations))
	for _, o := range p.Observations {
		recipe := strings.TrimSpace(o.Recipe)
		v, ok := ParseMeasurement(o.Value)
		if !ok || recipe == "" {
			if !IsBlank(o.Value) {
				t.Dropped++
			}
			continue
		}
		if _, dup := readings[recipe]; dup {
			t.Dropped++
			continue
		}
		readings[recipe] = v
		t.Observed++
		if _, known := m.RowIndex(recipe); !known {
			t.Unmatched = append(t.Unmatched, recipe)
		}
	}

	for i, recipe := range m.recipes {
		v, ok := readings[recipe]
		if !ok {
			continue
		}
		t.Rows = append(t.Rows, i)
		t.Recipes = append(t.Recipes, recipe)
		t.Values = append(t.Values, v)
	}
	return t
}
