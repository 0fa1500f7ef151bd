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

// RawAmount is one uncoerced (material, cell) pair of a recipe.
type RawAmount struct {
	Material string
	Value    string
}

// RawRecipe is a recipe as loaded: its name and the cells of every material
// row in table order.
type RawRecipe struct {
	Name    string
	Amounts []RawAmount
}

// Component is one material of a coerced recipe.
type Component struct {
	Material string  `json:"material"`
	Amount   float64 `json:"composition"`
}

// Recipe is a named formulation. Materials not listed are unused.
type Recipe struct {
	Name       string      `json:"name"`
	Components []Component `json:"materialCompositions"`
}

// Total returns the summed amount of all components.
func (r Recipe) Total() float64 {
	var total float64
	for _, c := range r.Components {
		total += c.Amount
	}
	return total
}

// RecipesFromTable reads the formulation table shape: column 0 is the
// material category, column 1 the material name and every further column a
// recipe. Recipe columns with a blank header are ignored. An empty table
// yields no recipes.
func RecipesFromTable(t *tables.Table) ([]RawRecipe, error) {
	if t == nil || len(t.Header) == 0 {
		return nil, nil
	}
	if len(t.Header) < 2 {
		if t.Empty() {
			return nil, nil
		}
		return nil, &DataFormatError{Reason: fmt.Sprintf("formulation table needs category and material columns, got %d column(s)", len(t.Header))}
	}

	var (
		recipes []RawRecipe
		cols    []int
		seen    = make(map[string]struct{})
	)
	for col := 2; col < len(t.Header); col++ {
		name := strings.TrimSpace(t.Header[col])
		if name == "" {
			continue
		}
		if _, dup := seen[name]; dup {
			return nil, &DataFormatError{Recipe: name, Reason: "duplicate recipe column"}
		}
		seen[name] = struct{}{}
		recipes = append(recipes, RawRecipe{Name: name})
		cols = append(cols, col)
	}

	for row := range t.Rows {
		if err := checkRowWidth(t, row, 1); err != nil {
			return nil, err
		}
		material := strings.TrimSpace(t.Cell(row, 1))
		if material == "" {
			for i, col := range cols {
				if v := t.Cell(row, col); !IsBlank(v) {
					return nil, &DataFormatError{Recipe: recipes[i].Name, Value: v, Reason: fmt.Sprintf("row %d has a value but no material name", row+1)}
				}
			}
			continue
		}
		for i, col := range cols {
			recipes[i].Amounts = append(recipes[i].Amounts, RawAmount{Material: material, Value: t.Cell(row, col)})
		}
	}
	return recipes, nil
}

// checkRowWidth rejects rows that carry non-blank cells past the header.
func checkRowWidth(t *tables.Table, row, nameCol int) error {
	r := t.Rows[row]
	for col := len(t.Header); col < len(r); col++ {
		if !IsBlank(r[col]) {
			return &DataFormatError{
				Material: strings.TrimSpace(t.Cell(row, nameCol)),
				Value:    r[col],
				Reason:   fmt.Sprintf("row %d has %d cells but the header has %d", row+1, len(r), len(t.Header)),
			}
		}
	}
	return nil
}
