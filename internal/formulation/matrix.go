// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package formulation turns sparse recipe and evaluation tables into the dense
// feature matrix and per-parameter label vectors used for training.
//
// # Feature Matrix
//
// Rows are recipes in input order. Columns are every material that carries a
// numeric amount in at least one recipe, in first-seen order (recipes in
// input order, materials in row order within a recipe). Cells are finite and
// non-negative; a material a recipe does not use is stored as 0.0. Building
// the same input twice produces identical matrices, which keeps model
// schemas reproducible across training runs.
//
// # Coercion
//
// Blank cells, whitespace and placeholders such as "-" or "n/a" mean "not
// used". Any other cell must parse as a finite non-negative number or the
// build fails with a *DataFormatError naming the recipe and material.
//
// # Targets
//
// ExtractTarget restricts one test parameter's readings to recipes present in
// the matrix, drops unreadable values and reports tested recipes that have no
// formulation.
package formulation

import (
	"encoding/binary"
	"math"
	"strings"

	"github.com/cespare/xxhash/v2"
)

// FeatureMatrix is a dense recipe x material table. It is immutable once
// built and safe for concurrent readers.
type FeatureMatrix struct {
	recipes   []string
	materials []string
	values    []float64 // row-major, len(recipes)*len(materials)

	rowIndex map[string]int
	colIndex map[string]int
}

// BuildFeatureMatrix coerces raw recipes and densifies them. Duplicate
// material rows within a recipe are summed.
func BuildFeatureMatrix(raw []RawRecipe) (*FeatureMatrix, error) {
	m := &FeatureMatrix{
		rowIndex: make(map[string]int, len(raw)),
		colIndex: make(map[string]int),
	}

	// sparse rows, keyed by column index
	sparse := make([]map[int]float64, 0, len(raw))

	for _, r := range raw {
		name := strings.TrimSpace(r.Name)
		if name == "" {
			return nil, &DataFormatError{Reason: "recipe with empty name"}
		}
		if _, dup := m.rowIndex[name]; dup {
			return nil, &DataFormatError{Recipe: name, Reason: "duplicate recipe"}
		}

		row := make(map[int]float64)
		for _, a := range r.Amounts {
			material := strings.TrimSpace(a.Material)
			amount, used, err := ParseAmount(a.Value)
			if err != nil {
				return nil, &DataFormatError{Recipe: name, Material: material, Value: a.Value, Reason: err.Error()}
			}
			if !used {
				continue
			}
			if material == "" {
				return nil, &DataFormatError{Recipe: name, Value: a.Value, Reason: "amount without a material name"}
			}
			col, ok := m.colIndex[material]
			if !ok {
				col = len(m.materials)
				m.colIndex[material] = col
				m.materials = append(m.materials, material)
			}
			sum := row[col] + amount
			if math.IsInf(sum, 0) {
				return nil, &DataFormatError{Recipe: name, Material: material, Value: a.Value, Reason: "amount overflows"}
			}
			row[col] = sum
		}

		m.rowIndex[name] = len(m.recipes)
		m.recipes = append(m.recipes, name)
		sparse = append(sparse, row)
	}

	width := len(m.materials)
	m.values = make([]float64, len(m.recipes)*width)
	for i, row := range sparse {
		for col, v := range row {
			m.values[i*width+col] = v
		}
	}
	return m, nil
}

// Rows returns the number of recipes.
func (m *FeatureMatrix) Rows() int { return len(m.recipes) }

// Cols returns the number of materials.
func (m *FeatureMatrix) Cols() int { return len(m.materials) }

// Recipes returns the row index in order.
func (m *FeatureMatrix) Recipes() []string {
	return append([]string(nil), m.recipes...)
}

// Materials returns the column set in order.
func (m *FeatureMatrix) Materials() []string {
	return append([]string(nil), m.materials...)
}

// RowIndex returns the row of a recipe.
func (m *FeatureMatrix) RowIndex(recipe string) (int, bool) {
	i, ok := m.rowIndex[recipe]
	return i, ok
}

// ColIndex returns the column of a material.
func (m *FeatureMatrix) ColIndex(material string) (int, bool) {
	j, ok := m.colIndex[material]
	return j, ok
}

// At returns the cell at row i, column j.
func (m *FeatureMatrix) At(i, j int) float64 {
	return m.values[i*len(m.materials)+j]
}

// Row returns a copy of row i.
func (m *FeatureMatrix) Row(i int) []float64 {
	w := len(m.materials)
	return append([]float64(nil), m.values[i*w:(i+1)*w]...)
}

// Value returns the amount of material in recipe. Unknown recipes report
// false; unknown materials in a known recipe are 0.
func (m *FeatureMatrix) Value(recipe, material string) (float64, bool) {
	i, ok := m.rowIndex[recipe]
	if !ok {
		return 0, false
	}
	j, ok := m.colIndex[material]
	if !ok {
		return 0, true
	}
	return m.At(i, j), true
}

// Recipe returns the non-zero components of a recipe in column order.
func (m *FeatureMatrix) Recipe(name string) (Recipe, bool) {
	i, ok := m.rowIndex[name]
	if !ok {
		return Recipe{}, false
	}
	r := Recipe{Name: name}
	for j, material := range m.materials {
		if v := m.At(i, j); v > 0 {
			r.Components = append(r.Components, Component{Material: material, Amount: v})
		}
	}
	return r, true
}

// Select copies the given rows restricted to the given columns.
func (m *FeatureMatrix) Select(rows, cols []int) [][]float64 {
	out := make([][]float64, len(rows))
	for k, i := range rows {
		vec := make([]float64, len(cols))
		for c, j := range cols {
			vec[c] = m.At(i, j)
		}
		out[k] = vec
	}
	return out
}

// Fingerprint hashes the row index, column set and every cell. Two matrices
// with equal fingerprints were built from equivalent input.
func (m *FeatureMatrix) Fingerprint() uint64 {
	d := xxhash.New()
	var buf [8]byte
	writeStrings := func(ss []string) {
		binary.LittleEndian.PutUint64(buf[:], uint64(len(ss)))
		_, _ = d.Write(buf[:])
		for _, s := range ss {
			binary.LittleEndian.PutUint64(buf[:], uint64(len(s)))
			_, _ = d.Write(buf[:])
			_, _ = d.WriteString(s)
		}
	}
	writeStrings(m.recipes)
	writeStrings(m.materials)
	for _, v := range m.values {
		binary.LittleEndian.PutUint64(buf[:], math.Float64bits(v))
		_, _ = d.Write(buf[:])
	}
	return d.Sum64()
}
