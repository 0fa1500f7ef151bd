// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package api

import (
	"net/http"
	"net/url"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/tomtom215/vulcanus/internal/formulation"
)

// MaterialsResponse lists the feature matrix columns.
type MaterialsResponse struct {
	Materials []string `json:"materials"`
}

// RecipesResponse lists the feature matrix rows.
type RecipesResponse struct {
	Recipes []string `json:"recipes"`
}

// CompositionResponse is one recipe's non-zero components.
type CompositionResponse struct {
	Recipe               string                  `json:"recipe"`
	MaterialCompositions []formulation.Component `json:"materialCompositions"`
}

// Materials lists every known material in column order.
func (h *Handler) Materials(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, ok := h.serving(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, MaterialsResponse{Materials: sc.Matrix().Materials()}, start)
}

// Recipes lists every training recipe in row order.
func (h *Handler) Recipes(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, ok := h.serving(w, r)
	if !ok {
		return
	}
	respondSuccess(w, r, http.StatusOK, RecipesResponse{Recipes: sc.Matrix().Recipes()}, start)
}

// RecipeComposition returns the materials a recipe uses.
func (h *Handler) RecipeComposition(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	sc, ok := h.serving(w, r)
	if !ok {
		return
	}

	name, err := url.PathUnescape(chi.URLParam(r, "name"))
	if err != nil || name == "" {
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, "Invalid recipe name", nil)
		return
	}
	recipe, found := sc.Matrix().Recipe(name)
	if !found {
		respondError(w, r, http.StatusNotFound, ErrCodeNotFound, "Recipe not found", nil)
		return
	}
	components := recipe.Components
	if components == nil {
		components = []formulation.Component{}
	}
	respondSuccess(w, r, http.StatusOK, CompositionResponse{Recipe: recipe.Name, MaterialCompositions: components}, start)
}
