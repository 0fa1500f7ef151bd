// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package api

import (
	"errors"
	"net/http"
	"time"

	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/insight"
	"github.com/tomtom215/vulcanus/internal/logging"
)

// PredictionResponse is the body of a successful prediction.
type PredictionResponse struct {
	// TestResults has one entry per model; failed predictions are null.
	TestResults map[string]*float64 `json:"testResults"`

	// Failures explains each null entry of TestResults.
	Failures map[string]string `json:"failures,omitempty"`

	// UnknownMaterials were ignored because no recipe uses them.
	UnknownMaterials []string `json:"unknownMaterials,omitempty"`

	ConfidenceScore float64                  `json:"confidenceScore"`
	RecommendedUses []string                 `json:"recommendedUses"`
	KeyProperties   insight.KeyProperties    `json:"keyProperties"`
	PropertyRanges  map[string]insight.Range `json:"propertyRanges"`
	MaterialImpacts []insight.MaterialImpact `json:"materialImpacts"`
	Generation      uint64                   `json:"generation"`
}

// Predict predicts every test parameter for the posted formulation.
func (h *Handler) Predict(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req PredictRequest
	if err := decodeJSON(w, r, h.maxBody, &req); err != nil {
		if errors.Is(err, errBodyTooLarge) {
			respondError(w, r, http.StatusRequestEntityTooLarge, ErrCodeBadRequest, "Request body too large", nil)
			return
		}
		respondError(w, r, http.StatusBadRequest, ErrCodeBadRequest, err.Error(), nil)
		return
	}
	if apiErr := validateRequest(&req); apiErr != nil {
		respondErrorDetails(w, r, http.StatusBadRequest, apiErr.Code, apiErr.Message, apiErr.Details, nil)
		return
	}

	sc, ok := h.serving(w, r)
	if !ok {
		return
	}

	f := inference.FromComponents(req.Components())
	predictions := h.cache.Predict(sc, f)
	resp := NewPredictionResponse(sc, f, predictions, h.rules)

	if len(resp.Failures) > 0 {
		logging.Ctx(r.Context()).Warn().
			Int("failed", len(resp.Failures)).
			Int("models", len(resp.TestResults)).
			Msg("Some test parameters could not be predicted")
	}
	respondSuccess(w, r, http.StatusOK, resp, start)
}

// NewPredictionResponse derives the response body for predictions made by
// sc for f. A nil rules uses insight.DefaultRules.
func NewPredictionResponse(sc *inference.ServingContext, f inference.Formulation, predictions inference.Predictions, rules insight.Rules) PredictionResponse {
	if rules == nil {
		rules = insight.DefaultRules()
	}
	resp := PredictionResponse{
		TestResults:      make(map[string]*float64, len(predictions)),
		UnknownMaterials: sc.UnknownMaterials(f),
		ConfidenceScore:  insight.Confidence(predictions),
		RecommendedUses:  rules.RecommendedUses(predictions),
		KeyProperties:    insight.ExtractKeyProperties(predictions),
		PropertyRanges:   insight.PropertyRanges(),
		MaterialImpacts:  insight.MaterialImpacts(f),
		Generation:       sc.Generation(),
	}
	for _, o := range predictions {
		if o.OK() {
			v := o.Value
			resp.TestResults[o.Parameter] = &v
			continue
		}
		resp.TestResults[o.Parameter] = nil
		if resp.Failures == nil {
			resp.Failures = make(map[string]string)
		}
		resp.Failures[o.Parameter] = o.Err.Error()
	}
	return resp
}
