// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package api

import (
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/validation"
)

// MaterialInput is one material of a prediction request.
type MaterialInput struct {
	Material    string  `json:"material" validate:"required,max=256"`
	Composition float64 `json:"composition" validate:"gte=0,finite"`
}

// PredictRequest is the body of POST /api/v1/predict.
type PredictRequest struct {
	MaterialCompositions []MaterialInput `json:"materialCompositions" validate:"required,min=1,max=1000,dive"`
}

// Components converts the request for inference.FromComponents.
func (p *PredictRequest) Components() []formulation.Component {
	out := make([]formulation.Component, len(p.MaterialCompositions))
	for i, m := range p.MaterialCompositions {
		out[i] = formulation.Component{Material: m.Material, Amount: m.Composition}
	}
	return out
}

// errBodyTooLarge is returned by decodeJSON for bodies over the limit.
var errBodyTooLarge = errors.New("request body too large")

// decodeJSON reads one JSON document of at most limit bytes into v.
func decodeJSON(w http.ResponseWriter, r *http.Request, limit int64, v any) error {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, limit))
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return errBodyTooLarge
		}
		return fmt.Errorf("read body: %w", err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("invalid JSON body: %w", err)
	}
	return nil
}

// validateRequest returns nil or the VALIDATION_ERROR body for v.
func validateRequest(v any) *APIError {
	verr := validation.ValidateStruct(v)
	if verr == nil {
		return nil
	}
	apiErr := verr.ToAPIError()
	return &APIError{Code: apiErr.Code, Message: apiErr.Message, Details: apiErr.Details}
}
