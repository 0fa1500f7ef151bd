// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package inference

import (
	"fmt"
	"math"

	"github.com/tomtom215/vulcanus/internal/model"
)

// Outcome is the prediction for one test parameter. Exactly one of Value
// and Err is meaningful.
type Outcome struct {
	Parameter string
	Value     float64
	Err       error
}

// OK reports whether the prediction succeeded.
func (o Outcome) OK() bool { return o.Err == nil }

// Predictions holds one Outcome per model, in registry order.
type Predictions []Outcome

// Values returns the successful predictions.
func (p Predictions) Values() map[string]float64 {
	out := make(map[string]float64, len(p))
	for _, o := range p {
		if o.OK() {
			out[o.Parameter] = o.Value
		}
	}
	return out
}

// Failures returns the error message of every failed parameter.
func (p Predictions) Failures() map[string]string {
	out := make(map[string]string)
	for _, o := range p {
		if !o.OK() {
			out[o.Parameter] = o.Err.Error()
		}
	}
	return out
}

// Failed returns the failed parameter names in order.
func (p Predictions) Failed() []string {
	var out []string
	for _, o := range p {
		if !o.OK() {
			out = append(out, o.Parameter)
		}
	}
	return out
}

// Succeeded counts successful predictions.
func (p Predictions) Succeeded() int {
	n := 0
	for _, o := range p {
		if o.OK() {
			n++
		}
	}
	return n
}

// PredictModel aligns f to m's schema and predicts. Failures, including a
// panicking regressor, are returned as *PredictionError in the Outcome.
func PredictModel(m *model.TrainedModel, f Formulation) (out Outcome) {
	out.Parameter = m.Parameter
	defer func() {
		if r := recover(); r != nil {
			out.Value = 0
			out.Err = &PredictionError{Parameter: m.Parameter, Err: fmt.Errorf("panic: %v", r)}
		}
	}()

	x, err := Align(f, m.Schema)
	if err != nil {
		out.Err = &PredictionError{Parameter: m.Parameter, Err: err}
		return out
	}
	v, err := m.Regressor.Predict(x)
	if err != nil {
		out.Err = &PredictionError{Parameter: m.Parameter, Err: err}
		return out
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		out.Err = &PredictionError{Parameter: m.Parameter, Err: ErrNonFinitePrediction}
		return out
	}
	out.Value = v
	return out
}

// PredictAll predicts every model of r. One model's failure never affects
// the others.
func PredictAll(r *model.Registry, f Formulation) Predictions {
	models := r.Models()
	out := make(Predictions, len(models))
	for i, m := range models {
		out[i] = PredictModel(m, f)
	}
	return out
}
