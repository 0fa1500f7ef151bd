// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package train

import (
	"time"

	"github.com/tomtom215/vulcanus/internal/model"
	"github.com/tomtom215/vulcanus/internal/regress"
)

// Status is the terminal state of one test parameter.
type Status string

const (
	StatusTrained          Status = "trained"
	StatusInsufficientData Status = "insufficient_data"
	StatusFitError         Status = "fit_error"
)

// TargetReport describes what happened to one test parameter.
type TargetReport struct {
	Parameter string `json:"parameter"`
	Status    Status `json:"status"`

	// Gate is set for insufficient_data.
	Gate Gate `json:"gate,omitempty"`

	// Error describes why the parameter was skipped.
	Error string `json:"error,omitempty"`

	// Err is the typed skip error: *InsufficientDataError or an error
	// wrapping ErrAllCandidatesFailed.
	Err error `json:"-"`

	Observed  int      `json:"observed"`
	Aligned   int      `json:"aligned"`
	Dropped   int      `json:"dropped"`
	Unmatched []string `json:"unmatched,omitempty"`

	TrainSamples int `json:"train_samples"`
	TestSamples  int `json:"test_samples"`

	Selected   string                 `json:"selected,omitempty"`
	Scores     *regress.Scores        `json:"scores,omitempty"`
	Candidates []model.CandidateScore `json:"candidates,omitempty"`

	DurationMS int64 `json:"duration_ms"`
}

// Report summarizes a training run. Targets follow evaluation table order.
type Report struct {
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	DurationMS int64     `json:"duration_ms"`

	Recipes           int    `json:"recipes"`
	Materials         int    `json:"materials"`
	MatrixFingerprint string `json:"matrix_fingerprint"`

	Trained          int `json:"trained"`
	InsufficientData int `json:"insufficient_data"`
	FitErrors        int `json:"fit_errors"`

	Targets []TargetReport `json:"targets"`
}

// Target returns the report of one parameter.
func (r *Report) Target(parameter string) (TargetReport, bool) {
	for _, t := range r.Targets {
		if t.Parameter == parameter {
			return t, true
		}
	}
	return TargetReport{}, false
}

// Skipped returns the parameters that produced no model.
func (r *Report) Skipped() []TargetReport {
	var out []TargetReport
	for _, t := range r.Targets {
		if t.Status != StatusTrained {
			out = append(out, t)
		}
	}
	return out
}

func (r *Report) tally() {
	r.Trained, r.InsufficientData, r.FitErrors = 0, 0, 0
	for _, t := range r.Targets {
		switch t.Status {
		case StatusTrained:
			r.Trained++
		case StatusInsufficientData:
			r.InsufficientData++
		case StatusFitError:
			r.FitErrors++
		}
	}
}
