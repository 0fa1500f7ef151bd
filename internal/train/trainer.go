// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package train

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/metrics"
	"github.com/tomtom215/vulcanus/internal/model"
	"github.com/tomtom215/vulcanus/internal/regress"
	"github.com/tomtom215/vulcanus/internal/tables"
)

// Result is the output of a training run.
type Result struct {
	Matrix   *formulation.FeatureMatrix
	Registry *model.Registry
	Report   *Report
}

// Trainer fits one model per test parameter.
// It is safe for concurrent use; runs share no state.
type Trainer struct {
	cfg    Config
	logger zerolog.Logger
	now    func() time.Time
}

// NewTrainer creates a trainer.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewTrainer(cfg Config, logger zerolog.Logger) (*Trainer, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid training config: %w", err)
	}
	cfg.Candidates = append([]string(nil), cfg.Candidates...)
	return &Trainer{
		cfg:    cfg,
		logger: logger.With().Str("component", "train").Logger(),
		now:    time.Now,
	}, nil
}

// Config returns the trainer's configuration.
func (t *Trainer) Config() Config { return t.cfg }

// Run builds the feature matrix from the two raw tables and trains every
// parameter. Only a *formulation.DataFormatError or a cancelled context
// fails the run.
func (t *Trainer) Run(ctx context.Context, formulationTable, evaluationTable *tables.Table) (*Result, error) {
	raw, err := formulation.RecipesFromTable(formulationTable)
	if err != nil {
		return nil, err
	}
	m, err := formulation.BuildFeatureMatrix(raw)
	if err != nil {
		return nil, err
	}
	params, err := formulation.ParametersFromTable(evaluationTable)
	if err != nil {
		return nil, err
	}
	return t.Train(ctx, m, params)
}

// Train trains every parameter against m. Parameters train concurrently on a
// bounded pool; each writes only its own slot and the registry is assembled
// after every worker has finished.
func (t *Trainer) Train(ctx context.Context, m *formulation.FeatureMatrix, params []formulation.RawParameter) (*Result, error) {
	start := t.now()
	t.logger.Info().
		Int("recipes", m.Rows()).
		Int("materials", m.Cols()).
		Int("parameters", len(params)).
		Int("workers", t.cfg.workers()).
		Msg("starting training run")

	type slot struct {
		report TargetReport
		model  *model.TrainedModel
	}
	slots := make([]slot, len(params))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(t.cfg.workers())
	for i, p := range params {
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			target := formulation.ExtractTarget(p, m)
			report, trained, err := t.TrainTarget(gctx, m, target)
			if err != nil {
				return err
			}
			slots[i] = slot{report: report, model: trained}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RecordTrainingRun(time.Since(start), err)
		return nil, fmt.Errorf("training run: %w", err)
	}

	report := &Report{
		StartedAt:         start,
		Recipes:           m.Rows(),
		Materials:         m.Cols(),
		MatrixFingerprint: strconv.FormatUint(m.Fingerprint(), 16),
		Targets:           make([]TargetReport, len(slots)),
	}
	var models []*model.TrainedModel
	for i, s := range slots {
		report.Targets[i] = s.report
		if s.model != nil {
			models = append(models, s.model)
		}
	}
	report.tally()

	registry, err := model.NewRegistry(models)
	if err != nil {
		metrics.RecordTrainingRun(time.Since(start), err)
		return nil, fmt.Errorf("build registry: %w", err)
	}

	report.FinishedAt = t.now()
	report.DurationMS = report.FinishedAt.Sub(start).Milliseconds()
	metrics.RecordTrainingRun(time.Since(start), nil)

	t.logger.Info().
		Int("trained", report.Trained).
		Int("insufficient_data", report.InsufficientData).
		Int("fit_errors", report.FitErrors).
		Int64("duration_ms", report.DurationMS).
		Msg("training run complete")

	return &Result{Matrix: m, Registry: registry, Report: report}, nil
}

// TrainTarget gates, splits and fits one parameter. Skips are returned in
// the report; the error is non-nil only when ctx is done.
func (t *Trainer) TrainTarget(ctx context.Context, m *formulation.FeatureMatrix, target formulation.Target) (TargetReport, *model.TrainedModel, error) {
	start := t.now()
	logger := t.logger.With().Str("parameter", target.Parameter).Logger()

	report := TargetReport{
		Parameter: target.Parameter,
		Observed:  target.Observed,
		Aligned:   target.Len(),
		Dropped:   target.Dropped,
		Unmatched: target.Unmatched,
	}
	if len(target.Unmatched) > 0 {
		logger.Warn().
			Strs("recipes", target.Unmatched).
			Msg("tested recipes missing from formulation table")
	}

	finish := func(algorithm string) {
		report.DurationMS = t.now().Sub(start).Milliseconds()
		metrics.RecordTargetOutcome(string(report.Status), algorithm, t.now().Sub(start))
	}
	skip := func(status Status, err error) (TargetReport, *model.TrainedModel, error) {
		report.Status = status
		report.Err = err
		report.Error = err.Error()
		var ide *InsufficientDataError
		if errors.As(err, &ide) {
			report.Gate = ide.Gate
		}
		finish("")
		logger.Warn().Err(err).Str("status", string(status)).Msg("skipping test parameter")
		return report, nil, nil
	}

	if target.Observed < t.cfg.MinSamples {
		return skip(StatusInsufficientData, &InsufficientDataError{Parameter: target.Parameter, Gate: GateObserved, Have: target.Observed, Need: t.cfg.MinSamples})
	}
	if target.Len() < t.cfg.MinSamples {
		return skip(StatusInsufficientData, &InsufficientDataError{Parameter: target.Parameter, Gate: GateAligned, Have: target.Len(), Need: t.cfg.MinSamples})
	}

	trainIdx, testIdx := splitIndices(target.Len(), t.cfg.TestRatio, t.cfg.MinHeldOut, t.cfg.Seed)
	if len(trainIdx) < 2 {
		return skip(StatusInsufficientData, &InsufficientDataError{Parameter: target.Parameter, Gate: GateSplit, Have: len(trainIdx), Need: 2})
	}
	report.TrainSamples, report.TestSamples = len(trainIdx), len(testIdx)

	cols := t.schemaColumns(m, target)
	schema := make([]string, len(cols))
	materials := m.Materials()
	for k, j := range cols {
		schema[k] = materials[j]
	}
	X := m.Select(target.Rows, cols)

	xTrain, yTrain := gather(X, target.Values, trainIdx)
	xTest, yTest := gather(X, target.Values, testIdx)

	var (
		best      regress.Regressor
		bestScore regress.Scores
		fitErrs   []error
	)
	for _, name := range t.cfg.Candidates {
		if err := ctx.Err(); err != nil {
			return report, nil, err
		}
		r := factories[name](&t.cfg)
		scores, err := fitAndScore(r, xTrain, yTrain, xTest, yTest)
		cs := model.CandidateScore{Algorithm: name, Scores: scores}
		if err != nil {
			fe := &FitError{Parameter: target.Parameter, Algorithm: name, Err: err}
			fitErrs = append(fitErrs, fe)
			cs.Error = err.Error()
			metrics.RecordCandidateFailure(name)
			logger.Debug().Err(err).Str("algorithm", name).Msg("candidate failed")
		} else if best == nil || scores.R2 > bestScore.R2 {
			best, bestScore = r, scores
		}
		report.Candidates = append(report.Candidates, cs)
	}

	if best == nil {
		return skip(StatusFitError, fmt.Errorf("%w: %w", ErrAllCandidatesFailed, errors.Join(fitErrs...)))
	}

	trained := &model.TrainedModel{
		Parameter:    target.Parameter,
		Algorithm:    best.Name(),
		Regressor:    best,
		Schema:       schema,
		Scores:       bestScore,
		Candidates:   report.Candidates,
		Importances:  importances(best, schema),
		TrainSamples: len(trainIdx),
		TestSamples:  len(testIdx),
		Seed:         t.cfg.Seed,
		TrainedAt:    t.now().UTC(),
	}

	report.Status = StatusTrained
	report.Selected = best.Name()
	report.Scores = &bestScore
	finish(best.Name())

	logger.Info().
		Str("algorithm", best.Name()).
		Float64("r2", bestScore.R2).
		Float64("mae", bestScore.MAE).
		Float64("mse", bestScore.MSE).
		Int("features", len(schema)).
		Msg("trained test parameter")

	return report, trained, nil
}

// schemaColumns returns the matrix columns a parameter's model uses, in
// matrix order.
func (t *Trainer) schemaColumns(m *formulation.FeatureMatrix, target formulation.Target) []int {
	cols := make([]int, 0, m.Cols())
	for j := 0; j < m.Cols(); j++ {
		if t.cfg.PruneUnusedFeatures {
			used := false
			for _, i := range target.Rows {
				if m.At(i, j) != 0 {
					used = true
					break
				}
			}
			if !used {
				continue
			}
		}
		cols = append(cols, j)
	}
	return cols
}

// splitIndices shuffles 0..n-1 with seed and holds out the first
// max(ceil(n*ratio), minHeldOut) positions.
func splitIndices(n int, ratio float64, minHeldOut int, seed int64) (trainIdx, testIdx []int) {
	perm := rand.New(rand.NewSource(seed)).Perm(n) //nolint:gosec // reproducibility, not security
	nTest := int(math.Ceil(ratio * float64(n)))
	if nTest < minHeldOut {
		nTest = minHeldOut
	}
	if nTest > n {
		nTest = n
	}
	return perm[nTest:], perm[:nTest]
}

func gather(X [][]float64, y []float64, idx []int) ([][]float64, []float64) {
	xs := make([][]float64, len(idx))
	ys := make([]float64, len(idx))
	for k, i := range idx {
		xs[k] = X[i]
		ys[k] = y[i]
	}
	return xs, ys
}

// fitAndScore fits r and scores it on the held-out rows. A panic inside the
// regressor is reported as an error.
func fitAndScore(r regress.Regressor, xTrain [][]float64, yTrain []float64, xTest [][]float64, yTest []float64) (scores regress.Scores, err error) {
	defer func() {
		if p := recover(); p != nil {
			err = fmt.Errorf("panic: %v", p)
		}
	}()
	if err := r.Fit(xTrain, yTrain); err != nil {
		return regress.Scores{}, err
	}
	return regress.Evaluate(r, xTest, yTest)
}

// importances ranks schema columns by the regressor's importances.
func importances(r regress.Regressor, schema []string) []model.FeatureWeight {
	fi, ok := r.(regress.FeatureImporter)
	if !ok {
		return nil
	}
	var out []model.FeatureWeight
	for j, w := range fi.FeatureImportances() {
		if w > 0 && j < len(schema) {
			out = append(out, model.FeatureWeight{Material: schema[j], Weight: w})
		}
	}
	sort.SliceStable(out, func(a, b int) bool { return out[a].Weight > out[b].Weight })
	return out
}
