// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package pipeline

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"

	"github.com/rs/zerolog"

	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/regress"
	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/tables"
	"github.com/tomtom215/vulcanus/internal/train"
)

const formulationCSV = `Category,Material,R1,R2,R3,R4,R5,R6
Polymer,A,10,0,20,5,8,12
Filler,B,5,15,-,10,2,7
Oil,C,,5,1,,3,2
`

const evaluationCSV = `Parameter,R1,R2,R3,R4,R5,R6
Tensile,25,35,41.5,20,27,36
Sparse,1,2,,,3,
`

func writeTables(t *testing.T) Config {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "formulation.csv")
	ep := filepath.Join(dir, "evaluation.csv")
	writeFile(t, fp, formulationCSV)
	writeFile(t, ep, evaluationCSV)

	cfg := train.DefaultConfig()
	cfg.Candidates = []string{regress.NameLinear}
	return Config{
		Formulation: tables.Source{Path: fp},
		Evaluation:  tables.Source{Path: ep},
		Training:    cfg,
	}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile(%s) error = %v", path, err)
	}
}

func newFileStore(t *testing.T) *storage.FileStore {
	t.Helper()
	store, err := storage.NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	t.Cleanup(func() { _ = store.Close() })
	return store
}

func newPipeline(t *testing.T, cfg Config, store storage.ModelStore) *Pipeline {
	t.Helper()
	p, err := New(cfg, store, zerolog.Nop())
	if err != nil {
		t.Fatalf("New() error = %v", err)
	}
	return p
}

func TestPipeline_Train(t *testing.T) {
	store := newFileStore(t)
	p := newPipeline(t, writeTables(t), store)

	sc, err := p.Train(context.Background())
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	if got := sc.Registry().Names(); !slices.Equal(got, []string{"Tensile"}) {
		t.Errorf("registry = %v, want [Tensile]", got)
	}
	if got := sc.Matrix().Materials(); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("materials = %v, want [A B C]", got)
	}
	report := sc.Report()
	if report == nil {
		t.Fatal("Report() = nil after training")
	}
	if report.Trained != 1 || report.InsufficientData != 1 {
		t.Errorf("report trained=%d insufficient=%d, want 1 and 1", report.Trained, report.InsufficientData)
	}

	m, err := sc.Registry().Get("Tensile")
	if err != nil {
		t.Fatalf("Get(Tensile) error = %v", err)
	}
	if !slices.Equal(m.Schema, []string{"A", "B", "C"}) {
		t.Errorf("schema = %v, want [A B C]", m.Schema)
	}

	metas, err := store.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 1 || metas[0].Parameter != "Tensile" {
		t.Errorf("stored = %+v, want only Tensile", metas)
	}
}

func TestPipeline_Restore(t *testing.T) {
	ctx := context.Background()
	p := newPipeline(t, writeTables(t), newFileStore(t))

	if _, err := p.Restore(ctx); !errors.Is(err, ErrNoStoredModels) {
		t.Errorf("Restore() on an empty store error = %v, want ErrNoStoredModels", err)
	}

	trained, err := p.Train(ctx)
	if err != nil {
		t.Fatalf("Train() error = %v", err)
	}

	restored, err := p.Restore(ctx)
	if err != nil {
		t.Fatalf("Restore() error = %v", err)
	}
	if restored.Report() != nil {
		t.Error("restored context carries a training report")
	}
	if !slices.Equal(restored.Registry().Names(), trained.Registry().Names()) {
		t.Errorf("restored registry = %v, want %v", restored.Registry().Names(), trained.Registry().Names())
	}

	f := map[string]float64{"A": 10, "B": 5}
	want := trained.Predict(f)
	got := restored.Predict(f)
	if len(got) != 1 || !got[0].OK() {
		t.Fatalf("restored predictions = %+v, want one success", got)
	}
	if math.Abs(want[0].Value-got[0].Value) > 1e-9 {
		t.Errorf("restored prediction = %v, want %v", got[0].Value, want[0].Value)
	}
}

func TestPipeline_RetrainDropsStaleModels(t *testing.T) {
	ctx := context.Background()
	cfg := writeTables(t)
	store := newFileStore(t)
	p := newPipeline(t, cfg, store)

	if _, err := p.Train(ctx); err != nil {
		t.Fatalf("first Train() error = %v", err)
	}

	// Tensile falls below the sample threshold.
	writeFile(t, cfg.Evaluation.Path, "Parameter,R1,R2,R3,R4,R5,R6\nTensile,25,35,41.5,,,\n")

	sc, err := p.Train(ctx)
	if err != nil {
		t.Fatalf("second Train() error = %v", err)
	}
	if sc.Registry().Len() != 0 || sc.Report().InsufficientData != 1 {
		t.Fatalf("retrain registry = %v insufficient=%d, want empty and 1", sc.Registry().Names(), sc.Report().InsufficientData)
	}

	metas, err := store.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(metas) != 0 {
		t.Errorf("store still holds %+v after the retrain", metas)
	}

	built, err := p.Build(ctx, true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if names := built.Registry().Names(); len(names) != 0 {
		t.Errorf("Build() served %v for an insufficient-data parameter", names)
	}
	if built.Report() == nil {
		t.Error("Build() should have trained when the store is empty")
	}
}

func TestPipeline_Build(t *testing.T) {
	p := newPipeline(t, writeTables(t), nil)

	// no store: preferring it falls through to training
	sc, err := p.Build(context.Background(), true)
	if err != nil {
		t.Fatalf("Build() error = %v", err)
	}
	if sc.Report() == nil {
		t.Error("Build() without a store should train")
	}
}

type mapLoader map[string]*tables.Table

func (m mapLoader) Load(_ context.Context, src tables.Source) (*tables.Table, error) {
	t, ok := m[src.Path]
	if !ok {
		return nil, os.ErrNotExist
	}
	return t, nil
}

func TestPipeline_LoadErrors(t *testing.T) {
	loader := mapLoader{
		"f": {Header: []string{"Category", "Material", "R1"}, Rows: [][]string{{"Polymer", "A", "ten"}}},
	}
	cfg := Config{
		Formulation: tables.Source{Path: "f"},
		Evaluation:  tables.Source{Path: "missing"},
		Training:    train.DefaultConfig(),
	}
	p, err := NewWithLoader(cfg, loader, nil, zerolog.Nop())
	if err != nil {
		t.Fatalf("NewWithLoader() error = %v", err)
	}

	if _, err := p.Train(context.Background()); !errors.Is(err, os.ErrNotExist) {
		t.Errorf("Train() error = %v, want os.ErrNotExist", err)
	}

	_, err = p.LoadMatrix(context.Background())
	var dfe *formulation.DataFormatError
	if !errors.As(err, &dfe) {
		t.Errorf("LoadMatrix() error = %v, want DataFormatError", err)
	}
}

func TestNew_InvalidConfig(t *testing.T) {
	if _, err := New(Config{Training: train.Config{MinSamples: 1}}, nil, zerolog.Nop()); err == nil {
		t.Error("New() with an invalid training config should fail")
	}
	if _, err := NewWithLoader(Config{Training: train.DefaultConfig()}, nil, nil, zerolog.Nop()); err == nil {
		t.Error("NewWithLoader() without a loader should fail")
	}
}
