// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package storage

import (
	"context"
	"errors"
	"math"
	"os"
	"path/filepath"
	"slices"
	"testing"
	"time"

	"github.com/tomtom215/vulcanus/internal/model"
	"github.com/tomtom215/vulcanus/internal/regress"
)

func fittedModel(t *testing.T, parameter string) *model.TrainedModel {
	t.Helper()
	X := [][]float64{{1, 0}, {2, 1}, {3, 0}, {4, 1}, {5, 0}}
	y := []float64{3, 6, 7, 10, 11}
	lin := regress.NewLinear()
	if err := lin.Fit(X, y); err != nil {
		t.Fatalf("Fit() error = %v", err)
	}
	return &model.TrainedModel{
		Parameter:    parameter,
		Algorithm:    regress.NameLinear,
		Regressor:    lin,
		Schema:       []string{"NR", "Carbon black"},
		Scores:       regress.Scores{R2: 0.97, MAE: 0.1, MSE: 0.02},
		TrainSamples: 4,
		TestSamples:  2,
		Seed:         42,
		TrainedAt:    time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC),
	}
}

func openStores(t *testing.T) map[string]ModelStore {
	t.Helper()
	fs, err := NewFileStore(t.TempDir())
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	bs, err := NewBadgerStore("", true)
	if err != nil {
		t.Fatalf("NewBadgerStore() error = %v", err)
	}
	t.Cleanup(func() {
		_ = fs.Close()
		_ = bs.Close()
	})
	return map[string]ModelStore{BackendFile: fs, BackendBadger: bs}
}

func mustPut(t *testing.T, s ModelStore, parameter string) {
	t.Helper()
	if err := s.Put(context.Background(), fittedModel(t, parameter)); err != nil {
		t.Fatalf("Put(%q) error = %v", parameter, err)
	}
}

func storedParameters(t *testing.T, s ModelStore) []string {
	t.Helper()
	metas, err := s.List(context.Background())
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	names := make([]string, len(metas))
	for i, meta := range metas {
		names[i] = meta.Parameter
	}
	return names
}

func TestSafeKey(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"Tensile strength (MPa)", "Tensile_strength__MPa_"},
		{"Hardness", "Hardness"},
		{"Elongation %", "Elongation__"},
		{"Dehnung/Reißfestigkeit", "Dehnung_Reißfestigkeit"},
		{"", ""},
	}
	for _, tt := range tests {
		if got := SafeKey(tt.in); got != tt.want {
			t.Errorf("SafeKey(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStore_RoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			m := fittedModel(t, "Tensile strength (MPa)")
			if err := s.Put(ctx, m); err != nil {
				t.Fatalf("Put() error = %v", err)
			}

			got, err := s.Get(ctx, m.Parameter)
			if err != nil {
				t.Fatalf("Get() error = %v", err)
			}
			if got.Parameter != m.Parameter {
				t.Errorf("Parameter = %q, want %q", got.Parameter, m.Parameter)
			}
			if !slices.Equal(got.Schema, m.Schema) {
				t.Errorf("Schema = %v, want %v", got.Schema, m.Schema)
			}
			if got.Scores != m.Scores {
				t.Errorf("Scores = %+v, want %+v", got.Scores, m.Scores)
			}
			if !got.TrainedAt.Equal(m.TrainedAt) {
				t.Errorf("TrainedAt = %s, want %s", got.TrainedAt, m.TrainedAt)
			}

			x := []float64{6, 1}
			want, err := m.Regressor.Predict(x)
			if err != nil {
				t.Fatalf("Predict() error = %v", err)
			}
			have, err := got.Regressor.Predict(x)
			if err != nil {
				t.Fatalf("restored Predict() error = %v", err)
			}
			if math.Abs(want-have) > 1e-12 {
				t.Errorf("restored prediction = %v, want %v", have, want)
			}
		})
	}
}

func TestStore_GetMissing(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if _, err := s.Get(ctx, "Hardness"); !errors.Is(err, ErrModelNotFound) {
				t.Errorf("Get() error = %v, want ErrModelNotFound", err)
			}
		})
	}
}

func TestStore_KeyCollision(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			mustPut(t, s, "Tear (N/mm)")

			if err := s.Put(ctx, fittedModel(t, "Tear (N_mm)")); !errors.Is(err, ErrKeyCollision) {
				t.Errorf("Put() of a colliding parameter error = %v, want ErrKeyCollision", err)
			}

			// The sibling parameter shares the key but has no model.
			if _, err := s.Get(ctx, "Tear (N_mm)"); !errors.Is(err, ErrModelNotFound) {
				t.Errorf("Get() of the sibling error = %v, want ErrModelNotFound", err)
			}

			// Replacing the same parameter is allowed.
			if err := s.Put(ctx, fittedModel(t, "Tear (N/mm)")); err != nil {
				t.Errorf("replacing Put() error = %v", err)
			}
		})
	}
}

func TestStore_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			for _, p := range []string{"Hardness", "Abrasion", "Tensile"} {
				mustPut(t, s, p)
			}

			metas, err := s.List(ctx)
			if err != nil {
				t.Fatalf("List() error = %v", err)
			}
			if len(metas) != 3 {
				t.Fatalf("List() returned %d models, want 3", len(metas))
			}
			if metas[0].Parameter != "Abrasion" || metas[2].Parameter != "Tensile" {
				t.Errorf("List() order = %q..%q, want Abrasion..Tensile", metas[0].Parameter, metas[2].Parameter)
			}
			if metas[0].Algorithm != regress.NameLinear {
				t.Errorf("Algorithm = %q, want %q", metas[0].Algorithm, regress.NameLinear)
			}
			if metas[0].SchemaSize != 2 {
				t.Errorf("SchemaSize = %d, want 2", metas[0].SchemaSize)
			}
			if metas[0].Checksum == "" {
				t.Error("Checksum is empty")
			}

			for i := 0; i < 2; i++ {
				if err := s.Delete(ctx, "Hardness"); err != nil {
					t.Fatalf("Delete() #%d error = %v", i+1, err)
				}
			}
			if got := storedParameters(t, s); len(got) != 2 {
				t.Errorf("stored after Delete = %v, want 2 models", got)
			}
		})
	}
}

func TestRegistryRoundTrip(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			reg, err := model.NewRegistry([]*model.TrainedModel{
				fittedModel(t, "Tensile"),
				fittedModel(t, "Elongation"),
			})
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if err := SaveRegistry(ctx, s, reg); err != nil {
				t.Fatalf("SaveRegistry() error = %v", err)
			}

			loaded, err := LoadRegistry(ctx, s)
			if err != nil {
				t.Fatalf("LoadRegistry() error = %v", err)
			}
			if want := []string{"Elongation", "Tensile"}; !slices.Equal(loaded.Names(), want) {
				t.Errorf("Names() = %v, want %v", loaded.Names(), want)
			}
		})
	}
}

func TestSaveRegistry_ReplacesStoredModels(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			mustPut(t, s, "Hardness")
			mustPut(t, s, "Tear (N/mm)")
			mustPut(t, s, "Tensile")

			// Hardness no longer trains and the tear parameter was renamed to
			// a name with the same key.
			reg, err := model.NewRegistry([]*model.TrainedModel{
				fittedModel(t, "Tensile"),
				fittedModel(t, "Tear (N_mm)"),
			})
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if err := SaveRegistry(ctx, s, reg); err != nil {
				t.Fatalf("SaveRegistry() error = %v", err)
			}

			if got, want := storedParameters(t, s), []string{"Tear (N_mm)", "Tensile"}; !slices.Equal(got, want) {
				t.Errorf("stored = %v, want %v", got, want)
			}
			if _, err := s.Get(ctx, "Hardness"); !errors.Is(err, ErrModelNotFound) {
				t.Errorf("Get(Hardness) error = %v, want ErrModelNotFound", err)
			}

			empty, err := model.NewRegistry(nil)
			if err != nil {
				t.Fatalf("NewRegistry(nil) error = %v", err)
			}
			if err := SaveRegistry(ctx, s, empty); err != nil {
				t.Fatalf("SaveRegistry(empty) error = %v", err)
			}
			if got := storedParameters(t, s); len(got) != 0 {
				t.Errorf("stored after an empty registry = %v, want none", got)
			}
		})
	}
}

func TestSaveRegistry_RejectsCollidingRegistry(t *testing.T) {
	ctx := context.Background()
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			mustPut(t, s, "Hardness")

			reg, err := model.NewRegistry([]*model.TrainedModel{
				fittedModel(t, "Tensile"),
				fittedModel(t, "Tear (N/mm)"),
				fittedModel(t, "Tear (N_mm)"),
			})
			if err != nil {
				t.Fatalf("NewRegistry() error = %v", err)
			}
			if err := SaveRegistry(ctx, s, reg); !errors.Is(err, ErrKeyCollision) {
				t.Fatalf("SaveRegistry() error = %v, want ErrKeyCollision", err)
			}

			// Nothing was written or deleted.
			if got, want := storedParameters(t, s), []string{"Hardness"}; !slices.Equal(got, want) {
				t.Errorf("stored = %v, want %v", got, want)
			}
		})
	}
}

func TestFileStore_ChecksumMismatch(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	mustPut(t, s, "Hardness")

	// Re-encode the envelope with a wrong checksum.
	path := filepath.Join(dir, "Hardness"+fileSuffix)
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	sf, err := decodeMetadata(data)
	if err != nil {
		t.Fatalf("decodeMetadata() error = %v", err)
	}
	sf.Metadata.Checksum = "0"
	raw, err := encodeEnvelope(sf)
	if err != nil {
		t.Fatalf("encodeEnvelope() error = %v", err)
	}
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	if _, err := s.Get(ctx, "Hardness"); !errors.Is(err, ErrChecksumMismatch) {
		t.Errorf("Get() error = %v, want ErrChecksumMismatch", err)
	}
}

func TestFileStore_NoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s, err := NewFileStore(dir)
	if err != nil {
		t.Fatalf("NewFileStore() error = %v", err)
	}
	defer s.Close()

	mustPut(t, s, "Hardness")
	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatalf("ReadDir() error = %v", err)
	}
	if len(entries) != 1 || entries[0].Name() != "Hardness"+fileSuffix {
		t.Errorf("directory holds %v, want only Hardness%s", entries, fileSuffix)
	}
}

func TestOpen(t *testing.T) {
	s, err := Open(Config{Backend: BackendFile, Path: t.TempDir()})
	if err != nil {
		t.Fatalf("Open(file) error = %v", err)
	}
	if _, ok := s.(*FileStore); !ok {
		t.Errorf("Open(file) = %T, want *FileStore", s)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	s, err = Open(Config{Backend: BackendBadger, InMemory: true})
	if err != nil {
		t.Fatalf("Open(badger) error = %v", err)
	}
	if _, ok := s.(*BadgerStore); !ok {
		t.Errorf("Open(badger) = %T, want *BadgerStore", s)
	}
	if err := s.Close(); err != nil {
		t.Errorf("Close() error = %v", err)
	}

	if _, err := Open(Config{Backend: "s3"}); err == nil {
		t.Error("Open(s3) should fail")
	}
	if _, err := Open(Config{Backend: BackendFile}); err == nil {
		t.Error("Open(file) without a path should fail")
	}
}

func TestPut_RejectsInvalidModel(t *testing.T) {
	for name, s := range openStores(t) {
		t.Run(name, func(t *testing.T) {
			if err := s.Put(context.Background(), &model.TrainedModel{Parameter: "Hardness"}); err == nil {
				t.Error("Put() of a model without a regressor should fail")
			}
		})
	}
}
