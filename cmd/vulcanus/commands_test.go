// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package main

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vulcanus/internal/api"
	"github.com/tomtom215/vulcanus/internal/storage"
	"github.com/tomtom215/vulcanus/internal/train"
)

const formulationCSV = `Category,Material,R1,R2,R3,R4,R5,R6
Polymer,A,10,0,20,5,8,12
Filler,B,5,15,-,10,2,7
Oil,C,,5,1,,3,2
`

const evaluationCSV = `Parameter,R1,R2,R3,R4,R5,R6
Tensile,25,35,41.5,20,27,36
`

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

// writeConfig lays out tables, a model directory and a config file in a
// temporary directory and returns the config path.
func writeConfig(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	fp := filepath.Join(dir, "formulation.csv")
	ep := filepath.Join(dir, "evaluation.csv")
	writeFile(t, fp, formulationCSV)
	writeFile(t, ep, evaluationCSV)

	path := filepath.Join(dir, "config.yaml")
	writeFile(t, path, fmt.Sprintf(`data:
  formulation:
    path: %s
  evaluation:
    path: %s
training:
  candidates: [linear]
storage:
  backend: file
  path: %s
`, fp, ep, filepath.Join(dir, "models")))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v", args, err)
	}
	return out
}

func decode(t *testing.T, out string, v any) {
	t.Helper()
	if err := json.Unmarshal([]byte(out), v); err != nil {
		t.Fatalf("decode %q: %v", out, err)
	}
}

func TestTrainThenModels(t *testing.T) {
	cfg := writeConfig(t)

	var report train.Report
	decode(t, mustRun(t, "--config", cfg, "train", "--json"), &report)
	if report.Trained != 1 || report.Recipes != 6 {
		t.Errorf("report trained=%d recipes=%d, want 1 and 6", report.Trained, report.Recipes)
	}

	var metas []storage.Metadata
	decode(t, mustRun(t, "--config", cfg, "models", "--json"), &metas)
	if len(metas) != 1 {
		t.Fatalf("models listed %d entries, want 1", len(metas))
	}
	if metas[0].Parameter != "Tensile" || metas[0].SchemaSize != 3 {
		t.Errorf("model = %s with %d features, want Tensile with 3", metas[0].Parameter, metas[0].SchemaSize)
	}
}

func TestTrain_TextReport(t *testing.T) {
	out := mustRun(t, "--config", writeConfig(t), "train")
	for _, want := range []string{"PARAMETER", "Tensile", "linear"} {
		if !strings.Contains(out, want) {
			t.Errorf("report does not mention %q:\n%s", want, out)
		}
	}
}

func TestPredict(t *testing.T) {
	cfg := writeConfig(t)

	var resp api.PredictionResponse
	decode(t, mustRun(t, "--config", cfg, "predict", "--json", "-m", "A=10", "-m", "B=5", "-m", "Z=1"), &resp)
	if v, ok := resp.TestResults["Tensile"]; !ok || v == nil {
		t.Errorf("TestResults = %v, want a Tensile value", resp.TestResults)
	}
	if !slices.Equal(resp.UnknownMaterials, []string{"Z"}) {
		t.Errorf("UnknownMaterials = %v, want [Z]", resp.UnknownMaterials)
	}
	if resp.ConfidenceScore != 100 {
		t.Errorf("ConfidenceScore = %v, want 100", resp.ConfidenceScore)
	}
}

func TestPredict_BadInput(t *testing.T) {
	cfg := writeConfig(t)

	tests := []struct {
		name    string
		args    []string
		wantErr string
	}{
		{"no materials", nil, "no materials"},
		{"missing amount", []string{"-m", "A"}, "NAME=AMOUNT"},
		{"negative amount", []string{"-m", "A=-3"}, ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := run(t, append([]string{"--config", cfg, "predict"}, tt.args...)...)
			if err == nil {
				t.Fatal("predict succeeded")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestMaterialsAndRecipes(t *testing.T) {
	cfg := writeConfig(t)

	if got := strings.Fields(mustRun(t, "--config", cfg, "materials")); !slices.Equal(got, []string{"A", "B", "C"}) {
		t.Errorf("materials = %v", got)
	}
	if got := strings.Fields(mustRun(t, "--config", cfg, "recipes")); !slices.Equal(got, []string{"R1", "R2", "R3", "R4", "R5", "R6"}) {
		t.Errorf("recipes = %v", got)
	}

	out := mustRun(t, "--config", cfg, "recipes", "R3", "--json")
	if !strings.Contains(out, `"material": "A"`) || strings.Contains(out, `"material": "B"`) {
		t.Errorf("R3 should list A and not B:\n%s", out)
	}

	if _, err := run(t, "--config", cfg, "recipes", "R9"); err == nil || !strings.Contains(err.Error(), "not found") {
		t.Errorf("recipes R9 error = %v, want not found", err)
	}
}

func TestMissingConfig(t *testing.T) {
	if _, err := run(t, "--config", filepath.Join(t.TempDir(), "nope.yaml"), "materials"); err == nil {
		t.Error("missing config file was accepted")
	}
}
