// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package api

import (
	"bytes"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/goccy/go-json"

	"github.com/tomtom215/vulcanus/internal/cache"
	"github.com/tomtom215/vulcanus/internal/formulation"
	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/model"
	"github.com/tomtom215/vulcanus/internal/train"
)

// sumRegressor predicts the sum of its inputs.
type sumRegressor struct{}

func (sumRegressor) Name() string                     { return "sum" }
func (sumRegressor) Fit([][]float64, []float64) error { return nil }
func (sumRegressor) Predict(x []float64) (float64, error) {
	var s float64
	for _, v := range x {
		s += v
	}
	return s, nil
}

type failingRegressor struct{}

func (failingRegressor) Name() string                     { return "failing" }
func (failingRegressor) Fit([][]float64, []float64) error { return nil }
func (failingRegressor) Predict([]float64) (float64, error) {
	return 0, errors.New("diverged")
}

type stubRetrainer struct {
	err   error
	calls int
}

func (s *stubRetrainer) TriggerRetrain() error {
	s.calls++
	return s.err
}

func newTestServing(t *testing.T, report *train.Report) *inference.ServingContext {
	t.Helper()
	matrix, err := formulation.BuildFeatureMatrix([]formulation.RawRecipe{
		{Name: "Batch A", Amounts: []formulation.RawAmount{{Material: "NR", Value: "100"}, {Material: "Carbon Black", Value: "50"}, {Material: "Oil", Value: "-"}}},
		{Name: "Batch B", Amounts: []formulation.RawAmount{{Material: "NR", Value: "80"}, {Material: "Carbon Black", Value: "30"}, {Material: "Oil", Value: "5"}}},
	})
	if err != nil {
		t.Fatalf("BuildFeatureMatrix: %v", err)
	}
	registry, err := model.NewRegistry([]*model.TrainedModel{
		{
			Parameter: "Tensile Strength MPa Unaged",
			Algorithm: "sum",
			Regressor: sumRegressor{},
			Schema:    []string{"NR", "Carbon Black"},
			TrainedAt: time.Now(),
		},
		{
			Parameter: "Hardness Shore A Unaged",
			Algorithm: "failing",
			Regressor: failingRegressor{},
			Schema:    []string{"NR"},
		},
	})
	if err != nil {
		t.Fatalf("NewRegistry: %v", err)
	}
	sc, err := inference.NewServingContext(registry, matrix, report)
	if err != nil {
		t.Fatalf("NewServingContext: %v", err)
	}
	return sc
}

func newTestRouter(t *testing.T, ready bool, retrainer Retrainer) (http.Handler, *inference.Holder) {
	t.Helper()
	holder := &inference.Holder{}
	if ready {
		holder.Publish(newTestServing(t, &train.Report{Trained: 1, FitErrors: 1}))
	}
	h := NewHandler(HandlerConfig{
		Holder:          holder,
		Cache:           cache.NewPredictions(16, time.Minute),
		Retrainer:       retrainer,
		MaxRequestBytes: 4096,
	})
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitDisabled = true
	return NewRouter(h, RouterConfig{Middleware: mw}), holder
}

func do(t *testing.T, h http.Handler, method, path, body string) (*httptest.ResponseRecorder, APIResponse) {
	t.Helper()
	var reader *bytes.Reader
	if body != "" {
		reader = bytes.NewReader([]byte(body))
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)

	var resp APIResponse
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("%s %s: invalid JSON body %q: %v", method, path, w.Body.String(), err)
	}
	return w, resp
}

// decodeData re-decodes the envelope's data into v.
func decodeData(t *testing.T, resp APIResponse, v any) {
	t.Helper()
	raw, err := json.Marshal(resp.Data)
	if err != nil {
		t.Fatalf("marshal data: %v", err)
	}
	if err := json.Unmarshal(raw, v); err != nil {
		t.Fatalf("unmarshal data: %v", err)
	}
}

func TestHealth(t *testing.T) {
	t.Parallel()

	router, holder := newTestRouter(t, false, nil)

	w, _ := do(t, router, http.MethodGet, "/health/live", "")
	if w.Code != http.StatusOK {
		t.Errorf("live: expected 200, got %d", w.Code)
	}

	w, resp := do(t, router, http.MethodGet, "/health/ready", "")
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("ready before training: expected 503, got %d", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeServiceUnavailable {
		t.Errorf("expected SERVICE_UNAVAILABLE error, got %+v", resp.Error)
	}

	holder.Publish(newTestServing(t, nil))
	w, resp = do(t, router, http.MethodGet, "/health/ready", "")
	if w.Code != http.StatusOK {
		t.Fatalf("ready: expected 200, got %d", w.Code)
	}
	var status HealthStatus
	decodeData(t, resp, &status)
	if status.Models != 2 || status.Generation != 1 {
		t.Errorf("unexpected health status %+v", status)
	}
}

func TestNotReady(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, false, nil)
	for _, path := range []string{"/api/v1/materials", "/api/v1/recipes", "/api/v1/models"} {
		w, _ := do(t, router, http.MethodGet, path, "")
		if w.Code != http.StatusServiceUnavailable {
			t.Errorf("%s: expected 503, got %d", path, w.Code)
		}
	}
	w, _ := do(t, router, http.MethodPost, "/api/v1/predict", `{"materialCompositions":[{"material":"NR","composition":1}]}`)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("predict: expected 503, got %d", w.Code)
	}
}

func TestMaterialsAndRecipes(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)

	w, resp := do(t, router, http.MethodGet, "/api/v1/materials", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var materials MaterialsResponse
	decodeData(t, resp, &materials)
	if strings.Join(materials.Materials, ",") != "NR,Carbon Black,Oil" {
		t.Errorf("unexpected materials %v", materials.Materials)
	}
	if resp.Metadata.RequestID == "" {
		t.Error("expected request id in metadata")
	}
	if w.Header().Get("X-Content-Type-Options") != "nosniff" {
		t.Error("expected security headers")
	}

	_, resp = do(t, router, http.MethodGet, "/api/v1/recipes", "")
	var recipes RecipesResponse
	decodeData(t, resp, &recipes)
	if strings.Join(recipes.Recipes, ",") != "Batch A,Batch B" {
		t.Errorf("unexpected recipes %v", recipes.Recipes)
	}
}

func TestRecipeComposition(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)

	w, resp := do(t, router, http.MethodGet, "/api/v1/recipes/Batch%20A/composition", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var comp CompositionResponse
	decodeData(t, resp, &comp)
	if comp.Recipe != "Batch A" {
		t.Errorf("expected Batch A, got %q", comp.Recipe)
	}
	// Oil is unused in Batch A and must not be listed
	if len(comp.MaterialCompositions) != 2 {
		t.Fatalf("expected 2 components, got %+v", comp.MaterialCompositions)
	}
	if comp.MaterialCompositions[1].Material != "Carbon Black" || comp.MaterialCompositions[1].Amount != 50 {
		t.Errorf("unexpected component %+v", comp.MaterialCompositions[1])
	}

	w, resp = do(t, router, http.MethodGet, "/api/v1/recipes/Nope/composition", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404, got %d", w.Code)
	}
	if resp.Error == nil || resp.Error.Code != ErrCodeNotFound {
		t.Errorf("expected NOT_FOUND, got %+v", resp.Error)
	}
}

func TestPredict(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)
	body := `{"materialCompositions":[
		{"material":"NR","composition":100},
		{"material":"Carbon Black","composition":40},
		{"material":"Unobtainium","composition":10}
	]}`

	w, resp := do(t, router, http.MethodPost, "/api/v1/predict", body)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var pred PredictionResponse
	decodeData(t, resp, &pred)

	tensile := pred.TestResults["Tensile Strength MPa Unaged"]
	if tensile == nil || *tensile != 140 {
		t.Errorf("expected tensile 140, got %v", tensile)
	}
	hardness, present := pred.TestResults["Hardness Shore A Unaged"]
	if !present || hardness != nil {
		t.Errorf("expected null hardness entry, got %v (present=%v)", hardness, present)
	}
	if _, ok := pred.Failures["Hardness Shore A Unaged"]; !ok {
		t.Errorf("expected hardness failure, got %v", pred.Failures)
	}
	if len(pred.UnknownMaterials) != 1 || pred.UnknownMaterials[0] != "Unobtainium" {
		t.Errorf("unexpected unknown materials %v", pred.UnknownMaterials)
	}
	if pred.ConfidenceScore != 50 {
		t.Errorf("expected confidence 50, got %v", pred.ConfidenceScore)
	}
	if len(pred.RecommendedUses) == 0 {
		t.Error("expected at least one recommended use")
	}
	if len(pred.MaterialImpacts) != 3 {
		t.Errorf("expected 3 material impacts, got %+v", pred.MaterialImpacts)
	}
	if pred.Generation != 1 {
		t.Errorf("expected generation 1, got %d", pred.Generation)
	}
}

func TestPredict_BadRequests(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)
	tests := []struct {
		name   string
		body   string
		status int
		code   string
	}{
		{"malformed json", `{"materialCompositions":`, http.StatusBadRequest, ErrCodeBadRequest},
		{"empty list", `{"materialCompositions":[]}`, http.StatusBadRequest, ErrCodeValidation},
		{"missing list", `{}`, http.StatusBadRequest, ErrCodeValidation},
		{"negative amount", `{"materialCompositions":[{"material":"NR","composition":-1}]}`, http.StatusBadRequest, ErrCodeValidation},
		{"missing material", `{"materialCompositions":[{"composition":1}]}`, http.StatusBadRequest, ErrCodeValidation},
		{"too large", `{"materialCompositions":[{"material":"` + strings.Repeat("x", 5000) + `","composition":1}]}`, http.StatusRequestEntityTooLarge, ErrCodeBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, resp := do(t, router, http.MethodPost, "/api/v1/predict", tt.body)
			if w.Code != tt.status {
				t.Fatalf("expected %d, got %d: %s", tt.status, w.Code, w.Body.String())
			}
			if resp.Error == nil || resp.Error.Code != tt.code {
				t.Errorf("expected code %s, got %+v", tt.code, resp.Error)
			}
		})
	}
}

func TestModels(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)

	w, resp := do(t, router, http.MethodGet, "/api/v1/models", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var models ModelsResponse
	decodeData(t, resp, &models)
	if len(models.Models) != 2 || models.Models[0].Parameter != "Tensile Strength MPa Unaged" {
		t.Fatalf("unexpected models %+v", models.Models)
	}
	if models.Models[0].SchemaSize != 2 {
		t.Errorf("expected schema size 2, got %d", models.Models[0].SchemaSize)
	}

	w, resp = do(t, router, http.MethodGet, "/api/v1/models/report", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	var report train.Report
	decodeData(t, resp, &report)
	if report.Trained != 1 || report.FitErrors != 1 {
		t.Errorf("unexpected report %+v", report)
	}
}

func TestModelReport_LoadedFromStore(t *testing.T) {
	t.Parallel()

	router, holder := newTestRouter(t, false, nil)
	holder.Publish(newTestServing(t, nil))

	w, _ := do(t, router, http.MethodGet, "/api/v1/models/report", "")
	if w.Code != http.StatusNotFound {
		t.Errorf("expected 404 without a report, got %d", w.Code)
	}
}

func TestRetrain(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		retrainer Retrainer
		status    int
	}{
		{"accepted", &stubRetrainer{}, http.StatusAccepted},
		{"in progress", &stubRetrainer{err: train.ErrTrainingInProgress}, http.StatusConflict},
		{"failure", &stubRetrainer{err: errors.New("disk full")}, http.StatusInternalServerError},
		{"unavailable", nil, http.StatusServiceUnavailable},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			router, _ := newTestRouter(t, true, tt.retrainer)
			w, _ := do(t, router, http.MethodPost, "/api/v1/models/retrain", "")
			if w.Code != tt.status {
				t.Errorf("expected %d, got %d", tt.status, w.Code)
			}
		})
	}
}

func TestRouter_NotFoundAndMethod(t *testing.T) {
	t.Parallel()

	router, _ := newTestRouter(t, true, nil)

	w, resp := do(t, router, http.MethodGet, "/api/v1/nope", "")
	if w.Code != http.StatusNotFound || resp.Error == nil {
		t.Errorf("expected JSON 404, got %d", w.Code)
	}
	w, _ = do(t, router, http.MethodGet, "/api/v1/predict", "")
	if w.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", w.Code)
	}
}

func TestRateLimit(t *testing.T) {
	t.Parallel()

	h := NewHandler(HandlerConfig{})
	mw := DefaultChiMiddlewareConfig()
	mw.RateLimitRequests = 2
	router := NewRouter(h, RouterConfig{Middleware: mw})

	var last int
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/v1/materials", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		last = w.Code
	}
	if last != http.StatusTooManyRequests {
		t.Errorf("expected 429 on third request, got %d", last)
	}
}

func TestSanitizeLogValue(t *testing.T) {
	t.Parallel()

	got := sanitizeLogValue("bad\ninput\x7f")
	if got != `bad\x0ainput\x7f` {
		t.Errorf("unexpected sanitized value %q", got)
	}
}
