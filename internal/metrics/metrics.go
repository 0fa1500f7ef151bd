// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Training Metrics
	TrainingRuns = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_training_runs_total",
			Help: "Total number of training runs by result",
		},
		[]string{"result"}, // "success", "error"
	)

	TrainingRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vulcanus_training_run_duration_seconds",
			Help:    "Duration of complete training runs in seconds",
			Buckets: []float64{0.1, 0.5, 1, 2.5, 5, 10, 30, 60, 120, 300},
		},
	)

	TargetTrainingDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vulcanus_target_training_duration_seconds",
			Help:    "Duration of training one test parameter in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"status"},
	)

	TargetOutcomes = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_target_outcomes_total",
			Help: "Per test parameter training outcomes",
		},
		[]string{"status", "algorithm"}, // status: trained, insufficient_data, fit_error
	)

	CandidateFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_candidate_fit_failures_total",
			Help: "Candidate regressors that failed to fit or evaluate",
		},
		[]string{"algorithm"},
	)

	ModelsServed = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vulcanus_models_served",
			Help: "Number of trained models in the current serving context",
		},
	)

	ServingGeneration = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vulcanus_serving_generation",
			Help: "Generation number of the current serving context",
		},
	)

	// Prediction Metrics
	PredictionDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "vulcanus_prediction_duration_seconds",
			Help:    "Duration of predicting every test parameter for one formulation",
			Buckets: []float64{0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1, 0.5, 1},
		},
	)

	PredictionFailures = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_prediction_failures_total",
			Help: "Per test parameter prediction failures",
		},
		[]string{"parameter"},
	)

	// Cache Metrics
	CacheHits = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_cache_hits_total",
			Help: "Total number of cache hits",
		},
		[]string{"cache"},
	)

	CacheMisses = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_cache_misses_total",
			Help: "Total number of cache misses",
		},
		[]string{"cache"},
	)

	CacheEntries = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "vulcanus_cache_entries",
			Help: "Number of entries held by a cache",
		},
		[]string{"cache"},
	)

	// Model Store Metrics
	StoreOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_model_store_operations_total",
			Help: "Model store operations by backend, operation and result",
		},
		[]string{"backend", "operation", "result"},
	)

	// API Metrics
	APIRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "vulcanus_api_requests_total",
			Help: "Total number of API requests",
		},
		[]string{"method", "endpoint", "status"},
	)

	APIRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "vulcanus_api_request_duration_seconds",
			Help:    "Duration of API requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "endpoint"},
	)

	APIActiveRequests = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "vulcanus_api_active_requests",
			Help: "Number of API requests currently being processed",
		},
	)
)

// RecordTrainingRun records a complete training run.
func RecordTrainingRun(duration time.Duration, err error) {
	TrainingRunDuration.Observe(duration.Seconds())
	if err != nil {
		TrainingRuns.WithLabelValues("error").Inc()
		return
	}
	TrainingRuns.WithLabelValues("success").Inc()
}

// RecordTargetOutcome records the outcome of training one test parameter.
// algorithm is empty for skipped parameters.
func RecordTargetOutcome(status, algorithm string, duration time.Duration) {
	if algorithm == "" {
		algorithm = "none"
	}
	TargetOutcomes.WithLabelValues(status, algorithm).Inc()
	TargetTrainingDuration.WithLabelValues(status).Observe(duration.Seconds())
}

// RecordCandidateFailure counts a candidate that failed to fit.
func RecordCandidateFailure(algorithm string) {
	CandidateFailures.WithLabelValues(algorithm).Inc()
}

// SetServing publishes the size and generation of the serving context.
func SetServing(models int, generation uint64) {
	ModelsServed.Set(float64(models))
	ServingGeneration.Set(float64(generation))
}

// RecordPrediction records one formulation prediction and its failed parameters.
func RecordPrediction(duration time.Duration, failed []string) {
	PredictionDuration.Observe(duration.Seconds())
	for _, p := range failed {
		PredictionFailures.WithLabelValues(p).Inc()
	}
}

// RecordCacheLookup records a cache hit or miss.
func RecordCacheLookup(cache string, hit bool) {
	if hit {
		CacheHits.WithLabelValues(cache).Inc()
	} else {
		CacheMisses.WithLabelValues(cache).Inc()
	}
}

// SetCacheEntries publishes the current size of a cache.
func SetCacheEntries(cache string, n int) {
	CacheEntries.WithLabelValues(cache).Set(float64(n))
}

// RecordStoreOperation records a model store operation.
func RecordStoreOperation(backend, operation string, err error) {
	result := "success"
	if err != nil {
		result = "error"
	}
	StoreOperations.WithLabelValues(backend, operation, result).Inc()
}

// RecordAPIRequest records an API request metric
func RecordAPIRequest(method, endpoint, statusCode string, duration time.Duration) {
	APIRequestsTotal.WithLabelValues(method, endpoint, statusCode).Inc()
	APIRequestDuration.WithLabelValues(method, endpoint).Observe(duration.Seconds())
}

// TrackActiveRequest tracks active API requests
func TrackActiveRequest(inc bool) {
	if inc {
		APIActiveRequests.Inc()
	} else {
		APIActiveRequests.Dec()
	}
}
