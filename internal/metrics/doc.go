// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

/*
Package metrics provides Prometheus instrumentation for Vulcanus.

Collectors are registered with the default registry through promauto and are
exposed by the API router at /metrics.

# Metric Families

Training:
  - vulcanus_training_runs_total{result}: complete pipeline runs
  - vulcanus_training_run_duration_seconds: pipeline wall time
  - vulcanus_target_training_duration_seconds{status}: per test parameter
  - vulcanus_target_outcomes_total{status,algorithm}: trained or skipped
  - vulcanus_candidate_fit_failures_total{algorithm}: failed candidates

Serving:
  - vulcanus_models_served: models in the current serving context
  - vulcanus_serving_generation: bumps on every retrain
  - vulcanus_prediction_duration_seconds: one formulation, all parameters
  - vulcanus_prediction_failures_total{parameter}: isolated failures
  - vulcanus_cache_hits_total{cache}, vulcanus_cache_misses_total{cache}

Storage and API:
  - vulcanus_model_store_operations_total{backend,operation,result}
  - vulcanus_api_requests_total{method,endpoint,status}
  - vulcanus_api_request_duration_seconds{method,endpoint}
  - vulcanus_api_active_requests

# Usage

	start := time.Now()
	result, err := trainer.Train(ctx, matrix, params)
	metrics.RecordTrainingRun(time.Since(start), err)
*/
package metrics
