// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package cache

import (
	"sort"
	"strconv"
	"time"

	"github.com/cespare/xxhash/v2"

	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/metrics"
)

// predictionsCache labels the metrics of Predictions.
const predictionsCache = "predictions"

// Predictions memoizes ServingContext.Predict results.
type Predictions struct {
	lru *LRU[inference.Predictions]
}

// NewPredictions creates a prediction cache.
func NewPredictions(capacity int, ttl time.Duration) *Predictions {
	return &Predictions{lru: NewLRU[inference.Predictions](capacity, ttl)}
}

// Predict returns the cached result for f under s, computing and storing it
// on a miss. A nil receiver always computes.
func (p *Predictions) Predict(s *inference.ServingContext, f inference.Formulation) inference.Predictions {
	if p == nil {
		return s.Predict(f)
	}
	key := Key(s.Generation(), f)
	if cached, ok := p.lru.Get(key); ok {
		metrics.RecordCacheLookup(predictionsCache, true)
		return append(inference.Predictions(nil), cached...)
	}
	metrics.RecordCacheLookup(predictionsCache, false)

	out := s.Predict(f)
	p.lru.Add(key, append(inference.Predictions(nil), out...))
	metrics.SetCacheEntries(predictionsCache, p.lru.Len())
	return out
}

// Purge empties the cache.
func (p *Predictions) Purge() {
	if p != nil {
		p.lru.Clear()
		metrics.SetCacheEntries(predictionsCache, 0)
	}
}

// Cleanup drops expired results, publishes the remaining size and returns
// how many were dropped.
func (p *Predictions) Cleanup() int {
	if p == nil {
		return 0
	}
	removed := p.lru.CleanupExpired()
	_, _, size := p.lru.Stats()
	metrics.SetCacheEntries(predictionsCache, size)
	return removed
}

// Stats returns the hit and miss counts since creation and the current size.
func (p *Predictions) Stats() (hits, misses int64, size int) {
	if p == nil {
		return 0, 0, 0
	}
	return p.lru.Stats()
}

// Len returns the number of cached results.
func (p *Predictions) Len() int {
	if p == nil {
		return 0
	}
	return p.lru.Len()
}

// Key hashes the generation and the formulation in material order. Material
// names are length-prefixed so no two formulations share an encoding.
func Key(generation uint64, f inference.Formulation) string {
	materials := make([]string, 0, len(f))
	for m := range f {
		materials = append(materials, m)
	}
	sort.Strings(materials)

	d := xxhash.New()
	buf := strconv.AppendUint(nil, generation, 10)
	buf = append(buf, ';')
	_, _ = d.Write(buf) //nolint:errcheck // xxhash writes never fail
	for _, m := range materials {
		buf = buf[:0]
		buf = strconv.AppendInt(buf, int64(len(m)), 10)
		buf = append(buf, ':')
		buf = append(buf, m...)
		buf = append(buf, '=')
		buf = strconv.AppendFloat(buf, f[m], 'g', -1, 64)
		buf = append(buf, ';')
		_, _ = d.Write(buf) //nolint:errcheck // xxhash writes never fail
	}
	return strconv.FormatUint(generation, 10) + "-" + strconv.FormatUint(d.Sum64(), 16)
}
