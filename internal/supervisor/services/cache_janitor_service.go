// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package services

import (
	"context"
	"time"

	"github.com/rs/zerolog"
)

// CacheCleaner is a cache with expiring entries. *cache.Predictions
// satisfies it.
type CacheCleaner interface {
	Cleanup() int
	Stats() (hits, misses int64, size int)
}

// CacheJanitorService drops expired cache entries on a fixed interval.
type CacheJanitorService struct {
	cache    CacheCleaner
	interval time.Duration
	logger   zerolog.Logger
	name     string
}

// NewCacheJanitorService creates the service. A non-positive interval means
// one minute.
//
//nolint:gocritic // logger passed by value is acceptable for zerolog
func NewCacheJanitorService(cache CacheCleaner, interval time.Duration, logger zerolog.Logger) *CacheJanitorService {
	if interval <= 0 {
		interval = time.Minute
	}
	return &CacheJanitorService{
		cache:    cache,
		interval: interval,
		logger:   logger.With().Str("service", "cache-janitor").Logger(),
		name:     "cache-janitor",
	}
}

// Serve implements suture.Service.
func (j *CacheJanitorService) Serve(ctx context.Context) error {
	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			j.sweep()
		}
	}
}

func (j *CacheJanitorService) sweep() {
	removed := j.cache.Cleanup()
	if removed == 0 {
		return
	}
	hits, misses, size := j.cache.Stats()
	j.logger.Debug().
		Int("removed", removed).
		Int("size", size).
		Int64("hits", hits).
		Int64("misses", misses).
		Msg("Expired cache entries removed")
}

// String implements fmt.Stringer for suture's event log.
func (j *CacheJanitorService) String() string {
	return j.name
}
