// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package storage

import (
	"context"
	"fmt"
	"sort"

	"github.com/tomtom215/vulcanus/internal/model"
)

// Backend names.
const (
	BackendFile   = "file"
	BackendBadger = "badger"
)

// ModelStore persists trained models by test parameter.
type ModelStore interface {
	// Put stores m under SafeKey(m.Parameter), replacing an older model of
	// the same parameter.
	Put(ctx context.Context, m *model.TrainedModel) error

	// Get returns the model of a parameter or ErrModelNotFound.
	Get(ctx context.Context, parameter string) (*model.TrainedModel, error)

	// List returns the metadata of every stored model sorted by parameter.
	List(ctx context.Context) ([]Metadata, error)

	// Delete removes a parameter's model. Deleting a missing model is not an
	// error.
	Delete(ctx context.Context, parameter string) error

	// Close releases the backend.
	Close() error
}

// Config selects and locates a backend.
type Config struct {
	Backend string
	Path    string

	// InMemory opens the badger backend without touching disk.
	InMemory bool
}

// Open returns the configured backend.
func Open(cfg Config) (ModelStore, error) {
	switch cfg.Backend {
	case "", BackendFile:
		return NewFileStore(cfg.Path)
	case BackendBadger:
		return NewBadgerStore(cfg.Path, cfg.InMemory)
	default:
		return nil, fmt.Errorf("unknown model store backend %q", cfg.Backend)
	}
}

// SaveRegistry makes the store hold exactly the models of r. Stored models of
// parameters missing from r are deleted before r is written. A registry with
// two parameters sharing a key is rejected before the store is touched.
func SaveRegistry(ctx context.Context, s ModelStore, r *model.Registry) error {
	keys := make(map[string]string, r.Len())
	for _, m := range r.Models() {
		key := SafeKey(m.Parameter)
		if other, ok := keys[key]; ok {
			return fmt.Errorf("%w: %q and %q both map to %q", ErrKeyCollision, other, m.Parameter, key)
		}
		keys[key] = m.Parameter
	}

	metas, err := s.List(ctx)
	if err != nil {
		return fmt.Errorf("list stored models: %w", err)
	}
	for _, meta := range metas {
		if _, err := r.Get(meta.Parameter); err == nil {
			continue
		}
		if err := s.Delete(ctx, meta.Parameter); err != nil {
			return fmt.Errorf("delete stale %q: %w", meta.Parameter, err)
		}
	}

	for _, m := range r.Models() {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := s.Put(ctx, m); err != nil {
			return fmt.Errorf("save %q: %w", m.Parameter, err)
		}
	}
	return nil
}

// LoadRegistry builds a registry from every stored model, ordered by
// parameter name.
func LoadRegistry(ctx context.Context, s ModelStore) (*model.Registry, error) {
	metas, err := s.List(ctx)
	if err != nil {
		return nil, err
	}
	models := make([]*model.TrainedModel, 0, len(metas))
	for _, meta := range metas {
		m, err := s.Get(ctx, meta.Parameter)
		if err != nil {
			return nil, fmt.Errorf("load %q: %w", meta.Parameter, err)
		}
		models = append(models, m)
	}
	return model.NewRegistry(models)
}

func sortMetadata(metas []Metadata) {
	sort.Slice(metas, func(i, j int) bool { return metas[i].Parameter < metas[j].Parameter })
}
