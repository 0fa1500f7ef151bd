// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package storage

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/tomtom215/vulcanus/internal/metrics"
	"github.com/tomtom215/vulcanus/internal/model"
)

// fileSuffix terminates every model file name.
const fileSuffix = "_model.gob.zst"

// FileStore keeps one file per test parameter in a directory.
type FileStore struct {
	baseDir string
	codec   *codec
	mu      sync.RWMutex
}

// NewFileStore creates the directory if needed.
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		return nil, errors.New("model store path is empty")
	}
	if err := os.MkdirAll(baseDir, 0o750); err != nil { //nolint:gosec // 0750 is acceptable for model storage
		return nil, fmt.Errorf("create storage directory: %w", err)
	}
	c, err := newCodec()
	if err != nil {
		return nil, err
	}
	return &FileStore{baseDir: baseDir, codec: c}, nil
}

// Put implements ModelStore.
func (s *FileStore) Put(ctx context.Context, m *model.TrainedModel) (err error) {
	defer func() { metrics.RecordStoreOperation(BackendFile, "put", err) }()

	data, meta, err := s.codec.encode(m)
	if err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	path := s.modelPath(meta.Key)
	if existing, rerr := os.ReadFile(path); rerr == nil { //nolint:gosec // path is built from a sanitized key
		if sf, derr := decodeMetadata(existing); derr == nil && sf.Metadata.Parameter != m.Parameter {
			return fmt.Errorf("%w: %q holds %q", ErrKeyCollision, meta.Key, sf.Metadata.Parameter)
		}
	}

	tmp, err := os.CreateTemp(s.baseDir, meta.Key+".*.tmp")
	if err != nil {
		return fmt.Errorf("create model file: %w", err)
	}
	defer func() {
		if err != nil {
			_ = os.Remove(tmp.Name()) //nolint:errcheck // best-effort cleanup
		}
	}()
	if _, err = tmp.Write(data); err != nil {
		_ = tmp.Close() //nolint:errcheck // write already failed
		return fmt.Errorf("write model file: %w", err)
	}
	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close model file: %w", err)
	}
	if err = os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("rename model file: %w", err)
	}
	return nil
}

// Get implements ModelStore.
func (s *FileStore) Get(ctx context.Context, parameter string) (m *model.TrainedModel, err error) {
	defer func() { metrics.RecordStoreOperation(BackendFile, "get", err) }()

	s.mu.RLock()
	defer s.mu.RUnlock()

	data, err := os.ReadFile(s.modelPath(SafeKey(parameter))) //nolint:gosec // path is built from a sanitized key
	if errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("%w: %q", ErrModelNotFound, parameter)
	}
	if err != nil {
		return nil, fmt.Errorf("read model file: %w", err)
	}
	m, meta, err := s.codec.decode(data)
	if err != nil {
		return nil, err
	}
	if meta.Parameter != parameter {
		return nil, fmt.Errorf("%w: %q (key holds %q)", ErrModelNotFound, parameter, meta.Parameter)
	}
	return m, nil
}

// List implements ModelStore. Unreadable files are skipped.
func (s *FileStore) List(ctx context.Context) ([]Metadata, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	entries, err := os.ReadDir(s.baseDir)
	if err != nil {
		return nil, fmt.Errorf("read directory: %w", err)
	}
	var metas []Metadata
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileSuffix) {
			continue
		}
		data, err := os.ReadFile(filepath.Join(s.baseDir, entry.Name())) //nolint:gosec // directory listing
		if err != nil {
			continue
		}
		sf, err := decodeMetadata(data)
		if err != nil {
			continue
		}
		metas = append(metas, sf.Metadata)
	}
	sortMetadata(metas)
	return metas, nil
}

// Delete implements ModelStore.
func (s *FileStore) Delete(ctx context.Context, parameter string) (err error) {
	defer func() { metrics.RecordStoreOperation(BackendFile, "delete", err) }()

	s.mu.Lock()
	defer s.mu.Unlock()

	err = os.Remove(s.modelPath(SafeKey(parameter)))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete model: %w", err)
	}
	return nil
}

// Close implements ModelStore.
func (s *FileStore) Close() error {
	s.codec.close()
	return nil
}

// modelPath returns the file path for a key.
func (s *FileStore) modelPath(key string) string {
	return filepath.Join(s.baseDir, key+fileSuffix)
}
