// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package storage

import (
	"context"
	"errors"
	"fmt"

	"github.com/dgraph-io/badger/v4"

	"github.com/tomtom215/vulcanus/internal/metrics"
	"github.com/tomtom215/vulcanus/internal/model"
)

// modelKeyPrefix namespaces model entries.
const modelKeyPrefix = "model:"

// BadgerStore keeps models in a BadgerDB instance.
type BadgerStore struct {
	db    *badger.DB
	codec *codec
}

// NewBadgerStore opens a BadgerDB at dir, or in memory.
func NewBadgerStore(dir string, inMemory bool) (*BadgerStore, error) {
	opts := badger.DefaultOptions(dir).WithLogger(nil)
	if inMemory {
		opts = badger.DefaultOptions("").WithInMemory(true).WithLogger(nil)
	} else if dir == "" {
		return nil, errors.New("model store path is empty")
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("open badger: %w", err)
	}
	c, err := newCodec()
	if err != nil {
		_ = db.Close() //nolint:errcheck // already failing
		return nil, err
	}
	return &BadgerStore{db: db, codec: c}, nil
}

// Put implements ModelStore.
func (s *BadgerStore) Put(ctx context.Context, m *model.TrainedModel) (err error) {
	defer func() { metrics.RecordStoreOperation(BackendBadger, "put", err) }()

	data, meta, err := s.codec.encode(m)
	if err != nil {
		return err
	}
	key := []byte(modelKeyPrefix + meta.Key)

	return s.db.Update(func(txn *badger.Txn) error {
		item, err := txn.Get(key)
		switch {
		case errors.Is(err, badger.ErrKeyNotFound):
		case err != nil:
			return fmt.Errorf("get model: %w", err)
		default:
			var holder string
			if verr := item.Value(func(val []byte) error {
				sf, derr := decodeMetadata(val)
				holder = sf.Metadata.Parameter
				return derr
			}); verr == nil && holder != m.Parameter {
				return fmt.Errorf("%w: %q holds %q", ErrKeyCollision, meta.Key, holder)
			}
		}
		if err := txn.Set(key, data); err != nil {
			return fmt.Errorf("set model: %w", err)
		}
		return nil
	})
}

// Get implements ModelStore.
func (s *BadgerStore) Get(ctx context.Context, parameter string) (m *model.TrainedModel, err error) {
	defer func() { metrics.RecordStoreOperation(BackendBadger, "get", err) }()

	var data []byte
	err = s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(modelKeyPrefix + SafeKey(parameter)))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("%w: %q", ErrModelNotFound, parameter)
		}
		if err != nil {
			return fmt.Errorf("get model: %w", err)
		}
		data, err = item.ValueCopy(nil)
		return err
	})
	if err != nil {
		return nil, err
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

// List implements ModelStore.
func (s *BadgerStore) List(ctx context.Context) ([]Metadata, error) {
	var metas []Metadata
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(modelKeyPrefix)
		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			err := it.Item().Value(func(val []byte) error {
				sf, err := decodeMetadata(val)
				if err != nil {
					return nil //nolint:nilerr // unreadable entries are skipped
				}
				metas = append(metas, sf.Metadata)
				return nil
			})
			if err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("list models: %w", err)
	}
	sortMetadata(metas)
	return metas, nil
}

// Delete implements ModelStore.
func (s *BadgerStore) Delete(ctx context.Context, parameter string) (err error) {
	defer func() { metrics.RecordStoreOperation(BackendBadger, "delete", err) }()

	return s.db.Update(func(txn *badger.Txn) error {
		return txn.Delete([]byte(modelKeyPrefix + SafeKey(parameter)))
	})
}

// Close implements ModelStore.
func (s *BadgerStore) Close() error {
	s.codec.close()
	return s.db.Close()
}
