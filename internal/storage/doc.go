// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package storage persists trained models by test parameter.
//
// Models are serialized with gob (the regress package registers every
// concrete regressor), checksummed with xxhash and compressed with zstd. The
// resulting envelope carries metadata alongside the payload so listings do
// not need to decode models.
//
// # Keys
//
// A test parameter maps to a filesystem-safe key by replacing every rune
// that is not a letter or digit with "_":
//
//	"Tensile strength (MPa)" -> "Tensile_strength__MPa_"
//
// Distinct parameters can share a key. The envelope keeps the original
// parameter name, and Put refuses to overwrite a different parameter's
// model under the same key.
//
// # Backends
//
//   - FileStore: one file per parameter, {key}_model.gob.zst, written
//     through a temporary file and renamed into place.
//   - BadgerStore: one value per parameter under model:{key}.
//
// # Usage Example
//
//	store, err := storage.Open(storage.Config{Backend: "file", Path: "/data/models"})
//	if err != nil {
//	    return err
//	}
//	defer store.Close()
//
//	if err := storage.SaveRegistry(ctx, store, result.Registry); err != nil {
//	    return err
//	}
//	registry, err := storage.LoadRegistry(ctx, store)
package storage
