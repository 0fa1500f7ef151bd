// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package storage

import (
	"bytes"
	"encoding/gob"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/cespare/xxhash/v2"
	"github.com/klauspost/compress/zstd"

	"github.com/tomtom215/vulcanus/internal/model"
)

// formatVersion is bumped when the envelope layout changes.
const formatVersion = 1

// Errors returned by every backend.
var (
	ErrModelNotFound    = errors.New("model not found")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrKeyCollision     = errors.New("key already holds a different test parameter")
	ErrFormatVersion    = errors.New("unsupported model format version")
)

// Metadata describes a stored model.
type Metadata struct {
	// Parameter is the test parameter name.
	Parameter string `json:"parameter"`

	// Key is the filesystem-safe key derived from Parameter.
	Key string `json:"key"`

	Algorithm  string    `json:"algorithm"`
	SchemaSize int       `json:"schema_size"`
	R2         float64   `json:"r2"`
	TrainedAt  time.Time `json:"trained_at"`
	SavedAt    time.Time `json:"saved_at"`

	// Checksum is the xxhash64 of the uncompressed payload, hex encoded.
	Checksum string `json:"checksum"`

	// SizeBytes is the compressed payload size.
	SizeBytes int64 `json:"size_bytes"`

	FormatVersion int `json:"format_version"`
}

// storedFile is the envelope written by every backend.
type storedFile struct {
	Metadata       Metadata
	CompressedData []byte
}

// SafeKey replaces every rune that is not a letter or digit with "_".
func SafeKey(parameter string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			return r
		}
		return '_'
	}, parameter)
}

// codec encodes and decodes envelopes. It is safe for concurrent use.
type codec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func newCodec() (*codec, error) {
	enc, err := zstd.NewWriter(nil, zstd.WithEncoderLevel(zstd.SpeedBetterCompression))
	if err != nil {
		return nil, fmt.Errorf("create zstd encoder: %w", err)
	}
	dec, err := zstd.NewReader(nil)
	if err != nil {
		_ = enc.Close() //nolint:errcheck // encoder was never used
		return nil, fmt.Errorf("create zstd decoder: %w", err)
	}
	return &codec{enc: enc, dec: dec}, nil
}

func (c *codec) close() {
	_ = c.enc.Close() //nolint:errcheck // nothing buffered in EncodeAll mode
	c.dec.Close()
}

// encode serializes m into an envelope.
func (c *codec) encode(m *model.TrainedModel) ([]byte, Metadata, error) {
	if err := m.Validate(); err != nil {
		return nil, Metadata{}, err
	}

	var raw bytes.Buffer
	if err := gob.NewEncoder(&raw).Encode(m); err != nil {
		return nil, Metadata{}, fmt.Errorf("encode model: %w", err)
	}
	compressed := c.enc.EncodeAll(raw.Bytes(), nil)

	meta := Metadata{
		Parameter:     m.Parameter,
		Key:           SafeKey(m.Parameter),
		Algorithm:     m.Algorithm,
		SchemaSize:    len(m.Schema),
		R2:            m.Scores.R2,
		TrainedAt:     m.TrainedAt,
		SavedAt:       time.Now().UTC(),
		Checksum:      strconv.FormatUint(xxhash.Sum64(raw.Bytes()), 16),
		SizeBytes:     int64(len(compressed)),
		FormatVersion: formatVersion,
	}

	out, err := encodeEnvelope(storedFile{Metadata: meta, CompressedData: compressed})
	if err != nil {
		return nil, Metadata{}, err
	}
	return out, meta, nil
}

func encodeEnvelope(sf storedFile) ([]byte, error) {
	var out bytes.Buffer
	if err := gob.NewEncoder(&out).Encode(sf); err != nil {
		return nil, fmt.Errorf("encode envelope: %w", err)
	}
	return out.Bytes(), nil
}

// decodeMetadata reads only the envelope.
func decodeMetadata(data []byte) (storedFile, error) {
	var sf storedFile
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&sf); err != nil {
		return sf, fmt.Errorf("decode envelope: %w", err)
	}
	if sf.Metadata.FormatVersion != formatVersion {
		return sf, fmt.Errorf("%w: %d", ErrFormatVersion, sf.Metadata.FormatVersion)
	}
	return sf, nil
}

// decode restores a model from an envelope and verifies its checksum.
func (c *codec) decode(data []byte) (*model.TrainedModel, Metadata, error) {
	sf, err := decodeMetadata(data)
	if err != nil {
		return nil, Metadata{}, err
	}
	raw, err := c.dec.DecodeAll(sf.CompressedData, nil)
	if err != nil {
		return nil, Metadata{}, fmt.Errorf("decompress model: %w", err)
	}
	if sum := strconv.FormatUint(xxhash.Sum64(raw), 16); sum != sf.Metadata.Checksum {
		return nil, Metadata{}, fmt.Errorf("%w: expected %s, got %s", ErrChecksumMismatch, sf.Metadata.Checksum, sum)
	}
	var m model.TrainedModel
	if err := gob.NewDecoder(bytes.NewReader(raw)).Decode(&m); err != nil {
		return nil, Metadata{}, fmt.Errorf("decode model: %w", err)
	}
	if err := m.Validate(); err != nil {
		return nil, Metadata{}, err
	}
	return &m, sf.Metadata, nil
}
