// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package tables

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

// CSVLoader reads comma separated files. The first record is the header.
type CSVLoader struct{}

// Load implements Loader.
func (CSVLoader) Load(ctx context.Context, src Source) (*Table, error) {
	f, err := os.Open(src.Path) //nolint:gosec // path comes from operator configuration
	if err != nil {
		return nil, fmt.Errorf("open table %s: %w", src.Path, err)
	}
	defer func() { _ = f.Close() }() //nolint:errcheck // read-only file

	t, err := ReadCSV(ctx, f)
	if err != nil {
		return nil, fmt.Errorf("read table %s: %w", src.Path, err)
	}
	t.Name = src.Path
	return t, nil
}

// ReadCSV parses CSV records from r. An empty input yields an empty table.
func ReadCSV(ctx context.Context, r io.Reader) (*Table, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	t := &Table{}
	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		if t.Header == nil {
			t.Header = trimBOM(rec)
			continue
		}
		if blankRecord(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, nil
}

func trimBOM(rec []string) []string {
	if len(rec) > 0 {
		rec[0] = strings.TrimPrefix(rec[0], "\ufeff")
	}
	return rec
}

func blankRecord(rec []string) bool {
	for _, c := range rec {
		if strings.TrimSpace(c) != "" {
			return false
		}
	}
	return true
}
