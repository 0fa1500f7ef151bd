// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Package tables loads the raw spreadsheet-style tables that feed training.
//
// Two table shapes are consumed downstream:
//
//   - the formulation table: columns 0 and 1 identify the material category and
//     material name, every remaining column is a recipe;
//   - the evaluation table: column 0 is the test parameter name, every
//     remaining column is a recipe.
//
// This package knows nothing about those shapes. It returns a string grid
// (header plus rows) and leaves interpretation to the formulation package.
// Cells are never coerced here so that blank cells and placeholders survive
// until the feature matrix builder can classify them.
package tables

import (
	"context"
	"errors"
	"fmt"
	"strings"
)

// Supported source formats.
const (
	FormatCSV    = "csv"
	FormatDuckDB = "duckdb"
)

// ErrUnsupportedFormat is returned when a Source names a format no loader handles.
var ErrUnsupportedFormat = errors.New("unsupported table format")

// Table is a loaded string grid.
type Table struct {
	// Name identifies where the table came from (file path or table name).
	Name string

	// Header holds the column names in file order.
	Header []string

	// Rows holds the data rows. Rows may be shorter than Header.
	Rows [][]string
}

// Empty reports whether the table has no data rows.
func (t *Table) Empty() bool {
	return t == nil || len(t.Rows) == 0
}

// Cell returns the cell at (row, col), or "" when the row is short.
func (t *Table) Cell(row, col int) string {
	if row < 0 || row >= len(t.Rows) {
		return ""
	}
	r := t.Rows[row]
	if col < 0 || col >= len(r) {
		return ""
	}
	return r[col]
}

// Source describes where a table lives.
type Source struct {
	// Format is FormatCSV or FormatDuckDB. Empty means infer from Path.
	Format string `koanf:"format"`

	// Path is the CSV file or DuckDB database file.
	Path string `koanf:"path"`

	// Table names a table inside a DuckDB database. When empty and Format is
	// duckdb, Path is read as a CSV file through DuckDB's read_csv.
	Table string `koanf:"table"`
}

// ResolvedFormat returns the explicit format or one inferred from the file extension.
func (s Source) ResolvedFormat() string {
	if s.Format != "" {
		return strings.ToLower(s.Format)
	}
	lower := strings.ToLower(s.Path)
	switch {
	case strings.HasSuffix(lower, ".duckdb"), strings.HasSuffix(lower, ".db"):
		return FormatDuckDB
	default:
		return FormatCSV
	}
}

// Loader loads a table from a source.
type Loader interface {
	Load(ctx context.Context, src Source) (*Table, error)
}

// MultiLoader dispatches to a loader by source format.
type MultiLoader struct {
	loaders map[string]Loader
}

// NewMultiLoader returns a loader that understands CSV and DuckDB sources.
func NewMultiLoader() *MultiLoader {
	return &MultiLoader{
		loaders: map[string]Loader{
			FormatCSV:    CSVLoader{},
			FormatDuckDB: DuckDBLoader{},
		},
	}
}

// Load implements Loader.
func (m *MultiLoader) Load(ctx context.Context, src Source) (*Table, error) {
	format := src.ResolvedFormat()
	l, ok := m.loaders[format]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	return l.Load(ctx, src)
}
