// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package tables

import (
	"context"
	"database/sql"
	"fmt"
	"strconv"
	"strings"
	"time"

	_ "github.com/duckdb/duckdb-go/v2"
)

// DuckDBLoader reads tables through an embedded DuckDB connection.
//
// With Source.Table set, Path is opened read-only as a DuckDB database and the
// named table is selected. Otherwise Path is scanned with read_csv in an
// in-memory database, every column read as VARCHAR so placeholders survive.
type DuckDBLoader struct{}

// Load implements Loader.
func (DuckDBLoader) Load(ctx context.Context, src Source) (*Table, error) {
	dsn := ""
	query := fmt.Sprintf("SELECT * FROM read_csv(%s, header = true, all_varchar = true)", quoteLiteral(src.Path))
	name := src.Path
	if src.Table != "" {
		dsn = src.Path + "?access_mode=read_only"
		query = "SELECT * FROM " + quoteIdent(src.Table)
		name = src.Path + ":" + src.Table
	}

	conn, err := sql.Open("duckdb", dsn)
	if err != nil {
		return nil, fmt.Errorf("open duckdb: %w", err)
	}
	defer func() { _ = conn.Close() }() //nolint:errcheck // read-only connection

	rows, err := conn.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("query %s: %w", name, err)
	}
	defer func() { _ = rows.Close() }() //nolint:errcheck // closed after full scan

	t, err := scanRows(rows)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", name, err)
	}
	t.Name = name
	return t, nil
}

func scanRows(rows *sql.Rows) (*Table, error) {
	cols, err := rows.Columns()
	if err != nil {
		return nil, err
	}
	t := &Table{Header: cols}

	values := make([]any, len(cols))
	ptrs := make([]any, len(cols))
	for i := range values {
		ptrs[i] = &values[i]
	}
	for rows.Next() {
		if err := rows.Scan(ptrs...); err != nil {
			return nil, err
		}
		rec := make([]string, len(cols))
		for i, v := range values {
			rec[i] = formatValue(v)
		}
		if blankRecord(rec) {
			continue
		}
		t.Rows = append(t.Rows, rec)
	}
	return t, rows.Err()
}

func formatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case []byte:
		return string(x)
	case float64:
		return strconv.FormatFloat(x, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(x), 'g', -1, 32)
	case int64:
		return strconv.FormatInt(x, 10)
	case int32:
		return strconv.FormatInt(int64(x), 10)
	case bool:
		return strconv.FormatBool(x)
	case time.Time:
		return x.Format(time.RFC3339)
	default:
		return fmt.Sprint(x)
	}
}

func quoteLiteral(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

func quoteIdent(s string) string {
	return `"` + strings.ReplaceAll(s, `"`, `""`) + `"`
}
