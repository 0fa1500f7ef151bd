// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package formulation

import (
	"errors"
	"math"
	"strconv"
	"strings"
)

var (
	errNotNumeric = errors.New("not a number")
	errNonFinite  = errors.New("not finite")
	errNegative   = errors.New("negative amount")
)

// placeholders are cell values lab spreadsheets use for "nothing here".
var placeholders = map[string]struct{}{
	"-":    {},
	"--":   {},
	"—":    {},
	"–":    {},
	"n/a":  {},
	"na":   {},
	"nan":  {},
	"none": {},
	"null": {},
	"nil":  {},
	"?":    {},
	"x":    {},
}

// IsBlank reports whether a raw cell means "no value": empty, whitespace only
// (non-breaking spaces included) or a known placeholder.
func IsBlank(raw string) bool {
	s := strings.TrimSpace(raw)
	if s == "" {
		return true
	}
	_, ok := placeholders[strings.ToLower(s)]
	return ok
}

// ParseAmount coerces a composition cell. Blank cells return used=false and
// no error. Any other cell must be a finite, non-negative number.
func ParseAmount(raw string) (amount float64, used bool, err error) {
	if IsBlank(raw) {
		return 0, false, nil
	}
	v, err := parseFinite(raw)
	if err != nil {
		return 0, false, err
	}
	if v < 0 {
		return 0, false, errNegative
	}
	return v, true, nil
}

// ParseMeasurement coerces an evaluation cell. Blank, non-numeric and
// non-finite readings return ok=false.
func ParseMeasurement(raw string) (value float64, ok bool) {
	if IsBlank(raw) {
		return 0, false
	}
	v, err := parseFinite(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}

func parseFinite(raw string) (float64, error) {
	v, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, errNotNumeric
	}
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0, errNonFinite
	}
	return v, nil
}
