// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package formulation

import (
	"fmt"
	"strings"
)

// DataFormatError reports a cell or table shape that cannot be turned into a
// feature matrix. It is fatal for a training run.
type DataFormatError struct {
	// Recipe is the recipe column the problem was found in, if any.
	Recipe string

	// Material is the material row the problem was found in, if any.
	Material string

	// Value is the offending raw cell, if any.
	Value string

	// Reason describes what is wrong.
	Reason string
}

// Error implements error.
func (e *DataFormatError) Error() string {
	var b strings.Builder
	b.WriteString("data format error")
	if e.Recipe != "" {
		fmt.Fprintf(&b, ": recipe %q", e.Recipe)
	}
	if e.Material != "" {
		fmt.Fprintf(&b, ": material %q", e.Material)
	}
	if e.Value != "" {
		fmt.Fprintf(&b, ": value %q", e.Value)
	}
	if e.Reason != "" {
		b.WriteString(": ")
		b.WriteString(e.Reason)
	}
	return b.String()
}
