// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"text/tabwriter"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vulcanus/internal/api"
	"github.com/tomtom215/vulcanus/internal/inference"
	"github.com/tomtom215/vulcanus/internal/validation"
)

func newPredictCmd(opts *cliOptions) *cobra.Command {
	var (
		materials []string
		file      string
		retrain   bool
	)
	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict every test parameter for a formulation",
		Long: `Predict every test parameter for a formulation given as repeated
--material NAME=AMOUNT flags or as a JSON request body file. Stored models
are used when available; otherwise the models are trained first.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			req, err := buildPredictRequest(materials, file)
			if err != nil {
				return err
			}
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				sc, err := e.pipeline.Build(ctx, !retrain)
				if err != nil {
					return err
				}
				f := inference.FromComponents(req.Components())
				resp := api.NewPredictionResponse(sc, f, sc.Predict(f), nil)
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), resp)
				}
				return printPrediction(cmd.OutOrStdout(), resp)
			})
		},
	}
	cmd.Flags().StringArrayVarP(&materials, "material", "m", nil, "material and amount as NAME=AMOUNT (repeatable)")
	cmd.Flags().StringVarP(&file, "file", "f", "", `JSON file shaped like {"materialCompositions":[{"material":"NR","composition":100}]}`)
	cmd.Flags().BoolVar(&retrain, "retrain", false, "train fresh models instead of using stored ones")
	return cmd
}

// buildPredictRequest merges the flag and file inputs and validates them
// with the same rules as the HTTP API.
func buildPredictRequest(materials []string, file string) (*api.PredictRequest, error) {
	req := &api.PredictRequest{}
	if file != "" {
		data, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(data, req); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}
	for _, m := range materials {
		name, amount, ok := strings.Cut(m, "=")
		if !ok {
			return nil, fmt.Errorf("material %q: expected NAME=AMOUNT", m)
		}
		v, err := strconv.ParseFloat(strings.TrimSpace(amount), 64)
		if err != nil {
			return nil, fmt.Errorf("material %q: %w", m, err)
		}
		req.MaterialCompositions = append(req.MaterialCompositions, api.MaterialInput{Material: strings.TrimSpace(name), Composition: v})
	}
	if len(req.MaterialCompositions) == 0 {
		return nil, errors.New("no materials given; use --material or --file")
	}
	if verr := validation.ValidateStruct(req); verr != nil {
		return nil, verr
	}
	return req, nil
}

func printPrediction(w io.Writer, resp api.PredictionResponse) error {
	params := make([]string, 0, len(resp.TestResults))
	for p := range resp.TestResults {
		params = append(params, p)
	}
	sort.Strings(params)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tPREDICTION")
	for _, p := range params {
		if v := resp.TestResults[p]; v != nil {
			fmt.Fprintf(tw, "%s\t%.4g\n", p, *v)
		} else {
			fmt.Fprintf(tw, "%s\tfailed: %s\n", p, resp.Failures[p])
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\nConfidence: %.2f%%\n", resp.ConfidenceScore)
	if len(resp.UnknownMaterials) > 0 {
		fmt.Fprintf(w, "Ignored unknown materials: %s\n", strings.Join(resp.UnknownMaterials, ", "))
	}
	fmt.Fprintln(w, "Recommended uses:")
	for _, u := range resp.RecommendedUses {
		fmt.Fprintf(w, "  - %s\n", u)
	}
	return nil
}
