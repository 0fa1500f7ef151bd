// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package main

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/tomtom215/vulcanus/internal/train"
)

func newTrainCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "train",
		Short: "Train one model per test parameter and store them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				sc, err := e.pipeline.Train(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), sc.Report())
				}
				return printReport(cmd.OutOrStdout(), sc.Report())
			})
		},
	}
}

func printReport(w io.Writer, r *train.Report) error {
	fmt.Fprintf(w, "%d recipes, %d materials, %d trained, %d insufficient data, %d fit errors (%d ms)\n\n",
		r.Recipes, r.Materials, r.Trained, r.InsufficientData, r.FitErrors, r.DurationMS)

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "PARAMETER\tSTATUS\tALGORITHM\tR2\tSAMPLES\tDETAIL")
	for _, t := range r.Targets {
		r2, detail := "-", t.Error
		if t.Scores != nil {
			r2 = fmt.Sprintf("%.4f", t.Scores.R2)
		}
		algorithm := t.Selected
		if algorithm == "" {
			algorithm = "-"
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d/%d\t%s\n",
			t.Parameter, t.Status, algorithm, r2, t.TrainSamples, t.TestSamples, detail)
	}
	return tw.Flush()
}
