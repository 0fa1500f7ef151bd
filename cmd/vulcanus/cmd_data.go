// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package main

import (
	"context"
	"errors"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

func newModelsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List the stored models",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				if e.store == nil {
					return errors.New("model storage is disabled")
				}
				metas, err := e.store.List(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), metas)
				}
				tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "PARAMETER\tALGORITHM\tFEATURES\tR2\tTRAINED")
				for _, m := range metas {
					fmt.Fprintf(tw, "%s\t%s\t%d\t%.4f\t%s\n", m.Parameter, m.Algorithm, m.SchemaSize, m.R2, m.TrainedAt.Format("2006-01-02 15:04"))
				}
				return tw.Flush()
			})
		},
	}
}

func newMaterialsCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "materials",
		Short: "List the materials of the formulation table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				m, err := e.pipeline.LoadMatrix(ctx)
				if err != nil {
					return err
				}
				if opts.jsonOutput {
					return writeJSON(cmd.OutOrStdout(), m.Materials())
				}
				for _, name := range m.Materials() {
					fmt.Fprintln(cmd.OutOrStdout(), name)
				}
				return nil
			})
		},
	}
}

func newRecipesCmd(opts *cliOptions) *cobra.Command {
	return &cobra.Command{
		Use:   "recipes [name]",
		Short: "List recipes, or show the composition of one",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withEnv(cmd, opts, func(ctx context.Context, e *env) error {
				m, err := e.pipeline.LoadMatrix(ctx)
				if err != nil {
					return err
				}
				out := cmd.OutOrStdout()

				if len(args) == 0 {
					if opts.jsonOutput {
						return writeJSON(out, m.Recipes())
					}
					for _, name := range m.Recipes() {
						fmt.Fprintln(out, name)
					}
					return nil
				}

				recipe, ok := m.Recipe(args[0])
				if !ok {
					return fmt.Errorf("recipe %q not found", args[0])
				}
				if opts.jsonOutput {
					return writeJSON(out, recipe)
				}
				tw := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
				fmt.Fprintln(tw, "MATERIAL\tAMOUNT")
				for _, c := range recipe.Components {
					fmt.Fprintf(tw, "%s\t%g\n", c.Material, c.Amount)
				}
				return tw.Flush()
			})
		},
	}
}
