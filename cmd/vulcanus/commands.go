// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

package main

import (
	"context"
	"fmt"
	"io"

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/tomtom215/vulcanus/internal/config"
	"github.com/tomtom215/vulcanus/internal/logging"
	"github.com/tomtom215/vulcanus/internal/pipeline"
	"github.com/tomtom215/vulcanus/internal/storage"
)

// cliOptions are the persistent flags.
type cliOptions struct {
	configPath string
	logLevel   string
	jsonOutput bool
}

// env is what every subcommand needs after flags are parsed.
type env struct {
	cfg      *config.Config
	store    storage.ModelStore
	pipeline *pipeline.Pipeline
}

func (e *env) Close() error {
	if e.store == nil {
		return nil
	}
	return e.store.Close()
}

func newRootCmd() *cobra.Command {
	opts := &cliOptions{}

	root := &cobra.Command{
		Use:           "vulcanus",
		Short:         "Predict rubber compound test results from formulations",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			logging.Init(logging.Config{
				Level:  opts.logLevel,
				Format: "console",
				Output: cmd.ErrOrStderr(),
			})
		},
	}
	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", "", "config file (default: search CONFIG_PATH, ./config.yaml, /etc/vulcanus/config.yaml)")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "warn", "log level")
	root.PersistentFlags().BoolVar(&opts.jsonOutput, "json", false, "print JSON instead of text")

	root.AddCommand(
		newTrainCmd(opts),
		newPredictCmd(opts),
		newModelsCmd(opts),
		newMaterialsCmd(opts),
		newRecipesCmd(opts),
	)
	return root
}

// openEnv loads configuration and opens the model store, if enabled.
func openEnv(opts *cliOptions) (*env, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return nil, err
	}

	e := &env{cfg: cfg}
	if cfg.Storage.Enabled() {
		e.store, err = storage.Open(storage.Config{
			Backend:  cfg.Storage.Backend,
			Path:     cfg.Storage.Path,
			InMemory: cfg.Storage.InMemory,
		})
		if err != nil {
			return nil, fmt.Errorf("open model store: %w", err)
		}
	}

	e.pipeline, err = pipeline.New(pipeline.Config{
		Formulation: cfg.Data.Formulation,
		Evaluation:  cfg.Data.Evaluation,
		Training:    cfg.Training,
	}, e.store, logging.WithComponent("cli"))
	if err != nil {
		_ = e.Close()
		return nil, err
	}
	return e, nil
}

// withEnv runs fn with an open env and closes it afterwards.
func withEnv(cmd *cobra.Command, opts *cliOptions, fn func(ctx context.Context, e *env) error) error {
	e, err := openEnv(opts)
	if err != nil {
		return err
	}
	defer func() {
		if err := e.Close(); err != nil {
			logging.Warn().Err(err).Msg("Error closing model store")
		}
	}()
	return fn(cmd.Context(), e)
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
