// Vulcanus - Rubber Compound Property Prediction
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/vulcanus

// Command vulcanus trains and queries rubber compound property models from
// the command line. It reads the same configuration as the server.
//
//	vulcanus train
//	vulcanus predict -m NR=100 -m "Carbon Black N330=50"
//	vulcanus models
//	vulcanus materials
//	vulcanus recipes "Batch 12"
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/tomtom215/vulcanus/internal/logging"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := newRootCmd().ExecuteContext(ctx)
	stop()
	if err != nil {
		logging.Error().Err(err).Msg("Command failed")
		os.Exit(1)
	}
}
