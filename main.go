// Package main implements a CHIP-8 virtual machine interpreter
package main

import (
	"context"
	"errors"
	"os"

	"github.com/p-obrthr/chip8/internal/app"
	"github.com/p-obrthr/chip8/internal/cli"
	"github.com/p-obrthr/chip8/internal/config"
	retroapp "github.com/retroenv/retrogolib/app"
	"github.com/retroenv/retrogolib/log"
)

var (
	version = "dev"
	commit  = ""
	date    = ""
)

func main() {
	ctx := retroapp.Context()

	opts, err := cli.ParseFlags()
	if err != nil {
		logger := config.CreateLogger(opts.Debug, opts.Quiet)
		var usageErr *cli.UsageError
		if errors.As(err, &usageErr) {
			app.PrintBanner(logger, opts, version, commit, date)
			usageErr.ShowUsage()
		} else {
			logger.Error(err.Error())
		}
		os.Exit(1)
	}

	logger := config.CreateLogger(opts.Debug || opts.Trace, opts.Quiet)
	app.PrintBanner(logger, opts, version, commit, date)

	if err := app.Run(ctx, logger, opts); err != nil {
		// Handle context cancellation (Ctrl+C) gracefully
		if errors.Is(err, context.Canceled) {
			logger.Info("Interrupted")
			return
		}
		logger.Fatal("Running program failed", log.Err(err))
	}
}
