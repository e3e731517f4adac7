// Package app wires the interpreter core to its collaborators, the
// program loader and the selected frontend, and runs the program.
package app

import (
	"context"
	"fmt"
	"os"

	"github.com/p-obrthr/chip8/internal/chip8"
	"github.com/p-obrthr/chip8/internal/dump"
	"github.com/p-obrthr/chip8/internal/frontend"
	"github.com/p-obrthr/chip8/internal/loader"
	"github.com/p-obrthr/chip8/internal/options"
	"github.com/retroenv/retrogolib/buildinfo"
	"github.com/retroenv/retrogolib/log"
)

// PrintBanner prints application version information.
func PrintBanner(logger *log.Logger, opts options.Program, version, commit, date string) {
	if opts.Quiet {
		return
	}
	logger.Info("chip8", log.String("version", buildinfo.Version(version, commit, date)))
}

// Run loads the program image and executes it with the selected
// frontend until it halts, fails or is interrupted.
func Run(ctx context.Context, logger *log.Logger, opts options.Program) error {
	image, err := loader.Load(opts.Input)
	if err != nil {
		return fmt.Errorf("loading program: %w", err)
	}

	if len(image) > loader.MaxImageSize {
		logger.Warn("Program image exceeds the available memory and will be truncated",
			log.Int("size", len(image)),
			log.Int("max", loader.MaxImageSize))
	}
	logger.Debug("Program image loaded",
		log.String("file", opts.Input),
		log.Int("bytes", len(image)))
	if opts.Debug {
		logger.Debug("Program image content\n" + loader.Hexdump(image))
	}

	if opts.Dump {
		fmt.Print(dump.Listing(image))
		return nil
	}

	cfg := chip8.Config{
		Logger:          logger,
		CyclesPerSecond: opts.CyclesPerSecond,
		Trace:           opts.Trace,
	}
	switch opts.Backend {
	case frontend.BackendGUI:
		cfg.Input = frontend.Keyboard{}
	case frontend.BackendTerminal:
		cfg.Render = frontend.NewTerminal(os.Stdout)
	}

	interp := chip8.New(cfg)
	interp.Load(image)

	logger.Info("Running program",
		log.String("file", opts.Input),
		log.String("backend", opts.Backend),
		log.Int("cps", opts.CyclesPerSecond))

	if opts.Backend == frontend.BackendGUI {
		return frontend.NewGUI(ctx, interp, opts.CyclesPerSecond).Run()
	}
	return interp.Run(ctx)
}
