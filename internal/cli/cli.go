// Package cli handles command line interface logic
package cli

import (
	"flag"
	"fmt"
	"os"

	"github.com/p-obrthr/chip8/internal/chip8"
	"github.com/p-obrthr/chip8/internal/frontend"
	"github.com/p-obrthr/chip8/internal/options"
)

// ParseFlags parses command line flags and returns the program options.
// Exactly one positional argument is required, the path to the program
// image; a missing argument yields a UsageError before any file is
// touched.
func ParseFlags() (options.Program, error) {
	flags := flag.NewFlagSet(os.Args[0], flag.ExitOnError)
	var opts options.Program
	readOptionFlags(flags, &opts)

	err := flags.Parse(os.Args[1:])
	args := flags.Args()
	if err != nil || len(args) == 0 {
		return opts, &UsageError{flags: flags}
	}

	if err := validateArgs(args); err != nil {
		return opts, err
	}

	if !frontend.Valid(opts.Backend) {
		return opts, fmt.Errorf("unsupported backend '%s', valid options: %s, %s, %s",
			opts.Backend, frontend.BackendGUI, frontend.BackendTerminal, frontend.BackendNone)
	}
	if opts.CyclesPerSecond <= 0 {
		return opts, fmt.Errorf("invalid cycle rate %d, must be positive", opts.CyclesPerSecond)
	}

	opts.Input = args[0]
	return opts, nil
}

func readOptionFlags(flags *flag.FlagSet, opts *options.Program) {
	flags.StringVar(&opts.Backend, "backend", frontend.BackendGUI,
		"frontend to use: gui, terminal, none")
	flags.IntVar(&opts.CyclesPerSecond, "cps", chip8.DefaultCyclesPerSecond,
		"interpreter cycles per second, also the timer decrement rate")
	flags.BoolVar(&opts.Dump, "dump", false, "print a listing of the program image and exit")
	flags.BoolVar(&opts.Trace, "trace", false, "log every executed instruction (implies -debug)")
	flags.BoolVar(&opts.Debug, "debug", false, "enable debug logging")
	flags.BoolVar(&opts.Quiet, "q", false, "perform operations quietly")
}

// UsageError represents an error that should show usage information
type UsageError struct {
	flags *flag.FlagSet
	msg   string
}

func (e *UsageError) Error() string {
	return e.msg
}

func (e *UsageError) ShowUsage() {
	if e.msg != "" {
		fmt.Printf("%s\n\n", e.msg)
	}
	fmt.Printf("usage: chip8 [options] <program file to run>\n\n")
	if e.flags != nil {
		e.flags.PrintDefaults()
	}
	fmt.Println()
}

// validateArgs checks that exactly one positional argument was passed
// and that no flags trail it.
func validateArgs(args []string) error {
	for i, arg := range args {
		if i > 0 && arg[0] == '-' {
			return &UsageError{
				msg: fmt.Sprintf("Potential argument %s found after the program file, please pass the program file as last argument", arg),
			}
		}
	}
	if len(args) > 1 {
		return &UsageError{
			msg: fmt.Sprintf("Expected exactly one program file, got %d arguments", len(args)),
		}
	}
	return nil
}
