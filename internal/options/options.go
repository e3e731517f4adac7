// Package options contains the program options.
package options

// Program options of the interpreter.
type Program struct {
	// Input is the path to the program image, the single required
	// positional argument.
	Input string

	// Backend selects the frontend: gui, terminal or none.
	Backend string

	// CyclesPerSecond is the target interpreter rate. The same cadence
	// drives instruction execution and the timer decrement.
	CyclesPerSecond int

	// Dump prints a listing of the program image instead of running it.
	Dump bool

	// Trace logs every executed instruction at debug level.
	Trace bool

	Debug bool
	Quiet bool
}
