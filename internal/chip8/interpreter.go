package chip8

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/p-obrthr/chip8/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// DefaultCyclesPerSecond is the default interpreter rate. The same
// cadence drives instruction execution and the timer decrement.
const DefaultCyclesPerSecond = 60

// RenderSink accepts the display buffer after a draw and is expected
// to redraw it fully on each call.
type RenderSink interface {
	Render(rows [DisplayHeight]uint64) error
}

// InputSource reports which of the 16 logical keys 0-F are currently
// held. Mapping physical keys to the hex pad is the caller's concern.
type InputSource interface {
	Keys() [16]bool
}

type state int

const (
	stateLoaded state = iota
	stateRunning
	stateHalted
)

// Config configures a new interpreter instance.
type Config struct {
	Input  InputSource // nil behaves as no keys held
	Render RenderSink  // nil discards the display output
	Logger *log.Logger

	// CyclesPerSecond is the target execution rate, defaulting to
	// DefaultCyclesPerSecond.
	CyclesPerSecond int

	// Trace logs every executed instruction at debug level.
	Trace bool
}

// Interpreter owns the complete machine state of one CHIP-8 instance:
// memory, register file, display buffer and timers. It is not safe for
// concurrent use.
type Interpreter struct {
	mem     *memory.Memory
	regs    *Registers
	display *Display

	input  InputSource
	render RenderSink
	logger *log.Logger
	rand   *rand.Rand

	cyclesPerSecond int
	trace           bool

	state state
	drew  bool

	// awaiting-key models FX0A: while armed, the cycle driver polls
	// the keys instead of fetching, so the program makes no progress
	// until a key is held.
	awaitingKey   bool
	awaitRegister byte
}

// New returns an interpreter in the loaded state, ready to receive a
// program image.
func New(cfg Config) *Interpreter {
	if cfg.Input == nil {
		cfg.Input = nullInput{}
	}
	if cfg.Logger == nil {
		cfg.Logger = log.NewWithConfig(log.DefaultConfig())
	}
	if cfg.CyclesPerSecond <= 0 {
		cfg.CyclesPerSecond = DefaultCyclesPerSecond
	}

	return &Interpreter{
		mem:             memory.New(),
		regs:            NewRegisters(),
		display:         &Display{},
		input:           cfg.Input,
		render:          cfg.Render,
		logger:          cfg.Logger,
		rand:            rand.New(rand.NewSource(time.Now().UnixNano())),
		cyclesPerSecond: cfg.CyclesPerSecond,
		trace:           cfg.Trace,
	}
}

// Load copies a program image into memory at the program start
// address, silently truncating oversized images. It returns the number
// of bytes loaded.
func (in *Interpreter) Load(image []byte) int {
	return in.mem.Load(image)
}

// Run executes cycles at the configured rate until the program runs
// past the end of memory, a fatal error occurs or ctx is cancelled.
// The pacing sleep is interruptible for responsive shutdown.
func (in *Interpreter) Run(ctx context.Context) error {
	in.state = stateRunning
	period := time.Second / time.Duration(in.cyclesPerSecond)

	for in.state == stateRunning {
		start := time.Now()

		if err := in.Step(); err != nil {
			return err
		}
		if err := in.flushDisplay(); err != nil {
			return err
		}
		if err := pace(ctx, period-time.Since(start)); err != nil {
			return err
		}
	}

	in.logger.Debug("Interpreter halted", log.Hex("pc", in.regs.PC))
	return nil
}

// Step executes a single interpreter cycle: resolve a pending key
// wait, or fetch, decode and execute one instruction, then decrement
// the timers. Fetching past the end of memory halts the interpreter
// gracefully, it is treated as natural program termination.
func (in *Interpreter) Step() error {
	if in.state == stateHalted {
		return nil
	}

	if in.awaitingKey {
		if key, held := lowestHeldKey(in.input.Keys()); held {
			in.regs.V[in.awaitRegister] = key
			in.regs.PC += instructionSize
			in.awaitingKey = false
		}
		in.regs.TickTimers()
		return nil
	}

	if in.regs.PC >= memory.Size-1 {
		in.state = stateHalted
		return nil
	}

	fetchPC := in.regs.PC
	first, err := in.mem.Read(fetchPC)
	if err != nil {
		return err
	}
	second, err := in.mem.Read(fetchPC + 1)
	if err != nil {
		return err
	}
	in.regs.PC += instructionSize

	inst := Decode(first, second)
	if in.trace {
		in.logger.Debug("Executing instruction",
			log.Hex("pc", fetchPC),
			log.Hex("opcode", inst.Word()),
			log.String("mnemonic", inst.Name()))
	}

	if err := in.execute(inst); err != nil {
		in.state = stateHalted
		return &ExecutionError{PC: fetchPC, Opcode: inst.Word(), Err: err}
	}

	in.regs.TickTimers()
	return nil
}

// Halted reports whether the interpreter has stopped executing.
func (in *Interpreter) Halted() bool {
	return in.state == stateHalted
}

// Rows returns the current display buffer contents.
func (in *Interpreter) Rows() [DisplayHeight]uint64 {
	return in.display.Rows()
}

// flushDisplay pushes the display buffer to the render sink after a
// cycle that mutated it.
func (in *Interpreter) flushDisplay() error {
	if !in.drew {
		return nil
	}
	in.drew = false

	if in.render == nil {
		return nil
	}
	if err := in.render.Render(in.display.Rows()); err != nil {
		return fmt.Errorf("rendering display: %w", err)
	}
	return nil
}

// pace sleeps for the remainder of the cycle period. Missing the
// target rate is not an error, the next cycle starts immediately.
func pace(ctx context.Context, remaining time.Duration) error {
	if remaining <= 0 {
		return ctx.Err()
	}

	timer := time.NewTimer(remaining)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// nullInput reports no keys held. It stands in when no input source is
// attached, for example in headless runs.
type nullInput struct{}

func (nullInput) Keys() [16]bool {
	return [16]bool{}
}
