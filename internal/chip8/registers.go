package chip8

import (
	"errors"
	"fmt"

	"github.com/p-obrthr/chip8/internal/memory"
)

const (
	// stackSize is the number of return addresses the call stack holds.
	stackSize = 16

	// flagRegister is the index of VF, the flag output of the
	// arithmetic, shift and draw opcodes.
	flagRegister = 0xF
)

// Stack violation errors. Both indicate a malformed program and are
// fatal, never clamped.
var (
	ErrStackOverflow  = errors.New("call stack overflow")
	ErrStackUnderflow = errors.New("call stack underflow")
)

// Registers is the CHIP-8 register file: 16 general purpose 8-bit
// registers, the 16-bit index register and program counter, the call
// stack and the two 8-bit timers.
type Registers struct {
	// V holds the general purpose registers V0-VF. VF doubles as the
	// flag output of several opcodes and must not be relied on to
	// retain a value across them.
	V [16]uint8

	// I is the index register, conceptually a 12-bit address.
	I uint16

	// PC is the program counter. Instructions are fixed 16-bit words,
	// so every fetch advances it by exactly 2.
	PC uint16

	// Stack holds return addresses pushed by call instructions, SP
	// points at the next free slot.
	Stack [stackSize]uint16
	SP    uint8

	// DelayTimer and SoundTimer are decremented once per cycle while
	// nonzero. The sound timer is tracked but no tone is produced.
	DelayTimer uint8
	SoundTimer uint8
}

// NewRegisters returns a register file with the program counter at the
// program start address.
func NewRegisters() *Registers {
	return &Registers{PC: memory.ProgramStart}
}

// Push stores a return address on the call stack.
func (r *Registers) Push(addr uint16) error {
	if r.SP >= stackSize {
		return fmt.Errorf("pushing address $%04X: %w", addr, ErrStackOverflow)
	}
	r.Stack[r.SP] = addr
	r.SP++
	return nil
}

// Pop removes and returns the most recently pushed return address.
func (r *Registers) Pop() (uint16, error) {
	if r.SP == 0 {
		return 0, ErrStackUnderflow
	}
	r.SP--
	return r.Stack[r.SP], nil
}

// TickTimers decrements each nonzero timer by one. Timers clamp at
// zero and never wrap.
func (r *Registers) TickTimers() {
	if r.DelayTimer > 0 {
		r.DelayTimer--
	}
	if r.SoundTimer > 0 {
		r.SoundTimer--
	}
}
