// Package chip8 implements the CHIP-8 CPU state machine: instruction
// decoding, the full opcode semantics, and the fetch/decode/execute
// cycle driver with timer handling and display compositing.
package chip8

import (
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// instructionSize is the size of CHIP-8 instructions in bytes.
const instructionSize = 2

// Instruction is an immutable view over one fetched 16-bit instruction
// word. Every 16-bit value is structurally valid; words that match no
// opcode handler execute as no-ops.
type Instruction uint16

// Decode combines the two big-endian bytes of an instruction word.
func Decode(first, second byte) Instruction {
	return Instruction(uint16(first)<<8 | uint16(second))
}

// Word returns the raw 16-bit instruction word.
func (in Instruction) Word() uint16 {
	return uint16(in)
}

// Indicator returns the first nibble (bits 15-12), selecting the
// opcode family.
func (in Instruction) Indicator() byte {
	return byte(in >> 12)
}

// X returns the second nibble (bits 11-8), a register index.
func (in Instruction) X() byte {
	return byte(in>>8) & 0x0F
}

// Y returns the third nibble (bits 7-4), a register index.
func (in Instruction) Y() byte {
	return byte(in>>4) & 0x0F
}

// N returns the fourth nibble (bits 3-0), a 4-bit immediate.
func (in Instruction) N() byte {
	return byte(in) & 0x0F
}

// NN returns the low byte (bits 7-0), an 8-bit immediate.
func (in Instruction) NN() byte {
	return byte(in)
}

// NNN returns the low 12 bits, a memory address.
func (in Instruction) NNN() uint16 {
	return uint16(in) & 0x0FFF
}

// Name returns the canonical mnemonic of the instruction, or an empty
// string if the word matches no known opcode. Used for tracing and for
// error context, not for dispatch.
func (in Instruction) Name() string {
	for _, op := range chip8cpu.Opcodes[int(in.Indicator())] {
		if op.Info.Mask&in.Word() == op.Info.Value {
			return op.Instruction.Name
		}
	}
	return ""
}
