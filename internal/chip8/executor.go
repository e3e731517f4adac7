package chip8

import (
	"errors"
	"fmt"

	"github.com/p-obrthr/chip8/internal/memory"
	"github.com/retroenv/retrogolib/log"
)

// ErrInvalidFontDigit is returned when a font address is requested for
// a value outside the hex digit range 0-F.
var ErrInvalidFontDigit = errors.New("font digit out of range")

// ExecutionError reports a fatal error raised while executing an
// instruction, carrying enough context to diagnose the program.
type ExecutionError struct {
	PC     uint16 // address the instruction was fetched from
	Opcode uint16
	Err    error
}

func (e *ExecutionError) Error() string {
	return fmt.Sprintf("executing opcode $%04X at $%04X: %v", e.Opcode, e.PC, e.Err)
}

func (e *ExecutionError) Unwrap() error {
	return e.Err
}

// execute runs one decoded instruction against the register file,
// memory and display buffer. Dispatch is on the indicator nibble with
// nested dispatch on N or NN. Words that match no case are silent
// no-ops, the program counter has already advanced past them.
func (in *Interpreter) execute(inst Instruction) error {
	switch inst.Indicator() {
	case 0x0:
		return in.executeSystem(inst)
	case 0x1: // 1NNN: jump
		in.regs.PC = inst.NNN()
	case 0x2: // 2NNN: call subroutine
		if err := in.regs.Push(in.regs.PC); err != nil {
			return err
		}
		in.regs.PC = inst.NNN()
	case 0x3: // 3XNN: skip if VX == NN
		in.skipIf(in.regs.V[inst.X()] == inst.NN())
	case 0x4: // 4XNN: skip if VX != NN
		in.skipIf(in.regs.V[inst.X()] != inst.NN())
	case 0x5: // 5XY0: skip if VX == VY
		if inst.N() == 0 {
			in.skipIf(in.regs.V[inst.X()] == in.regs.V[inst.Y()])
		} else {
			in.unknownOpcode(inst)
		}
	case 0x6: // 6XNN: load immediate
		in.regs.V[inst.X()] = inst.NN()
	case 0x7: // 7XNN: add immediate, modulo 256, VF untouched
		in.regs.V[inst.X()] += inst.NN()
	case 0x8:
		in.executeALU(inst)
	case 0x9: // 9XY0: skip if VX != VY
		if inst.N() == 0 {
			in.skipIf(in.regs.V[inst.X()] != in.regs.V[inst.Y()])
		} else {
			in.unknownOpcode(inst)
		}
	case 0xA: // ANNN: load index register
		in.regs.I = inst.NNN()
	case 0xB: // BNNN: jump with V0 offset
		in.regs.PC = uint16(in.regs.V[0]) + inst.NNN()
	case 0xC: // CXNN: random byte AND NN
		in.regs.V[inst.X()] = byte(in.rand.Uint32()) & inst.NN()
	case 0xD:
		return in.executeDraw(inst)
	case 0xE:
		in.executeKeySkip(inst)
	case 0xF:
		return in.executeMisc(inst)
	}
	return nil
}

// executeSystem handles the 0 family: clear screen and subroutine
// return. The historic 0NNN machine code call is ignored.
func (in *Interpreter) executeSystem(inst Instruction) error {
	switch inst.NN() {
	case 0xE0: // 00E0: clear the display
		in.display.Clear()
		in.drew = true
	case 0xEE: // 00EE: return from subroutine
		addr, err := in.regs.Pop()
		if err != nil {
			return err
		}
		in.regs.PC = addr
	default:
		in.unknownOpcode(inst)
	}
	return nil
}

// executeALU handles the 8XY_ family, dispatched on the last nibble.
// The flag computations read the operands before any mutation, and the
// flag is written last so that it wins when X is the flag register.
func (in *Interpreter) executeALU(inst Instruction) {
	x, y := inst.X(), inst.Y()
	vx, vy := in.regs.V[x], in.regs.V[y]

	switch inst.N() {
	case 0x0:
		in.regs.V[x] = vy
	case 0x1:
		in.regs.V[x] = vx | vy
	case 0x2:
		in.regs.V[x] = vx & vy
	case 0x3:
		in.regs.V[x] = vx ^ vy
	case 0x4: // add with carry flag
		sum := uint16(vx) + uint16(vy)
		in.regs.V[x] = byte(sum)
		in.setFlag(sum > 0xFF)
	case 0x5: // subtract, VF = no borrow
		in.regs.V[x] = vx - vy
		in.setFlag(vx >= vy)
	case 0x6: // shift right, VF = shifted out bit
		in.regs.V[x] = vx >> 1
		in.setFlag(vx&0x01 != 0)
	case 0x7: // reversed subtract, VF = no borrow
		in.regs.V[x] = vy - vx
		in.setFlag(vy >= vx)
	case 0xE: // shift left, VF = shifted out bit
		in.regs.V[x] = vx << 1
		in.setFlag(vx&0x80 != 0)
	default:
		in.unknownOpcode(inst)
	}
}

// executeDraw handles DXYN: XOR an N-row sprite read from memory at I
// onto the display. The origin wraps, the sprite itself clips at the
// screen edges. VF reports whether any lit pixel was cleared.
func (in *Interpreter) executeDraw(inst Instruction) error {
	x := int(in.regs.V[inst.X()]) % DisplayWidth
	y := int(in.regs.V[inst.Y()]) % DisplayHeight
	in.regs.V[flagRegister] = 0

	for row := 0; row < int(inst.N()); row++ {
		if y+row >= DisplayHeight {
			break // clip at the bottom edge, no vertical wrap
		}
		sprite, err := in.mem.Read(in.regs.I + uint16(row))
		if err != nil {
			return err
		}
		if in.display.drawSprite(x, y+row, sprite) {
			in.regs.V[flagRegister] = 1
		}
	}

	in.drew = true
	return nil
}

// executeKeySkip handles EX9E and EXA1, skipping the next instruction
// depending on whether key VX is currently held.
func (in *Interpreter) executeKeySkip(inst Instruction) {
	keys := in.input.Keys()
	key := in.regs.V[inst.X()] & 0x0F

	switch inst.NN() {
	case 0x9E: // EX9E: skip if key held
		in.skipIf(keys[key])
	case 0xA1: // EXA1: skip if key released
		in.skipIf(!keys[key])
	default:
		in.unknownOpcode(inst)
	}
}

// executeMisc handles the F family: timers, index arithmetic, font
// addressing, BCD and register block transfers.
func (in *Interpreter) executeMisc(inst Instruction) error {
	x := inst.X()

	switch inst.NN() {
	case 0x07: // FX07: VX := delay timer
		in.regs.V[x] = in.regs.DelayTimer
	case 0x0A: // FX0A: wait for a key press
		in.awaitKey(x)
	case 0x15: // FX15: delay timer := VX
		in.regs.DelayTimer = in.regs.V[x]
	case 0x18: // FX18: sound timer := VX
		in.regs.SoundTimer = in.regs.V[x]
	case 0x1E: // FX1E: I += VX, no overflow flag
		in.regs.I += uint16(in.regs.V[x])
	case 0x29: // FX29: I := font glyph address for digit VX
		digit := in.regs.V[x]
		if digit > 0xF {
			return fmt.Errorf("V%X=$%02X: %w", x, digit, ErrInvalidFontDigit)
		}
		in.regs.I = memory.FontAddress(digit)
	case 0x33: // FX33: store BCD digits of VX at I, I+1, I+2
		return in.storeBCD(in.regs.V[x])
	case 0x55: // FX55: store V0..VX at I
		for i := byte(0); i <= x; i++ {
			if err := in.mem.Write(in.regs.I+uint16(i), in.regs.V[i]); err != nil {
				return err
			}
		}
	case 0x65: // FX65: load V0..VX from I
		for i := byte(0); i <= x; i++ {
			value, err := in.mem.Read(in.regs.I + uint16(i))
			if err != nil {
				return err
			}
			in.regs.V[i] = value
		}
	default:
		in.unknownOpcode(inst)
	}
	return nil
}

// storeBCD decomposes value into its decimal digits and stores them at
// I, I+1 and I+2.
func (in *Interpreter) storeBCD(value byte) error {
	digits := [3]byte{value / 100, (value % 100) / 10, value % 10}
	for i, digit := range digits {
		if err := in.mem.Write(in.regs.I+uint16(i), digit); err != nil {
			return err
		}
	}
	return nil
}

// awaitKey arms the awaiting-key state for FX0A. If a key is already
// held the lowest one is stored immediately. Otherwise the program
// counter is rewound so it keeps pointing at the instruction, and the
// cycle driver resolves the wait before the next fetch.
func (in *Interpreter) awaitKey(x byte) {
	if key, held := lowestHeldKey(in.input.Keys()); held {
		in.regs.V[x] = key
		return
	}
	in.regs.PC -= instructionSize
	in.awaitingKey = true
	in.awaitRegister = x
}

// lowestHeldKey scans the keys in ascending order and returns the
// first held one.
func lowestHeldKey(keys [16]bool) (byte, bool) {
	for key := byte(0); key < 16; key++ {
		if keys[key] {
			return key, true
		}
	}
	return 0, false
}

// skipIf advances the program counter over the next instruction when
// the condition holds.
func (in *Interpreter) skipIf(condition bool) {
	if condition {
		in.regs.PC += instructionSize
	}
}

// setFlag writes the VF flag output of an arithmetic or shift opcode.
func (in *Interpreter) setFlag(condition bool) {
	if condition {
		in.regs.V[flagRegister] = 1
	} else {
		in.regs.V[flagRegister] = 0
	}
}

func (in *Interpreter) unknownOpcode(inst Instruction) {
	in.logger.Debug("Ignoring unknown opcode",
		log.Hex("opcode", inst.Word()),
		log.Hex("pc", in.regs.PC))
}
