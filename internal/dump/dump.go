// Package dump renders a program image as a human readable listing,
// one line per 16-bit instruction word with its canonical mnemonic.
// Words that match no opcode are shown as data.
package dump

import (
	"fmt"
	"strings"

	"github.com/p-obrthr/chip8/internal/memory"
	chip8cpu "github.com/retroenv/retrogolib/arch/cpu/chip8"
)

// Listing formats the complete program image. Addresses reflect the
// CHIP-8 memory space, the image loads at the program start address.
func Listing(image []byte) string {
	var sb strings.Builder

	for offset := 0; offset+1 < len(image); offset += 2 {
		word := uint16(image[offset])<<8 | uint16(image[offset+1])
		fmt.Fprintf(&sb, "$%04X: %04X  %s\n", memory.ProgramStart+offset, word, formatWord(word))
	}
	if len(image)%2 != 0 {
		trailing := image[len(image)-1]
		fmt.Fprintf(&sb, "$%04X: %02X    .byte $%02X\n",
			memory.ProgramStart+len(image)-1, trailing, trailing)
	}

	return sb.String()
}

// formatWord resolves the opcode of one instruction word and formats
// it with its parameters, or as a data word when nothing matches.
func formatWord(word uint16) string {
	ins := matchOpcode(word)
	if ins == nil {
		return fmt.Sprintf(".word $%04X", word)
	}

	params := formatParams(ins, word)
	if params == "" {
		return ins.Name
	}
	return fmt.Sprintf("%s %s", ins.Name, params)
}

// matchOpcode looks up the instruction for a word via the mask/value
// opcode table, keyed by the first nibble.
func matchOpcode(word uint16) *chip8cpu.Instruction {
	firstNibble := int(word >> 12)
	for _, op := range chip8cpu.Opcodes[firstNibble] {
		if op.Info.Mask&word == op.Info.Value {
			return op.Instruction
		}
	}
	return nil
}

// formatParams formats the operand fields of an instruction. The
// operand layout depends on both the instruction and the opcode
// family, e.g. ld covers register, index and timer transfers.
func formatParams(ins *chip8cpu.Instruction, word uint16) string {
	x := (word & 0x0F00) >> 8
	y := (word & 0x00F0) >> 4

	switch ins {
	case chip8cpu.Jp:
		if word&0xF000 == 0xB000 {
			return fmt.Sprintf("V0, $%03X", word&0x0FFF)
		}
		return fmt.Sprintf("$%03X", word&0x0FFF)

	case chip8cpu.Call:
		return fmt.Sprintf("$%03X", word&0x0FFF)

	case chip8cpu.Se, chip8cpu.Sne:
		if word&0xF000 == 0x5000 || word&0xF000 == 0x9000 {
			return fmt.Sprintf("V%X, V%X", x, y)
		}
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)

	case chip8cpu.Ld:
		return formatLoadParams(word, x, y)

	case chip8cpu.Add:
		switch word & 0xF000 {
		case 0x7000:
			return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
		case 0x8000:
			return fmt.Sprintf("V%X, V%X", x, y)
		default: // FX1E
			return fmt.Sprintf("I, V%X", x)
		}

	case chip8cpu.Or, chip8cpu.And, chip8cpu.Xor, chip8cpu.Sub, chip8cpu.Subn:
		return fmt.Sprintf("V%X, V%X", x, y)

	case chip8cpu.Shr, chip8cpu.Shl:
		return fmt.Sprintf("V%X", x)

	case chip8cpu.Rnd:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)

	case chip8cpu.Drw:
		return fmt.Sprintf("V%X, V%X, $%X", x, y, word&0x000F)

	case chip8cpu.Skp, chip8cpu.Sknp:
		return fmt.Sprintf("V%X", x)
	}

	return ""
}

// formatLoadParams formats the many ld variants based on the opcode
// family and sub-opcode.
func formatLoadParams(word, x, y uint16) string {
	switch word & 0xF000 {
	case 0x6000:
		return fmt.Sprintf("V%X, $%02X", x, word&0x00FF)
	case 0x8000:
		return fmt.Sprintf("V%X, V%X", x, y)
	case 0xA000:
		return fmt.Sprintf("I, $%03X", word&0x0FFF)
	}

	switch word & 0x00FF {
	case 0x07:
		return fmt.Sprintf("V%X, DT", x)
	case 0x0A:
		return fmt.Sprintf("V%X, K", x)
	case 0x15:
		return fmt.Sprintf("DT, V%X", x)
	case 0x18:
		return fmt.Sprintf("ST, V%X", x)
	case 0x29:
		return fmt.Sprintf("F, V%X", x)
	case 0x33:
		return fmt.Sprintf("B, V%X", x)
	case 0x55:
		return fmt.Sprintf("[I], V%X", x)
	case 0x65:
		return fmt.Sprintf("V%X, [I]", x)
	}
	return ""
}
