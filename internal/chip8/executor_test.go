package chip8

import (
	"errors"
	"testing"

	"github.com/p-obrthr/chip8/internal/memory"
	"github.com/retroenv/retrogolib/assert"
	"github.com/retroenv/retrogolib/log"
)

// stubInput is a fixed keypad state for tests.
type stubInput struct {
	keys [16]bool
}

func (s *stubInput) Keys() [16]bool {
	return s.keys
}

func newTestInterpreter(t *testing.T, input InputSource) *Interpreter {
	t.Helper()
	return New(Config{
		Input:  input,
		Logger: log.NewTestLogger(t),
	})
}

// loadWords loads big-endian instruction words as the program image.
func loadWords(in *Interpreter, words ...uint16) {
	image := make([]byte, 0, len(words)*2)
	for _, word := range words {
		image = append(image, byte(word>>8), byte(word))
	}
	in.Load(image)
}

func step(t *testing.T, in *Interpreter, cycles int) {
	t.Helper()
	for i := 0; i < cycles; i++ {
		assert.NoError(t, in.Step())
	}
}

func TestLoadImmediate(t *testing.T) {
	for x := 0; x < 16; x++ {
		in := newTestInterpreter(t, nil)
		loadWords(in, 0x6000|uint16(x)<<8|0xA7)
		step(t, in, 1)

		for reg, value := range in.regs.V {
			if reg == x {
				assert.Equal(t, uint8(0xA7), value)
			} else {
				assert.Equal(t, uint8(0), value)
			}
		}
	}
}

func TestAddImmediateWrapsWithoutFlag(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.V[0x2] = 250
	in.regs.V[flagRegister] = 7

	loadWords(in, 0x720A) // V2 += 10
	step(t, in, 1)

	assert.Equal(t, uint8(4), in.regs.V[0x2])
	assert.Equal(t, uint8(7), in.regs.V[flagRegister]) // untouched
}

func TestALUFamily(t *testing.T) {
	tests := []struct {
		name     string
		word     uint16
		vx, vy   uint8
		wantVX   uint8
		wantFlag uint8
	}{
		{"assign", 0x8010, 5, 9, 9, 0},
		{"or", 0x8011, 0xF0, 0x0F, 0xFF, 0},
		{"and", 0x8012, 0xF0, 0xFF, 0xF0, 0},
		{"xor", 0x8013, 0xFF, 0x0F, 0xF0, 0},
		{"add with carry", 0x8014, 200, 100, 44, 1},
		{"add without carry", 0x8014, 10, 20, 30, 0},
		{"sub with borrow", 0x8015, 5, 10, 251, 0},
		{"sub without borrow", 0x8015, 10, 5, 5, 1},
		{"sub equal operands", 0x8015, 7, 7, 0, 1},
		{"shr low bit set", 0x8016, 0x05, 0, 0x02, 1},
		{"shr low bit clear", 0x8016, 0x04, 0, 0x02, 0},
		{"subn with borrow", 0x8017, 10, 5, 251, 0},
		{"subn without borrow", 0x8017, 5, 10, 5, 1},
		{"shl high bit set", 0x801E, 0x81, 0, 0x02, 1},
		{"shl high bit clear", 0x801E, 0x41, 0, 0x82, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInterpreter(t, nil)
			in.regs.V[0x0] = tt.vx
			in.regs.V[0x1] = tt.vy

			loadWords(in, tt.word)
			step(t, in, 1)

			assert.Equal(t, tt.wantVX, in.regs.V[0x0])
			assert.Equal(t, tt.wantFlag, in.regs.V[flagRegister])
		})
	}
}

func TestSkipFamily(t *testing.T) {
	tests := []struct {
		name   string
		word   uint16
		vx, vy uint8
		taken  bool
	}{
		{"se immediate taken", 0x3042, 0x42, 0, true},
		{"se immediate not taken", 0x3042, 0x41, 0, false},
		{"sne immediate taken", 0x4042, 0x41, 0, true},
		{"sne immediate not taken", 0x4042, 0x42, 0, false},
		{"se register taken", 0x5010, 7, 7, true},
		{"se register not taken", 0x5010, 7, 8, false},
		{"sne register taken", 0x9010, 7, 8, true},
		{"sne register not taken", 0x9010, 7, 7, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			in := newTestInterpreter(t, nil)
			in.regs.V[0x0] = tt.vx
			in.regs.V[0x1] = tt.vy

			loadWords(in, tt.word)
			step(t, in, 1)

			want := uint16(memory.ProgramStart + 2)
			if tt.taken {
				want += 2
			}
			assert.Equal(t, want, in.regs.PC)
		})
	}
}

func TestJump(t *testing.T) {
	in := newTestInterpreter(t, nil)
	loadWords(in, 0x1ABC)
	step(t, in, 1)

	assert.Equal(t, uint16(0xABC), in.regs.PC)
}

func TestJumpWithOffset(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.V[0x0] = 0x10

	loadWords(in, 0xB300)
	step(t, in, 1)

	assert.Equal(t, uint16(0x310), in.regs.PC)
}

func TestCallReturnRoundTrip(t *testing.T) {
	in := newTestInterpreter(t, nil)
	// 0x200: call 0x204, 0x202: unreachable, 0x204: return
	loadWords(in, 0x2204, 0x0000, 0x00EE)

	step(t, in, 1)
	assert.Equal(t, uint16(0x204), in.regs.PC)
	assert.Equal(t, uint8(1), in.regs.SP)

	step(t, in, 1)
	// back at the instruction immediately after the call
	assert.Equal(t, uint16(0x202), in.regs.PC)
	assert.Equal(t, uint8(0), in.regs.SP)
}

func TestCallStackOverflow(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.SP = stackSize

	loadWords(in, 0x2300)
	err := in.Step()

	var execErr *ExecutionError
	assert.True(t, errors.As(err, &execErr))
	assert.Equal(t, uint16(0x2300), execErr.Opcode)
	assert.Equal(t, uint16(memory.ProgramStart), execErr.PC)
	assert.True(t, errors.Is(err, ErrStackOverflow))
	assert.True(t, in.Halted())
}

func TestReturnStackUnderflow(t *testing.T) {
	in := newTestInterpreter(t, nil)

	loadWords(in, 0x00EE)
	err := in.Step()

	assert.True(t, errors.Is(err, ErrStackUnderflow))
	assert.True(t, in.Halted())
}

func TestClearScreen(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.display.drawSprite(10, 10, 0xFF)

	loadWords(in, 0x00E0)
	step(t, in, 1)

	for _, row := range in.Rows() {
		assert.Equal(t, uint64(0), row)
	}
}

func TestDrawSpriteCollisionFlag(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.NoError(t, in.mem.Write(0x300, 0x3C))
	assert.NoError(t, in.mem.Write(0x301, 0x42))
	in.regs.I = 0x300
	in.regs.V[0x0] = 8
	in.regs.V[0x1] = 4

	// draw the same 2-row sprite twice at the same coordinates
	loadWords(in, 0xD012, 0xD012)

	step(t, in, 1)
	assert.Equal(t, uint8(0), in.regs.V[flagRegister])
	assert.True(t, in.display.Pixel(10, 4))

	step(t, in, 1)
	assert.Equal(t, uint8(1), in.regs.V[flagRegister])
	for _, row := range in.Rows() {
		assert.Equal(t, uint64(0), row) // XOR cleared everything
	}
}

func TestDrawOriginWraps(t *testing.T) {
	in := newTestInterpreter(t, nil)
	assert.NoError(t, in.mem.Write(0x300, 0x80))
	in.regs.I = 0x300
	in.regs.V[0x0] = 64 + 4 // wraps to column 4
	in.regs.V[0x1] = 32 + 2 // wraps to row 2

	loadWords(in, 0xD011)
	step(t, in, 1)

	assert.True(t, in.display.Pixel(4, 2))
}

func TestDrawClipsAtBottomEdge(t *testing.T) {
	in := newTestInterpreter(t, nil)
	for i := uint16(0); i < 4; i++ {
		assert.NoError(t, in.mem.Write(0x300+i, 0xFF))
	}
	in.regs.I = 0x300
	in.regs.V[0x0] = 0
	in.regs.V[0x1] = 30

	loadWords(in, 0xD014)
	step(t, in, 1)

	rows := in.Rows()
	assert.True(t, rows[30] != 0)
	assert.True(t, rows[31] != 0)
	// no vertical wrap onto the top rows
	assert.Equal(t, uint64(0), rows[0])
	assert.Equal(t, uint64(0), rows[1])
}

func TestDrawSpriteReadOutOfBounds(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.I = memory.Size - 1

	loadWords(in, 0xD012) // second sprite row reads past the end
	err := in.Step()

	assert.True(t, errors.Is(err, memory.ErrOutOfBounds))
	assert.True(t, in.Halted())
}

func TestKeySkip(t *testing.T) {
	tests := []struct {
		name  string
		word  uint16
		held  bool
		taken bool
	}{
		{"skp key held", 0xE09E, true, true},
		{"skp key released", 0xE09E, false, false},
		{"sknp key held", 0xE0A1, true, false},
		{"sknp key released", 0xE0A1, false, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			input := &stubInput{}
			input.keys[0x5] = tt.held

			in := newTestInterpreter(t, input)
			in.regs.V[0x0] = 0x5

			loadWords(in, tt.word)
			step(t, in, 1)

			want := uint16(memory.ProgramStart + 2)
			if tt.taken {
				want += 2
			}
			assert.Equal(t, want, in.regs.PC)
		})
	}
}

func TestRandomMasked(t *testing.T) {
	in := newTestInterpreter(t, nil)
	loadWords(in, 0xC000) // NN=0 forces zero regardless of the random byte
	step(t, in, 1)
	assert.Equal(t, uint8(0), in.regs.V[0x0])

	for i := 0; i < 10; i++ {
		in := newTestInterpreter(t, nil)
		loadWords(in, 0xC10F)
		step(t, in, 1)
		assert.Equal(t, uint8(0), in.regs.V[0x1]&0xF0)
	}
}

func TestTimerOpcodes(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.V[0x3] = 0x40

	// set delay timer from V3, read it back into V4, set sound timer
	loadWords(in, 0xF315, 0xF407, 0xF318)
	step(t, in, 3)

	// each cycle decrements the running timer once
	assert.Equal(t, uint8(0x3F), in.regs.V[0x4])
	assert.Equal(t, uint8(0x3F), in.regs.SoundTimer)
}

func TestAddToIndex(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.I = 0x300
	in.regs.V[0x6] = 0x22

	loadWords(in, 0xF61E)
	step(t, in, 1)

	assert.Equal(t, uint16(0x322), in.regs.I)
}

func TestLoadIndex(t *testing.T) {
	in := newTestInterpreter(t, nil)
	loadWords(in, 0xA123)
	step(t, in, 1)

	assert.Equal(t, uint16(0x123), in.regs.I)
}

func TestFontAddressOpcode(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.V[0x2] = 0xA

	loadWords(in, 0xF229)
	step(t, in, 1)

	assert.Equal(t, memory.FontAddress(0xA), in.regs.I)
}

func TestFontAddressInvalidDigit(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.V[0x2] = 0x10

	loadWords(in, 0xF229)
	err := in.Step()

	assert.True(t, errors.Is(err, ErrInvalidFontDigit))
}

func TestStoreBCD(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.I = 0x300
	in.regs.V[0x0] = 195

	loadWords(in, 0xF033)
	step(t, in, 1)

	for i, want := range []byte{1, 9, 5} {
		got, err := in.mem.Read(0x300 + uint16(i))
		assert.NoError(t, err)
		assert.Equal(t, want, got)
	}
}

func TestBlockTransfer(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.I = 0x300
	for i := byte(0); i <= 3; i++ {
		in.regs.V[i] = i * 11
	}

	loadWords(in, 0xF355) // store V0..V3
	step(t, in, 1)

	in.regs.V = [16]uint8{}
	in.regs.PC = memory.ProgramStart
	loadWords(in, 0xF365) // load V0..V3 back
	step(t, in, 1)

	for i := byte(0); i <= 3; i++ {
		assert.Equal(t, i*11, in.regs.V[i])
	}
	assert.Equal(t, uint8(0), in.regs.V[4]) // V4 not part of the transfer
}

func TestBlockTransferOutOfBounds(t *testing.T) {
	in := newTestInterpreter(t, nil)
	in.regs.I = memory.Size - 2

	loadWords(in, 0xF355) // V0..V3 does not fit before the end
	err := in.Step()

	assert.True(t, errors.Is(err, memory.ErrOutOfBounds))
}

func TestUnknownOpcodeIsNoOp(t *testing.T) {
	for _, word := range []uint16{0x0123, 0x5121, 0x801F, 0x9011, 0xE0FF, 0xF0FF} {
		in := newTestInterpreter(t, nil)
		loadWords(in, word)
		step(t, in, 1)

		assert.Equal(t, uint16(memory.ProgramStart+2), in.regs.PC)
		assert.False(t, in.Halted())
	}
}
