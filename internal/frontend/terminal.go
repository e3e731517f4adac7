package frontend

import (
	"fmt"
	"io"
	"strings"

	"github.com/p-obrthr/chip8/internal/chip8"
)

// ANSI sequence moving the cursor home and clearing the screen, the
// terminal is redrawn fully on every render call.
const clearScreen = "\x1b[H\x1b[2J"

// Terminal renders the display buffer as text. Each pixel is drawn as
// a double-width block so the 64x32 grid keeps its aspect ratio. The
// terminal provides no key input.
type Terminal struct {
	writer io.Writer
}

// NewTerminal returns a terminal renderer writing to w.
func NewTerminal(w io.Writer) *Terminal {
	return &Terminal{writer: w}
}

// Render implements chip8.RenderSink.
func (t *Terminal) Render(rows [chip8.DisplayHeight]uint64) error {
	var sb strings.Builder
	sb.Grow(len(clearScreen) + chip8.DisplayHeight*(chip8.DisplayWidth*2+1))

	sb.WriteString(clearScreen)
	for _, row := range rows {
		for x := 0; x < chip8.DisplayWidth; x++ {
			if row&(1<<(chip8.DisplayWidth-1-x)) != 0 {
				sb.WriteString("██")
			} else {
				sb.WriteString("  ")
			}
		}
		sb.WriteByte('\n')
	}

	if _, err := io.WriteString(t.writer, sb.String()); err != nil {
		return fmt.Errorf("writing to terminal: %w", err)
	}
	return nil
}
