// Package loader handles program image loading operations.
package loader

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/p-obrthr/chip8/internal/memory"
)

// ErrEmptyImage is returned when the program file contains no data.
var ErrEmptyImage = errors.New("program image is empty")

// MaxImageSize is the largest program image that fits into the address
// space beyond the program start. Larger images load truncated.
const MaxImageSize = memory.Size - memory.ProgramStart

// Load reads the raw program image from disk. No header and no
// checksum, the file content is the byte-exact memory image.
func Load(path string) ([]byte, error) {
	image, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading program file %s: %w", path, err)
	}
	if len(image) == 0 {
		return nil, fmt.Errorf("%s: %w", path, ErrEmptyImage)
	}
	return image, nil
}

// Hexdump formats a program image as hex rows, grouped into the 16-bit
// instruction words, addressed from the program start.
func Hexdump(image []byte) string {
	const bytesPerLine = 16

	var sb strings.Builder
	for offset := 0; offset < len(image); offset += bytesPerLine {
		fmt.Fprintf(&sb, "$%04X:", memory.ProgramStart+offset)

		end := offset + bytesPerLine
		if end > len(image) {
			end = len(image)
		}
		for i := offset; i < end; i++ {
			if i%2 == 0 {
				sb.WriteByte(' ')
			}
			fmt.Fprintf(&sb, "%02X", image[i])
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
