package chip8

// Display dimensions in pixels.
const (
	DisplayWidth  = 64
	DisplayHeight = 32
)

// Display is the 64x32 monochrome display buffer. Each row is a 64-bit
// word where bit (63-x) represents column x, allowing row-wise XOR
// drawing. It is mutated only by Clear and by sprite drawing.
type Display struct {
	rows [DisplayHeight]uint64
}

// Clear zeroes every row.
func (d *Display) Clear() {
	d.rows = [DisplayHeight]uint64{}
}

// Rows returns a copy of the 32 bit-rows for rendering.
func (d *Display) Rows() [DisplayHeight]uint64 {
	return d.rows
}

// Pixel reports whether the pixel at column x, row y is lit.
func (d *Display) Pixel(x, y int) bool {
	return d.rows[y]&(1<<(DisplayWidth-1-x)) != 0
}

// drawSprite XORs an 8-bit sprite row into display row y, starting at
// column x and clipping at the right edge. It reports whether any lit
// pixel was cleared by the XOR (a collision).
func (d *Display) drawSprite(x, y int, sprite byte) bool {
	collision := false
	for bit := 0; bit < 8; bit++ {
		if x+bit >= DisplayWidth {
			break // clip at the right edge, no horizontal wrap
		}
		if sprite&(0x80>>bit) == 0 {
			continue
		}
		mask := uint64(1) << (DisplayWidth - 1 - (x + bit))
		if d.rows[y]&mask != 0 {
			collision = true
		}
		d.rows[y] ^= mask
	}
	return collision
}
