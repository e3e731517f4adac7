// Package memory implements the 4 KiB CHIP-8 address space.
package memory

import (
	"errors"
	"fmt"
)

// CHIP-8 memory layout constants.
//
// CHIP-8 memory map (4KB total):
//
//	0x000-0x1FF: Interpreter area, holds the font sprite data
//	0x200-0xFFF: User program space (3584 bytes)
const (
	// Size is the total size of the CHIP-8 address space in bytes.
	Size = 4096

	// ProgramStart is the address where program images are loaded and
	// where execution begins.
	ProgramStart = 0x200

	// FontStart is the address of the built-in font sprite data.
	FontStart = 0x000

	// FontGlyphSize is the size in bytes of one font glyph (4x5 pixels).
	FontGlyphSize = 5
)

// ErrOutOfBounds is returned for any access outside the address space.
// It indicates a malformed program or an interpreter bug, never a
// condition to clamp silently.
var ErrOutOfBounds = errors.New("memory address out of bounds")

// font contains the sprite data for the hex digits 0-F, 5 bytes each.
var font = [80]byte{
	0xF0, 0x90, 0x90, 0x90, 0xF0, // 0
	0x20, 0x60, 0x20, 0x20, 0x70, // 1
	0xF0, 0x10, 0xF0, 0x80, 0xF0, // 2
	0xF0, 0x10, 0xF0, 0x10, 0xF0, // 3
	0x90, 0x90, 0xF0, 0x10, 0x10, // 4
	0xF0, 0x80, 0xF0, 0x10, 0xF0, // 5
	0xF0, 0x80, 0xF0, 0x90, 0xF0, // 6
	0xF0, 0x10, 0x20, 0x40, 0x40, // 7
	0xF0, 0x90, 0xF0, 0x90, 0xF0, // 8
	0xF0, 0x90, 0xF0, 0x10, 0xF0, // 9
	0xF0, 0x90, 0xF0, 0x90, 0x90, // A
	0xE0, 0x90, 0xE0, 0x90, 0xE0, // B
	0xF0, 0x80, 0x80, 0x80, 0xF0, // C
	0xE0, 0x90, 0x90, 0x90, 0xE0, // D
	0xF0, 0x80, 0xF0, 0x80, 0xF0, // E
	0xF0, 0x80, 0xF0, 0x80, 0x80, // F
}

// Memory is the CHIP-8 address space. It is exclusively owned by one
// interpreter instance.
type Memory struct {
	data [Size]byte
}

// New returns a new address space with the font sprite data installed
// in the interpreter area.
func New() *Memory {
	m := &Memory{}
	copy(m.data[FontStart:], font[:])
	return m
}

// Load copies a program image into the address space starting at
// ProgramStart. Images larger than the remaining space are silently
// truncated, matching the forgiving loader contract of the original
// interpreters. It returns the number of bytes copied.
func (m *Memory) Load(image []byte) int {
	return copy(m.data[ProgramStart:], image)
}

// Read returns the byte at addr.
func (m *Memory) Read(addr uint16) (byte, error) {
	if addr >= Size {
		return 0, fmt.Errorf("reading address $%04X: %w", addr, ErrOutOfBounds)
	}
	return m.data[addr], nil
}

// Write stores value at addr.
func (m *Memory) Write(addr uint16, value byte) error {
	if addr >= Size {
		return fmt.Errorf("writing address $%04X: %w", addr, ErrOutOfBounds)
	}
	m.data[addr] = value
	return nil
}

// FontAddress returns the address of the font glyph for the hex digit.
func FontAddress(digit byte) uint16 {
	return FontStart + uint16(digit)*FontGlyphSize
}
