package frontend

import (
	"context"
	"errors"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/p-obrthr/chip8/internal/chip8"
)

const (
	windowScale      = 10
	updatesPerSecond = 60
)

// keymap maps the left block of a QWERTY keyboard onto the 16-key hex
// pad, the layout used by most CHIP-8 emulators:
//
//	1 2 3 4        1 2 3 C
//	Q W E R   ->   4 5 6 D
//	A S D F        7 8 9 E
//	Z X C V        A 0 B F
var keymap = map[ebiten.Key]byte{
	ebiten.Key1: 0x1, ebiten.Key2: 0x2, ebiten.Key3: 0x3, ebiten.Key4: 0xC,
	ebiten.KeyQ: 0x4, ebiten.KeyW: 0x5, ebiten.KeyE: 0x6, ebiten.KeyR: 0xD,
	ebiten.KeyA: 0x7, ebiten.KeyS: 0x8, ebiten.KeyD: 0x9, ebiten.KeyF: 0xE,
	ebiten.KeyZ: 0xA, ebiten.KeyX: 0x0, ebiten.KeyC: 0xB, ebiten.KeyV: 0xF,
}

// Keyboard implements chip8.InputSource by polling the keyboard state
// through Ebitengine.
type Keyboard struct{}

// Keys reports the hex pad keys currently held.
func (Keyboard) Keys() [16]bool {
	var keys [16]bool
	for key, pad := range keymap {
		if ebiten.IsKeyPressed(key) {
			keys[pad] = true
		}
	}
	return keys
}

// GUI is the Ebitengine frontend. It implements ebiten.Game and drives
// the interpreter from the 60 Hz update loop instead of the
// interpreter's own sleep-based pacing. Key input comes from a
// Keyboard attached to the interpreter.
type GUI struct {
	interp *chip8.Interpreter
	ctx    context.Context

	cyclesPerUpdate int
	pixels          []byte // RGBA framebuffer, 64x32
}

// NewGUI returns a window frontend stepping the interpreter at the
// given rate.
func NewGUI(ctx context.Context, interp *chip8.Interpreter, cyclesPerSecond int) *GUI {
	if cyclesPerSecond <= 0 {
		cyclesPerSecond = chip8.DefaultCyclesPerSecond
	}
	cyclesPerUpdate := cyclesPerSecond / updatesPerSecond
	if cyclesPerUpdate < 1 {
		cyclesPerUpdate = 1
	}

	return &GUI{
		interp:          interp,
		ctx:             ctx,
		cyclesPerUpdate: cyclesPerUpdate,
		pixels:          make([]byte, chip8.DisplayWidth*chip8.DisplayHeight*4),
	}
}

// Run opens the window and blocks until the program halts, a fatal
// interpreter error occurs or the window is closed.
func (g *GUI) Run() error {
	ebiten.SetWindowTitle("CHIP-8")
	ebiten.SetWindowSize(chip8.DisplayWidth*windowScale, chip8.DisplayHeight*windowScale)

	if err := ebiten.RunGame(g); err != nil {
		return err
	}
	return nil
}

// Update implements ebiten.Game. It executes the interpreter cycles
// belonging to one frame.
func (g *GUI) Update() error {
	if err := g.ctx.Err(); err != nil {
		if errors.Is(err, context.Canceled) {
			return ebiten.Termination
		}
		return err
	}

	for i := 0; i < g.cyclesPerUpdate; i++ {
		if err := g.interp.Step(); err != nil {
			return err
		}
	}

	if g.interp.Halted() {
		return ebiten.Termination
	}
	return nil
}

// Draw implements ebiten.Game, redrawing the full display buffer.
func (g *GUI) Draw(screen *ebiten.Image) {
	rows := g.interp.Rows()

	for y, row := range rows {
		for x := 0; x < chip8.DisplayWidth; x++ {
			value := byte(0)
			if row&(1<<(chip8.DisplayWidth-1-x)) != 0 {
				value = 0xFF
			}
			offset := (y*chip8.DisplayWidth + x) * 4
			g.pixels[offset] = value
			g.pixels[offset+1] = value
			g.pixels[offset+2] = value
			g.pixels[offset+3] = 0xFF
		}
	}

	screen.WritePixels(g.pixels)
}

// Layout implements ebiten.Game. The logical screen is the native
// 64x32 grid, Ebitengine scales it to the window.
func (g *GUI) Layout(_, _ int) (screenWidth, screenHeight int) {
	return chip8.DisplayWidth, chip8.DisplayHeight
}
