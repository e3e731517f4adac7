// Package frontend provides the render sink and input source
// implementations that the interpreter core treats as external
// collaborators: an Ebitengine window with keyboard input and an ANSI
// terminal renderer.
package frontend

// Backend names selectable on the command line.
const (
	BackendGUI      = "gui"
	BackendTerminal = "terminal"
	BackendNone     = "none"
)

// Valid reports whether name is a known backend.
func Valid(name string) bool {
	switch name {
	case BackendGUI, BackendTerminal, BackendNone:
		return true
	}
	return false
}
