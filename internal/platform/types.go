package platform

import (
	"fmt"
	"runtime"
	"strings"
)

// MouseButton represents a mouse button.
type MouseButton int

const (
	MouseLeft MouseButton = iota
	MouseRight
	MouseMiddle
)

// ParseMouseButton converts a string flag value to MouseButton.
func ParseMouseButton(s string) (MouseButton, error) {
	switch strings.ToLower(s) {
	case "left":
		return MouseLeft, nil
	case "right":
		return MouseRight, nil
	case "middle":
		return MouseMiddle, nil
	default:
		return MouseLeft, fmt.Errorf("unknown mouse button: %q (expected left, right, or middle)", s)
	}
}

// String returns the flag form of the button.
func (b MouseButton) String() string {
	switch b {
	case MouseRight:
		return "right"
	case MouseMiddle:
		return "middle"
	default:
		return "left"
	}
}

// ScrollDirection is the axis and sense of a scroll step.
type ScrollDirection int

const (
	ScrollDown ScrollDirection = iota
	ScrollUp
	ScrollLeft
	ScrollRight
)

// ParseScrollDirection converts a string flag value to ScrollDirection.
func ParseScrollDirection(s string) (ScrollDirection, error) {
	switch strings.ToLower(s) {
	case "", "down":
		return ScrollDown, nil
	case "up":
		return ScrollUp, nil
	case "left":
		return ScrollLeft, nil
	case "right":
		return ScrollRight, nil
	default:
		return ScrollDown, fmt.Errorf("unknown scroll direction: %q (expected up, down, left, or right)", s)
	}
}

// String returns the flag form of the direction.
func (d ScrollDirection) String() string {
	switch d {
	case ScrollUp:
		return "up"
	case ScrollLeft:
		return "left"
	case ScrollRight:
		return "right"
	default:
		return "down"
	}
}

// Deltas converts the direction and a step amount into the dx/dy pair
// the Inputter's Scroll call expects. Positive dy scrolls content up.
func (d ScrollDirection) Deltas(amount int) (dx, dy int) {
	if amount < 0 {
		amount = -amount
	}
	switch d {
	case ScrollUp:
		return 0, amount
	case ScrollLeft:
		return amount, 0
	case ScrollRight:
		return -amount, 0
	default:
		return 0, -amount
	}
}

// FocusOptions specifies which application to bring to the foreground.
type FocusOptions struct {
	App string // Application/process name
	PID int    // Process ID (0 = unset)
}

// PasteCombo returns the key combination that pastes the clipboard on
// the current OS.
func PasteCombo() []string {
	if runtime.GOOS == "darwin" {
		return []string{"cmd", "v"}
	}
	return []string{"ctrl", "v"}
}
