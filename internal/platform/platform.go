package platform

import (
	"image"

	"github.com/honk-lang/honk/internal/geom"
)

// Inputter injects mouse and keyboard events into the desktop session.
type Inputter interface {
	Click(x, y int, button MouseButton, count int) error
	MoveMouse(x, y int) error
	Scroll(x, y int, dx, dy int) error
	TypeText(text string, delayMs int) error
	KeyCombo(keys []string) error
}

// Screen captures raw pixels from the physical display. It satisfies
// screen.Capturer so the sampler can wrap it directly.
type Screen interface {
	// CaptureRegion grabs the pixels of the given screen rectangle.
	CaptureRegion(zone geom.Zone) (*image.RGBA, error)

	// Bounds returns the full rectangle of the primary display.
	Bounds() (geom.Zone, error)

	// Scale returns the display's pixel scale factor (1 on standard
	// density displays, 2 on most HiDPI displays).
	Scale() float64
}

// Clipboard reads and writes the system clipboard.
type Clipboard interface {
	GetText() (string, error)
	SetText(text string) error
}

// Focuser raises application windows to the foreground.
type Focuser interface {
	FocusWindow(opts FocusOptions) error
	GetFrontmostApp() (string, int, error)
}
