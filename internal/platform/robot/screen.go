package robot

import (
	"errors"
	"fmt"
	"image"

	"github.com/go-vgo/robotgo"
	"github.com/kbinani/screenshot"

	"github.com/honk-lang/honk/internal/geom"
)

// Screen implements platform.Screen over the primary display.
type Screen struct{}

// NewScreen creates the display capture backend.
func NewScreen() *Screen {
	return &Screen{}
}

func (s *Screen) Bounds() (geom.Zone, error) {
	if screenshot.NumActiveDisplays() == 0 {
		return geom.Zone{}, errors.New("no active displays")
	}
	return geom.FromRect(screenshot.GetDisplayBounds(0)), nil
}

func (s *Screen) CaptureRegion(zone geom.Zone) (*image.RGBA, error) {
	img, err := screenshot.CaptureRect(zone.Rect())
	if err != nil {
		return nil, fmt.Errorf("capture rect %s: %w", zone, err)
	}
	return img, nil
}

func (s *Screen) Scale() float64 {
	scale := robotgo.ScaleF()
	if scale <= 0 {
		return 1
	}
	return scale
}
