package vision

import (
	"fmt"
	"image"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

// NeedleMatcher locates a template by scanning for the first window
// where every pixel stays within Tolerance of the template on every
// channel. Scanning is row-major, so the topmost, then leftmost
// occurrence wins.
type NeedleMatcher struct {
	Tolerance uint8
}

func (m NeedleMatcher) Find(snap screen.Snapshot, tpl Template) (Match, error) {
	sw, sh, tw, th, err := matchDims(snap, tpl)
	if err != nil {
		return Match{}, err
	}

	for v := 0; v+th <= sh; v++ {
		for u := 0; u+tw <= sw; u++ {
			delta, ok := m.windowDelta(snap.Img, tpl.Img, u, v, tw, th)
			if !ok {
				continue
			}
			return Match{
				Score:  1 - delta/255,
				Bounds: geom.NewZone(snap.Zone.X+u, snap.Zone.Y+v, tw, th),
				Zone:   snap.Zone,
			}, nil
		}
	}
	return Match{}, fmt.Errorf("template %q: %w", tpl.Name, ErrNoMatch)
}

// windowDelta compares the window at (u, v) against the template and
// returns the mean per-channel delta, or false as soon as any channel
// exceeds the tolerance.
func (m NeedleMatcher) windowDelta(scene, tpl *image.RGBA, u, v, tw, th int) (float64, bool) {
	var total float64
	for y := 0; y < th; y++ {
		so := scene.PixOffset(scene.Bounds().Min.X+u, scene.Bounds().Min.Y+v+y)
		to := tpl.PixOffset(tpl.Bounds().Min.X, tpl.Bounds().Min.Y+y)
		for x := 0; x < tw; x++ {
			for c := 0; c < 3; c++ {
				d := channelDelta(scene.Pix[so+c], tpl.Pix[to+c])
				if d > m.Tolerance {
					return 0, false
				}
				total += float64(d)
			}
			so += 4
			to += 4
		}
	}
	return total / float64(tw*th*3), true
}

func channelDelta(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
