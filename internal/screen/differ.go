package screen

import (
	"errors"

	"github.com/honk-lang/honk/internal/geom"
)

// ErrIncomparableSnapshots is returned when two snapshots cover
// different zones or carry different pixel dimensions.
var ErrIncomparableSnapshots = errors.New("snapshots are not comparable")

// DiffResult describes the pixel difference between two snapshots.
type DiffResult struct {
	Changed   bool       `yaml:"changed" json:"changed"`
	Bounds    *geom.Zone `yaml:"bounds,omitempty" json:"bounds,omitempty"`
	Magnitude float64    `yaml:"magnitude" json:"magnitude"`
}

// Differ compares snapshots pixel by pixel. PixelTolerance is the
// largest per-channel delta still treated as the same pixel, which
// absorbs compositor dithering. NoiseThreshold is the fraction of
// changed pixels below which the frames count as unchanged.
type Differ struct {
	PixelTolerance uint8
	NoiseThreshold float64
}

// Diff compares two snapshots of the same zone. Bounds is the bounding
// box of the changed pixels in screen coordinates and is only set when
// the change is above the noise threshold.
func (d Differ) Diff(a, b Snapshot) (DiffResult, error) {
	if !a.Comparable(b) {
		return DiffResult{}, ErrIncomparableSnapshots
	}

	w := a.Img.Bounds().Dx()
	h := a.Img.Bounds().Dy()
	if w == 0 || h == 0 {
		return DiffResult{}, ErrIncomparableSnapshots
	}

	var changed int
	minX, minY := w, h
	maxX, maxY := -1, -1

	for y := 0; y < h; y++ {
		ao := a.Img.PixOffset(a.Img.Bounds().Min.X, a.Img.Bounds().Min.Y+y)
		bo := b.Img.PixOffset(b.Img.Bounds().Min.X, b.Img.Bounds().Min.Y+y)
		for x := 0; x < w; x++ {
			if pixelChanged(a.Img.Pix[ao:ao+3], b.Img.Pix[bo:bo+3], d.PixelTolerance) {
				changed++
				if x < minX {
					minX = x
				}
				if y < minY {
					minY = y
				}
				if x > maxX {
					maxX = x
				}
				if y > maxY {
					maxY = y
				}
			}
			ao += 4
			bo += 4
		}
	}

	res := DiffResult{Magnitude: float64(changed) / float64(w*h)}
	res.Changed = res.Magnitude > d.NoiseThreshold
	if res.Changed {
		box := geom.NewZone(a.Zone.X+minX, a.Zone.Y+minY, maxX-minX+1, maxY-minY+1)
		res.Bounds = &box
	}
	return res, nil
}

func pixelChanged(a, b []uint8, tolerance uint8) bool {
	for i := 0; i < 3; i++ {
		if absDelta(a[i], b[i]) > tolerance {
			return true
		}
	}
	return false
}

func absDelta(a, b uint8) uint8 {
	if a > b {
		return a - b
	}
	return b - a
}
