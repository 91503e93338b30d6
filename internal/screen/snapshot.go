package screen

import (
	"image"
	"time"

	"github.com/honk-lang/honk/internal/geom"
)

// Snapshot is a captured region of the screen at a point in time.
// Img always has its origin at (0, 0); Zone records where on the
// screen the pixels came from.
type Snapshot struct {
	Img  *image.RGBA
	Zone geom.Zone
	TS   time.Time
}

// Comparable reports whether two snapshots cover the same zone and
// carry pixel buffers of the same dimensions.
func (s Snapshot) Comparable(other Snapshot) bool {
	if s.Img == nil || other.Img == nil {
		return false
	}
	if s.Zone != other.Zone {
		return false
	}
	return s.Img.Bounds().Size() == other.Img.Bounds().Size()
}
