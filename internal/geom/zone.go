package geom

import (
	"fmt"
	"image"
	"strconv"
	"strings"
)

// Point is an absolute screen coordinate in pixels.
type Point struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
}

// String renders the point in the "x,y" form accepted by ParsePoint.
func (p Point) String() string {
	return fmt.Sprintf("%d,%d", p.X, p.Y)
}

// ParsePoint parses an "x,y" string into a Point.
func ParsePoint(s string) (Point, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return Point{}, fmt.Errorf("invalid point %q: expected x,y", s)
	}
	x, err := strconv.Atoi(strings.TrimSpace(parts[0]))
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	y, err := strconv.Atoi(strings.TrimSpace(parts[1]))
	if err != nil {
		return Point{}, fmt.Errorf("invalid point %q: %w", s, err)
	}
	return Point{X: x, Y: y}, nil
}

// Zone is a rectangle in absolute screen coordinates. It is the unit of
// observation for state-change detection: captures, diffs, and match searches
// all operate on zones.
type Zone struct {
	X int `yaml:"x" json:"x"`
	Y int `yaml:"y" json:"y"`
	W int `yaml:"w" json:"w"`
	H int `yaml:"h" json:"h"`
}

// NewZone builds a zone from a top-left corner and dimensions.
func NewZone(x, y, w, h int) Zone {
	return Zone{X: x, Y: y, W: w, H: h}
}

// FromRect converts an image.Rectangle to a Zone.
func FromRect(r image.Rectangle) Zone {
	return Zone{X: r.Min.X, Y: r.Min.Y, W: r.Dx(), H: r.Dy()}
}

// Rect converts the zone to an image.Rectangle.
func (z Zone) Rect() image.Rectangle {
	return image.Rect(z.X, z.Y, z.X+z.W, z.Y+z.H)
}

// Valid reports whether the zone has positive width and height.
func (z Zone) Valid() bool {
	return z.W > 0 && z.H > 0
}

// Area returns the pixel area of the zone.
func (z Zone) Area() int {
	if !z.Valid() {
		return 0
	}
	return z.W * z.H
}

// Center returns the midpoint of the zone.
func (z Zone) Center() Point {
	return Point{X: z.X + z.W/2, Y: z.Y + z.H/2}
}

// Contains reports whether the point lies inside the zone.
func (z Zone) Contains(p Point) bool {
	return p.X >= z.X && p.X < z.X+z.W && p.Y >= z.Y && p.Y < z.Y+z.H
}

// ContainsZone reports whether other lies entirely inside z.
func (z Zone) ContainsZone(other Zone) bool {
	return other.X >= z.X && other.Y >= z.Y &&
		other.X+other.W <= z.X+z.W && other.Y+other.H <= z.Y+z.H
}

// Expand grows the zone by margin pixels in every direction. A negative
// margin shrinks it.
func (z Zone) Expand(margin int) Zone {
	return Zone{X: z.X - margin, Y: z.Y - margin, W: z.W + 2*margin, H: z.H + 2*margin}
}

// Intersect returns the overlap of two zones. The result may be invalid
// (zero or negative dimensions) when they do not overlap.
func (z Zone) Intersect(other Zone) Zone {
	x1 := max(z.X, other.X)
	y1 := max(z.Y, other.Y)
	x2 := min(z.X+z.W, other.X+other.W)
	y2 := min(z.Y+z.H, other.Y+other.H)
	return Zone{X: x1, Y: y1, W: x2 - x1, H: y2 - y1}
}

// ClampTo clips the zone to lie within bounds. Returns an error when nothing
// of the zone falls inside bounds.
func (z Zone) ClampTo(bounds Zone) (Zone, error) {
	clipped := z.Intersect(bounds)
	if !clipped.Valid() {
		return Zone{}, fmt.Errorf("zone %s lies outside screen bounds %s", z, bounds)
	}
	return clipped, nil
}

// String renders the zone in the "x,y,w,h" form accepted by ParseZone.
func (z Zone) String() string {
	return fmt.Sprintf("%d,%d,%d,%d", z.X, z.Y, z.W, z.H)
}

// ParseZone parses a "x,y,w,h" string into a Zone.
func ParseZone(s string) (Zone, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Zone{}, fmt.Errorf("invalid zone %q: expected x,y,w,h", s)
	}
	vals := make([]int, 4)
	for i, p := range parts {
		v, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return Zone{}, fmt.Errorf("invalid zone %q: %w", s, err)
		}
		vals[i] = v
	}
	z := Zone{X: vals[0], Y: vals[1], W: vals[2], H: vals[3]}
	if !z.Valid() {
		return Zone{}, fmt.Errorf("invalid zone %q: width and height must be positive", s)
	}
	return z, nil
}

// Anchor selects how a zone is derived from a reference point.
type Anchor int

const (
	// AnchorCenter places the point at the middle of the derived zone.
	AnchorCenter Anchor = iota
	AnchorTopLeft
	AnchorTopRight
	AnchorBottomLeft
	AnchorBottomRight
)

// ParseAnchor converts a string flag value to an Anchor.
func ParseAnchor(s string) (Anchor, error) {
	switch strings.ToLower(s) {
	case "", "center":
		return AnchorCenter, nil
	case "top-left":
		return AnchorTopLeft, nil
	case "top-right":
		return AnchorTopRight, nil
	case "bottom-left":
		return AnchorBottomLeft, nil
	case "bottom-right":
		return AnchorBottomRight, nil
	default:
		return AnchorCenter, fmt.Errorf("unknown anchor: %q (expected center, top-left, top-right, bottom-left, or bottom-right)", s)
	}
}

// Around derives a w-by-h zone anchored to p.
func Around(p Point, w, h int, anchor Anchor) Zone {
	switch anchor {
	case AnchorTopLeft:
		return Zone{X: p.X, Y: p.Y, W: w, H: h}
	case AnchorTopRight:
		return Zone{X: p.X - w, Y: p.Y, W: w, H: h}
	case AnchorBottomLeft:
		return Zone{X: p.X, Y: p.Y - h, W: w, H: h}
	case AnchorBottomRight:
		return Zone{X: p.X - w, Y: p.Y - h, W: w, H: h}
	default:
		return Zone{X: p.X - w/2, Y: p.Y - h/2, W: w, H: h}
	}
}
