package vision

import (
	"errors"
	"fmt"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
)

// ErrNoMatch is returned when no window of the searched zone scores at
// or above the acceptance threshold.
var ErrNoMatch = errors.New("no acceptable match")

// Match is a located template occurrence.
type Match struct {
	Score  float64   `yaml:"score" json:"score"`
	Bounds geom.Zone `yaml:"bounds" json:"bounds"`
	Zone   geom.Zone `yaml:"zone" json:"zone"`
}

// Center returns the center of the matched bounds.
func (m Match) Center() geom.Point {
	return m.Bounds.Center()
}

// Matcher locates a template inside a captured snapshot.
type Matcher interface {
	Find(snap screen.Snapshot, tpl Template) (Match, error)
}

// NewMatcher builds the matcher named by strategy. confidence is the
// default acceptance score for correlation matching and tolerance the
// per-channel pixel budget for needle matching.
func NewMatcher(strategy string, confidence float64, tolerance uint8) (Matcher, error) {
	switch strategy {
	case "", "ncc":
		return CorrelationMatcher{Threshold: confidence}, nil
	case "needle":
		return NeedleMatcher{Tolerance: tolerance}, nil
	default:
		return nil, fmt.Errorf("unknown match strategy %q", strategy)
	}
}

func matchDims(snap screen.Snapshot, tpl Template) (sw, sh, tw, th int, err error) {
	if snap.Img == nil {
		return 0, 0, 0, 0, errors.New("empty snapshot")
	}
	if tpl.Img == nil {
		return 0, 0, 0, 0, fmt.Errorf("template %q has no pixels", tpl.Name)
	}
	sw, sh = snap.Img.Bounds().Dx(), snap.Img.Bounds().Dy()
	tw, th = tpl.Img.Bounds().Dx(), tpl.Img.Bounds().Dy()
	if tw == 0 || th == 0 {
		return 0, 0, 0, 0, fmt.Errorf("template %q is empty", tpl.Name)
	}
	if tw > sw || th > sh {
		return 0, 0, 0, 0, fmt.Errorf("template %q (%dx%d) does not fit zone %s: %w",
			tpl.Name, tw, th, snap.Zone, ErrNoMatch)
	}
	return sw, sh, tw, th, nil
}
