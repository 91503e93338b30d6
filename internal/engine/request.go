package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/platform"
	"github.com/honk-lang/honk/internal/screen"
	"github.com/honk-lang/honk/internal/vision"
)

// Kind identifies a verb.
type Kind string

const (
	Click  Kind = "click"
	Scroll Kind = "scroll"
	Input  Kind = "input"
	Hover  Kind = "hover"
	Check  Kind = "check"
)

// ParseKind converts a string to a Kind.
func ParseKind(s string) (Kind, error) {
	switch Kind(s) {
	case Click, Scroll, Input, Hover, Check:
		return Kind(s), nil
	default:
		return "", fmt.Errorf("unknown verb %q (expected click, scroll, input, hover, or check)", s)
	}
}

// Outcome is the terminal state of an executed verb.
type Outcome string

const (
	// Succeeded: the action landed and the expected reaction was seen.
	Succeeded Outcome = "succeeded"
	// Converged: scrolling reached a stable viewport (end of content).
	Converged Outcome = "converged"
	// TimedOut: the deadline passed before the verb could finish.
	TimedOut Outcome = "timed_out"
	// TargetNotFound: the template never appeared; no input was injected.
	TargetNotFound Outcome = "target_not_found"
	// NoStateChange: the action landed but the observed zone stayed
	// still. Not a failure: static targets react this way legitimately.
	NoStateChange Outcome = "no_change"
)

// Failed reports whether the outcome means the verb did not do its
// job. NoStateChange is deliberately not a failure; the caller decides
// what an unmoved zone means for its script.
func (o Outcome) Failed() bool {
	return o == TimedOut || o == TargetNotFound
}

// VerbRequest describes a single verb to execute. Target and Point are
// mutually exclusive ways to aim the verb; the rest of the fields only
// apply to the kinds that read them.
type VerbRequest struct {
	Kind   Kind
	Target string      // template name
	Point  *geom.Point // absolute coordinates instead of a template
	Anchor geom.Anchor // how the default zone hangs off Point

	SearchZone *geom.Zone // restrict template search (nil = full screen)
	CheckZone  *geom.Zone // observation zone override (nil = derived)

	// Input payload.
	Text   string
	Submit bool
	Paste  bool

	// Click/Hover payload.
	Button platform.MouseButton
	Double bool

	// Scroll payload.
	Direction platform.ScrollDirection
	MaxSteps  int    // stop after this many steps (0 = until converged)
	Until     string // seek: stop when this template becomes visible

	// Check payload.
	Condition string

	Timeout time.Duration // overrides the per-verb default when > 0
	Noise   *float64      // overrides the differ's noise threshold
}

func (r VerbRequest) validate() error {
	hasTarget := r.Target != "" || r.Point != nil
	if r.Target != "" && r.Point != nil {
		return errors.New("target template and point are mutually exclusive")
	}

	switch r.Kind {
	case Click, Hover:
		if !hasTarget {
			return fmt.Errorf("%s needs a target template or point", r.Kind)
		}
	case Input:
		if !hasTarget {
			return errors.New("input needs a target template or point")
		}
		if r.Text == "" && !r.Submit {
			return errors.New("input needs text to transmit or the submit flag")
		}
	case Scroll:
		// A bare scroll acts on the screen center.
	case Check:
		if r.Condition == "" {
			return errors.New("check needs a condition expression")
		}
		if !hasTarget && r.CheckZone == nil {
			return errors.New("check needs a zone, target template, or point")
		}
	default:
		return fmt.Errorf("unknown verb %q", r.Kind)
	}
	return nil
}

// VerbResult reports what a verb did and what the screen looked like
// when it stopped.
type VerbResult struct {
	Verb    Kind    `yaml:"verb" json:"verb"`
	Outcome Outcome `yaml:"outcome" json:"outcome"`
	Elapsed string  `yaml:"elapsed" json:"elapsed"`

	Match     *vision.Match `yaml:"match,omitempty" json:"match,omitempty"`
	Zone      *geom.Zone    `yaml:"zone,omitempty" json:"zone,omitempty"`
	Magnitude float64       `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`
	Attempts  int           `yaml:"attempts,omitempty" json:"attempts,omitempty"`
	Steps     int           `yaml:"steps,omitempty" json:"steps,omitempty"`
	Found     *bool         `yaml:"found,omitempty" json:"found,omitempty"`
	Value     string        `yaml:"value,omitempty" json:"value,omitempty"`
	Verdict   *bool         `yaml:"verdict,omitempty" json:"verdict,omitempty"`
	Artifact  string        `yaml:"artifact,omitempty" json:"artifact,omitempty"`

	// Snapshot is the last observed capture, kept for audit and
	// artifact dumps. Not serialized.
	Snapshot *screen.Snapshot `yaml:"-" json:"-"`
	Duration time.Duration    `yaml:"-" json:"-"`
}
