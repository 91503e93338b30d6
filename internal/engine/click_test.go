package engine

import (
	"image/color"
	"testing"
	"time"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/platform"
)

var green = color.RGBA{40, 200, 60, 255}

func TestClickChangesZone(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"ok-button": {Name: "ok-button", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 100, Y: 80})

	// The click repaints the button area, the way a pressed button
	// changes state.
	r.input.onClick = func(int, int) {
		r.display.fill(geom.NewZone(90, 70, 40, 30), green)
	}

	res := r.run(t, VerbRequest{Kind: Click, Target: "ok-button"})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Match == nil {
		t.Fatal("no match in result")
	}
	if want := geom.NewZone(100, 80, 16, 12); res.Match.Bounds != want {
		t.Errorf("match bounds = %v, want %v", res.Match.Bounds, want)
	}
	clicks := r.input.of("click")
	if len(clicks) != 1 {
		t.Fatalf("clicks = %d, want 1", len(clicks))
	}
	if want := (geom.Point{X: 108, Y: 86}); clicks[0].point != want {
		t.Errorf("clicked at %v, want %v (match center)", clicks[0].point, want)
	}
	if res.Attempts < 1 {
		t.Errorf("attempts = %d, want >= 1", res.Attempts)
	}
	if res.Magnitude <= 0 {
		t.Errorf("magnitude = %v, want > 0", res.Magnitude)
	}
}

func TestClickQuietZoneIsNoStateChange(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"label": {Name: "label", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 60, Y: 40})

	timeout := 80 * time.Millisecond
	res := r.run(t, VerbRequest{Kind: Click, Target: "label", Timeout: timeout})

	if res.Outcome != NoStateChange {
		t.Fatalf("outcome = %s, want no_change", res.Outcome)
	}
	if len(r.input.of("click")) != 1 {
		t.Error("click was not injected exactly once")
	}
	if res.Duration < timeout {
		t.Errorf("duration = %v, observed less than the timeout %v", res.Duration, timeout)
	}
}

func TestClickAbsentTargetNotFound(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"ghost": {Name: "ghost", Img: pattern}}, nil, nil)

	timeout := 60 * time.Millisecond
	res := r.run(t, VerbRequest{Kind: Click, Target: "ghost", Timeout: timeout})

	if res.Outcome != TargetNotFound {
		t.Fatalf("outcome = %s, want target_not_found", res.Outcome)
	}
	if n := len(r.input.all()); n != 0 {
		t.Errorf("%d input events injected for a target that never appeared", n)
	}
	if res.Attempts < 2 {
		t.Errorf("attempts = %d, want repeated searches before giving up", res.Attempts)
	}
	if res.Duration < timeout {
		t.Errorf("duration = %v, gave up before the timeout %v", res.Duration, timeout)
	}
	if res.Snapshot == nil {
		t.Error("no final snapshot kept for diagnosis")
	}
}

func TestClickPointTarget(t *testing.T) {
	r := newRig(stubTemplates{}, nil, nil)
	r.input.onClick = func(int, int) {
		r.display.fill(geom.NewZone(50, 40, 20, 20), green)
	}

	pt := geom.Point{X: 60, Y: 50}
	res := r.run(t, VerbRequest{Kind: Click, Point: &pt})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Match != nil {
		t.Error("coordinate target should not report a match")
	}
	clicks := r.input.of("click")
	if len(clicks) != 1 || clicks[0].point != pt {
		t.Errorf("clicks = %v, want one at %v", clicks, pt)
	}
	// Default observation box hangs around the point.
	if res.Zone == nil {
		t.Fatal("no zone in result")
	}
	if want := geom.NewZone(40, 30, 40, 40); *res.Zone != want {
		t.Errorf("zone = %v, want %v", *res.Zone, want)
	}
}

func TestClickButtonAndCount(t *testing.T) {
	r := newRig(stubTemplates{}, nil, nil)
	r.input.onClick = func(int, int) {
		r.display.fill(geom.NewZone(100, 100, 10, 10), green)
	}

	pt := geom.Point{X: 105, Y: 105}
	res := r.run(t, VerbRequest{Kind: Click, Point: &pt, Button: platform.MouseRight, Double: true})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	clicks := r.input.of("click")
	if len(clicks) != 1 {
		t.Fatalf("clicks = %d, want 1", len(clicks))
	}
	if clicks[0].button != platform.MouseRight {
		t.Errorf("button = %v, want right", clicks[0].button)
	}
	if clicks[0].count != 2 {
		t.Errorf("count = %d, want 2", clicks[0].count)
	}
}

func TestClickExplicitCheckZone(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"btn": {Name: "btn", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 30, Y: 30})

	// Reaction happens far from the button; only the explicit zone
	// sees it.
	far := geom.NewZone(180, 100, 40, 40)
	r.input.onClick = func(int, int) {
		r.display.fill(far, green)
	}

	res := r.run(t, VerbRequest{Kind: Click, Target: "btn", CheckZone: &far})
	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Zone == nil || *res.Zone != far {
		t.Errorf("zone = %v, want %v", res.Zone, far)
	}
}
