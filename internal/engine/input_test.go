package engine

import (
	"image/color"
	"reflect"
	"testing"
	"time"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/platform"
)

func TestInputTypesAndSubmits(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"id-field": {Name: "id-field", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 100, Y: 80})

	res := r.run(t, VerbRequest{Kind: Input, Target: "id-field", Text: "000289401", Submit: true})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if got, want := r.input.kinds(), []string{"click", "type", "combo"}; !reflect.DeepEqual(got, want) {
		t.Fatalf("event order = %v, want %v", got, want)
	}

	click := r.input.of("click")[0]
	if want := (geom.Point{X: 108, Y: 86}); click.point != want {
		t.Errorf("focus click at %v, want field center %v", click.point, want)
	}
	if click.button != platform.MouseLeft || click.count != 1 {
		t.Errorf("focus click = %v x%d, want single left", click.button, click.count)
	}
	if typed := r.input.of("type")[0]; typed.text != "000289401" {
		t.Errorf("typed %q, want the exact payload", typed.text)
	}
	if combo := r.input.of("combo")[0]; !reflect.DeepEqual(combo.keys, []string{"enter"}) {
		t.Errorf("submit keys = %v, want [enter]", combo.keys)
	}
	if res.Zone != nil {
		t.Errorf("zone = %v, want none without a check zone", res.Zone)
	}
	if res.Match == nil {
		t.Error("match missing from result")
	}
}

func TestInputPasteUsesClipboard(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"notes": {Name: "notes", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 60, Y: 40})

	payload := "line one\nline two"
	res := r.run(t, VerbRequest{Kind: Input, Target: "notes", Text: payload, Paste: true})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if r.clip.text != payload {
		t.Errorf("clipboard holds %q, want the payload", r.clip.text)
	}
	if n := len(r.input.of("type")); n != 0 {
		t.Errorf("%d keystroke events in paste mode, want 0", n)
	}
	if combo := r.input.of("combo")[0]; !reflect.DeepEqual(combo.keys, platform.PasteCombo()) {
		t.Errorf("combo = %v, want the platform paste chord %v", combo.keys, platform.PasteCombo())
	}
}

func TestInputSubmitAloneSkipsTyping(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"search": {Name: "search", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 60, Y: 40})

	res := r.run(t, VerbRequest{Kind: Input, Target: "search", Submit: true})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if got, want := r.input.kinds(), []string{"click", "combo"}; !reflect.DeepEqual(got, want) {
		t.Errorf("event order = %v, want %v", got, want)
	}
}

func TestInputWithCheckZoneObserves(t *testing.T) {
	pattern := noisePattern(16, 12)
	reaction := geom.NewZone(40, 120, 60, 20)

	r := newRig(stubTemplates{"id-field": {Name: "id-field", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 100, Y: 80})
	r.input.onType = func(string) {
		r.display.fill(reaction, color.RGBA{40, 200, 60, 255})
	}

	res := r.run(t, VerbRequest{Kind: Input, Target: "id-field", Text: "ok", CheckZone: &reaction})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Zone == nil || *res.Zone != reaction {
		t.Errorf("zone = %v, want %v", res.Zone, reaction)
	}
	if res.Magnitude == 0 {
		t.Error("magnitude = 0, want the echo's footprint")
	}
}

func TestInputQuietCheckZoneIsNoStateChange(t *testing.T) {
	pattern := noisePattern(16, 12)
	reaction := geom.NewZone(40, 120, 60, 20)

	r := newRig(stubTemplates{"id-field": {Name: "id-field", Img: pattern}}, nil, nil)
	r.display.paste(pattern, geom.Point{X: 100, Y: 80})

	timeout := 90 * time.Millisecond
	res := r.run(t, VerbRequest{Kind: Input, Target: "id-field", Text: "ok", CheckZone: &reaction, Timeout: timeout})

	if res.Outcome != NoStateChange {
		t.Fatalf("outcome = %s, want no_change", res.Outcome)
	}
	if typed := r.input.of("type"); len(typed) != 1 || typed[0].text != "ok" {
		t.Error("text was not transmitted before observation")
	}
	if res.Duration < timeout {
		t.Errorf("duration = %v, observation gave up before %v", res.Duration, timeout)
	}
}
