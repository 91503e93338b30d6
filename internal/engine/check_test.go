package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/ocr"
)

func TestCheckVerdictOnZone(t *testing.T) {
	r := newRig(stubTemplates{}, ocr.Static{Text: "Total: 42 items"}, nil)
	zone := geom.NewZone(10, 10, 100, 30)

	res := r.run(t, VerbRequest{Kind: Check, CheckZone: &zone, Condition: "contains:42 items"})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Verdict == nil || !*res.Verdict {
		t.Error("verdict should be true")
	}
	if res.Value != "Total: 42 items" {
		t.Errorf("value = %q, want the extracted text", res.Value)
	}
	if res.Zone == nil || *res.Zone != zone {
		t.Errorf("zone = %v, want %v", res.Zone, zone)
	}

	// A false verdict is still a completed check, not a failure.
	res = r.run(t, VerbRequest{Kind: Check, CheckZone: &zone, Condition: "contains:nope"})
	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded even when the condition is false", res.Outcome)
	}
	if res.Verdict == nil || *res.Verdict {
		t.Error("verdict should be false")
	}
}

func TestCheckZoneFromTemplate(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"status-badge": {Name: "status-badge", Img: pattern}}, ocr.Static{Text: "Ready"}, nil)
	r.display.paste(pattern, geom.Point{X: 100, Y: 80})

	res := r.run(t, VerbRequest{Kind: Check, Target: "status-badge", Condition: "equals:Ready"})

	if res.Outcome != Succeeded {
		t.Fatalf("outcome = %s, want succeeded", res.Outcome)
	}
	if res.Verdict == nil || !*res.Verdict {
		t.Error("verdict should be true")
	}
	// Match box grown by the margin on every side.
	if want := geom.NewZone(96, 76, 24, 20); res.Zone == nil || *res.Zone != want {
		t.Errorf("zone = %v, want %v", res.Zone, want)
	}
	if res.Match == nil {
		t.Error("match missing from result")
	}
}

func TestCheckRulesBackendCannotExtract(t *testing.T) {
	r := newRig(stubTemplates{}, ocr.Rules{}, nil)
	zone := geom.NewZone(10, 10, 100, 30)

	_, err := r.eng.ExecuteVerb(context.Background(), VerbRequest{Kind: Check, CheckZone: &zone, Condition: "not-empty"})
	if err == nil {
		t.Fatal("expected an extraction error from the rules backend")
	}
	if !errors.Is(err, ocr.ErrNoExtractor) {
		t.Errorf("err = %v, want ErrNoExtractor in the chain", err)
	}
}

func TestCheckBadConditionSurfaces(t *testing.T) {
	r := newRig(stubTemplates{}, ocr.Static{Text: "whatever"}, nil)
	zone := geom.NewZone(10, 10, 100, 30)

	_, err := r.eng.ExecuteVerb(context.Background(), VerbRequest{Kind: Check, CheckZone: &zone, Condition: "matches:["})
	if err == nil {
		t.Fatal("expected an evaluation error for a broken expression")
	}
}

func TestCheckTargetNotFound(t *testing.T) {
	pattern := noisePattern(16, 12)
	r := newRig(stubTemplates{"ghost": {Name: "ghost", Img: pattern}}, ocr.Static{Text: "x"}, nil)

	res := r.run(t, VerbRequest{Kind: Check, Target: "ghost", Condition: "not-empty", Timeout: 50 * time.Millisecond})

	if res.Outcome != TargetNotFound {
		t.Fatalf("outcome = %s, want target_not_found", res.Outcome)
	}
	if res.Verdict != nil {
		t.Error("no verdict should be recorded without a capture")
	}
}
