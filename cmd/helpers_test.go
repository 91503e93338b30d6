package cmd

import (
	"testing"
	"time"

	"github.com/honk-lang/honk/internal/engine"
)

func TestVerbOutput_Succeeded(t *testing.T) {
	res := engine.VerbResult{
		Verb:      engine.Click,
		Outcome:   engine.Succeeded,
		Elapsed:   "120ms",
		Magnitude: 0.42,
		Attempts:  1,
	}
	out := verbOutput(res)
	if !out.OK {
		t.Error("succeeded outcome should map to ok=true")
	}
	if out.Action != "click" {
		t.Errorf("expected action click, got %q", out.Action)
	}
	if out.Outcome != "succeeded" {
		t.Errorf("expected outcome succeeded, got %q", out.Outcome)
	}
	if out.Magnitude != 0.42 {
		t.Errorf("expected magnitude 0.42, got %v", out.Magnitude)
	}
}

func TestVerbOutput_FailedOutcomes(t *testing.T) {
	tests := []struct {
		outcome engine.Outcome
		ok      bool
	}{
		{engine.Succeeded, true},
		{engine.Converged, true},
		{engine.NoStateChange, true},
		{engine.TimedOut, false},
		{engine.TargetNotFound, false},
	}
	for _, tt := range tests {
		out := verbOutput(engine.VerbResult{Verb: engine.Hover, Outcome: tt.outcome})
		if out.OK != tt.ok {
			t.Errorf("outcome %s: expected ok=%v, got %v", tt.outcome, tt.ok, out.OK)
		}
	}
}

func TestVerbRequestFromParams_Click(t *testing.T) {
	req, err := verbRequestFromParams(engine.Click, map[string]interface{}{
		"template": "save-button",
		"button":   "right",
		"double":   true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Target != "save-button" {
		t.Errorf("expected target save-button, got %q", req.Target)
	}
	if req.Button.String() != "right" {
		t.Errorf("expected right button, got %q", req.Button)
	}
	if !req.Double {
		t.Error("expected double to be set")
	}
}

func TestVerbRequestFromParams_Scroll(t *testing.T) {
	req, err := verbRequestFromParams(engine.Scroll, map[string]interface{}{
		"template":  "results-list",
		"direction": "up",
		"steps":     5,
		"until":     "footer",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Direction.String() != "up" {
		t.Errorf("expected direction up, got %q", req.Direction)
	}
	if req.MaxSteps != 5 {
		t.Errorf("expected 5 steps, got %d", req.MaxSteps)
	}
	if req.Until != "footer" {
		t.Errorf("expected until footer, got %q", req.Until)
	}
}

func TestVerbRequestFromParams_Input(t *testing.T) {
	req, err := verbRequestFromParams(engine.Input, map[string]interface{}{
		"template": "search-field",
		"text":     "goose",
		"submit":   true,
		"paste":    true,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Text != "goose" {
		t.Errorf("expected text goose, got %q", req.Text)
	}
	if !req.Submit || !req.Paste {
		t.Errorf("expected submit and paste set, got submit=%v paste=%v", req.Submit, req.Paste)
	}
}

func TestVerbRequestFromParams_Check(t *testing.T) {
	// A bare zone on a targetless check is the read zone.
	req, err := verbRequestFromParams(engine.Check, map[string]interface{}{
		"zone": "10,10,200,40",
		"that": "contains:Ready",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Condition != "contains:Ready" {
		t.Errorf("expected condition carried through, got %q", req.Condition)
	}
	if req.SearchZone != nil {
		t.Errorf("expected no search zone on a targetless check, got %+v", req.SearchZone)
	}
	if req.CheckZone == nil {
		t.Fatal("expected the zone to become the read zone")
	}
	if req.CheckZone.X != 10 || req.CheckZone.W != 200 {
		t.Errorf("unexpected zone: %+v", req.CheckZone)
	}

	// With a template the zone keeps restricting the search.
	req, err = verbRequestFromParams(engine.Check, map[string]interface{}{
		"template": "status-badge",
		"zone":     "10,10,200,40",
		"that":     "equals:Ready",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.SearchZone == nil {
		t.Fatal("expected search zone with a template target")
	}
	if req.CheckZone != nil {
		t.Errorf("expected no read-zone override, got %+v", req.CheckZone)
	}
}

func TestVerbRequestFromParams_PointTarget(t *testing.T) {
	req, err := verbRequestFromParams(engine.Click, map[string]interface{}{
		"at": "10,20",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Point == nil {
		t.Fatal("expected point to be parsed")
	}
	if req.Point.X != 10 || req.Point.Y != 20 {
		t.Errorf("expected point (10,20), got %+v", req.Point)
	}
}

func TestVerbRequestFromParams_Timeout(t *testing.T) {
	req, err := verbRequestFromParams(engine.Click, map[string]interface{}{
		"template": "x",
		"timeout":  "2s",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Timeout != 2*time.Second {
		t.Errorf("expected 2s timeout, got %v", req.Timeout)
	}

	// Bare numbers count as seconds, the way MCP clients send them.
	req, err = verbRequestFromParams(engine.Click, map[string]interface{}{
		"template": "x",
		"timeout":  float64(3),
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Timeout != 3*time.Second {
		t.Errorf("expected 3s timeout from bare number, got %v", req.Timeout)
	}
}

func TestVerbRequestFromParams_Noise(t *testing.T) {
	req, err := verbRequestFromParams(engine.Click, map[string]interface{}{
		"template": "x",
		"noise":    0.05,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Noise == nil || *req.Noise != 0.05 {
		t.Errorf("expected noise override 0.05, got %v", req.Noise)
	}

	req, err = verbRequestFromParams(engine.Click, map[string]interface{}{"template": "x"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Noise != nil {
		t.Error("expected no noise override when the key is absent")
	}
}

func TestVerbRequestFromParams_BadValues(t *testing.T) {
	if _, err := verbRequestFromParams(engine.Click, map[string]interface{}{"at": "nope"}); err == nil {
		t.Error("expected error for malformed point")
	}
	if _, err := verbRequestFromParams(engine.Click, map[string]interface{}{"zone": "1,2,3"}); err == nil {
		t.Error("expected error for malformed zone")
	}
	if _, err := verbRequestFromParams(engine.Click, map[string]interface{}{"template": "x", "button": "pinky"}); err == nil {
		t.Error("expected error for unknown button")
	}
	if _, err := verbRequestFromParams(engine.Scroll, map[string]interface{}{"direction": "sideways"}); err == nil {
		t.Error("expected error for unknown direction")
	}
	if _, err := verbRequestFromParams(engine.Click, map[string]interface{}{"template": "x", "anchor": "middle-ish"}); err == nil {
		t.Error("expected error for unknown anchor")
	}
}

func TestDurationParam(t *testing.T) {
	tests := []struct {
		name     string
		params   map[string]interface{}
		expected time.Duration
		wantErr  bool
	}{
		{"duration string", map[string]interface{}{"timeout": "500ms"}, 500 * time.Millisecond, false},
		{"int seconds", map[string]interface{}{"timeout": 2}, 2 * time.Second, false},
		{"float seconds", map[string]interface{}{"timeout": 1.5}, 1500 * time.Millisecond, false},
		{"missing", map[string]interface{}{}, 0, false},
		{"bad string", map[string]interface{}{"timeout": "soon"}, 0, true},
		{"wrong type", map[string]interface{}{"timeout": true}, 0, true},
	}
	for _, tt := range tests {
		got, err := durationParam(tt.params, "timeout")
		if tt.wantErr {
			if err == nil {
				t.Errorf("%s: expected error", tt.name)
			}
			continue
		}
		if err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
			continue
		}
		if got != tt.expected {
			t.Errorf("%s: expected %v, got %v", tt.name, tt.expected, got)
		}
	}
}

func TestParamHelpers(t *testing.T) {
	params := map[string]interface{}{
		"name":    "goose",
		"count":   float64(7),
		"enabled": true,
		"number":  42,
	}

	if got := stringParam(params, "name", "x"); got != "goose" {
		t.Errorf("stringParam: expected goose, got %q", got)
	}
	if got := stringParam(params, "missing", "fallback"); got != "fallback" {
		t.Errorf("stringParam default: expected fallback, got %q", got)
	}
	// Non-string values stringify rather than silently vanishing.
	if got := stringParam(params, "number", ""); got != "42" {
		t.Errorf("stringParam coercion: expected 42, got %q", got)
	}

	if got := intParam(params, "count", 0); got != 7 {
		t.Errorf("intParam from float64: expected 7, got %d", got)
	}
	if got := intParam(params, "number", 0); got != 42 {
		t.Errorf("intParam from int: expected 42, got %d", got)
	}
	if got := intParam(params, "missing", 9); got != 9 {
		t.Errorf("intParam default: expected 9, got %d", got)
	}

	if got := boolParam(params, "enabled", false); !got {
		t.Error("boolParam: expected true")
	}
	if got := boolParam(params, "missing", true); !got {
		t.Error("boolParam default: expected true")
	}
}
