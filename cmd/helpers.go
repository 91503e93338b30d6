package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/config"
	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/observability"
	"github.com/honk-lang/honk/internal/ocr"
	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/platform"
	"github.com/honk-lang/honk/internal/screen"
	"github.com/honk-lang/honk/internal/vision"
)

// toolkit bundles the engine and its collaborators for one command
// invocation.
type toolkit struct {
	cfg      *config.Config
	provider *platform.Provider
	sampler  *screen.CachedSampler
	matcher  vision.Matcher
	library  *vision.Library
	differ   screen.Differ
	scale    float64
	engine   *engine.Engine
}

// newToolkit wires the production platform backend to an engine using
// the loaded configuration.
func newToolkit() (*toolkit, error) {
	provider, err := platform.NewProvider()
	if err != nil {
		return nil, err
	}

	matcher, err := vision.NewMatcher(cfg.Match.Strategy, cfg.Match.Confidence, uint8(cfg.Match.NeedleTolerance))
	if err != nil {
		return nil, err
	}
	backend, err := ocr.New(cfg.OCR)
	if err != nil {
		return nil, err
	}

	library := vision.NewLibrary(cfg.Library.Dir)
	sampler := screen.NewCachedSampler(provider.Screen, cfg.Engine.CaptureCacheTTL)
	differ := screen.Differ{
		PixelTolerance: uint8(cfg.Diff.PixelTolerance),
		NoiseThreshold: cfg.Diff.NoiseThreshold,
	}
	scale := provider.Screen.Scale()

	eng := engine.New(engine.Deps{
		Sampler:   sampler,
		Input:     provider.Inputter,
		Clipboard: provider.Clipboard,
		Matcher:   matcher,
		Templates: library,
		OCR:       backend,
		Logger:    observability.GetLogger(),
	}, engine.Options{
		Margin:       cfg.Engine.Margin,
		PointZone:    cfg.Engine.PointZone,
		ScrollStep:   cfg.Engine.ScrollStep,
		TypeDelay:    cfg.Engine.TypeDelayMs,
		SettleDelay:  cfg.Engine.SettleDelay,
		DisplayScale: scale,
		ArtifactDir:  cfg.Engine.ArtifactDir,
		Policy: engine.Policy{
			PollInterval: cfg.Engine.PollInterval,
			StableReads:  cfg.Engine.StableReads,
		},
		Timeouts: engine.Timeouts{
			Click:  cfg.Timeouts.Click,
			Scroll: cfg.Timeouts.Scroll,
			Input:  cfg.Timeouts.Input,
			Hover:  cfg.Timeouts.Hover,
			Check:  cfg.Timeouts.Check,
		},
		Differ: differ,
	})

	return &toolkit{
		cfg:      cfg,
		provider: provider,
		sampler:  sampler,
		matcher:  matcher,
		library:  library,
		differ:   differ,
		scale:    scale,
		engine:   eng,
	}, nil
}

// VerbOutput is the printed form of an engine result.
type VerbOutput struct {
	OK        bool          `yaml:"ok" json:"ok"`
	Action    string        `yaml:"action" json:"action"`
	Outcome   string        `yaml:"outcome" json:"outcome"`
	Elapsed   string        `yaml:"elapsed" json:"elapsed"`
	Match     *vision.Match `yaml:"match,omitempty" json:"match,omitempty"`
	Zone      *geom.Zone    `yaml:"zone,omitempty" json:"zone,omitempty"`
	Magnitude float64       `yaml:"magnitude,omitempty" json:"magnitude,omitempty"`
	Attempts  int           `yaml:"attempts,omitempty" json:"attempts,omitempty"`
	Steps     int           `yaml:"steps,omitempty" json:"steps,omitempty"`
	Found     *bool         `yaml:"found,omitempty" json:"found,omitempty"`
	Value     string        `yaml:"value,omitempty" json:"value,omitempty"`
	Verdict   *bool         `yaml:"verdict,omitempty" json:"verdict,omitempty"`
	Artifact  string        `yaml:"artifact,omitempty" json:"artifact,omitempty"`
}

func verbOutput(res engine.VerbResult) VerbOutput {
	return VerbOutput{
		OK:        !res.Outcome.Failed(),
		Action:    string(res.Verb),
		Outcome:   string(res.Outcome),
		Elapsed:   res.Elapsed,
		Match:     res.Match,
		Zone:      res.Zone,
		Magnitude: res.Magnitude,
		Attempts:  res.Attempts,
		Steps:     res.Steps,
		Found:     res.Found,
		Value:     res.Value,
		Verdict:   res.Verdict,
		Artifact:  res.Artifact,
	}
}

// executeAndPrint runs one verb and prints its result. Failed outcomes
// and false check verdicts print first, then return an error so the
// process exits non-zero with the full result still on stdout.
func executeAndPrint(ctx context.Context, tk *toolkit, req engine.VerbRequest) error {
	res, err := tk.engine.ExecuteVerb(ctx, req)
	if err != nil {
		return err
	}
	out := verbOutput(res)
	switch {
	case res.Outcome.Failed():
		_ = output.Print(out)
		return fmt.Errorf("%s: %s", res.Verb, res.Outcome)
	case res.Verdict != nil && !*res.Verdict:
		out.OK = false
		_ = output.Print(out)
		return fmt.Errorf("check: condition %q is false", req.Condition)
	}
	return output.Print(out)
}

// addTargetingFlags registers the flags shared by every verb command:
// how to aim the verb and how long to give it.
func addTargetingFlags(cmd *cobra.Command) {
	cmd.Flags().String("at", "", `Point target "x,y" instead of a template`)
	cmd.Flags().String("zone", "", `Restrict template search to "x,y,w,h"`)
	cmd.Flags().String("check-zone", "", `Observe this "x,y,w,h" zone instead of the derived one`)
	cmd.Flags().String("anchor", "center", "Zone anchor for point targets: center, top-left, top-right, bottom-left, bottom-right")
	cmd.Flags().Duration("timeout", 0, "Verb deadline (default: per-verb config)")
	cmd.Flags().Float64("noise", 0, "Override the diff noise threshold for this verb")
}

// parseTargeting fills the aiming fields of a request from the shared
// flags and the optional positional template argument.
func parseTargeting(cmd *cobra.Command, args []string, req *engine.VerbRequest) error {
	if len(args) > 0 {
		req.Target = args[0]
	}
	if at, _ := cmd.Flags().GetString("at"); at != "" {
		pt, err := geom.ParsePoint(at)
		if err != nil {
			return err
		}
		req.Point = &pt
	}
	if z, _ := cmd.Flags().GetString("zone"); z != "" {
		zone, err := geom.ParseZone(z)
		if err != nil {
			return err
		}
		req.SearchZone = &zone
	}
	if z, _ := cmd.Flags().GetString("check-zone"); z != "" {
		zone, err := geom.ParseZone(z)
		if err != nil {
			return err
		}
		req.CheckZone = &zone
	}
	anchorStr, _ := cmd.Flags().GetString("anchor")
	anchor, err := geom.ParseAnchor(anchorStr)
	if err != nil {
		return err
	}
	req.Anchor = anchor
	if timeout, _ := cmd.Flags().GetDuration("timeout"); timeout > 0 {
		req.Timeout = timeout
	}
	if cmd.Flags().Changed("noise") {
		noise, _ := cmd.Flags().GetFloat64("noise")
		req.Noise = &noise
	}
	return nil
}

// verbRequestFromParams builds a request out of a step's parameter map.
// The same keys work in run steps and MCP tool calls.
func verbRequestFromParams(kind engine.Kind, params map[string]interface{}) (engine.VerbRequest, error) {
	req := engine.VerbRequest{Kind: kind, Target: stringParam(params, "template", "")}

	if at := stringParam(params, "at", ""); at != "" {
		pt, err := geom.ParsePoint(at)
		if err != nil {
			return req, err
		}
		req.Point = &pt
	}
	if z := stringParam(params, "zone", ""); z != "" {
		zone, err := geom.ParseZone(z)
		if err != nil {
			return req, err
		}
		req.SearchZone = &zone
	}
	if z := stringParam(params, "check-zone", ""); z != "" {
		zone, err := geom.ParseZone(z)
		if err != nil {
			return req, err
		}
		req.CheckZone = &zone
	}
	anchor, err := geom.ParseAnchor(stringParam(params, "anchor", ""))
	if err != nil {
		return req, err
	}
	req.Anchor = anchor

	timeout, err := durationParam(params, "timeout")
	if err != nil {
		return req, err
	}
	req.Timeout = timeout

	if v, ok := params["noise"]; ok {
		noise, ok := toFloat(v)
		if !ok {
			return req, fmt.Errorf("noise: expected a number, got %T", v)
		}
		req.Noise = &noise
	}

	switch kind {
	case engine.Click:
		button, err := platform.ParseMouseButton(stringParam(params, "button", "left"))
		if err != nil {
			return req, err
		}
		req.Button = button
		req.Double = boolParam(params, "double", false)
	case engine.Scroll:
		direction, err := platform.ParseScrollDirection(stringParam(params, "direction", ""))
		if err != nil {
			return req, err
		}
		req.Direction = direction
		req.MaxSteps = intParam(params, "steps", 0)
		req.Until = stringParam(params, "until", "")
	case engine.Input:
		req.Text = stringParam(params, "text", "")
		req.Submit = boolParam(params, "submit", false)
		req.Paste = boolParam(params, "paste", false)
	case engine.Check:
		req.Condition = stringParam(params, "that", "")
		normalizeCheckZones(&req)
	}
	return req, nil
}

// normalizeCheckZones reinterprets a bare zone on a targetless check as
// the read zone. A search zone is only meaningful with a template to
// search for.
func normalizeCheckZones(req *engine.VerbRequest) {
	if req.Target == "" && req.Point == nil && req.SearchZone != nil && req.CheckZone == nil {
		req.CheckZone = req.SearchZone
		req.SearchZone = nil
	}
}

// Parameter extraction helpers for step and tool-call maps.

func stringParam(params map[string]interface{}, key, defaultVal string) string {
	if v, ok := params[key]; ok {
		if s, ok := v.(string); ok {
			return s
		}
		// YAML may parse bare values as int/float/bool.
		return fmt.Sprintf("%v", v)
	}
	return defaultVal
}

func intParam(params map[string]interface{}, key string, defaultVal int) int {
	if v, ok := params[key]; ok {
		switch n := v.(type) {
		case int:
			return n
		case int64:
			return int(n)
		case float64:
			return int(n)
		}
	}
	return defaultVal
}

func boolParam(params map[string]interface{}, key string, defaultVal bool) bool {
	if v, ok := params[key]; ok {
		if b, ok := v.(bool); ok {
			return b
		}
	}
	return defaultVal
}

// durationParam reads a step duration: strings go through
// time.ParseDuration, bare numbers count as seconds.
func durationParam(params map[string]interface{}, key string) (time.Duration, error) {
	v, ok := params[key]
	if !ok {
		return 0, nil
	}
	switch d := v.(type) {
	case string:
		parsed, err := time.ParseDuration(d)
		if err != nil {
			return 0, fmt.Errorf("%s: %w", key, err)
		}
		return parsed, nil
	case int:
		return time.Duration(d) * time.Second, nil
	case int64:
		return time.Duration(d) * time.Second, nil
	case float64:
		return time.Duration(d * float64(time.Second)), nil
	default:
		return 0, fmt.Errorf("%s: expected a duration string or seconds, got %T", key, v)
	}
}

func toFloat(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	}
	return 0, false
}

func parseZoneParam(s string) (*geom.Zone, error) {
	zone, err := geom.ParseZone(s)
	if err != nil {
		return nil, err
	}
	return &zone, nil
}
