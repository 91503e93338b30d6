// Package engine executes verbs against the live screen. Every verb
// follows the same shape: locate the target by template matching,
// inject the platform action, then watch a bounded zone of pixels to
// decide whether the interface actually responded. Verdicts travel in
// the VerbResult; the error channel is reserved for capture failures
// and internal defects.
package engine

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/observability"
	"github.com/honk-lang/honk/internal/ocr"
	"github.com/honk-lang/honk/internal/platform"
	"github.com/honk-lang/honk/internal/screen"
	"github.com/honk-lang/honk/internal/vision"
)

// Sampler provides zone captures of the live display.
// *screen.CachedSampler is the production implementation.
type Sampler interface {
	Capture(zone *geom.Zone) (screen.Snapshot, error)
	Bounds() (geom.Zone, error)
	Invalidate()
}

// TemplateSource resolves template names. *vision.Library is the
// production implementation.
type TemplateSource interface {
	Resolve(name string) (vision.Template, error)
}

// Deps are the collaborators a running engine needs. Clipboard may be
// nil when the platform has none; paste-mode input then fails cleanly.
// Logger may be nil to use the process logger.
type Deps struct {
	Sampler   Sampler
	Input     platform.Inputter
	Clipboard platform.Clipboard
	Matcher   vision.Matcher
	Templates TemplateSource
	OCR       ocr.Backend
	Logger    *zap.Logger
}

// Timeouts holds the per-verb default deadlines.
type Timeouts struct {
	Click  time.Duration
	Scroll time.Duration
	Input  time.Duration
	Hover  time.Duration
	Check  time.Duration
}

// For returns the default deadline for a verb kind.
func (t Timeouts) For(k Kind) time.Duration {
	var d time.Duration
	switch k {
	case Click:
		d = t.Click
	case Scroll:
		d = t.Scroll
	case Input:
		d = t.Input
	case Hover:
		d = t.Hover
	case Check:
		d = t.Check
	}
	if d <= 0 {
		d = 5 * time.Second
	}
	return d
}

// Options are the engine tunables, normally filled from config.
type Options struct {
	// Margin expands a template match into its default check zone.
	Margin int
	// PointZone is the side length of the default zone around a
	// coordinate target, which has no match box to expand.
	PointZone int
	// ScrollStep is the wheel clicks injected per scroll step.
	ScrollStep int
	// TypeDelay is the per-keystroke delay in milliseconds.
	TypeDelay int
	// SettleDelay is how long to let the UI settle after focusing a
	// field or injecting a scroll step.
	SettleDelay time.Duration
	// DisplayScale rescales templates captured at a different density.
	DisplayScale float64
	// ArtifactDir, when set, receives PNG dumps of failed verbs.
	ArtifactDir string

	Policy   Policy
	Timeouts Timeouts
	Differ   screen.Differ
}

// Engine runs verbs one at a time against a display.
type Engine struct {
	mu sync.Mutex

	sampler   Sampler
	input     platform.Inputter
	clipboard platform.Clipboard
	matcher   vision.Matcher
	templates TemplateSource
	ocr       ocr.Backend

	opts  Options
	log   *zap.SugaredLogger
	runID string
}

// New builds an engine. Zero-valued policy fields get safe defaults.
func New(deps Deps, opts Options) *Engine {
	logger := deps.Logger
	if logger == nil {
		logger = observability.GetLogger()
	}
	opts.Policy = opts.Policy.normalized()
	runID := uuid.NewString()

	return &Engine{
		sampler:   deps.Sampler,
		input:     deps.Input,
		clipboard: deps.Clipboard,
		matcher:   deps.Matcher,
		templates: deps.Templates,
		ocr:       deps.OCR,
		opts:      opts,
		log:       logger.Named("engine").Sugar().With("run", runID),
		runID:     runID,
	}
}

// RunID identifies this engine instance in logs and artifacts.
func (e *Engine) RunID() string {
	return e.runID
}

// ExecuteVerb runs one verb to a terminal outcome. Only one verb may
// act at a time; concurrent callers queue on the engine's lock. The
// ctx bounds the verb in addition to its own timeout and is checked at
// the top of every poll iteration.
func (e *Engine) ExecuteVerb(ctx context.Context, req VerbRequest) (VerbResult, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := req.validate(); err != nil {
		return VerbResult{}, err
	}
	start := time.Now()

	timeout := req.Timeout
	if timeout <= 0 {
		timeout = e.opts.Timeouts.For(req.Kind)
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	differ := e.opts.Differ
	if req.Noise != nil {
		differ.NoiseThreshold = *req.Noise
	}

	log := e.log.With("verb", req.Kind)
	if req.Target != "" {
		log = log.With("target", req.Target)
	}
	log.Debugw("verb start", "timeout", timeout)

	var res VerbResult
	var err error
	switch req.Kind {
	case Click:
		res, err = e.click(ctx, req, differ, log)
	case Scroll:
		res, err = e.scroll(ctx, req, differ, log)
	case Input:
		res, err = e.inputText(ctx, req, differ, log)
	case Hover:
		res, err = e.hover(ctx, req, differ, log)
	case Check:
		res, err = e.check(ctx, req, log)
	}
	if err != nil {
		log.Errorw("verb failed", "error", err, "elapsed", time.Since(start).Round(time.Millisecond))
		return VerbResult{}, err
	}

	res.Verb = req.Kind
	res.Duration = time.Since(start)
	res.Elapsed = res.Duration.Round(time.Millisecond).String()
	if res.Outcome.Failed() {
		e.dumpArtifact(&res, log)
	}
	log.Infow("verb done", "outcome", res.Outcome, "elapsed", res.Elapsed)
	return res, nil
}

// errTargetNotFound flows from resolveTarget to the verb handlers,
// which translate it into the TargetNotFound outcome.
var errTargetNotFound = errors.New("target not found")

// target is a resolved aim point for a verb: where to act, the bounds
// the default check zone derives from, and the match when a template
// was involved.
type target struct {
	point    geom.Point
	bounds   geom.Zone
	match    *vision.Match
	attempts int
	lastSnap *screen.Snapshot
}

// resolveTarget turns the request's template or point into a concrete
// aim point. Template targets are searched for repeatedly until they
// appear or ctx expires; a coordinate target resolves immediately.
func (e *Engine) resolveTarget(ctx context.Context, req VerbRequest, log *zap.SugaredLogger) (target, error) {
	if req.Point != nil {
		box := geom.Around(*req.Point, e.opts.PointZone, e.opts.PointZone, req.Anchor)
		clamped, err := e.clampZone(box)
		if err != nil {
			return target{}, err
		}
		return target{point: *req.Point, bounds: clamped}, nil
	}

	tpl, err := e.templates.Resolve(req.Target)
	if err != nil {
		return target{}, err
	}
	tpl = tpl.ForScale(e.opts.DisplayScale)

	t := target{}
	for {
		if ctx.Err() != nil {
			return t, errTargetNotFound
		}
		snap, err := e.sampler.Capture(req.SearchZone)
		if err != nil {
			return t, err
		}
		t.attempts++
		t.lastSnap = &snap

		m, err := e.matcher.Find(snap, tpl)
		if err == nil {
			log.Debugw("target located", "score", m.Score, "bounds", m.Bounds, "attempts", t.attempts)
			t.point = m.Center()
			t.bounds = m.Bounds
			t.match = &m
			return t, nil
		}
		if !errors.Is(err, vision.ErrNoMatch) {
			return t, err
		}

		log.Debugw("target not visible", "attempt", t.attempts)
		if !sleepTick(ctx, e.opts.Policy.PollInterval) {
			return t, errTargetNotFound
		}
	}
}

// checkZone derives the observation zone for a resolved target: the
// explicit override when given, otherwise the match box expanded by
// the margin, otherwise the point box as is.
func (e *Engine) checkZone(req VerbRequest, t target) (geom.Zone, error) {
	if req.CheckZone != nil {
		return e.clampZone(*req.CheckZone)
	}
	if t.match != nil {
		return e.clampZone(t.bounds.Expand(e.opts.Margin))
	}
	return t.bounds, nil
}

func (e *Engine) clampZone(z geom.Zone) (geom.Zone, error) {
	bounds, err := e.sampler.Bounds()
	if err != nil {
		return geom.Zone{}, err
	}
	clamped, err := z.ClampTo(bounds)
	if err != nil {
		return geom.Zone{}, fmt.Errorf("check zone: %w", err)
	}
	return clamped, nil
}

// notFoundResult builds the result for a target that never appeared,
// carrying the last search snapshot for diagnosis.
func notFoundResult(t target) VerbResult {
	res := VerbResult{Outcome: TargetNotFound, Attempts: t.attempts, Snapshot: t.lastSnap}
	if t.lastSnap != nil {
		res.Zone = &t.lastSnap.Zone
	}
	return res
}

// observeChange polls the zone of before until its pixels move or ctx
// expires. Returns the final snapshot, the final diff, and whether a
// change was seen.
func (e *Engine) observeChange(ctx context.Context, before screen.Snapshot, differ screen.Differ, log *zap.SugaredLogger) (screen.Snapshot, screen.DiffResult, bool, error) {
	last := before
	var lastDiff screen.DiffResult
	for {
		if ctx.Err() != nil {
			return last, lastDiff, false, nil
		}
		zone := before.Zone
		snap, err := e.sampler.Capture(&zone)
		if err != nil {
			return last, lastDiff, false, err
		}
		d, err := differ.Diff(before, snap)
		if err != nil {
			return last, lastDiff, false, err
		}
		last, lastDiff = snap, d
		if d.Changed {
			log.Debugw("zone changed", "magnitude", d.Magnitude, "bounds", d.Bounds)
			return snap, d, true, nil
		}
		if !sleepTick(ctx, e.opts.Policy.PollInterval) {
			return last, lastDiff, false, nil
		}
	}
}
