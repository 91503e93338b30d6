package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/geom"
	"github.com/honk-lang/honk/internal/screen"
	"github.com/honk-lang/honk/internal/vision"
)

// scroll injects wheel steps and watches a fixed viewport between
// them. The viewport is computed once before the first step and never
// re-derived: content moves under the zone while the zone stays put,
// which is what makes before/after diffs meaningful. The verb stops
// when the viewport stops changing (Converged), when the optional
// until-template becomes visible (Succeeded), after MaxSteps
// (Succeeded), or at the deadline (TimedOut).
func (e *Engine) scroll(ctx context.Context, req VerbRequest, differ screen.Differ, log *zap.SugaredLogger) (VerbResult, error) {
	t, viewport, err := e.scrollOrigin(ctx, req, log)
	if errors.Is(err, errTargetNotFound) {
		return notFoundResult(t), nil
	}
	if err != nil {
		return VerbResult{}, err
	}

	var until *vision.Template
	if req.Until != "" {
		tpl, err := e.templates.Resolve(req.Until)
		if err != nil {
			return VerbResult{}, err
		}
		scaled := tpl.ForScale(e.opts.DisplayScale)
		until = &scaled
	}

	dx, dy := req.Direction.Deltas(e.opts.ScrollStep)
	log.Debugw("scrolling", "at", t.point, "viewport", viewport, "direction", req.Direction)

	prev, err := e.sampler.Capture(&viewport)
	if err != nil {
		return VerbResult{}, err
	}

	// Seek: the sought template may already be on screen.
	if until != nil {
		if m, err := e.matcher.Find(prev, *until); err == nil {
			found := true
			return VerbResult{
				Outcome: Succeeded, Match: &m, Found: &found,
				Zone: &viewport, Attempts: t.attempts, Snapshot: &prev,
			}, nil
		} else if !errors.Is(err, vision.ErrNoMatch) {
			return VerbResult{}, err
		}
	}

	steps := 0
	stable := 0
	for {
		if ctx.Err() != nil {
			res := VerbResult{
				Outcome: TimedOut, Match: t.match, Steps: steps,
				Zone: &viewport, Attempts: t.attempts, Snapshot: &prev,
			}
			if until != nil {
				found := false
				res.Found = &found
			}
			return res, nil
		}

		if err := e.input.Scroll(t.point.X, t.point.Y, dx, dy); err != nil {
			return VerbResult{}, fmt.Errorf("scroll step %d: %w", steps+1, err)
		}
		e.sampler.Invalidate()
		steps++

		if e.opts.SettleDelay > 0 && !sleepTick(ctx, e.opts.SettleDelay) {
			continue // deadline hit while settling; top of loop reports it
		}

		curr, err := e.sampler.Capture(&viewport)
		if err != nil {
			return VerbResult{}, err
		}

		if until != nil {
			if m, err := e.matcher.Find(curr, *until); err == nil {
				found := true
				return VerbResult{
					Outcome: Succeeded, Match: &m, Found: &found, Steps: steps,
					Zone: &viewport, Attempts: t.attempts, Snapshot: &curr,
				}, nil
			} else if !errors.Is(err, vision.ErrNoMatch) {
				return VerbResult{}, err
			}
		}

		d, err := differ.Diff(prev, curr)
		if err != nil {
			return VerbResult{}, err
		}
		if d.Changed {
			stable = 0
			prev = curr
			log.Debugw("viewport advanced", "step", steps, "magnitude", d.Magnitude)
		} else {
			stable++
			log.Debugw("viewport quiet", "step", steps, "stable", stable)
			if stable >= e.opts.Policy.StableReads {
				res := VerbResult{
					Outcome: Converged, Match: t.match, Steps: steps,
					Magnitude: d.Magnitude, Zone: &viewport,
					Attempts: t.attempts, Snapshot: &curr,
				}
				if until != nil {
					found := false
					res.Found = &found
				}
				return res, nil
			}
		}

		if req.MaxSteps > 0 && steps >= req.MaxSteps {
			return VerbResult{
				Outcome: Succeeded, Match: t.match, Steps: steps,
				Magnitude: d.Magnitude, Zone: &viewport,
				Attempts: t.attempts, Snapshot: &curr,
			}, nil
		}
	}
}

// scrollOrigin picks where the wheel events land and which viewport to
// watch. A template or point target centers both on the target; an
// explicit check zone scrolls at its own center; a bare scroll acts on
// the middle of the screen.
func (e *Engine) scrollOrigin(ctx context.Context, req VerbRequest, log *zap.SugaredLogger) (target, geom.Zone, error) {
	if req.Target != "" || req.Point != nil {
		t, err := e.resolveTarget(ctx, req, log)
		if err != nil {
			return t, geom.Zone{}, err
		}
		viewport, err := e.checkZone(req, t)
		if err != nil {
			return t, geom.Zone{}, err
		}
		return t, viewport, nil
	}

	if req.CheckZone != nil {
		viewport, err := e.clampZone(*req.CheckZone)
		if err != nil {
			return target{}, geom.Zone{}, err
		}
		return target{point: viewport.Center()}, viewport, nil
	}

	bounds, err := e.sampler.Bounds()
	if err != nil {
		return target{}, geom.Zone{}, err
	}
	center := bounds.Center()
	viewport, err := geom.Around(center, e.opts.PointZone, e.opts.PointZone, geom.AnchorCenter).ClampTo(bounds)
	if err != nil {
		return target{}, geom.Zone{}, err
	}
	return target{point: center}, viewport, nil
}
