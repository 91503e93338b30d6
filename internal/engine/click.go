package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/screen"
)

// click locates the target, snapshots the check zone, injects the
// click, and watches the zone for a reaction. The capture happens
// before the click so the comparison baseline predates the action.
func (e *Engine) click(ctx context.Context, req VerbRequest, differ screen.Differ, log *zap.SugaredLogger) (VerbResult, error) {
	t, err := e.resolveTarget(ctx, req, log)
	if errors.Is(err, errTargetNotFound) {
		return notFoundResult(t), nil
	}
	if err != nil {
		return VerbResult{}, err
	}

	zone, err := e.checkZone(req, t)
	if err != nil {
		return VerbResult{}, err
	}

	before, err := e.sampler.Capture(&zone)
	if err != nil {
		return VerbResult{}, err
	}

	count := 1
	if req.Double {
		count = 2
	}
	log.Debugw("clicking", "at", t.point, "button", req.Button, "count", count, "zone", zone)
	if err := e.input.Click(t.point.X, t.point.Y, req.Button, count); err != nil {
		return VerbResult{}, fmt.Errorf("click at %s: %w", t.point, err)
	}
	e.sampler.Invalidate()

	after, d, changed, err := e.observeChange(ctx, before, differ, log)
	if err != nil {
		return VerbResult{}, err
	}

	res := VerbResult{
		Outcome:   Succeeded,
		Match:     t.match,
		Zone:      &after.Zone,
		Magnitude: d.Magnitude,
		Attempts:  t.attempts,
		Snapshot:  &after,
	}
	if !changed {
		res.Outcome = NoStateChange
	}
	return res, nil
}
