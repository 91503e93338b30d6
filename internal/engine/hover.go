package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/screen"
)

// hover moves the pointer over the target and waits for the UI to
// react with a tooltip or highlight. Unlike click, a quiet zone here
// is a timeout: hover exists to provoke a reaction, and no reaction
// within the deadline means the verb did not do its job.
func (e *Engine) hover(ctx context.Context, req VerbRequest, differ screen.Differ, log *zap.SugaredLogger) (VerbResult, error) {
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

	log.Debugw("hovering", "at", t.point, "zone", zone)
	if err := e.input.MoveMouse(t.point.X, t.point.Y); err != nil {
		return VerbResult{}, fmt.Errorf("move pointer to %s: %w", t.point, err)
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
		res.Outcome = TimedOut
	}
	return res, nil
}
