package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/geom"
)

// check captures a zone, hands its pixels to the text backend, and
// evaluates the condition expression against the extracted text. The
// outcome is Succeeded whenever evaluation completed; the verdict
// itself travels separately so callers can decide what a false means.
func (e *Engine) check(ctx context.Context, req VerbRequest, log *zap.SugaredLogger) (VerbResult, error) {
	var t target
	var zone geom.Zone

	if req.CheckZone != nil && req.Target == "" && req.Point == nil {
		clamped, err := e.clampZone(*req.CheckZone)
		if err != nil {
			return VerbResult{}, err
		}
		zone = clamped
	} else {
		var err error
		t, err = e.resolveTarget(ctx, req, log)
		if errors.Is(err, errTargetNotFound) {
			return notFoundResult(t), nil
		}
		if err != nil {
			return VerbResult{}, err
		}
		zone, err = e.checkZone(req, t)
		if err != nil {
			return VerbResult{}, err
		}
	}

	snap, err := e.sampler.Capture(&zone)
	if err != nil {
		return VerbResult{}, err
	}

	log.Debugw("extracting text", "zone", zone)
	text, err := e.ocr.ExtractText(ctx, snap)
	if err != nil {
		if ctx.Err() != nil {
			return VerbResult{Outcome: TimedOut, Match: t.match, Zone: &zone, Attempts: t.attempts, Snapshot: &snap}, nil
		}
		return VerbResult{}, fmt.Errorf("extract text: %w", err)
	}

	verdict, err := e.ocr.EvaluateCondition(ctx, text, req.Condition)
	if err != nil {
		if ctx.Err() != nil {
			return VerbResult{Outcome: TimedOut, Match: t.match, Zone: &zone, Attempts: t.attempts, Snapshot: &snap}, nil
		}
		return VerbResult{}, fmt.Errorf("evaluate condition %q: %w", req.Condition, err)
	}
	log.Debugw("condition evaluated", "text", text, "verdict", verdict)

	return VerbResult{
		Outcome:  Succeeded,
		Match:    t.match,
		Zone:     &zone,
		Value:    text,
		Verdict:  &verdict,
		Attempts: t.attempts,
		Snapshot: &snap,
	}, nil
}
