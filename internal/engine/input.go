package engine

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/honk-lang/honk/internal/platform"
	"github.com/honk-lang/honk/internal/screen"
)

// inputText locates the field, clicks it to focus, and transmits the
// payload by synthetic keystrokes or clipboard paste. With the submit
// flag set a Return keypress follows the text. Transmission counts as
// Succeeded on its own; an explicit check zone additionally demands a
// visible reaction, click-style.
func (e *Engine) inputText(ctx context.Context, req VerbRequest, differ screen.Differ, log *zap.SugaredLogger) (VerbResult, error) {
	t, err := e.resolveTarget(ctx, req, log)
	if errors.Is(err, errTargetNotFound) {
		return notFoundResult(t), nil
	}
	if err != nil {
		return VerbResult{}, err
	}

	log.Debugw("focusing field", "at", t.point)
	if err := e.input.Click(t.point.X, t.point.Y, platform.MouseLeft, 1); err != nil {
		return VerbResult{}, fmt.Errorf("focus field at %s: %w", t.point, err)
	}
	e.sampler.Invalidate()

	if e.opts.SettleDelay > 0 {
		sleepTick(ctx, e.opts.SettleDelay)
	}
	if ctx.Err() != nil {
		// Deadline passed before anything was typed. Stop here rather
		// than transmit into a field we can no longer verify.
		return VerbResult{Outcome: TimedOut, Match: t.match, Attempts: t.attempts, Snapshot: t.lastSnap}, nil
	}

	var before *screen.Snapshot
	if req.CheckZone != nil {
		zone, err := e.clampZone(*req.CheckZone)
		if err != nil {
			return VerbResult{}, err
		}
		snap, err := e.sampler.Capture(&zone)
		if err != nil {
			return VerbResult{}, err
		}
		before = &snap
	}

	if req.Text != "" {
		if req.Paste {
			if e.clipboard == nil {
				return VerbResult{}, errors.New("paste mode needs a clipboard backend")
			}
			if err := e.clipboard.SetText(req.Text); err != nil {
				return VerbResult{}, fmt.Errorf("stage clipboard: %w", err)
			}
			if err := e.input.KeyCombo(platform.PasteCombo()); err != nil {
				return VerbResult{}, fmt.Errorf("paste: %w", err)
			}
			log.Debugw("pasted text", "chars", len(req.Text))
		} else {
			if err := e.input.TypeText(req.Text, e.opts.TypeDelay); err != nil {
				return VerbResult{}, fmt.Errorf("type text: %w", err)
			}
			log.Debugw("typed text", "chars", len(req.Text))
		}
	}
	if req.Submit {
		if err := e.input.KeyCombo([]string{"enter"}); err != nil {
			return VerbResult{}, fmt.Errorf("submit: %w", err)
		}
		log.Debugw("submitted")
	}
	e.sampler.Invalidate()

	res := VerbResult{Outcome: Succeeded, Match: t.match, Attempts: t.attempts}
	if before == nil {
		return res, nil
	}

	after, d, changed, err := e.observeChange(ctx, *before, differ, log)
	if err != nil {
		return VerbResult{}, err
	}
	res.Zone = &after.Zone
	res.Magnitude = d.Magnitude
	res.Snapshot = &after
	if !changed {
		res.Outcome = NoStateChange
	}
	return res, nil
}
