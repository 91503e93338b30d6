package engine

import (
	"context"
	"time"
)

// Policy bounds a verb's convergence loop: how often the engine looks
// at the screen, and how many consecutive unchanged observations count
// as settled.
type Policy struct {
	PollInterval time.Duration
	StableReads  int
}

func (p Policy) normalized() Policy {
	if p.PollInterval <= 0 {
		p.PollInterval = 100 * time.Millisecond
	}
	if p.StableReads < 1 {
		p.StableReads = 1
	}
	return p
}

// sleepTick waits one interval. Returns false when ctx expires first.
func sleepTick(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-t.C:
		return true
	}
}
