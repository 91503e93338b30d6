package screen

import (
	"fmt"
	"image"
	"image/draw"
	"sync"
	"time"

	"github.com/honk-lang/honk/internal/geom"
)

// Capturer provides raw pixel access to a display.
type Capturer interface {
	CaptureRegion(zone geom.Zone) (*image.RGBA, error)
	Bounds() (geom.Zone, error)
}

// CaptureError reports a failed capture attempt along with the zone
// that was requested.
type CaptureError struct {
	Zone  geom.Zone
	Cause error
}

func (e *CaptureError) Error() string {
	return fmt.Sprintf("capture %s: %v", e.Zone, e.Cause)
}

func (e *CaptureError) Unwrap() error {
	return e.Cause
}

// CachedSampler captures full display frames and serves zone crops out
// of the most recent frame. Frames older than the TTL are recaptured
// on the next request, and Invalidate drops the frame immediately so
// the next capture reflects the display after an injected action.
type CachedSampler struct {
	mu  sync.Mutex
	cap Capturer
	ttl time.Duration

	frame  *image.RGBA
	bounds geom.Zone
	taken  time.Time
}

// NewCachedSampler wraps a Capturer with a frame cache. A TTL of zero
// or less disables caching entirely.
func NewCachedSampler(c Capturer, ttl time.Duration) *CachedSampler {
	return &CachedSampler{cap: c, ttl: ttl}
}

// Capture returns a snapshot of the given zone, or of the whole
// display when zone is nil. The zone is clamped to the display bounds;
// a zone entirely outside them is a capture failure.
func (s *CachedSampler) Capture(zone *geom.Zone) (Snapshot, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.refreshLocked(); err != nil {
		requested := s.bounds
		if zone != nil {
			requested = *zone
		}
		return Snapshot{}, &CaptureError{Zone: requested, Cause: err}
	}

	target := s.bounds
	if zone != nil {
		clamped, err := zone.ClampTo(s.bounds)
		if err != nil {
			return Snapshot{}, &CaptureError{Zone: *zone, Cause: err}
		}
		target = clamped
	}

	return Snapshot{Img: s.cropLocked(target), Zone: target, TS: s.taken}, nil
}

// Bounds returns the full display rectangle, capturing a frame first
// if none is cached.
func (s *CachedSampler) Bounds() (geom.Zone, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if err := s.refreshLocked(); err != nil {
		return geom.Zone{}, &CaptureError{Zone: s.bounds, Cause: err}
	}
	return s.bounds, nil
}

// Invalidate drops the cached frame. Call it after injecting input so
// the next capture observes the display's reaction.
func (s *CachedSampler) Invalidate() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.frame = nil
}

func (s *CachedSampler) refreshLocked() error {
	if s.frame != nil && s.ttl > 0 && time.Since(s.taken) < s.ttl {
		return nil
	}

	bounds, err := s.cap.Bounds()
	if err != nil {
		return fmt.Errorf("display bounds: %w", err)
	}
	frame, err := s.cap.CaptureRegion(bounds)
	if err != nil {
		return err
	}

	s.frame = frame
	s.bounds = bounds
	s.taken = time.Now()
	return nil
}

// cropLocked copies the zone out of the cached frame into a fresh
// image with its origin at (0, 0).
func (s *CachedSampler) cropLocked(zone geom.Zone) *image.RGBA {
	out := image.NewRGBA(image.Rect(0, 0, zone.W, zone.H))
	src := image.Pt(zone.X-s.bounds.X, zone.Y-s.bounds.Y).Add(s.frame.Bounds().Min)
	draw.Draw(out, out.Bounds(), s.frame, src, draw.Src)
	return out
}
