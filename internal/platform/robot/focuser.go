package robot

import (
	"fmt"

	"github.com/go-vgo/robotgo"

	"github.com/honk-lang/honk/internal/platform"
)

// Focuser implements platform.Focuser with robotgo window activation.
type Focuser struct{}

// NewFocuser creates the window focus backend.
func NewFocuser() *Focuser {
	return &Focuser{}
}

func (f *Focuser) FocusWindow(opts platform.FocusOptions) error {
	if opts.PID != 0 {
		if err := robotgo.ActivePid(opts.PID); err != nil {
			return fmt.Errorf("activate pid %d: %w", opts.PID, err)
		}
		return nil
	}
	if opts.App != "" {
		if err := robotgo.ActiveName(opts.App); err != nil {
			return fmt.Errorf("activate %q: %w", opts.App, err)
		}
		return nil
	}
	return fmt.Errorf("focus: app name or pid required")
}

func (f *Focuser) GetFrontmostApp() (string, int, error) {
	pid := robotgo.GetPid()
	if pid <= 0 {
		return "", 0, fmt.Errorf("no frontmost window")
	}
	name, err := robotgo.FindName(pid)
	if err != nil {
		return "", int(pid), fmt.Errorf("find name for pid %d: %w", pid, err)
	}
	return name, int(pid), nil
}
