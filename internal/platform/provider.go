package platform

import (
	"fmt"
	"runtime"
)

// Provider bundles all platform backends for the current OS.
type Provider struct {
	Inputter  Inputter
	Screen    Screen
	Clipboard Clipboard
	Focuser   Focuser
}

// ErrUnsupported is returned when no backend registered itself.
var ErrUnsupported = fmt.Errorf("honk is not supported on %s/%s: no platform backend registered", runtime.GOOS, runtime.GOARCH)

// NewProviderFunc is set by backend packages via init().
// See internal/platform/robot/init.go for the production registration.
var NewProviderFunc func() (*Provider, error)

// RequestPermissionsFunc is set by backend packages via init().
// It triggers OS permission prompts (e.g. screen recording) at startup.
var RequestPermissionsFunc func()

// NewProvider returns a Provider for the current OS.
func NewProvider() (*Provider, error) {
	if NewProviderFunc == nil {
		return nil, ErrUnsupported
	}
	return NewProviderFunc()
}
