package robot

import "github.com/honk-lang/honk/internal/platform"

func init() {
	platform.NewProviderFunc = func() (*platform.Provider, error) {
		return &platform.Provider{
			Inputter:  NewInputter(),
			Screen:    NewScreen(),
			Clipboard: NewClipboard(),
			Focuser:   NewFocuser(),
		}, nil
	}
}
