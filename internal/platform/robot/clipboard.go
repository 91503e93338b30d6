package robot

import (
	"fmt"

	"github.com/go-vgo/robotgo"
)

// Clipboard implements platform.Clipboard with robotgo.
type Clipboard struct{}

// NewClipboard creates the system clipboard backend.
func NewClipboard() *Clipboard {
	return &Clipboard{}
}

func (c *Clipboard) GetText() (string, error) {
	text, err := robotgo.ReadAll()
	if err != nil {
		return "", fmt.Errorf("read clipboard: %w", err)
	}
	return text, nil
}

func (c *Clipboard) SetText(text string) error {
	if err := robotgo.WriteAll(text); err != nil {
		return fmt.Errorf("write clipboard: %w", err)
	}
	return nil
}
