package robot

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-vgo/robotgo"

	"github.com/honk-lang/honk/internal/platform"
)

// Inputter implements platform.Inputter with robotgo.
type Inputter struct{}

// NewInputter creates the robotgo-backed inputter.
func NewInputter() *Inputter {
	return &Inputter{}
}

func (in *Inputter) Click(x, y int, button platform.MouseButton, count int) error {
	if count < 1 {
		count = 1
	}
	robotgo.Move(x, y)
	if count == 2 {
		robotgo.Click(robotButton(button), true)
		return nil
	}
	for i := 0; i < count; i++ {
		robotgo.Click(robotButton(button), false)
	}
	return nil
}

// robotButton maps the flag spelling onto robotgo's button names, which
// call the middle button "center".
func robotButton(b platform.MouseButton) string {
	if b == platform.MouseMiddle {
		return "center"
	}
	return b.String()
}

func (in *Inputter) MoveMouse(x, y int) error {
	robotgo.Move(x, y)
	return nil
}

func (in *Inputter) Scroll(x, y int, dx, dy int) error {
	// Position the pointer first so the scroll lands on the intended
	// surface. x and y both zero means scroll wherever the pointer is.
	if x != 0 || y != 0 {
		robotgo.Move(x, y)
		time.Sleep(10 * time.Millisecond)
	}
	robotgo.Scroll(dx, dy)
	return nil
}

func (in *Inputter) TypeText(text string, delayMs int) error {
	if delayMs <= 0 {
		robotgo.TypeStr(text)
		return nil
	}
	for _, ch := range text {
		robotgo.TypeStr(string(ch))
		time.Sleep(time.Duration(delayMs) * time.Millisecond)
	}
	return nil
}

func (in *Inputter) KeyCombo(keys []string) error {
	key, mods, err := splitCombo(keys)
	if err != nil {
		return err
	}
	args := make([]interface{}, len(mods))
	for i, m := range mods {
		args[i] = m
	}
	if err := robotgo.KeyTap(key, args...); err != nil {
		return fmt.Errorf("key tap %q: %w", strings.Join(keys, "+"), err)
	}
	return nil
}

// comboModifiers are the robotgo names of the modifier keys a combo
// may carry alongside its single main key.
var comboModifiers = map[string]bool{
	"cmd":   true,
	"ctrl":  true,
	"alt":   true,
	"shift": true,
}

// keyAliases maps common flag spellings onto robotgo key names.
var keyAliases = map[string]string{
	"return":  "enter",
	"escape":  "esc",
	"command": "cmd",
	"meta":    "cmd",
	"super":   "cmd",
	"control": "ctrl",
	"option":  "alt",
	"opt":     "alt",
}

// splitCombo separates a key list into the main key and its modifiers.
// Exactly one non-modifier key is required.
func splitCombo(keys []string) (string, []string, error) {
	var key string
	var mods []string
	for _, k := range keys {
		k = strings.ToLower(strings.TrimSpace(k))
		if alias, ok := keyAliases[k]; ok {
			k = alias
		}
		if comboModifiers[k] {
			mods = append(mods, k)
			continue
		}
		if k == "" {
			continue
		}
		if key != "" {
			return "", nil, fmt.Errorf("key combo has more than one main key: %q and %q", key, k)
		}
		key = k
	}
	if key == "" {
		return "", nil, fmt.Errorf("no key specified in combo, only modifiers")
	}
	return key, mods, nil
}
