package cmd

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/platform"
)

// FocusResult is the output of the focus command.
type FocusResult struct {
	OK     bool   `yaml:"ok" json:"ok"`
	Action string `yaml:"action" json:"action"`
	App    string `yaml:"app,omitempty" json:"app,omitempty"`
	PID    int    `yaml:"pid,omitempty" json:"pid,omitempty"`
}

var focusCmd = &cobra.Command{
	Use:   "focus",
	Short: "Bring an application window to the front",
	RunE:  runFocus,
}

func init() {
	rootCmd.AddCommand(focusCmd)
	focusCmd.Flags().String("app", "", "Application name to focus")
	focusCmd.Flags().Int("pid", 0, "Process ID to focus")
}

func runFocus(cmd *cobra.Command, args []string) error {
	app, _ := cmd.Flags().GetString("app")
	pid, _ := cmd.Flags().GetInt("pid")
	if app == "" && pid == 0 {
		return errors.New("focus: --app or --pid is required")
	}

	tk, err := newToolkit()
	if err != nil {
		return err
	}

	if err := tk.provider.Focuser.FocusWindow(platform.FocusOptions{App: app, PID: pid}); err != nil {
		return err
	}

	res := FocusResult{OK: true, Action: "focus", App: app, PID: pid}
	if front, frontPID, err := tk.provider.Focuser.GetFrontmostApp(); err == nil {
		res.App = front
		res.PID = frontPID
	}
	return output.Print(res)
}
