package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/platform"
)

var clickCmd = &cobra.Command{
	Use:   "click [template]",
	Short: "Click a target and verify the screen reacted",
	Long: `Locate the template (or use --at coordinates), click it, and watch the
zone around it for a state change. Reports no_change when the click landed
but nothing moved, and target_not_found when the template never appeared.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runClick,
}

func init() {
	rootCmd.AddCommand(clickCmd)
	addTargetingFlags(clickCmd)
	clickCmd.Flags().String("button", "left", "Mouse button: left, right, middle")
	clickCmd.Flags().Bool("double", false, "Double-click")
}

func runClick(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	req := engine.VerbRequest{Kind: engine.Click}
	if err := parseTargeting(cmd, args, &req); err != nil {
		return err
	}
	buttonStr, _ := cmd.Flags().GetString("button")
	button, err := platform.ParseMouseButton(buttonStr)
	if err != nil {
		return err
	}
	req.Button = button
	req.Double, _ = cmd.Flags().GetBool("double")

	return executeAndPrint(cmd.Context(), tk, req)
}
