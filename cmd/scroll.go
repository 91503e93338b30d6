package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/engine"
	"github.com/honk-lang/honk/internal/platform"
)

var scrollCmd = &cobra.Command{
	Use:   "scroll [template]",
	Short: "Scroll until content stops moving or a template appears",
	Long: `Inject wheel steps at the target (or the screen center) and watch the
viewport between them. Stops when the viewport converges (content ran out),
when the --until template becomes visible, or after --steps steps.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runScroll,
}

func init() {
	rootCmd.AddCommand(scrollCmd)
	addTargetingFlags(scrollCmd)
	scrollCmd.Flags().String("direction", "down", "Scroll direction: up, down, left, right")
	scrollCmd.Flags().Int("steps", 0, "Stop after this many steps (0 = until converged)")
	scrollCmd.Flags().String("until", "", "Stop when this template becomes visible")
}

func runScroll(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	req := engine.VerbRequest{Kind: engine.Scroll}
	if err := parseTargeting(cmd, args, &req); err != nil {
		return err
	}
	directionStr, _ := cmd.Flags().GetString("direction")
	direction, err := platform.ParseScrollDirection(directionStr)
	if err != nil {
		return err
	}
	req.Direction = direction
	req.MaxSteps, _ = cmd.Flags().GetInt("steps")
	req.Until, _ = cmd.Flags().GetString("until")

	return executeAndPrint(cmd.Context(), tk, req)
}
