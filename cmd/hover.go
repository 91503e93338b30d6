package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/engine"
)

var hoverCmd = &cobra.Command{
	Use:   "hover [template]",
	Short: "Hover over a target and wait for the UI to react",
	Long: `Move the pointer over the template (or --at coordinates) and wait for a
tooltip or highlight to appear in the surrounding zone. A zone that never
changes is reported as timed_out: hover exists to provoke a reaction.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runHover,
}

func init() {
	rootCmd.AddCommand(hoverCmd)
	addTargetingFlags(hoverCmd)
}

func runHover(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	req := engine.VerbRequest{Kind: engine.Hover}
	if err := parseTargeting(cmd, args, &req); err != nil {
		return err
	}

	return executeAndPrint(cmd.Context(), tk, req)
}
