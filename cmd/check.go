package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/engine"
)

var checkCmd = &cobra.Command{
	Use:   "check [template]",
	Short: "Extract text from a zone and evaluate a condition",
	Long: `Capture the zone around the template (or an explicit --zone when no
template is given), run it through the configured text backend, and
evaluate the --that condition against the extracted text.

Conditions: equals:X, contains:X, matches:REGEXP, gt:N, lt:N, empty,
not-empty. A false verdict prints the result and exits non-zero, so checks
gate shell scripts directly.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runCheck,
}

func init() {
	rootCmd.AddCommand(checkCmd)
	addTargetingFlags(checkCmd)
	checkCmd.Flags().String("that", "", "Condition expression to evaluate (required)")
}

func runCheck(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	req := engine.VerbRequest{Kind: engine.Check}
	if err := parseTargeting(cmd, args, &req); err != nil {
		return err
	}
	req.Condition, _ = cmd.Flags().GetString("that")
	normalizeCheckZones(&req)

	return executeAndPrint(cmd.Context(), tk, req)
}
