package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/engine"
)

var inputCmd = &cobra.Command{
	Use:   "input <template>",
	Short: "Focus a field and transmit text into it",
	Long: `Locate the field template, click it to focus, and type the --text payload
(or paste it through the clipboard with --paste). With --submit a Return
keypress follows. Add --check-zone to demand a visible reaction, such as
an echo field updating.`,
	Args: cobra.ExactArgs(1),
	RunE: runInput,
}

func init() {
	rootCmd.AddCommand(inputCmd)
	addTargetingFlags(inputCmd)
	inputCmd.Flags().String("text", "", "Text to transmit into the field")
	inputCmd.Flags().Bool("submit", false, "Press Return after the text")
	inputCmd.Flags().Bool("paste", false, "Deliver the text via clipboard paste instead of keystrokes")
}

func runInput(cmd *cobra.Command, args []string) error {
	tk, err := newToolkit()
	if err != nil {
		return err
	}

	req := engine.VerbRequest{Kind: engine.Input}
	if err := parseTargeting(cmd, args, &req); err != nil {
		return err
	}
	req.Text, _ = cmd.Flags().GetString("text")
	req.Submit, _ = cmd.Flags().GetBool("submit")
	req.Paste, _ = cmd.Flags().GetBool("paste")

	return executeAndPrint(cmd.Context(), tk, req)
}
