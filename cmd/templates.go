package cmd

import (
	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/vision"
)

// TemplatesResult is the output of the templates command.
type TemplatesResult struct {
	OK        bool          `yaml:"ok" json:"ok"`
	Action    string        `yaml:"action" json:"action"`
	Dir       string        `yaml:"dir" json:"dir"`
	Count     int           `yaml:"count" json:"count"`
	Templates []vision.Info `yaml:"templates" json:"templates"`
}

var templatesCmd = &cobra.Command{
	Use:   "templates",
	Short: "List the templates in the library",
	RunE:  runTemplates,
}

func init() {
	rootCmd.AddCommand(templatesCmd)
}

func runTemplates(cmd *cobra.Command, args []string) error {
	library := vision.NewLibrary(cfg.Library.Dir)
	infos, err := library.List()
	if err != nil {
		return err
	}
	return output.Print(TemplatesResult{
		OK:        true,
		Action:    "templates",
		Dir:       library.Dir(),
		Count:     len(infos),
		Templates: infos,
	})
}
