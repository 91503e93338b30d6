package cmd

import (
	"runtime"

	"github.com/spf13/cobra"

	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/version"
)

// VersionResult is the output of the version command.
type VersionResult struct {
	Version   string `yaml:"version" json:"version"`
	Commit    string `yaml:"commit" json:"commit"`
	BuildDate string `yaml:"build_date" json:"build_date"`
	GoVersion string `yaml:"go_version" json:"go_version"`
	Platform  string `yaml:"platform" json:"platform"`
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build and platform information",
	RunE:  runVersion,
}

func init() {
	rootCmd.AddCommand(versionCmd)
}

func runVersion(cmd *cobra.Command, args []string) error {
	return output.Print(VersionResult{
		Version:   version.Version,
		Commit:    version.Commit,
		BuildDate: version.BuildDate,
		GoVersion: runtime.Version(),
		Platform:  runtime.GOOS + "/" + runtime.GOARCH,
	})
}
