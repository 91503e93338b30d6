package cmd

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/honk-lang/honk/internal/config"
	"github.com/honk-lang/honk/internal/observability"
	"github.com/honk-lang/honk/internal/output"
	"github.com/honk-lang/honk/internal/platform"
	"github.com/honk-lang/honk/internal/version"
)

var (
	cfgFile string

	// cfg is loaded once by the root PersistentPreRunE and read by every
	// command after that.
	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "honk",
	Short: "Drive desktop UIs through pixels",
	Long: `Honk executes GUI automation verbs (click, scroll, input, hover, check)
against the screen itself. Targets are located by template matching, every
action is followed by watching its zone for change, and each verb reports
an explicit outcome instead of assuming the UI obeyed.`,
}

func Execute() {
	defer observability.Sync()
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	if err := rootCmd.ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.Version = fmt.Sprintf("%s (commit: %s, built: %s)", version.Version, version.Commit, version.BuildDate)
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "Config file (default: ./honk.yaml)")
	rootCmd.PersistentFlags().String("format", "", "Output format: yaml, json")
	rootCmd.PersistentFlags().Bool("pretty", false, "Indent JSON output")
	rootCmd.PersistentFlags().String("library", "", "Template library directory (overrides config)")

	rootCmd.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		c, err := loadConfig()
		if err != nil {
			return err
		}
		cfg = c
		observability.InitializeLogger(c.Logger)

		if platform.RequestPermissionsFunc != nil {
			platform.RequestPermissionsFunc()
		}

		format, _ := rootCmd.PersistentFlags().GetString("format")
		switch format {
		case "", "yaml":
			output.OutputFormat = output.FormatYAML
		case "json":
			output.OutputFormat = output.FormatJSON
		default:
			return fmt.Errorf("unsupported format: %s (use yaml or json)", format)
		}
		if pretty, err := cmd.Flags().GetBool("pretty"); err == nil && pretty {
			output.PrettyOutput = true
		}
		return nil
	}
}

// loadConfig builds the process configuration from defaults, an optional
// honk.yaml, HONK_* environment variables, and the overriding flags.
func loadConfig() (*config.Config, error) {
	v := viper.New()
	config.SetDefaults(v)

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".")
		v.SetConfigName("honk")
		v.SetConfigType("yaml")
	}
	v.SetEnvPrefix("HONK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		// Running without a config file is normal; a broken or explicitly
		// named one is not.
		if cfgFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	if lib, _ := rootCmd.PersistentFlags().GetString("library"); lib != "" {
		v.Set("library.dir", lib)
	}

	return config.NewFromViper(v)
}
