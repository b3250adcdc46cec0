package commands

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/myze/momentum/pkg/config"
)

var (
	// Global flags
	envFile string
	verbose bool
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "momentum",
	Short: "Market momentum widget proxy",
	Long: `Momentum proxy and widget host.

Polls the FMP API, derives per-ticker momentum (VWAP deviation,
relative volume, gap, ATR) and serves ranked low/high-float snapshots
to the embeddable widget.

Usage:
  go run ./cmd/momentum [command]

Examples:
  go run ./cmd/momentum serve
  go run ./cmd/momentum serve --port 8080
  go run ./cmd/momentum scan`,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVar(&envFile, "config", "", "env file (default is .env)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// loadConfig applies the global flags on top of the environment config.
func loadConfig() (*config.Config, error) {
	if envFile != "" {
		_ = godotenv.Load(envFile)
	}

	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	if verbose {
		cfg.LogLevel = "debug"
	}

	return cfg, nil
}
