// Package cli wires the cmdwatch commands.
package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/config"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "cmdwatch",
	Short: "Command verification gate for AI agents",
	Long: "Verifies shell commands against a registry of known commands before an\n" +
		"agent runs them: splits compound lines, identifies each command through\n" +
		"wrappers and environment prefixes, and decides whether the line may\n" +
		"auto-execute, needs permission, or must be reviewed first.",
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "Path to config YAML (default ~/.cmdwatch/config.yaml)")
}

// loadConfig loads the configuration honoring the --config flag.
func loadConfig() (*config.Config, error) {
	return config.Load(configPath)
}

// Execute runs the root command.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
