package cli

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/registry"
)

var (
	addRegistry    string
	addDescription string
	addPermission  string
	addRiskLevel   string
	addRiskReason  string
)

func init() {
	rootCmd.AddCommand(addCmd)
	addCmd.Flags().StringVar(&addRegistry, "registry", "", "Path to registry JSON (overrides config)")
	addCmd.Flags().StringVarP(&addDescription, "description", "d", "", "What the command does")
	addCmd.Flags().StringVarP(&addPermission, "permission", "p", "", "AlwaysAllow or AlwaysAsk (required)")
	addCmd.Flags().StringVarP(&addRiskLevel, "risk-level", "r", "", "low, medium, high, or critical (required)")
	addCmd.Flags().StringVar(&addRiskReason, "risk-reason", "", "Why this risk level")
	addCmd.MarkFlagRequired("permission")
	addCmd.MarkFlagRequired("risk-level")
}

var addCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add a command to the registry",
	Long: "Registers a command (or a \"name subcommand\" key) with a permission and\n" +
		"a risk assessment. Fails when the command is already registered; use a\n" +
		"more specific key or edit the registry file directly to change an entry.",
	Args: cobra.MinimumNArgs(1),
	RunE: runAdd,
}

func runAdd(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registryPath := addRegistry
	if registryPath == "" {
		registryPath = cfg.RegistryPath
	}

	// "cmdwatch add git push" and "cmdwatch add 'git push'" both work.
	name := strings.Join(args, " ")

	entry, err := registry.Add(registryPath, registry.AddParams{
		Name:        name,
		Description: addDescription,
		Permission:  addPermission,
		RiskLevel:   addRiskLevel,
		RiskReason:  addRiskReason,
	})
	if err != nil {
		var dup *registry.DuplicateError
		if errors.As(err, &dup) {
			fmt.Fprintf(os.Stderr, "Error: %v\n", dup)
			fmt.Fprintf(os.Stderr, "  Existing: %s (%s, %s)\n",
				dup.Existing.Name, dup.Existing.Permission, dup.Existing.Risk.Level)
			os.Exit(1)
		}
		return err
	}

	fmt.Printf("Added %q to %s\n", entry.Name, registryPath)
	fmt.Printf("  Permission: %s\n", entry.Permission)
	fmt.Printf("  Risk: %s - %s\n", strings.ToUpper(string(entry.Risk.Level)), entry.Risk.Reason)
	return nil
}
