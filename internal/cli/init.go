package cli

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/config"
	"github.com/ppiankov/cmdwatch/internal/registry"
)

var (
	initForce bool
	initBare  bool
)

func init() {
	rootCmd.AddCommand(initCmd)
	initCmd.Flags().BoolVarP(&initForce, "force", "f", false, "Overwrite existing files")
	initCmd.Flags().BoolVar(&initBare, "bare", false, "Create an empty registry instead of the starter set")
}

var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create the config file and a starter registry",
	Long: "Writes ~/.cmdwatch/config.yaml and ~/.cmdwatch/registry.json.\n" +
		"The starter registry covers common read-only commands; everything else\n" +
		"stays unknown until added explicitly.",
	RunE: runInit,
}

func runInit(cmd *cobra.Command, args []string) error {
	cfgPath := configPath
	if cfgPath == "" {
		cfgPath = config.DefaultPath()
	}

	if err := writeConfigFile(cfgPath); err != nil {
		return err
	}

	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	return writeRegistryFile(cfg.RegistryPath)
}

func writeConfigFile(path string) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Printf("Config already exists at %s (use --force to overwrite)\n", path)
		return nil
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create config directory: %w", err)
	}
	if err := os.WriteFile(path, []byte(config.DefaultYAML()), 0644); err != nil {
		return fmt.Errorf("write config: %w", err)
	}
	fmt.Printf("Wrote %s\n", path)
	return nil
}

func writeRegistryFile(path string) error {
	if _, err := os.Stat(path); err == nil && !initForce {
		fmt.Printf("Registry already exists at %s (use --force to overwrite)\n", path)
		return nil
	}

	reg := registry.Empty()
	if !initBare {
		reg = starterRegistry()
	}
	if err := registry.Save(reg, path); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	fmt.Printf("Wrote %s (%d commands)\n", path, len(reg.Commands))
	return nil
}

// starterRegistry covers commands safe enough to auto-execute plus a
// few common mutating ones that should always ask.
func starterRegistry() *registry.Registry {
	reg := registry.Empty()
	allow := func(name, description, reason string) {
		reg.Commands[name] = registry.Entry{
			Name:        name,
			Description: description,
			Permission:  registry.AlwaysAllow,
			Risk: registry.Risk{
				Level:  registry.RiskLow,
				Color:  registry.RiskLow.Color(),
				Reason: reason,
			},
		}
	}
	ask := func(name, description string, level registry.RiskLevel, reason string) {
		reg.Commands[name] = registry.Entry{
			Name:        name,
			Description: description,
			Permission:  registry.AlwaysAsk,
			Risk: registry.Risk{
				Level:  level,
				Color:  level.Color(),
				Reason: reason,
			},
		}
	}

	allow("ls", "List directory contents", "Read-only directory listing")
	allow("cat", "Print file contents", "Read-only file access")
	allow("pwd", "Print working directory", "Read-only")
	allow("echo", "Print arguments", "No side effects")
	allow("grep", "Search file contents", "Read-only search")
	allow("find", "Search for files", "Read-only search")
	allow("head", "Print first lines of a file", "Read-only file access")
	allow("tail", "Print last lines of a file", "Read-only file access")
	allow("wc", "Count lines, words, bytes", "Read-only")
	allow("which", "Locate a command", "Read-only")
	allow("git status", "Show working tree status", "Read-only git query")
	allow("git diff", "Show changes", "Read-only git query")
	allow("git log", "Show commit history", "Read-only git query")

	ask("rm", "Remove files or directories", registry.RiskHigh, "Deletes data irreversibly")
	ask("git push", "Upload commits to a remote", registry.RiskMedium, "Publishes changes outside the machine")
	ask("curl", "Transfer data from or to a server", registry.RiskMedium, "Network access, can download and upload data")
	ask("sudo", "Run a command as another user", registry.RiskCritical, "Privilege escalation")

	return reg
}
