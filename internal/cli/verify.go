package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/audit"
	"github.com/ppiankov/cmdwatch/internal/config"
	"github.com/ppiankov/cmdwatch/internal/history"
	"github.com/ppiankov/cmdwatch/internal/hook"
	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/report"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

var (
	verifyRegistry string
	verifyJSON     bool
	verifyNoRecord bool
)

func init() {
	rootCmd.AddCommand(verifyCmd)
	verifyCmd.Flags().StringVar(&verifyRegistry, "registry", "", "Path to registry JSON (overrides config)")
	verifyCmd.Flags().BoolVar(&verifyJSON, "json", false, "Output verdict as JSON")
	verifyCmd.Flags().BoolVar(&verifyNoRecord, "no-record", false, "Skip audit log and history recording")
}

var verifyCmd = &cobra.Command{
	Use:   "verify <command>",
	Short: "Verify a shell command against the registry",
	Long: "Splits the command line on shell separators, identifies each command\n" +
		"through sudo/env wrappers and assignment prefixes, and reports whether\n" +
		"every command is known and may auto-execute.\n\n" +
		"Exit code 0 when the whole line can auto-execute, 1 otherwise.",
	Args: cobra.ExactArgs(1),
	RunE: runVerify,
}

func runVerify(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	registryPath := verifyRegistry
	if registryPath == "" {
		registryPath = cfg.RegistryPath
	}

	v := verify.Evaluate(args[0], registry.Load(registryPath))

	if !verifyNoRecord {
		recordDecision(cfg, "cli", v)
	}

	if verifyJSON {
		out, err := report.FormatJSON(v)
		if err != nil {
			return err
		}
		fmt.Println(out)
	} else {
		fmt.Print(report.FormatText(v, useColor(cfg.Color)))
	}

	if !v.CanAutoExecute {
		os.Exit(1)
	}
	return nil
}

// recordDecision appends the verdict to the audit log and history.
// Recording failures are reported but never change the verdict.
func recordDecision(cfg *config.Config, source string, v *verify.Verdict) {
	resp := hook.Decide(v)
	decision := string(resp.HookSpecificOutput.PermissionDecision)
	reason := resp.HookSpecificOutput.PermissionDecisionReason

	if path := cfg.AuditLogPath; path != "" {
		if log, err := audit.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: audit log unavailable: %v\n", err)
		} else {
			if err := log.Record(audit.Entry{
				Source:          source,
				Command:         v.Original,
				Decision:        decision,
				Reason:          reason,
				HighestRisk:     string(v.HighestRisk),
				Unknown:         v.Unknown,
				NeedsPermission: v.NeedsPermission,
			}); err != nil {
				fmt.Fprintf(os.Stderr, "warning: audit record failed: %v\n", err)
			}
			log.Close()
		}
	}

	if path := cfg.HistoryDBPath; path != "" {
		if store, err := history.Open(path); err != nil {
			fmt.Fprintf(os.Stderr, "warning: history unavailable: %v\n", err)
		} else {
			if err := store.Record(context.Background(), source, v, decision); err != nil {
				fmt.Fprintf(os.Stderr, "warning: history record failed: %v\n", err)
			}
			store.Close()
		}
	}
}

// useColor resolves the configured color mode against the terminal.
func useColor(mode string) bool {
	switch mode {
	case "always":
		return true
	case "never":
		return false
	}
	info, err := os.Stdout.Stat()
	if err != nil {
		return false
	}
	return info.Mode()&os.ModeCharDevice != 0
}
