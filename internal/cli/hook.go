package cli

import (
	"context"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/ppiankov/cmdwatch/internal/audit"
	"github.com/ppiankov/cmdwatch/internal/history"
	"github.com/ppiankov/cmdwatch/internal/hook"
	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

var hookRegistry string

func init() {
	rootCmd.AddCommand(hookCmd)
	hookCmd.Flags().StringVar(&hookRegistry, "registry", "", "Path to registry JSON (overrides config)")
}

var hookCmd = &cobra.Command{
	Use:   "hook",
	Short: "Run as a PreToolUse hook (stdin/stdout JSON)",
	Long: "Reads a tool-call event from stdin, verifies the command inside it, and\n" +
		"writes a permissionDecision JSON to stdout. Explanatory output goes to\n" +
		"stderr. Malformed input fails closed: deny, exit 1.\n\n" +
		"Wire it as:\n" +
		`  {"hooks": {"PreToolUse": [{"matcher": "Bash", "command": "cmdwatch hook"}]}}`,
	RunE: runHook,
}

func runHook(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		// Even a broken config must not leave the gate open.
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Println(`{"hookSpecificOutput":{"hookEventName":"PreToolUse","permissionDecision":"deny","permissionDecisionReason":"Hook error: configuration unavailable"}}`)
		os.Exit(1)
	}

	registryPath := hookRegistry
	if registryPath == "" {
		registryPath = cfg.RegistryPath
	}
	reg := registry.Load(registryPath)

	code := hook.RunWithObserver(os.Stdin, os.Stdout, os.Stderr, reg, func(v *verify.Verdict, resp hook.Response) {
		recordHookDecision(cfg.AuditLogPath, cfg.HistoryDBPath, v, resp)
	})
	os.Exit(code)
	return nil
}

func recordHookDecision(auditPath, historyPath string, v *verify.Verdict, resp hook.Response) {
	decision := string(resp.HookSpecificOutput.PermissionDecision)
	reason := resp.HookSpecificOutput.PermissionDecisionReason

	if auditPath != "" {
		if log, err := audit.Open(auditPath); err == nil {
			log.Record(audit.Entry{
				Source:          "hook",
				Command:         v.Original,
				Decision:        decision,
				Reason:          reason,
				HighestRisk:     string(v.HighestRisk),
				Unknown:         v.Unknown,
				NeedsPermission: v.NeedsPermission,
			})
			log.Close()
		}
	}

	if historyPath != "" {
		if store, err := history.Open(historyPath); err == nil {
			store.Record(context.Background(), "hook", v, decision)
			store.Close()
		}
	}
}
