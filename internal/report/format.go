// Package report renders verdicts for terminals and machines.
package report

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

const (
	green  = "\033[92m"
	yellow = "\033[93m"
	red    = "\033[91m"
	bold   = "\033[1m"
	reset  = "\033[0m"
)

const separator = "──────────────────────────────────────────────────"

// colorFor maps a registry color hint to its escape sequence.
func colorFor(hint string) string {
	switch hint {
	case "green":
		return green
	case "red":
		return red
	default:
		return yellow
	}
}

// FormatJSON renders a verdict as indented JSON.
func FormatJSON(v *verify.Verdict) (string, error) {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return "", fmt.Errorf("marshal verdict: %w", err)
	}
	return string(data), nil
}

// FormatText renders a human-readable verification report. Colors are
// suppressed when useColor is false (non-TTY output).
func FormatText(v *verify.Verdict, useColor bool) string {
	c := func(code string) string {
		if !useColor {
			return ""
		}
		return code
	}

	var b strings.Builder

	fmt.Fprintf(&b, "%sCommand Verification Report%s\n", c(bold), c(reset))
	b.WriteString(separator + "\n")
	fmt.Fprintf(&b, "Command: %s\n\n", v.Original)

	switch {
	case v.CanAutoExecute:
		fmt.Fprintf(&b, "%s[ALLOW]%s All commands can be executed automatically\n", c(green), c(reset))
	case len(v.Unknown) > 0:
		fmt.Fprintf(&b, "%s[UNKNOWN]%s Some commands are not in the registry\n", c(yellow), c(reset))
	default:
		fmt.Fprintf(&b, "%s[ASK]%s User permission required for some commands\n", c(yellow), c(reset))
	}

	riskColor := c(colorFor(v.HighestRisk.Color()))
	fmt.Fprintf(&b, "\nHighest Risk Level: %s%s%s\n\n", riskColor, strings.ToUpper(string(v.HighestRisk)), c(reset))

	b.WriteString("Commands:\n")
	b.WriteString(separator + "\n")
	for _, cmd := range v.Commands {
		if cmd.Known {
			writeKnown(&b, cmd, c)
		} else {
			fmt.Fprintf(&b, "  %s%s%s %s[UNKNOWN]%s\n", c(bold), cmd.Identity.Base, c(reset), c(yellow), c(reset))
			fmt.Fprintf(&b, "    Full: %s\n", cmd.FullCommand)
			b.WriteString("    Status: Not in registry - needs to be added\n")
		}
		b.WriteString("\n")
	}

	if len(v.Unknown) > 0 {
		b.WriteString("Action Required:\n")
		b.WriteString("  The following commands need to be added to the registry:\n")
		for _, name := range v.Unknown {
			fmt.Fprintf(&b, "    - %s\n", name)
		}
		b.WriteString("\n")
	}

	if len(v.NeedsPermission) > 0 {
		b.WriteString("Permission Required:\n")
		b.WriteString("  The following commands require user approval:\n")
		for _, key := range v.NeedsPermission {
			fmt.Fprintf(&b, "    - %s\n", key)
		}
	}

	return b.String()
}

func writeKnown(b *strings.Builder, cmd verify.CommandResult, c func(string) string) {
	entry := cmd.Entry

	fmt.Fprintf(b, "  %s%s%s\n", c(bold), cmd.Identity.Base, c(reset))
	if cmd.MatchedKey != "" && cmd.MatchedKey != cmd.Identity.Base {
		fmt.Fprintf(b, "    Matched: %s\n", cmd.MatchedKey)
	}
	fmt.Fprintf(b, "    Full: %s\n", cmd.FullCommand)

	description := entry.Description
	if description == "" {
		description = "No description available"
	}
	fmt.Fprintf(b, "    Description: %s\n", description)
	fmt.Fprintf(b, "    Permission: %s\n", entry.Permission)

	reason := entry.Risk.Reason
	if reason == "" {
		reason = "N/A"
	}
	riskColor := c(colorFor(entry.Risk.Color))
	fmt.Fprintf(b, "    Risk: %s%s%s - %s\n",
		riskColor, strings.ToUpper(string(entry.Risk.Level)), c(reset), reason)
}

// Summary is a one-line digest of a verdict for log lines.
func Summary(v *verify.Verdict) string {
	switch {
	case len(v.Unknown) > 0:
		return fmt.Sprintf("unknown command(s): %s", strings.Join(v.Unknown, ", "))
	case len(v.NeedsPermission) > 0:
		return fmt.Sprintf("permission required for: %s", strings.Join(v.NeedsPermission, ", "))
	default:
		return fmt.Sprintf("%d command(s) verified, highest risk %s", len(v.Commands), v.HighestRisk)
	}
}

// Indicator returns the risk marker used in banner lines.
func Indicator(level registry.RiskLevel) string {
	switch level {
	case registry.RiskLow:
		return "🟢"
	case registry.RiskMedium:
		return "🟡"
	default:
		return "🔴"
	}
}
