// Package hook implements the PreToolUse gate: it reads a tool-call
// event from stdin, verifies the shell command inside it, explains the
// analysis on stderr, and emits a machine decision on stdout.
package hook

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/report"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

// Decision is the gate's verdict on whether the tool call may proceed.
type Decision string

const (
	DecisionAllow Decision = "allow"
	DecisionAsk   Decision = "ask"
	DecisionDeny  Decision = "deny"
)

// Request is the hook event delivered on stdin.
type Request struct {
	ToolName  string    `json:"tool_name"`
	ToolInput ToolInput `json:"tool_input"`
}

// ToolInput carries the shell command under review.
type ToolInput struct {
	Command string `json:"command"`
}

// Response is the decision envelope written to stdout.
type Response struct {
	HookSpecificOutput Output `json:"hookSpecificOutput"`
}

// Output is the PreToolUse decision payload.
type Output struct {
	HookEventName            string   `json:"hookEventName"`
	PermissionDecision       Decision `json:"permissionDecision"`
	PermissionDecisionReason string   `json:"permissionDecisionReason"`
}

func respond(decision Decision, reason string) Response {
	return Response{
		HookSpecificOutput: Output{
			HookEventName:            "PreToolUse",
			PermissionDecision:       decision,
			PermissionDecisionReason: reason,
		},
	}
}

// Decide maps a verdict onto a gate decision. Unknown commands deny
// with a handoff reason so the calling agent can route the command to
// its review workflow; AlwaysAsk commands ask; everything else allows.
func Decide(v *verify.Verdict) Response {
	if len(v.Unknown) > 0 {
		reason := fmt.Sprintf(
			"Unknown command(s): %s. Spawn the command-verifier subagent with the original command %q so it can research each unknown command, present the analysis to the user, and ask whether to add it to the registry and whether to allow or deny execution.",
			strings.Join(v.Unknown, ", "), v.Original)
		return respond(DecisionDeny, reason)
	}
	if len(v.NeedsPermission) > 0 {
		reason := fmt.Sprintf("Permission required for: %s", strings.Join(v.NeedsPermission, ", "))
		return respond(DecisionAsk, reason)
	}
	return respond(DecisionAllow, "All commands verified and approved for execution")
}

// Observer is called with the verdict and decision of a completed
// verification, before the response is written. Used to record the
// decision in the audit log and history.
type Observer func(v *verify.Verdict, resp Response)

// Run executes one hook invocation: decode the event, verify, explain,
// decide. Returns the process exit code. Malformed input fails closed:
// a deny decision is still written to stdout and the exit code is 1.
func Run(stdin io.Reader, stdout, stderr io.Writer, reg *registry.Registry) int {
	return RunWithObserver(stdin, stdout, stderr, reg, nil)
}

// RunWithObserver is Run with a decision observer. Empty commands and
// malformed input are not observed: there is no verdict to record.
func RunWithObserver(stdin io.Reader, stdout, stderr io.Writer, reg *registry.Registry, observe Observer) int {
	var req Request
	if err := json.NewDecoder(stdin).Decode(&req); err != nil {
		fmt.Fprintf(stderr, "Error: invalid hook input: %v\n", err)
		writeResponse(stdout, respond(DecisionDeny, fmt.Sprintf("Hook error: invalid JSON input: %v", err)))
		return 1
	}

	command := req.ToolInput.Command
	if command == "" {
		writeResponse(stdout, respond(DecisionAllow, "No command to verify"))
		return 0
	}

	v := verify.Evaluate(command, reg)
	explain(stderr, v)
	resp := Decide(v)
	if observe != nil {
		observe(v, resp)
	}
	writeResponse(stdout, resp)
	return 0
}

func writeResponse(w io.Writer, resp Response) {
	data, err := json.Marshal(resp)
	if err != nil {
		// Response is plain structs over strings; this cannot fail.
		fmt.Fprintln(w, `{"hookSpecificOutput":{"hookEventName":"PreToolUse","permissionDecision":"deny","permissionDecisionReason":"Hook error: encode response"}}`)
		return
	}
	fmt.Fprintln(w, string(data))
}

const banner = "════════════════════════════════════════════════════════"
const rule = "────────────────────────────────────────────────────────"

// explain writes the human-facing analysis. The calling agent surfaces
// this stream to the user alongside the decision.
func explain(w io.Writer, v *verify.Verdict) {
	fmt.Fprintln(w)
	fmt.Fprintln(w, banner)
	fmt.Fprintln(w, "COMMAND VERIFICATION")
	fmt.Fprintln(w, banner)
	fmt.Fprintf(w, "Command: %s\n", v.Original)
	fmt.Fprintf(w, "Analyzing %d command(s)...\n\n", len(v.Commands))

	for _, cmd := range v.Commands {
		fmt.Fprintln(w, rule)
		explainCommand(w, cmd)
		fmt.Fprintln(w)
	}

	switch {
	case len(v.Unknown) > 0:
		fmt.Fprintln(w, banner)
		fmt.Fprintln(w, "⚠️  UNKNOWN COMMANDS DETECTED")
		fmt.Fprintln(w, banner)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "The following commands are not in the registry:")
		for _, name := range v.Unknown {
			fmt.Fprintf(w, "  • %s\n", name)
		}
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Spawning command-verifier subagent to review and handle...")
		fmt.Fprintln(w)

	case len(v.NeedsPermission) > 0:
		fmt.Fprintln(w, banner)
		fmt.Fprintf(w, "%s PERMISSION REQUIRED\n", report.Indicator(v.HighestRisk))
		fmt.Fprintln(w, banner)
		fmt.Fprintln(w)
		fmt.Fprintln(w, "The following commands require explicit approval:")
		for _, cmd := range v.Commands {
			if cmd.Entry == nil || cmd.Entry.Permission != registry.AlwaysAsk {
				continue
			}
			description := cmd.Entry.Description
			if description == "" {
				description = "No description"
			}
			reason := cmd.Entry.Risk.Reason
			if reason == "" {
				reason = "N/A"
			}
			fmt.Fprintf(w, "  • %s: %s\n", cmd.MatchedKey, description)
			fmt.Fprintf(w, "    Risk: %s - %s\n", strings.ToUpper(string(cmd.Entry.Risk.Level)), reason)
		}
		fmt.Fprintln(w)

	default:
		fmt.Fprintln(w, banner)
		fmt.Fprintf(w, "%s APPROVED - Auto-executing (AlwaysAllow)\n", report.Indicator(v.HighestRisk))
		fmt.Fprintln(w, banner)
		fmt.Fprintln(w)
	}
}

func explainCommand(w io.Writer, cmd verify.CommandResult) {
	fmt.Fprintf(w, "  Command: %s\n", cmd.Identity.Base)
	fmt.Fprintf(w, "  Full:    %s\n", cmd.FullCommand)
	if cmd.Entry == nil {
		fmt.Fprintln(w, "  Status:  ⚠️  UNKNOWN - Not in registry")
		return
	}
	description := cmd.Entry.Description
	if description == "" {
		description = "No description"
	}
	reason := cmd.Entry.Risk.Reason
	if reason == "" {
		reason = "No reason provided"
	}
	fmt.Fprintf(w, "  Description: %s\n", description)
	fmt.Fprintf(w, "  Risk: %s %s - %s\n",
		report.Indicator(cmd.Entry.Risk.Level), strings.ToUpper(string(cmd.Entry.Risk.Level)), reason)
	fmt.Fprintf(w, "  Permission: %s\n", cmd.Entry.Permission)
}
