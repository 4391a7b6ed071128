package mcp

import (
	"context"
	"errors"
	"fmt"
	"strings"

	mcpsdk "github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/ppiankov/cmdwatch/internal/audit"
	"github.com/ppiankov/cmdwatch/internal/hook"
	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/verify"
)

// --- Input/Output types ---

// VerifyInput defines parameters for the cmdwatch_verify tool.
type VerifyInput struct {
	Command string `json:"command" jsonschema:"shell command line to verify"`
}

// VerifyOutput is the full verification verdict.
type VerifyOutput struct {
	Verdict *verify.Verdict `json:"verdict"`
}

// DecideInput defines parameters for the cmdwatch_decide tool.
type DecideInput struct {
	Command string `json:"command" jsonschema:"shell command line to gate"`
}

// DecideOutput carries the gate decision and its supporting detail.
type DecideOutput struct {
	Decision        string   `json:"decision"`
	Reason          string   `json:"reason"`
	HighestRisk     string   `json:"highest_risk"`
	Unknown         []string `json:"unknown,omitempty"`
	NeedsPermission []string `json:"needs_permission,omitempty"`
}

// AddInput defines parameters for the cmdwatch_add tool.
type AddInput struct {
	Name        string `json:"name" jsonschema:"command name or 'name subcommand' registry key"`
	Description string `json:"description,omitempty" jsonschema:"what the command does"`
	Permission  string `json:"permission" jsonschema:"AlwaysAllow or AlwaysAsk"`
	RiskLevel   string `json:"risk_level" jsonschema:"low, medium, high, or critical"`
	RiskReason  string `json:"risk_reason,omitempty" jsonschema:"why this risk level"`
}

// AddOutput confirms the registered entry.
type AddOutput struct {
	Name       string `json:"name"`
	Permission string `json:"permission"`
	RiskLevel  string `json:"risk_level"`
	Status     string `json:"status"`
}

// --- Handlers ---

func (s *Server) handleVerify(ctx context.Context, req *mcpsdk.CallToolRequest, input VerifyInput) (*mcpsdk.CallToolResult, VerifyOutput, error) {
	if strings.TrimSpace(input.Command) == "" {
		return nil, VerifyOutput{}, fmt.Errorf("command is required")
	}

	v := verify.Evaluate(input.Command, s.cache.Snapshot())
	return nil, VerifyOutput{Verdict: v}, nil
}

func (s *Server) handleDecide(ctx context.Context, req *mcpsdk.CallToolRequest, input DecideInput) (*mcpsdk.CallToolResult, DecideOutput, error) {
	if strings.TrimSpace(input.Command) == "" {
		return nil, DecideOutput{}, fmt.Errorf("command is required")
	}

	v := verify.Evaluate(input.Command, s.cache.Snapshot())
	resp := hook.Decide(v)
	decision := string(resp.HookSpecificOutput.PermissionDecision)
	reason := resp.HookSpecificOutput.PermissionDecisionReason

	if s.auditLog != nil {
		s.auditLog.Record(audit.Entry{
			Source:          "mcp",
			Command:         v.Original,
			Decision:        decision,
			Reason:          reason,
			HighestRisk:     string(v.HighestRisk),
			Unknown:         v.Unknown,
			NeedsPermission: v.NeedsPermission,
		})
	}
	if s.store != nil {
		s.store.Record(ctx, "mcp", v, decision)
	}

	return nil, DecideOutput{
		Decision:        decision,
		Reason:          reason,
		HighestRisk:     string(v.HighestRisk),
		Unknown:         v.Unknown,
		NeedsPermission: v.NeedsPermission,
	}, nil
}

func (s *Server) handleAdd(ctx context.Context, req *mcpsdk.CallToolRequest, input AddInput) (*mcpsdk.CallToolResult, AddOutput, error) {
	entry, err := registry.Add(s.registryPath, registry.AddParams{
		Name:        input.Name,
		Description: input.Description,
		Permission:  input.Permission,
		RiskLevel:   input.RiskLevel,
		RiskReason:  input.RiskReason,
	})
	if err != nil {
		var dup *registry.DuplicateError
		if errors.As(err, &dup) {
			out := AddOutput{
				Name:       dup.Name,
				Permission: string(dup.Existing.Permission),
				RiskLevel:  string(dup.Existing.Risk.Level),
				Status:     "already exists",
			}
			return &mcpsdk.CallToolResult{IsError: true}, out, nil
		}
		return nil, AddOutput{}, err
	}

	// Refresh immediately; the file watcher would catch it anyway
	// after the debounce.
	s.cache.Reload()

	return nil, AddOutput{
		Name:       entry.Name,
		Permission: string(entry.Permission),
		RiskLevel:  string(entry.Risk.Level),
		Status:     "added",
	}, nil
}
