package verify

import (
	"github.com/ppiankov/cmdwatch/internal/identity"
	"github.com/ppiankov/cmdwatch/internal/registry"
	"github.com/ppiankov/cmdwatch/internal/shellsplit"
)

// CommandResult is the resolution of one command within a line.
type CommandResult struct {
	Identity    identity.Identity `json:"identity"`
	FullCommand string            `json:"full_command"`
	Known       bool              `json:"known"`
	MatchedKey  string            `json:"matched_key,omitempty"`
	Entry       *registry.Entry   `json:"entry,omitempty"`
}

// Verdict is the aggregate decision for a whole command line.
type Verdict struct {
	Original       string             `json:"original_command"`
	AllKnown       bool               `json:"all_known"`
	CanAutoExecute bool               `json:"can_auto_execute"`
	HighestRisk    registry.RiskLevel `json:"highest_risk"`
	Commands       []CommandResult    `json:"commands"`
	// Unknown lists base names of commands absent from the registry.
	Unknown []string `json:"unknown_commands"`
	// NeedsPermission lists matched keys (base name when the match
	// carries no key) of AlwaysAsk commands.
	NeedsPermission []string `json:"needs_permission"`
}

// Evaluate splits a command line, resolves each command against the
// registry snapshot, and aggregates the verdict. Pure with respect to
// its inputs: identical line and registry yield an identical verdict.
func Evaluate(line string, reg *registry.Registry) *Verdict {
	v := &Verdict{
		Original:        line,
		AllKnown:        true,
		CanAutoExecute:  true,
		HighestRisk:     registry.RiskLow,
		Commands:        []CommandResult{},
		Unknown:         []string{},
		NeedsPermission: []string{},
	}

	for _, cmd := range shellsplit.Split(line) {
		id := identity.Identify(cmd)
		key, entry := Resolve(id.Candidates, id.Tokens, reg)

		result := CommandResult{
			Identity:    id,
			FullCommand: cmd,
			Known:       entry != nil,
			MatchedKey:  key,
			Entry:       entry,
		}
		v.Commands = append(v.Commands, result)

		if entry == nil {
			v.AllKnown = false
			v.CanAutoExecute = false
			v.Unknown = append(v.Unknown, id.Base)
			continue
		}

		if entry.Permission == registry.AlwaysAsk {
			v.CanAutoExecute = false
			if key != "" {
				v.NeedsPermission = append(v.NeedsPermission, key)
			} else {
				v.NeedsPermission = append(v.NeedsPermission, id.Base)
			}
		}

		// Only a matched entry's declared risk raises the aggregate;
		// unknown commands are surfaced through Unknown instead.
		v.HighestRisk = v.HighestRisk.Max(entry.Risk.Level)
	}

	return v
}
