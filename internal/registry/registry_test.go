package registry

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileIsEmpty(t *testing.T) {
	reg := Load(filepath.Join(t.TempDir(), "nope.json"))

	if len(reg.Commands) != 0 {
		t.Errorf("expected empty registry, got %d commands", len(reg.Commands))
	}
	if reg.Commands == nil {
		t.Error("Commands map must be non-nil")
	}
}

func TestLoadCorruptFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatal(err)
	}

	reg := Load(path)
	if len(reg.Commands) != 0 {
		t.Errorf("corrupt file should load as empty, got %d commands", len(reg.Commands))
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "registry.json")

	reg := Empty()
	reg.Commands["git push"] = Entry{
		Name:        "git push",
		Description: "Upload commits",
		Permission:  AlwaysAsk,
		Risk:        Risk{Level: RiskMedium, Color: "yellow", Reason: "publishes changes"},
	}
	if err := Save(reg, path); err != nil {
		t.Fatalf("Save: %v", err)
	}

	got := Load(path)
	entry, ok := got.Lookup("git push")
	if !ok {
		t.Fatal("entry lost in round trip")
	}
	if entry.Permission != AlwaysAsk || entry.Risk.Level != RiskMedium {
		t.Errorf("entry = %+v", entry)
	}
	if got.Version != "1.0.0" {
		t.Errorf("version = %q", got.Version)
	}
}

func TestSaveLeavesNoTempFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "registry.json")
	if err := Save(Empty(), path); err != nil {
		t.Fatal(err)
	}

	entries, err := os.ReadDir(dir)
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 || entries[0].Name() != "registry.json" {
		names := make([]string, len(entries))
		for i, e := range entries {
			names[i] = e.Name()
		}
		t.Errorf("directory contains %v, want only registry.json", names)
	}
}

func TestHasSubcommandEntries(t *testing.T) {
	reg := Empty()
	reg.Commands["git push"] = Entry{Name: "git push"}
	reg.Commands["npm"] = Entry{Name: "npm"}

	if !reg.HasSubcommandEntries("git") {
		t.Error("git has a subcommand entry")
	}
	if reg.HasSubcommandEntries("npm") {
		t.Error("npm has no subcommand entries")
	}
	if reg.HasSubcommandEntries("gi") {
		t.Error("prefix must match a whole word, not a fragment")
	}
	if reg.HasSubcommandEntries("") {
		t.Error("empty base never has subcommand entries")
	}
}

func TestParsePermission(t *testing.T) {
	if _, err := ParsePermission("AlwaysAllow"); err != nil {
		t.Errorf("AlwaysAllow rejected: %v", err)
	}
	if _, err := ParsePermission("sometimes"); err == nil {
		t.Error("invalid permission accepted")
	}
}

func TestParseRiskLevel(t *testing.T) {
	for _, s := range []string{"low", "medium", "high", "critical"} {
		if _, err := ParseRiskLevel(s); err != nil {
			t.Errorf("%s rejected: %v", s, err)
		}
	}
	if _, err := ParseRiskLevel("extreme"); err == nil {
		t.Error("invalid risk level accepted")
	}
}

func TestRiskLevelMax(t *testing.T) {
	if RiskLow.Max(RiskCritical) != RiskCritical {
		t.Error("critical must dominate low")
	}
	if RiskHigh.Max(RiskMedium) != RiskHigh {
		t.Error("high must dominate medium")
	}
	if RiskLow.Max(RiskLow) != RiskLow {
		t.Error("equal levels stay put")
	}
}

func TestRiskLevelColor(t *testing.T) {
	tests := []struct {
		level RiskLevel
		color string
	}{
		{RiskLow, "green"},
		{RiskMedium, "yellow"},
		{RiskHigh, "red"},
		{RiskCritical, "red"},
	}
	for _, tt := range tests {
		if got := tt.level.Color(); got != tt.color {
			t.Errorf("%s color = %q, want %q", tt.level, got, tt.color)
		}
	}
}
