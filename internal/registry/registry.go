// Package registry persists the catalog of known commands: per-key
// description, permission, and risk classification. Keys may be multi-word
// ("git push --force"); resolution precedence over keys lives in the verify
// package.
package registry

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Permission gates unattended execution of a registered command.
type Permission string

const (
	// AlwaysAllow permits execution without asking.
	AlwaysAllow Permission = "AlwaysAllow"
	// AlwaysAsk requires explicit user approval every time.
	AlwaysAsk Permission = "AlwaysAsk"
)

// ParsePermission validates a permission string.
func ParsePermission(s string) (Permission, error) {
	switch Permission(s) {
	case AlwaysAllow, AlwaysAsk:
		return Permission(s), nil
	default:
		return "", fmt.Errorf("invalid permission %q: must be %q or %q", s, AlwaysAllow, AlwaysAsk)
	}
}

// RiskLevel is a four-point severity classification. It is used for
// reporting and prioritization only — gating is permission-driven.
type RiskLevel string

const (
	RiskLow      RiskLevel = "low"
	RiskMedium   RiskLevel = "medium"
	RiskHigh     RiskLevel = "high"
	RiskCritical RiskLevel = "critical"
)

// riskRank orders levels for highest-risk aggregation.
var riskRank = map[RiskLevel]int{
	RiskLow:      0,
	RiskMedium:   1,
	RiskHigh:     2,
	RiskCritical: 3,
}

// ParseRiskLevel validates a risk level string.
func ParseRiskLevel(s string) (RiskLevel, error) {
	if _, ok := riskRank[RiskLevel(s)]; !ok {
		return "", fmt.Errorf("invalid risk level %q: must be low, medium, high, or critical", s)
	}
	return RiskLevel(s), nil
}

// Rank maps the level to a comparable integer; unknown levels rank lowest.
func (r RiskLevel) Rank() int {
	return riskRank[r]
}

// Max returns the higher of two risk levels.
func (r RiskLevel) Max(other RiskLevel) RiskLevel {
	if other.Rank() > r.Rank() {
		return other
	}
	return r
}

// Color returns the terminal color hint stored alongside a level.
func (r RiskLevel) Color() string {
	switch r {
	case RiskLow:
		return "green"
	case RiskMedium:
		return "yellow"
	case RiskHigh, RiskCritical:
		return "red"
	default:
		return "yellow"
	}
}

// Risk is the risk block of a registry entry.
type Risk struct {
	Level  RiskLevel `json:"level"`
	Color  string    `json:"color"`
	Reason string    `json:"reason"`
}

// Entry describes one registered command key.
type Entry struct {
	Name        string     `json:"name"`
	Description string     `json:"description"`
	Permission  Permission `json:"permission"`
	Risk        Risk       `json:"risk"`
}

// Registry is the persisted catalog. Commands is keyed by the registry
// key, which may contain spaces for subcommand-level entries.
type Registry struct {
	Version     string           `json:"version"`
	Description string           `json:"description"`
	Commands    map[string]Entry `json:"commands"`
}

// Empty returns a registry with no known commands.
func Empty() *Registry {
	return &Registry{
		Version:     "1.0.0",
		Description: "Registry of known commands",
		Commands:    map[string]Entry{},
	}
}

// Lookup returns the entry for an exact key.
func (r *Registry) Lookup(key string) (Entry, bool) {
	e, ok := r.Commands[key]
	return e, ok
}

// HasSubcommandEntries reports whether any key is a subcommand entry of
// the given base, i.e. starts with "base ".
func (r *Registry) HasSubcommandEntries(base string) bool {
	if base == "" {
		return false
	}
	prefix := base + " "
	for k := range r.Commands {
		if len(k) > len(prefix) && k[:len(prefix)] == prefix {
			return true
		}
	}
	return false
}

// DefaultPath returns ~/.cmdwatch/registry.json, falling back to the
// working directory when the home directory is unknown.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "registry.json"
	}
	return filepath.Join(home, ".cmdwatch", "registry.json")
}

// Load reads a registry from a JSON file. A missing or malformed file
// yields an empty registry, never an error: "nothing is known" is the
// safe default and forces manual review instead of a silent allow.
func Load(path string) *Registry {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return Empty()
	}

	var r Registry
	if err := json.Unmarshal(data, &r); err != nil {
		return Empty()
	}
	if r.Commands == nil {
		r.Commands = map[string]Entry{}
	}
	return &r
}

// Save writes the registry via temp-file rename so a concurrent reader
// never observes a partial write.
func Save(r *Registry, path string) error {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create registry directory: %w", err)
	}

	data, err := json.MarshalIndent(r, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal registry: %w", err)
	}

	tmp := path + ".tmp"
	if err := os.WriteFile(tmp, data, 0644); err != nil {
		return fmt.Errorf("write registry: %w", err)
	}
	return os.Rename(tmp, path)
}
