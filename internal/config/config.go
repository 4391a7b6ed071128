// Package config loads the cmdwatch configuration file.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds all configurable cmdwatch parameters.
type Config struct {
	// RegistryPath is the command registry JSON file.
	RegistryPath string `yaml:"registry_path"`
	// AuditLogPath is the hash-chained JSONL decision log.
	AuditLogPath string `yaml:"audit_log_path"`
	// HistoryDBPath is the SQLite verification history database.
	HistoryDBPath string `yaml:"history_db_path"`
	// Color controls ANSI colors in reports: "auto", "always", "never".
	Color string `yaml:"color"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		RegistryPath:  filepath.Join(baseDir(), "registry.json"),
		AuditLogPath:  filepath.Join(baseDir(), "audit.jsonl"),
		HistoryDBPath: filepath.Join(baseDir(), "history.db"),
		Color:         "auto",
	}
}

func baseDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		home = "."
	}
	return filepath.Join(home, ".cmdwatch")
}

// DefaultPath is where Load looks when no path is given.
func DefaultPath() string {
	return filepath.Join(baseDir(), "config.yaml")
}

// Load reads configuration from a YAML file. Empty path falls back to
// ~/.cmdwatch/config.yaml. Missing file returns defaults. Invalid YAML
// returns an error.
func Load(path string) (*Config, error) {
	if path == "" {
		path = DefaultPath()
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	// Start with defaults, YAML overwrites only specified fields.
	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	switch c.Color {
	case "auto", "always", "never":
		return nil
	default:
		return fmt.Errorf("invalid color mode %q (want auto, always, or never)", c.Color)
	}
}

// DefaultYAML returns a commented YAML string for cmdwatch init.
func DefaultYAML() string {
	return `# cmdwatch configuration
# Generated by: cmdwatch init
#
# All paths default to ~/.cmdwatch/ when omitted.

# Command registry: the JSON database of known commands.
#registry_path: ~/.cmdwatch/registry.json

# Hash-chained JSONL log of every gate decision.
#audit_log_path: ~/.cmdwatch/audit.jsonl

# SQLite database of verification history.
#history_db_path: ~/.cmdwatch/history.db

# ANSI colors in reports: auto | always | never
color: auto
`
}
