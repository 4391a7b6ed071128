// Package verify resolves command identities against the registry and
// folds per-command resolutions into a single verdict for a command line.
package verify

import (
	"github.com/ppiankov/cmdwatch/internal/registry"
)

// Resolve probes candidate keys most-specific-first and returns the
// matched key and its entry, or ("", nil) when nothing matches.
//
// A bare base name must not catch-all when the registry distinguishes
// subcommands for that base and the input has more than one token:
// a lone "git" entry would otherwise silently approve "git push --force"
// even though a dedicated, possibly stricter, "git push" entry exists.
// Single-token commands ("python") still match their bare-name entry.
func Resolve(candidates []string, tokens []string, reg *registry.Registry) (string, *registry.Entry) {
	base := ""
	if len(tokens) > 0 {
		base = tokens[0]
	}
	hasSubcommands := reg.HasSubcommandEntries(base)

	for _, candidate := range candidates {
		if hasSubcommands && len(tokens) > 1 && !containsSpace(candidate) {
			continue
		}
		if entry, ok := reg.Lookup(candidate); ok {
			return candidate, &entry
		}
	}
	return "", nil
}

func containsSpace(s string) bool {
	for i := 0; i < len(s); i++ {
		if s[i] == ' ' {
			return true
		}
	}
	return false
}
