// Package identity extracts the canonical identity of a single shell
// command: its base command after environment-assignment and wrapper
// stripping, and the ordered registry lookup keys derived from it.
package identity

import (
	"regexp"
	"strings"

	"github.com/ppiankov/cmdwatch/internal/shellsplit"
)

// Kind classifies how a command was recognized.
type Kind string

const (
	// KindNormal is an ordinary command with a real base token.
	KindNormal Kind = "normal"
	// KindSubshell marks a `(...)` or `{...}` group; contents are opaque.
	KindSubshell Kind = "subshell"
	// KindSubstitution marks a `$(...)` or `$VAR` form; contents are opaque.
	KindSubstitution Kind = "substitution"
	// KindSudoBare is `sudo` with only flags and no trailing command.
	KindSudoBare Kind = "sudo-bare"
	// KindEmpty is a command that tokenized to nothing.
	KindEmpty Kind = "empty"
)

// Identity is the resolved identity of one shell command.
type Identity struct {
	Kind Kind `json:"kind"`
	// Base is the first meaningful token after stripping assignments
	// and wrappers, or a sentinel name for special forms.
	Base string `json:"base"`
	// Tokens is the wrapper-stripped token sequence, Base first.
	Tokens []string `json:"tokens"`
	// Flags holds the tokens after Base that begin with '-'.
	Flags []string `json:"flags,omitempty"`
	// Candidates are registry lookup keys, most specific first. The
	// first is the full joined token sequence, the last is Base alone.
	Candidates []string `json:"candidates"`
}

// envAssignment matches one leading NAME=value prefix including the
// mandatory trailing whitespace.
var envAssignment = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*=\S*\s+`)

// wrappers are commands whose own name is not the security-relevant
// identity; the command they run is. sudo is handled separately because
// some of its flags consume an argument.
var wrappers = map[string]bool{
	"time":  true,
	"nice":  true,
	"nohup": true,
	"env":   true,
	"xargs": true,
}

// sudoArgFlags are sudo flags that consume the following token.
var sudoArgFlags = map[string]bool{
	"-u": true,
	"-g": true,
	"-C": true,
	"-H": true,
	"-P": true,
}

// Identify extracts the Identity of a single command string.
func Identify(command string) Identity {
	command = stripAssignments(command)

	// Special forms short-circuit: the contents of a subshell or
	// substitution are not statically resolvable here.
	if strings.HasPrefix(command, "(") || strings.HasPrefix(command, "{") {
		return sentinel(KindSubshell, "subshell")
	}
	if strings.HasPrefix(command, "$") {
		return sentinel(KindSubstitution, "substitution")
	}

	tokens, err := shellsplit.Words(command)
	if err != nil {
		tokens = shellsplit.Fields(command)
	}
	if len(tokens) == 0 {
		return Identity{Kind: KindEmpty}
	}

	tokens = skipWrappers(tokens)
	if len(tokens) == 1 && tokens[0] == "sudo" {
		return sentinel(KindSudoBare, "sudo")
	}

	base := tokens[0]
	var flags []string
	for _, t := range tokens[1:] {
		if strings.HasPrefix(t, "-") {
			flags = append(flags, t)
		}
	}

	return Identity{
		Kind:       KindNormal,
		Base:       base,
		Tokens:     tokens,
		Flags:      flags,
		Candidates: buildCandidates(tokens),
	}
}

func sentinel(kind Kind, name string) Identity {
	return Identity{
		Kind:       kind,
		Base:       name,
		Tokens:     []string{name},
		Candidates: []string{name},
	}
}

// stripAssignments removes leading NAME=value environment assignments.
// Loops because commands may carry several: `A=1 B=2 cmd`.
func stripAssignments(command string) string {
	command = strings.TrimSpace(command)
	for {
		loc := envAssignment.FindStringIndex(command)
		if loc == nil {
			return command
		}
		command = command[loc[1]:]
	}
}

// skipWrappers advances past sudo/time/nice/nohup/env/xargs and their
// flags so the trailing command becomes the identity.
func skipWrappers(tokens []string) []string {
	if len(tokens) == 0 {
		return tokens
	}

	if tokens[0] == "sudo" {
		i := 1
		for i < len(tokens) {
			if !strings.HasPrefix(tokens[i], "-") {
				return tokens[i:]
			}
			if sudoArgFlags[tokens[i]] {
				i += 2
			} else {
				i++
			}
		}
		// sudo with nothing but flags behind it.
		return []string{"sudo"}
	}

	if wrappers[tokens[0]] && len(tokens) > 1 {
		i := 1
		for i < len(tokens) && strings.HasPrefix(tokens[i], "-") {
			i++
		}
		if i < len(tokens) {
			return tokens[i:]
		}
	}

	return tokens
}

// buildCandidates produces lookup keys from most to least specific:
// every prefix of the token sequence, then — when flags sit between the
// base and its subcommand (`git -C path status`) — every prefix of the
// flag-stripped subcommand sequence, deduplicated in first-seen order.
func buildCandidates(tokens []string) []string {
	candidates := make([]string, 0, len(tokens))
	for n := len(tokens); n >= 1; n-- {
		candidates = append(candidates, strings.Join(tokens[:n], " "))
	}

	sub := subcommandTokens(tokens)
	if equalTokens(sub, tokens) {
		return candidates
	}

	seen := make(map[string]bool, len(candidates))
	for _, c := range candidates {
		seen[c] = true
	}
	for n := len(sub); n >= 1; n-- {
		c := strings.Join(sub[:n], " ")
		if !seen[c] {
			candidates = append(candidates, c)
			seen[c] = true
		}
	}
	return candidates
}

// subcommandTokens returns base plus non-flag tokens. A two-character
// flag such as -C is assumed to take the next token as its argument, so
// that token is skipped too.
func subcommandTokens(tokens []string) []string {
	sub := []string{tokens[0]}
	i := 1
	for i < len(tokens) {
		t := tokens[i]
		if strings.HasPrefix(t, "-") {
			if len(t) == 2 && i+1 < len(tokens) {
				i += 2
			} else {
				i++
			}
			continue
		}
		sub = append(sub, t)
		i++
	}
	return sub
}

func equalTokens(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
