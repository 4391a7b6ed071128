// Package shellsplit decomposes raw shell command lines. Split breaks a
// line into individual commands at top-level separators; Words tokenizes a
// single command into shell words. Neither implements the full POSIX
// grammar — subshell pipelines, here-docs, and globbing are out of scope.
package shellsplit

import "strings"

// Split breaks a command line into individual commands at the top-level
// separators &&, ||, ; and single | while respecting quotes and backslash
// escapes. Quote characters and escape markers are preserved verbatim in
// the emitted command text; interpretation happens later in Words.
//
// An unterminated quote is not an error — the open state simply runs to the
// end of the line. Empty and separator-only input yield an empty slice.
func Split(line string) []string {
	var commands []string
	var current strings.Builder

	inSingle := false
	inDouble := false
	escaped := false

	flush := func() {
		cmd := strings.TrimSpace(current.String())
		if cmd != "" {
			commands = append(commands, cmd)
		}
		current.Reset()
	}

	for i := 0; i < len(line); i++ {
		c := line[i]

		if escaped {
			current.WriteByte(c)
			escaped = false
			continue
		}

		if c == '\\' && !inSingle {
			escaped = true
			current.WriteByte(c)
			continue
		}

		if c == '\'' && !inDouble {
			inSingle = !inSingle
			current.WriteByte(c)
			continue
		}

		if c == '"' && !inSingle {
			inDouble = !inDouble
			current.WriteByte(c)
			continue
		}

		if !inSingle && !inDouble {
			if strings.HasPrefix(line[i:], "&&") || strings.HasPrefix(line[i:], "||") {
				flush()
				i++ // consumed two characters
				continue
			}
			if c == ';' {
				flush()
				continue
			}
			// Single pipe, but not the first half of ||.
			if c == '|' && (i+1 >= len(line) || line[i+1] != '|') {
				flush()
				continue
			}
		}

		current.WriteByte(c)
	}

	flush()
	return commands
}
