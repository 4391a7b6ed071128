package shellsplit

import (
	"errors"
	"strings"
	"unicode"
)

// ErrUnterminatedQuote is returned by Words when a quote is opened but
// never closed, or a trailing backslash has nothing to escape.
var ErrUnterminatedQuote = errors.New("unterminated quote")

// Words tokenizes a command string into shell words: whitespace separates
// tokens, quotes group and are removed, backslash escapes are resolved.
// Inside single quotes everything is literal. Inside double quotes a
// backslash escapes only `"` and `\` and is otherwise kept. An empty
// quoted string ('' or "") produces an empty token.
//
// Malformed quoting returns ErrUnterminatedQuote; callers fall back to
// Fields rather than failing the evaluation.
func Words(command string) ([]string, error) {
	var tokens []string
	var current strings.Builder

	// quoted marks that the pending token saw a quote pair, so an empty
	// builder still emits a token.
	quoted := false

	emit := func() {
		if current.Len() > 0 || quoted {
			tokens = append(tokens, current.String())
		}
		current.Reset()
		quoted = false
	}

	runes := []rune(command)
	for i := 0; i < len(runes); i++ {
		r := runes[i]

		switch {
		case unicode.IsSpace(r):
			emit()

		case r == '\\':
			if i+1 >= len(runes) {
				return nil, ErrUnterminatedQuote
			}
			i++
			current.WriteRune(runes[i])

		case r == '\'':
			quoted = true
			end := -1
			for j := i + 1; j < len(runes); j++ {
				if runes[j] == '\'' {
					end = j
					break
				}
			}
			if end < 0 {
				return nil, ErrUnterminatedQuote
			}
			current.WriteString(string(runes[i+1 : end]))
			i = end

		case r == '"':
			quoted = true
			j := i + 1
			closed := false
			for j < len(runes) {
				c := runes[j]
				if c == '\\' && j+1 < len(runes) && (runes[j+1] == '"' || runes[j+1] == '\\') {
					current.WriteRune(runes[j+1])
					j += 2
					continue
				}
				if c == '"' {
					closed = true
					break
				}
				current.WriteRune(c)
				j++
			}
			if !closed {
				return nil, ErrUnterminatedQuote
			}
			i = j

		default:
			current.WriteRune(r)
		}
	}

	emit()
	return tokens, nil
}

// Fields is the recovery tokenizer for malformed quoting: plain
// whitespace splitting, quotes left in place.
func Fields(command string) []string {
	return strings.Fields(command)
}
