// Package scope reads and writes the brace-delimited token lists of the
// game's script format, e.g. `provinces = { 1 2 3 }`.
package scope

import (
	"errors"
	"fmt"
	"strings"
)

var (
	ErrLabelNotFound     = errors.New("scope label not found")
	ErrOpenBraceNotFound = errors.New("no opening brace after label")
	ErrUnterminated      = errors.New("scope block is not terminated")
)

// Tokens returns the whitespace-separated tokens inside the first { } block
// that follows the first occurrence of label in text. `#` comments run to the
// end of their line and are dropped. An empty block yields an empty slice.
func Tokens(text, label string) ([]string, error) {
	start := strings.Index(text, label)
	if start < 0 {
		return nil, fmt.Errorf("%q: %w", label, ErrLabelNotFound)
	}
	rest := text[start+len(label):]

	open := strings.IndexByte(rest, '{')
	if open < 0 {
		return nil, fmt.Errorf("%q: %w", label, ErrOpenBraceNotFound)
	}

	var body strings.Builder
	inComment := false
	for i := open + 1; i < len(rest); i++ {
		c := rest[i]
		switch {
		case inComment:
			if c == '\n' {
				inComment = false
				body.WriteByte(' ')
			}
		case c == '#':
			inComment = true
		case c == '}':
			return strings.Fields(body.String()), nil
		default:
			body.WriteByte(c)
		}
	}
	return nil, fmt.Errorf("%q: %w", label, ErrUnterminated)
}

// Format writes tokens back as a scope block: `label = { a b c }`
func Format(label string, tokens []string) string {
	return label + " = { " + strings.Join(tokens, " ") + " }"
}
