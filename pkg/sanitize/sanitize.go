// Package sanitize cleans raw input text arriving from remote surfaces
// (HTTP, MCP) before it enters the workspace.
package sanitize

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
	"unicode/utf8"
)

// DefaultMaxSize is 1 MiB.
const DefaultMaxSize = 1 << 20

var (
	ErrTooLarge    = errors.New("input exceeds maximum allowed size")
	ErrInvalidUTF8 = errors.New("input contains invalid UTF-8 sequences")
)

// Policy bounds accepted input. The zero value uses DefaultMaxSize.
type Policy struct {
	MaxSize int
}

// Clean enforces the size limit, validates UTF-8 and strips control
// characters other than newline, tab and carriage return.
func (p Policy) Clean(input string) (string, error) {
	limit := p.MaxSize
	if limit <= 0 {
		limit = DefaultMaxSize
	}
	// Rejected, never truncated.
	if len(input) > limit {
		return "", fmt.Errorf("%w: size=%d limit=%d", ErrTooLarge, len(input), limit)
	}

	if !utf8.ValidString(input) {
		return "", ErrInvalidUTF8
	}

	// Fast path: if no control chars, return as is.
	if strings.IndexFunc(input, unsafeControl) < 0 {
		return input, nil
	}

	var b strings.Builder
	b.Grow(len(input))
	for _, r := range input {
		if !unsafeControl(r) {
			b.WriteRune(r)
		}
	}
	return b.String(), nil
}

// Input cleans input with the default policy.
func Input(input string) (string, error) {
	return Policy{}.Clean(input)
}

func unsafeControl(r rune) bool {
	return unicode.IsControl(r) && r != '\n' && r != '\t' && r != '\r'
}
