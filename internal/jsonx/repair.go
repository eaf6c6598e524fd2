// Package jsonx recovers structured data from model output that is only
// JSON-shaped: wrapped in prose or code fences, with trailing commas,
// single quotes, or stray control characters.
package jsonx

import (
	"regexp"
	"strings"
)

// Repair is a pure best-effort text fix. Repairs are tried in a fixed
// order, each applied on top of the previous, reparsing after every step.
type Repair func(string) string

// repairChain is the ordered list of repairs applied after a direct parse
// fails. Order matters: comma stripping before quote conversion keeps the
// quote pass from seeing commas inside re-quoted strings.
var repairChain = []Repair{
	StripTrailingCommas,
	SingleToDoubleQuotes,
	StripControlChars,
}

var trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

// StripTrailingCommas removes commas that directly precede a closing
// brace or bracket.
func StripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

// SingleToDoubleQuotes converts single-quoted string literals to
// double-quoted ones. Apostrophes inside double-quoted strings are left
// alone; escaped single quotes inside converted literals are unescaped.
func SingleToDoubleQuotes(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	inDouble := false
	inSingle := false
	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case inDouble:
			b.WriteByte(c)
			if c == '\\' && i+1 < len(s) {
				i++
				b.WriteByte(s[i])
			} else if c == '"' {
				inDouble = false
			}
		case inSingle:
			switch {
			case c == '\\' && i+1 < len(s) && s[i+1] == '\'':
				b.WriteByte('\'')
				i++
			case c == '\'':
				b.WriteByte('"')
				inSingle = false
			case c == '"':
				b.WriteString(`\"`)
			default:
				b.WriteByte(c)
			}
		case c == '"':
			inDouble = true
			b.WriteByte(c)
		case c == '\'':
			inSingle = true
			b.WriteByte('"')
		default:
			b.WriteByte(c)
		}
	}
	return b.String()
}

// StripControlChars removes control characters other than tab, newline
// and carriage return.
func StripControlChars(s string) string {
	return strings.Map(func(r rune) rune {
		if r < 0x20 && r != '\t' && r != '\n' && r != '\r' {
			return -1
		}
		if r == 0x7f {
			return -1
		}
		return r
	}, s)
}
