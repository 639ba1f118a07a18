// Package escape implements the reversible "~" escaping used to keep
// user strings apart from reserved wire syntax.
//
// An Escaper is built from a hazard pattern. A string is escapable when it
// is the hazard preceded by zero or more markers, and escaped when it has
// at least one marker. Escape adds exactly one marker to an escapable
// string, Unescape removes exactly one from an escaped string, so any
// number of escape rounds can be undone one at a time.
package escape

import (
	"regexp"
	"strings"
)

// Marker is the escape prefix.
const Marker = '~'

// Escaper escapes and unescapes strings against one hazard pattern. It is
// safe for concurrent use.
type Escaper struct {
	pattern        *regexp.Regexp
	maybeEscaped   *regexp.Regexp
	alreadyEscaped *regexp.Regexp
}

// New compiles an Escaper. The leading "^" of each top-level alternative
// in pattern is dropped so the marker prefix can be matched in front of
// every alternative; the derived checks are always anchored to the whole
// string. New panics if pattern does not compile.
func New(pattern string) *Escaper {
	source := "(?:" + stripAnchors(pattern) + ")"

	return &Escaper{
		pattern:        regexp.MustCompile("^" + source + "$"),
		maybeEscaped:   regexp.MustCompile(`^~*` + source + "$"),
		alreadyEscaped: regexp.MustCompile(`^~+` + source + "$"),
	}
}

// IsMatching reports whether s is the bare hazard.
func (e *Escaper) IsMatching(s string) bool {
	return e.pattern.MatchString(s)
}

// IsMaybeEscaped reports whether s is the hazard with zero or more markers.
func (e *Escaper) IsMaybeEscaped(s string) bool {
	return e.maybeEscaped.MatchString(s)
}

// IsAlreadyEscaped reports whether s is the hazard with at least one marker.
func (e *Escaper) IsAlreadyEscaped(s string) bool {
	return e.alreadyEscaped.MatchString(s)
}

// Escape adds one marker to s when s is the hazard with any number of
// markers and returns every other string unchanged.
func (e *Escaper) Escape(s string) string {
	if !e.IsMaybeEscaped(s) {
		return s
	}
	return string(Marker) + s
}

// Unescape removes one marker from s when s is an escaped hazard and
// returns every other string unchanged.
func (e *Escaper) Unescape(s string) string {
	if !e.IsAlreadyEscaped(s) {
		return s
	}
	return s[1:]
}

// stripAnchors removes "^" at the start of each top-level alternative.
// Escaped carets and carets inside groups or character classes are kept.
func stripAnchors(pattern string) string {
	var b strings.Builder
	b.Grow(len(pattern))

	depth, inClass, start := 0, false, true
	for i := 0; i < len(pattern); i++ {
		c := pattern[i]
		switch {
		case c == '\\' && i+1 < len(pattern):
			b.WriteByte(c)
			i++
		case inClass:
			if c == ']' {
				inClass = false
			}
		case c == '[':
			inClass = true
			b.WriteByte(c)
			if i+1 < len(pattern) && pattern[i+1] == '^' {
				i++
				b.WriteByte('^')
			}
			// A "]" first in a class is a literal.
			if i+1 < len(pattern) && pattern[i+1] == ']' {
				i++
				b.WriteByte(']')
			}
			start = false
			continue
		case c == '(':
			depth++
		case c == ')':
			depth--
		case c == '|' && depth == 0:
			b.WriteByte(c)
			start = true
			continue
		case c == '^' && depth == 0 && start:
			continue
		}
		b.WriteByte(pattern[i])
		start = false
	}
	return b.String()
}
