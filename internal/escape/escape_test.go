package escape

import (
	"strings"
	"testing"
)

func TestEscaper(t *testing.T) {
	e := New(`^\$\$.+$`)

	escapes := []struct {
		in, want string
	}{
		{"nope", "nope"},
		{"$$foo", "~$$foo"},
		{"~$$foo", "~~$$foo"},
		{"~~$$foo", "~~~$$foo"},
		{"$$", "$$"},
		{"~nope", "~nope"},
	}
	for _, tt := range escapes {
		if got := e.Escape(tt.in); got != tt.want {
			t.Errorf("Escape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}

	unescapes := []struct {
		in, want string
	}{
		{"~$$foo", "$$foo"},
		{"~~$$foo", "~$$foo"},
		{"~~~$$foo", "~~$$foo"},
		{"$$foo", "$$foo"},
		{"~nope", "~nope"},
	}
	for _, tt := range unescapes {
		if got := e.Unescape(tt.in); got != tt.want {
			t.Errorf("Unescape(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestEscaper_Detection(t *testing.T) {
	e := New(`^\$\$.+$`)

	tests := []struct {
		in                      string
		matching, maybe, escped bool
	}{
		{"nope", false, false, false},
		{"$$foo", true, true, false},
		{"~$$foo", false, true, true},
		{"~~$$foo", false, true, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			if got := e.IsMatching(tt.in); got != tt.matching {
				t.Errorf("IsMatching = %v, want %v", got, tt.matching)
			}
			if got := e.IsMaybeEscaped(tt.in); got != tt.maybe {
				t.Errorf("IsMaybeEscaped = %v, want %v", got, tt.maybe)
			}
			if got := e.IsAlreadyEscaped(tt.in); got != tt.escped {
				t.Errorf("IsAlreadyEscaped = %v, want %v", got, tt.escped)
			}
		})
	}
}

func TestEscaper_Alternatives(t *testing.T) {
	e := New(`^json$|^\$\$.+$`)

	if got := e.Escape("json"); got != "~json" {
		t.Errorf("Escape(json) = %q", got)
	}
	if got := e.Escape("~~json"); got != "~~~json" {
		t.Errorf("Escape(~~json) = %q", got)
	}
	if got := e.Escape("jsonx"); got != "jsonx" {
		t.Errorf("Escape(jsonx) = %q", got)
	}
	if got := e.Escape("$$id"); got != "~$$id" {
		t.Errorf("Escape($$id) = %q", got)
	}
}

func TestEscaper_RoundTripDepth(t *testing.T) {
	e := New(`^\$\$(?:NaN|undefined)$`)

	for _, base := range []string{"$$NaN", "$$undefined", "plain", "", "~", "$$nan"} {
		s := base
		var layers []string
		for depth := 0; depth < 6; depth++ {
			layers = append(layers, s)
			s = e.Escape(s)
		}
		for depth := len(layers) - 1; depth >= 0; depth-- {
			s = e.Unescape(s)
			if s != layers[depth] && e.IsMaybeEscaped(base) {
				t.Fatalf("depth %d: got %q, want %q", depth, s, layers[depth])
			}
		}
		if e.IsMaybeEscaped(base) {
			if want := strings.Repeat("~", 6) + base; e.Escape(layers[5]) != want {
				t.Errorf("marker count for %q: got %q, want %q", base, e.Escape(layers[5]), want)
			}
		}
	}
}

func TestEscaper_LiteralCarets(t *testing.T) {
	tests := []struct {
		pattern string
		in      string
		want    string
		name    string
	}{
		{`[^a]b`, "xb", "~xb", "negated class matches"},
		{`[^a]b`, "ab", "ab", "negated class rejects"},
		{`\^z`, "^z", "~^z", "escaped caret"},
		{`\^z`, "z", "z", "escaped caret is required"},
		{`^x|^\^y`, "^y", "~^y", "escaped caret after alternative"},
		{`^x|^\^y`, "x", "~x", "anchored alternative"},
		{`^(?:a|^b)$`, "a", "~a", "caret inside group kept"},
		{`[]^]q`, "^q", "~^q", "caret after literal bracket"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := New(tt.pattern)
			if got := e.Escape(tt.in); got != tt.want {
				t.Errorf("New(%q).Escape(%q) = %q, want %q", tt.pattern, tt.in, got, tt.want)
			}
			if got := e.Unescape(e.Escape(tt.in)); got != tt.in {
				t.Errorf("Unescape round trip = %q, want %q", got, tt.in)
			}
		})
	}
}

func TestStripAnchors(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{`^json$|^\$\$.+$`, `json$|\$\$.+$`},
		{`[^a]b`, `[^a]b`},
		{`\^z`, `\^z`},
		{`^^a`, `a`},
		{`(^a)|b`, `(^a)|b`},
		{`[]^]|^c`, `[]^]|c`},
	}
	for _, tt := range tests {
		if got := stripAnchors(tt.in); got != tt.want {
			t.Errorf("stripAnchors(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
