package wire

import (
	"testing"
)

func TestIsTagKey(t *testing.T) {
	tests := []struct {
		key  string
		want bool
	}{
		{"$$Set", true},
		{"$$id", true},
		{"$$", false},
		{"$", false},
		{"~$$Set", false},
		{"name", false},
	}
	for _, tt := range tests {
		if got := IsTagKey(tt.key); got != tt.want {
			t.Errorf("IsTagKey(%q) = %v, want %v", tt.key, got, tt.want)
		}
	}
}

func TestParseTag(t *testing.T) {
	tests := []struct {
		name    string
		in      map[string]any
		ok      bool
		tagName string
		id      int
	}{
		{"plain tag", map[string]any{"$$Set": []any{1.0}}, true, "Set", -1},
		{"tag with id", map[string]any{"$$Map": []any{}, "$$id": 3.0}, true, "Map", 3},
		{"ref", map[string]any{"$$ref": 1.0}, true, "ref", -1},
		{"record", map[string]any{"a": 1.0}, false, "", 0},
		{"record with id", map[string]any{"a": 1.0, "$$id": 0.0}, false, "", 0},
		{"only id", map[string]any{"$$id": 0.0}, false, "", 0},
		{"two tag keys", map[string]any{"$$A": 1.0, "$$B": 2.0}, false, "", 0},
		{"non-numeric id", map[string]any{"$$A": 1.0, "$$id": "x"}, false, "", 0},
		{"empty", map[string]any{}, false, "", 0},
		{"escaped key", map[string]any{"~$$Set": 1.0}, false, "", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tag, ok := ParseTag(tt.in)
			if ok != tt.ok {
				t.Fatalf("ParseTag ok = %v, want %v", ok, tt.ok)
			}
			if !ok {
				return
			}
			if tag.Name != tt.tagName {
				t.Errorf("Name = %q, want %q", tag.Name, tt.tagName)
			}
			if tag.ID != tt.id {
				t.Errorf("ID = %d, want %d", tag.ID, tt.id)
			}
		})
	}
}

func TestRecordID(t *testing.T) {
	if id := RecordID(map[string]any{"$$id": 2.0, "a": 1}); id != 2 {
		t.Errorf("RecordID = %d, want 2", id)
	}
	if id := RecordID(map[string]any{"a": 1}); id != -1 {
		t.Errorf("RecordID = %d, want -1", id)
	}
}

func TestArrayID(t *testing.T) {
	if ArrayIDMarker(12) != "$$id:12" {
		t.Errorf("ArrayIDMarker = %q", ArrayIDMarker(12))
	}

	id, ok := ArrayID("$$id:12")
	if !ok || id != 12 {
		t.Errorf("ArrayID = %d,%v, want 12,true", id, ok)
	}

	for _, s := range []string{"~$$id:1", "$$id:", "$$id:x", "id:1"} {
		if _, ok := ArrayID(s); ok {
			t.Errorf("ArrayID(%q) should not match", s)
		}
	}
}

func TestEscapers(t *testing.T) {
	for _, s := range []string{UndefinedString, NaNString, NegativeZeroString, InfinityString, NegativeInfinityString, EmptyString} {
		escaped := Strings.Escape(s)
		if escaped != "~"+s {
			t.Errorf("Strings.Escape(%q) = %q", s, escaped)
		}
		if Strings.Unescape(escaped) != s {
			t.Errorf("round trip of %q failed", s)
		}
	}

	if RecordKeys.Escape("json") != "~json" {
		t.Error("json key should be escaped")
	}
	if RecordKeys.Escape("$$Set") != "~$$Set" {
		t.Error("tag-like key should be escaped")
	}
	if RecordKeys.Escape("meta") != "meta" {
		t.Error("ordinary key should be unchanged")
	}
}

func TestID(t *testing.T) {
	tests := []struct {
		in   any
		want int
		ok   bool
	}{
		{3.0, 3, true},
		{3.5, 0, false},
		{-1.0, 0, false},
		{int64(4), 4, true},
		{uint64(5), 5, true},
		{7, 7, true},
		{"1", 0, false},
		{nil, 0, false},
	}
	for _, tt := range tests {
		got, ok := ID(tt.in)
		if ok != tt.ok || (ok && got != tt.want) {
			t.Errorf("ID(%v) = %d,%v, want %d,%v", tt.in, got, ok, tt.want, tt.ok)
		}
	}
}
