package codablejson

import (
	"testing"

	"github.com/wippyai/codablejson/errors"
)

func TestPath_AppendDoesNotAlias(t *testing.T) {
	base := make(Path, 1, 8)
	base[0] = "a"
	x := base.Append("x")
	y := base.Append("y")
	if x[1] != "x" || y[1] != "y" {
		t.Errorf("appended paths share storage: %v %v", x, y)
	}
	if got := x.String(); got != "/a/x" {
		t.Errorf("String = %q, want /a/x", got)
	}
}

func TestSegments(t *testing.T) {
	segs := NewSegments(Path{"$$Map", "1", "0", "$$Set", "2"})
	var got []string
	for {
		seg, ok := segs.Next()
		if !ok {
			break
		}
		got = append(got, seg)
	}
	if len(got) != 3 || got[0] != "1" || got[2] != "2" {
		t.Errorf("segments = %v, want [1 0 2]", got)
	}
	if !segs.Done() {
		t.Error("Done = false at end")
	}

	segs = NewSegments(Path{"a", "$$Set"})
	segs.Next()
	if !segs.Done() {
		t.Error("trailing tag key should not count as a segment")
	}
}

func TestSegments_Index(t *testing.T) {
	tests := []struct {
		path Path
		name string
		kind errors.Kind
	}{
		{Path{"5"}, "out of range", errors.KindOutOfBounds},
		{Path{"-1"}, "negative", errors.KindOutOfBounds},
		{Path{"x"}, "not a number", errors.KindInvalidData},
		{Path{}, "exhausted", errors.KindInvalidData},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewSegments(tt.path).Index(3)
			if !isKind(err, tt.kind) {
				t.Errorf("err = %v, want %s", err, tt.kind)
			}
		})
	}
}

func TestDefaultReader(t *testing.T) {
	arr := []any{"a", "b"}
	acc, err := DefaultReader(arr, NewSegments(Path{"1"}))
	if err != nil {
		t.Fatal(err)
	}
	if acc.Get() != "b" {
		t.Errorf("Get = %v, want b", acc.Get())
	}
	_ = acc.Set("c")
	if arr[1] != "c" {
		t.Errorf("Set did not write through: %v", arr)
	}

	rec := map[string]any{}
	acc, err = DefaultReader(rec, NewSegments(Path{"~$$key"}))
	if err != nil {
		t.Fatal(err)
	}
	_ = acc.Set(1)
	if rec["$$key"] != 1 {
		t.Errorf("record key not unescaped: %v", rec)
	}

	if _, err := DefaultReader(42, NewSegments(Path{"0"})); !isKind(err, errors.KindUnsupported) {
		t.Errorf("err = %v, want unsupported", err)
	}
}

func TestBuiltinReaders(t *testing.T) {
	m := NewMap(MapEntry{Key: "k", Value: "v"})
	acc, err := readMap(m, NewSegments(Path{"$$Map", "0", "1"}))
	if err != nil {
		t.Fatal(err)
	}
	_ = acc.Set("patched")
	if v, _ := m.Get("k"); v != "patched" {
		t.Errorf("map value = %v", v)
	}

	acc, err = readMap(m, NewSegments(Path{"0", "0"}))
	if err != nil {
		t.Fatal(err)
	}
	_ = acc.Set("k2")
	if !m.Has("k2") || m.Has("k") {
		t.Error("map key not replaced")
	}

	if _, err := readMap(m, NewSegments(Path{"0", "2"})); !isKind(err, errors.KindOutOfBounds) {
		t.Errorf("entry part 2: err = %v", err)
	}

	s := NewSet("a", "b")
	acc, err = readSet(s, NewSegments(Path{"1"}))
	if err != nil {
		t.Fatal(err)
	}
	_ = acc.Set("z")
	if !s.Has("z") || s.Has("b") {
		t.Errorf("set member not replaced: %v", s.Values())
	}

	e := &Error{}
	acc, err = readError(e, NewSegments(Path{"properties", "code"}))
	if err != nil {
		t.Fatal(err)
	}
	_ = acc.Set(7)
	if e.Properties["code"] != 7 {
		t.Errorf("properties = %v", e.Properties)
	}
	if _, err := readError(e, NewSegments(Path{"message"})); !isKind(err, errors.KindInvalidData) {
		t.Errorf("message: err = %v", err)
	}
}
