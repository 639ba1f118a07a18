package codablejson

import (
	"math"
	"reflect"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"

	"github.com/wippyai/codablejson/errors"
)

func TestDecode_Scalars(t *testing.T) {
	tests := []struct {
		in   any
		want any
		name string
	}{
		{nil, nil, "nil"},
		{true, true, "bool"},
		{3.0, 3.0, "number"},
		{"plain", "plain", "string"},
		{"~$$NaN", "$$NaN", "escaped sentinel"},
		{"~~$$NaN", "~$$NaN", "double escaped"},
		{"$$Infinity", math.Inf(1), "infinity"},
		{"$$-Infinity", math.Inf(-1), "negative infinity"},
		{"$$empty", "$$empty", "gap outside array"},
		{"$$unknown", "$$unknown", "unreserved look-alike"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Decode(tt.in)
			if err != nil {
				t.Fatal(err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Decode(%#v) = %#v, want %#v", tt.in, got, tt.want)
			}
		})
	}
}

func TestDecode_Specials(t *testing.T) {
	got, _ := Decode("$$NaN")
	if f, ok := got.(float64); !ok || !math.IsNaN(f) {
		t.Errorf("NaN = %#v", got)
	}
	got, _ = Decode("$$-0")
	if f, ok := got.(float64); !ok || f != 0 || !math.Signbit(f) {
		t.Errorf("-0 = %#v", got)
	}
	got, _ = Decode("$$undefined")
	if !IsUndefined(got) {
		t.Errorf("undefined = %#v", got)
	}
	got, _ = Decode(map[string]any{"$$undefined": nil})
	if !IsUndefined(got) {
		t.Errorf("tagged undefined = %#v", got)
	}
}

func TestDecode_Arrays(t *testing.T) {
	got, err := Decode([]any{"~~$$id:5", "$$empty", "$$undefined", "~$$id:5"})
	if err != nil {
		t.Fatal(err)
	}
	arr := got.([]any)
	if len(arr) != 4 || arr[0] != "$$id:5" || !IsHole(arr[1]) || !IsUndefined(arr[2]) || arr[3] != "$$id:5" {
		t.Errorf("Decode = %#v", arr)
	}

	got, _ = Decode([]any{"$$id:3", "a"})
	if !reflect.DeepEqual(got, []any{"a"}) {
		t.Errorf("id marker not stripped: %#v", got)
	}
}

func TestDecode_Records(t *testing.T) {
	got, err := Decode(map[string]any{"~json": 1.0, "~$$Set": 2.0, "$$id": 4.0, "a": "~$$x"})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"json": 1.0, "$$Set": 2.0, "a": "$$x"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %#v, want %#v", got, want)
	}
}

func TestDecode_UnknownTag(t *testing.T) {
	got, err := Decode(map[string]any{"$$Nope": []any{1.0}})
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]any{"$$Nope": []any{1.0}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Decode = %#v, want %#v", got, want)
	}
}

func TestDecode_ReferenceInsideUnknownTag(t *testing.T) {
	w := map[string]any{
		"$$id": 0.0,
		"x":    map[string]any{"$$Nope": map[string]any{"$$ref": 0.0}},
	}
	got, err := Decode(w, WithStrictReferences())
	if err != nil {
		t.Fatal(err)
	}
	root := got.(map[string]any)
	inner := root["x"].(map[string]any)
	if back, ok := inner["$$Nope"].(map[string]any); !ok || back["x"] == nil {
		t.Errorf("inner = %#v, want the root map", inner)
	}
}

func TestDecode_References(t *testing.T) {
	w := map[string]any{
		"a": map[string]any{"$$id": 0.0, "x": 1.0},
		"b": map[string]any{"$$ref": 0.0},
		"c": []any{"$$id:1", map[string]any{"$$ref": 1.0}},
	}
	got, err := Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	m := got.(map[string]any)
	a := m["a"].(map[string]any)
	b := m["b"].(map[string]any)
	a["y"] = 2.0
	if b["y"] != 2.0 {
		t.Error("a and b should be the same map")
	}

	c := m["c"].([]any)
	inner, ok := c[0].([]any)
	if !ok || &inner[0] != &c[0] {
		t.Errorf("array should contain itself, got %#v", c[0])
	}
}

func TestDecode_ForwardReferenceInTag(t *testing.T) {
	w := map[string]any{"$$Set": []any{map[string]any{"$$ref": 0.0}}, "$$id": 0.0}
	got, err := Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	s := got.(*Set)
	if s.Len() != 1 || s.Values()[0] != s {
		t.Errorf("set should contain itself: %v", s.Values())
	}
	if !s.Has(s) {
		t.Error("set index not rebuilt after patch")
	}
}

func TestDecode_Unresolved(t *testing.T) {
	core, logs := observer.New(zapcore.WarnLevel)
	w := map[string]any{"a": map[string]any{"$$ref": 9.0}}

	got, err := Decode(w, WithDecodeLogger(zap.New(core)))
	if err != nil {
		t.Fatal(err)
	}
	ref, ok := got.(map[string]any)["a"].(*UnresolvedRef)
	if !ok || ref.ID != 9 {
		t.Errorf("placeholder = %#v", got)
	}
	if logs.Len() != 1 {
		t.Errorf("logged %d warnings, want 1", logs.Len())
	}

	_, err = Decode(w, WithStrictReferences())
	if !isKind(err, errors.KindUnresolvedReference) {
		t.Fatalf("strict err = %v", err)
	}
	if e := err.(*errors.Error); len(e.Path) != 1 || e.Path[0] != "a" {
		t.Errorf("path = %v, want [a]", e.Path)
	}
}

func TestDecode_MalformedReference(t *testing.T) {
	_, err := Decode(map[string]any{"$$ref": "zero"})
	if !isKind(err, errors.KindInvalidData) {
		t.Errorf("err = %v, want invalid data", err)
	}
}

func TestDecode_RootReference(t *testing.T) {
	got, err := Decode(map[string]any{"$$ref": 0.0})
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := got.(*UnresolvedRef); !ok {
		t.Errorf("root = %#v, want placeholder", got)
	}
}

func TestDecode_PatchOutOfBounds(t *testing.T) {
	// The descriptor drops its members, so the pending path points past
	// the end of the decoded set.
	short := NewType[*Set]("Short",
		func(s *Set, _ *EncodeContext) (any, error) { return s.Values(), nil },
		func(p any, _ *DecodeContext) (*Set, error) { return NewSet(), nil },
		WithReader(readSet))
	c := newCoder(t, WithTypes(short))

	w := map[string]any{"$$id": 0.0, "x": map[string]any{"$$Short": []any{map[string]any{"$$ref": 0.0}}}}
	_, err := c.Decode(w)
	if !isKind(err, errors.KindOutOfBounds) {
		t.Errorf("err = %v, want out of bounds", err)
	}
}

func TestDecode_DescriptorError(t *testing.T) {
	_, err := Decode(map[string]any{"$$BigInt": "twelve"})
	if !isKind(err, errors.KindInvalidData) {
		t.Fatalf("err = %v", err)
	}
	if e := err.(*errors.Error); e.Tag != "BigInt" {
		t.Errorf("tag = %q", e.Tag)
	}
}

// envelope is a tagged type without a Reader, so a reference inside it
// can only be decoded when its target is already resolved.
type envelope struct {
	Body any
}

func envelopeType() *Type {
	return NewType[*envelope]("Envelope",
		func(e *envelope, _ *EncodeContext) (any, error) { return e.Body, nil },
		func(p any, _ *DecodeContext) (*envelope, error) { return &envelope{Body: p}, nil })
}

func TestDecode_RecordOrderMatchesEncoder(t *testing.T) {
	c := newCoder(t, WithTypes(envelopeType()))

	// Escaping moves "json" and "$$x" after "k" on the wire.
	for _, name := range []string{"a", "json", "$$x", "~json"} {
		t.Run(name, func(t *testing.T) {
			shared := map[string]any{"n": 1.0}
			in := map[string]any{name: shared, "k": &envelope{Body: shared}}

			text, err := c.Stringify(in)
			if err != nil {
				t.Fatal(err)
			}
			v, err := c.Parse(text, WithStrictReferences())
			if err != nil {
				t.Fatalf("Parse(%s): %v", text, err)
			}

			m := v.(map[string]any)
			first := m[name].(map[string]any)
			env := m["k"].(*envelope)
			first["seen"] = true
			if body, ok := env.Body.(map[string]any); !ok || body["seen"] != true {
				t.Errorf("envelope body = %#v, want the map under %q", env.Body, name)
			}
		})
	}
}
