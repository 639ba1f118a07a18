package codablejson

import (
	"fmt"
	"math"
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"testing"
	"time"

	"github.com/wippyai/codablejson/errors"
)

func TestBuiltins_Wire(t *testing.T) {
	when := time.Date(2024, 3, 1, 12, 30, 0, 500, time.UTC)

	tests := []struct {
		in   any
		want any
		name string
	}{
		{NewSet(1.0, 2.0, 3.0), map[string]any{"$$Set": []any{1.0, 2.0, 3.0}}, "set"},
		{NewMap(MapEntry{Key: "k", Value: math.NaN()}), map[string]any{"$$Map": []any{[]any{"k", "$$NaN"}}}, "map"},
		{when, map[string]any{"$$Date": "2024-03-01T12:30:00.0000005Z"}, "date"},
		{time.Time{}, map[string]any{"$$Date": nil}, "zero date"},
		{[]byte{1, 255}, map[string]any{"$$Uint8Array": []any{uint8(1), uint8(255)}}, "bytes"},
		{[]float64{math.Inf(-1)}, map[string]any{"$$Float64Array": []any{"$$-Infinity"}}, "float64 array"},
		{big.NewInt(-12), map[string]any{"$$BigInt": "-12"}, "bigint"},
		{SymbolFor("app.key"), map[string]any{"$$Symbol": "app.key"}, "symbol"},
		{regexp.MustCompile(`(?i)a/b`), map[string]any{"$$RegExp": "/a/b/i"}, "regexp"},
		{url.Values{"q": {"$$x"}}, map[string]any{"$$URLSearchParams": "q=%24%24x"}, "search params"},
		{External("db", struct{}{}), map[string]any{"$$external": "db"}, "external"},
		{fmt.Errorf("plain"), map[string]any{"$$Error": "plain"}, "plain error"},
		{&Error{Name: "TypeError", Message: "$$bad"}, map[string]any{"$$Error": map[string]any{"message": "~$$bad", "name": "TypeError"}}, "named error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := Encode(tt.in)
			if err != nil {
				t.Fatalf("Encode: %v", err)
			}
			if !reflect.DeepEqual(got, tt.want) {
				t.Errorf("Encode = %#v, want %#v", got, tt.want)
			}
		})
	}
}

func TestBuiltins_RoundTrip(t *testing.T) {
	c := Default()
	when := time.Date(2020, 1, 2, 3, 4, 5, 6, time.UTC)
	u, _ := url.Parse("https://example.com/a?b=c#d")

	tests := []struct {
		in   any
		name string
	}{
		{when, "date"},
		{time.Time{}, "zero date"},
		{[]byte{0, 1, 2}, "uint8"},
		{[]int8{-128, 127}, "int8"},
		{[]uint16{65535}, "uint16"},
		{[]int16{-32768}, "int16"},
		{[]uint32{math.MaxUint32}, "uint32"},
		{[]int32{math.MinInt32}, "int32"},
		{[]float32{1.5, -2}, "float32"},
		{[]float64{0.25, 1e300}, "float64"},
		{new(big.Int).Lsh(big.NewInt(1), 100), "bigint"},
		{u, "url"},
		{url.Values{"a": {"1", "2"}, "b": {""}}, "search params"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := roundTrip(t, c, tt.in)
			if !reflect.DeepEqual(got, tt.in) {
				t.Errorf("round trip = %#v, want %#v", got, tt.in)
			}
		})
	}
}

func TestBuiltins_FloatArraySentinels(t *testing.T) {
	got := roundTrip(t, Default(), []float64{math.NaN(), math.Copysign(0, -1)})
	f := got.([]float64)
	if !math.IsNaN(f[0]) || !math.Signbit(f[1]) {
		t.Errorf("round trip = %v", f)
	}
}

func TestBuiltins_IntArrayRange(t *testing.T) {
	_, err := Decode(map[string]any{"$$Int8Array": []any{200.0}})
	if !isKind(err, errors.KindInvalidData) {
		t.Errorf("err = %v, want invalid data", err)
	}
}

func TestBuiltins_Symbol(t *testing.T) {
	s := SymbolFor("shared")
	if SymbolFor("shared") != s {
		t.Error("SymbolFor must intern")
	}
	if got := roundTrip(t, Default(), s); got != s {
		t.Errorf("symbol round trip = %v", got)
	}
	fresh := NewSymbol("local")
	if got := roundTrip(t, Default(), fresh); got != SymbolFor("local") {
		t.Errorf("fresh symbol decodes to %v", got)
	}
}

func TestBuiltins_RegExp(t *testing.T) {
	re := regexp.MustCompile(`(?is)^a.b$`)
	got := roundTrip(t, Default(), re).(*regexp.Regexp)
	if got.String() != re.String() {
		t.Errorf("regexp = %q, want %q", got.String(), re.String())
	}

	got2, err := Decode(map[string]any{"$$RegExp": "/x+/gi"})
	if err != nil {
		t.Fatal(err)
	}
	if !got2.(*regexp.Regexp).MatchString("XX") {
		t.Error("i flag not applied")
	}

	if _, err := Decode(map[string]any{"$$RegExp": "x+"}); !isKind(err, errors.KindInvalidData) {
		t.Errorf("malformed: err = %v", err)
	}
}

func TestBuiltins_MapAndSet(t *testing.T) {
	shared := map[string]any{"n": 1.0}
	m := NewMap(
		MapEntry{Key: shared, Value: "as key"},
		MapEntry{Key: "as value", Value: shared},
	)

	got := roundTrip(t, Default(), m).(*Map)
	entries := got.Entries()
	if len(entries) != 2 {
		t.Fatalf("entries = %v", entries)
	}
	key := entries[0].Key.(map[string]any)
	val := entries[1].Value.(map[string]any)
	key["mark"] = true
	if val["mark"] != true {
		t.Error("key and value should be the same map after decode")
	}
	if v, ok := got.Get(key); !ok || v != "as key" {
		t.Error("identity key lookup failed after decode")
	}
}

func TestBuiltins_Error(t *testing.T) {
	inner := &Error{Name: "RangeError", Message: "too big"}
	outer := &Error{
		Message:    "failed",
		Cause:      inner,
		Properties: map[string]any{"code": 42.0},
		Stack:      "at main",
	}

	w, err := Encode(outer)
	if err != nil {
		t.Fatal(err)
	}
	payload := w.(map[string]any)["$$Error"].(map[string]any)
	if _, ok := payload["stack"]; ok {
		t.Error("stack written without WithIncludeErrorStack")
	}

	got := roundTrip(t, Default(), outer).(*Error)
	if got.Message != "failed" || got.Properties["code"] != 42.0 {
		t.Errorf("decoded = %+v", got)
	}
	cause, ok := got.Cause.(*Error)
	if !ok || cause.Name != "RangeError" || cause.Error() != "RangeError: too big" {
		t.Errorf("cause = %#v", got.Cause)
	}

	w, _ = Encode(outer, WithIncludeErrorStack(true))
	dec, _ := Decode(w)
	if dec.(*Error).Stack != "at main" {
		t.Error("stack lost with WithIncludeErrorStack")
	}
}

func TestBuiltins_WrappedGoError(t *testing.T) {
	base := fmt.Errorf("disk full")
	wrapped := fmt.Errorf("save: %w", base)

	got := roundTrip(t, Default(), wrapped).(*Error)
	if got.Message != "save: disk full" {
		t.Errorf("message = %q", got.Message)
	}
	if got.Unwrap() == nil || got.Unwrap().Error() != "disk full" {
		t.Errorf("cause = %v", got.Cause)
	}
}

func TestBuiltins_ErrorSelfCause(t *testing.T) {
	e := &Error{Message: "loop"}
	e.Cause = e
	got := roundTrip(t, Default(), e).(*Error)
	if got.Cause != got {
		t.Error("self cause not restored")
	}
}

func TestBuiltins_External(t *testing.T) {
	conn := &struct{ Name string }{"db"}
	w, err := Encode(map[string]any{"conn": External("primary", conn)})
	if err != nil {
		t.Fatal(err)
	}

	got, err := Decode(w, WithExternalReferences(map[string]any{"primary": conn}))
	if err != nil {
		t.Fatal(err)
	}
	if got.(map[string]any)["conn"] != conn {
		t.Error("external reference not resolved")
	}

	got, err = Decode(w)
	if err != nil {
		t.Fatal(err)
	}
	if ref, ok := got.(map[string]any)["conn"].(*ExternalRef); !ok || ref.Key != "primary" {
		t.Errorf("missing external = %#v", got)
	}

	if _, err := Decode(w, WithStrictReferences()); !isKind(err, errors.KindNotFound) {
		t.Errorf("strict missing external: err = %v", err)
	}
}

func TestBuiltins_CollapsedMembersKeepReferences(t *testing.T) {
	s := NewSet(1, 1.0)
	s.Add(s)
	m := NewMap(MapEntry{Key: 1, Value: "a"}, MapEntry{Key: 1.0, Value: "b"})
	m.Set("self", m)

	for name, in := range map[string]any{"set": s, "map": m} {
		t.Run(name, func(t *testing.T) {
			text, err := Stringify(in)
			if err != nil {
				t.Fatal(err)
			}
			v, err := Parse(text, WithStrictReferences())
			if err != nil {
				t.Fatalf("Parse(%s): %v", text, err)
			}

			switch got := v.(type) {
			case *Set:
				if got.Len() != 2 || !got.Has(1.0) || !got.Has(got) {
					t.Errorf("set = %v", got.Values())
				}
			case *Map:
				if val, _ := got.Get(1.0); got.Len() != 2 || val != "b" {
					t.Errorf("map entries = %v", got.Entries())
				}
				if self, _ := got.Get("self"); self != got {
					t.Errorf("self = %v", self)
				}
			default:
				t.Fatalf("decoded %T", v)
			}
		})
	}
}

func TestBuiltins_CollapseDuringPatch(t *testing.T) {
	ref := map[string]any{"$$ref": 0.0}

	tests := []struct {
		name  string
		wire  map[string]any
		check func(t *testing.T, v any)
	}{
		{
			name: "replaced map value",
			wire: map[string]any{"$$id": 0.0, "$$Map": []any{
				[]any{1.0, ref},
				[]any{1.0, "x"},
			}},
			check: func(t *testing.T, v any) {
				m := v.(*Map)
				if val, _ := m.Get(1.0); m.Len() != 1 || val != "x" {
					t.Errorf("entries = %v", m.Entries())
				}
			},
		},
		{
			name: "map keys patched to the same value",
			wire: map[string]any{"$$id": 0.0, "$$Map": []any{
				[]any{ref, "a"},
				[]any{map[string]any{"$$ref": 0.0}, "b"},
			}},
			check: func(t *testing.T, v any) {
				m := v.(*Map)
				if val, _ := m.Get(m); m.Len() != 1 || val != "b" {
					t.Errorf("entries = %v", m.Entries())
				}
			},
		},
		{
			name: "set members patched to the same value",
			wire: map[string]any{"$$id": 0.0, "$$Set": []any{
				ref,
				map[string]any{"$$ref": 0.0},
				"tail",
			}},
			check: func(t *testing.T, v any) {
				s := v.(*Set)
				if s.Len() != 2 || !s.Has(s) || !s.Has("tail") {
					t.Errorf("members = %v", s.Values())
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v, err := Decode(tt.wire, WithStrictReferences())
			if err != nil {
				t.Fatal(err)
			}
			tt.check(t, v)
		})
	}
}
