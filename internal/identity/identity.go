// Package identity tracks Go values by allocation identity.
//
// Only values that carry identity participate: non-nil pointers to
// non-zero-size types, non-nil maps, slices with non-zero capacity and
// channels. Two slices are the same identity when they share the
// backing array start and length.
package identity

import (
	"reflect"
)

// Key is a comparable stand-in for the identity of a value.
type Key struct {
	typ reflect.Type
	ptr uintptr
	len int
}

// Of returns the identity key of v, or false if v has no identity.
func Of(v any) (Key, bool) {
	if v == nil {
		return Key{}, false
	}
	rv := reflect.ValueOf(v)

	switch rv.Kind() {
	case reflect.Pointer:
		if rv.IsNil() || rv.Type().Elem().Size() == 0 {
			return Key{}, false
		}
		return Key{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Map, reflect.Chan:
		if rv.IsNil() {
			return Key{}, false
		}
		return Key{typ: rv.Type(), ptr: rv.Pointer()}, true
	case reflect.Slice:
		// Zero-capacity slices may all share one runtime address.
		if rv.Cap() == 0 || rv.Type().Elem().Size() == 0 {
			return Key{}, false
		}
		return Key{typ: rv.Type(), ptr: rv.Pointer(), len: rv.Len()}, true
	default:
		return Key{}, false
	}
}

// Comparable returns a value usable as a Go map key that follows
// SameValueZero semantics: comparable values stand for themselves, NaN
// equals NaN, and non-comparable values with identity stand for their
// identity. The second result is false for values that can be neither.
func Comparable(v any) (any, bool) {
	if v == nil {
		return nil, true
	}
	switch f := v.(type) {
	case float64:
		if f != f {
			return nanKey{}, true
		}
	case float32:
		if f != f {
			return nanKey{}, true
		}
	}

	rv := reflect.ValueOf(v)
	if rv.Comparable() {
		return v, true
	}
	if key, ok := Of(v); ok {
		return key, true
	}
	return nil, false
}

type nanKey struct{}
