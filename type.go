package codablejson

import (
	"reflect"

	"github.com/wippyai/codablejson/errors"
)

// DefaultPriority is the priority of a descriptor that sets none.
const DefaultPriority = 0

// EncodeFunc converts a matched value into its wire payload. Unless the
// descriptor is flat, the payload is encoded recursively afterwards.
type EncodeFunc func(value any, ctx *EncodeContext) (any, error)

// DecodeFunc rebuilds a value from its payload. Unless the descriptor is
// flat, the payload has already been decoded.
type DecodeFunc func(payload any, ctx *DecodeContext) (any, error)

// Type describes one extended kind: how to recognize it, how to turn it
// into a payload and back, and how to reach inside it when patching
// references.
type Type struct {
	Match        func(any) bool
	Encode       EncodeFunc
	Decode       DecodeFunc
	Reader       Reader
	Name         string
	GoTypes      []reflect.Type
	Dependencies []*Type
	Priority     int
	// Flat payloads are wire-safe as returned and are neither encoded nor
	// decoded recursively.
	Flat bool
}

// TypeSource is implemented by anything that can supply a descriptor,
// including *Type itself. User types implement it to carry their own.
type TypeSource interface {
	CodableType() *Type
}

// CodableType implements TypeSource.
func (t *Type) CodableType() *Type {
	return t
}

// Key returns the wire tag key of the type.
func (t *Type) Key() string {
	return "$$" + t.Name
}

func (t *Type) String() string {
	return t.Name
}

func (t *Type) validate() error {
	switch {
	case t.Name == "":
		return errors.InvalidInput(errors.PhaseRegister, "type name cannot be empty")
	case t.Name == "ref" || t.Name == "id":
		return errors.New(errors.PhaseRegister, errors.KindNameConflict).
			Tag(t.Name).
			Detail("name %q is reserved by the wire format", t.Name).
			Build()
	case t.Match == nil:
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).Tag(t.Name).Detail("missing match predicate").Build()
	case t.Encode == nil:
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).Tag(t.Name).Detail("missing encode function").Build()
	case t.Decode == nil:
		return errors.New(errors.PhaseRegister, errors.KindInvalidInput).Tag(t.Name).Detail("missing decode function").Build()
	}
	return nil
}

// TypeOption configures a descriptor built by NewType.
type TypeOption func(*Type)

// WithPriority sets the match priority. Higher priorities are tried first.
func WithPriority(p int) TypeOption {
	return func(t *Type) { t.Priority = p }
}

// AsFlat marks the payload as wire-safe.
func AsFlat() TypeOption {
	return func(t *Type) { t.Flat = true }
}

// WithMatch narrows the predicate. It is only consulted for values that
// already have the descriptor's Go type.
func WithMatch(match func(any) bool) TypeOption {
	return func(t *Type) {
		base := t.Match
		t.Match = func(v any) bool { return base(v) && match(v) }
	}
}

// WithGoTypes replaces the Go types used for fast-path lookup.
func WithGoTypes(types ...reflect.Type) TypeOption {
	return func(t *Type) { t.GoTypes = types }
}

// WithReader sets the reader used to patch references inside decoded values.
func WithReader(r Reader) TypeOption {
	return func(t *Type) { t.Reader = r }
}

// WithDependencies registers deps together with the type.
func WithDependencies(deps ...*Type) TypeOption {
	return func(t *Type) { t.Dependencies = append(t.Dependencies, deps...) }
}

// NewType builds a descriptor for values of type T. The predicate and the
// fast-path Go type are derived from T; for interface types only the
// predicate is used.
func NewType[T any](
	name string,
	encode func(T, *EncodeContext) (any, error),
	decode func(any, *DecodeContext) (T, error),
	opts ...TypeOption,
) *Type {
	t := &Type{
		Name:     name,
		Priority: DefaultPriority,
		Match: func(v any) bool {
			_, ok := v.(T)
			return ok
		},
		Encode: func(v any, ctx *EncodeContext) (any, error) {
			tv, ok := v.(T)
			if !ok {
				return nil, errors.TypeMismatch(errors.PhaseEncode, ctx.Path(), reflect.TypeOf(v).String(), name)
			}
			return encode(tv, ctx)
		},
		Decode: func(payload any, ctx *DecodeContext) (any, error) {
			return decode(payload, ctx)
		},
	}
	if rt := reflect.TypeFor[T](); rt.Kind() != reflect.Interface {
		t.GoTypes = []reflect.Type{rt}
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}
