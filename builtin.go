package codablejson

import (
	"math"
	"math/big"
	"net/url"
	"reflect"
	"regexp"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/internal/coerce"
)

var typeName = coerce.TypeName

// Built-in descriptors. Every Coder created by New starts with all of them.
var (
	MapType = NewType[*Map]("Map", encodeMap, decodeMap, WithReader(readMap))
	SetType = NewType[*Set]("Set", encodeSet, decodeSet, WithReader(readSet))

	DateType = NewType[time.Time]("Date", encodeDate, decodeDate, AsFlat())

	Uint8ArrayType   = intArrayType[uint8]("Uint8Array", 0, math.MaxUint8)
	Int8ArrayType    = intArrayType[int8]("Int8Array", math.MinInt8, math.MaxInt8)
	Uint16ArrayType  = intArrayType[uint16]("Uint16Array", 0, math.MaxUint16)
	Int16ArrayType   = intArrayType[int16]("Int16Array", math.MinInt16, math.MaxInt16)
	Uint32ArrayType  = intArrayType[uint32]("Uint32Array", 0, math.MaxUint32)
	Int32ArrayType   = intArrayType[int32]("Int32Array", math.MinInt32, math.MaxInt32)
	Float32ArrayType = floatArrayType[float32]("Float32Array")
	Float64ArrayType = floatArrayType[float64]("Float64Array")

	// ErrorType matches every error. Its low priority lets descriptors for
	// concrete error types win.
	ErrorType = NewType[error]("Error", encodeError, decodeError,
		WithPriority(-10),
		WithGoTypes(reflect.TypeFor[*Error]()),
		WithReader(readError))

	BigIntType = NewType[*big.Int]("BigInt", encodeBigInt, decodeBigInt, AsFlat())
	SymbolType = NewType[*Symbol]("Symbol", encodeSymbol, decodeSymbol, AsFlat())
	RegExpType = NewType[*regexp.Regexp]("RegExp", encodeRegExp, decodeRegExp, AsFlat())
	URLType    = NewType[*url.URL]("URL", encodeURL, decodeURL, AsFlat())

	URLSearchParamsType = NewType[url.Values]("URLSearchParams", encodeSearchParams, decodeSearchParams)

	// UndefinedType only decodes {"$$undefined": null} written by older
	// encoders. Undefined itself encodes as the "$$undefined" string.
	UndefinedType = &Type{
		Name:   "undefined",
		Flat:   true,
		Match:  func(any) bool { return false },
		Encode: func(any, *EncodeContext) (any, error) { return nil, nil },
		Decode: func(any, *DecodeContext) (any, error) { return Undefined, nil },
	}

	// ExternalType writes only the key of an *ExternalRef and resolves it
	// from WithExternalReferences when decoding.
	ExternalType = &Type{
		Name:    "external",
		Flat:    true,
		GoTypes: []reflect.Type{reflect.TypeFor[*ExternalRef]()},
		Match: func(v any) bool {
			_, ok := v.(*ExternalRef)
			return ok
		},
		Encode: func(v any, _ *EncodeContext) (any, error) {
			return v.(*ExternalRef).Key, nil
		},
		Decode: decodeExternal,
	}
)

// Builtins returns the built-in descriptors in registration order.
func Builtins() []*Type {
	return []*Type{
		MapType,
		SetType,
		DateType,
		Uint8ArrayType,
		Int8ArrayType,
		Uint16ArrayType,
		Int16ArrayType,
		Uint32ArrayType,
		Int32ArrayType,
		Float32ArrayType,
		Float64ArrayType,
		ErrorType,
		BigIntType,
		SymbolType,
		RegExpType,
		URLType,
		URLSearchParamsType,
		UndefinedType,
		ExternalType,
	}
}

func payloadError(ctx *DecodeContext, want string, got any) error {
	return errors.New(errors.PhaseDecode, errors.KindTypeMismatch).
		Path(ctx.Path()...).
		GoType(typeName(got)).
		Detail("payload must be %s", want).
		Build()
}

func encodeMap(m *Map, _ *EncodeContext) (any, error) {
	out := make([]any, len(m.entries))
	for i, e := range m.entries {
		out[i] = []any{e.Key, e.Value}
	}
	return out, nil
}

func decodeMap(p any, ctx *DecodeContext) (*Map, error) {
	items, ok := p.([]any)
	if !ok {
		return nil, payloadError(ctx, "an array of entries", p)
	}
	m := &Map{
		index:   make(map[any]int, len(items)),
		wirePos: make([]int, 0, len(items)),
	}
	for _, item := range items {
		pair, ok := item.([]any)
		if !ok || len(pair) != 2 {
			return nil, payloadError(ctx, "an array of [key, value] pairs", item)
		}
		// Keys that differ in Go can collide once decoded, e.g. int 1 and
		// float64 1. The later value wins at the earlier position.
		if j := m.find(pair[0]); j >= 0 {
			m.drop(j)
			m.entries[j].Value = pair[1]
			m.wirePos = append(m.wirePos, j)
			continue
		}
		m.Set(pair[0], pair[1])
		m.wirePos = append(m.wirePos, len(m.entries)-1)
	}
	return m, nil
}

// readMap addresses entries by wire position, then 0 for the key or 1
// for the value.
func readMap(container any, segs *Segments) (Accessor, error) {
	m, ok := container.(*Map)
	if !ok {
		return Accessor{}, errors.TypeMismatch(errors.PhasePatch, segs.Walked(), typeName(container), "Map")
	}
	count := m.Len()
	if m.wirePos != nil {
		count = len(m.wirePos)
	}
	n, err := segs.Index(count)
	if err != nil {
		return Accessor{}, err
	}
	part, err := segs.Index(2)
	if err != nil {
		return Accessor{}, err
	}

	i := n
	if m.wirePos != nil {
		i = m.wirePos[n]
	}
	if i < 0 {
		return droppedEntry(m, n, part), nil
	}
	if part == 0 {
		return Accessor{
			Get: func() any { return m.entries[i].Key },
			Set: func(v any) error {
				m.setKeyAt(i, v)
				return nil
			},
		}, nil
	}
	return Accessor{
		Get: func() any { return m.entries[i].Value },
		Set: func(v any) error {
			m.entries[i].Value = v
			return nil
		},
	}, nil
}

// droppedEntry addresses a wire entry whose value was replaced by a
// later entry with an equal key.
func droppedEntry(m *Map, n, part int) Accessor {
	return Accessor{
		Get: func() any {
			if part == 0 {
				return m.dropped[n].Key
			}
			return m.dropped[n].Value
		},
		Set: func(v any) error {
			e := m.dropped[n]
			if part == 0 {
				e.Key = v
			} else {
				e.Value = v
			}
			m.dropped[n] = e
			return nil
		},
	}
}

func encodeSet(s *Set, _ *EncodeContext) (any, error) {
	return s.Values(), nil
}

func decodeSet(p any, ctx *DecodeContext) (*Set, error) {
	items, ok := p.([]any)
	if !ok {
		return nil, payloadError(ctx, "an array", p)
	}
	s := &Set{
		index:   make(map[any]int, len(items)),
		wirePos: make([]int, 0, len(items)),
	}
	for _, item := range items {
		// Members that differ in Go can collide once decoded.
		if j := s.find(item); j >= 0 {
			s.wirePos = append(s.wirePos, j)
			continue
		}
		s.Add(item)
		s.wirePos = append(s.wirePos, len(s.items)-1)
	}
	return s, nil
}

// readSet addresses members by wire position.
func readSet(container any, segs *Segments) (Accessor, error) {
	s, ok := container.(*Set)
	if !ok {
		return Accessor{}, errors.TypeMismatch(errors.PhasePatch, segs.Walked(), typeName(container), "Set")
	}
	count := s.Len()
	if s.wirePos != nil {
		count = len(s.wirePos)
	}
	n, err := segs.Index(count)
	if err != nil {
		return Accessor{}, err
	}

	i := n
	if s.wirePos != nil {
		i = s.wirePos[n]
	}
	return Accessor{
		Get: func() any { return s.items[i] },
		Set: func(v any) error {
			s.setAt(i, v)
			return nil
		},
	}, nil
}

func encodeDate(t time.Time, _ *EncodeContext) (any, error) {
	if t.IsZero() {
		return nil, nil
	}
	return t.UTC().Format(time.RFC3339Nano), nil
}

func decodeDate(p any, ctx *DecodeContext) (time.Time, error) {
	switch v := p.(type) {
	case nil:
		return time.Time{}, nil
	case string:
		t, err := time.Parse(time.RFC3339Nano, v)
		if err != nil {
			return time.Time{}, errors.New(errors.PhaseDecode, errors.KindInvalidData).
				Path(ctx.Path()...).
				Tag("Date").
				Cause(err).
				Build()
		}
		return t, nil
	default:
		return time.Time{}, payloadError(ctx, "an RFC 3339 string or null", p)
	}
}

func intArrayType[T uint8 | int8 | uint16 | int16 | uint32 | int32](name string, lo, hi int64) *Type {
	return NewType[[]T](name,
		func(v []T, _ *EncodeContext) (any, error) {
			out := make([]any, len(v))
			for i, x := range v {
				out[i] = x
			}
			return out, nil
		},
		func(p any, ctx *DecodeContext) ([]T, error) {
			items, ok := p.([]any)
			if !ok {
				return nil, payloadError(ctx, "an array of numbers", p)
			}
			out := make([]T, len(items))
			for i, item := range items {
				n, ok := coerce.ToIntRange(item, lo, hi)
				if !ok {
					return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
						Path(ctx.Path().Index(i)...).
						Tag(name).
						Value(item).
						Detail("element out of range").
						Build()
				}
				out[i] = T(n)
			}
			return out, nil
		})
}

func floatArrayType[T float32 | float64](name string) *Type {
	return NewType[[]T](name,
		func(v []T, _ *EncodeContext) (any, error) {
			out := make([]any, len(v))
			for i, x := range v {
				out[i] = x
			}
			return out, nil
		},
		func(p any, ctx *DecodeContext) ([]T, error) {
			items, ok := p.([]any)
			if !ok {
				return nil, payloadError(ctx, "an array of numbers", p)
			}
			out := make([]T, len(items))
			for i, item := range items {
				f, ok := coerce.ToFloat64(item)
				if !ok {
					return nil, payloadError(ctx, "an array of numbers", item)
				}
				out[i] = T(f)
			}
			return out, nil
		})
}

func encodeError(err error, ctx *EncodeContext) (any, error) {
	f := errorFields(err)
	named := f.Name != "" && f.Name != "Error"
	stack := ctx.IncludeErrorStack() && f.Stack != ""
	if !named && f.Cause == nil && len(f.Properties) == 0 && !stack {
		return f.Message, nil
	}

	rec := map[string]any{"message": f.Message}
	if named {
		rec["name"] = f.Name
	}
	if f.Cause != nil {
		rec["cause"] = f.Cause
	}
	if len(f.Properties) > 0 {
		rec["properties"] = f.Properties
	}
	if stack {
		rec["stack"] = f.Stack
	}
	return rec, nil
}

func decodeError(p any, ctx *DecodeContext) (error, error) {
	switch v := p.(type) {
	case string:
		return &Error{Name: "Error", Message: v}, nil
	case map[string]any:
		e := &Error{Name: "Error"}
		e.Message, _ = v["message"].(string)
		if name, ok := v["name"].(string); ok && name != "" {
			e.Name = name
		}
		e.Cause = v["cause"]
		if props, ok := v["properties"].(map[string]any); ok {
			e.Properties = props
		}
		e.Stack, _ = v["stack"].(string)
		return e, nil
	default:
		return nil, payloadError(ctx, "a message string or an error record", p)
	}
}

func readError(container any, segs *Segments) (Accessor, error) {
	e, ok := container.(*Error)
	if !ok {
		return Accessor{}, errors.TypeMismatch(errors.PhasePatch, segs.Walked(), typeName(container), "Error")
	}
	seg, _ := segs.Next()
	switch seg {
	case "cause":
		return Accessor{
			Get: func() any { return e.Cause },
			Set: func(v any) error {
				e.Cause = v
				return nil
			},
		}, nil
	case "properties":
		key, err := segs.Key()
		if err != nil {
			return Accessor{}, err
		}
		if e.Properties == nil {
			e.Properties = make(map[string]any)
		}
		return RecordAccessor(e.Properties, key), nil
	default:
		return Accessor{}, errors.InvalidData(errors.PhasePatch, segs.Walked(), "errors hold references only in cause and properties")
	}
}

func encodeBigInt(v *big.Int, _ *EncodeContext) (any, error) {
	return v.String(), nil
}

func decodeBigInt(p any, ctx *DecodeContext) (*big.Int, error) {
	s, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a decimal string", p)
	}
	n, ok := new(big.Int).SetString(s, 10)
	if !ok {
		return nil, errors.InvalidData(errors.PhaseDecode, ctx.Path(), "invalid big integer "+s)
	}
	return n, nil
}

func encodeSymbol(s *Symbol, _ *EncodeContext) (any, error) {
	return s.key, nil
}

func decodeSymbol(p any, ctx *DecodeContext) (*Symbol, error) {
	key, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a string key", p)
	}
	return SymbolFor(key), nil
}

// Leading inline flag group, e.g. "(?is)".
var inlineFlags = regexp.MustCompile(`^\(\?([imsU]+)\)`)

func encodeRegExp(re *regexp.Regexp, _ *EncodeContext) (any, error) {
	source, flags := re.String(), ""
	if m := inlineFlags.FindStringSubmatch(source); m != nil {
		source, flags = source[len(m[0]):], m[1]
	}
	return "/" + source + "/" + flags, nil
}

func decodeRegExp(p any, ctx *DecodeContext) (*regexp.Regexp, error) {
	s, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a /source/flags string", p)
	}
	end := strings.LastIndexByte(s, '/')
	if !strings.HasPrefix(s, "/") || end < 1 {
		return nil, errors.InvalidData(errors.PhaseDecode, ctx.Path(), "malformed regular expression "+s)
	}

	source := s[1:end]
	var flags strings.Builder
	for _, f := range s[end+1:] {
		// Flags without a Go equivalent (g, u, y, d, v) are dropped.
		if strings.ContainsRune("imsU", f) {
			flags.WriteRune(f)
		}
	}
	if flags.Len() > 0 {
		source = "(?" + flags.String() + ")" + source
	}

	re, err := regexp.Compile(source)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(ctx.Path()...).
			Tag("RegExp").
			Cause(err).
			Build()
	}
	return re, nil
}

func encodeURL(u *url.URL, _ *EncodeContext) (any, error) {
	return u.String(), nil
}

func decodeURL(p any, ctx *DecodeContext) (*url.URL, error) {
	s, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a URL string", p)
	}
	u, err := url.Parse(s)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(ctx.Path()...).
			Tag("URL").
			Cause(err).
			Build()
	}
	return u, nil
}

func encodeSearchParams(v url.Values, _ *EncodeContext) (any, error) {
	return v.Encode(), nil
}

func decodeSearchParams(p any, ctx *DecodeContext) (url.Values, error) {
	s, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a query string", p)
	}
	v, err := url.ParseQuery(s)
	if err != nil {
		return nil, errors.New(errors.PhaseDecode, errors.KindInvalidData).
			Path(ctx.Path()...).
			Tag("URLSearchParams").
			Cause(err).
			Build()
	}
	return v, nil
}

func decodeExternal(p any, ctx *DecodeContext) (any, error) {
	key, ok := p.(string)
	if !ok {
		return nil, payloadError(ctx, "a string key", p)
	}
	if v, ok := ctx.External(key); ok {
		return v, nil
	}
	if ctx.Strict() {
		return nil, errors.NotFound(errors.PhaseDecode, "external reference", key)
	}
	ctx.Logger().Warn("external reference not supplied",
		zap.String("key", key),
		zap.Stringer("path", ctx.Path()))
	return &ExternalRef{Key: key}, nil
}
