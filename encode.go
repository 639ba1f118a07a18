package codablejson

import (
	"math"
	"reflect"
	"slices"

	"go.uber.org/zap"

	"github.com/wippyai/codablejson/errors"
	"github.com/wippyai/codablejson/internal/identity"
	"github.com/wippyai/codablejson/wire"
)

// Record keys that are never written.
var forbiddenKeys = map[string]bool{
	"__proto__":   true,
	"constructor": true,
	"prototype":   true,
}

// EncodeContext is handed to descriptor encoders. It is only valid for the
// duration of the call that received it.
type EncodeContext struct {
	logger  *zap.Logger
	path    Path
	options EncodeOptions
}

// Options returns the options of the current encode call.
func (c *EncodeContext) Options() EncodeOptions {
	return c.options
}

// IncludeErrorStack reports whether error stacks should be written.
func (c *EncodeContext) IncludeErrorStack() bool {
	return c.options.IncludeErrorStack
}

// Path returns the wire path of the value being encoded.
func (c *EncodeContext) Path() Path {
	return c.path
}

// Logger returns the logger of the calling Coder.
func (c *EncodeContext) Logger() *zap.Logger {
	return c.logger
}

// encoder walks a value graph twice when references are preserved: a
// discovery pass that counts visits per identity, then an emission pass
// that visits in the same order and writes the wire tree. Identities seen
// more than once get ids in first-visit order, so the full node is always
// written at the position a decoder reaches first.
type encoder struct {
	snap   *registrySnapshot
	table  *identity.Table
	keep   []any
	ctx    EncodeContext
	nextID int
	track  bool
	emit   bool
}

func encode(snap *registrySnapshot, log *zap.Logger, v any, opts EncodeOptions) (any, error) {
	table := getTable()
	defer putTable(table)

	e := &encoder{
		snap:  snap,
		table: table,
		ctx:   EncodeContext{logger: log, options: opts},
		track: opts.PreserveReferences,
	}

	if e.track {
		if _, err := e.value(v, nil, false); err != nil {
			return nil, err
		}
		e.nextID = table.AssignIDs(0)
	}
	e.emit = true
	out, err := e.value(v, nil, false)
	e.keep = nil
	return out, err
}

func (e *encoder) value(v any, path Path, inArray bool) (any, error) {
	switch x := v.(type) {
	case nil:
		return nil, nil
	case bool:
		return x, nil
	case string:
		return wire.Strings.Escape(x), nil
	case float64:
		if s, ok := floatSentinel(x); ok {
			return s, nil
		}
		return x, nil
	case float32:
		if s, ok := floatSentinel(float64(x)); ok {
			return s, nil
		}
		return x, nil
	case int, int8, int16, int32, int64, uint, uint8, uint16, uint32, uint64:
		return x, nil
	case undefinedValue:
		return wire.UndefinedString, nil
	case holeValue:
		if inArray {
			return wire.EmptyString, nil
		}
		return wire.UndefinedString, nil
	case []any:
		if x == nil {
			return nil, nil
		}
		return e.array(x, x, path)
	case map[string]any:
		if x == nil {
			return nil, nil
		}
		return e.record(x, x, path)
	}

	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Func:
		return nil, nil
	case reflect.Pointer, reflect.Map, reflect.Slice, reflect.Chan:
		if rv.IsNil() {
			return nil, nil
		}
	}

	if t := e.snap.match(v); t != nil {
		return e.tagged(t, v, path)
	}

	switch rv.Kind() {
	case reflect.Bool:
		return rv.Bool(), nil
	case reflect.String:
		return wire.Strings.Escape(rv.String()), nil
	case reflect.Float32, reflect.Float64:
		if s, ok := floatSentinel(rv.Float()); ok {
			return s, nil
		}
		return rv.Float(), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return rv.Int(), nil
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return rv.Uint(), nil
	case reflect.Slice, reflect.Array:
		items := make([]any, rv.Len())
		for i := range items {
			items[i] = rv.Index(i).Interface()
		}
		return e.array(v, items, path)
	case reflect.Map:
		if rv.Type().Key().Kind() == reflect.String {
			view := make(map[string]any, rv.Len())
			iter := rv.MapRange()
			for iter.Next() {
				view[iter.Key().String()] = iter.Value().Interface()
			}
			return e.record(v, view, path)
		}
	}

	return e.unknown(v, path)
}

func floatSentinel(f float64) (string, bool) {
	switch {
	case math.IsNaN(f):
		return wire.NaNString, true
	case math.IsInf(f, 1):
		return wire.InfinityString, true
	case math.IsInf(f, -1):
		return wire.NegativeInfinityString, true
	case f == 0 && math.Signbit(f):
		return wire.NegativeZeroString, true
	}
	return "", false
}

func (e *encoder) unknown(v any, path Path) (any, error) {
	switch e.ctx.options.UnknownMode {
	case UnknownNull:
		return nil, nil
	case UnknownError:
		return nil, errors.UnknownValue(path, v, typeName(v))
	default:
		return v, nil
	}
}

// enter records that v is being visited. When done is set the caller
// returns ref (nil during discovery) instead of writing the node.
func (e *encoder) enter(v any, path Path) (h identity.Handle, ref any, done bool, err error) {
	key, ok := identity.Of(v)
	if !ok {
		return 0, nil, false, nil
	}

	switch {
	case !e.track:
		// Without ids a value already on the stack is a cycle.
		h, _ = e.table.Visit(key)
		s := e.table.Slot(h)
		if s.Emitted {
			return 0, nil, true, errors.New(errors.PhaseEncode, errors.KindUnsupported).
				Path(path...).
				GoType(typeName(v)).
				Detail("cycle with reference preservation disabled").
				Build()
		}
		s.Emitted = true
		return h, nil, false, nil

	case !e.emit:
		h, first := e.table.Visit(key)
		if !first {
			return 0, nil, true, nil
		}
		return h, nil, false, nil

	default:
		h, ok := e.table.Lookup(key)
		if !ok {
			// Not reached during discovery: produced by an encoder that
			// returned a different graph the second time.
			h, _ = e.table.Visit(key)
		}
		s := e.table.Slot(h)
		if !s.Emitted {
			s.Emitted = true
			return h, nil, false, nil
		}
		if s.ID < 0 {
			if err := e.lateID(s, path); err != nil {
				return 0, nil, true, err
			}
		}
		return 0, wire.NewRef(s.ID), true, nil
	}
}

// lateID assigns an id to a node that was already written without one.
// Only map-shaped nodes can still be annotated.
func (e *encoder) lateID(s *identity.Slot, path Path) error {
	out, ok := s.Output.(map[string]any)
	if !ok {
		return errors.New(errors.PhaseEncode, errors.KindUnsupported).
			Path(path...).
			Detail("array became shared after it was written").
			Build()
	}
	s.ID = e.nextID
	e.nextID++
	out[wire.IDKey] = s.ID
	return nil
}

func (e *encoder) leave(h identity.Handle) {
	if !e.track && h != 0 {
		e.table.Slot(h).Emitted = false
	}
}

func (e *encoder) slotID(h identity.Handle) int {
	if !e.track || h == 0 {
		return -1
	}
	return e.table.Slot(h).ID
}

func (e *encoder) array(v any, items []any, path Path) (any, error) {
	h, ref, done, err := e.enter(v, path)
	if err != nil || done {
		return ref, err
	}
	defer e.leave(h)

	var out []any
	if e.emit {
		out = make([]any, 0, len(items)+1)
		if id := e.slotID(h); id >= 0 {
			out = append(out, wire.ArrayIDMarker(id))
		}
	}

	for i, item := range items {
		enc, err := e.value(item, path.Index(i), true)
		if err != nil {
			return nil, err
		}
		if !e.emit {
			continue
		}
		if i == 0 {
			if s, ok := enc.(string); ok {
				enc = wire.ArrayIDs.Escape(s)
			}
		}
		out = append(out, enc)
	}

	if !e.emit {
		return nil, nil
	}
	return out, nil
}

func (e *encoder) record(v any, m map[string]any, path Path) (any, error) {
	h, ref, done, err := e.enter(v, path)
	if err != nil || done {
		return ref, err
	}
	defer e.leave(h)

	keys := make([]string, 0, len(m))
	for k := range m {
		if !forbiddenKeys[k] {
			keys = append(keys, k)
		}
	}
	slices.Sort(keys)

	var out map[string]any
	if e.emit {
		out = make(map[string]any, len(keys)+1)
		if e.track && h != 0 {
			s := e.table.Slot(h)
			s.Output = out
			if s.ID >= 0 {
				out[wire.IDKey] = s.ID
			}
		}
	}

	for _, k := range keys {
		wk := wire.RecordKeys.Escape(k)
		enc, err := e.value(m[k], path.Append(wk), false)
		if err != nil {
			return nil, err
		}
		if e.emit {
			out[wk] = enc
		}
	}

	if !e.emit {
		return nil, nil
	}
	return out, nil
}

func (e *encoder) tagged(t *Type, v any, path Path) (any, error) {
	h, ref, done, err := e.enter(v, path)
	if err != nil || done {
		return ref, err
	}
	defer e.leave(h)

	var out map[string]any
	if e.emit {
		out = make(map[string]any, 2)
		if e.track && h != 0 {
			s := e.table.Slot(h)
			s.Output = out
			if s.ID >= 0 {
				out[wire.IDKey] = s.ID
			}
		}
	}

	payload, err := e.payload(t, v, h, path)
	if err != nil {
		return nil, err
	}
	if !t.Flat {
		payload, err = e.value(payload, path.Append(t.Key()), false)
		if err != nil {
			return nil, err
		}
	}

	if !e.emit {
		return nil, nil
	}
	out[t.Key()] = payload
	return out, nil
}

// payload runs the descriptor encoder once per identity; the result from
// discovery is reused during emission.
func (e *encoder) payload(t *Type, v any, h identity.Handle, path Path) (any, error) {
	if e.track && h != 0 {
		if s := e.table.Slot(h); s.Cached {
			return s.Payload, nil
		}
	}

	e.ctx.path = path
	p, err := t.Encode(v, &e.ctx)
	if err != nil {
		return nil, errors.New(errors.PhaseEncode, errors.KindInvalidData).
			Path(path...).
			GoType(typeName(v)).
			Tag(t.Name).
			Cause(err).
			Build()
	}

	switch {
	case e.track && h != 0:
		s := e.table.Slot(h)
		s.Payload = p
		s.Cached = true
	case e.track && !e.emit:
		// Keep fresh payloads alive so their addresses are not reused
		// by another allocation before emission.
		e.keep = append(e.keep, p)
	}
	return p, nil
}
